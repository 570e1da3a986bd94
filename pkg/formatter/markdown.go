package formatter

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kataras/psd-extractor/pkg/imager"
	"github.com/kataras/psd-extractor/pkg/psdtree"
)

// ToMarkdown renders a report of a document tree and, when result is non-nil,
// of the layers an export wrote, skipped and failed on. File paths are shown
// relative to outputDir when possible.
func ToMarkdown(tree *psdtree.Tree, result *imager.ExportResult, title, outputDir string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Layer Export Report - %s\n\n", title))

	groups, layers := 0, 0
	tree.Walk(func(n psdtree.Node) bool {
		if n.IsLayer() {
			layers++
		} else {
			groups++
		}
		return true
	})

	sb.WriteString("## Document\n\n")
	sb.WriteString(fmt.Sprintf("- **Canvas**: %dx%d\n", tree.Width(), tree.Height()))
	sb.WriteString(fmt.Sprintf("- **Color Mode**: %s\n", strings.ToUpper(tree.Document().ColorMode().String())))
	sb.WriteString(fmt.Sprintf("- **Groups**: %d\n", groups))
	sb.WriteString(fmt.Sprintf("- **Layers**: %d\n\n", layers))

	sb.WriteString("## Layer Tree\n\n")
	sb.WriteString("```\n")
	for _, line := range tree.List() {
		sb.WriteString(strings.ReplaceAll(line, "\t", "  "))
		sb.WriteString("\n")
	}
	sb.WriteString("```\n\n")

	if result == nil {
		return sb.String()
	}

	if len(result.Assets) > 0 {
		sb.WriteString("## Exported Layers\n\n")
		sb.WriteString("| Layer | File | Bounds | Opacity |\n")
		sb.WriteString("|-------|------|--------|---------|\n")
		for _, a := range result.Assets {
			b := a.Bounds
			sb.WriteString(fmt.Sprintf("| %s | `%s` | %d,%d %dx%d | %d%% |\n",
				escapeCell(a.Path), relativeTo(outputDir, a.File), b.Min.X, b.Min.Y, b.Dx(), b.Dy(), opacityPercent(a.Opacity)))
		}
		sb.WriteString("\n")
	}

	writeFailures(&sb, "Skipped Layers", result.Skipped)
	writeFailures(&sb, "Failed Layers", result.Failed)

	return sb.String()
}

func writeFailures(sb *strings.Builder, heading string, failures []imager.ExportFailure) {
	if len(failures) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("## %s\n\n", heading))
	for _, f := range failures {
		sb.WriteString(fmt.Sprintf("- `%s`: %v\n", f.Path, f.Err))
	}
	sb.WriteString("\n")
}

// escapeCell keeps a pipe in a layer name from splitting the table row.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func relativeTo(dir, file string) string {
	if dir == "" {
		return filepath.ToSlash(file)
	}
	rel, err := filepath.Rel(dir, file)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(file)
	}
	return filepath.ToSlash(rel)
}

// opacityPercent converts 0-255 to a rounded percentage.
func opacityPercent(op uint8) int {
	return (int(op)*100 + 127) / 255
}
