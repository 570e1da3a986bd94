package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kataras/psd-extractor/pkg/psdtree"
)

var (
	colorCyan = lipgloss.Color("36")
	colorGray = lipgloss.Color("245")
	colorDim  = lipgloss.Color("240")

	styleGroup  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleLayer  = lipgloss.NewStyle()
	styleHidden = lipgloss.NewStyle().Foreground(colorDim)
	styleMarker = lipgloss.NewStyle().Foreground(colorGray)
)

// renderTree draws the hierarchy with box-drawing connectors. Groups end
// in "/" and hidden layers are dimmed and tagged.
func renderTree(t *psdtree.Tree) string {
	var sb strings.Builder
	renderLevel(&sb, t.RootChildren(), "")
	return sb.String()
}

func renderLevel(sb *strings.Builder, nodes []psdtree.Node, prefix string) {
	for i, n := range nodes {
		last := i == len(nodes)-1

		connector, indent := "├── ", "│   "
		if last {
			connector, indent = "└── ", "    "
		}

		sb.WriteString(styleMarker.Render(prefix + connector))
		sb.WriteString(nodeLabel(n))
		sb.WriteString("\n")

		if children, ok := n.Children(); ok {
			renderLevel(sb, children, prefix+indent)
		}
	}
}

func nodeLabel(n psdtree.Node) string {
	l, isLayer := n.Element.Layer()
	switch {
	case !isLayer:
		return styleGroup.Render(n.Name() + "/")
	case !l.Visible:
		return styleHidden.Render(n.Name() + " (hidden)")
	default:
		return styleLayer.Render(n.Name())
	}
}
