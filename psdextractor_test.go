package psdextractor

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/kataras/psd-extractor/pkg/document"
	"github.com/kataras/psd-extractor/pkg/errors"
)

// faceBundle writes a bundle with a Shadows group holding Masculine and an
// all-transparent Empty layer, plus a root Background layer.
func faceBundle(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	dot := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			dot.SetNRGBA(x, y, color.NRGBA{255, 0, 0, 128})
		}
	}
	for name, img := range map[string]image.Image{
		"masculine.png":  dot,
		"empty.png":      image.NewNRGBA(image.Rect(0, 0, 3, 3)),
		"background.png": dot,
	} {
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			t.Fatal(err)
		}
		if err := png.Encode(f, img); err != nil {
			t.Fatal(err)
		}
		f.Close()
	}

	manifest := `
width = 8
height = 8

[[group]]
id = 1
name = "Shadows"

[[layer]]
name = "Masculine"
group = 1
file = "masculine.png"
left = 3
top = 4

[[layer]]
name = "Empty"
group = 1
file = "empty.png"

[[layer]]
name = "Background"
file = "background.png"
`
	if err := os.WriteFile(filepath.Join(dir, "manifest.toml"), []byte(manifest), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func outputFiles(t *testing.T, root string) []string {
	t.Helper()
	var files []string
	filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			rel, _ := filepath.Rel(root, path)
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	sort.Strings(files)
	return files
}

type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) record(level, f string, a ...any) {
	l.mu.Lock()
	l.lines = append(l.lines, level+" "+fmt.Sprintf(f, a...))
	l.mu.Unlock()
}

func (l *recordingLogger) Infof(f string, a ...any)  { l.record("INFO", f, a...) }
func (l *recordingLogger) Warnf(f string, a ...any)  { l.record("WARN", f, a...) }
func (l *recordingLogger) Errorf(f string, a ...any) { l.record("ERROR", f, a...) }

func TestRun(t *testing.T) {
	tests := []struct {
		name      string
		nodePath  string
		suffix    string
		wantFiles []string
		wantSkip  int
	}{
		{
			name:      "whole tree",
			wantFiles: []string{"Background.png", "Shadows/Masculine.png"},
			wantSkip:  1,
		},
		{
			name:      "single group",
			nodePath:  "/Shadows",
			wantFiles: []string{"Shadows/Masculine.png"},
			wantSkip:  1,
		},
		{
			name:      "single layer with suffix",
			nodePath:  "Shadows/Masculine",
			suffix:    "@1x",
			wantFiles: []string{"Shadows/Masculine@1x.png"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := t.TempDir()
			logger := &recordingLogger{}

			result, err := Run(context.Background(), Options{
				Path:      faceBundle(t),
				OutputDir: out,
				Suffix:    tt.suffix,
				NodePath:  tt.nodePath,
				Workers:   2,
				Logger:    logger,
			})
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			if got := outputFiles(t, out); strings.Join(got, ",") != strings.Join(tt.wantFiles, ",") {
				t.Errorf("files = %v, want %v", got, tt.wantFiles)
			}
			if len(result.Export.Skipped) != tt.wantSkip || len(result.Export.Failed) != 0 {
				t.Errorf("skipped = %v, failed = %v", result.Export.Skipped, result.Export.Failed)
			}
			if !strings.Contains(result.Markdown, "# Layer Export Report - ") {
				t.Errorf("unexpected report:\n%s", result.Markdown)
			}
			if len(logger.lines) == 0 {
				t.Error("logger received nothing")
			}
		})
	}
}

func TestRun_Premultiplied(t *testing.T) {
	out := t.TempDir()
	doc := document.NewMemory(2, 1, document.RGB).
		AddLayer(document.Layer{Name: "Dot", Visible: true, Opacity: 128,
			Pixels: document.StaticPixels([]byte{0, 0, 0, 0, 255, 255, 255, 255})})

	result, err := Run(context.Background(), Options{Document: doc, OutputDir: out})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Export.Assets) != 1 {
		t.Fatalf("assets = %v", result.Export.Assets)
	}

	f, err := os.Open(filepath.Join(out, "Dot.png"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 1 || img.Bounds().Dy() != 1 {
		t.Fatalf("size = %v, want 1x1", img.Bounds())
	}
	if got := color.NRGBAModel.Convert(img.At(0, 0)).(color.NRGBA); got != (color.NRGBA{128, 128, 128, 128}) {
		t.Errorf("pixel = %v, want {128 128 128 128}", got)
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{name: "nothing to load", opts: Options{}, code: errors.ErrCodeInvalidManifest},
		{name: "missing bundle", opts: Options{Path: filepath.Join(t.TempDir(), "none.toml")}, code: errors.ErrCodeIO},
		{name: "unknown node", opts: Options{Path: faceBundle(t), NodePath: "/Nope"}, code: errors.ErrCodeNotFound},
		{name: "cmyk", opts: Options{Document: document.NewMemory(1, 1, document.CMYK)}, code: errors.ErrCodeUnsupportedColorMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.OutputDir = t.TempDir()
			if _, err := Run(context.Background(), tt.opts); !errors.Is(err, tt.code) {
				t.Errorf("Run() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	tree, err := Open(Options{Path: faceBundle(t)})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	want := []string{"[G] Shadows", "\t[L] Masculine", "\t[L] Empty", "[L] Background"}
	if got := tree.List(); strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("List() = %q, want %q", got, want)
	}
}
