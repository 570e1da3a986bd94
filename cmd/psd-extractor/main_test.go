package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kataras/psd-extractor/pkg/psdtree"
)

// writeBundle creates a bundle with one group holding a visible and a hidden
// layer, plus a root layer that has no visible pixels.
func writeBundle(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	dot := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	dot.SetNRGBA(0, 0, color.NRGBA{0, 255, 0, 255})
	for name, img := range map[string]image.Image{
		"dot.png":   dot,
		"blank.png": image.NewNRGBA(image.Rect(0, 0, 2, 2)),
	} {
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0644); err != nil {
			t.Fatal(err)
		}
	}

	manifest := `
width = 4
height = 4

[[group]]
id = 1
name = "Shadows"

[[layer]]
name = "Masculine"
group = 1
file = "dot.png"
left = 1
top = 1
opacity = 128

[[layer]]
name = "Ghost"
group = 1
file = "dot.png"
visible = false

[[layer]]
name = "Blank"
file = "blank.png"
`
	if err := os.WriteFile(filepath.Join(dir, "manifest.toml"), []byte(manifest), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	args = append(args, "--quiet")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if out != "psd-extractor version "+version+"\n" {
		t.Errorf("version output = %q", out)
	}
}

func TestTreeCmd(t *testing.T) {
	out, err := execute(t, "tree", writeBundle(t))
	if err != nil {
		t.Fatalf("tree error = %v", err)
	}

	for _, want := range []string{"Shadows/", "Masculine", "Ghost (hidden)", "Blank", "└── "} {
		if !strings.Contains(out, want) {
			t.Errorf("tree output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Shadows/") > strings.Index(out, "Blank") {
		t.Errorf("groups should be listed before root layers:\n%s", out)
	}
}

func TestInfoCmd(t *testing.T) {
	bundle := writeBundle(t)

	out, err := execute(t, "info", bundle, "/Shadows/Masculine")
	if err != nil {
		t.Fatalf("info error = %v", err)
	}

	var info psdtree.Info
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if info.Path != "/Shadows/Masculine" || info.Name != "Masculine" {
		t.Errorf("info = %+v", info)
	}
	if info.Properties == nil || info.Properties.Opacity != 128 || !info.Properties.Visible {
		t.Errorf("properties = %+v", info.Properties)
	}

	if _, err := execute(t, "info", bundle, "/Missing"); err == nil {
		t.Error("info on a missing path should fail")
	}
}

func TestExportCmd(t *testing.T) {
	bundle := writeBundle(t)
	work := t.TempDir()
	outDir := filepath.Join(work, "assets")
	report := filepath.Join(work, "report.md")

	config := filepath.Join(work, "export.toml")
	if err := os.WriteFile(config, []byte("output_dir = \"ignored\"\nskip_hidden = true\nworkers = 2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "export", bundle, "--out", outDir, "--report", report, "--config", config)
	if err != nil {
		t.Fatalf("export error = %v\n%s", err, out)
	}

	if _, err := os.Stat(filepath.Join(outDir, "Shadows", "Masculine.png")); err != nil {
		t.Errorf("Masculine.png not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "Shadows", "Ghost.png")); !os.IsNotExist(err) {
		t.Error("hidden layer exported despite skip_hidden in config")
	}
	if _, err := os.Stat(filepath.Join(work, "ignored")); !os.IsNotExist(err) {
		t.Error("config output_dir should lose to --out")
	}

	data, err := os.ReadFile(report)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	if !strings.Contains(string(data), "| /Shadows/Masculine | `Shadows/Masculine.png` |") {
		t.Errorf("report missing asset row:\n%s", data)
	}
	if !strings.Contains(out, "Exported: 1") {
		t.Errorf("summary missing count:\n%s", out)
	}
}

func TestExportCmd_Path(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "out")

	if _, err := execute(t, "export", writeBundle(t), "--out", outDir, "--path", "/Shadows/Ghost"); err != nil {
		t.Fatalf("export error = %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(outDir, "Shadows"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "Ghost.png" {
		t.Errorf("exported %v, want only Ghost.png", entries)
	}
}

func TestExportCmd_Errors(t *testing.T) {
	bundle := writeBundle(t)

	tests := []struct {
		name string
		args []string
	}{
		{name: "missing bundle", args: []string{"export", filepath.Join(t.TempDir(), "nope")}},
		{name: "missing node", args: []string{"export", bundle, "--out", t.TempDir(), "--path", "/Nope"}},
		{name: "missing config", args: []string{"export", bundle, "--config", filepath.Join(t.TempDir(), "x.toml")}},
		{name: "no arguments", args: []string{"export"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
