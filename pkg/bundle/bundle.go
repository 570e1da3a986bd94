// Package bundle loads a layered image from a directory of PNG files
// described by a TOML manifest:
//
//	width = 64
//	height = 48
//	color_mode = "rgb"
//
//	[[group]]
//	id = 1
//	name = "Shadows"
//
//	[[layer]]
//	name = "Masculine"
//	group = 1
//	file = "masculine.png"
//	left = 2
//	top = 3
//	opacity = 200
//
// Groups and layers keep manifest order. Layer files are resolved relative to
// the manifest and decoded only when their pixels are requested; each one is
// placed at its left/top offset on a transparent canvas-sized buffer.
package bundle

import (
	"bytes"
	"image"
	_ "image/png" // register the PNG decoder
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/image/draw"

	"github.com/kataras/psd-extractor/pkg/document"
	"github.com/kataras/psd-extractor/pkg/errors"
)

// DefaultManifest is the file name Load looks for when given a directory.
const DefaultManifest = "manifest.toml"

// Manifest is the decoded TOML description of a bundle.
type Manifest struct {
	Width     int          `toml:"width"`
	Height    int          `toml:"height"`
	ColorMode string       `toml:"color_mode"`
	Groups    []GroupEntry `toml:"group"`
	Layers    []LayerEntry `toml:"layer"`
}

// GroupEntry describes one group.
type GroupEntry struct {
	ID     uint32  `toml:"id"`
	Name   string  `toml:"name"`
	Parent *uint32 `toml:"parent,omitempty"`
	Left   int     `toml:"left,omitempty"`
	Top    int     `toml:"top,omitempty"`
	Width  int     `toml:"width,omitempty"`
	Height int     `toml:"height,omitempty"`
}

// LayerEntry describes one layer. Visible defaults to true and Opacity to 255.
type LayerEntry struct {
	Name    string  `toml:"name"`
	Group   *uint32 `toml:"group,omitempty"`
	File    string  `toml:"file"`
	Left    int     `toml:"left,omitempty"`
	Top     int     `toml:"top,omitempty"`
	Visible *bool   `toml:"visible,omitempty"`
	Opacity *uint8  `toml:"opacity,omitempty"`
}

// Load reads a bundle from path, which is either a manifest file or a
// directory holding DefaultManifest.
func Load(path string) (*document.Memory, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, DefaultManifest)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read manifest %q", path)
	}
	return Parse(data, filepath.Dir(path))
}

// Parse decodes manifest data. Relative layer files are resolved against
// baseDir and their headers are read to size each layer.
func Parse(data []byte, baseDir string) (*document.Memory, error) {
	var m Manifest
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "decode manifest")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidManifest, "unknown keys: %s", strings.Join(keys, ", "))
	}
	return m.Document(baseDir)
}

// Document validates the manifest and builds the in-memory document.
func (m *Manifest) Document(baseDir string) (*document.Memory, error) {
	if m.Width <= 0 || m.Height <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidManifest, "canvas size %dx%d must be positive", m.Width, m.Height)
	}

	mode := document.RGB
	if m.ColorMode != "" {
		var err error
		if mode, err = document.ParseColorMode(m.ColorMode); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "color_mode")
		}
	}

	doc := document.NewMemory(m.Width, m.Height, mode)

	seen := make(map[uint32]bool, len(m.Groups))
	for _, g := range m.Groups {
		if seen[g.ID] {
			return nil, errors.New(errors.ErrCodeInvalidManifest, "duplicate group id %d", g.ID)
		}
		seen[g.ID] = true

		doc.AddGroup(document.Group{
			ID:     document.GroupID(g.ID),
			Name:   g.Name,
			Parent: groupRef(g.Parent),
			Bounds: image.Rect(g.Left, g.Top, g.Left+g.Width, g.Top+g.Height),
		})
	}

	for i, l := range m.Layers {
		if l.File == "" {
			return nil, errors.New(errors.ErrCodeInvalidManifest, "layer %d (%q) has no file", i, l.Name)
		}

		file := l.File
		if !filepath.IsAbs(file) {
			file = filepath.Join(baseDir, file)
		}

		size, err := imageSize(file)
		if err != nil {
			return nil, err
		}

		visible := true
		if l.Visible != nil {
			visible = *l.Visible
		}
		opacity := uint8(255)
		if l.Opacity != nil {
			opacity = *l.Opacity
		}

		bounds := image.Rectangle{Min: image.Pt(l.Left, l.Top), Max: image.Pt(l.Left, l.Top).Add(size)}
		doc.AddLayer(document.Layer{
			Name:    l.Name,
			Parent:  groupRef(l.Group),
			Visible: visible,
			Opacity: opacity,
			Bounds:  bounds,
			Pixels:  placedPixels(file, bounds.Min, m.Width, m.Height),
		})
	}

	return doc, nil
}

// WriteFile encodes the manifest as TOML.
func (m *Manifest) WriteFile(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(m); err != nil {
		return errors.Wrap(errors.ErrCodeEncode, err, "encode manifest")
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write manifest %q", path)
	}
	return nil
}

func groupRef(id *uint32) *document.GroupID {
	if id == nil {
		return nil
	}
	return document.Ref(document.GroupID(*id))
}

func imageSize(file string) (image.Point, error) {
	f, err := os.Open(file)
	if err != nil {
		return image.Point{}, errors.Wrap(errors.ErrCodeInvalidManifest, err, "open layer file")
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return image.Point{}, errors.Wrap(errors.ErrCodeInvalidManifest, err, "read header of %q", file)
	}
	return image.Pt(cfg.Width, cfg.Height), nil
}

// placedPixels decodes file on every call and returns it positioned at
// offset on a width x height straight-alpha RGBA canvas. Parts outside the
// canvas are clipped.
func placedPixels(file string, offset image.Point, width, height int) document.PixelFunc {
	return func() ([]byte, error) {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		src, _, err := image.Decode(f)
		if err != nil {
			return nil, err
		}

		canvas := image.NewNRGBA(image.Rect(0, 0, width, height))
		target := src.Bounds().Sub(src.Bounds().Min).Add(offset)

		// NRGBA sources are copied row by row so straight alpha survives
		// without a premultiply round trip.
		if nrgba, ok := src.(*image.NRGBA); ok {
			copyNRGBA(canvas, nrgba, target)
			return canvas.Pix, nil
		}

		draw.Draw(canvas, target, src, src.Bounds().Min, draw.Src)
		return canvas.Pix, nil
	}
}

func copyNRGBA(dst, src *image.NRGBA, target image.Rectangle) {
	clipped := target.Intersect(dst.Rect)
	if clipped.Empty() {
		return
	}

	// where clipped.Min lands in src
	sp := src.Rect.Min.Add(clipped.Min.Sub(target.Min))
	n := clipped.Dx() * 4
	for y := 0; y < clipped.Dy(); y++ {
		d := dst.PixOffset(clipped.Min.X, clipped.Min.Y+y)
		s := src.PixOffset(sp.X, sp.Y+y)
		copy(dst.Pix[d:d+n], src.Pix[s:s+n])
	}
}
