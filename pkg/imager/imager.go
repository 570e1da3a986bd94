// Package imager turns tree layers into image files: each layer is cropped
// to its visible pixels, premultiplied by its opacity and written as PNG
// under an output directory that mirrors the group hierarchy.
package imager

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kataras/psd-extractor/pkg/crop"
	"github.com/kataras/psd-extractor/pkg/errors"
	"github.com/kataras/psd-extractor/pkg/psdtree"
)

// DefaultOutputDir is where exports land when ExportConfig.OutputDir is empty.
const DefaultOutputDir = "psd-output"

// Logger receives progress messages. A nil Logger means silent operation.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// ExportConfig holds configuration for layer export.
type ExportConfig struct {
	OutputDir  string    // local directory, default "psd-output"
	Suffix     string    // appended to the layer path before ".png"
	Workers    int       // layers exported in parallel; <= 1 is sequential
	SkipHidden bool      // leave invisible layers out
	Crop       crop.Func // default crop.Auto
}

// ExportedAsset represents a single written layer.
type ExportedAsset struct {
	Path    string          // layer path in the tree
	File    string          // written file
	Bounds  image.Rectangle // cropped region on the canvas
	Opacity uint8
}

// ExportFailure ties a layer path to the reason it was not written.
type ExportFailure struct {
	Path string
	Err  error
}

func (f ExportFailure) Error() string {
	return fmt.Sprintf("%s: %v", f.Path, f.Err)
}

func (f ExportFailure) Unwrap() error { return f.Err }

// ExportResult holds the outcome of a batch export. Assets, Skipped and
// Failed are each in tree order.
type ExportResult struct {
	Assets  []ExportedAsset
	Skipped []ExportFailure // empty or hidden layers
	Failed  []ExportFailure // I/O, encoding or tree errors
}

// Exporter writes layers to disk.
type Exporter struct {
	config ExportConfig
	logger Logger
}

// NewExporter applies defaults to config and returns an Exporter.
func NewExporter(config ExportConfig, logger Logger) *Exporter {
	if config.OutputDir == "" {
		config.OutputDir = DefaultOutputDir
	}
	if config.Crop == nil {
		config.Crop = crop.Auto
	}
	return &Exporter{config: config, logger: logger}
}

// Config returns the effective configuration.
func (e *Exporter) Config() ExportConfig { return e.config }

func (e *Exporter) logInfo(f string, a ...any) {
	if e.logger != nil {
		e.logger.Infof(f, a...)
	}
}

func (e *Exporter) logWarn(f string, a ...any) {
	if e.logger != nil {
		e.logger.Warnf(f, a...)
	}
}

func (e *Exporter) logError(f string, a ...any) {
	if e.logger != nil {
		e.logger.Errorf(f, a...)
	}
}

// OutputPath maps an absolute layer path onto the output directory:
// "/Shadows/Masculine" becomes "<out>/Shadows/Masculine<suffix>.png".
func (e *Exporter) OutputPath(layerPath string) string {
	segments := strings.Split(strings.TrimPrefix(layerPath, "/"), "/")
	for i, s := range segments {
		segments[i] = safeSegment(s)
	}
	return filepath.Join(e.config.OutputDir, filepath.Join(segments...)) + e.config.Suffix + ".png"
}

// safeSegment keeps a path segment from leaving its directory.
func safeSegment(s string) string {
	switch s {
	case "", ".", "..":
		return strings.Repeat("_", max(len(s), 1))
	}
	return strings.NewReplacer("\\", "_", "\x00", "_").Replace(s)
}

// ExportLayer crops, premultiplies and writes a single layer node.
func (e *Exporter) ExportLayer(n psdtree.Node) (ExportedAsset, error) {
	l, ok := n.Element.Layer()
	if !ok {
		return ExportedAsset{}, errors.New(errors.ErrCodeNotALayer, "%s is not a layer", n.Name())
	}

	layerPath, err := n.Path()
	if err != nil {
		return ExportedAsset{}, err
	}

	img, err := e.render(n, true)
	if err != nil {
		return ExportedAsset{}, err
	}

	file := e.OutputPath(layerPath)
	e.logInfo("Exporting %s to %s", layerPath, file)
	if err := WritePNG(file, img.Bounds.Dx(), img.Bounds.Dy(), img.Pix); err != nil {
		return ExportedAsset{}, err
	}

	return ExportedAsset{
		Path:    layerPath,
		File:    file,
		Bounds:  img.Bounds,
		Opacity: l.Opacity,
	}, nil
}

// ExportTree exports every layer of the tree.
func (e *Exporter) ExportTree(ctx context.Context, t *psdtree.Tree) *ExportResult {
	return e.ExportAll(ctx, t.RootChildren()...)
}

// ExportAll exports every layer reachable from nodes, depth-first with
// groups before layers at each level. A layer that cannot be written is
// reported in the result and does not stop the others.
//
// Cancelling ctx stops layers that have not started yet; they are reported
// as failed with the context error.
func (e *Exporter) ExportAll(ctx context.Context, nodes ...psdtree.Node) *ExportResult {
	layers := collectLayers(nodes)
	outcomes := make([]outcome, len(layers))
	collisions := e.claimOutputs(layers)

	exportOne := func(i int) {
		if c := collisions[i]; c != nil {
			e.logWarn("Skipping %s: %v", c.Path, c.Err)
			outcomes[i] = outcome{skipped: c}
			return
		}
		outcomes[i] = e.exportOutcome(ctx, layers[i])
	}

	if e.config.Workers <= 1 {
		for i := range layers {
			exportOne(i)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(e.config.Workers)
		for i := range layers {
			i := i
			g.Go(func() error {
				exportOne(i)
				return nil
			})
		}
		_ = g.Wait()
	}

	result := &ExportResult{}
	for _, o := range outcomes {
		switch {
		case o.skipped != nil:
			result.Skipped = append(result.Skipped, *o.skipped)
		case o.failed != nil:
			result.Failed = append(result.Failed, *o.failed)
		default:
			result.Assets = append(result.Assets, o.asset)
		}
	}

	e.logInfo("Exported %d layer(s), skipped %d, failed %d", len(result.Assets), len(result.Skipped), len(result.Failed))
	return result
}

// claimOutputs assigns each output file to the first layer, in document
// order, that would write it. Later layers mapping to the same file get a
// collision entry at their index.
func (e *Exporter) claimOutputs(layers []psdtree.Node) []*ExportFailure {
	collisions := make([]*ExportFailure, len(layers))
	claimed := make(map[string]string, len(layers))

	for i, n := range layers {
		if l, _ := n.Element.Layer(); e.config.SkipHidden && !l.Visible {
			continue
		}
		p, err := n.Path()
		if err != nil {
			continue
		}
		file := e.OutputPath(p)
		if first, ok := claimed[file]; ok {
			collisions[i] = &ExportFailure{
				Path: p,
				Err:  errors.New(errors.ErrCodeCollision, "output path %s collides with %s", file, first),
			}
			continue
		}
		claimed[file] = p
	}
	return collisions
}

type outcome struct {
	asset   ExportedAsset
	skipped *ExportFailure
	failed  *ExportFailure
}

func (e *Exporter) exportOutcome(ctx context.Context, n psdtree.Node) outcome {
	label := n.String()
	if p, err := n.Path(); err == nil {
		label = p
	}

	if err := ctx.Err(); err != nil {
		return outcome{failed: &ExportFailure{Path: label, Err: err}}
	}

	if l, _ := n.Element.Layer(); e.config.SkipHidden && !l.Visible {
		e.logInfo("Skipping hidden layer %s", label)
		return outcome{skipped: &ExportFailure{Path: label, Err: fmt.Errorf("layer is hidden")}}
	}

	asset, err := e.ExportLayer(n)
	if err == nil {
		return outcome{asset: asset}
	}

	if errors.Is(err, errors.ErrCodeCropFailed) {
		e.logWarn("Skipping %s: %v", label, err)
		return outcome{skipped: &ExportFailure{Path: label, Err: err}}
	}

	e.logError("Exporting %s failed: %v", label, err)
	return outcome{failed: &ExportFailure{Path: label, Err: err}}
}

// collectLayers flattens the layers below nodes in export order.
func collectLayers(nodes []psdtree.Node) []psdtree.Node {
	var out []psdtree.Node
	for _, n := range nodes {
		if n.IsLayer() {
			out = append(out, n)
			continue
		}
		if children, ok := n.Children(); ok {
			out = append(out, collectLayers(children)...)
		}
	}
	return out
}

// Image is a materialized layer bitmap.
type Image struct {
	Bounds image.Rectangle // position and size on the canvas
	Pix    []byte          // Bounds.Dx()*Bounds.Dy()*4 RGBA bytes
}

// Materialize produces the bitmap of a layer node. With cropped set the
// bitmap is trimmed to its visible pixels and premultiplied by the layer
// opacity; otherwise it is the raw canvas-sized buffer.
func (e *Exporter) Materialize(n psdtree.Node, cropped bool) (Image, error) {
	if !n.IsLayer() {
		return Image{}, errors.New(errors.ErrCodeNotALayer, "%s is not a layer", n.Name())
	}
	return e.render(n, cropped)
}

// Materialize is Exporter.Materialize with the default crop.
func Materialize(n psdtree.Node, cropped bool) (Image, error) {
	return NewExporter(ExportConfig{}, nil).Materialize(n, cropped)
}

// render runs pixel decoding, cropping and premultiplication. A panic in
// any of them is converted into an error for this one layer.
func (e *Exporter) render(n psdtree.Node, cropped bool) (img Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			img, err = Image{}, errors.New(errors.ErrCodeInternal, "rendering %s panicked: %v", n.Name(), r)
		}
	}()

	l, _ := n.Element.Layer()
	tree := n.Tree()
	width, height := tree.Width(), tree.Height()

	pix, err := l.RGBA()
	if err != nil {
		return Image{}, errors.Wrap(errors.ErrCodePixels, err, "decode pixels of %s", n.Name())
	}

	if !cropped {
		if len(pix) != width*height*4 {
			return Image{}, errors.New(errors.ErrCodePixels, "%s has %d bytes for a %dx%d canvas", n.Name(), len(pix), width, height)
		}
		return Image{Bounds: image.Rect(0, 0, width, height), Pix: pix}, nil
	}

	res, err := e.config.Crop(width, height, pix)
	if err != nil {
		return Image{}, errors.Wrap(errors.ErrCodeCropFailed, err, "crop %s", n.Name())
	}

	Premultiply(res.Pix, l.Opacity)
	return Image{Bounds: res.Bounds(), Pix: res.Pix}, nil
}
