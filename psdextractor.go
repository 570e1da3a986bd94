package psdextractor

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/kataras/psd-extractor/pkg/bundle"
	"github.com/kataras/psd-extractor/pkg/document"
	"github.com/kataras/psd-extractor/pkg/errors"
	"github.com/kataras/psd-extractor/pkg/formatter"
	"github.com/kataras/psd-extractor/pkg/imager"
	"github.com/kataras/psd-extractor/pkg/psdtree"
)

// Version is the release version of the library and CLI.
const Version = "0.1.0"

// Options configures the extraction.
type Options struct {
	Path       string            // bundle manifest or directory holding one
	Document   document.Document // used instead of Path when set
	OutputDir  string            // default "psd-output"
	Suffix     string            // appended to every file name before ".png"
	Workers    int               // layers exported in parallel; <= 1 is sequential
	SkipHidden bool
	NodePath   string // export only this group or layer; empty = whole tree
	Logger     Logger // nil = no logging
}

// Logger receives progress messages. A nil Logger means silent operation.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Result contains the extraction output.
type Result struct {
	Tree     *psdtree.Tree
	Export   *imager.ExportResult
	Markdown string // export report
}

func (o *Options) logInfo(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Infof(f, a...)
	}
}

func (o *Options) title() string {
	if o.Path == "" {
		return "document"
	}
	return filepath.Base(strings.TrimSuffix(o.Path, string(filepath.Separator)))
}

// Open loads the document named by opts and builds its tree.
func Open(opts Options) (*psdtree.Tree, error) {
	doc := opts.Document
	if doc == nil {
		if opts.Path == "" {
			return nil, errors.New(errors.ErrCodeInvalidManifest, "no document or bundle path given")
		}

		opts.logInfo("Loading bundle %s...", opts.Path)
		mem, err := bundle.Load(opts.Path)
		if err != nil {
			return nil, err
		}
		doc = mem
	}

	opts.logInfo("Building layer tree (%dx%d, %s)...", doc.Width(), doc.Height(), doc.ColorMode())
	return psdtree.New(doc)
}

// Run loads the document, exports its layers (or the subtree at NodePath)
// and returns the tree, the export outcome and a markdown report.
//
// Layers that fail to export do not make Run fail; they are listed in
// Result.Export. Errors are returned only when the document cannot be loaded
// or NodePath does not exist.
func Run(ctx context.Context, opts Options) (*Result, error) {
	tree, err := Open(opts)
	if err != nil {
		return nil, err
	}

	nodes := tree.RootChildren()
	if opts.NodePath != "" {
		n, ok := tree.Lookup(opts.NodePath)
		if !ok {
			return nil, errors.New(errors.ErrCodeNotFound, "no group or layer at %q", opts.NodePath)
		}
		opts.logInfo("Exporting %s only", n)
		nodes = []psdtree.Node{n}
	}

	// A nil Options.Logger must stay a nil imager.Logger.
	var logger imager.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	}

	exporter := imager.NewExporter(imager.ExportConfig{
		OutputDir:  opts.OutputDir,
		Suffix:     opts.Suffix,
		Workers:    opts.Workers,
		SkipHidden: opts.SkipHidden,
	}, logger)

	opts.logInfo("Exporting layers to %s...", exporter.Config().OutputDir)
	export := exporter.ExportAll(ctx, nodes...)

	opts.logInfo("Generating markdown report...")
	markdown := formatter.ToMarkdown(tree, export, opts.title(), exporter.Config().OutputDir)

	return &Result{
		Tree:     tree,
		Export:   export,
		Markdown: markdown,
	}, nil
}
