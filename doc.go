// Package psdextractor turns a layered image into one PNG per layer, laid
// out in directories that mirror the document's group hierarchy.
//
// The CLI lives in cmd/psd-extractor; this root package exposes the same
// pipeline as a Go API so that callers can embed extraction in their own
// tools without shelling out.
//
// # Import
//
// The module path contains a hyphen but Go package names cannot, so the
// package is named psdextractor:
//
//	import "github.com/kataras/psd-extractor" // package psdextractor
//
// # Quick start
//
//	result, err := psdextractor.Run(ctx, psdextractor.Options{
//	    Path:      "face/manifest.toml",
//	    OutputDir: "assets",
//	    Workers:   4,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, f := range result.Export.Failed {
//	    log.Printf("%s: %v", f.Path, f.Err)
//	}
//
// A layer at "/Shadows/Masculine" is written to "assets/Shadows/Masculine.png",
// cropped to its visible pixels and premultiplied by the layer opacity.
//
// # Documents
//
// [Options.Path] names a bundle: a TOML manifest plus one PNG per layer (see
// package bundle). Any other parser can hand its result over by implementing
// document.Document and setting [Options.Document]. Only RGB documents are
// accepted.
//
// # Logging
//
// Pass a [Logger] implementation in [Options.Logger] to receive progress
// messages. A nil Logger silences all output. A *log.Logger from
// github.com/charmbracelet/log satisfies the interface as is.
//
// # Partial export
//
// Set [Options.NodePath] to a slash-separated path such as "/Shadows" to
// export a single group (recursively) or a single layer.
package psdextractor
