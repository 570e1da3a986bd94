package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	psdextractor "github.com/kataras/psd-extractor"
	"github.com/kataras/psd-extractor/pkg/errors"
	"github.com/kataras/psd-extractor/pkg/psdtree"

	charmlog "github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const version = psdextractor.Version

var (
	verbose bool
	quiet   bool
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "psd-extractor",
		Short:         "Export the layers of a layered image as PNG files",
		Long:          "A tool to rebuild the group hierarchy of a layered image and export every layer as a cropped PNG, in directories that mirror its groups",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only log warnings and errors")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "psd-extractor version %s\n", version)
		},
	}

	rootCmd.AddCommand(versionCmd, newTreeCmd(), newInfoCmd(), newExportCmd())
	return rootCmd
}

// newLogger creates the charm logger used for progress messages, writing to
// stderr so command output stays clean.
func newLogger() *charmlog.Logger {
	level := charmlog.InfoLevel
	switch {
	case verbose:
		level = charmlog.DebugLevel
	case quiet:
		level = charmlog.WarnLevel
	}
	return charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

func newTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree <bundle>",
		Short: "Print the group and layer hierarchy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := psdextractor.Open(psdextractor.Options{Path: args[0], Logger: newLogger()})
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTree(tree))
			return nil
		},
	}
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <bundle> <path>",
		Short: "Print the properties of a group or layer as JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := psdextractor.Open(psdextractor.Options{Path: args[0], Logger: newLogger()})
			if err != nil {
				return err
			}

			n, ok := tree.Lookup(args[1])
			if !ok {
				return errors.New(errors.ErrCodeNotFound, "no group or layer at %q", args[1])
			}
			info, err := psdtree.Describe(n)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		},
	}
}

func newExportCmd() *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export <bundle>",
		Short: "Export every layer (or one subtree) as PNG files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			if flags.config != "" {
				cfg, err := loadConfig(flags.config)
				if err != nil {
					return err
				}
				flags.merge(cfg, cmd.Flags().Changed)
				logger.Debugf("Loaded config %s", flags.config)
			}

			return runExport(cmd, args[0], flags, logger)
		},
	}

	cmd.Flags().StringVarP(&flags.out, "out", "o", "psd-output", "Output directory for exported layers")
	cmd.Flags().StringVarP(&flags.path, "path", "p", "", "Export only the group or layer at this path (e.g. \"/Shadows\")")
	cmd.Flags().StringVar(&flags.suffix, "suffix", "", "Suffix appended to every file name before .png")
	cmd.Flags().IntVarP(&flags.workers, "workers", "w", 1, "Number of layers exported in parallel")
	cmd.Flags().BoolVar(&flags.skipHidden, "skip-hidden", false, "Do not export invisible layers")
	cmd.Flags().StringVar(&flags.report, "report", "", "Write a markdown export report to this file")
	cmd.Flags().StringVarP(&flags.config, "config", "c", "", "TOML file with default export settings")

	return cmd
}

func runExport(cmd *cobra.Command, bundlePath string, flags exportFlags, logger *charmlog.Logger) error {
	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)
	out := cmd.OutOrStdout()

	cyan.Fprintln(out, "\n🖼  PSD Layer Extractor")
	cyan.Fprintln(out, "======================")
	fmt.Fprintln(out)

	logger.Debugf("Options: out=%s path=%q suffix=%q workers=%d skip-hidden=%v",
		flags.out, flags.path, flags.suffix, flags.workers, flags.skipHidden)

	start := time.Now()
	result, err := psdextractor.Run(cmd.Context(), psdextractor.Options{
		Path:       bundlePath,
		OutputDir:  flags.out,
		Suffix:     flags.suffix,
		Workers:    flags.workers,
		SkipHidden: flags.skipHidden,
		NodePath:   flags.path,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	export := result.Export
	cyan.Fprintln(out, "\n📊 Export Summary:")
	fmt.Fprintf(out, "  • Canvas: %dx%d\n", result.Tree.Width(), result.Tree.Height())
	green.Fprintf(out, "  • Exported: %d\n", len(export.Assets))
	if len(export.Skipped) > 0 {
		yellow.Fprintf(out, "  • Skipped: %d\n", len(export.Skipped))
	}
	if len(export.Failed) > 0 {
		red.Fprintf(out, "  • Failed: %d\n", len(export.Failed))
		for _, f := range export.Failed {
			red.Fprintf(out, "    ✗ %s: %s\n", f.Path, errors.UserMessage(f.Err))
		}
	}
	fmt.Fprintf(out, "  • Took: %s\n", time.Since(start).Round(time.Millisecond))

	if flags.report != "" {
		green.Fprintf(out, "\n💾 Writing report to %s... ", flags.report)
		if err := os.WriteFile(flags.report, []byte(result.Markdown), 0644); err != nil {
			red.Fprintln(out, "✗")
			return errors.Wrap(errors.ErrCodeIO, err, "write report")
		}
		green.Fprintln(out, "✓")
	}

	if len(export.Failed) > 0 {
		return fmt.Errorf("%d layer(s) failed to export", len(export.Failed))
	}

	green.Fprintf(out, "\n✨ Successfully exported %d layer(s) to %s\n\n", len(export.Assets), flags.out)
	return nil
}
