package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// fileConfig is the optional TOML file passed with --config. Unset keys keep
// the flag defaults.
type fileConfig struct {
	OutputDir  string `toml:"output_dir"`
	Suffix     string `toml:"suffix"`
	Workers    *int   `toml:"workers"`
	SkipHidden *bool  `toml:"skip_hidden"`
	Report     string `toml:"report"`
}

type exportFlags struct {
	out        string
	path       string
	suffix     string
	workers    int
	skipHidden bool
	report     string
	config     string
}

func loadConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, fmt.Errorf("load config: unknown keys %s", strings.Join(keys, ", "))
	}
	if cfg.Workers != nil && *cfg.Workers < 1 {
		return cfg, fmt.Errorf("load config: workers must be at least 1, got %d", *cfg.Workers)
	}
	return cfg, nil
}

// merge copies values from cfg into f for every flag the user did not set
// explicitly.
func (f *exportFlags) merge(cfg fileConfig, changed func(name string) bool) {
	if cfg.OutputDir != "" && !changed("out") {
		f.out = cfg.OutputDir
	}
	if cfg.Suffix != "" && !changed("suffix") {
		f.suffix = cfg.Suffix
	}
	if cfg.Workers != nil && !changed("workers") {
		f.workers = *cfg.Workers
	}
	if cfg.SkipHidden != nil && !changed("skip-hidden") {
		f.skipHidden = *cfg.SkipHidden
	}
	if cfg.Report != "" && !changed("report") {
		f.report = cfg.Report
	}
}
