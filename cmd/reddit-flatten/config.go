package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"

	"github.com/WessleyAI/reddit-flatten/engine/export"
)

// defaultConfigPath is read when present; --config makes a file mandatory.
const defaultConfigPath = "reddit-flatten.toml"

// options is the resolved configuration of one CLI run.
type options struct {
	ConfigPath string
	File       string
	Shape      string
	Filter     string
	Out        string
	Print      bool
	Separator  string
	Marker     string
	NATSURL    string
	Subject    string
	Rate       float64
	Verbose    bool
}

func defaultOptions() options {
	return options{
		ConfigPath: defaultConfigPath,
		File:       export.DefaultInput,
		Separator:  export.DefaultSeparator,
		Subject:    "reddit.flatten.blocks",
	}
}

// fileConfig mirrors reddit-flatten.toml.
type fileConfig struct {
	Input     string `toml:"input"`
	Shape     string `toml:"shape"`
	Filter    string `toml:"filter"`
	Output    string `toml:"output"`
	Separator string `toml:"separator"`
	Marker    string `toml:"marker"`
	NATS      struct {
		URL     string  `toml:"url"`
		Subject string  `toml:"subject"`
		Rate    float64 `toml:"rate"`
	} `toml:"nats"`
}

// loadFileConfig decodes the TOML config at path. A missing file is only
// an error when the user asked for it explicitly.
func loadFileConfig(path string, explicit bool) (fileConfig, bool, error) {
	var cfg fileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return fileConfig{}, false, nil
		}
		return fileConfig{}, false, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fileConfig{}, false, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, true, nil
}

// merge fills every option the user did not set on the command line from
// the config file.
func (o *options) merge(cfg fileConfig, flags *pflag.FlagSet) {
	set := func(name string, dst *string, v string) {
		if v != "" && !flags.Changed(name) {
			*dst = v
		}
	}
	set("file", &o.File, cfg.Input)
	set("shape", &o.Shape, cfg.Shape)
	set("filter", &o.Filter, cfg.Filter)
	set("out", &o.Out, cfg.Output)
	set("separator", &o.Separator, cfg.Separator)
	set("marker", &o.Marker, cfg.Marker)
	set("nats", &o.NATSURL, cfg.NATS.URL)
	set("subject", &o.Subject, cfg.NATS.Subject)
	if cfg.NATS.Rate > 0 && !flags.Changed("rate") {
		o.Rate = cfg.NATS.Rate
	}
}
