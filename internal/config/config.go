// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the settings of the command line tool.
//
// Settings are layered, each layer overriding the ones before it:
// built-in defaults, a YAML file, DBML_* environment variables, and finally
// command line flags that were explicitly set.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix of environment variables read as settings.
// DBML_LOG_LEVEL sets log_level, and so on.
const EnvPrefix = "DBML_"

// FileNames are the config file names looked for in the working directory,
// in order, when no file is given explicitly.
var FileNames = []string{"dbmlc.yaml", "dbmlc.yml", ".dbmlc.yaml"}

// Config is the tool's configuration.
type Config struct {
	// One of debug, info, warn and error.
	LogLevel string `koanf:"log_level"`

	// How check prints diagnostics: text or table.
	Format string `koanf:"format"`

	// One of auto, always and never.
	Color string `koanf:"color"`

	// Print one line per diagnostic instead of a source snippet.
	Compact bool `koanf:"compact"`

	WarningsAreErrors bool `koanf:"warnings_are_errors"`

	// Globs, relative to the working directory, selecting the files to
	// process when none are named on the command line.
	Include []string `koanf:"include"`
	Exclude []string `koanf:"exclude"`

	// Maximum number of files parsed at once. Zero means one per CPU.
	Parallelism int `koanf:"parallelism"`

	// Milliseconds to wait for a burst of file changes to settle in watch
	// mode.
	DebounceMS int `koanf:"debounce_ms"`

	// The config file that was loaded, if any.
	File string `koanf:"-"`
}

// Defaults returns the built-in settings.
func Defaults() map[string]any {
	return map[string]any{
		"log_level":           "info",
		"format":              "text",
		"color":               "auto",
		"compact":             false,
		"warnings_are_errors": false,
		"include":             []string{"**/*.dbml"},
		"exclude":             []string{},
		"parallelism":         0,
		"debounce_ms":         100,
	}
}

// Load loads the configuration. path names a config file to read; if it is
// empty, the first of [FileNames] that exists is read, if any. flags may be
// nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path == "" {
		path = findFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if flags != nil {
		err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil)
		if err != nil {
			return nil, fmt.Errorf("reading flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.File = path
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Validate checks that every setting has an allowed value.
func (c *Config) Validate() error {
	var errs []error
	switch c.Format {
	case "text", "table":
	default:
		errs = append(errs, fmt.Errorf("format must be text or table, got %q", c.Format))
	}
	switch c.Color {
	case "auto", "always", "never":
	default:
		errs = append(errs, fmt.Errorf("color must be auto, always or never, got %q", c.Color))
	}
	if c.Parallelism < 0 {
		errs = append(errs, fmt.Errorf("parallelism must not be negative, got %d", c.Parallelism))
	}
	if c.DebounceMS < 0 {
		errs = append(errs, fmt.Errorf("debounce_ms must not be negative, got %d", c.DebounceMS))
	}
	return errors.Join(errs...)
}

func findFile() string {
	for _, name := range FileNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}
