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

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/dbml/internal/config"
)

func writeConfig(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dbmlc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o600))
	return path
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load(writeConfig(t, ""), nil)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal("info", cfg.LogLevel)
	assert.Equal("text", cfg.Format)
	assert.Equal("auto", cfg.Color)
	assert.Equal([]string{"**/*.dbml"}, cfg.Include)
	assert.Equal(100, cfg.DebounceMS)
}

func TestLayering(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
format: table
include: ["schemas/**/*.dbml"]
parallelism: 2
`)
	t.Setenv("DBML_FORMAT", "text")
	t.Setenv("DBML_COMPACT", "true")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-level", "info", "")
	flags.Int("parallelism", 0, "")
	flags.Bool("warnings-are-errors", false, "")
	require.NoError(t, flags.Parse([]string{"--parallelism=4"}))

	cfg, err := config.Load(path, flags)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(path, cfg.File)
	assert.Equal("debug", cfg.LogLevel, "unset flags must not override the file")
	assert.Equal("text", cfg.Format, "environment overrides the file")
	assert.True(cfg.Compact)
	assert.Equal(4, cfg.Parallelism, "flags override everything")
	assert.Equal([]string{"schemas/**/*.dbml"}, cfg.Include)
	assert.False(cfg.WarningsAreErrors)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	_, err := config.Load(writeConfig(t, "format: xml\ncolor: sometimes\n"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "format must be text or table")
	assert.Contains(t, err.Error(), "color must be auto")
}

func TestMissingFile(t *testing.T) {
	t.Parallel()

	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}
