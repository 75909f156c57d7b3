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

package logging_test

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"

	"github.com/bufbuild/dbml/internal/logging"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	assert.Equal(log.DebugLevel, logging.ParseLevel("debug"))
	assert.Equal(log.DebugLevel, logging.ParseLevel(" DEBUG "))
	assert.Equal(log.WarnLevel, logging.ParseLevel("warning"))
	assert.Equal(log.ErrorLevel, logging.ParseLevel("error"))
	assert.Equal(log.InfoLevel, logging.ParseLevel("info"))
	assert.Equal(log.InfoLevel, logging.ParseLevel("bogus"))
}

func TestNewFiltersByLevel(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	var buf bytes.Buffer
	logger := logging.New(&buf, "warn")
	logger.Info("hidden")
	logger.Warn("shown", "file", "a.dbml")

	assert.NotContains(buf.String(), "hidden")
	assert.Contains(buf.String(), "shown")
	assert.Contains(buf.String(), "a.dbml")
}
