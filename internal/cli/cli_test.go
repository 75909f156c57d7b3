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

package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/dbml"
	"github.com/bufbuild/dbml/internal/cli"
	"github.com/bufbuild/dbml/tree"
)

func run(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = cli.Main(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func write(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(text), 0o600))
	return path
}

// syncBuffer is a bytes.Buffer that a running command can write to while
// the test reads it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestCheckClean(t *testing.T) {
	t.Parallel()

	path := write(t, t.TempDir(), "ok.dbml", "Table users { id int }\n")
	code, stdout, stderr := run(t, "check", path)
	assert.Equal(t, 0, code, stderr)
	assert.Empty(t, stdout)
}

func TestCheckErrors(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	path := write(t, t.TempDir(), "bad.dbml", "Table users { id int")
	code, stdout, _ := run(t, "check", "--compact", "--color", "never", path)
	assert.Equal(1, code)
	assert.Equal(
		path+":1:21: error: expected `}` to close table body, found end of input\nencountered 1 error\n",
		stdout,
	)

	code, stdout, _ = run(t, "check", "--color", "never", path)
	assert.Equal(1, code)
	assert.Contains(stdout, "1 | Table users { id int")
	assert.Contains(stdout, "encountered 1 error")

	code, stdout, _ = run(t, "check", "--format", "table", path)
	assert.Equal(1, code)
	assert.Contains(stdout, "MESSAGE")
	assert.Contains(stdout, "expected `}` to close table body")
}

func TestCheckDirectory(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	dir := t.TempDir()
	write(t, dir, "a.dbml", "Enum e { a }")
	bad := write(t, dir, "nested/b.dbml", "Enum e { ) }")
	write(t, dir, "nested/ignored.txt", "}}}")

	code, stdout, _ := run(t, "check", "--compact", "--color", "never", dir)
	assert.Equal(1, code)
	assert.Equal(bad+":1:10: error: unmatched `)` in enum body\nencountered 1 error\n", stdout)

	code, stdout, _ = run(t, "check", "--compact", filepath.Join(dir, "*.dbml"))
	assert.Equal(0, code)
	assert.Empty(stdout)
}

func TestUsageErrors(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	code, _, stderr := run(t, "check", filepath.Join(t.TempDir(), "missing.dbml"))
	assert.Equal(2, code)
	assert.True(strings.HasPrefix(stderr, "dbmlc: "), stderr)

	path := write(t, t.TempDir(), "ok.dbml", "")
	code, _, stderr = run(t, "check", "--format", "xml", path)
	assert.Equal(2, code)
	assert.Contains(stderr, "invalid config")

	code, _, _ = run(t, "dump")
	assert.Equal(2, code)
}

func TestDump(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	text := "Enum e { a }"
	path := write(t, t.TempDir(), "e.dbml", text)

	code, stdout, stderr := run(t, "dump", path)
	assert.Equal(0, code, stderr)
	assert.Equal(tree.Dump(dbml.Parse(path, text).Syntax()), stdout)

	code, stdout, _ = run(t, "dump", "--yaml", path)
	assert.Equal(0, code)
	assert.True(strings.HasPrefix(stdout, "kind: FILE\nspan: 0..12\n"), stdout)
	assert.Contains(stdout, "text: Enum")
	assert.NotContains(stdout, "SPACE")

	_, stdout, _ = run(t, "dump", "--yaml", "--trivia", path)
	assert.Contains(stdout, "kind: SPACE")
}

func TestWatch(t *testing.T) {
	t.Parallel()

	sep := string(filepath.Separator)
	tests := []struct {
		name string
		arg  func(dir string) string
	}{
		{"clean", func(dir string) string { return filepath.Join(dir, "a.dbml") }},
		{"unclean", func(dir string) string { return dir + sep + "." + sep + "a.dbml" }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			path := write(t, dir, "a.dbml", "Table users { id int }\n")

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			var stdout, stderr syncBuffer
			exit := make(chan int, 1)
			go func() {
				args := []string{"watch", "--compact", "--color", "never", test.arg(dir)}
				exit <- cli.Main(ctx, args, &stdout, &stderr)
			}()

			require.Eventually(t, func() bool {
				return strings.Contains(stderr.String(), "watching for changes")
			}, 10*time.Second, 10*time.Millisecond)
			assert.Empty(t, stdout.String())

			require.NoError(t, os.WriteFile(path, []byte("Table users { id int"), 0o600))
			want := path + ":1:21: error: expected `}` to close table body, found end of input\n"
			require.Eventually(t, func() bool {
				return strings.Contains(stdout.String(), want)
			}, 10*time.Second, 10*time.Millisecond)
			assert.NotContains(t, stderr.String(), "reload failed")

			cancel()
			select {
			case code := <-exit:
				assert.Equal(t, 0, code)
			case <-time.After(10 * time.Second):
				t.Fatal("watch did not stop")
			}
		})
	}
}
