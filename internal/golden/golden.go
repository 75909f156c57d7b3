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

// Package golden runs table-driven tests whose table lives in the file
// system: every input file under a directory is a test case, and each of the
// case's outputs is compared against a file next to it.
package golden

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pmezard/go-difflib/difflib"
)

// Corpus describes a directory of test cases.
type Corpus struct {
	// The directory holding the test cases, relative to the directory of the
	// test file that calls [Corpus.Run].
	Root string

	// The extension, without a dot, of the files that are test cases.
	Extension string

	// The outputs of each test case. The expected value of an output is read
	// from a file named after the test case plus a dot and the output's
	// extension; a missing file means the output is expected to be empty.
	Outputs []Output

	// An environment variable holding a glob. Test cases whose names match
	// it have their expected outputs rewritten instead of checked.
	Refresh string

	// Test runs one test case, returning one string per element of Outputs.
	Test func(t *testing.T, path, text string) []string
}

// Output is one output of a test case.
type Output struct {
	Extension string

	// Compares the actual and expected outputs, returning a description of
	// the mismatch or the empty string. Defaults to an exact comparison that
	// describes mismatches as a diff.
	Compare func(got, want string) string
}

// Run runs every test case in the corpus as a subtest of t.
func (c Corpus) Run(t *testing.T) {
	t.Helper()

	testDir := callerDir()
	root := filepath.Join(testDir, c.Root)
	cases, err := doublestar.Glob(os.DirFS(root), "**/*."+c.Extension, doublestar.WithFilesOnly())
	if err != nil {
		t.Fatalf("golden: listing %q: %v", root, err)
	}
	if len(cases) == 0 {
		t.Fatalf("golden: no *.%s files in %q", c.Extension, root)
	}
	slices.Sort(cases)

	var refresh string
	if c.Refresh != "" {
		refresh = os.Getenv(c.Refresh)
		if refresh != "" && !doublestar.ValidatePattern(refresh) {
			t.Fatalf("golden: %s=%q is not a valid glob", c.Refresh, refresh)
		}
	}

	for _, name := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(root, filepath.FromSlash(name))
			input, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("golden: reading %q: %v", path, err)
			}

			results := c.Test(t, name, string(input))
			if len(results) != len(c.Outputs) {
				t.Fatalf("golden: test returned %d outputs, want %d", len(results), len(c.Outputs))
			}

			rewrite := refresh != "" && doublestar.MatchUnvalidated(refresh, name)
			for i, output := range c.Outputs {
				outPath := path + "." + output.Extension
				if rewrite {
					if err := write(outPath, results[i]); err != nil {
						t.Errorf("golden: %v", err)
					}
					continue
				}

				want, err := os.ReadFile(outPath)
				if err != nil && !errors.Is(err, os.ErrNotExist) {
					t.Errorf("golden: reading %q: %v", outPath, err)
					continue
				}

				compare := output.Compare
				if compare == nil {
					compare = Diff
				}
				if msg := compare(results[i], string(want)); msg != "" {
					t.Errorf("mismatch in %s:\n%s", filepath.Base(outPath), msg)
				}
			}
		})
	}
}

// write updates an expected output, deleting the file if it would be empty.
func write(path, text string) error {
	if text == "" {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}
	return os.WriteFile(path, []byte(text), 0o644)
}

// Diff compares got and want exactly, describing a mismatch as a unified
// diff.
func Diff(got, want string) string {
	if got == want {
		return ""
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  2,
	})
	if err != nil {
		return err.Error()
	}
	return strings.TrimRight(diff, "\n")
}

// callerDir returns the directory of the file that called [Corpus.Run].
func callerDir() string {
	_, file, _, ok := runtime.Caller(2)
	if !ok {
		panic("golden: could not determine the test file's directory")
	}
	return filepath.Dir(file)
}

// Lines joins lines into an output, one per line, with a trailing newline
// unless there are none.
func Lines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return fmt.Sprintln(strings.Join(lines, "\n"))
}
