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

package dbml

import (
	"github.com/bufbuild/dbml/ast"
	"github.com/bufbuild/dbml/green"
	"github.com/bufbuild/dbml/incremental"
	"github.com/bufbuild/dbml/report"
	"github.com/bufbuild/dbml/source"
	"github.com/bufbuild/dbml/tree"
)

// File is a parsed schema file.
//
// A File is immutable and safe for concurrent use.
type File struct {
	source *source.File
	result *incremental.Result
	cache  *green.Cache
}

// Parse parses text. path is only used for diagnostics.
func Parse(path, text string) *File {
	cache := new(green.Cache)
	// Without an epoch to watch, parsing cannot be cancelled.
	result, _ := incremental.Parse(text, incremental.Options{Cache: cache})
	return &File{
		source: source.NewFile(path, text),
		result: result,
		cache:  cache,
	}
}

// FromResult wraps an already-parsed result.
func FromResult(path string, result *incremental.Result) *File {
	return &File{
		source: source.NewFile(path, result.Text),
		result: result,
		cache:  new(green.Cache),
	}
}

// Edit returns the file obtained by applying edit to f. f is unchanged.
//
// Returns an error only if the edit is out of range.
func (f *File) Edit(edit incremental.Edit) (*File, error) {
	result, err := incremental.Reparse(f.result, edit, incremental.Options{Cache: f.cache})
	if err != nil {
		return nil, err
	}
	return &File{
		source: source.NewFile(f.source.Path(), result.Text),
		result: result,
		cache:  f.cache,
	}, nil
}

// Path returns the path this file was parsed with.
func (f *File) Path() string { return f.source.Path() }

// Text returns the text of this file.
func (f *File) Text() string { return f.result.Text }

// Source returns this file's text with its line index.
func (f *File) Source() *source.File { return f.source }

// Green returns the root of this file's green tree.
func (f *File) Green() *green.Node { return f.result.Root }

// Syntax returns a cursor for the root of this file's tree.
func (f *File) Syntax() *tree.Node { return tree.New(f.result.Root) }

// AST returns the typed view of this file's tree.
func (f *File) AST() ast.File {
	file, _ := ast.CastFile(f.Syntax())
	return file
}

// Diagnostics returns this file's diagnostics, ordered by position.
//
// The returned slice must not be modified.
func (f *File) Diagnostics() []report.Diagnostic { return f.result.Diagnostics }

// Report returns a copy of this file's diagnostics as a report, for
// rendering.
func (f *File) Report() *report.Report {
	return &report.Report{Diagnostics: append([]report.Diagnostic(nil), f.result.Diagnostics...)}
}

// Result returns the underlying parse result.
func (f *File) Result() *incremental.Result { return f.result }

// Incremental returns whether this file was produced by an incremental
// reparse.
func (f *File) Incremental() bool { return f.result.Incremental }
