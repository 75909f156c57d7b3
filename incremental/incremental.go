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

// Package incremental updates syntax trees after edits.
//
// [Reparse] implements the block heuristic: it finds the smallest
// brace-delimited block that strictly contains an edit, reparses just that
// block, and splices the new block into the old tree. Every subtree outside
// the block is shared, by pointer, between the old and new trees. When the
// block cannot be isolated safely, Reparse parses the whole file instead;
// the two paths always produce the same tokens.
package incremental

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/bufbuild/dbml/green"
	"github.com/bufbuild/dbml/parser"
	"github.com/bufbuild/dbml/report"
	"github.com/bufbuild/dbml/token"
)

// ErrInvalidEdit is returned for an edit that does not fit the text it is
// applied to.
var ErrInvalidEdit = errors.New("dbml/incremental: edit out of range")

// Edit replaces a range of text.
type Edit struct {
	// The offset of the start of the replaced range.
	Start int
	// The length in bytes of the replaced range.
	Removed int
	// The text to put in its place.
	Inserted string
}

// End returns the end of the replaced range.
func (e Edit) End() int { return e.Start + e.Removed }

// Delta returns how much longer the text gets.
func (e Edit) Delta() int { return len(e.Inserted) - e.Removed }

// Span returns the replaced range.
func (e Edit) Span() report.Span { return report.Span{Start: e.Start, End: e.End()} }

// Apply returns text with the edit applied.
func (e Edit) Apply(text string) (string, error) {
	if e.Start < 0 || e.Removed < 0 || e.End() > len(text) {
		return "", fmt.Errorf("%w: %d+%d in text of length %d", ErrInvalidEdit, e.Start, e.Removed, len(text))
	}
	return text[:e.Start] + e.Inserted + text[e.End():], nil
}

// String implements [fmt.Stringer].
func (e Edit) String() string {
	return fmt.Sprintf("%v -> %q", e.Span(), e.Inserted)
}

// Options configures parsing.
type Options struct {
	// Interns tokens and nodes. If nil, a fresh cache is used for each parse.
	Cache *green.Cache

	// Cooperative cancellation; see [parser.Options].
	Epoch    *atomic.Uint64
	Revision uint64
}

// Result is a parsed file.
type Result struct {
	Text        string
	Root        *green.Node
	Diagnostics []report.Diagnostic

	// Whether this result was produced by splicing a reparsed block into a
	// previous tree.
	Incremental bool

	// If this result was produced by [Reparse] but not incrementally, why
	// the block heuristic did not apply.
	Fallback string
}

// Parse parses a whole file.
//
// The only possible error is [parser.ErrCancelled].
func Parse(text string, opts Options) (*Result, error) {
	var r report.Report
	b := green.NewBuilder(opts.Cache, 0, &r)
	err := parser.Parse(token.NewStream(text), b, parser.Options{
		Epoch:    opts.Epoch,
		Revision: opts.Revision,
	})
	if err != nil {
		return nil, err
	}

	r.Sort()
	return &Result{Text: text, Root: b.Finish(), Diagnostics: r.Diagnostics}, nil
}

// Reparse applies edit to old, producing a new result. old is not modified.
//
// Returns [ErrInvalidEdit] if the edit does not fit old.Text, or
// [parser.ErrCancelled] if a full reparse was needed and got cancelled.
func Reparse(old *Result, edit Edit, opts Options) (*Result, error) {
	text, err := edit.Apply(old.Text)
	if err != nil {
		return nil, err
	}

	res, reason := reparseBlock(old, edit, text, opts.Cache)
	if res != nil {
		return res, nil
	}

	res, err = Parse(text, opts)
	if err != nil {
		return nil, err
	}
	res.Fallback = reason
	return res, nil
}

// spliceDiagnostics merges the diagnostics of a reparsed block, which
// occupied old in the previous text, into the previous diagnostics.
func spliceDiagnostics(prev []report.Diagnostic, old report.Span, delta int, fresh []report.Diagnostic) []report.Diagnostic {
	out := make([]report.Diagnostic, 0, len(prev)+len(fresh))
	for _, d := range prev {
		switch {
		case d.Start > old.Start && d.End < old.End:
			// Produced by the old block; superseded by fresh.
		case d.Start >= old.End:
			d.Span = d.Span.Shift(delta)
			out = append(out, d)
		default:
			out = append(out, d)
		}
	}
	r := report.Report{Diagnostics: append(out, fresh...)}
	r.Sort()
	return r.Diagnostics
}

// Diff returns a single edit that turns before into after, replacing the
// shortest range it can.
func Diff(before, after string) Edit {
	n := min(len(before), len(after))

	var prefix int
	for prefix < n && before[prefix] == after[prefix] {
		prefix++
	}
	var suffix int
	for suffix < n-prefix && before[len(before)-1-suffix] == after[len(after)-1-suffix] {
		suffix++
	}

	return Edit{
		Start:    prefix,
		Removed:  len(before) - prefix - suffix,
		Inserted: after[prefix : len(after)-suffix],
	}
}
