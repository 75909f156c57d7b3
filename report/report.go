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

// Package report provides a representation of diagnostics: user-facing
// messages about problems in a file, tied to a byte range within it.
//
// Diagnostics are data. Nothing in this module reports a problem with the
// input by returning an error or panicking; it appends to a [Report] instead.
package report

import (
	"cmp"
	"fmt"
	"slices"
)

// Level represents the severity of a diagnostic message.
type Level int8

const (
	// Red. Indicates that the input is not well-formed.
	Error Level = 1 + iota
	// Yellow. Indicates something that probably should not be ignored.
	Warning
	// Cyan. The diagnostics version of "info".
	Remark
)

// String implements [fmt.Stringer].
func (l Level) String() string {
	switch l {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Remark:
		return "remark"
	default:
		return fmt.Sprintf("report.Level(%d)", int(l))
	}
}

// Tag is a machine-readable identification for a diagnostic.
//
// Tags should be lowercase identifiers separated by dashes.
type Tag string

// Tags for diagnostics generated while parsing.
const (
	TagLexical    Tag = "lexical"
	TagMissing    Tag = "missing-token"
	TagUnexpected Tag = "unexpected-token"
	TagStray      Tag = "stray-token"
)

// Apply implements [DiagnosticOption].
func (t Tag) Apply(d *Diagnostic) {
	if d.Tag != "" {
		panic("dbml/report: set diagnostic tag more than once")
	}
	d.Tag = t
}

// Span is a byte range within a file. End is exclusive.
type Span struct {
	Start, End int
}

// Len returns the length of this span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Contains returns whether other lies entirely within s.
func (s Span) Contains(other Span) bool {
	return s.Start <= other.Start && other.End <= s.End
}

// Shift returns this span moved by delta bytes.
func (s Span) Shift(delta int) Span {
	return Span{s.Start + delta, s.End + delta}
}

// String implements [fmt.Stringer].
func (s Span) String() string {
	return fmt.Sprintf("%d..%d", s.Start, s.End)
}

// Apply implements [DiagnosticOption], setting the diagnostic's span.
func (s Span) Apply(d *Diagnostic) {
	d.Span = s
}

// At returns a span starting at offset with the given length.
func At(offset, length int) Span {
	return Span{offset, offset + length}
}

// Diagnostic is a single message about the input.
type Diagnostic struct {
	Span
	Message string
	Level   Level
	Tag     Tag
}

// DiagnosticOption is an option that can be applied to a [Diagnostic].
//
// Nil values passed to [Diagnostic.With] are ignored.
type DiagnosticOption interface {
	Apply(*Diagnostic)
}

// With applies the given options to this diagnostic.
func (d *Diagnostic) With(options ...DiagnosticOption) *Diagnostic {
	for _, option := range options {
		if option != nil {
			option.Apply(d)
		}
	}
	return d
}

// Is checks whether this diagnostic has a particular tag.
func (d Diagnostic) Is(tag Tag) bool {
	return d.Tag == tag
}

// Error implements error, so that a diagnostic can be returned through
// ordinary error paths by consumers that want to.
func (d Diagnostic) Error() string {
	return fmt.Sprintf("%v: %v: %s", d.Span, d.Level, d.Message)
}

// Report is a collection of diagnostics.
//
// The zero value is empty and ready to use.
type Report struct {
	Diagnostics []Diagnostic
}

// Errorf pushes a new error diagnostic onto this report.
func (r *Report) Errorf(format string, args ...any) *Diagnostic {
	r.Diagnostics = append(r.Diagnostics, Diagnostic{
		Message: fmt.Sprintf(format, args...),
		Level:   Error,
	})
	return &r.Diagnostics[len(r.Diagnostics)-1]
}

// Push appends an already-constructed diagnostic.
func (r *Report) Push(d Diagnostic) {
	r.Diagnostics = append(r.Diagnostics, d)
}

// Len returns the number of diagnostics in this report.
func (r *Report) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Diagnostics)
}

// Count returns the number of diagnostics at the given level.
func (r *Report) Count(level Level) int {
	var n int
	for _, d := range r.Diagnostics {
		if d.Level == level {
			n++
		}
	}
	return n
}

// HasErrors returns whether this report contains any [Error] diagnostics.
func (r *Report) HasErrors() bool {
	return r.Count(Error) > 0
}

// Sort sorts this report's diagnostics by position. Diagnostics at the same
// position keep the order in which they were pushed.
func (r *Report) Sort() {
	slices.SortStableFunc(r.Diagnostics, func(a, b Diagnostic) int {
		return cmp.Or(
			cmp.Compare(a.Start, b.Start),
			cmp.Compare(a.End, b.End),
		)
	})
}

// Clone returns a deep copy of this report.
func (r *Report) Clone() *Report {
	if r == nil {
		return new(Report)
	}
	return &Report{Diagnostics: slices.Clone(r.Diagnostics)}
}
