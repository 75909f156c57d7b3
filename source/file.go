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

// Package source provides source file book-keeping: mapping byte offsets to
// user-facing line and column positions.
package source

import (
	"strings"
	"sync"
	"unicode/utf16"

	"github.com/rivo/uniseg"
	"github.com/tidwall/btree"
)

// Unit is a unit of measurement for columns.
type Unit int8

const (
	Bytes     Unit = iota // UTF-8 code units.
	Runes                 // Unicode code points.
	UTF16                 // UTF-16 code units, as used by most editors.
	TermWidth             // Monospace terminal cells, measured per grapheme cluster.
)

// File is a source code file.
//
// Files are immutable once created and safe to share between goroutines. A
// nil *File behaves like an empty file with the path name "".
type File struct {
	path, text string

	once sync.Once
	// Maps the offset of the start of each line to its 0-indexed line number,
	// and the reverse.
	lines, starts btree.Map[int, int]
}

// Location is a user-displayable location within a file.
type Location struct {
	// The byte offset for this location.
	Offset int

	// The line and column for this location, 1-indexed. The units of Column
	// depend on the [Unit] used to construct it.
	Line, Column int
}

// NewFile constructs a new source file.
func NewFile(path, text string) *File {
	return &File{path: path, text: text}
}

// Path returns this file's path.
func (f *File) Path() string {
	if f == nil {
		return ""
	}
	return f.path
}

// Text returns this file's contents.
func (f *File) Text() string {
	if f == nil {
		return ""
	}
	return f.text
}

// Lines returns the number of lines in this file. A file always has at least
// one line, even if it is empty.
func (f *File) Lines() int {
	if f == nil {
		return 1
	}
	f.index()
	return f.lines.Len()
}

// Location converts a byte offset into a line and column.
//
// Offsets past the end of the file are clamped to it. This operation is
// O(log n) in the number of lines.
func (f *File) Location(offset int, units Unit) Location {
	if f == nil || offset <= 0 {
		return Location{Offset: 0, Line: 1, Column: 1}
	}
	offset = min(offset, len(f.text))

	start, line := f.lineStart(offset)
	chunk := f.text[start:offset]

	var column int
	switch units {
	case Bytes:
		column = len(chunk)
	case Runes:
		for range chunk {
			column++
		}
	case UTF16:
		for _, r := range chunk {
			column += utf16.RuneLen(r)
		}
	case TermWidth:
		column = uniseg.StringWidth(chunk)
	}

	return Location{Offset: offset, Line: line + 1, Column: column + 1}
}

// Offset converts a 1-indexed line and column, measured in units, back into
// a byte offset. Positions past the end of a line are clamped to the end of
// that line, excluding its newline.
//
// Panics if units is [TermWidth], which is not invertible.
func (f *File) Offset(line, column int, units Unit) int {
	if f == nil || line < 1 {
		return 0
	}
	if line > f.Lines() {
		return len(f.text)
	}

	start, end := f.LineOffsets(line)
	chunk := strings.TrimSuffix(f.text[start:end], "\n")
	column--

	switch units {
	case Bytes:
		return start + min(max(column, 0), len(chunk))
	case Runes, UTF16:
		for i, r := range chunk {
			if column <= 0 {
				return start + i
			}
			if units == UTF16 {
				column -= utf16.RuneLen(r)
			} else {
				column--
			}
		}
		return start + len(chunk)
	default:
		panic("dbml/source: cannot invert a TermWidth column")
	}
}

// Line returns the given 1-indexed line, including its trailing newline.
func (f *File) Line(line int) string {
	start, end := f.LineOffsets(line)
	return f.Text()[start:end]
}

// LineOffsets returns the byte range of the given 1-indexed line, including
// its trailing newline.
func (f *File) LineOffsets(line int) (int, int) {
	if f == nil {
		return 0, 0
	}
	f.index()

	start, ok := f.starts.Get(line - 1)
	if !ok {
		panic("dbml/source: line out of range")
	}
	if next, ok := f.starts.Get(line); ok {
		return start, next
	}
	return start, len(f.text)
}

// lineStart finds the start offset and 0-indexed number of the line
// containing offset.
func (f *File) lineStart(offset int) (start, line int) {
	f.index()
	f.lines.Descend(offset, func(k, v int) bool {
		start, line = k, v
		return false
	})
	return start, line
}

func (f *File) index() {
	f.once.Do(func() {
		f.lines.Load(0, 0)
		f.starts.Load(0, 0)
		line, next := 0, 0
		text := f.text
		for {
			nl := strings.IndexByte(text, '\n') + 1
			if nl == 0 {
				break
			}
			text = text[nl:]
			next += nl
			line++
			f.lines.Load(next, line)
			f.starts.Load(line, next)
		}
	})
}
