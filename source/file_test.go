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

package source_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bufbuild/dbml/source"
)

func TestLocation(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	f := source.NewFile("t.dbml", "ab\ncé\n😀x")
	assert.Equal(3, f.Lines())

	assert.Equal(source.Location{Offset: 0, Line: 1, Column: 1}, f.Location(0, source.Runes))
	assert.Equal(source.Location{Offset: 4, Line: 2, Column: 2}, f.Location(4, source.Runes))

	assert.Equal(3, f.Location(6, source.Runes).Column)
	assert.Equal(4, f.Location(6, source.Bytes).Column)
	assert.Equal(3, f.Location(6, source.UTF16).Column)

	assert.Equal(2, f.Location(11, source.Runes).Column)
	assert.Equal(3, f.Location(11, source.UTF16).Column)
	assert.Equal(3, f.Location(11, source.TermWidth).Column)

	end := f.Location(100, source.Bytes)
	assert.Equal(12, end.Offset)
	assert.Equal(3, end.Line)
}

func TestOffset(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	f := source.NewFile("t.dbml", "ab\ncé\n😀x")
	assert.Equal(11, f.Offset(3, 3, source.UTF16))
	assert.Equal(6, f.Offset(2, 3, source.Runes))
	assert.Equal(6, f.Offset(2, 99, source.Bytes))
	assert.Equal(12, f.Offset(9, 1, source.Bytes))
	assert.Equal(0, f.Offset(0, 1, source.Bytes))
	assert.Panics(func() { f.Offset(1, 1, source.TermWidth) })

	for _, offset := range []int{0, 1, 3, 4, 6, 7, 11} {
		loc := f.Location(offset, source.UTF16)
		assert.Equal(offset, f.Offset(loc.Line, loc.Column, source.UTF16), "offset %d", offset)
	}
}

func TestLines(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	f := source.NewFile("t.dbml", "ab\ncé\n😀x")
	start, end := f.LineOffsets(2)
	assert.Equal(3, start)
	assert.Equal(7, end)
	assert.Equal("cé\n", f.Line(2))
	assert.Equal("😀x", f.Line(3))
	assert.Panics(func() { f.LineOffsets(4) })

	assert.Equal(2, source.NewFile("", "x\n").Lines())
	assert.Equal(1, source.NewFile("", "").Lines())
}

func TestNilFile(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	var f *source.File
	assert.Empty(f.Path())
	assert.Empty(f.Text())
	assert.Equal(1, f.Lines())
	assert.Equal(source.Location{Line: 1, Column: 1}, f.Location(5, source.Runes))
}
