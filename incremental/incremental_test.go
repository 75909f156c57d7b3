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

package incremental_test

import (
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/dbml/green"
	"github.com/bufbuild/dbml/incremental"
	"github.com/bufbuild/dbml/parser"
	"github.com/bufbuild/dbml/syntax"
)

func parse(t *testing.T, text string) *incremental.Result {
	t.Helper()
	res, err := incremental.Parse(text, incremental.Options{Cache: new(green.Cache)})
	require.NoError(t, err)
	return res
}

// reparse applies edit incrementally and checks the result against a full
// parse of the edited text.
func reparse(t *testing.T, old *incremental.Result, edit incremental.Edit) *incremental.Result {
	t.Helper()
	res, err := incremental.Reparse(old, edit, incremental.Options{})
	require.NoError(t, err)

	want := parse(t, res.Text)
	assert.True(t, green.Equal(want.Root, res.Root), "reparse differs from a full parse")
	assert.Empty(t, cmp.Diff(want.Diagnostics, res.Diagnostics, cmpopts.EquateEmpty()))
	assert.Equal(t, res.Text, res.Root.Text())
	return res
}

func TestReparseBlock(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	old := parse(t, "Table users { id int }\nEnum e { a }")
	res := reparse(t, old, incremental.Edit{Start: 20, Inserted: "\n  note text"})

	assert.True(res.Incremental)
	assert.Empty(res.Fallback)
	assert.Equal("Table users { id int\n  note text }\nEnum e { a }", res.Text)

	oldTable := old.Root.Child(0).(*green.Node)
	newTable := res.Root.Child(0).(*green.Node)
	assert.NotSame(oldTable, newTable)
	assert.Same(oldTable.Child(2), newTable.Child(2), "the table's name is shared")
	assert.NotSame(oldTable.Child(4), newTable.Child(4), "the table's body is rebuilt")
	assert.Same(old.Root.Child(1), res.Root.Child(1))
	assert.Same(old.Root.Child(2), res.Root.Child(2), "sibling declarations are shared")

	// The old tree is untouched.
	assert.Equal("Table users { id int }\nEnum e { a }", old.Root.Text())
}

func TestReparseNested(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	text := "Table t {\n  id int\n  indexes {\n    id\n  }\n}"
	old := parse(t, text)
	at := strings.Index(text, "    id") + len("    id")
	res := reparse(t, old, incremental.Edit{Start: at, Inserted: " [unique]"})
	assert.True(res.Incremental)

	// Only the indexes block was reparsed; the column beside it is shared.
	oldBody := old.Root.Child(0).(*green.Node).Child(4).(*green.Node)
	newBody := res.Root.Child(0).(*green.Node).Child(4).(*green.Node)
	assert.Equal(syntax.TableBody, newBody.Kind())
	var oldColumn, newColumn green.Element
	for _, c := range oldBody.Children() {
		if c.Kind() == syntax.Column {
			oldColumn = c
		}
	}
	for _, c := range newBody.Children() {
		if c.Kind() == syntax.Column {
			newColumn = c
		}
	}
	require.NotNil(t, oldColumn)
	assert.Same(oldColumn, newColumn)
}

func TestReparseFallback(t *testing.T) {
	t.Parallel()

	text := "Table users { id int }"
	tests := []struct {
		name   string
		edit   incremental.Edit
		reason string
	}{
		{"top level", incremental.Edit{Start: len(text), Inserted: "\n"}, "no enclosing block"},
		{"closing brace", incremental.Edit{Start: 21, Removed: 1}, "no enclosing block"},
		{"opening brace", incremental.Edit{Start: 12, Removed: 1, Inserted: "{ "}, "no enclosing block"},
		{"unbalanced", incremental.Edit{Start: 20, Inserted: " {"}, "edited block is not balanced"},
		{"unterminated comment", incremental.Edit{Start: 20, Inserted: " /*"}, "edited block is not balanced"},
		{"new declaration", incremental.Edit{Start: 20, Inserted: "\nTable x { y int }"}, "edited block has leftover tokens"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res := reparse(t, parse(t, text), tt.edit)
			assert.False(t, res.Incremental)
			assert.Equal(t, tt.reason, res.Fallback)
		})
	}
}

func TestReparseDiagnostics(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	old := parse(t, "Table a { id }\nTable b { x }")
	require.Len(t, old.Diagnostics, 2)

	// Fixing the first error removes its diagnostic and shifts the second.
	res := reparse(t, old, incremental.Edit{Start: 12, Inserted: " int"})
	assert.True(res.Incremental)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(old.Diagnostics[1].Start+4, res.Diagnostics[0].Start)

	// Breaking it again brings a diagnostic back.
	res = reparse(t, res, incremental.Edit{Start: 12, Removed: 4})
	assert.True(res.Incremental)
	assert.Equal(old.Diagnostics, res.Diagnostics)
}

func TestReparseSequence(t *testing.T) {
	t.Parallel()

	res := parse(t, "Project p {\n}\nTable t {\n}\n")
	edits := []incremental.Edit{
		{Start: 12, Inserted: "  a: 1\n"},
		{Start: 17, Inserted: "1 + 2 * "},
		{Start: 39, Inserted: "  id int [pk]\n"},
		{Start: 12, Inserted: "  Note: 'x'\n"},
		{Start: 0, Inserted: "// header\n"},
	}
	for _, edit := range edits {
		res = reparse(t, res, edit)
	}
	assert.Contains(t, res.Text, "a: 1 + 2 * ")
}

func TestInvalidEdit(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	old := parse(t, "Table a {}")
	for _, edit := range []incremental.Edit{
		{Start: -1},
		{Start: 5, Removed: 100},
		{Start: 11},
		{Start: 2, Removed: -1},
	} {
		_, err := incremental.Reparse(old, edit, incremental.Options{})
		assert.ErrorIs(err, incremental.ErrInvalidEdit, "%v", edit)
	}
}

func TestCancellation(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	var epoch atomic.Uint64
	epoch.Store(5)
	opts := incremental.Options{Epoch: &epoch, Revision: 4}

	_, err := incremental.Parse("Table a {}", opts)
	assert.ErrorIs(err, parser.ErrCancelled)

	// A block reparse finishes regardless; only full parses are cancelled.
	old := parse(t, "Table a { }")
	res, err := incremental.Reparse(old, incremental.Edit{Start: 10, Inserted: "id int "}, opts)
	assert.NoError(err)
	assert.True(res.Incremental)

	_, err = incremental.Reparse(old, incremental.Edit{Start: 0, Inserted: "\n"}, opts)
	assert.ErrorIs(err, parser.ErrCancelled)
}

func TestDiff(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	assert.Equal(incremental.Edit{Start: 2, Inserted: "X"}, incremental.Diff("abc", "abXc"))
	assert.Equal(incremental.Edit{Start: 5, Removed: 6}, incremental.Diff("hello world", "hello"))
	assert.Equal(incremental.Edit{Start: 4}, incremental.Diff("same", "same"))
	assert.Equal(incremental.Edit{Start: 0, Removed: 1, Inserted: "b"}, incremental.Diff("a", "b"))

	for _, pair := range [][2]string{
		{"Table a {}", "Table ab {}"},
		{"aaa", "aa"},
		{"", "x"},
		{"abcabc", "abc"},
	} {
		edit := incremental.Diff(pair[0], pair[1])
		got, err := edit.Apply(pair[0])
		assert.NoError(err)
		assert.Equal(pair[1], got, "%q -> %q", pair[0], pair[1])
	}
}

func TestEdit(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	edit := incremental.Edit{Start: 3, Removed: 2, Inserted: "xyz"}
	assert.Equal(5, edit.End())
	assert.Equal(1, edit.Delta())
	assert.Equal(`3..5 -> "xyz"`, edit.String())

	got, err := edit.Apply("0123456")
	assert.NoError(err)
	assert.Equal("012xyz56", got)
}
