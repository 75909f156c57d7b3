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

package ast_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/dbml/ast"
	"github.com/bufbuild/dbml/green"
	"github.com/bufbuild/dbml/parser"
	"github.com/bufbuild/dbml/syntax"
	"github.com/bufbuild/dbml/token"
	"github.com/bufbuild/dbml/tree"
)

const schema = `Project shop {
  database_type: 'PostgreSQL'
  Note: 'An online shop'
}

Table public.users as U [headercolor: #3498db] {
  id int [pk, increment]
  "full name" varchar(255) [not null, default: 'n/a']
  tags text[]
  balance decimal(10, 2) [default: -1.5]

  indexes {
    (id, "full name") [unique]
    ` + "`lower(tags)`" + `
  }

  Note: 'Registered users'
}

Table posts {
  id int
  author_id int [ref: > U.id]
}

Enum status {
  active
  banned [note: 'no access']
}

Ref author: posts.author_id > users.id [delete: cascade, update: set null]

Ref {
  posts.(id, author_id) <> users.(id, tags)
}

TableGroup content {
  posts
  public.users
}

Note readme {
  'line one'
  'line\ttwo'
}
`

func parse(t *testing.T, text string) ast.File {
	t.Helper()
	b := green.NewBuilder(nil, 0, nil)
	require.NoError(t, parser.Parse(token.NewStream(text), b, parser.Options{}))
	file, ok := ast.CastFile(tree.New(b.Finish()))
	require.True(t, ok)
	return file
}

func TestDecls(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	file := parse(t, schema)

	var kinds []syntax.Kind
	for d := range file.Decls() {
		kinds = append(kinds, d.Syntax().Kind())
	}
	assert.Equal([]syntax.Kind{
		syntax.ProjectDecl, syntax.TableDecl, syntax.TableDecl, syntax.EnumDecl,
		syntax.RefDecl, syntax.RefDecl, syntax.TableGroupDecl, syntax.NoteDecl,
	}, kinds)
	assert.Empty(slices.Collect(file.Errors()))
	assert.Len(slices.Collect(file.Tables()), 2)
	assert.Len(slices.Collect(file.Refs()), 2)
}

func TestProject(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	project := parse(t, schema).Project()
	require.False(t, project.IsZero())
	assert.Equal("shop", project.Name().String())
	assert.True(project.Body().IsClosed())

	lit, ok := project.Property("database_type").(ast.Literal)
	require.True(t, ok)
	v, _ := lit.Value()
	assert.Equal("PostgreSQL", v)
	assert.Nil(project.Property("missing"))
	assert.Equal("An online shop", project.Note().Content())
}

func TestTable(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	file := parse(t, schema)
	users := file.Table("U")
	require.False(t, users.IsZero())
	assert.Equal([]string{"public", "users"}, users.Name().Parts())
	assert.Equal("public.users", users.Name().String())
	assert.Equal("U", users.Alias().String())
	assert.True(users.Settings().Has("headercolor"))
	assert.True(tree.Equal(file.Table("public.users").Syntax(), users.Syntax()))
	assert.True(file.Table("nope").IsZero())
	assert.True(file.Table("").IsZero(), "tables without an alias do not match the empty name")
	assert.True(parse(t, "Table { id int }").Table("").IsZero())

	var names []string
	for c := range users.Columns() {
		names = append(names, c.Name().String())
	}
	assert.Equal([]string{"id", "full name", "tags", "balance"}, names)

	id := users.Column("id")
	assert.Equal("int", id.Type().Name().String())
	assert.True(id.Settings().Has("pk"))
	assert.True(id.Settings().Has("increment"))
	assert.False(id.Settings().Has("unique"))

	full := users.Column("full name")
	assert.Equal("varchar", full.Type().Name().String())
	var args []string
	for a := range full.Type().Args() {
		args = append(args, a.Syntax().Text())
	}
	assert.Equal([]string{"255"}, args)
	assert.True(full.Settings().Has("not null"))
	def, ok := full.Settings().Get("default")
	require.True(t, ok)
	assert.True(def.HasValue())
	s, _ := def.Value().(ast.Literal).Value()
	assert.Equal("n/a", s)

	assert.Equal(1, users.Column("tags").Type().Dims())

	balance, _ := users.Column("balance").Settings().Get("default")
	prefix, ok := balance.Value().(ast.PrefixExpr)
	require.True(t, ok)
	assert.Equal("-", prefix.Op().Text())
	n, ok := prefix.Operand().(ast.Literal).Number()
	assert.True(ok)
	assert.Equal(1.5, n)

	indexes := slices.Collect(users.Indexes())
	require.Len(t, indexes, 2)
	assert.True(indexes[0].IsComposite())
	assert.Equal([]string{"id", "full name"}, indexes[0].Columns())
	assert.True(indexes[0].Settings().Has("unique"))
	assert.False(indexes[1].IsComposite())
	assert.Equal([]string{"lower(tags)"}, indexes[1].Columns())

	assert.Equal("Registered users", users.Note().Content())
	assert.True(users.Column("missing").IsZero())
}

func TestInlineRef(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	posts := parse(t, schema).Table("posts")
	setting, ok := posts.Column("author_id").Settings().Get("ref")
	require.True(t, ok)

	ref := setting.Ref()
	assert.Equal(">", ref.Op())
	assert.Equal("U", ref.Target().Table())
	assert.Equal([]string{"id"}, ref.Target().Columns())
	assert.Nil(setting.Value())
}

func TestRefs(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	refs := slices.Collect(parse(t, schema).Refs())
	require.Len(t, refs, 2)

	named := refs[0]
	assert.Equal("author", named.Name().String())
	assert.True(named.Body().IsZero())
	rels := slices.Collect(named.Relations())
	require.Len(t, rels, 1)
	assert.Equal(">", rels[0].Op())
	assert.Equal("posts", rels[0].Left().Table())
	assert.Equal([]string{"author_id"}, rels[0].Left().Columns())
	assert.Equal("users", rels[0].Right().Table())

	onUpdate, ok := rels[0].Settings().Get("update")
	require.True(t, ok)
	assert.Equal("set null", onUpdate.Words())
	assert.Nil(onUpdate.Value())
	onDelete, _ := rels[0].Settings().Get("delete")
	assert.Equal("cascade", onDelete.Value().(ast.PathExpr).String())
	assert.Empty(onDelete.Words())

	block := refs[1]
	assert.True(block.Name().IsZero())
	rels = slices.Collect(block.Relations())
	require.Len(t, rels, 1)
	assert.Equal("<>", rels[0].Op())
	assert.True(rels[0].Left().IsComposite())
	assert.Equal("posts", rels[0].Left().Table())
	assert.Equal([]string{"id", "author_id"}, rels[0].Left().Columns())
	assert.Equal([]string{"id", "tags"}, rels[0].Right().Columns())
}

func TestEnumAndGroup(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	file := parse(t, schema)
	enums := slices.Collect(file.Enums())
	require.Len(t, enums, 1)
	var values []string
	for v := range enums[0].Values() {
		values = append(values, v.Name().String())
	}
	assert.Equal([]string{"active", "banned"}, values)

	groups := slices.Collect(file.TableGroups())
	require.Len(t, groups, 1)
	var tables []string
	for p := range groups[0].Tables() {
		tables = append(tables, p.String())
	}
	assert.Equal([]string{"posts", "public.users"}, tables)

	notes := slices.Collect(file.Notes())
	require.Len(t, notes, 1)
	assert.Equal("readme", notes[0].Name().String())
	assert.Equal("line one\nline\ttwo", notes[0].Content())
}

func TestMalformed(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	file := parse(t, "Table {\n  id\n}\n}")
	tables := slices.Collect(file.Tables())
	require.Len(t, tables, 1)

	table := tables[0]
	assert.True(table.Name().IsZero())
	assert.Empty(table.Name().String())
	assert.Nil(table.Name().Parts())
	assert.True(table.Alias().IsZero())
	assert.Empty(slices.Collect(table.Settings().All()))

	column := table.Column("id")
	require.False(t, column.IsZero())
	assert.True(column.Type().IsZero())
	assert.Zero(column.Type().Dims())
	assert.Empty(slices.Collect(column.Type().Args()))

	assert.Len(slices.Collect(file.Errors()), 1)

	var zero ast.TableDecl
	assert.True(zero.Body().IsZero())
	assert.False(zero.Body().IsClosed())
	assert.Empty(slices.Collect(zero.Columns()))
	assert.Empty(zero.Text())
}

func TestExpr(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	project := parse(t, "Project {\n  a: (1 + 2) * x.y\n  b: `now()`\n  c: #fff\n}").Project()
	bin, ok := project.Property("a").(ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal("*", bin.Op().Text())
	paren, ok := bin.Left().(ast.ParenExpr)
	require.True(t, ok)
	assert.Equal("1 + 2", paren.Inner().Syntax().Text())
	assert.Equal([]string{"x", "y"}, bin.Right().(ast.PathExpr).Parts())

	lit := project.Property("b").(ast.Literal)
	assert.Equal(syntax.Backtick, lit.Kind())
	v, ok := lit.Value()
	assert.True(ok)
	assert.Equal("now()", v)

	color := project.Property("c").(ast.Literal)
	assert.Equal(syntax.ColorLit, color.Kind())
	_, ok = color.Value()
	assert.False(ok)
	_, ok = color.Number()
	assert.False(ok)
}
