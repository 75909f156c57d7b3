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

package ast

import (
	"iter"

	"github.com/bufbuild/dbml/syntax"
	"github.com/bufbuild/dbml/tree"
)

// File is the root of a syntax tree.
type File struct{ view }

// CastFile wraps n if it is a file node.
func CastFile(n *tree.Node) (File, bool) {
	v, ok := cast(n, syntax.File)
	return File{v}, ok
}

// Decl is any top-level declaration.
type Decl interface {
	Node
	isDecl()
}

// CastDecl wraps n in the view for whichever declaration it is.
func CastDecl(n *tree.Node) (Decl, bool) {
	if n == nil {
		return nil, false
	}
	v := view{n}
	switch n.Kind() {
	case syntax.TableDecl:
		return TableDecl{v}, true
	case syntax.EnumDecl:
		return EnumDecl{v}, true
	case syntax.RefDecl:
		return RefDecl{v}, true
	case syntax.ProjectDecl:
		return ProjectDecl{v}, true
	case syntax.TableGroupDecl:
		return TableGroupDecl{v}, true
	case syntax.NoteDecl:
		return NoteDecl{v}, true
	default:
		return nil, false
	}
}

// Decls yields the declarations of this file, skipping error nodes.
func (f File) Decls() iter.Seq[Decl] {
	return func(yield func(Decl) bool) {
		if f.n == nil {
			return
		}
		for c := range f.n.ChildNodes() {
			if d, ok := CastDecl(c); ok && !yield(d) {
				return
			}
		}
	}
}

// Errors yields the error nodes at the top level of this file.
func (f File) Errors() iter.Seq[*tree.Node] {
	return func(yield func(*tree.Node) bool) {
		f.children(syntax.ErrorNode, yield)
	}
}

// Tables yields the table declarations of this file.
func (f File) Tables() iter.Seq[TableDecl] {
	return each(f.view, syntax.TableDecl, func(v view) TableDecl { return TableDecl{v} })
}

// Enums yields the enum declarations of this file.
func (f File) Enums() iter.Seq[EnumDecl] {
	return each(f.view, syntax.EnumDecl, func(v view) EnumDecl { return EnumDecl{v} })
}

// Refs yields the standalone reference declarations of this file.
func (f File) Refs() iter.Seq[RefDecl] {
	return each(f.view, syntax.RefDecl, func(v view) RefDecl { return RefDecl{v} })
}

// TableGroups yields the table group declarations of this file.
func (f File) TableGroups() iter.Seq[TableGroupDecl] {
	return each(f.view, syntax.TableGroupDecl, func(v view) TableGroupDecl { return TableGroupDecl{v} })
}

// Notes yields the top-level notes of this file.
func (f File) Notes() iter.Seq[NoteDecl] {
	return each(f.view, syntax.NoteDecl, func(v view) NoteDecl { return NoteDecl{v} })
}

// Project returns the first project declaration of this file, or a zero
// view.
func (f File) Project() ProjectDecl {
	return ProjectDecl{castOrZero(f.child(syntax.ProjectDecl), syntax.ProjectDecl)}
}

// Table returns the table with the given name, or a zero view. Both the
// declared name and the alias are matched.
func (f File) Table(name string) TableDecl {
	if name == "" {
		return TableDecl{}
	}
	for t := range f.Tables() {
		if (!t.Name().IsZero() && t.Name().String() == name) ||
			(!t.Alias().IsZero() && t.Alias().String() == name) {
			return t
		}
	}
	return TableDecl{}
}

// TableDecl is a table declaration.
//
//	Table users as U [headercolor: #fff] { ... }
type TableDecl struct{ view }

var (
	_ Named       = TableDecl{}
	_ HasBody     = TableDecl{}
	_ HasSettings = TableDecl{}
)

// CastTableDecl wraps n if it is a table declaration.
func CastTableDecl(n *tree.Node) (TableDecl, bool) {
	v, ok := cast(n, syntax.TableDecl)
	return TableDecl{v}, ok
}

func (TableDecl) isDecl() {}

// Name implements [Named].
func (t TableDecl) Name() Name { return Name{castOrZero(t.child(syntax.Name), syntax.Name)} }

// Alias returns the name following `as`, if any.
func (t TableDecl) Alias() Name {
	alias := t.child(syntax.TableAlias)
	if alias == nil {
		return Name{}
	}
	return Name{castOrZero(alias.ChildNode(syntax.Name), syntax.Name)}
}

// Settings implements [HasSettings].
func (t TableDecl) Settings() Settings { return settingsOf(t.view) }

// Body implements [HasBody].
func (t TableDecl) Body() Body { return bodyOf(t.view, syntax.TableBody) }

// Columns yields the columns of this table.
func (t TableDecl) Columns() iter.Seq[Column] {
	return each(t.Body().view, syntax.Column, func(v view) Column { return Column{v} })
}

// Column returns the column with the given name, or a zero view.
func (t TableDecl) Column(name string) Column {
	for c := range t.Columns() {
		if c.Name().String() == name {
			return c
		}
	}
	return Column{}
}

// Indexes yields the indexes of every indexes block in this table.
func (t TableDecl) Indexes() iter.Seq[Index] {
	return func(yield func(Index) bool) {
		t.Body().children(syntax.IndexesBlock, func(n *tree.Node) bool {
			for idx := range (IndexesBlock{view{n}}).Indexes() {
				if !yield(idx) {
					return false
				}
			}
			return true
		})
	}
}

// Note returns the note inside this table's body, or a zero view.
func (t TableDecl) Note() NoteDecl {
	return NoteDecl{castOrZero(t.Body().child(syntax.NoteDecl), syntax.NoteDecl)}
}

// Column is a column of a table.
//
//	id int [pk, increment]
type Column struct{ view }

var (
	_ Named       = Column{}
	_ HasSettings = Column{}
)

// CastColumn wraps n if it is a column.
func CastColumn(n *tree.Node) (Column, bool) {
	v, ok := cast(n, syntax.Column)
	return Column{v}, ok
}

// Name implements [Named].
func (c Column) Name() Name { return Name{castOrZero(c.child(syntax.Name), syntax.Name)} }

// Type returns the column's type.
func (c Column) Type() TypeRef { return TypeRef{castOrZero(c.child(syntax.TypeRef), syntax.TypeRef)} }

// Settings implements [HasSettings].
func (c Column) Settings() Settings { return settingsOf(c.view) }

// TypeRef is the type of a column.
//
//	varchar(255), decimal(10, 2), text[]
type TypeRef struct{ view }

// CastTypeRef wraps n if it is a type reference.
func CastTypeRef(n *tree.Node) (TypeRef, bool) {
	v, ok := cast(n, syntax.TypeRef)
	return TypeRef{v}, ok
}

// Name returns the name of the type.
func (t TypeRef) Name() Name { return Name{castOrZero(t.child(syntax.Name), syntax.Name)} }

// Args yields the arguments in parentheses after the type name.
func (t TypeRef) Args() iter.Seq[Expr] {
	return exprs(t.child(syntax.TypeArgs))
}

// Dims returns the number of `[]` suffixes on the type.
func (t TypeRef) Dims() int {
	if t.n == nil {
		return 0
	}
	var n int
	for c := range t.n.Children() {
		if c.Kind() == syntax.Brackets {
			n++
		}
	}
	return n
}

// IndexesBlock is the `indexes { ... }` block of a table.
type IndexesBlock struct{ view }

var _ HasBody = IndexesBlock{}

// CastIndexesBlock wraps n if it is an indexes block.
func CastIndexesBlock(n *tree.Node) (IndexesBlock, bool) {
	v, ok := cast(n, syntax.IndexesBlock)
	return IndexesBlock{v}, ok
}

// Body implements [HasBody].
func (b IndexesBlock) Body() Body { return bodyOf(b.view, syntax.IndexesBody) }

// Indexes yields the indexes in this block.
func (b IndexesBlock) Indexes() iter.Seq[Index] {
	return each(b.Body().view, syntax.Index, func(v view) Index { return Index{v} })
}

// Index is a single index of a table.
//
//	(id, name) [unique]
type Index struct{ view }

var _ HasSettings = Index{}

// CastIndex wraps n if it is an index.
func CastIndex(n *tree.Node) (Index, bool) {
	v, ok := cast(n, syntax.Index)
	return Index{v}, ok
}

// IsComposite returns whether this index is a parenthesized list.
func (i Index) IsComposite() bool { return i.child(syntax.IndexTuple) != nil }

// Columns returns the indexed columns. Backtick expressions are returned
// without their backticks.
func (i Index) Columns() []string {
	parent := i.n
	if tuple := i.child(syntax.IndexTuple); tuple != nil {
		parent = tuple
	}
	if parent == nil {
		return nil
	}

	var cols []string
	for c := range parent.ChildNodes() {
		switch c.Kind() {
		case syntax.Name:
			cols = append(cols, Name{view{c}}.String())
		case syntax.Literal:
			if s, ok := (Literal{view{c}}).Value(); ok {
				cols = append(cols, s)
			}
		}
	}
	return cols
}

// Settings implements [HasSettings].
func (i Index) Settings() Settings { return settingsOf(i.view) }

// EnumDecl is an enum declaration.
type EnumDecl struct{ view }

var (
	_ Named   = EnumDecl{}
	_ HasBody = EnumDecl{}
)

// CastEnumDecl wraps n if it is an enum declaration.
func CastEnumDecl(n *tree.Node) (EnumDecl, bool) {
	v, ok := cast(n, syntax.EnumDecl)
	return EnumDecl{v}, ok
}

func (EnumDecl) isDecl() {}

// Name implements [Named].
func (e EnumDecl) Name() Name { return Name{castOrZero(e.child(syntax.Name), syntax.Name)} }

// Body implements [HasBody].
func (e EnumDecl) Body() Body { return bodyOf(e.view, syntax.EnumBody) }

// Values yields the values of this enum.
func (e EnumDecl) Values() iter.Seq[EnumValue] {
	return each(e.Body().view, syntax.EnumValue, func(v view) EnumValue { return EnumValue{v} })
}

// EnumValue is a value of an enum.
type EnumValue struct{ view }

var (
	_ Named       = EnumValue{}
	_ HasSettings = EnumValue{}
)

// CastEnumValue wraps n if it is an enum value.
func CastEnumValue(n *tree.Node) (EnumValue, bool) {
	v, ok := cast(n, syntax.EnumValue)
	return EnumValue{v}, ok
}

// Name implements [Named].
func (e EnumValue) Name() Name { return Name{castOrZero(e.child(syntax.Name), syntax.Name)} }

// Settings implements [HasSettings].
func (e EnumValue) Settings() Settings { return settingsOf(e.view) }

// ProjectDecl is the project declaration.
type ProjectDecl struct{ view }

var (
	_ Named   = ProjectDecl{}
	_ HasBody = ProjectDecl{}
)

// CastProjectDecl wraps n if it is a project declaration.
func CastProjectDecl(n *tree.Node) (ProjectDecl, bool) {
	v, ok := cast(n, syntax.ProjectDecl)
	return ProjectDecl{v}, ok
}

func (ProjectDecl) isDecl() {}

// Name implements [Named]. The name of a project is optional.
func (p ProjectDecl) Name() Name { return Name{castOrZero(p.child(syntax.Name), syntax.Name)} }

// Body implements [HasBody].
func (p ProjectDecl) Body() Body { return bodyOf(p.view, syntax.ProjectBody) }

// Properties yields the properties of this project.
func (p ProjectDecl) Properties() iter.Seq[Property] {
	return each(p.Body().view, syntax.Property, func(v view) Property { return Property{v} })
}

// Property returns the value of the named property, or nil.
func (p ProjectDecl) Property(name string) Expr {
	for prop := range p.Properties() {
		if prop.Name().String() == name {
			return prop.Value()
		}
	}
	return nil
}

// Note returns the note inside this project's body, or a zero view.
func (p ProjectDecl) Note() NoteDecl {
	return NoteDecl{castOrZero(p.Body().child(syntax.NoteDecl), syntax.NoteDecl)}
}

// Property is a `key: value` entry in a project body.
type Property struct{ view }

var _ Named = Property{}

// CastProperty wraps n if it is a property.
func CastProperty(n *tree.Node) (Property, bool) {
	v, ok := cast(n, syntax.Property)
	return Property{v}, ok
}

// Name implements [Named].
func (p Property) Name() Name { return Name{castOrZero(p.child(syntax.Name), syntax.Name)} }

// Value returns the property's value, or nil if it is missing or is a run
// of words.
func (p Property) Value() Expr { return valueOf(p.view) }

// TableGroupDecl is a table group declaration.
type TableGroupDecl struct{ view }

var (
	_ Named       = TableGroupDecl{}
	_ HasBody     = TableGroupDecl{}
	_ HasSettings = TableGroupDecl{}
)

// CastTableGroupDecl wraps n if it is a table group declaration.
func CastTableGroupDecl(n *tree.Node) (TableGroupDecl, bool) {
	v, ok := cast(n, syntax.TableGroupDecl)
	return TableGroupDecl{v}, ok
}

func (TableGroupDecl) isDecl() {}

// Name implements [Named].
func (g TableGroupDecl) Name() Name { return Name{castOrZero(g.child(syntax.Name), syntax.Name)} }

// Settings implements [HasSettings].
func (g TableGroupDecl) Settings() Settings { return settingsOf(g.view) }

// Body implements [HasBody].
func (g TableGroupDecl) Body() Body { return bodyOf(g.view, syntax.TableGroupBody) }

// Tables yields the names of the tables in this group.
func (g TableGroupDecl) Tables() iter.Seq[PathExpr] {
	return func(yield func(PathExpr) bool) {
		g.Body().children(syntax.TableGroupItem, func(n *tree.Node) bool {
			return yield(PathExpr{castOrZero(n.ChildNode(syntax.Path), syntax.Path)})
		})
	}
}

// NoteDecl is a note, either standalone or inside a table or project.
//
//	Note: 'text'
//	Note name { 'text' }
type NoteDecl struct{ view }

var (
	_ Named   = NoteDecl{}
	_ HasBody = NoteDecl{}
)

// CastNoteDecl wraps n if it is a note.
func CastNoteDecl(n *tree.Node) (NoteDecl, bool) {
	v, ok := cast(n, syntax.NoteDecl)
	return NoteDecl{v}, ok
}

func (NoteDecl) isDecl() {}

// Name implements [Named]. Only standalone notes have names.
func (n NoteDecl) Name() Name { return Name{castOrZero(n.child(syntax.Name), syntax.Name)} }

// Body implements [HasBody]. Notes written with a colon have no body.
func (n NoteDecl) Body() Body { return bodyOf(n.view, syntax.NoteBody) }

// Content returns the text of the note: the value of its string literals,
// joined with newlines.
func (n NoteDecl) Content() string {
	var parts []string
	add := func(e Expr) {
		if lit, ok := e.(Literal); ok {
			if s, ok := lit.Value(); ok {
				parts = append(parts, s)
			}
		}
	}

	if body := n.Body(); !body.IsZero() {
		for c := range body.Items() {
			if e, ok := CastExpr(c); ok {
				add(e)
			}
		}
	} else if e := valueOf(n.view); e != nil {
		add(e)
	}
	return joinLines(parts)
}
