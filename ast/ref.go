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

// RefDecl is a standalone reference declaration.
//
//	Ref name: posts.user_id > users.id
//	Ref { posts.(a, b) <> tags.(c, d) }
type RefDecl struct{ view }

var (
	_ Named   = RefDecl{}
	_ HasBody = RefDecl{}
)

// CastRefDecl wraps n if it is a reference declaration.
func CastRefDecl(n *tree.Node) (RefDecl, bool) {
	v, ok := cast(n, syntax.RefDecl)
	return RefDecl{v}, ok
}

func (RefDecl) isDecl() {}

// Name implements [Named]. The name of a reference is optional.
func (r RefDecl) Name() Name { return Name{castOrZero(r.child(syntax.Name), syntax.Name)} }

// Body implements [HasBody]. References written with a colon have no body.
func (r RefDecl) Body() Body { return bodyOf(r.view, syntax.RefBody) }

// Relations yields the relationships this declaration describes: one for
// the colon form, any number for the block form.
func (r RefDecl) Relations() iter.Seq[RefRelation] {
	wrap := func(v view) RefRelation { return RefRelation{v} }
	if body := r.Body(); !body.IsZero() {
		return each(body.view, syntax.RefRelation, wrap)
	}
	return each(r.view, syntax.RefRelation, wrap)
}

// RefRelation is a relationship between two endpoints.
type RefRelation struct{ view }

var _ HasSettings = RefRelation{}

// CastRefRelation wraps n if it is a relationship.
func CastRefRelation(n *tree.Node) (RefRelation, bool) {
	v, ok := cast(n, syntax.RefRelation)
	return RefRelation{v}, ok
}

// Left returns the endpoint before the operator.
func (r RefRelation) Left() RefEndpoint { return r.endpoint(0) }

// Right returns the endpoint after the operator.
func (r RefRelation) Right() RefEndpoint { return r.endpoint(1) }

func (r RefRelation) endpoint(i int) RefEndpoint {
	var found RefEndpoint
	r.children(syntax.RefEndpoint, func(n *tree.Node) bool {
		if i == 0 {
			found = RefEndpoint{view{n}}
			return false
		}
		i--
		return true
	})
	return found
}

// Op returns the relationship operator: one of "<", ">", "-" and "<>". Returns
// the empty string if it is missing.
func (r RefRelation) Op() string { return relOp(r.view) }

// Settings implements [HasSettings].
func (r RefRelation) Settings() Settings { return settingsOf(r.view) }

// InlineRef is the value of a `ref:` column setting.
//
//	ref: > users.id
type InlineRef struct{ view }

// CastInlineRef wraps n if it is an inline reference.
func CastInlineRef(n *tree.Node) (InlineRef, bool) {
	v, ok := cast(n, syntax.InlineRef)
	return InlineRef{v}, ok
}

// Op returns the relationship operator.
func (r InlineRef) Op() string { return relOp(r.view) }

// Target returns the referenced endpoint.
func (r InlineRef) Target() RefEndpoint {
	return RefEndpoint{castOrZero(r.child(syntax.RefEndpoint), syntax.RefEndpoint)}
}

func relOp(v view) string {
	for _, kind := range []syntax.Kind{syntax.Lt, syntax.Gt, syntax.Minus, syntax.LtGt} {
		if t := v.token(kind); t != nil {
			return t.Text()
		}
	}
	return ""
}

// RefEndpoint is one side of a relationship: a table and one or more of its
// columns.
//
//	users.id, public.users.id, posts.(a, b)
type RefEndpoint struct{ view }

// CastRefEndpoint wraps n if it is a reference endpoint.
func CastRefEndpoint(n *tree.Node) (RefEndpoint, bool) {
	v, ok := cast(n, syntax.RefEndpoint)
	return RefEndpoint{v}, ok
}

// Table returns the possibly schema-qualified name of the referenced table.
func (e RefEndpoint) Table() string {
	parts := PathExpr{castOrZero(e.child(syntax.Path), syntax.Path)}.Parts()
	if e.child(syntax.ColumnTuple) == nil && len(parts) > 0 {
		parts = parts[:len(parts)-1]
	}
	return joinDotted(parts)
}

// Columns returns the names of the referenced columns.
func (e RefEndpoint) Columns() []string {
	if tuple := e.child(syntax.ColumnTuple); tuple != nil {
		var cols []string
		for c := range tuple.ChildNodes() {
			if name, ok := CastName(c); ok {
				cols = append(cols, name.String())
			}
		}
		return cols
	}

	parts := PathExpr{castOrZero(e.child(syntax.Path), syntax.Path)}.Parts()
	if len(parts) == 0 {
		return nil
	}
	return parts[len(parts)-1:]
}

// IsComposite returns whether this endpoint names a parenthesized list of
// columns.
func (e RefEndpoint) IsComposite() bool { return e.child(syntax.ColumnTuple) != nil }
