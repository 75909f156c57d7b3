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
	"strings"

	"github.com/bufbuild/dbml/syntax"
	"github.com/bufbuild/dbml/tree"
)

// Name is a declared name, such as `public.users`, or a run of words, such as
// `not null`.
type Name struct{ view }

// CastName wraps n if it is a name node.
func CastName(n *tree.Node) (Name, bool) {
	v, ok := cast(n, syntax.Name)
	return Name{v}, ok
}

// Parts returns the identifiers making up this name, with quoted
// identifiers unquoted.
func (n Name) Parts() []string {
	if n.n == nil {
		return nil
	}
	var parts []string
	for c := range n.n.Children() {
		if t, ok := c.(*tree.Token); ok && (t.Kind() == syntax.Ident || t.Kind() == syntax.QuotedIdent) {
			parts = append(parts, identValue(t))
		}
	}
	return parts
}

// String returns the canonical spelling of this name: dotted parts are joined
// with dots and words with single spaces, with quoted identifiers unquoted.
func (n Name) String() string {
	if n.n == nil {
		return ""
	}

	var b strings.Builder
	prevIdent := false
	for c := range n.n.Children() {
		t, ok := c.(*tree.Token)
		if !ok {
			continue
		}
		switch t.Kind() {
		case syntax.Dot:
			b.WriteByte('.')
			prevIdent = false
		case syntax.Ident, syntax.QuotedIdent:
			if prevIdent {
				b.WriteByte(' ')
			}
			b.WriteString(identValue(t))
			prevIdent = true
		}
	}
	return b.String()
}

// Body is a brace-delimited block.
type Body struct{ view }

// CastBody wraps n if it is any kind of block.
func CastBody(n *tree.Node) (Body, bool) {
	if n == nil || !n.Kind().IsBlock() {
		return Body{}, false
	}
	return Body{view{n}}, true
}

// Open returns the opening brace.
func (b Body) Open() *tree.Token { return b.token(syntax.LBrace) }

// Close returns the closing brace, which may be virtual.
func (b Body) Close() *tree.Token { return b.token(syntax.RBrace) }

// IsClosed returns whether the body ends in a closing brace that is actually
// present in the source.
func (b Body) IsClosed() bool {
	c := b.Close()
	return c != nil && !c.IsVirtual()
}

// Items yields the nodes inside the body, including error nodes.
func (b Body) Items() iter.Seq[*tree.Node] {
	return func(yield func(*tree.Node) bool) {
		if b.n == nil {
			return
		}
		for c := range b.n.ChildNodes() {
			if !yield(c) {
				return
			}
		}
	}
}

func bodyOf(v view, kind syntax.Kind) Body {
	return Body{castOrZero(v.child(kind), kind)}
}

// each yields the children of v with the given kind, wrapped by wrap.
func each[T any](v view, kind syntax.Kind, wrap func(view) T) iter.Seq[T] {
	return func(yield func(T) bool) {
		v.children(kind, func(n *tree.Node) bool {
			return yield(wrap(view{n}))
		})
	}
}

func identValue(t *tree.Token) string {
	if t.Kind() != syntax.QuotedIdent {
		return t.Text()
	}
	return unquote(t.Text())
}
