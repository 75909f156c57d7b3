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

// Package ast provides typed views over syntax tree cursors.
//
// Each view wraps a [*tree.Node] of one particular kind and exposes accessors
// for the parts of the construct it represents. Views are obtained by
// checked casts, such as [CastTableDecl], and are only as long-lived as the
// cursor they wrap.
//
// Because the parser accepts malformed input, any part of a construct may be
// missing. Accessors return zero views in that case; every method of a zero
// view is safe to call, and reports that nothing is there.
package ast

import (
	"github.com/bufbuild/dbml/report"
	"github.com/bufbuild/dbml/syntax"
	"github.com/bufbuild/dbml/tree"
)

// Node is implemented by every typed view.
type Node interface {
	// Syntax returns the cursor this view wraps, or nil for a zero view.
	Syntax() *tree.Node
}

// Named is implemented by views of constructs that declare a name.
type Named interface {
	Node
	Name() Name
}

// HasBody is implemented by views of constructs with a brace-delimited body.
type HasBody interface {
	Node
	Body() Body
}

// HasSettings is implemented by views of constructs that accept a bracketed
// settings list.
type HasSettings interface {
	Node
	Settings() Settings
}

// view is embedded in every typed view.
type view struct {
	n *tree.Node
}

// Syntax implements [Node].
func (v view) Syntax() *tree.Node { return v.n }

// IsZero returns whether this is a zero view.
func (v view) IsZero() bool { return v.n == nil }

// Span returns the span of the wrapped node, or a zero span.
func (v view) Span() report.Span {
	if v.n == nil {
		return report.Span{}
	}
	return v.n.Span()
}

// Text returns the source text of the wrapped node.
func (v view) Text() string {
	if v.n == nil {
		return ""
	}
	return v.n.Text()
}

func (v view) child(kind syntax.Kind) *tree.Node {
	if v.n == nil {
		return nil
	}
	return v.n.ChildNode(kind)
}

func (v view) token(kind syntax.Kind) *tree.Token {
	if v.n == nil {
		return nil
	}
	return v.n.ChildToken(kind)
}

func (v view) children(kind syntax.Kind, yield func(*tree.Node) bool) {
	if v.n == nil {
		return
	}
	for c := range v.n.ChildNodes() {
		if c.Kind() == kind && !yield(c) {
			return
		}
	}
}

// cast wraps n in a view if it has the given kind.
func cast(n *tree.Node, kind syntax.Kind) (view, bool) {
	if n == nil || n.Kind() != kind {
		return view{}, false
	}
	return view{n}, true
}

func castOrZero(n *tree.Node, kind syntax.Kind) view {
	v, _ := cast(n, kind)
	return v
}
