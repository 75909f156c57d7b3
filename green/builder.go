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

package green

import (
	"github.com/bufbuild/dbml/parser"
	"github.com/bufbuild/dbml/report"
	"github.com/bufbuild/dbml/syntax"
	"github.com/bufbuild/dbml/token"
)

// Builder builds a green tree out of parser events.
//
// Leading trivia is placed immediately before the token that carries it, but
// outside every node that begins with that token. As a result, no node other
// than the root begins or ends with trivia, and a comment on the line before
// a declaration is a sibling of that declaration.
type Builder struct {
	cache  *Cache
	base   int
	report *report.Report

	stack    []frame
	children []Element
	root     *Node
}

type frame struct {
	kind  syntax.Kind
	first int
}

var _ parser.Sink = (*Builder)(nil)

// NewBuilder returns a builder that interns through cache and appends
// diagnostics to r.
//
// base is the absolute offset at which the parsed input starts; diagnostic
// spans are shifted by it. It is zero except when a fragment of a larger file
// is parsed.
func NewBuilder(cache *Cache, base int, r *report.Report) *Builder {
	if cache == nil {
		cache = new(Cache)
	}
	return &Builder{cache: cache, base: base, report: r}
}

// StartNode implements [parser.Sink].
func (b *Builder) StartNode(kind syntax.Kind) {
	b.stack = append(b.stack, frame{kind: kind, first: len(b.children)})
}

// Checkpoint implements [parser.Sink].
func (b *Builder) Checkpoint() int {
	return len(b.children)
}

// StartNodeAt implements [parser.Sink].
func (b *Builder) StartNodeAt(checkpoint int, kind syntax.Kind) {
	if len(b.stack) == 0 || checkpoint < b.stack[len(b.stack)-1].first || checkpoint > len(b.children) {
		panic("dbml/green: checkpoint is not within the current node")
	}

	// The trivia at the checkpoint belongs to the first token of the new
	// node, and so goes before it.
	for checkpoint < len(b.children) && b.children[checkpoint].Kind().IsTrivia() {
		checkpoint++
	}
	b.stack = append(b.stack, frame{kind: kind, first: checkpoint})
}

// Token implements [parser.Sink].
func (b *Builder) Token(tok token.Token) {
	if len(b.stack) == 0 {
		panic("dbml/green: token outside of any node")
	}

	if len(tok.Leading) > 0 {
		before := len(b.children)
		for _, tr := range tok.Leading {
			b.children = append(b.children, b.cache.Token(tr.Kind, tr.Text))
		}

		// Nodes that have not received any children yet begin at this token,
		// so they must begin after its trivia. The root is exempt.
		for i := len(b.stack) - 1; i > 0 && b.stack[i].first == before; i-- {
			b.stack[i].first = len(b.children)
		}
	}

	if tok.Kind == syntax.EOF {
		return
	}
	b.children = append(b.children, b.cache.Token(tok.Kind, tok.Text))
}

// FinishNode implements [parser.Sink].
func (b *Builder) FinishNode() {
	if len(b.stack) == 0 {
		panic("dbml/green: unbalanced FinishNode")
	}

	top := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]

	node := b.cache.Node(top.kind, b.children[top.first:])
	clear(b.children[top.first:])
	b.children = b.children[:top.first]

	if len(b.stack) == 0 {
		b.root = node
		return
	}
	b.children = append(b.children, node)
}

// Error implements [parser.Sink].
func (b *Builder) Error(d report.Diagnostic) {
	if b.report == nil {
		return
	}
	d.Span = d.Span.Shift(b.base)
	b.report.Push(d)
}

// Finish returns the root of the built tree.
//
// Panics if the events seen so far do not describe exactly one complete
// tree.
func (b *Builder) Finish() *Node {
	if b.root == nil || len(b.stack) != 0 {
		panic("dbml/green: Finish called on an incomplete tree")
	}
	return b.root
}
