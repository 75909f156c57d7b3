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

// Package tree provides cursors over green trees.
//
// A cursor is a green element together with its absolute offset and the
// cursor of its parent. Cursors are created on demand while walking a tree
// and are cheap to discard; the green tree itself never points back at
// them, so there are no reference cycles.
//
// Two cursors that are not the same pointer may still refer to the same
// place in the same tree; use [Equal] to compare them.
package tree

import (
	"iter"

	"github.com/bufbuild/dbml/green"
	"github.com/bufbuild/dbml/report"
	"github.com/bufbuild/dbml/syntax"
)

// Element is either a [*Node] or a [*Token].
type Element interface {
	// Kind returns the element's kind.
	Kind() syntax.Kind

	// Span returns the element's absolute byte range.
	Span() report.Span

	// Parent returns the node containing this element, or nil for the root.
	Parent() *Node

	// Index returns this element's index among its parent's children.
	Index() int

	isElement()
}

// Node is a cursor over a [green.Node].
type Node struct {
	green  *green.Node
	root   *green.Node
	parent *Node
	offset int
	index  int
}

// New returns a cursor for the root of a tree.
func New(root *green.Node) *Node {
	return &Node{green: root, root: root}
}

// Kind implements [Element].
func (n *Node) Kind() syntax.Kind { return n.green.Kind() }

// Span implements [Element].
func (n *Node) Span() report.Span { return report.At(n.offset, n.green.Len()) }

// Parent implements [Element].
func (n *Node) Parent() *Node { return n.parent }

// Index implements [Element].
func (n *Node) Index() int { return n.index }

// Green returns the green node this cursor is over.
func (n *Node) Green() *green.Node { return n.green }

// Root returns the cursor for the root of this node's tree.
func (n *Node) Root() *Node {
	for n.parent != nil {
		n = n.parent
	}
	return n
}

// Text returns the source text spanned by this node.
func (n *Node) Text() string { return n.green.Text() }

// String implements [fmt.Stringer].
func (n *Node) String() string {
	return n.Kind().String() + "@" + n.Span().String()
}

func (*Node) isElement() {}

// child returns a cursor for the ith child, whose offset is given.
func (n *Node) child(i, offset int) Element {
	switch c := n.green.Child(i).(type) {
	case *green.Node:
		return &Node{green: c, root: n.root, parent: n, offset: offset, index: i}
	case *green.Token:
		return &Token{green: c, parent: n, offset: offset, index: i}
	}
	return nil
}

// Children yields cursors for the direct children of this node, tokens and
// trivia included.
func (n *Node) Children() iter.Seq[Element] {
	return func(yield func(Element) bool) {
		offset := n.offset
		for i, c := range n.green.Children() {
			if !yield(n.child(i, offset)) {
				return
			}
			offset += c.Len()
		}
	}
}

// ChildNodes yields cursors for the direct children of this node that are
// nodes.
func (n *Node) ChildNodes() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for c := range n.Children() {
			if c, ok := c.(*Node); ok && !yield(c) {
				return
			}
		}
	}
}

// ChildNode returns the first child node of the given kind, or nil.
func (n *Node) ChildNode(kind syntax.Kind) *Node {
	for c := range n.ChildNodes() {
		if c.Kind() == kind {
			return c
		}
	}
	return nil
}

// ChildToken returns the first direct child token of the given kind, or
// nil.
func (n *Node) ChildToken(kind syntax.Kind) *Token {
	for c := range n.Children() {
		if t, ok := c.(*Token); ok && t.Kind() == kind {
			return t
		}
	}
	return nil
}

// Tokens yields cursors for every leaf under this node, in order.
func (n *Node) Tokens() iter.Seq[*Token] {
	return func(yield func(*Token) bool) {
		n.tokens(yield)
	}
}

func (n *Node) tokens(yield func(*Token) bool) bool {
	for c := range n.Children() {
		switch c := c.(type) {
		case *Token:
			if !yield(c) {
				return false
			}
		case *Node:
			if !c.tokens(yield) {
				return false
			}
		}
	}
	return true
}

// FirstToken returns the first non-trivia leaf under this node, or nil.
func (n *Node) FirstToken() *Token {
	for t := range n.Tokens() {
		if !t.Kind().IsTrivia() {
			return t
		}
	}
	return nil
}

// LastToken returns the last non-trivia leaf under this node, or nil.
func (n *Node) LastToken() *Token {
	var last *Token
	for t := range n.Tokens() {
		if !t.Kind().IsTrivia() {
			last = t
		}
	}
	return last
}

// NextSibling returns the next node among this node's parent's children,
// skipping tokens, or nil.
func (n *Node) NextSibling() *Node {
	if n.parent == nil {
		return nil
	}

	offset := n.offset + n.green.Len()
	for i := n.index + 1; i < n.parent.green.NumChildren(); i++ {
		c := n.parent.child(i, offset)
		if c, ok := c.(*Node); ok {
			return c
		}
		offset += c.Span().Len()
	}
	return nil
}

// PrevSibling returns the previous node among this node's parent's
// children, skipping tokens, or nil.
func (n *Node) PrevSibling() *Node {
	if n.parent == nil {
		return nil
	}

	offset := n.offset
	for i := n.index - 1; i >= 0; i-- {
		offset -= n.parent.green.Child(i).Len()
		if c, ok := n.parent.child(i, offset).(*Node); ok {
			return c
		}
	}
	return nil
}

// Ancestors yields this node and then each of its ancestors, ending at the
// root.
func (n *Node) Ancestors() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for ; n != nil; n = n.parent {
			if !yield(n) {
				return
			}
		}
	}
}

// Preorder yields this node and every node under it, parents before
// children.
func (n *Node) Preorder() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		n.preorder(yield)
	}
}

func (n *Node) preorder(yield func(*Node) bool) bool {
	if !yield(n) {
		return false
	}
	for c := range n.ChildNodes() {
		if !c.preorder(yield) {
			return false
		}
	}
	return true
}

// CoveringNode returns the deepest node under n whose span contains span.
// Returns nil if n itself does not contain it.
func (n *Node) CoveringNode(span report.Span) *Node {
	if !n.Span().Contains(span) {
		return nil
	}

outer:
	for {
		for c := range n.ChildNodes() {
			if c.Span().Contains(span) {
				n = c
				continue outer
			}
		}
		return n
	}
}

// TokenAt returns the leaf whose span contains offset. At a boundary between
// two tokens, the one on the right wins. Returns nil if offset is outside of
// n, or at its very end.
func (n *Node) TokenAt(offset int) *Token {
	span := n.Span()
	if offset < span.Start || offset >= span.End {
		return nil
	}

	for t := range n.Tokens() {
		if s := t.Span(); s.Start <= offset && offset < s.End {
			return t
		}
	}
	return nil
}

// Token is a cursor over a [green.Token].
type Token struct {
	green  *green.Token
	parent *Node
	offset int
	index  int
}

// Kind implements [Element].
func (t *Token) Kind() syntax.Kind { return t.green.Kind() }

// Span implements [Element].
func (t *Token) Span() report.Span { return report.At(t.offset, t.green.Len()) }

// Parent implements [Element].
func (t *Token) Parent() *Node { return t.parent }

// Index implements [Element].
func (t *Token) Index() int { return t.index }

// Green returns the green token this cursor is over.
func (t *Token) Green() *green.Token { return t.green }

// Text returns this token's text.
func (t *Token) Text() string { return t.green.Text() }

// IsVirtual returns whether this token was synthesized in place of a
// missing delimiter.
func (t *Token) IsVirtual() bool { return t.green.IsVirtual() }

// String implements [fmt.Stringer].
func (t *Token) String() string {
	return t.Kind().String() + "@" + t.Span().String()
}

func (*Token) isElement() {}

// Equal returns whether a and b refer to the same node of the same tree,
// that is, whether they have the same root, kind and span.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.root == b.root && a.Kind() == b.Kind() && a.Span() == b.Span()
}
