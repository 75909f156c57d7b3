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

// Package green implements the immutable storage layer of the syntax tree.
//
// A green tree records only kinds, lengths and children. It has no parent
// pointers and no absolute offsets, so any subtree can be shared between
// several trees, such as the trees before and after an edit. Package tree
// layers positions and parent links on top of it.
//
// Green trees are never mutated once built, and are safe for concurrent use.
package green

import (
	"iter"
	"strings"

	"github.com/bufbuild/dbml/syntax"
)

// Element is either a [*Token] or a [*Node].
type Element interface {
	// Kind returns this element's kind.
	Kind() syntax.Kind

	// Len returns the length of this element's text, in bytes.
	Len() int

	isElement()
}

// Token is a leaf of a green tree.
type Token struct {
	kind syntax.Kind
	text string
}

// NewToken returns a new token. Prefer [Cache.Token], which interns tokens.
func NewToken(kind syntax.Kind, text string) *Token {
	return &Token{kind: kind, text: text}
}

// Kind implements [Element].
func (t *Token) Kind() syntax.Kind { return t.kind }

// Len implements [Element].
func (t *Token) Len() int { return len(t.text) }

// Text returns this token's text.
func (t *Token) Text() string { return t.text }

// IsVirtual returns whether this token was synthesized by the parser in
// place of a missing delimiter. Virtual tokens have no text.
func (t *Token) IsVirtual() bool { return t.text == "" }

// String implements [fmt.Stringer].
func (t *Token) String() string {
	return t.kind.String() + "(" + t.text + ")"
}

func (*Token) isElement() {}

// Node is an interior node of a green tree.
type Node struct {
	kind     syntax.Kind
	length   int
	children []Element
}

// NewNode returns a new node with the given children. Prefer [Cache.Node],
// which shares small nodes.
//
// The node takes ownership of children.
func NewNode(kind syntax.Kind, children []Element) *Node {
	n := &Node{kind: kind, children: children}
	for _, c := range children {
		n.length += c.Len()
	}
	return n
}

// Kind implements [Element].
func (n *Node) Kind() syntax.Kind { return n.kind }

// Len implements [Element].
func (n *Node) Len() int { return n.length }

// NumChildren returns the number of direct children of this node.
func (n *Node) NumChildren() int { return len(n.children) }

// Child returns the ith child of this node.
func (n *Node) Child(i int) Element { return n.children[i] }

// Children yields the direct children of this node, with their indices.
func (n *Node) Children() iter.Seq2[int, Element] {
	return func(yield func(int, Element) bool) {
		for i, c := range n.children {
			if !yield(i, c) {
				return
			}
		}
	}
}

// Text reconstructs the text spanned by this node.
func (n *Node) Text() string {
	return Text(n)
}

// Replace returns a copy of this node with its ith child replaced.
//
// n itself is unchanged; every other child is shared with the result.
func (n *Node) Replace(i int, child Element) *Node {
	children := make([]Element, len(n.children))
	copy(children, n.children)
	children[i] = child
	return &Node{
		kind:     n.kind,
		length:   n.length - n.children[i].Len() + child.Len(),
		children: children,
	}
}

func (*Node) isElement() {}

// Tokens yields the leaves under e, in order.
func Tokens(e Element) iter.Seq[*Token] {
	return func(yield func(*Token) bool) {
		walkTokens(e, yield)
	}
}

func walkTokens(e Element, yield func(*Token) bool) bool {
	switch e := e.(type) {
	case *Token:
		return yield(e)
	case *Node:
		for _, c := range e.children {
			if !walkTokens(c, yield) {
				return false
			}
		}
	}
	return true
}

// Text reconstructs the text spanned by e by concatenating its leaves.
func Text(e Element) string {
	if t, ok := e.(*Token); ok {
		return t.text
	}

	var b strings.Builder
	b.Grow(e.Len())
	for t := range Tokens(e) {
		b.WriteString(t.text)
	}
	return b.String()
}

// Equal returns whether a and b have the same structure: the same kinds,
// the same token texts and the same shape.
func Equal(a, b Element) bool {
	if a == b {
		return true
	}
	if a.Kind() != b.Kind() || a.Len() != b.Len() {
		return false
	}

	switch a := a.(type) {
	case *Token:
		b, ok := b.(*Token)
		return ok && a.text == b.text
	case *Node:
		b, ok := b.(*Node)
		if !ok || len(a.children) != len(b.children) {
			return false
		}
		for i := range a.children {
			if !Equal(a.children[i], b.children[i]) {
				return false
			}
		}
		return true
	}
	return false
}
