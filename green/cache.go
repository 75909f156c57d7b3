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
	"sync"

	"github.com/bufbuild/dbml/syntax"
)

// maxShared is the largest number of children a node may have and still be
// shared by [Cache.Node].
const maxShared = 3

// Cache deduplicates tokens and small nodes.
//
// Tokens are interned by kind and text. Nodes with at most three children
// are shared when an identical node, with the very same children, was
// already built through this cache. Sharing is sound because green trees are
// immutable.
//
// The zero value of Cache is empty and ready to use. A Cache may be used by
// several builders concurrently.
type Cache struct {
	mu     sync.Mutex
	tokens map[tokenKey]*Token
	nodes  map[nodeKey]*Node
}

type tokenKey struct {
	kind syntax.Kind
	text string
}

type nodeKey struct {
	kind     syntax.Kind
	n        int
	children [maxShared]Element
}

// Token returns a token with the given kind and text, reusing an existing
// one if possible.
func (c *Cache) Token(kind syntax.Kind, text string) *Token {
	key := tokenKey{kind, text}

	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.tokens[key]; ok {
		return t
	}
	if c.tokens == nil {
		c.tokens = make(map[tokenKey]*Token)
	}
	t := NewToken(kind, text)
	c.tokens[key] = t
	return t
}

// Node returns a node with the given kind and children, reusing an existing
// one if possible.
//
// The cache does not retain children; the caller may reuse the slice.
func (c *Cache) Node(kind syntax.Kind, children []Element) *Node {
	if len(children) > maxShared {
		return NewNode(kind, clone(children))
	}

	key := nodeKey{kind: kind, n: len(children)}
	copy(key.children[:], children)

	c.mu.Lock()
	defer c.mu.Unlock()
	if n, ok := c.nodes[key]; ok {
		return n
	}
	if c.nodes == nil {
		c.nodes = make(map[nodeKey]*Node)
	}
	n := NewNode(kind, clone(children))
	c.nodes[key] = n
	return n
}

// Len returns the number of distinct tokens and nodes held by the cache.
func (c *Cache) Len() (tokens, nodes int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tokens), len(c.nodes)
}

// Retain drops every entry that is not part of one of the trees rooted at
// roots. Trees built earlier stay valid; later builds only stop sharing
// with the dropped parts.
func (c *Cache) Retain(roots ...*Node) {
	tokens := make(map[tokenKey]*Token)
	nodes := make(map[nodeKey]*Node)

	c.mu.Lock()
	defer c.mu.Unlock()

	var walk func(e Element)
	walk = func(e Element) {
		switch e := e.(type) {
		case *Token:
			key := tokenKey{e.kind, e.text}
			if c.tokens[key] == e {
				tokens[key] = e
			}
		case *Node:
			if len(e.children) <= maxShared {
				key := nodeKey{kind: e.kind, n: len(e.children)}
				copy(key.children[:], e.children)
				if c.nodes[key] == e {
					nodes[key] = e
				}
			}
			for _, child := range e.children {
				walk(child)
			}
		}
	}
	for _, root := range roots {
		if root != nil {
			walk(root)
		}
	}
	c.tokens, c.nodes = tokens, nodes
}

func clone(children []Element) []Element {
	if len(children) == 0 {
		return nil
	}
	return append([]Element(nil), children...)
}
