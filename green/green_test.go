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

package green_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/dbml/green"
	"github.com/bufbuild/dbml/parser"
	"github.com/bufbuild/dbml/report"
	"github.com/bufbuild/dbml/syntax"
	"github.com/bufbuild/dbml/token"
)

func build(t *testing.T, cache *green.Cache, text string) *green.Node {
	t.Helper()
	b := green.NewBuilder(cache, 0, nil)
	require.NoError(t, parser.Parse(token.NewStream(text), b, parser.Options{}))
	return b.Finish()
}

func kinds(n *green.Node) []syntax.Kind {
	var out []syntax.Kind
	for _, c := range n.Children() {
		out = append(out, c.Kind())
	}
	return out
}

func TestBuilderTrivia(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	root := build(t, nil, "// c\nTable t {}\n")
	assert.Equal("// c\nTable t {}\n", root.Text())
	assert.Equal([]syntax.Kind{syntax.Comment, syntax.Space, syntax.TableDecl, syntax.Space}, kinds(root))

	decl := root.Child(2).(*green.Node)
	assert.Equal([]syntax.Kind{
		syntax.Ident, syntax.Space, syntax.Name, syntax.Space, syntax.TableBody,
	}, kinds(decl))
	assert.Equal([]syntax.Kind{syntax.LBrace, syntax.RBrace}, kinds(decl.Child(4).(*green.Node)))
}

func TestBuilderCheckpoint(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	b := green.NewBuilder(nil, 0, nil)
	b.StartNode(syntax.File)
	cp := b.Checkpoint()
	b.Token(token.Token{
		Kind:    syntax.Number,
		Text:    "1",
		Leading: []token.Token{{Kind: syntax.Space, Text: " "}},
	})
	b.StartNodeAt(cp, syntax.BinaryExpr)
	b.Token(token.Token{Kind: syntax.Plus, Text: "+"})
	b.Token(token.Token{Kind: syntax.Number, Text: "2"})
	b.FinishNode()
	b.Token(token.Token{Kind: syntax.EOF})
	b.FinishNode()

	root := b.Finish()
	assert.Equal(" 1+2", root.Text())
	assert.Equal([]syntax.Kind{syntax.Space, syntax.BinaryExpr}, kinds(root))
	assert.Equal(
		[]syntax.Kind{syntax.Number, syntax.Plus, syntax.Number},
		kinds(root.Child(1).(*green.Node)),
	)
}

func TestBuilderMisuse(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	b := green.NewBuilder(nil, 0, nil)
	assert.Panics(func() { b.Finish() })
	assert.Panics(func() { b.FinishNode() })
	assert.Panics(func() { b.Token(token.Token{Kind: syntax.Ident, Text: "x"}) })

	b.StartNode(syntax.File)
	b.StartNode(syntax.Name)
	assert.Panics(func() { b.StartNodeAt(5, syntax.Path) })
	assert.Panics(func() { b.Finish() })
}

func TestBuilderErrorOffsets(t *testing.T) {
	t.Parallel()

	var r report.Report
	b := green.NewBuilder(nil, 10, &r)
	b.Error(report.Diagnostic{Span: report.At(1, 2), Message: "oops"})
	require.Len(t, r.Diagnostics, 1)
	assert.Equal(t, report.Span{Start: 11, End: 13}, r.Diagnostics[0].Span)
}

func TestCacheSharing(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	cache := new(green.Cache)
	root := build(t, cache, "Table t {}\nTable t {}")
	first, second := root.Child(0).(*green.Node), root.Child(2).(*green.Node)

	assert.NotSame(first, second, "large nodes are not shared")
	assert.True(green.Equal(first, second))
	assert.Same(first.Child(2), second.Child(2), "names are shared")
	assert.Same(first.Child(4), second.Child(4), "empty bodies are shared")
	assert.Same(first.Child(0), second.Child(0), "tokens are interned")

	again := build(t, cache, "Table t {}")
	assert.Same(first.Child(4), again.Child(0).(*green.Node).Child(4))

	tokens, nodes := cache.Len()
	assert.Positive(tokens)
	assert.Positive(nodes)
}

func TestCacheRetain(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	cache := new(green.Cache)
	name := func(root *green.Node) green.Element {
		return root.Child(0).(*green.Node).Child(2)
	}

	a := build(t, cache, "Enum a { x }")
	b := build(t, cache, "Enum b { y }")
	tokens, _ := cache.Len()

	cache.Retain(b)
	retained, _ := cache.Len()
	assert.Less(retained, tokens)

	again := build(t, cache, "Enum b { y }")
	assert.Same(name(b), name(again), "retained entries are still shared")
	after, _ := cache.Len()
	assert.Equal(retained, after)

	assert.NotSame(name(a), name(build(t, cache, "Enum a { x }")))
	assert.Equal("Enum a { x }", a.Text(), "dropped trees stay valid")
}

func TestReplace(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	a := green.NewToken(syntax.Ident, "a")
	sp := green.NewToken(syntax.Space, " ")
	n := green.NewNode(syntax.Name, []green.Element{a, sp, a})
	assert.Equal(3, n.Len())

	long := green.NewToken(syntax.Ident, "long")
	m := n.Replace(2, long)
	assert.Equal("a a", n.Text(), "the original is unchanged")
	assert.Equal("a long", m.Text())
	assert.Equal(6, m.Len())
	assert.Same(n.Child(0), m.Child(0))
	assert.Same(n.Child(1), m.Child(1))

	assert.False(green.Equal(n, m))
	assert.True(green.Equal(n, green.NewNode(syntax.Name, []green.Element{
		green.NewToken(syntax.Ident, "a"), sp, a,
	})))
}

func TestTokens(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	root := build(t, nil, "Enum e { a }")
	var texts []string
	for tok := range green.Tokens(root) {
		texts = append(texts, tok.Text())
	}
	assert.Equal([]string{"Enum", " ", "e", " ", "{", " ", "a", " ", "}"}, texts)

	virtual := green.NewToken(syntax.RBrace, "")
	assert.True(virtual.IsVirtual())
	assert.Zero(virtual.Len())
}
