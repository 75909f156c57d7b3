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

package lexer_test

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bufbuild/dbml/internal/lexer"
	"github.com/bufbuild/dbml/syntax"
)

func lex(text string) []lexer.Token {
	return slices.Collect(lexer.Lex(text))
}

func kinds(toks []lexer.Token) []syntax.Kind {
	out := make([]syntax.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestLexBasic(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	toks := lex("Table users { id int [pk] }")
	assert.Equal([]syntax.Kind{
		syntax.Ident, syntax.Space, syntax.Ident, syntax.Space, syntax.LBrace,
		syntax.Space, syntax.Ident, syntax.Space, syntax.Ident, syntax.Space,
		syntax.LBracket, syntax.Ident, syntax.RBracket, syntax.Space, syntax.RBrace,
	}, kinds(toks))
}

func TestLexLiterals(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	toks := lex("12 1.5 'a\\'b' '''x\ny''' \"q i\" `now()` #3498db #fff 3.")
	var significant []lexer.Token
	for _, tok := range toks {
		if !tok.Kind.IsTrivia() {
			significant = append(significant, tok)
		}
	}

	assert.Equal([]lexer.Token{
		{syntax.Number, "12"},
		{syntax.Number, "1.5"},
		{syntax.String, `'a\'b'`},
		{syntax.String, "'''x\ny'''"},
		{syntax.QuotedIdent, `"q i"`},
		{syntax.Backtick, "`now()`"},
		{syntax.ColorLit, "#3498db"},
		{syntax.ColorLit, "#fff"},
		{syntax.Number, "3"},
		{syntax.Dot, "."},
	}, significant)
}

func TestLexComments(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	toks := lex("a // line\n/* block\n */b")
	assert.Equal([]lexer.Token{
		{syntax.Ident, "a"},
		{syntax.Space, " "},
		{syntax.Comment, "// line"},
		{syntax.Space, "\n"},
		{syntax.Comment, "/* block\n */"},
		{syntax.Ident, "b"},
	}, toks)
}

func TestLexDoesNotMerge(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	assert.Equal([]syntax.Kind{syntax.Lt, syntax.Gt}, kinds(lex("<>")))
	assert.Equal([]syntax.Kind{syntax.LBracket, syntax.RBracket}, kinds(lex("[]")))
}

func TestLexErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text    string
		want    []lexer.Token
		message string
	}{
		{
			text:    "'abc\nx",
			want:    []lexer.Token{{syntax.Error, "'abc"}, {syntax.Space, "\n"}, {syntax.Ident, "x"}},
			message: "unterminated string literal",
		},
		{
			text:    "/* open",
			want:    []lexer.Token{{syntax.Error, "/* open"}},
			message: "unterminated block comment",
		},
		{
			text:    "a@$b",
			want:    []lexer.Token{{syntax.Ident, "a"}, {syntax.Error, "@$"}, {syntax.Ident, "b"}},
			message: "unrecognized characters",
		},
		{
			text:    "@",
			want:    []lexer.Token{{syntax.Error, "@"}},
			message: "unrecognized character",
		},
		{
			text:    "#12",
			want:    []lexer.Token{{syntax.Error, "#12"}},
			message: "invalid color literal",
		},
		{
			text:    "'''never",
			want:    []lexer.Token{{syntax.Error, "'''never"}},
			message: "unterminated multi-line string literal",
		},
		{
			text:    "\xff",
			want:    []lexer.Token{{syntax.Error, "\xff"}},
			message: "unrecognized character",
		},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()
			assert := assert.New(t)

			toks := lex(tt.text)
			assert.Equal(tt.want, toks)
			for _, tok := range toks {
				if tok.Kind == syntax.Error {
					assert.Equal(tt.message, lexer.Describe(tok.Text))
				}
			}
		})
	}
}

func TestLexLossless(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"   ",
		"Table users {\n  id int [pk]\n}\n",
		"Ref: a.b <> c.(d, e) // trailing",
		"'\"`#/*",
		"日本語 テーブル { 列 int }",
		"\x00\x01\xfe{",
	}
	for _, input := range inputs {
		var b strings.Builder
		for tok := range lexer.Lex(input) {
			assert.NotEmpty(t, tok.Text)
			b.WriteString(tok.Text)
		}
		assert.Equal(t, input, b.String())
	}
}

func TestLexRestartable(t *testing.T) {
	t.Parallel()

	seq := lexer.Lex("Enum e { a b }")
	first := slices.Collect(seq)
	second := slices.Collect(seq)
	assert.Equal(t, first, second)
}
