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

// Package token provides the parser's view of its input: a cursor over
// significant tokens that hides trivia and where the tokens came from.
//
// Trivia is not discarded. Each significant [Token] carries the trivia that
// precedes it in Leading, and the final [syntax.EOF] token carries whatever
// trivia ends the input, so a consumer that writes out every token together
// with its leading trivia reproduces the input exactly.
package token

import (
	"strings"

	"github.com/bufbuild/dbml/syntax"
)

// Token is a significant token, together with the trivia that precedes it.
type Token struct {
	Kind syntax.Kind
	Text string

	// Trivia tokens immediately preceding this token. Every element has a
	// kind for which [syntax.Kind.IsTrivia] is true.
	Leading []Token
}

// IsZero returns whether this is the zero token.
func (t Token) IsZero() bool {
	return t.Kind == syntax.Invalid
}

// Len returns the length of this token's text, excluding leading trivia.
func (t Token) Len() int {
	return len(t.Text)
}

// FullLen returns the length of this token's text including leading trivia.
func (t Token) FullLen() int {
	n := len(t.Text)
	for _, tr := range t.Leading {
		n += len(tr.Text)
	}
	return n
}

// String implements [fmt.Stringer].
func (t Token) String() string {
	var b strings.Builder
	b.WriteString(t.Kind.String())
	b.WriteString("(")
	b.WriteString(t.Text)
	b.WriteString(")")
	return b.String()
}

// Source is a read-only cursor over significant tokens.
//
// Implementations must be total: once the input is exhausted, Current and
// Lookahead return a [syntax.EOF] token forever, and Advance is a no-op.
type Source interface {
	// Current returns the next significant token.
	Current() Token

	// Lookahead returns the significant token n positions after Current.
	// Lookahead(0) is equivalent to Current().
	Lookahead(n int) Token

	// IsContextualKeyword returns whether the current token is an identifier
	// spelled exactly as text, and text is a contextual keyword.
	IsContextualKeyword(text string) bool

	// Joined returns whether tokens Current() through Lookahead(n) are
	// adjacent, that is, have no trivia between them.
	Joined(n int) bool

	// Advance consumes the current token.
	Advance()

	// Offset returns the offset of the start of Current(), excluding its
	// leading trivia, relative to the start of this source's input.
	Offset() int

	// PrevEnd returns the offset of the end of the most recently advanced
	// token, or zero if no token has been advanced.
	PrevEnd() int
}

// Keywords is the set of contextual keywords. They are lexed as identifiers
// and only act as keywords in particular grammar positions.
var Keywords = map[string]struct{}{
	"Project":    {},
	"Table":      {},
	"Enum":       {},
	"Ref":        {},
	"TableGroup": {},
	"Note":       {},
	"as":         {},
	"indexes":    {},
	"ref":        {},
}

// IsKeyword returns whether text is a contextual keyword.
func IsKeyword(text string) bool {
	_, ok := Keywords[text]
	return ok
}
