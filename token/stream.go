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

package token

import (
	"github.com/bufbuild/dbml/internal/lexer"
	"github.com/bufbuild/dbml/syntax"
)

// Stream is a [Source] over source text.
//
// The lexer's lazy output is buffered into significant tokens, each carrying
// its leading trivia, when the stream is created.
type Stream struct {
	toks []Token
	// Start offset of each token in toks, excluding leading trivia.
	offsets []int
	idx     int
	prevEnd int
}

var _ Source = (*Stream)(nil)

// NewStream lexes text and returns a stream over its significant tokens.
func NewStream(text string) *Stream {
	s := new(Stream)

	var (
		trivia []Token
		offset int
	)
	for tok := range lexer.Lex(text) {
		if tok.Kind.IsTrivia() {
			trivia = append(trivia, Token{Kind: tok.Kind, Text: tok.Text})
			offset += len(tok.Text)
			continue
		}

		s.toks = append(s.toks, Token{Kind: tok.Kind, Text: tok.Text, Leading: trivia})
		s.offsets = append(s.offsets, offset)
		trivia = nil
		offset += len(tok.Text)
	}

	s.toks = append(s.toks, Token{Kind: syntax.EOF, Leading: trivia})
	s.offsets = append(s.offsets, offset)
	return s
}

// NewSliceSource returns a [Source] over already-lexed significant tokens.
//
// The last token need not be [syntax.EOF]; one is appended if it is missing.
// This is used for feeding the parser fragments that did not come from a
// single piece of text.
func NewSliceSource(toks []Token) *Stream {
	s := &Stream{toks: make([]Token, 0, len(toks)+1)}

	var offset int
	for _, tok := range toks {
		for _, tr := range tok.Leading {
			offset += len(tr.Text)
		}
		s.toks = append(s.toks, tok)
		s.offsets = append(s.offsets, offset)
		offset += len(tok.Text)
	}
	if n := len(s.toks); n == 0 || s.toks[n-1].Kind != syntax.EOF {
		s.toks = append(s.toks, Token{Kind: syntax.EOF})
		s.offsets = append(s.offsets, offset)
	}
	return s
}

// Current implements [Source].
func (s *Stream) Current() Token {
	return s.Lookahead(0)
}

// Lookahead implements [Source].
func (s *Stream) Lookahead(n int) Token {
	i := s.idx + n
	if i >= len(s.toks) {
		i = len(s.toks) - 1
	}
	return s.toks[i]
}

// IsContextualKeyword implements [Source].
func (s *Stream) IsContextualKeyword(text string) bool {
	cur := s.Current()
	return cur.Kind == syntax.Ident && cur.Text == text && IsKeyword(text)
}

// Joined implements [Source].
func (s *Stream) Joined(n int) bool {
	for i := 1; i <= n; i++ {
		tok := s.Lookahead(i)
		if tok.Kind == syntax.EOF || len(tok.Leading) > 0 {
			return false
		}
	}
	return true
}

// Advance implements [Source].
func (s *Stream) Advance() {
	if s.idx >= len(s.toks)-1 {
		return
	}
	s.prevEnd = s.offsets[s.idx] + len(s.toks[s.idx].Text)
	s.idx++
}

// Offset implements [Source].
func (s *Stream) Offset() int {
	return s.offsets[s.idx]
}

// PrevEnd implements [Source].
func (s *Stream) PrevEnd() int {
	return s.prevEnd
}

// Len returns the number of significant tokens in this stream, including the
// final [syntax.EOF].
func (s *Stream) Len() int {
	return len(s.toks)
}

// All returns every significant token in this stream, including the final
// [syntax.EOF]. The returned slice must not be modified.
func (s *Stream) All() []Token {
	return s.toks
}
