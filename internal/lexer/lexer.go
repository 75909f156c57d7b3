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

// Package lexer converts schema source text into a flat, gap-free sequence of
// tokens.
//
// The lexer never fails: anything it cannot make sense of becomes a
// [syntax.Error] token. It also never merges punctuation, even where a longer
// operator exists; the parser decides whether `<` `>` means `<>`.
package lexer

import (
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bufbuild/dbml/syntax"
)

// Token is a single lexeme: a kind and the exact text it spans.
type Token struct {
	Kind syntax.Kind
	Text string
}

// Lex returns a lazy sequence over the tokens of text.
//
// Concatenating the Text of every yielded token reproduces text exactly. The
// sequence may be ranged over any number of times; each range lexes from the
// start.
func Lex(text string) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		l := &lexer{text: text}
		for !l.done() {
			before := l.cursor
			tok := l.next()
			if l.cursor <= before {
				panic("dbml/lexer: lexer failed to make progress")
			}
			if !yield(tok) {
				return
			}
		}
	}
}

// Describe returns a diagnostic message for a [syntax.Error] token.
func Describe(text string) string {
	switch {
	case strings.HasPrefix(text, "'''"):
		return "unterminated multi-line string literal"
	case strings.HasPrefix(text, "'"):
		return "unterminated string literal"
	case strings.HasPrefix(text, `"`):
		return "unterminated quoted identifier"
	case strings.HasPrefix(text, "`"):
		return "unterminated backtick expression"
	case strings.HasPrefix(text, "/*"):
		return "unterminated block comment"
	case strings.HasPrefix(text, "#"):
		return "invalid color literal"
	case utf8.RuneCountInString(text) == 1:
		return "unrecognized character"
	default:
		return "unrecognized characters"
	}
}

type lexer struct {
	text   string
	cursor int
}

func (l *lexer) done() bool {
	return l.cursor >= len(l.text)
}

func (l *lexer) rest() string {
	return l.text[l.cursor:]
}

// peek returns the next rune, or -1 at the end of input. Invalid UTF-8 is
// returned as [utf8.RuneError] with width one.
func (l *lexer) peek() (rune, int) {
	if l.done() {
		return -1, 0
	}
	return utf8.DecodeRuneInString(l.rest())
}

func (l *lexer) takeWhile(f func(rune) bool) {
	for {
		r, n := l.peek()
		if r == -1 || !f(r) {
			return
		}
		l.cursor += n
	}
}

func (l *lexer) token(start int, kind syntax.Kind) Token {
	return Token{Kind: kind, Text: l.text[start:l.cursor]}
}

func (l *lexer) next() Token {
	start := l.cursor
	r, n := l.peek()
	rest := l.rest()

	switch {
	case isSpace(r):
		l.takeWhile(isSpace)
		return l.token(start, syntax.Space)

	case strings.HasPrefix(rest, "//"):
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			l.cursor += nl
		} else {
			l.cursor = len(l.text)
		}
		return l.token(start, syntax.Comment)

	case strings.HasPrefix(rest, "/*"):
		if end := strings.Index(rest[2:], "*/"); end >= 0 {
			l.cursor += end + 4
			return l.token(start, syntax.Comment)
		}
		l.cursor = len(l.text)
		return l.token(start, syntax.Error)

	case strings.HasPrefix(rest, "'''"):
		if end := strings.Index(rest[3:], "'''"); end >= 0 {
			l.cursor += end + 6
			return l.token(start, syntax.String)
		}
		l.cursor = len(l.text)
		return l.token(start, syntax.Error)

	case r == '\'':
		return l.quoted(start, '\'', syntax.String)
	case r == '"':
		return l.quoted(start, '"', syntax.QuotedIdent)
	case r == '`':
		return l.quoted(start, '`', syntax.Backtick)

	case r == '#':
		l.cursor += n
		l.takeWhile(isHexDigit)
		if digits := l.cursor - start - 1; digits != 3 && digits != 6 {
			return l.token(start, syntax.Error)
		}
		return l.token(start, syntax.ColorLit)

	case isDigit(r):
		l.takeWhile(isDigit)
		if r, _ := l.peek(); r == '.' {
			if next, _ := utf8.DecodeRuneInString(l.text[l.cursor+1:]); isDigit(next) {
				l.cursor++
				l.takeWhile(isDigit)
			}
		}
		return l.token(start, syntax.Number)

	case isIdentStart(r):
		l.takeWhile(isIdentContinue)
		return l.token(start, syntax.Ident)
	}

	if kind := punct(r); kind != syntax.Invalid {
		l.cursor += n
		return l.token(start, kind)
	}

	// Consume the longest run of characters that do not start any token, so
	// that a burst of garbage produces one error rather than many.
	l.cursor += n
	for !l.done() {
		r, n := l.peek()
		if startsToken(r, l.rest()) {
			break
		}
		l.cursor += n
	}
	return l.token(start, syntax.Error)
}

// quoted lexes a string-like token delimited by quote. Backslash escapes the
// next character. The token may not span lines; if it is unterminated, the
// error token stops before the newline so that the next line lexes normally.
func (l *lexer) quoted(start int, quote rune, kind syntax.Kind) Token {
	l.cursor++
	for !l.done() {
		r, n := l.peek()
		switch r {
		case '\\':
			l.cursor += n
			if r, n := l.peek(); r != -1 && r != '\n' {
				l.cursor += n
			}
			continue
		case '\n':
			return l.token(start, syntax.Error)
		case quote:
			l.cursor += n
			return l.token(start, kind)
		}
		l.cursor += n
	}
	return l.token(start, syntax.Error)
}

func punct(r rune) syntax.Kind {
	switch r {
	case '{':
		return syntax.LBrace
	case '}':
		return syntax.RBrace
	case '[':
		return syntax.LBracket
	case ']':
		return syntax.RBracket
	case '(':
		return syntax.LParen
	case ')':
		return syntax.RParen
	case ':':
		return syntax.Colon
	case ',':
		return syntax.Comma
	case '.':
		return syntax.Dot
	case '<':
		return syntax.Lt
	case '>':
		return syntax.Gt
	case '+':
		return syntax.Plus
	case '-':
		return syntax.Minus
	case '*':
		return syntax.Star
	case '/':
		return syntax.Slash
	case '%':
		return syntax.Percent
	case '^':
		return syntax.Caret
	case '!':
		return syntax.Bang
	case '=':
		return syntax.Eq
	default:
		return syntax.Invalid
	}
}

func startsToken(r rune, rest string) bool {
	return isSpace(r) || isDigit(r) || isIdentStart(r) ||
		punct(r) != syntax.Invalid ||
		strings.ContainsRune("'\"`#", r) ||
		strings.HasPrefix(rest, "//") || strings.HasPrefix(rest, "/*")
}

func isSpace(r rune) bool {
	return r != -1 && unicode.In(r, unicode.Pattern_White_Space)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isIdentStart(r rune) bool {
	return r == '_' || (r != utf8.RuneError && unicode.IsLetter(r))
}

func isIdentContinue(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}
