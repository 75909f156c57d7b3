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

package ast

import (
	"iter"
	"strconv"
	"strings"

	"github.com/bufbuild/dbml/syntax"
	"github.com/bufbuild/dbml/tree"
)

// Expr is any expression.
type Expr interface {
	Node
	isExpr()
}

// CastExpr wraps n in the view for whichever expression it is.
func CastExpr(n *tree.Node) (Expr, bool) {
	if n == nil {
		return nil, false
	}
	v := view{n}
	switch n.Kind() {
	case syntax.Literal:
		return Literal{v}, true
	case syntax.Path:
		return PathExpr{v}, true
	case syntax.PrefixExpr:
		return PrefixExpr{v}, true
	case syntax.BinaryExpr:
		return BinaryExpr{v}, true
	case syntax.ParenExpr:
		return ParenExpr{v}, true
	default:
		return nil, false
	}
}

// exprs yields the expression children of n.
func exprs(n *tree.Node) iter.Seq[Expr] {
	return func(yield func(Expr) bool) {
		if n == nil {
			return
		}
		for c := range n.ChildNodes() {
			if e, ok := CastExpr(c); ok && !yield(e) {
				return
			}
		}
	}
}

// nthExpr returns the ith expression child of v, or nil.
func nthExpr(v view, i int) Expr {
	for e := range exprs(v.n) {
		if i == 0 {
			return e
		}
		i--
	}
	return nil
}

// Literal is a number, string, backtick expression or color.
type Literal struct{ view }

func (Literal) isExpr() {}

// Token returns the literal's token.
func (l Literal) Token() *tree.Token {
	if l.n == nil {
		return nil
	}
	return l.n.FirstToken()
}

// Kind returns the kind of the literal's token.
func (l Literal) Kind() syntax.Kind {
	if t := l.Token(); t != nil {
		return t.Kind()
	}
	return syntax.Invalid
}

// Value returns the contents of a string or backtick literal, with quotes
// removed and escapes resolved.
func (l Literal) Value() (string, bool) {
	switch l.Kind() {
	case syntax.String, syntax.Backtick:
		return unquote(l.Token().Text()), true
	default:
		return "", false
	}
}

// Number returns the value of a number literal.
func (l Literal) Number() (float64, bool) {
	if l.Kind() != syntax.Number {
		return 0, false
	}
	v, err := strconv.ParseFloat(l.Token().Text(), 64)
	return v, err == nil
}

// PathExpr is a reference to something by name, such as `null` or
// `users.id`.
type PathExpr struct{ view }

func (PathExpr) isExpr() {}

// Parts returns the identifiers making up the path, with quoted
// identifiers unquoted.
func (p PathExpr) Parts() []string {
	if p.n == nil {
		return nil
	}
	var parts []string
	for c := range p.n.Children() {
		if t, ok := c.(*tree.Token); ok && (t.Kind() == syntax.Ident || t.Kind() == syntax.QuotedIdent) {
			parts = append(parts, identValue(t))
		}
	}
	return parts
}

// String returns the parts of the path joined by dots.
func (p PathExpr) String() string { return joinDotted(p.Parts()) }

// PrefixExpr is a unary operator applied to an expression.
type PrefixExpr struct{ view }

func (PrefixExpr) isExpr() {}

// Op returns the operator token.
func (p PrefixExpr) Op() *tree.Token {
	if p.n == nil {
		return nil
	}
	return p.n.FirstToken()
}

// Operand returns the expression the operator applies to, or nil if it is
// missing.
func (p PrefixExpr) Operand() Expr { return nthExpr(p.view, 0) }

// BinaryExpr is a binary operator applied to two expressions.
type BinaryExpr struct{ view }

func (BinaryExpr) isExpr() {}

// Left returns the left operand.
func (b BinaryExpr) Left() Expr { return nthExpr(b.view, 0) }

// Right returns the right operand, or nil if it is missing.
func (b BinaryExpr) Right() Expr { return nthExpr(b.view, 1) }

// Op returns the operator token.
func (b BinaryExpr) Op() *tree.Token {
	if b.n == nil {
		return nil
	}
	for c := range b.n.Children() {
		if t, ok := c.(*tree.Token); ok && !t.Kind().IsTrivia() {
			return t
		}
	}
	return nil
}

// ParenExpr is an expression in parentheses.
type ParenExpr struct{ view }

func (ParenExpr) isExpr() {}

// Inner returns the parenthesized expression, or nil if it is missing.
func (p ParenExpr) Inner() Expr { return nthExpr(p.view, 0) }

func joinDotted(parts []string) string {
	return strings.Join(parts, ".")
}

func joinLines(parts []string) string {
	return strings.Join(parts, "\n")
}

// unquote strips the delimiters from a quoted token and resolves backslash
// escapes. Unterminated tokens never reach here, since they lex as errors.
func unquote(text string) string {
	if strings.HasPrefix(text, "'''") && len(text) >= 6 {
		return text[3 : len(text)-3]
	}
	if len(text) < 2 {
		return text
	}
	inner := text[1 : len(text)-1]
	if !strings.Contains(inner, `\`) {
		return inner
	}

	var b strings.Builder
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		if c != '\\' || i+1 == len(inner) {
			b.WriteByte(c)
			continue
		}
		i++
		switch inner[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		default:
			b.WriteByte(inner[i])
		}
	}
	return b.String()
}

// CastLiteral wraps n if it is a literal.
func CastLiteral(n *tree.Node) (Literal, bool) {
	v, ok := cast(n, syntax.Literal)
	return Literal{v}, ok
}

// CastPathExpr wraps n if it is a path.
func CastPathExpr(n *tree.Node) (PathExpr, bool) {
	v, ok := cast(n, syntax.Path)
	return PathExpr{v}, ok
}

// CastPrefixExpr wraps n if it is a prefix expression.
func CastPrefixExpr(n *tree.Node) (PrefixExpr, bool) {
	v, ok := cast(n, syntax.PrefixExpr)
	return PrefixExpr{v}, ok
}

// CastBinaryExpr wraps n if it is a binary expression.
func CastBinaryExpr(n *tree.Node) (BinaryExpr, bool) {
	v, ok := cast(n, syntax.BinaryExpr)
	return BinaryExpr{v}, ok
}

// CastParenExpr wraps n if it is a parenthesized expression.
func CastParenExpr(n *tree.Node) (ParenExpr, bool) {
	v, ok := cast(n, syntax.ParenExpr)
	return ParenExpr{v}, ok
}
