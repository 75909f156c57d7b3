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

package parser

import "github.com/bufbuild/dbml/syntax"

// Binding powers. Each infix operator has a left and a right power; an
// operator is left-associative when its right power is the larger one.
const (
	prefixPower = 40

	// Bound on expression nesting.
	maxDepth = 512
)

func infixPower(kind syntax.Kind) (left, right int, ok bool) {
	switch kind {
	case syntax.Plus, syntax.Minus:
		return 10, 11, true
	case syntax.Star, syntax.Slash, syntax.Percent:
		return 20, 21, true
	case syntax.Caret:
		return 31, 30, true
	default:
		return 0, 0, false
	}
}

func (p *parser) startsExpr() bool {
	switch p.current().Kind {
	case syntax.Number, syntax.String, syntax.Backtick, syntax.ColorLit,
		syntax.Ident, syntax.QuotedIdent, syntax.LParen,
		syntax.Minus, syntax.Plus, syntax.Bang:
		return true
	default:
		return false
	}
}

// expr parses an expression whose operators all bind at least as tightly as
// minPower. Returns false without consuming anything if no expression
// starts here.
func (p *parser) expr(minPower int) bool {
	if p.depth >= maxDepth {
		return p.tooDeep()
	}
	p.depth++
	defer func() { p.depth-- }()

	cp := p.sink.Checkpoint()
	if !p.operand() {
		return false
	}

	for {
		left, right, ok := infixPower(p.current().Kind)
		if !ok || left < minPower {
			break
		}

		p.sink.StartNodeAt(cp, syntax.BinaryExpr)
		p.bump()
		if !p.expr(right) {
			p.missing("expression", "after operator")
		}
		p.finish()
	}
	return true
}

// operand parses a prefix expression or a primary expression.
func (p *parser) operand() bool {
	switch p.current().Kind {
	case syntax.Minus, syntax.Plus, syntax.Bang:
		p.start(syntax.PrefixExpr)
		p.bump()
		if !p.expr(prefixPower) {
			p.missing("expression", "after prefix operator")
		}
		p.finish()

	case syntax.Number, syntax.String, syntax.Backtick, syntax.ColorLit:
		p.literal()

	case syntax.Ident, syntax.QuotedIdent:
		p.path()

	case syntax.LParen:
		p.start(syntax.ParenExpr)
		p.bump()
		p.nest(syntax.RParen, func() {
			if !p.expr(0) {
				p.missing("expression", "in parentheses")
			}
			p.skip("in parenthesized expression", p.atBoundary)
		})
		p.close(syntax.RParen, "to close parenthesized expression")
		p.finish()

	default:
		return false
	}
	return true
}

// literal wraps the current token in a literal node.
func (p *parser) literal() {
	p.start(syntax.Literal)
	p.bump()
	p.finish()
}

// path parses a dotted sequence of names.
func (p *parser) path() {
	p.start(syntax.Path)
	p.dotted()
	p.finish()
}

// tooDeep gives up on an expression that is nested too deeply, turning the
// rest of it into an error node.
func (p *parser) tooDeep() bool {
	if p.atBoundary() || p.at(syntax.Comma) {
		return false
	}
	stop := func() bool { return p.atBoundary() || p.at(syntax.Comma) }
	p.skip("in expression nested too deeply", stop)
	return true
}

// nest runs body with closer registered as the closer of an open
// delimiter, so that nested constructs stop in front of it.
func (p *parser) nest(closer syntax.Kind, body func()) {
	p.open = append(p.open, closer)
	body()
	p.open = p.open[:len(p.open)-1]
}
