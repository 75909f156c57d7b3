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

// Package parser implements the schema grammar as a recursive-descent parser
// with precedence climbing for expressions.
//
// The parser does not build a tree. It reads through a [token.Source] and
// describes the tree it recognizes as a stream of events written to a [Sink];
// see package green for the implementation that builds immutable trees.
//
// Parsing is total. Whatever the input, the event stream describes a
// well-formed tree: every StartNode is matched by a FinishNode, and every
// brace-delimited block ends in an [syntax.RBrace] token, which is
// zero-length when the parser had to synthesize it. Problems are reported
// as diagnostics through [Sink.Error].
package parser

import (
	"errors"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/bufbuild/dbml/internal/lexer"
	"github.com/bufbuild/dbml/report"
	"github.com/bufbuild/dbml/syntax"
	"github.com/bufbuild/dbml/token"
)

// ErrCancelled is returned by [Parse] when the input revision advanced while
// the parse was running. The events written to the sink up to that point
// describe an incomplete tree and must be discarded.
var ErrCancelled = errors.New("dbml/parser: parse cancelled by a newer revision")

// Sink receives the events describing a parse.
type Sink interface {
	// StartNode opens a new node of the given kind as the last child of the
	// currently open node.
	StartNode(kind syntax.Kind)

	// Checkpoint returns a position that a later StartNodeAt can use to open
	// a node that retroactively contains everything emitted since.
	Checkpoint() int

	// StartNodeAt opens a new node that begins at checkpoint. checkpoint must
	// have been taken within the currently open node.
	StartNodeAt(checkpoint int, kind syntax.Kind)

	// Token appends a significant token, together with its leading trivia.
	//
	// The last Token event of a parse always has kind [syntax.EOF]. It has no
	// text of its own and only carries the input's trailing trivia.
	Token(tok token.Token)

	// FinishNode closes the most recently opened node.
	FinishNode()

	// Error reports a diagnostic. Its span is relative to the start of the
	// token source's input.
	Error(d report.Diagnostic)
}

// Options configures a parse.
type Options struct {
	// If set, the parser compares Epoch against Revision before each
	// top-level declaration, and gives up with [ErrCancelled] once Epoch has
	// moved past Revision.
	Epoch    *atomic.Uint64
	Revision uint64
}

// Parse parses a whole file from src, writing the events to sink.
//
// The only possible error is [ErrCancelled].
func Parse(src token.Source, sink Sink, opts Options) error {
	p := &parser{src: src, sink: sink, opts: opts}
	return p.file()
}

// CanParseBlock returns whether kind has a block entry point for
// [ParseBlock].
func CanParseBlock(kind syntax.Kind) bool {
	_, ok := bodyOf(kind)
	return ok
}

// ParseBlock parses a single brace-delimited block of the given kind, such as
// [syntax.TableBody], from src.
//
// The events describe a [syntax.File] node wrapping the block, followed by an
// [syntax.ErrorNode] holding anything after the block that the block did not
// consume. Panics if !CanParseBlock(kind).
func ParseBlock(kind syntax.Kind, src token.Source, sink Sink) {
	b, ok := bodyOf(kind)
	if !ok {
		panic("dbml/parser: no block entry point for " + kind.String())
	}

	p := &parser{src: src, sink: sink}
	p.start(syntax.File)
	p.body(b)
	if !p.at(syntax.EOF) {
		p.start(syntax.ErrorNode)
		for !p.at(syntax.EOF) {
			p.bump()
		}
		p.finish()
	}
	p.eof()
	p.finish()
}

// parser is the state for a single parse.
type parser struct {
	src  token.Source
	sink Sink
	opts Options

	// Closers of the delimiters currently open inside the innermost block.
	open []syntax.Kind

	// Nesting depth of expressions, to bound recursion on adversarial input.
	depth int
}

func (p *parser) cancelled() bool {
	return p.opts.Epoch != nil && p.opts.Epoch.Load() > p.opts.Revision
}

func (p *parser) start(kind syntax.Kind) {
	p.sink.StartNode(kind)
}

func (p *parser) finish() {
	p.sink.FinishNode()
}

func (p *parser) current() token.Token {
	return p.src.Current()
}

func (p *parser) at(kind syntax.Kind) bool {
	return p.src.Current().Kind == kind
}

func (p *parser) nth(n int) syntax.Kind {
	return p.src.Lookahead(n).Kind
}

func (p *parser) atKeyword(kw string) bool {
	return p.src.IsContextualKeyword(kw)
}

// bump consumes the current token into the currently open node.
func (p *parser) bump() {
	tok := p.src.Current()
	if tok.Kind == syntax.EOF {
		return
	}
	if tok.Kind == syntax.Error {
		p.lexical(tok)
	}
	p.sink.Token(tok)
	p.src.Advance()
}

// bumpJoined consumes the current token and the n tokens after it as a
// single token of the given kind. The caller must have checked
// p.src.Joined(n).
func (p *parser) bumpJoined(kind syntax.Kind, n int) {
	tok := p.src.Current()
	tok.Kind = kind
	p.src.Advance()
	for range n {
		tok.Text += p.src.Current().Text
		p.src.Advance()
	}
	p.sink.Token(tok)
}

// eof flushes the trailing trivia of the input.
func (p *parser) eof() {
	p.sink.Token(p.src.Current())
}

// eat consumes the current token if it has the given kind.
func (p *parser) eat(kind syntax.Kind) bool {
	if !p.at(kind) {
		return false
	}
	p.bump()
	return true
}

// expect consumes a token of the given kind, or reports it missing.
func (p *parser) expect(kind syntax.Kind, where string) bool {
	if p.eat(kind) {
		return true
	}
	p.missing(describeKind(kind), where)
	return false
}

// close consumes a closing delimiter of the given kind. If it is missing, it
// reports a diagnostic and emits a zero-length token in its place.
func (p *parser) close(kind syntax.Kind, where string) {
	if p.eat(kind) {
		return
	}
	p.missing(describeKind(kind), where)
	p.sink.Token(token.Token{Kind: kind})
}

// missing reports that something was expected immediately after the last
// consumed token.
func (p *parser) missing(what, where string) {
	p.errorf(report.At(p.src.PrevEnd(), 0), report.TagMissing,
		"expected %s %s, found %s", what, where, describe(p.current()))
}

// lexical reports the diagnostic paired with an error token.
func (p *parser) lexical(tok token.Token) {
	p.errorf(report.At(p.src.Offset(), len(tok.Text)), report.TagLexical,
		"%s", lexer.Describe(tok.Text))
}

// errorf reports an error diagnostic.
func (p *parser) errorf(span report.Span, tag report.Tag, format string, args ...any) {
	var r report.Report
	p.sink.Error(*r.Errorf(format, args...).With(span, tag))
}

// skip wraps a run of tokens in an error node, stopping before a token for
// which stop returns true, or at the end of input. Brace-delimited groups
// are skipped as a unit, so a stray block does not end recovery early, but
// the start of a top-level declaration always ends the run.
//
// Reports one diagnostic for the run, unless it consists only of error
// tokens, which carry their own diagnostics.
func (p *parser) skip(where string, stop func() bool) {
	if p.at(syntax.EOF) || stop() {
		return
	}

	first := p.current()
	start := p.src.Offset()
	onlyErrors := true

	p.start(syntax.ErrorNode)
	depth := 0
	for n := 0; !p.at(syntax.EOF); n++ {
		if n > 0 && ((depth == 0 && stop()) || p.startsTopLevelDecl()) {
			break
		}

		switch p.current().Kind {
		case syntax.LBrace:
			depth++
		case syntax.RBrace:
			depth = max(depth-1, 0)
		}
		if p.current().Kind != syntax.Error {
			onlyErrors = false
		}
		p.bump()

		if depth == 0 && isCloser(first.Kind) {
			// A lone unmatched closer is its own run.
			break
		}
	}
	p.finish()

	if onlyErrors {
		return
	}

	tag, verb := report.TagUnexpected, "unexpected"
	if isCloser(first.Kind) {
		tag, verb = report.TagStray, "unmatched"
	}
	p.errorf(report.Span{Start: start, End: p.src.PrevEnd()}, tag,
		"%s %s %s", verb, describe(first), where)
}

// atBoundary returns whether the current token ends every construct nested
// inside the innermost block: the end of input, a closing brace, the
// closer of some enclosing delimiter, or the start of a top-level
// declaration.
func (p *parser) atBoundary() bool {
	kind := p.current().Kind
	switch kind {
	case syntax.EOF, syntax.RBrace:
		return true
	case syntax.RBracket, syntax.RParen:
		if slices.Contains(p.open, kind) {
			return true
		}
	}
	return p.startsTopLevelDecl()
}

// onNewLine returns whether a line break separates the current token from
// the previous one.
func (p *parser) onNewLine() bool {
	return hasNewline(p.current())
}

func hasNewline(tok token.Token) bool {
	for _, tr := range tok.Leading {
		if strings.Contains(tr.Text, "\n") {
			return true
		}
	}
	return false
}

func isCloser(kind syntax.Kind) bool {
	return kind == syntax.RBrace || kind == syntax.RBracket || kind == syntax.RParen
}

func isName(kind syntax.Kind) bool {
	return kind == syntax.Ident || kind == syntax.QuotedIdent
}
