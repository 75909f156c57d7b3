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

// Top-level declaration keywords.
var declKeywords = []string{"Table", "Enum", "Ref", "Project", "TableGroup", "Note"}

// file parses the whole input as a sequence of declarations.
func (p *parser) file() error {
	p.start(syntax.File)
	for !p.at(syntax.EOF) {
		if p.cancelled() {
			return ErrCancelled
		}
		p.decl()
	}
	p.eof()
	p.finish()
	return nil
}

// atDeclKeyword returns whether the current token is a top-level declaration
// keyword, whatever follows it.
func (p *parser) atDeclKeyword() bool {
	for _, kw := range declKeywords {
		if p.atKeyword(kw) {
			return true
		}
	}
	return false
}

// startsTopLevelDecl returns whether the tokens at the cursor unambiguously
// begin a declaration that can only appear at the top level. Bodies are
// closed implicitly when one appears inside them.
func (p *parser) startsTopLevelDecl() bool {
	switch {
	case p.atKeyword("Table"), p.atKeyword("Enum"),
		p.atKeyword("Project"), p.atKeyword("TableGroup"):
		if p.nth(1) == syntax.LBrace {
			return true
		}
		if !isName(p.nth(1)) {
			return false
		}
		switch p.nth(2) {
		case syntax.LBrace, syntax.LBracket, syntax.Dot:
			return true
		case syntax.Ident:
			return p.src.Lookahead(2).Text == "as"
		}
	case p.atKeyword("Ref"):
		switch p.nth(1) {
		case syntax.Colon, syntax.LBrace:
			return true
		case syntax.Ident, syntax.QuotedIdent:
			next := p.nth(2)
			return next == syntax.Colon || next == syntax.LBrace
		}
	}
	return false
}

func (p *parser) decl() {
	switch {
	case p.atKeyword("Table"):
		p.table()
	case p.atKeyword("Enum"):
		p.enum()
	case p.atKeyword("Ref"):
		p.ref()
	case p.atKeyword("Project"):
		p.project()
	case p.atKeyword("TableGroup"):
		p.tableGroup()
	case p.atKeyword("Note"):
		p.note()
	default:
		p.skip("at top level", p.atDeclKeyword)
	}
}

// name parses a declaration name, which may be qualified by a schema.
func (p *parser) name(where string) {
	if !isName(p.current().Kind) {
		p.missing("name", where)
		return
	}
	p.start(syntax.Name)
	p.dotted()
	p.finish()
}

// word wraps a single name token in a name node.
func (p *parser) word() {
	p.start(syntax.Name)
	p.bump()
	p.finish()
}

// words wraps a run of identifiers on one line, such as `not null`, in a
// name node.
func (p *parser) words() {
	p.start(syntax.Name)
	p.bump()
	for p.at(syntax.Ident) && !p.onNewLine() {
		p.bump()
	}
	p.finish()
}

// dotted consumes a name and any dotted continuation of it.
func (p *parser) dotted() {
	p.bump()
	for p.at(syntax.Dot) && isName(p.nth(1)) {
		p.bump()
		p.bump()
	}
}

// body parses a brace-delimited block, closing it virtually if the closing
// brace is missing.
func (p *parser) body(b body) {
	p.start(b.kind)
	if !p.eat(syntax.LBrace) {
		p.missing("`{`", "to open "+b.where)
	}

	open := p.open
	p.open = nil
	stop := func() bool { return p.at(syntax.RBrace) || b.starts(p) || p.startsTopLevelDecl() }
	for !p.at(syntax.EOF) && !p.at(syntax.RBrace) && !p.startsTopLevelDecl() {
		if b.starts(p) {
			b.item(p)
			continue
		}
		p.skip("in "+b.where, stop)
	}
	p.open = open

	p.close(syntax.RBrace, "to close "+b.where)
	p.finish()
}

// bodyOrMissing parses a block of the given kind if one starts here.
func (p *parser) bodyOrMissing(kind syntax.Kind, where string) {
	b, _ := bodyOf(kind)
	if p.at(syntax.LBrace) {
		p.body(b)
		return
	}
	p.missing("`{`", where)
}

type body struct {
	kind   syntax.Kind
	where  string
	starts func(*parser) bool
	item   func(*parser)
}

// bodyOf returns the grammar of each kind of block.
func bodyOf(kind syntax.Kind) (body, bool) {
	atName := func(p *parser) bool { return isName(p.current().Kind) }

	switch kind {
	case syntax.TableBody:
		return body{kind, "table body", atName, (*parser).tableItem}, true
	case syntax.IndexesBody:
		starts := func(p *parser) bool {
			return atName(p) || p.at(syntax.LParen) || p.at(syntax.Backtick)
		}
		return body{kind, "indexes block", starts, (*parser).index}, true
	case syntax.EnumBody:
		return body{kind, "enum body", atName, (*parser).enumValue}, true
	case syntax.RefBody:
		starts := func(p *parser) bool { return atName(p) || p.at(syntax.LParen) }
		return body{kind, "ref body", starts, (*parser).refRelation}, true
	case syntax.ProjectBody:
		return body{kind, "project body", atName, (*parser).projectItem}, true
	case syntax.TableGroupBody:
		return body{kind, "table group body", atName, (*parser).tableGroupItem}, true
	case syntax.NoteBody:
		starts := func(p *parser) bool { return p.at(syntax.String) || p.at(syntax.Backtick) }
		return body{kind, "note body", starts, (*parser).literal}, true
	default:
		return body{}, false
	}
}

// Table users as U [headercolor: #fff] { ... }
func (p *parser) table() {
	p.start(syntax.TableDecl)
	p.bump()
	p.name("after `Table`")
	if p.atKeyword("as") {
		p.start(syntax.TableAlias)
		p.bump()
		p.name("after `as`")
		p.finish()
	}
	if p.at(syntax.LBracket) {
		p.settings()
	}
	p.bodyOrMissing(syntax.TableBody, "after table name")
	p.finish()
}

func (p *parser) tableItem() {
	switch {
	case p.atKeyword("indexes") && p.nth(1) == syntax.LBrace:
		p.start(syntax.IndexesBlock)
		p.bump()
		b, _ := bodyOf(syntax.IndexesBody)
		p.body(b)
		p.finish()
	case p.atNote():
		p.note()
	default:
		p.column()
	}
}

// atNote returns whether a note declaration starts here, as opposed to an
// item that happens to be named Note.
func (p *parser) atNote() bool {
	if !p.atKeyword("Note") {
		return false
	}
	switch p.nth(1) {
	case syntax.Colon, syntax.LBrace:
		return true
	case syntax.Ident, syntax.QuotedIdent:
		return p.nth(2) == syntax.LBrace
	}
	return false
}

// id int [pk]
func (p *parser) column() {
	p.start(syntax.Column)
	p.word()
	if isName(p.current().Kind) && !p.onNewLine() {
		p.typeRef()
	} else {
		p.missing("column type", "after column name")
	}
	if p.at(syntax.LBracket) {
		p.settings()
	}
	p.finish()
}

// varchar(255), int[]
func (p *parser) typeRef() {
	p.start(syntax.TypeRef)
	p.name("")
	if p.at(syntax.LParen) {
		p.start(syntax.TypeArgs)
		p.bump()
		p.list(syntax.RParen, "in type arguments", (*parser).startsExpr, func() { p.expr(0) })
		p.close(syntax.RParen, "to close type arguments")
		p.finish()
	}
	for p.at(syntax.LBracket) && p.nth(1) == syntax.RBracket && p.src.Joined(1) {
		p.bumpJoined(syntax.Brackets, 1)
	}
	p.finish()
}

// [pk, not null, default: 1, ref: > users.id]
func (p *parser) settings() {
	p.start(syntax.Settings)
	p.bump()
	p.list(syntax.RBracket, "in settings", func(p *parser) bool { return isName(p.current().Kind) }, p.setting)
	p.close(syntax.RBracket, "to close settings")
	p.finish()
}

func (p *parser) setting() {
	p.start(syntax.Setting)
	inline := p.atKeyword("ref")
	p.words()
	if p.eat(syntax.Colon) {
		if inline {
			p.start(syntax.InlineRef)
			p.relOp()
			p.refEndpoint()
			p.finish()
		} else {
			p.value("after `:`")
		}
	}
	p.finish()
}

// value parses the value of a setting or property: an expression, or a run
// of words such as `set null`.
func (p *parser) value(where string) {
	switch {
	case p.at(syntax.Ident) && p.nth(1) == syntax.Ident && !hasNewline(p.src.Lookahead(1)):
		p.words()
	case p.startsExpr():
		p.expr(0)
	default:
		p.missing("value", where)
	}
}

// list parses a comma-separated list ending before closer. The caller
// consumes the opening and closing delimiters.
func (p *parser) list(closer syntax.Kind, where string, starts func(*parser) bool, item func()) {
	p.nest(closer, func() {
		stop := func() bool {
			return p.at(syntax.Comma) || p.atBoundary() || starts(p)
		}
		for !p.atBoundary() {
			if starts(p) {
				item()
			} else {
				p.skip(where, stop)
			}

			switch {
			case p.eat(syntax.Comma), p.atBoundary():
			case starts(p):
				p.missing("`,`", where)
			}
		}
	})
}

// Enum status { active inactive [note: 'gone'] }
func (p *parser) enum() {
	p.start(syntax.EnumDecl)
	p.bump()
	p.name("after `Enum`")
	p.bodyOrMissing(syntax.EnumBody, "after enum name")
	p.finish()
}

func (p *parser) enumValue() {
	p.start(syntax.EnumValue)
	p.word()
	if p.at(syntax.LBracket) {
		p.settings()
	}
	p.finish()
}

// (id, name) [unique], `lower(name)`, name
func (p *parser) index() {
	p.start(syntax.Index)
	switch {
	case p.at(syntax.LParen):
		p.start(syntax.IndexTuple)
		p.bump()
		starts := func(p *parser) bool { return isName(p.current().Kind) || p.at(syntax.Backtick) }
		p.list(syntax.RParen, "in index", starts, func() {
			if p.at(syntax.Backtick) {
				p.literal()
			} else {
				p.word()
			}
		})
		p.close(syntax.RParen, "to close index")
		p.finish()
	case p.at(syntax.Backtick):
		p.literal()
	default:
		p.word()
	}
	if p.at(syntax.LBracket) {
		p.settings()
	}
	p.finish()
}

// Ref name: a.b > c.d [delete: cascade]
// Ref name { a.b > c.d }
func (p *parser) ref() {
	p.start(syntax.RefDecl)
	p.bump()
	if isName(p.current().Kind) {
		p.name("")
	}
	switch {
	case p.eat(syntax.Colon):
		p.refRelation()
	case p.at(syntax.LBrace):
		b, _ := bodyOf(syntax.RefBody)
		p.body(b)
	default:
		p.missing("`:` or `{`", "after `Ref`")
	}
	p.finish()
}

func (p *parser) refRelation() {
	p.start(syntax.RefRelation)
	p.refEndpoint()
	p.relOp()
	p.refEndpoint()
	if p.at(syntax.LBracket) {
		p.settings()
	}
	p.finish()
}

// relOp consumes a relationship operator, merging `<` `>` into `<>`.
func (p *parser) relOp() {
	switch p.current().Kind {
	case syntax.Lt:
		if p.nth(1) == syntax.Gt && p.src.Joined(1) {
			p.bumpJoined(syntax.LtGt, 1)
			return
		}
		p.bump()
	case syntax.Gt, syntax.Minus, syntax.LtGt:
		p.bump()
	default:
		p.missing("relationship operator", "in reference")
	}
}

// users.id, schema.users.id, posts.(a, b)
func (p *parser) refEndpoint() {
	switch {
	case p.at(syntax.LParen):
		p.start(syntax.RefEndpoint)
		p.columnTuple()
		p.finish()
	case isName(p.current().Kind):
		p.start(syntax.RefEndpoint)
		p.path()
		if p.at(syntax.Dot) && p.nth(1) == syntax.LParen {
			p.bump()
			p.columnTuple()
		}
		p.finish()
	default:
		p.missing("reference endpoint", "in reference")
	}
}

func (p *parser) columnTuple() {
	p.start(syntax.ColumnTuple)
	p.bump()
	p.list(syntax.RParen, "in column list", func(p *parser) bool { return isName(p.current().Kind) }, p.word)
	p.close(syntax.RParen, "to close column list")
	p.finish()
}

// Project shop { database_type: 'PostgreSQL' }
func (p *parser) project() {
	p.start(syntax.ProjectDecl)
	p.bump()
	if isName(p.current().Kind) {
		p.name("")
	}
	p.bodyOrMissing(syntax.ProjectBody, "after project name")
	p.finish()
}

func (p *parser) projectItem() {
	if p.atNote() {
		p.note()
		return
	}

	p.start(syntax.Property)
	p.word()
	p.expect(syntax.Colon, "after property name")
	p.value("in property")
	p.finish()
}

// TableGroup core { users posts }
func (p *parser) tableGroup() {
	p.start(syntax.TableGroupDecl)
	p.bump()
	p.name("after `TableGroup`")
	if p.at(syntax.LBracket) {
		p.settings()
	}
	p.bodyOrMissing(syntax.TableGroupBody, "after table group name")
	p.finish()
}

func (p *parser) tableGroupItem() {
	p.start(syntax.TableGroupItem)
	p.path()
	p.finish()
}

// Note: 'text'
// Note name { 'text' }
func (p *parser) note() {
	p.start(syntax.NoteDecl)
	p.bump()
	if isName(p.current().Kind) {
		p.name("")
	}
	switch {
	case p.eat(syntax.Colon):
		p.value("after `:`")
	case p.at(syntax.LBrace):
		b, _ := bodyOf(syntax.NoteBody)
		p.body(b)
	default:
		p.missing("`:` or `{`", "after `Note`")
	}
	p.finish()
}
