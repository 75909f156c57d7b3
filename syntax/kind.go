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

// Package syntax defines the closed set of kinds shared by every layer of the
// syntax tree: tokens produced by the lexer and nodes produced by the parser.
//
// A single enumeration is used for both so that a tree element can always be
// classified by its kind alone, without a type switch.
package syntax

import "fmt"

// Kind identifies what a token or node in a syntax tree represents.
type Kind uint16

const (
	Invalid Kind = iota

	// Trivia.
	Space   // A run of contiguous whitespace.
	Comment // A line or block comment.

	// Tokens with a fixed spelling.
	LBrace   // {
	RBrace   // }
	LBracket // [
	RBracket // ]
	LParen   // (
	RParen   // )
	Colon    // :
	Comma    // ,
	Dot      // .
	Lt       // <
	Gt       // >
	LtGt     // <>, formed by the parser from adjacent < and >.
	Brackets // [], formed by the parser from adjacent [ and ].
	Plus     // +
	Minus    // -
	Star     // *
	Slash    // /
	Percent  // %
	Caret    // ^
	Bang     // !
	Eq       // =

	// Tokens with variable spelling.
	Ident       // An identifier, including contextual keywords.
	QuotedIdent // A double-quoted identifier.
	Number      // An integer or decimal literal.
	String      // A single-quoted or triple-quoted string.
	Backtick    // A backtick-delimited raw expression.
	ColorLit    // A hex color such as #3498db.
	Error       // Input the lexer could not make sense of.
	EOF         // End of input. Never appears in a built tree.
	endTokens

	// Nodes.
	File
	ErrorNode

	ProjectDecl
	ProjectBody
	Property

	TableDecl
	TableAlias
	TableBody
	Column
	TypeRef
	TypeArgs

	Settings
	Setting

	IndexesBlock
	IndexesBody
	Index
	IndexTuple

	EnumDecl
	EnumBody
	EnumValue

	RefDecl
	RefBody
	RefRelation
	RefEndpoint
	ColumnTuple
	InlineRef

	TableGroupDecl
	TableGroupBody
	TableGroupItem

	NoteDecl
	NoteBody

	Name
	Path
	Literal
	PrefixExpr
	BinaryExpr
	ParenExpr
	endNodes
)

var names = [...]string{
	Invalid:  "INVALID",
	Space:    "SPACE",
	Comment:  "COMMENT",
	LBrace:   "L_BRACE",
	RBrace:   "R_BRACE",
	LBracket: "L_BRACKET",
	RBracket: "R_BRACKET",
	LParen:   "L_PAREN",
	RParen:   "R_PAREN",
	Colon:    "COLON",
	Comma:    "COMMA",
	Dot:      "DOT",
	Lt:       "LT",
	Gt:       "GT",
	LtGt:     "LT_GT",
	Brackets: "BRACKETS",
	Plus:     "PLUS",
	Minus:    "MINUS",
	Star:     "STAR",
	Slash:    "SLASH",
	Percent:  "PERCENT",
	Caret:    "CARET",
	Bang:     "BANG",
	Eq:       "EQ",

	Ident:       "IDENT",
	QuotedIdent: "QUOTED_IDENT",
	Number:      "NUMBER",
	String:      "STRING",
	Backtick:    "BACKTICK",
	ColorLit:    "COLOR",
	Error:       "ERROR",
	EOF:         "EOF",

	File:      "FILE",
	ErrorNode: "ERROR_NODE",

	ProjectDecl: "PROJECT_DECL",
	ProjectBody: "PROJECT_BODY",
	Property:    "PROPERTY",

	TableDecl:  "TABLE_DECL",
	TableAlias: "TABLE_ALIAS",
	TableBody:  "TABLE_BODY",
	Column:     "COLUMN",
	TypeRef:    "TYPE_REF",
	TypeArgs:   "TYPE_ARGS",

	Settings: "SETTINGS",
	Setting:  "SETTING",

	IndexesBlock: "INDEXES_BLOCK",
	IndexesBody:  "INDEXES_BODY",
	Index:        "INDEX",
	IndexTuple:   "INDEX_TUPLE",

	EnumDecl:  "ENUM_DECL",
	EnumBody:  "ENUM_BODY",
	EnumValue: "ENUM_VALUE",

	RefDecl:     "REF_DECL",
	RefBody:     "REF_BODY",
	RefRelation: "REF_RELATION",
	RefEndpoint: "REF_ENDPOINT",
	ColumnTuple: "COLUMN_TUPLE",
	InlineRef:   "INLINE_REF",

	TableGroupDecl: "TABLE_GROUP_DECL",
	TableGroupBody: "TABLE_GROUP_BODY",
	TableGroupItem: "TABLE_GROUP_ITEM",

	NoteDecl: "NOTE_DECL",
	NoteBody: "NOTE_BODY",

	Name:       "NAME",
	Path:       "PATH",
	Literal:    "LITERAL",
	PrefixExpr: "PREFIX_EXPR",
	BinaryExpr: "BINARY_EXPR",
	ParenExpr:  "PAREN_EXPR",
}

// String implements [fmt.Stringer].
func (k Kind) String() string {
	if int(k) < len(names) && names[k] != "" {
		return names[k]
	}
	return fmt.Sprintf("syntax.Kind(%d)", int(k))
}

// GoString implements [fmt.GoStringer].
func (k Kind) GoString() string {
	return "syntax." + k.String()
}

// IsTrivia returns whether this kind is skipped by the parser but kept in
// the tree.
func (k Kind) IsTrivia() bool {
	return k == Space || k == Comment
}

// IsToken returns whether this is a leaf kind.
func (k Kind) IsToken() bool {
	return k > Invalid && k < endTokens
}

// IsNode returns whether this is an interior kind.
func (k Kind) IsNode() bool {
	return k > endTokens && k < endNodes
}

// IsPunct returns whether this token kind has a fixed spelling.
func (k Kind) IsPunct() bool {
	return k >= LBrace && k <= Eq
}

// IsBlock returns whether this node kind is a brace-delimited body.
//
// Every block begins with an [LBrace] token and ends with an [RBrace] token,
// which may be zero-length if the parser had to synthesize it.
func (k Kind) IsBlock() bool {
	switch k {
	case ProjectBody, TableBody, IndexesBody, EnumBody,
		RefBody, TableGroupBody, NoteBody:
		return true
	default:
		return false
	}
}

// Spelling returns the canonical text of a fixed-spelling token kind, or the
// empty string for any other kind.
func (k Kind) Spelling() string {
	switch k {
	case LBrace:
		return "{"
	case RBrace:
		return "}"
	case LBracket:
		return "["
	case RBracket:
		return "]"
	case LParen:
		return "("
	case RParen:
		return ")"
	case Colon:
		return ":"
	case Comma:
		return ","
	case Dot:
		return "."
	case Lt:
		return "<"
	case Gt:
		return ">"
	case LtGt:
		return "<>"
	case Brackets:
		return "[]"
	case Plus:
		return "+"
	case Minus:
		return "-"
	case Star:
		return "*"
	case Slash:
		return "/"
	case Percent:
		return "%"
	case Caret:
		return "^"
	case Bang:
		return "!"
	case Eq:
		return "="
	default:
		return ""
	}
}
