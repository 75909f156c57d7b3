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

import (
	"fmt"

	"github.com/bufbuild/dbml/syntax"
	"github.com/bufbuild/dbml/token"
)

// describe names a token for use in a diagnostic.
func describe(tok token.Token) string {
	switch tok.Kind {
	case syntax.EOF:
		return "end of input"
	case syntax.Ident:
		if token.IsKeyword(tok.Text) {
			return fmt.Sprintf("keyword `%s`", tok.Text)
		}
		return fmt.Sprintf("identifier `%s`", tok.Text)
	case syntax.QuotedIdent:
		return "quoted identifier"
	case syntax.Number:
		return "number"
	case syntax.String:
		return "string literal"
	case syntax.Backtick:
		return "backtick expression"
	case syntax.ColorLit:
		return "color literal"
	case syntax.Error:
		return "invalid input"
	}
	if tok.Kind.IsPunct() {
		return fmt.Sprintf("`%s`", tok.Text)
	}
	return tok.Kind.String()
}

// describeKind names a token kind for use in a diagnostic.
func describeKind(kind syntax.Kind) string {
	if s := kind.Spelling(); s != "" {
		return fmt.Sprintf("`%s`", s)
	}
	return describe(token.Token{Kind: kind})
}
