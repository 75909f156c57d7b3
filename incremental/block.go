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

package incremental

import (
	"github.com/bufbuild/dbml/green"
	"github.com/bufbuild/dbml/internal/lexer"
	"github.com/bufbuild/dbml/parser"
	"github.com/bufbuild/dbml/report"
	"github.com/bufbuild/dbml/syntax"
	"github.com/bufbuild/dbml/token"
	"github.com/bufbuild/dbml/tree"
)

// reparseBlock attempts an incremental reparse. On failure, it returns the
// reason a full reparse is needed.
func reparseBlock(old *Result, edit Edit, text string, cache *green.Cache) (*Result, string) {
	block := enclosingBlock(tree.New(old.Root), edit.Span())
	if block == nil {
		return nil, "no enclosing block"
	}

	span := block.Span()
	blockText := text[span.Start : span.End+edit.Delta()]
	if !isOneBlock(blockText) {
		return nil, "edited block is not balanced"
	}

	var r report.Report
	b := green.NewBuilder(cache, span.Start, &r)
	parser.ParseBlock(block.Kind(), token.NewStream(blockText), b)
	wrapper := b.Finish()

	if wrapper.NumChildren() != 1 {
		return nil, "edited block has leftover tokens"
	}
	body, ok := wrapper.Child(0).(*green.Node)
	if !ok || body.Kind() != block.Kind() || !hasRealClose(body) {
		return nil, "edited block closes early"
	}

	// Rebuild the path from the block up to the root, sharing every
	// sibling along the way.
	root := body
	for n := block; n.Parent() != nil; n = n.Parent() {
		root = n.Parent().Green().Replace(n.Index(), root)
	}

	return &Result{
		Text:        text,
		Root:        root,
		Diagnostics: spliceDiagnostics(old.Diagnostics, span, edit.Delta(), r.Diagnostics),
		Incremental: true,
	}, ""
}

// enclosingBlock returns the smallest block that can be reparsed on its own
// and strictly contains span, so that the edit touches neither of its
// braces.
func enclosingBlock(root *tree.Node, span report.Span) *tree.Node {
	covering := root.CoveringNode(span)
	if covering == nil {
		return nil
	}
	for n := range covering.Ancestors() {
		s := n.Span()
		if !n.Kind().IsBlock() || !parser.CanParseBlock(n.Kind()) ||
			s.Start >= span.Start || span.End >= s.End {
			continue
		}
		if first := n.Green().Child(0); first.Kind() != syntax.LBrace || !hasRealClose(n.Green()) {
			continue
		}
		return n
	}
	return nil
}

// hasRealClose returns whether a block ends in a closing brace that is
// present in the source.
func hasRealClose(block *green.Node) bool {
	n := block.NumChildren()
	if n == 0 {
		return false
	}
	last, ok := block.Child(n - 1).(*green.Token)
	return ok && last.Kind() == syntax.RBrace && !last.IsVirtual()
}

// isOneBlock returns whether text lexes as a single brace-delimited group:
// an opening brace at the very start, whose matching closing brace is at the
// very end.
func isOneBlock(text string) bool {
	depth, offset := 0, 0
	for tok := range lexer.Lex(text) {
		switch {
		case offset == 0 && tok.Kind != syntax.LBrace:
			return false
		case offset > 0 && depth == 0:
			// Something follows the matching closing brace.
			return false
		}

		switch tok.Kind {
		case syntax.LBrace:
			depth++
		case syntax.RBrace:
			depth--
		}
		offset += len(tok.Text)
	}
	return offset > 0 && depth == 0
}
