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

// Package dbml parses database schemas written in DBML into lossless syntax
// trees, and keeps those trees up to date as the schema is edited.
//
// The tree for a file reproduces its text exactly, including whitespace,
// comments and anything the parser could not make sense of. Parsing never
// fails: problems are reported as diagnostics next to a tree that is always
// complete.
//
// # Layers
//
// Parsing proceeds through several packages, each usable on its own:
//
//  1. The lexer splits text into tokens, including trivia.
//     Also see: token.NewStream
//  2. The parser recognizes the grammar and emits build events.
//     Also see: parser.Parse
//  3. The builder turns build events into an immutable green tree.
//     Also see: green.Builder
//  4. Cursors add positions and parent links on top of green trees.
//     Also see: tree.New
//  5. Typed views give grammar constructs named accessors.
//     Also see: ast.File
//
// This package ties the layers together. Most callers only need [Parse] and
// [File.Edit]:
//
//	file := dbml.Parse("schema.dbml", text)
//	for table := range file.AST().Tables() {
//	    fmt.Println(table.Name())
//	}
//
//	file, err = file.Edit(incremental.Edit{Start: 14, Inserted: "note text\n"})
//
// # Incremental parsing
//
// Editing a [File] does not reparse the whole file when it can be avoided.
// Instead, the smallest block containing the edit is reparsed and spliced
// into the previous tree; see package incremental. Trees are immutable, so the
// previous File remains valid and can be read concurrently.
//
// To manage many files that change over time, with cancellation of work made
// stale by newer edits, use package workspace.
package dbml
