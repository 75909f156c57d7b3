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

package workspace

import (
	"github.com/bufbuild/dbml"
	"github.com/bufbuild/dbml/incremental"
	"github.com/bufbuild/dbml/internal/query"
)

type parseKey struct {
	path     string
	revision uint64
}

type fileKey parseKey

// keys returns the keys of every query for a revision of path.
func keys(path string, revision uint64) []any {
	return []any{parseKey{path, revision}, fileKey{path, revision}}
}

// parseQuery is a [query.Query] for the syntax tree of a revision of a file.
//
// A parse cancelled by a newer epoch fails with a transient
// [parser.ErrCancelled], so it runs again when next requested.
type parseQuery struct {
	w        *Workspace
	path     string
	revision uint64
}

var _ query.Query[*incremental.Result] = parseQuery{}

// Key implements [query.Query].
func (q parseQuery) Key() any {
	return parseKey{q.path, q.revision}
}

// Execute implements [query.Query].
func (q parseQuery) Execute(*query.Task) (*incremental.Result, error) {
	snap, epoch, err := q.w.snapshot(q.path, q.revision)
	if err == nil {
		var result *incremental.Result
		if result, err = q.w.parse(q.path, snap, epoch); err == nil {
			q.w.store(q.path, snap, result)
			return result, nil
		}
	}
	// Either the file was closed or it moved on. Neither result belongs in
	// the cache.
	return nil, query.Transient(err)
}

// fileQuery is a [query.Query] for a revision of a file as a [dbml.File].
type fileQuery parseQuery

var _ query.Query[*dbml.File] = fileQuery{}

// Key implements [query.Query].
func (q fileQuery) Key() any {
	return fileKey{q.path, q.revision}
}

// Execute implements [query.Query].
func (q fileQuery) Execute(t *query.Task) (*dbml.File, error) {
	r, err := query.Resolve(t, parseQuery(q))
	if err != nil {
		return nil, err
	}
	if r[0].Fatal != nil {
		return nil, r[0].Fatal
	}
	return dbml.FromResult(q.path, r[0].Value), nil
}
