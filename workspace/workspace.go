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

// Package workspace tracks a set of open schema files as they are edited, and
// caches their parsed trees.
//
// Parsed files are queries on an [query.Executor], keyed by path and
// revision. Every change to any file advances a global epoch. A parse records
// the epoch it started at and gives up as soon as the epoch moves on, so that
// a result computed against stale text is never cached; the parse is retried
// for the file's current text if that file has not itself changed.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/bufbuild/dbml"
	"github.com/bufbuild/dbml/green"
	"github.com/bufbuild/dbml/incremental"
	"github.com/bufbuild/dbml/internal/logging"
	"github.com/bufbuild/dbml/internal/query"
	"github.com/bufbuild/dbml/parser"
)

// ErrNotOpen is returned for a path that is not open in the workspace.
var ErrNotOpen = errors.New("dbml/workspace: file not open")

// Options configures a [Workspace].
type Options struct {
	// Maximum number of files parsed at once. Zero or negative means
	// GOMAXPROCS.
	Parallelism int

	// Receives debug logs about reparses. Defaults to discarding them.
	Logger *log.Logger
}

// Workspace is a set of open files. It is safe for concurrent use.
type Workspace struct {
	mu    sync.Mutex
	docs  map[string]*document
	epoch atomic.Uint64

	exec   *query.Executor
	logger *log.Logger
}

type document struct {
	text     string
	revision uint64

	// The last result computed, and the edits made since; edits made before
	// the first result are recorded too. If base is current, edits is empty.
	base  *incremental.Result
	edits []incremental.Edit

	// Interns the nodes of this document's trees. Trimmed to the current
	// tree whenever base is replaced.
	cache *green.Cache
}

// New returns an empty workspace.
func New(opts Options) *Workspace {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &Workspace{
		docs:   make(map[string]*document),
		exec:   query.New(query.WithParallelism(opts.Parallelism)),
		logger: logger,
	}
}

// Epoch returns the current epoch, which advances with every change.
func (w *Workspace) Epoch() uint64 {
	return w.epoch.Load()
}

// Open opens path with the given text, replacing it if it is already open.
// Returns the file's new revision.
func (w *Workspace) Open(path, text string) uint64 {
	w.mu.Lock()
	old, hadOld := w.docs[path]
	rev := w.epoch.Add(1)
	w.docs[path] = &document{text: text, revision: rev, cache: new(green.Cache)}
	w.mu.Unlock()

	if hadOld {
		w.exec.Invalidate(keys(path, old.revision)...)
	}
	return rev
}

// Change applies an edit to an open file. Returns the file's new revision.
func (w *Workspace) Change(path string, edit incremental.Edit) (uint64, error) {
	w.mu.Lock()
	doc, ok := w.docs[path]
	if !ok {
		w.mu.Unlock()
		return 0, fmt.Errorf("%w: %s", ErrNotOpen, path)
	}
	text, err := edit.Apply(doc.text)
	if err != nil {
		w.mu.Unlock()
		return 0, err
	}

	old := doc.revision
	doc.text = text
	doc.revision = w.epoch.Add(1)
	doc.edits = append(doc.edits, edit)
	rev := doc.revision
	w.mu.Unlock()

	w.exec.Invalidate(keys(path, old)...)
	return rev, nil
}

// Close forgets path.
func (w *Workspace) Close(path string) {
	w.mu.Lock()
	doc, ok := w.docs[path]
	delete(w.docs, path)
	w.mu.Unlock()

	if ok {
		w.exec.Invalidate(keys(path, doc.revision)...)
	}
}

// Paths returns the open paths, sorted.
func (w *Workspace) Paths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	paths := make([]string, 0, len(w.docs))
	for path := range w.docs {
		paths = append(paths, path)
	}
	slices.Sort(paths)
	return paths
}

// Text returns the current text of path.
func (w *Workspace) Text(path string) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	doc, ok := w.docs[path]
	if !ok {
		return "", false
	}
	return doc.text, true
}

// File returns the parsed form of the current text of path, parsing it if it
// is not cached.
//
// Returns ctx.Err() if ctx ends first, or [parser.ErrCancelled] if the file
// itself changed while it was being parsed.
func (w *Workspace) File(ctx context.Context, path string) (*dbml.File, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rev, err := w.revision(path)
		if err != nil {
			return nil, err
		}

		results, err := query.Run(ctx, w.exec, fileQuery{w, path, rev})
		if err != nil {
			return nil, err
		}

		res := results[0]
		switch {
		case errors.Is(res.Fatal, parser.ErrCancelled):
			if now, _ := w.revision(path); now != rev {
				return nil, parser.ErrCancelled
			}
			w.logger.Debug("parse cancelled by another file, retrying", "path", path)
			continue
		case res.Fatal != nil:
			return nil, res.Fatal
		}
		return res.Value, nil
	}
}

// ParseAll returns the parsed form of each of paths, parsing files in
// parallel.
func (w *Workspace) ParseAll(ctx context.Context, paths []string) ([]*dbml.File, error) {
	files := make([]*dbml.File, len(paths))
	grp, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		grp.Go(func() error {
			file, err := w.File(ctx, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			files[i] = file
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

func (w *Workspace) revision(path string) (uint64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if doc, ok := w.docs[path]; ok {
		return doc.revision, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrNotOpen, path)
}

// snapshot returns the state of path needed to parse revision rev of it,
// together with the epoch it was taken at.
func (w *Workspace) snapshot(path string, rev uint64) (document, uint64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	doc, ok := w.docs[path]
	switch {
	case !ok:
		return document{}, 0, fmt.Errorf("%w: %s", ErrNotOpen, path)
	case doc.revision != rev:
		return document{}, 0, parser.ErrCancelled
	}

	snap := *doc
	snap.edits = slices.Clone(doc.edits)
	return snap, w.epoch.Load(), nil
}

// parse brings snap up to date, reparsing incrementally when a previous
// result is available. The parse is cancelled once the workspace moves past
// epoch.
func (w *Workspace) parse(path string, snap document, epoch uint64) (*incremental.Result, error) {
	opts := incremental.Options{
		Cache:    snap.cache,
		Epoch:    &w.epoch,
		Revision: epoch,
	}

	if snap.base == nil {
		w.logger.Debug("parsing", "path", path, "revision", snap.revision)
		return incremental.Parse(snap.text, opts)
	}

	result := snap.base
	for _, edit := range snap.edits {
		next, err := incremental.Reparse(result, edit, opts)
		if err != nil {
			return nil, err
		}
		if next.Incremental {
			w.logger.Debug("reparsed block", "path", path, "edit", edit)
		} else {
			w.logger.Debug("reparsed file", "path", path, "edit", edit, "reason", next.Fallback)
		}
		result = next
	}
	return result, nil
}

// store makes result, which was computed from snap, the base for the next
// parse of path.
func (w *Workspace) store(path string, snap document, result *incremental.Result) {
	w.mu.Lock()
	defer w.mu.Unlock()

	doc, ok := w.docs[path]
	switch {
	case !ok || doc.cache != snap.cache:
		return
	case doc.revision == snap.revision:
		doc.edits = nil
	case doc.base == snap.base && len(doc.edits) >= len(snap.edits):
		// Edited again in the meantime. The result is still a better base
		// for the next parse than the old one.
		doc.edits = doc.edits[len(snap.edits):]
	default:
		return
	}
	doc.base = result
	doc.cache.Retain(result.Root)
}
