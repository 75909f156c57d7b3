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

package query

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Executor is a caching executor for queries. It is safe for concurrent use.
//
// See [New], [Run] and [Executor.Invalidate].
type Executor struct {
	dirty sync.RWMutex
	tasks sync.Map // [any, *task]
	links sync.Mutex

	sema *semaphore.Weighted
}

// Option configures an [Executor].
type Option func(*Executor)

// WithParallelism bounds the number of queries executing at once. Zero or
// negative means GOMAXPROCS.
func WithParallelism(n int) Option {
	return func(e *Executor) {
		if n <= 0 {
			n = runtime.GOMAXPROCS(0)
		}
		e.sema = semaphore.NewWeighted(int64(n))
	}
}

// New constructs an empty executor.
func New(options ...Option) *Executor {
	e := new(Executor)
	WithParallelism(0)(e)
	for _, opt := range options {
		opt(e)
	}
	return e
}

// Keys returns the keys of the queries whose results are currently cached,
// sorted by their printed form.
func (e *Executor) Keys() []any {
	var keys []any
	e.tasks.Range(func(key, t any) bool {
		if r := t.(*task).result.Load(); r != nil && closed(r.done) && !r.abandoned {
			keys = append(keys, key)
		}
		return true
	})
	slices.SortFunc(keys, func(a, b any) int {
		return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
	})
	return keys
}

// Run executes queries on e in parallel and returns their results.
//
// The error is only non-nil if ctx ends first, in which case it is the cause
// of cancellation. Errors from the queries themselves are in the results.
func Run[T any](ctx context.Context, e *Executor, queries ...Query[T]) ([]Result[T], error) {
	e.dirty.RLock()
	defer e.dirty.RUnlock()

	return Resolve(&Task{ctx: ctx, exec: e}, queries...)
}

// Invalidate drops the cached results of the queries with the given keys,
// and of every query that depended on them. Keys that are not cached are
// ignored.
//
// Invalidate waits for calls to [Run] that are in progress to complete.
func (e *Executor) Invalidate(keys ...any) {
	present := slices.ContainsFunc(keys, func(key any) bool {
		_, ok := e.tasks.Load(key)
		return ok
	})
	if !present {
		return
	}

	e.dirty.Lock()
	defer e.dirty.Unlock()

	var queue []*task
	for _, key := range keys {
		if t, ok := e.tasks.Load(key); ok {
			queue = append(queue, t.(*task))
		}
	}

	seen := make(map[*task]bool)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if seen[next] {
			continue
		}
		seen[next] = true

		e.tasks.CompareAndDelete(next.key, next)
		e.links.Lock()
		for up := range next.upstream {
			delete(up.downstream, next)
		}
		for down := range next.downstream {
			queue = append(queue, down)
		}
		e.links.Unlock()
	}
}

// getTask returns the task for key, creating it if necessary.
func (e *Executor) getTask(key any) *task {
	if t, ok := e.tasks.Load(key); ok {
		return t.(*task)
	}
	t, _ := e.tasks.LoadOrStore(key, &task{key: key})
	return t.(*task)
}

// Task is a query being executed. It is passed to [Query.Execute], and is
// used to resolve the query's dependencies.
type Task struct {
	ctx  context.Context //nolint:containedctx
	exec *Executor

	// Nil for the root of a [Run].
	task   *task
	caller *Task
}

// Context returns the context of the [Run] this task is part of.
func (t *Task) Context() context.Context {
	return t.ctx
}

// Resolve executes queries as dependencies of caller, in parallel, and
// returns their results.
//
// As with [Run], the error is only non-nil if the context ends first.
func Resolve[T any](caller *Task, queries ...Query[T]) ([]Result[T], error) {
	results := make([]Result[T], len(queries))
	errs := make([]error, len(queries))

	if caller.task != nil {
		// Give up the caller's slot while waiting, so that chains of
		// dependencies cannot exhaust the executor's parallelism.
		caller.exec.sema.Release(1)
		defer func() {
			_ = caller.exec.sema.Acquire(context.WithoutCancel(caller.ctx), 1)
		}()
	}

	var wg sync.WaitGroup
	for i, q := range queries {
		key := q.Key()
		if cycle := caller.cycle(key); cycle != nil {
			results[i].Fatal = cycle
			continue
		}

		dep := caller.exec.getTask(key)
		if caller.task != nil {
			caller.exec.link(caller.task, dep)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := run(caller, dep, q)
			if err != nil {
				errs[i] = err
				return
			}
			if r.value != nil {
				// Distinct query types sharing a key is a programming error,
				// so a failed assertion may panic.
				results[i].Value = r.value.(T) //nolint:errcheck
			}
			results[i].Fatal = r.fatal
		}()
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, context.Cause(caller.ctx)
	}
	return results, nil
}

// cycle returns the cycle closed by resolving key from t, if any.
func (t *Task) cycle(key any) *ErrCycle {
	var chain []any
	for c := t; c != nil && c.task != nil; c = c.caller {
		chain = append(chain, c.task.key)
		if c.task.key != key {
			continue
		}
		slices.Reverse(chain)
		return &ErrCycle{Keys: append(chain, key)}
	}
	return nil
}

// task is the bookkeeping for a memoized query.
type task struct {
	key any

	// Guarded by Executor.links.
	upstream, downstream map[*task]struct{}

	// Nil if the query has not started, or if its last execution was
	// abandoned. Complete once result.done is closed.
	result atomic.Pointer[result]
}

// link records that down depends on up.
func (e *Executor) link(down, up *task) {
	e.links.Lock()
	defer e.links.Unlock()

	if down.upstream == nil {
		down.upstream = make(map[*task]struct{})
	}
	if up.downstream == nil {
		up.downstream = make(map[*task]struct{})
	}
	down.upstream[up] = struct{}{}
	up.downstream[down] = struct{}{}
}

type result struct {
	value any
	fatal error
	done  chan struct{}

	// Set before done is closed when this result must not be reused.
	abandoned bool
}

func (r *result) abandon(t *task) {
	r.abandoned = true
	t.result.CompareAndSwap(r, nil)
	close(r.done)
}

// run returns the result of q, executing it unless another caller already
// has, or is.
func run[T any](caller *Task, t *task, q Query[T]) (*result, error) {
	for {
		if r := t.result.Load(); r != nil {
			select {
			case <-r.done:
				if r.abandoned {
					continue
				}
				return r, nil
			case <-caller.ctx.Done():
				return nil, context.Cause(caller.ctx)
			}
		}

		r := &result{done: make(chan struct{})}
		if t.result.CompareAndSwap(nil, r) {
			return execute(caller, t, q, r)
		}
	}
}

func execute[T any](caller *Task, t *task, q Query[T], r *result) (*result, error) {
	exec := caller.exec
	if err := exec.sema.Acquire(caller.ctx, 1); err != nil {
		r.abandon(t)
		return nil, err
	}
	defer exec.sema.Release(1)

	finished := false
	defer func() {
		if !finished {
			// Execute panicked or called runtime.Goexit.
			r.abandon(t)
		}
	}()

	callee := &Task{ctx: caller.ctx, exec: exec, task: t, caller: caller}
	value, err := q.Execute(callee)
	r.value, r.fatal = value, err
	finished = true

	var transient *transientError
	if errors.As(err, &transient) {
		r.abandon(t)
		return r, nil
	}
	close(r.done)
	return r, nil
}

// closed checks if ch is closed.
func closed[T any](ch <-chan T) bool {
	select {
	case _, ok := <-ch:
		return !ok
	default:
		return false
	}
}
