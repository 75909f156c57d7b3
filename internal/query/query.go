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

// Package query is a caching executor for memoized computations.
//
// A [Query] names a computation by a comparable key. An [Executor] runs each
// query at most once, sharing the result with every caller that asks for the
// same key, until the key is invalidated. Queries may depend on other
// queries through [Resolve]; invalidating a query also invalidates every
// query that depended on it.
package query

import (
	"fmt"
	"strings"
)

// Query is a computation that an [Executor] can memoize.
type Query[T any] interface {
	// Key returns a comparable value identifying this query. Two queries
	// with equal keys must compute the same thing.
	Key() any

	// Execute computes the query's value. It is only called when the value
	// is not already cached.
	Execute(*Task) (T, error)
}

// Result is the outcome of running a query.
type Result[T any] struct {
	Value T

	// The error returned by Execute. Errors are cached along with the value,
	// unless they were wrapped with [Transient].
	Fatal error
}

// Transient wraps err so that the result carrying it is not cached. The
// next request for the same query executes it again.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err}
}

type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// ErrCycle is the fatal error of a query that transitively depends on itself.
type ErrCycle struct {
	// The keys along the cycle, starting and ending with the same key.
	Keys []any
}

// Error implements [error].
func (e *ErrCycle) Error() string {
	var b strings.Builder
	b.WriteString("cycle detected: ")
	for i, key := range e.Keys {
		if i > 0 {
			b.WriteString(" -> ")
		}
		fmt.Fprintf(&b, "%#v", key)
	}
	return b.String()
}
