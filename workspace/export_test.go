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

// CacheLen returns the size of the node cache of an open file.
func CacheLen(w *Workspace, path string) (tokens, nodes int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.docs[path].cache.Len()
}

// QueryCount returns the number of cached queries.
func QueryCount(w *Workspace) int {
	return len(w.exec.Keys())
}
