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

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// resolve expands args into the sorted list of files to process. The paths
// are cleaned, so that they match the names of file system events.
func (a *app) resolve(args []string) ([]string, error) {
	var patterns []string
	if len(args) == 0 {
		patterns = a.cfg.Include
	}
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		switch {
		case err == nil && info.IsDir():
			patterns = append(patterns, filepath.ToSlash(filepath.Join(arg, "**", "*.dbml")))
		case err == nil:
			paths = append(paths, arg)
		case strings.ContainsAny(arg, "*?[{"):
			patterns = append(patterns, arg)
		default:
			return nil, err
		}
	}

	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
			return nil, fmt.Errorf("invalid glob %q", pattern)
		}
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expanding %q: %w", pattern, err)
		}
		paths = append(paths, matches...)
	}

	for i, path := range paths {
		paths[i] = filepath.Clean(path)
	}
	paths = slices.DeleteFunc(paths, a.excluded)
	slices.Sort(paths)
	paths = slices.Compact(paths)
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files to process")
	}
	return paths, nil
}

func (a *app) excluded(path string) bool {
	for _, pattern := range a.cfg.Exclude {
		if ok, _ := doublestar.PathMatch(pattern, path); ok {
			return true
		}
	}
	return false
}

// readAll reads every file in paths.
func readAll(paths []string) (map[string]string, error) {
	texts := make(map[string]string, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		texts[path] = string(data)
	}
	return texts, nil
}
