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
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/bufbuild/dbml"
	"github.com/bufbuild/dbml/incremental"
	"github.com/bufbuild/dbml/parser"
	"github.com/bufbuild/dbml/workspace"
)

func newWatchCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [file|dir|glob]...",
		Short: "Check schema files again whenever they change",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := a.resolve(args)
			if err != nil {
				return err
			}
			return a.watch(cmd.Context(), paths)
		},
	}
}

func (a *app) watch(ctx context.Context, paths []string) error {
	texts, err := readAll(paths)
	if err != nil {
		return err
	}

	ws := a.workspace()
	watched := make(map[string]bool, len(paths))
	for _, path := range paths {
		ws.Open(path, texts[path])
		watched[path] = true
	}
	files, err := ws.ParseAll(ctx, paths)
	if err != nil {
		return err
	}
	a.renderText(a.stdout, files)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	dirs := make(map[string]bool)
	for path := range watched {
		dir := filepath.Dir(path)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	a.logger.Info("watching for changes", "files", len(paths))

	// Events for a file are coalesced until it has been quiet for the
	// debounce interval.
	debounce := time.Duration(a.cfg.DebounceMS) * time.Millisecond
	changed := make(chan string)
	timers := make(map[string]*time.Timer)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			path := filepath.Clean(event.Name)
			if !watched[path] || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if t, ok := timers[path]; ok {
				t.Stop()
			}
			timers[path] = time.AfterFunc(debounce, func() {
				select {
				case changed <- path:
				case <-ctx.Done():
				}
			})

		case path := <-changed:
			if err := a.reload(ctx, ws, path); err != nil {
				a.logger.Error("reload failed", "path", path, "error", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Error("watcher error", "error", err)
		}
	}
}

// reload feeds the new contents of path to the workspace as an edit, and
// prints the file's diagnostics.
func (a *app) reload(ctx context.Context, ws *workspace.Workspace, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	before, ok := ws.Text(path)
	if !ok {
		return fmt.Errorf("%s is not being watched", path)
	}
	edit := incremental.Diff(before, string(data))
	if edit.Removed == 0 && edit.Inserted == "" {
		return nil
	}
	if _, err := ws.Change(path, edit); err != nil {
		return err
	}

	file, err := ws.File(ctx, path)
	if errors.Is(err, parser.ErrCancelled) {
		// A newer change is already on its way.
		return nil
	}
	if err != nil {
		return err
	}

	a.logger.Debug("reloaded", "path", path, "edit", edit, "incremental", file.Incremental())
	a.renderText(a.stdout, []*dbml.File{file})
	return nil
}
