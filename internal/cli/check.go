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
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/bufbuild/dbml"
	"github.com/bufbuild/dbml/report"
	"github.com/bufbuild/dbml/source"
)

func newCheckCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [file|dir|glob]...",
		Short: "Report syntax errors in schema files",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := a.resolve(args)
			if err != nil {
				return err
			}
			texts, err := readAll(paths)
			if err != nil {
				return err
			}

			ws := a.workspace()
			for _, path := range paths {
				ws.Open(path, texts[path])
			}
			files, err := ws.ParseAll(cmd.Context(), paths)
			if err != nil {
				return err
			}

			var errs int
			switch a.cfg.Format {
			case "table":
				errs = a.renderTable(a.stdout, files)
			default:
				errs = a.renderText(a.stdout, files)
			}
			a.logger.Debug("checked", "files", len(files), "errors", errs)
			if errs > 0 {
				return errFailed
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.String("format", "text", "output format (text|table)")
	flags.Bool("compact", false, "print one line per diagnostic")
	flags.Bool("warnings-are-errors", false, "treat warnings as errors")
	return cmd
}

// renderText prints every file's diagnostics with source snippets. Returns
// the number of errors.
func (a *app) renderText(w io.Writer, files []*dbml.File) int {
	r := a.renderer(w)
	r.OmitSummary = true

	var errs, warnings int
	for _, file := range files {
		e, wn, _ := r.Render(file.Source(), file.Report(), w)
		errs += e
		warnings += wn
	}
	if errs+warnings > 0 {
		fmt.Fprintln(w, r.Summary(errs, warnings))
	}
	return errs
}

// renderTable prints every file's diagnostics as one table. Returns the
// number of errors.
func (a *app) renderTable(w io.Writer, files []*dbml.File) int {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"File", "Line", "Column", "Level", "Message"})

	var errs int
	for _, file := range files {
		for _, d := range file.Diagnostics() {
			loc := file.Source().Location(d.Start, source.Runes)
			t.AppendRow(table.Row{file.Path(), loc.Line, loc.Column, d.Level, d.Message})
			if d.Level == report.Error || (a.cfg.WarningsAreErrors && d.Level == report.Warning) {
				errs++
			}
		}
	}
	if t.Length() > 0 {
		t.Render()
	}
	return errs
}
