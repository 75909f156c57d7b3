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

package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rivo/uniseg"

	"github.com/bufbuild/dbml/source"
)

// Renderer configures a diagnostic rendering operation.
type Renderer struct {
	// If set, uses a compact one-line format for each diagnostic.
	Compact bool

	// If set, rendering results are styled for a terminal.
	Colorize bool

	// Upgrades all warnings to errors.
	WarningsAreErrors bool

	// If set, remark diagnostics will be printed.
	ShowRemarks bool

	// If set, Render does not end with a line counting errors and warnings.
	OmitSummary bool
}

// Render renders every diagnostic in report against file.
//
// In addition to returning the rendering result, returns the number of errors
// and warnings rendered. The error return is only for failures writing to
// out.
func (r Renderer) Render(file *source.File, report *Report, out io.Writer) (errorCount, warningCount int, err error) {
	for _, d := range report.Diagnostics {
		if !r.ShowRemarks && d.Level == Remark {
			continue
		}

		if _, err = fmt.Fprintln(out, r.Diagnostic(file, d)); err != nil {
			return errorCount, warningCount, err
		}

		switch {
		case d.Level == Error, d.Level == Warning && r.WarningsAreErrors:
			errorCount++
		case d.Level == Warning:
			warningCount++
		}
	}
	if r.Compact || r.OmitSummary || errorCount+warningCount == 0 {
		return errorCount, warningCount, nil
	}
	_, err = fmt.Fprintln(out, r.Summary(errorCount, warningCount))
	return errorCount, warningCount, err
}

// Summary returns a line counting errors and warnings, such as
// "encountered 2 errors and 1 warning".
func (r Renderer) Summary(errorCount, warningCount int) string {
	pluralize := func(count int, what string) string {
		if count == 1 {
			return "1 " + what
		}
		return fmt.Sprint(count, " ", what, "s")
	}

	summary := "encountered " + pluralize(errorCount, "error")
	level := Error
	switch {
	case errorCount > 0 && warningCount > 0:
		summary += " and " + pluralize(warningCount, "warning")
	case errorCount == 0:
		summary = "encountered " + pluralize(warningCount, "warning")
		level = Warning
	}
	return r.paint(r.style(level), summary)
}

// RenderString is a helper for calling [Renderer.Render] with a
// [strings.Builder].
func (r Renderer) RenderString(file *source.File, report *Report) (text string, errorCount, warningCount int) {
	var buf strings.Builder
	e, w, _ := r.Render(file, report, &buf)
	return buf.String(), e, w
}

// Diagnostic renders a single diagnostic to a string.
func (r Renderer) Diagnostic(file *source.File, d Diagnostic) string {
	level := d.Level
	if level == Warning && r.WarningsAreErrors {
		level = Error
	}

	start := file.Location(d.Start, source.Runes)
	if r.Compact {
		return fmt.Sprintf("%s:%d:%d: %s: %s", file.Path(), start.Line, start.Column, level, d.Message)
	}

	var out strings.Builder
	out.WriteString(r.paint(r.style(level), level.String()+":"))
	out.WriteString(" ")
	out.WriteString(r.paint(lipgloss.NewStyle().Bold(true), d.Message))
	out.WriteString("\n")

	lineno := fmt.Sprint(start.Line)
	gutter := strings.Repeat(" ", len(lineno))
	bar := r.paint(faint, "|")
	fmt.Fprintf(&out, "%s%s %s:%d:%d\n", gutter, r.paint(faint, "-->"), file.Path(), start.Line, start.Column)
	fmt.Fprintf(&out, "%s %s\n", gutter, bar)

	lineStart, lineEnd := file.LineOffsets(start.Line)
	line := strings.TrimRight(file.Text()[lineStart:lineEnd], "\r\n")
	fmt.Fprintf(&out, "%s %s %s\n", r.paint(faint, lineno), bar, expandTabs(line))

	// Underline the part of the span that lies on its first line.
	offset := min(max(d.Start-lineStart, 0), len(line))
	end := min(d.End, lineStart+len(line))
	column := stringWidth(line[:offset])
	width := 1
	if end > d.Start {
		width = max(1, stringWidth(file.Text()[d.Start:end]))
	}
	fmt.Fprintf(&out, "%s %s %s%s",
		gutter, bar,
		strings.Repeat(" ", column),
		r.paint(r.style(level), strings.Repeat("^", width)))
	return out.String()
}

// TabstopWidth is the width tabs are rendered as in snippets.
const TabstopWidth = 4

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", TabstopWidth))
}

func stringWidth(s string) int {
	return uniseg.StringWidth(expandTabs(s))
}

var faint = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))

// paint applies style to s, but only when colorizing; lipgloss is otherwise
// free to rewrite whitespace.
func (r Renderer) paint(style lipgloss.Style, s string) string {
	if !r.Colorize {
		return s
	}
	return style.Render(s)
}

func (r Renderer) style(level Level) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true)
	switch level {
	case Error:
		return style.Foreground(lipgloss.Color("9"))
	case Warning:
		return style.Foreground(lipgloss.Color("11"))
	default:
		return style.Foreground(lipgloss.Color("14"))
	}
}
