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

// Package cli implements the dbmlc command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/bufbuild/dbml/internal/config"
	"github.com/bufbuild/dbml/internal/logging"
	"github.com/bufbuild/dbml/report"
	"github.com/bufbuild/dbml/workspace"
)

// errFailed is returned by commands that ran to completion but found errors
// in their input. It is not printed, since the errors already were.
var errFailed = errors.New("input has errors")

// app is the state shared by every command.
type app struct {
	configFile string

	cfg    *config.Config
	logger *log.Logger
	stdout io.Writer
	stderr io.Writer
}

// Main runs dbmlc with the given arguments, and returns its exit code.
func Main(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	root := NewRootCommand(stdout, stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errFailed):
		return 1
	default:
		fmt.Fprintf(stderr, "dbmlc: %v\n", err)
		return 2
	}
}

// NewRootCommand returns the dbmlc command and its subcommands.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "dbmlc",
		Short: "Parse and check DBML schema files",
		Long: `dbmlc parses DBML schema files and reports syntax errors.

Files are given as arguments, as directories to search for *.dbml files, or
as ** globs. With no arguments, the include and exclude globs from the
config file select the files.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			cfg, err := config.Load(a.configFile, cmd.Flags())
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logging.New(stderr, cfg.LogLevel)
			if cfg.File != "" {
				a.logger.Debug("loaded config", "file", cfg.File)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default: ./dbmlc.yaml)")
	flags.String("log-level", "info", "log level (debug|info|warn|error)")
	flags.String("color", "auto", "colorize output (auto|always|never)")
	flags.Int("parallelism", 0, "maximum number of files to parse at once")

	root.AddCommand(
		newCheckCommand(a),
		newDumpCommand(a),
		newWatchCommand(a),
	)
	return root
}

// workspace returns a new workspace configured for this run.
func (a *app) workspace() *workspace.Workspace {
	return workspace.New(workspace.Options{
		Parallelism: a.cfg.Parallelism,
		Logger:      a.logger,
	})
}

// renderer returns the diagnostic renderer for w.
func (a *app) renderer(w io.Writer) report.Renderer {
	return report.Renderer{
		Compact:           a.cfg.Compact,
		Colorize:          a.colorize(w),
		WarningsAreErrors: a.cfg.WarningsAreErrors,
	}
}

func (a *app) colorize(w io.Writer) bool {
	switch a.cfg.Color {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
