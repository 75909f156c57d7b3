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
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bufbuild/dbml"
	"github.com/bufbuild/dbml/tree"
)

func newDumpCommand(a *app) *cobra.Command {
	var (
		asYAML bool
		trivia bool
	)

	cmd := &cobra.Command{
		Use:   "dump file",
		Short: "Print the syntax tree of a schema file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			file := dbml.Parse(args[0], string(data))

			if !asYAML {
				_, err := io.WriteString(a.stdout, tree.Dump(file.Syntax()))
				return err
			}

			enc := yaml.NewEncoder(a.stdout)
			enc.SetIndent(2)
			if err := enc.Encode(toYAML(file.Syntax(), trivia)); err != nil {
				return fmt.Errorf("encoding tree: %w", err)
			}
			return enc.Close()
		},
	}

	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print the tree as YAML")
	cmd.Flags().BoolVar(&trivia, "trivia", false, "include whitespace and comments in YAML output")
	return cmd
}

// yamlElement is the YAML form of a tree element.
type yamlElement struct {
	Kind     string        `yaml:"kind"`
	Span     string        `yaml:"span"`
	Text     string        `yaml:"text,omitempty"`
	Virtual  bool          `yaml:"virtual,omitempty"`
	Children []yamlElement `yaml:"children,omitempty"`
}

func toYAML(n *tree.Node, trivia bool) yamlElement {
	out := yamlElement{Kind: n.Kind().String(), Span: n.Span().String()}
	for c := range n.Children() {
		switch c := c.(type) {
		case *tree.Node:
			out.Children = append(out.Children, toYAML(c, trivia))
		case *tree.Token:
			if c.Kind().IsTrivia() && !trivia {
				continue
			}
			out.Children = append(out.Children, yamlElement{
				Kind:    c.Kind().String(),
				Span:    c.Span().String(),
				Text:    c.Text(),
				Virtual: c.IsVirtual(),
			})
		}
	}
	return out
}
