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

package tree

import (
	"fmt"
	"strings"
)

// Dump renders the tree under n in an indented debugging format, one element
// per line:
//
//	TABLE_DECL@0..22
//	  IDENT@0..5 "Table"
//	  SPACE@5..6 " "
//
// Virtual tokens are rendered with a trailing "(virtual)".
func Dump(n *Node) string {
	var b strings.Builder
	dump(&b, n, 0)
	return b.String()
}

func dump(b *strings.Builder, n *Node, depth int) {
	fmt.Fprintf(b, "%s%v\n", strings.Repeat("  ", depth), n)
	for c := range n.Children() {
		switch c := c.(type) {
		case *Node:
			dump(b, c, depth+1)
		case *Token:
			fmt.Fprintf(b, "%s%v %q", strings.Repeat("  ", depth+1), c, c.Text())
			if c.IsVirtual() {
				b.WriteString(" (virtual)")
			}
			b.WriteByte('\n')
		}
	}
}
