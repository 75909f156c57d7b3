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

package ast

import (
	"iter"

	"github.com/bufbuild/dbml/syntax"
	"github.com/bufbuild/dbml/tree"
)

// Settings is a bracketed settings list.
//
//	[pk, not null, default: 1]
type Settings struct{ view }

// CastSettings wraps n if it is a settings list.
func CastSettings(n *tree.Node) (Settings, bool) {
	v, ok := cast(n, syntax.Settings)
	return Settings{v}, ok
}

func settingsOf(v view) Settings {
	return Settings{castOrZero(v.child(syntax.Settings), syntax.Settings)}
}

// All yields every setting in the list.
func (s Settings) All() iter.Seq[Setting] {
	return each(s.view, syntax.Setting, func(v view) Setting { return Setting{v} })
}

// Get returns the first setting with the given name. Names are compared in
// their canonical spelling, such as "not null".
func (s Settings) Get(name string) (Setting, bool) {
	for setting := range s.All() {
		if setting.Name() == name {
			return setting, true
		}
	}
	return Setting{}, false
}

// Has returns whether a setting with the given name is present.
func (s Settings) Has(name string) bool {
	_, ok := s.Get(name)
	return ok
}

// Setting is a single entry in a settings list.
type Setting struct{ view }

// CastSetting wraps n if it is a setting.
func CastSetting(n *tree.Node) (Setting, bool) {
	v, ok := cast(n, syntax.Setting)
	return Setting{v}, ok
}

// Name returns the canonical spelling of the setting's name.
func (s Setting) Name() string {
	return Name{castOrZero(s.child(syntax.Name), syntax.Name)}.String()
}

// HasValue returns whether the setting is followed by a colon.
func (s Setting) HasValue() bool { return s.token(syntax.Colon) != nil }

// Value returns the setting's value if it is an expression, or nil.
func (s Setting) Value() Expr { return valueOf(s.view) }

// Words returns the setting's value if it is a run of words, such as
// `set null`, or the empty string.
func (s Setting) Words() string {
	var words string
	var seen bool
	s.children(syntax.Name, func(n *tree.Node) bool {
		if seen {
			words = Name{view{n}}.String()
			return false
		}
		seen = true
		return true
	})
	return words
}

// Ref returns the setting's value if it is an inline reference, or a zero
// view.
func (s Setting) Ref() InlineRef {
	return InlineRef{castOrZero(s.child(syntax.InlineRef), syntax.InlineRef)}
}

// valueOf returns the first expression child of v.
func valueOf(v view) Expr {
	if v.n == nil {
		return nil
	}
	for c := range v.n.ChildNodes() {
		if c.Kind() == syntax.Name {
			continue
		}
		if e, ok := CastExpr(c); ok {
			return e
		}
	}
	return nil
}
