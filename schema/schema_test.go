// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package schema

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/TMALevert/triplet-distance/graph"
)

func TestParse(t *testing.T) {
	s, err := Parse(`
# a chain with a two-leaf block
A
	B
		C
		D
	E
`)
	qt.Assert(t, qt.IsNil(err))
	want := graph.Structure{
		"A": {
			"B": {"C": {}, "D": {}},
			"E": {},
		},
	}
	qt.Assert(t, qt.DeepEquals(s, want))
}

func TestParseReticulation(t *testing.T) {
	s, err := Parse(`
p
	1
		a
		2
			b
				e
			d
	3
		f
		4
			g
				h
			d
				c
`)
	qt.Assert(t, qt.IsNil(err))
	// Both occurrences of d are the same node, so c appears under both
	// parents' views.
	qt.Assert(t, qt.DeepEquals(s["p"]["1"]["2"]["d"], graph.Structure{"c": {}}))
	g, err := graph.NewLevelOneNetwork(s, []string{"a", "b", "c", "e", "p", "d", "f", "g", "h", "1"})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.DeepEquals(g.Reticulations(), []string{"d"}))
}

func TestParseErrors(t *testing.T) {
	for _, test := range []struct {
		name, in string
	}{
		{"empty", ""},
		{"only comments", "# nothing\n"},
		{"two roots", "A\nB\n"},
		{"indent jump", "A\n\t\t\tB\n"},
	} {
		_, err := Parse(test.in)
		qt.Assert(t, qt.IsNotNil(err), qt.Commentf("case %s", test.name))
	}
}

func TestFormatRoundTrip(t *testing.T) {
	in := graph.Structure{
		"A": {
			"B": {"C": {}, "D": {}},
			"E": {},
		},
	}
	out, err := Parse(Format(in))
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.DeepEquals(out, in))
}

func TestYAMLRoundTrip(t *testing.T) {
	in := graph.Structure{
		"A": {
			"B": {"C": {}, "D": {}},
			"E": {},
		},
	}
	data, err := FormatYAML(in)
	qt.Assert(t, qt.IsNil(err))
	out, err := ParseYAML(data)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.DeepEquals(out, in))
}

func TestParseYAML(t *testing.T) {
	s, err := ParseYAML([]byte("A: {B: {}, C: {D: }}\n"))
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.DeepEquals(s, graph.Structure{
		"A": {"B": {}, "C": {"D": {}}},
	}))
}

func TestParseYAMLRejectsScalars(t *testing.T) {
	_, err := ParseYAML([]byte("A: 3\n"))
	qt.Assert(t, qt.IsNotNil(err))
}
