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

package triplet

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseShapes(t *testing.T) {
	tests := []struct {
		in       string
		shape    Shape
		root     string
		branches [][]string
	}{
		{`1|2,3`, ResolvedRight, "", [][]string{{"2", "3"}, {"1"}}},
		{`1|2|3`, Fanned, "", [][]string{{"1"}, {"2"}, {"3"}}},
		{`1/2|3`, DownResolved, "", [][]string{{"1", "2"}, {"3"}}},
		{`1/2/3`, ChainRising, "3", [][]string{{"1", "2", "3"}}},
		{`1/2\3`, V, "2", [][]string{{"1"}, {"3"}}},
		{`1|2\3`, UpResolved, "", [][]string{{"2", "3"}, {"1"}}},
		{`1,2|3`, ResolvedLeft, "", [][]string{{"1", "2"}, {"3"}}},
		{`1\2\3`, ChainFalling, "1", [][]string{{"1", "2", "3"}}},
	}
	for _, test := range tests {
		tr, err := Parse(test.in)
		if err != nil {
			t.Errorf("Parse(%q): unexpected error: %v", test.in, err)
			continue
		}
		if tr.Shape() != test.shape {
			t.Errorf("Parse(%q).Shape() = %v, want %v", test.in, tr.Shape(), test.shape)
		}
		if diff := cmp.Diff(test.branches, tr.Branches()); diff != "" {
			t.Errorf("Parse(%q).Branches() mismatch (-want +got):\n%s", test.in, diff)
		}
		root, ok := tr.Root()
		if ok != (test.root != "") || root != test.root {
			t.Errorf("Parse(%q).Root() = %q, %v, want %q", test.in, root, ok, test.root)
		}
		if got := tr.String(); got != test.in {
			t.Errorf("Parse(%q).String() = %q", test.in, got)
		}
		if diff := cmp.Diff([]string{"1", "2", "3"}, tr.Labels()); diff != "" {
			t.Errorf("Parse(%q).Labels() mismatch (-want +got):\n%s", test.in, diff)
		}
	}
}

func TestParseLongerLabels(t *testing.T) {
	tests := []struct {
		in    string
		shape Shape
		root  string
	}{
		{`11|22,33`, ResolvedRight, ""},
		{`11|22|33`, Fanned, ""},
		{`11/22|33`, DownResolved, ""},
		{`11/22/33`, ChainRising, "33"},
		{`11/22\33`, V, "22"},
		{`11|22\33`, UpResolved, ""},
		{`11,22|33`, ResolvedLeft, ""},
		{`11\22\33`, ChainFalling, "11"},
	}
	for _, test := range tests {
		tr, err := Parse(test.in)
		if err != nil {
			t.Errorf("Parse(%q): unexpected error: %v", test.in, err)
			continue
		}
		if tr.Shape() != test.shape {
			t.Errorf("Parse(%q).Shape() = %v, want %v", test.in, tr.Shape(), test.shape)
		}
		root, ok := tr.Root()
		if ok != (test.root != "") || root != test.root {
			t.Errorf("Parse(%q).Root() = %q, %v, want %q", test.in, root, ok, test.root)
		}
		if diff := cmp.Diff([]string{"11", "22", "33"}, tr.Labels()); diff != "" {
			t.Errorf("Parse(%q).Labels() mismatch (-want +got):\n%s", test.in, diff)
		}
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{
		"",
		"A",
		"A|B",
		"A,B,C",
		"A|B|C|D",
		"A||C",
		"|B|C",
		"A|B|",
		`A\B/C`,
		`A,B/C`,
		"A|B|A",
		"A/A|B",
	} {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q): expected error, got none", in)
		} else if _, ok := err.(*ParseError); !ok {
			t.Errorf("Parse(%q): error is %T, want *ParseError", in, err)
		}
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		a, b  string
		equal bool
	}{
		{"A|B|C", "A|B|C", true},
		{"A,B|C", "C|A,B", true},
		{"B,A|C", "C|A,B", true},
		{"A|B,C", "A|C,B", true},
		{"A,B|C", "A|B|C", false},
		{"A,B|C", "A,B|D", false},
		{"A|B|C", "C|A|B", true},
		{"A|C|B", "B|C|A", true},
		{`1/2|3`, `3|2\1`, true},
		{`1/2|3`, `3|1\2`, false},
		{`1/2|3`, `3/2\1`, false},
		{`1/2|3`, `3|2|1`, false},
		{`1/2|3`, `3|2,1`, false},
		{`1/2/3`, `3\2\1`, true},
		{`1/2/3`, `2\3\1`, false},
		{`1/2/3`, `3/2\1`, false},
		{`1/2/3`, `2/1|3`, false},
		{`1/2/3`, `3|2\1`, false},
		{`1/2\3`, `3/2\1`, true},
		{`1/2\3`, `2/1\3`, false},
	}
	for _, test := range tests {
		a, b := MustParse(test.a), MustParse(test.b)
		if got := a.Equal(b); got != test.equal {
			t.Errorf("Equal(%q, %q) = %v, want %v (keys %q, %q)", test.a, test.b, got, test.equal, a.Key(), b.Key())
		}
		if got := b.Equal(a); got != test.equal {
			t.Errorf("Equal(%q, %q) = %v, want %v", test.b, test.a, got, test.equal)
		}
	}
}

func TestDescendantsAndSeparations(t *testing.T) {
	tests := []struct {
		in          string
		descendants map[string][]string
		separations map[string][]string
	}{
		{`A|B|C`, nil, map[string][]string{"A": {"B", "C"}, "B": {"A", "C"}, "C": {"A", "B"}}},
		{`A,B|C`, nil, map[string][]string{"A": {"B", "C"}, "B": {"A", "C"}, "C": {"A", "B"}}},
		{`A/B|C`, map[string][]string{"B": {"A"}},
			map[string][]string{"A": {"C"}, "B": {"C"}, "C": {"A", "B"}}},
		{`A|B\C`, map[string][]string{"B": {"C"}},
			map[string][]string{"A": {"B", "C"}, "B": {"A"}, "C": {"A"}}},
		{`A/B\C`, map[string][]string{"B": {"A", "C"}},
			map[string][]string{"A": {"C"}, "C": {"A"}}},
		{`A/B/C`, map[string][]string{"C": {"A", "B"}, "B": {"A"}}, nil},
		{`A\B\C`, map[string][]string{"A": {"B", "C"}, "B": {"C"}}, nil},
	}
	for _, test := range tests {
		tr := MustParse(test.in)
		if diff := cmp.Diff(test.descendants, tr.Descendants()); diff != "" {
			t.Errorf("Parse(%q).Descendants() mismatch (-want +got):\n%s", test.in, diff)
		}
		if diff := cmp.Diff(test.separations, tr.Separations()); diff != "" {
			t.Errorf("Parse(%q).Separations() mismatch (-want +got):\n%s", test.in, diff)
		}
	}
}

func TestApart(t *testing.T) {
	tests := []struct {
		in    string
		label string
		apart bool
	}{
		{"A|B|C", "A", true},
		{"A|B|C", "B", true},
		{"A|B|C", "D", true},
		{"A,B|C", "A", false},
		{"A,B|C", "B", false},
		{"A,B|C", "C", true},
		{"A|B,C", "A", true},
		{"A|B,C", "C", false},
	}
	for _, test := range tests {
		if got := MustParse(test.in).Apart(test.label); got != test.apart {
			t.Errorf("Parse(%q).Apart(%q) = %v, want %v", test.in, test.label, got, test.apart)
		}
	}
}

func TestContains(t *testing.T) {
	tr := MustParse("A,B|C")
	for _, label := range []string{"A", "B", "C"} {
		if !tr.Contains(label) {
			t.Errorf("Contains(%q) = false, want true", label)
		}
	}
	if tr.Contains("D") {
		t.Errorf("Contains(%q) = true, want false", "D")
	}
}

func TestDedupe(t *testing.T) {
	ts := []Triplet{
		MustParse("A,B|C"),
		MustParse("C|A,B"),
		MustParse("B,A|C"),
		MustParse("A|B|C"),
	}
	got := Dedupe(ts)
	if len(got) != 2 {
		t.Fatalf("Dedupe: got %d triplets, want 2: %v", len(got), got)
	}
	if got[0].String() != "A,B|C" || got[1].String() != "A|B|C" {
		t.Errorf("Dedupe kept %v, want first spellings in input order", got)
	}
}

func TestHasBranch(t *testing.T) {
	tr := MustParse("A,B|C")
	if !tr.HasBranch("B", "A") {
		t.Errorf("HasBranch(B, A) = false, want true")
	}
	if !tr.HasBranch("C") {
		t.Errorf("HasBranch(C) = false, want true")
	}
	if tr.HasBranch("A") {
		t.Errorf("HasBranch(A) = true, want false")
	}
	if tr.HasBranch("A", "C") {
		t.Errorf("HasBranch(A, C) = true, want false")
	}
}

func TestConstructorsMatchParse(t *testing.T) {
	tests := []struct {
		got  Triplet
		want string
	}{
		{NewFanned("A", "B", "C"), "A|B|C"},
		{NewResolved("A", "B", "C"), "A,B|C"},
		{NewDownResolved("A", "B", "C"), "A/B|C"},
		{NewV("A", "B", "C"), `A/B\C`},
		{NewChain("A", "B", "C"), "A/B/C"},
	}
	for _, test := range tests {
		want := MustParse(test.want)
		if !test.got.Equal(want) {
			t.Errorf("constructor produced %q (key %q), want equal to %q (key %q)",
				test.got, test.got.Key(), test.want, want.Key())
		}
	}
}
