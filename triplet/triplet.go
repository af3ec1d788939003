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

/*
Package triplet implements rooted triplets: three-label constraints on how
labeled vertices relate in a rooted phylogenetic structure.

A triplet is written with the ASCII operators '|', ',', '/' and '\' between
three labels. The eight recognized shapes are:

	1|2|3   fanned; the three labels are siblings under a common ancestor
	1,2|3   resolved; 1 and 2 share a strict ancestor excluded from 3
	1|2,3   resolved, flipped
	1/2|3   down-resolved; 1 is a proper descendant of 2, 3 is apart
	1|2\3   up-resolved; 3 is a proper descendant of 2, 1 is apart
	1/2\3   V; 2 is a labeled ancestor of 1 and 3, which sit in
	        separate child branches of 2
	1/2/3   chain 3 -> 2 -> 1
	1\2\3   chain 1 -> 2 -> 3

Labels are maximal runs of characters outside the operator set; they must be
non-empty and pairwise distinct. Triplets are immutable values: two triplets
are equal when their canonical relations are equal, so "A,B|C", "B,A|C" and
"C|A,B" all denote the same constraint.
*/
package triplet

import (
	"sort"
	"strings"
)

// Shape classifies a triplet into one of the eight recognized forms.
// The shape determines how the accessors derive branches, candidate root,
// descendants and separations from the three labels.
type Shape uint8

const (
	Invalid Shape = iota
	Fanned             // 1|2|3
	ResolvedLeft       // 1,2|3
	ResolvedRight      // 1|2,3
	DownResolved       // 1/2|3
	UpResolved         // 1|2\3
	V                  // 1/2\3
	ChainRising        // 1/2/3
	ChainFalling       // 1\2\3
)

// String returns the shape's pattern with placeholder labels 1, 2, 3.
func (s Shape) String() string {
	switch s {
	case Fanned:
		return "1|2|3"
	case ResolvedLeft:
		return "1,2|3"
	case ResolvedRight:
		return "1|2,3"
	case DownResolved:
		return "1/2|3"
	case UpResolved:
		return "1|2\\3"
	case V:
		return `1/2\3`
	case ChainRising:
		return "1/2/3"
	case ChainFalling:
		return `1\2\3`
	}
	return "invalid"
}

// Triplet is an immutable three-label constraint.
// The zero value is invalid; construct triplets with Parse or one of the
// shape constructors.
type Triplet struct {
	shape Shape
	// nodes holds the labels in written order, left to right.
	nodes [3]string
	// key is the canonical relation, shared by all spellings of the same
	// constraint.
	key string
}

// Shape returns the triplet's shape.
func (t Triplet) Shape() Shape { return t.shape }

// Key returns the canonical relation string. Two triplets constrain a
// structure identically exactly when their keys are equal, so the key is
// suitable for use as a map key and for hashing.
func (t Triplet) Key() string { return t.key }

// Equal reports whether t and o denote the same constraint.
func (t Triplet) Equal(o Triplet) bool { return t.key == o.key }

// String renders the triplet in its written form.
func (t Triplet) String() string {
	op1, op2 := t.operators()
	return t.nodes[0] + op1 + t.nodes[1] + op2 + t.nodes[2]
}

func (t Triplet) operators() (string, string) {
	switch t.shape {
	case Fanned:
		return "|", "|"
	case ResolvedLeft:
		return ",", "|"
	case ResolvedRight:
		return "|", ","
	case DownResolved:
		return "/", "|"
	case UpResolved:
		return "|", `\`
	case V:
		return "/", `\`
	case ChainRising:
		return "/", "/"
	case ChainFalling:
		return `\`, `\`
	}
	return "?", "?"
}

// Labels returns the three labels in sorted order.
func (t Triplet) Labels() []string {
	ls := []string{t.nodes[0], t.nodes[1], t.nodes[2]}
	sort.Strings(ls)
	return ls
}

// Nodes returns the three labels in written order, left to right.
func (t Triplet) Nodes() [3]string { return t.nodes }

// Contains reports whether label is one of the triplet's labels.
func (t Triplet) Contains(label string) bool {
	return t.nodes[0] == label || t.nodes[1] == label || t.nodes[2] == label
}

// Parts returns the top-level partition of the written form: comma-joined
// labels form a pair, all other labels are singletons.
func (t Triplet) Parts() [][]string {
	switch t.shape {
	case ResolvedLeft:
		return [][]string{sortPair(t.nodes[0], t.nodes[1]), {t.nodes[2]}}
	case ResolvedRight:
		return [][]string{{t.nodes[0]}, sortPair(t.nodes[1], t.nodes[2])}
	}
	return [][]string{{t.nodes[0]}, {t.nodes[1]}, {t.nodes[2]}}
}

// Branches returns the partition of the labels into sibling groups beneath
// the triplet's apex. Each branch is sorted. A two-label branch comes before
// the singleton one (so "1|2,3" yields [[2 3] [1]]); fanned triplets list
// their singletons in written order and V-triplets list 1 before 3.
func (t Triplet) Branches() [][]string {
	n := t.nodes
	switch t.shape {
	case Fanned:
		return [][]string{{n[0]}, {n[1]}, {n[2]}}
	case ResolvedLeft:
		return [][]string{sortPair(n[0], n[1]), {n[2]}}
	case ResolvedRight:
		return [][]string{sortPair(n[1], n[2]), {n[0]}}
	case DownResolved:
		return [][]string{sortPair(n[0], n[1]), {n[2]}}
	case UpResolved:
		return [][]string{sortPair(n[1], n[2]), {n[0]}}
	case V:
		return [][]string{{n[0]}, {n[2]}}
	case ChainRising, ChainFalling:
		return [][]string{sortTriple(n[0], n[1], n[2])}
	}
	return nil
}

// HasBranch reports whether the given labels form exactly one of the
// triplet's branches.
func (t Triplet) HasBranch(labels ...string) bool {
	want := append([]string(nil), labels...)
	sort.Strings(want)
	for _, b := range t.Branches() {
		if len(b) != len(want) {
			continue
		}
		same := true
		for i := range b {
			if b[i] != want[i] {
				same = false
				break
			}
		}
		if same {
			return true
		}
	}
	return false
}

// Root returns the label that must be the apex of the triplet in any
// consistent structure, if the shape pins one down. ok is false for shapes
// with an unlabeled apex.
func (t Triplet) Root() (label string, ok bool) {
	switch t.shape {
	case V:
		return t.nodes[1], true
	case ChainRising:
		return t.nodes[2], true
	case ChainFalling:
		return t.nodes[0], true
	}
	return "", false
}

// Descendants returns, per label, the labels that must be proper descendants
// of it. Labels without forced descendants are absent from the map.
func (t Triplet) Descendants() map[string][]string {
	n := t.nodes
	switch t.shape {
	case DownResolved:
		return map[string][]string{n[1]: {n[0]}}
	case UpResolved:
		return map[string][]string{n[1]: {n[2]}}
	case V:
		return map[string][]string{n[1]: sortPair(n[0], n[2])}
	case ChainRising:
		return map[string][]string{n[2]: sortPair(n[0], n[1]), n[1]: {n[0]}}
	case ChainFalling:
		return map[string][]string{n[0]: sortPair(n[1], n[2]), n[1]: {n[2]}}
	}
	return nil
}

// DescendantsOf returns the labels that must be proper descendants of label.
func (t Triplet) DescendantsOf(label string) []string {
	return t.Descendants()[label]
}

// Separations returns, per label, the labels it cannot meet at a lowest
// common ancestor equal to either of them. Fanned and resolved triplets
// separate all three labels; chain triplets separate none.
func (t Triplet) Separations() map[string][]string {
	n := t.nodes
	switch t.shape {
	case Fanned, ResolvedLeft, ResolvedRight:
		return map[string][]string{
			n[0]: sortPair(n[1], n[2]),
			n[1]: sortPair(n[0], n[2]),
			n[2]: sortPair(n[0], n[1]),
		}
	case DownResolved:
		return map[string][]string{
			n[0]: {n[2]},
			n[1]: {n[2]},
			n[2]: sortPair(n[0], n[1]),
		}
	case UpResolved:
		return map[string][]string{
			n[0]: sortPair(n[1], n[2]),
			n[1]: {n[0]},
			n[2]: {n[0]},
		}
	case V:
		return map[string][]string{
			n[0]: {n[2]},
			n[2]: {n[0]},
		}
	}
	return nil
}

// SeparationsOf returns the labels separated from label.
func (t Triplet) SeparationsOf(label string) []string {
	return t.Separations()[label]
}

// Apart reports whether label sits in a top-level singleton part of the
// triplet, or does not occur in it at all. It is the multifurcating notion
// of a label being on its own side of every bar.
func (t Triplet) Apart(label string) bool {
	if !t.Contains(label) {
		return true
	}
	for _, part := range t.Parts() {
		if len(part) == 1 && part[0] == label {
			return true
		}
	}
	return false
}

// canonicalize computes the canonical relation for the given shape and
// written nodes. Mirror spellings reduce to one orientation: up-resolved to
// down-resolved, falling chains to rising chains; commutative pairs sort
// lexically.
func canonicalize(shape Shape, n [3]string) string {
	switch shape {
	case Fanned:
		s := sortTriple(n[0], n[1], n[2])
		return s[0] + "|" + s[1] + "|" + s[2]
	case ResolvedLeft:
		p := sortPair(n[0], n[1])
		return p[0] + "," + p[1] + "|" + n[2]
	case ResolvedRight:
		p := sortPair(n[1], n[2])
		return p[0] + "," + p[1] + "|" + n[0]
	case DownResolved:
		return n[0] + "/" + n[1] + "|" + n[2]
	case UpResolved:
		return n[2] + "/" + n[1] + "|" + n[0]
	case V:
		p := sortPair(n[0], n[2])
		return p[0] + "/" + n[1] + `\` + p[1]
	case ChainRising:
		return n[0] + "/" + n[1] + "/" + n[2]
	case ChainFalling:
		return n[2] + "/" + n[1] + "/" + n[0]
	}
	return ""
}

func make3(shape Shape, a, b, c string) Triplet {
	n := [3]string{a, b, c}
	return Triplet{shape: shape, nodes: n, key: canonicalize(shape, n)}
}

// NewFanned returns the fanned triplet a|b|c.
func NewFanned(a, b, c string) Triplet { return make3(Fanned, a, b, c) }

// NewResolved returns the resolved triplet a,b|c.
func NewResolved(a, b, c string) Triplet { return make3(ResolvedLeft, a, b, c) }

// NewDownResolved returns the down-resolved triplet child/parent|other.
func NewDownResolved(child, parent, other string) Triplet {
	return make3(DownResolved, child, parent, other)
}

// NewV returns the V-triplet left/root\right.
func NewV(left, root, right string) Triplet { return make3(V, left, root, right) }

// NewChain returns the chain triplet bottom/mid/top, the linear descent
// top -> mid -> bottom.
func NewChain(bottom, mid, top string) Triplet { return make3(ChainRising, bottom, mid, top) }

// Sort orders triplets by canonical key, for stable listings.
func Sort(ts []Triplet) {
	sort.Slice(ts, func(i, j int) bool { return ts[i].key < ts[j].key })
}

// Dedupe returns ts with duplicate constraints removed, preserving the first
// spelling of each and the input order.
func Dedupe(ts []Triplet) []Triplet {
	seen := make(map[string]bool, len(ts))
	out := ts[:0:0]
	for _, t := range ts {
		if seen[t.key] {
			continue
		}
		seen[t.key] = true
		out = append(out, t)
	}
	return out
}

// Format renders triplets one per line in canonical order.
func Format(ts []Triplet) string {
	sorted := append([]Triplet(nil), ts...)
	Sort(sorted)
	var sb strings.Builder
	for _, t := range sorted {
		sb.WriteString(t.key)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func sortPair(a, b string) []string {
	if a <= b {
		return []string{a, b}
	}
	return []string{b, a}
}

func sortTriple(a, b, c string) []string {
	s := []string{a, b, c}
	sort.Strings(s)
	return s
}
