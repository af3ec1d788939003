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
Package reconstruct rebuilds rooted structures from triplet sets.

Three engines are provided, one per structure family: Multifurcating,
General and LevelOneNetwork. Each takes the label universe and a set of
triplets over it, derives secondary relations (descendants, separations,
SN-sets), selects a root, partitions the remaining labels into subproblems
and recurses. Partial triplet sets are handled best-effort: the engines
return the most specific structure the triplets justify, and every input
triplet is induced by the result.

Reconstruction is a pure function of (labels, triplets, RNG). Root
tie-breaking draws from the RNG in Options, so callers seed it to make runs
reproducible. Cancellation is checked between recursion frames via the
context.
*/
package reconstruct

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/TMALevert/triplet-distance/internal/lru"
	"github.com/TMALevert/triplet-distance/triplet"
)

// ErrContradiction reports a triplet set that admits no structure: branch
// partitioning collapsed to a single block where several are required.
var ErrContradiction = errors.New("the triplets are contradictory")

// ErrRoundTrip reports a reconstruction whose induced triplets do not
// contain the input, indicating an internal inconsistency.
var ErrRoundTrip = errors.New("reconstruction does not induce its input triplets")

// Options carries reconstruction parameters shared by the General and
// LevelOneNetwork engines.
type Options struct {
	// Rand breaks ties between equally valid roots. When nil a fixed
	// seed is used, so runs are deterministic by default.
	Rand *rand.Rand
}

func (o Options) rng() *rand.Rand {
	if o.Rand != nil {
		return o.Rand
	}
	return rand.New(rand.NewSource(0))
}

// set is a label set. The engines copy sets when handing state to child
// frames, so frames never share mutable data.
type set map[string]bool

func newSet(labels ...string) set {
	s := make(set, len(labels))
	for _, l := range labels {
		s[l] = true
	}
	return s
}

func (s set) clone() set {
	out := make(set, len(s))
	for k := range s {
		out[k] = true
	}
	return out
}

func (s set) addAll(o set) {
	for k := range o {
		s[k] = true
	}
}

func (s set) intersects(o set) bool {
	for k := range s {
		if o[k] {
			return true
		}
	}
	return false
}

func (s set) subsetOf(o set) bool {
	for k := range s {
		if !o[k] {
			return false
		}
	}
	return true
}

func (s set) equal(o set) bool {
	return len(s) == len(o) && s.subsetOf(o)
}

func (s set) intersectionSize(o set) int {
	n := 0
	for k := range s {
		if o[k] {
			n++
		}
	}
	return n
}

func (s set) sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s set) key() string {
	return strings.Join(s.sorted(), "\x00")
}

func union(ss ...set) set {
	out := set{}
	for _, s := range ss {
		out.addAll(s)
	}
	return out
}

// relations holds the per-label facts derived from a triplet set. The
// descendant map is kept transitively closed; separations are unioned as-is.
type relations struct {
	desc map[string]set
	sep  map[string]set
}

func deriveRelations(labels []string, ts []triplet.Triplet) *relations {
	r := &relations{
		desc: make(map[string]set, len(labels)),
		sep:  make(map[string]set, len(labels)),
	}
	for _, l := range labels {
		r.desc[l] = set{}
		r.sep[l] = set{}
	}
	for _, t := range ts {
		for l, ds := range t.Descendants() {
			if _, ok := r.desc[l]; ok {
				r.desc[l].addAll(newSet(ds...))
			}
		}
		for l, ss := range t.Separations() {
			if _, ok := r.sep[l]; ok {
				r.sep[l].addAll(newSet(ss...))
			}
		}
	}
	r.desc = transitiveClosure(r.desc)
	return r
}

// restricted returns a deep copy of r covering only the given labels, for a
// child frame.
func (r *relations) restricted(labels set) *relations {
	out := &relations{
		desc: make(map[string]set, len(labels)),
		sep:  make(map[string]set, len(labels)),
	}
	for l := range labels {
		out.desc[l] = r.desc[l].clone()
		out.sep[l] = r.sep[l].clone()
	}
	return out
}

// transitiveClosure closes the descendant relation by a depth-first walk
// from every label.
func transitiveClosure(desc map[string]set) map[string]set {
	closed := make(map[string]set, len(desc))
	var walk func(l string, acc set)
	walk = func(l string, acc set) {
		for child := range desc[l] {
			if !acc[child] {
				acc[child] = true
				walk(child, acc)
			}
		}
	}
	for l := range desc {
		acc := set{}
		walk(l, acc)
		closed[l] = acc
	}
	return closed
}

// counter mints synthetic node names *_k, unique across one reconstruction.
type counter struct {
	n int
}

func (c *counter) next() string {
	name := fmt.Sprintf("*_%d", c.n)
	c.n++
	return name
}

// tripleIndex answers "which triplets mention all of these labels". The
// pair index is built eagerly once per engine; full triple lookups are
// filtered from it and kept in a bounded cache, since the triple key space
// is cubic.
type tripleIndex struct {
	ts     []triplet.Triplet
	byPair map[[2]string][]int
	cache  *lru.Cache[string, []triplet.Triplet]
}

func newTripleIndex(ts []triplet.Triplet) *tripleIndex {
	x := &tripleIndex{
		ts:     ts,
		byPair: make(map[[2]string][]int),
		cache:  lru.New[string, []triplet.Triplet](4096),
	}
	for i, t := range ts {
		ls := t.Labels()
		for _, pair := range [][2]string{{ls[0], ls[1]}, {ls[0], ls[2]}, {ls[1], ls[2]}} {
			x.byPair[pair] = append(x.byPair[pair], i)
		}
	}
	return x
}

// onTriple returns the triplets mentioning exactly the three given labels,
// in input order.
func (x *tripleIndex) onTriple(a, b, c string) []triplet.Triplet {
	ls := []string{a, b, c}
	sort.Strings(ls)
	key := ls[0] + "\x00" + ls[1] + "\x00" + ls[2]
	return x.cache.GetOrCompute(key, func() []triplet.Triplet {
		var out []triplet.Triplet
		for _, i := range x.byPair[[2]string{ls[0], ls[1]}] {
			if x.ts[i].Contains(ls[2]) {
				out = append(out, x.ts[i])
			}
		}
		return out
	})
}

// withPair returns the triplets mentioning both labels.
func (x *tripleIndex) withPair(a, b string) []triplet.Triplet {
	if a > b {
		a, b = b, a
	}
	var out []triplet.Triplet
	for _, i := range x.byPair[[2]string{a, b}] {
		out = append(out, x.ts[i])
	}
	return out
}

// restrict returns the triplets whose labels all lie inside keep.
func restrict(ts []triplet.Triplet, keep set) []triplet.Triplet {
	var out []triplet.Triplet
	for _, t := range ts {
		n := t.Nodes()
		if keep[n[0]] && keep[n[1]] && keep[n[2]] {
			out = append(out, t)
		}
	}
	return out
}

// dedupeLabels drops duplicates and sorts, fixing the engines' iteration
// order.
func dedupeLabels(labels []string) []string {
	return newSet(labels...).sorted()
}
