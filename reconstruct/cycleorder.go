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

package reconstruct

import (
	"sort"

	"github.com/TMALevert/triplet-distance/graph"
	"github.com/TMALevert/triplet-distance/triplet"
)

// sideState accumulates the two-side projection of the cycle's arc blocks:
// which blocks share a side, which sit on opposite sides, and which blocks
// each block must dominate (sit above) on its side.
type sideState struct {
	left, right []int
	above       [][]int
}

func (s *sideState) in(side []int, b int) bool {
	for _, x := range side {
		if x == b {
			return true
		}
	}
	return false
}

func (s *sideState) together(b1, b2 int) {
	switch {
	case len(s.left) == 0 && len(s.right) == 0:
		s.left = append(s.left, b1, b2)
	case (s.in(s.left, b1) && s.in(s.left, b2)) || (s.in(s.right, b1) && s.in(s.right, b2)):
	case s.in(s.left, b1):
		s.left = append(s.left, b2)
	case s.in(s.right, b1):
		s.right = append(s.right, b2)
	case s.in(s.left, b2):
		s.left = append(s.left, b1)
	case s.in(s.right, b2):
		s.right = append(s.right, b1)
	}
}

func (s *sideState) apart(b1, b2 int) {
	switch {
	case len(s.left) == 0 && len(s.right) == 0:
		s.left = append(s.left, b1)
		s.right = append(s.right, b2)
	case (s.in(s.left, b1) && s.in(s.right, b2)) || (s.in(s.right, b1) && s.in(s.left, b2)):
	case s.in(s.left, b1):
		s.right = append(s.right, b2)
	case s.in(s.right, b1):
		s.left = append(s.left, b2)
	case s.in(s.left, b2):
		s.right = append(s.right, b1)
	case s.in(s.right, b2):
		s.left = append(s.left, b1)
	}
}

// order records that upper dominates lower, transitively absorbing
// everything lower already dominates.
func (s *sideState) order(upper, lower int) {
	s.above[upper] = append(s.above[upper], lower)
	for _, ll := range append([]int(nil), s.above[lower]...) {
		s.order(upper, ll)
	}
}

// findCycleOrder projects the arc blocks onto the two sides of the cycle
// using the pairwise constraints the triplets place on block pairs relative
// to the sink and source, then sorts each side top-down by domination
// count.
func (e *netEngine) findCycleOrder(arcs []set, sink set, cycleVertices set, source string) (left, right []set) {
	blocks := append([]set(nil), arcs...)
	for _, cv := range cycleVertices.sorted() {
		if sink[cv] || cv == source || inAnyArc(blocks, cv) {
			continue
		}
		blocks = append(blocks, newSet(cv))
	}

	state := &sideState{above: make([][]int, len(blocks))}
	anchors := sink.clone()
	anchors[source] = true
	for i := 0; i < len(blocks); i++ {
		for j := i + 1; j < len(blocks); j++ {
			e.placeBlockPair(state, blocks, i, j, anchors, cycleVertices)
		}
	}
	if len(blocks) == 1 {
		state.left = []int{0}
	}

	return e.sideBlocks(state.left, blocks, state), e.sideBlocks(state.right, blocks, state)
}

func (e *netEngine) sideBlocks(side []int, blocks []set, state *sideState) []set {
	idx := append([]int(nil), side...)
	sort.SliceStable(idx, func(a, b int) bool {
		return len(state.above[idx[a]]) > len(state.above[idx[b]])
	})
	out := make([]set, 0, len(idx))
	for _, i := range idx {
		out = append(out, blocks[i])
	}
	return out
}

// placeBlockPair scans the triples joining a node of block i, a node of
// block j and a sink or source anchor, applying the first decisive
// constraint in the fixed shape order.
func (e *netEngine) placeBlockPair(state *sideState, blocks []set, i, j int, anchors, cycleVertices set) {
	shapeOrder := []triplet.Shape{
		triplet.ChainRising, triplet.ChainFalling,
		triplet.UpResolved, triplet.DownResolved,
		triplet.ResolvedRight, triplet.ResolvedLeft,
		triplet.V,
	}
	for _, n1 := range blocks[i].sorted() {
		for _, n2 := range blocks[j].sorted() {
			for _, anchor := range anchors.sorted() {
				ts := e.index.onTriple(n1, n2, anchor)
				for _, shape := range shapeOrder {
					for _, t := range ts {
						if t.Shape() != shape {
							continue
						}
						if e.applyConstraint(state, ts, t, i, j, n1, n2, anchor, cycleVertices) {
							return
						}
					}
				}
			}
		}
	}
}

// applyConstraint applies the side and ordering constraint of one triplet
// on (n1, n2, anchor) and reports whether the block pair is decided.
func (e *netEngine) applyConstraint(state *sideState, ts []triplet.Triplet, t triplet.Triplet, i, j int, n1, n2, anchor string, cycleVertices set) bool {
	other := otherTriplet(ts, t)
	switch t.Shape() {
	case triplet.ChainRising, triplet.ChainFalling:
		if r, _ := t.Root(); r == n1 {
			state.together(i, j)
			state.order(i, j)
			return true
		} else if r == n2 {
			state.together(i, j)
			state.order(j, i)
			return true
		}
	case triplet.UpResolved, triplet.DownResolved:
		switch {
		case t.HasBranch(anchor):
			state.together(i, j)
			if containsKey(t.Descendants(), n1) {
				state.order(i, j)
			} else {
				state.order(j, i)
			}
			return true
		case cycleVertices[n1] && cycleVertices[n2]:
			state.apart(i, j)
			return true
		default:
			if other == nil {
				return false
			}
			switch other.Shape() {
			case triplet.ResolvedLeft, triplet.ResolvedRight:
				if other.HasBranch(n1) || other.HasBranch(n2) {
					state.apart(i, j)
					return true
				}
				state.together(i, j)
				if t.HasBranch(n1) {
					state.order(i, j)
				} else {
					state.order(j, i)
				}
				return true
			}
		}
	case triplet.ResolvedLeft, triplet.ResolvedRight:
		if t.HasBranch(anchor) {
			state.together(i, j)
			if other == nil {
				return false
			}
			switch other.Shape() {
			case triplet.ResolvedLeft, triplet.ResolvedRight, triplet.DownResolved, triplet.UpResolved:
				if other.HasBranch(n1) {
					state.order(i, j)
				} else {
					state.order(j, i)
				}
				return true
			}
			return false
		}
		if other != nil {
			switch other.Shape() {
			case triplet.ResolvedLeft, triplet.ResolvedRight:
				if !other.HasBranch(anchor) {
					state.apart(i, j)
				}
			}
		}
	case triplet.V:
		state.apart(i, j)
		return true
	}
	return false
}

func otherTriplet(ts []triplet.Triplet, t triplet.Triplet) *triplet.Triplet {
	for _, u := range ts {
		if !u.Equal(t) {
			return &u
		}
	}
	return nil
}

func containsKey(m map[string][]string, k string) bool {
	_, ok := m[k]
	return ok
}

// filterHalf keeps the triplets whose labels lie inside one half of the
// cycle and which still hold after the arc split. Cycle-spanning facts
// whose sink-side branch mixes the sink with the far arc are dropped;
// V-triplets (and fanned triplets on the right half) always survive, as do
// triplets not touching the sink.
func (e *netEngine) filterHalf(nodes set, side []set, sink set, cycleVertices set, keepFanned bool) []triplet.Triplet {
	var out []triplet.Triplet
	for _, t := range e.ts {
		tl := newSet(t.Labels()...)
		if !tl.subsetOf(nodes) {
			continue
		}
		var sinkBranches []set
		for _, b := range t.Branches() {
			bs := newSet(b...)
			if bs.intersects(sink) {
				sinkBranches = append(sinkBranches, bs)
			}
		}
		if len(sinkBranches) != 1 || t.Shape() == triplet.V || (keepFanned && t.Shape() == triplet.Fanned) {
			out = append(out, t)
			continue
		}
		tb := sinkBranches[0]
		rest := set{}
		for l := range tl {
			if !tb[l] {
				rest[l] = true
			}
		}
		switch {
		case tb.intersectionSize(sink) == 2:
			switch t.Shape() {
			case triplet.ChainRising, triplet.ChainFalling:
				out = append(out, t)
			default:
				keep := true
				for l := range rest {
					if cycleVertices[l] {
						keep = false
					}
				}
				if keep {
					out = append(out, t)
				}
			}
		case len(tb) == 1:
			hit := 0
			for _, b := range side {
				if b.intersects(rest) {
					hit++
				}
			}
			if hit == 1 {
				anyCV := false
				for l := range rest {
					if cycleVertices[l] {
						anyCV = true
					}
				}
				if !anyCV {
					out = append(out, t)
				}
			}
		default:
			out = append(out, t)
		}
	}
	return out
}

// findSinkPath walks a reconstructed half from its root toward the sink,
// returning the node names on the way, sink node last.
func findSinkPath(s graph.Structure, sink, cycleVertices set) []string {
	var path []string
	for {
		descended := false
		keys := make([]string, 0, len(s))
		for k := range s {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if sink[k] {
				return append(path, k)
			}
			if (cycleVertices[k] && !sink[k]) || containsSink(s[k], sink) {
				path = append(path, k)
				s = s[k]
				descended = true
				break
			}
		}
		if !descended {
			if len(keys) > 0 {
				path = append(path, keys[0])
			}
			return path
		}
	}
}

func containsSink(s graph.Structure, sink set) bool {
	if len(sink) == 0 {
		return true
	}
	for k, v := range s {
		if sink[k] || containsSink(v, sink) {
			return true
		}
	}
	return false
}
