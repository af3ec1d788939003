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

package graph

import (
	"github.com/TMALevert/triplet-distance/triplet"
)

// Triplets returns the triplets the structure induces, one per unordered
// triple of labeled nodes for which a shape holds. For multifurcating trees
// only fanned and resolved shapes occur; general trees use the full
// taxonomy; network triplets are the union over the network's spanning
// trees. The result is computed once and reused.
func (g *Graph) Triplets() []triplet.Triplet {
	if g.haveTriplets {
		return g.triplets
	}
	switch g.kind {
	case Multifurcating:
		g.triplets = g.multifurcatingTriplets()
	case General:
		g.triplets = g.generalTriplets()
	case Network:
		g.triplets = g.networkTriplets()
	}
	g.haveTriplets = true
	return g.triplets
}

func (g *Graph) multifurcatingTriplets() []triplet.Triplet {
	var out []triplet.Triplet
	ids := g.labeledIDs()
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			for k := j + 1; k < len(ids); k++ {
				n1, n2, n3 := ids[i], ids[j], ids[k]
				a1, a2, a3 := g.ancestors(n1), g.ancestors(n2), g.ancestors(n3)
				if a2[n1] || a3[n1] || a1[n2] || a3[n2] || a1[n3] || a2[n3] {
					// A labeled node above another induces no
					// multifurcating triplet.
					continue
				}
				name1, name2, name3 := g.names[n1], g.names[n2], g.names[n3]
				switch {
				case g.pairExclusiveAncestor(a1, a2, a3):
					out = append(out, triplet.NewResolved(name1, name2, name3))
				case g.pairExclusiveAncestor(a2, a3, a1):
					out = append(out, triplet.NewResolved(name2, name3, name1))
				case g.pairExclusiveAncestor(a1, a3, a2):
					out = append(out, triplet.NewResolved(name1, name3, name2))
				default:
					out = append(out, triplet.NewFanned(name1, name2, name3))
				}
			}
		}
	}
	return out
}

// pairExclusiveAncestor reports whether x and y share an ancestor that is
// not an ancestor of z.
func (g *Graph) pairExclusiveAncestor(x, y, z map[NodeID]bool) bool {
	for a := range x {
		if y[a] && !z[a] {
			return true
		}
	}
	return false
}

func (g *Graph) generalTriplets() []triplet.Triplet {
	var out []triplet.Triplet
	ids := g.labeledIDs()
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			for k := j + 1; k < len(ids); k++ {
				if t, ok := g.generalTriplet(ids[i], ids[j], ids[k]); ok {
					out = append(out, t)
				}
			}
		}
	}
	return out
}

// generalTriplet classifies one labeled triple. The examination order is
// fixed: a node above both others first (chain, then V), then a single
// ancestry (down-resolved), then resolved pairs, then fanned.
func (g *Graph) generalTriplet(n1, n2, n3 NodeID) (triplet.Triplet, bool) {
	d1, d2, d3 := g.descendants(n1), g.descendants(n2), g.descendants(n3)
	a1, a2, a3 := g.ancestors(n1), g.ancestors(n2), g.ancestors(n3)
	name := func(id NodeID) string { return g.names[id] }

	top := func(parent, x, y NodeID, dx, dy, ax, ay map[NodeID]bool) (triplet.Triplet, bool) {
		switch {
		case dy[x]:
			// parent -> y -> x.
			return triplet.NewChain(name(x), name(y), name(parent)), true
		case dx[y]:
			return triplet.NewChain(name(y), name(x), name(parent)), true
		case g.exclusiveCommonIsExactly(ax, ay, a1, a2, a3, parent):
			return triplet.NewV(name(x), name(parent), name(y)), true
		}
		// x and y merge strictly below parent; no shape in the taxonomy
		// covers a pair under a labeled ancestor.
		return triplet.Triplet{}, false
	}

	switch {
	case d1[n2] && d1[n3]:
		return top(n1, n2, n3, d2, d3, a2, a3)
	case d2[n1] && d2[n3]:
		return top(n2, n1, n3, d1, d3, a1, a3)
	case d3[n1] && d3[n2]:
		return top(n3, n1, n2, d1, d2, a1, a2)
	case d2[n1]:
		return triplet.NewDownResolved(name(n1), name(n2), name(n3)), true
	case d1[n2]:
		return triplet.NewDownResolved(name(n2), name(n1), name(n3)), true
	case d3[n1]:
		return triplet.NewDownResolved(name(n1), name(n3), name(n2)), true
	case d1[n3]:
		return triplet.NewDownResolved(name(n3), name(n1), name(n2)), true
	case d3[n2]:
		return triplet.NewDownResolved(name(n2), name(n3), name(n1)), true
	case d2[n3]:
		return triplet.NewDownResolved(name(n3), name(n2), name(n1)), true
	case g.pairExclusiveAncestor(a1, a2, a3):
		return triplet.NewResolved(name(n1), name(n2), name(n3)), true
	case g.pairExclusiveAncestor(a2, a3, a1):
		return triplet.NewResolved(name(n2), name(n3), name(n1)), true
	case g.pairExclusiveAncestor(a1, a3, a2):
		return triplet.NewResolved(name(n1), name(n3), name(n2)), true
	}
	return triplet.NewFanned(name(n1), name(n2), name(n3)), true
}

// exclusiveCommonIsExactly reports whether the common ancestors of x and y
// that are not common to the whole triple are exactly {parent}: x and y then
// sit in separate child branches of parent.
func (g *Graph) exclusiveCommonIsExactly(ax, ay, a1, a2, a3 map[NodeID]bool, parent NodeID) bool {
	sawParent := false
	for a := range ax {
		if !ay[a] {
			continue
		}
		if a1[a] && a2[a] && a3[a] {
			continue
		}
		if a == parent {
			sawParent = true
			continue
		}
		return false
	}
	return sawParent
}

func (g *Graph) networkTriplets() []triplet.Triplet {
	var out []triplet.Triplet
	for _, st := range g.SpanningTrees() {
		out = append(out, st.Triplets()...)
	}
	return triplet.Dedupe(out)
}
