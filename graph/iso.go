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

// Equal reports whether g and h are isomorphic under a mapping that fixes
// labeled nodes by name and is free on unlabeled nodes. Edge directions are
// preserved exactly; synthetic node names carry no meaning.
func (g *Graph) Equal(h *Graph) bool {
	if len(g.names) != len(h.names) || g.edgeCount() != h.edgeCount() {
		return false
	}
	if !sameLabelSet(g.labels, h.labels) {
		return false
	}

	// Labeled nodes are pinned by name; unlabeled nodes match freely on
	// a degree signature. Backtrack over the unlabeled ones.
	mapping := make([]NodeID, len(g.names)) // g node -> h node
	used := make([]bool, len(h.names))
	for i := range mapping {
		mapping[i] = -1
	}
	var unlabeledG []NodeID
	for id, name := range g.names {
		if g.labeled[name] {
			hid, ok := h.ids[name]
			if !ok || !h.labeled[name] {
				return false
			}
			mapping[id] = hid
			used[hid] = true
		} else {
			unlabeledG = append(unlabeledG, NodeID(id))
		}
	}
	var unlabeledH []NodeID
	for id, name := range h.names {
		if !h.labeled[name] {
			unlabeledH = append(unlabeledH, NodeID(id))
		}
	}
	if len(unlabeledG) != len(unlabeledH) {
		return false
	}

	var assign func(i int) bool
	assign = func(i int) bool {
		if i == len(unlabeledG) {
			return g.edgesConsistent(h, mapping)
		}
		gn := unlabeledG[i]
		for _, hn := range unlabeledH {
			if used[hn] {
				continue
			}
			if len(g.in[gn]) != len(h.in[hn]) || len(g.out[gn]) != len(h.out[hn]) {
				continue
			}
			mapping[gn] = hn
			used[hn] = true
			if g.partialEdgesConsistent(h, mapping, gn) && assign(i+1) {
				return true
			}
			mapping[gn] = -1
			used[hn] = false
		}
		return false
	}
	return assign(0)
}

func (g *Graph) edgeCount() int {
	n := 0
	for _, cs := range g.out {
		n += len(cs)
	}
	return n
}

// partialEdgesConsistent checks the edges incident to the freshly assigned
// node against the neighbors that are already mapped.
func (g *Graph) partialEdgesConsistent(h *Graph, mapping []NodeID, gn NodeID) bool {
	for _, c := range g.out[gn] {
		if mapping[c] >= 0 && !h.hasEdge(mapping[gn], mapping[c]) {
			return false
		}
	}
	for _, p := range g.in[gn] {
		if mapping[p] >= 0 && !h.hasEdge(mapping[p], mapping[gn]) {
			return false
		}
	}
	return true
}

// edgesConsistent verifies the complete mapping preserves adjacency in both
// directions. Edge counts are equal, so preserving every g edge suffices.
func (g *Graph) edgesConsistent(h *Graph, mapping []NodeID) bool {
	for from, cs := range g.out {
		for _, to := range cs {
			if !h.hasEdge(mapping[from], mapping[to]) {
				return false
			}
		}
	}
	return true
}

func (g *Graph) hasEdge(from, to NodeID) bool {
	for _, c := range g.out[from] {
		if c == to {
			return true
		}
	}
	return false
}

func sameLabelSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, l := range a {
		set[l] = true
	}
	for _, l := range b {
		if !set[l] {
			return false
		}
	}
	return true
}
