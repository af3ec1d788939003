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

// Reticulations returns the names of the nodes with two parents.
func (g *Graph) Reticulations() []string {
	var out []string
	for id, name := range g.names {
		if len(g.in[id]) == 2 {
			out = append(out, name)
		}
	}
	return out
}

// SpanningTrees enumerates the trees obtained by cutting one of the two
// incoming edges at every reticulation, keeping those that stay rooted at
// the network's root and connected. Each tree is a general tree over the
// same labels. For a graph without reticulations the result is the graph
// itself as a general tree. The result is computed once and reused.
func (g *Graph) SpanningTrees() []*Graph {
	if g.spanning != nil {
		return g.spanning
	}
	var retics []NodeID
	for id := range g.names {
		if len(g.in[id]) == 2 {
			retics = append(retics, NodeID(id))
		}
	}
	// One choice bit per reticulation: which incoming edge survives.
	total := 1 << len(retics)
	var trees []*Graph
	for choice := 0; choice < total; choice++ {
		drop := make(map[[2]NodeID]bool, len(retics))
		for i, r := range retics {
			kept := (choice >> i) & 1
			drop[[2]NodeID{g.in[r][1-kept], r}] = true
		}
		if t := g.treeWithout(drop); t != nil {
			trees = append(trees, t)
		}
	}
	g.spanning = trees
	return trees
}

// treeWithout rebuilds the structure with the given edges removed, returning
// nil when some node is no longer reachable from the root.
func (g *Graph) treeWithout(drop map[[2]NodeID]bool) *Graph {
	reached := make(map[NodeID]bool, len(g.names))
	var walk func(NodeID) Structure
	walk = func(id NodeID) Structure {
		reached[id] = true
		s := make(Structure, len(g.out[id]))
		for _, c := range g.out[id] {
			if drop[[2]NodeID{id, c}] {
				continue
			}
			s[g.names[c]] = walk(c)
		}
		return s
	}
	s := Structure{g.names[g.root]: walk(g.root)}
	if len(reached) != len(g.names) {
		return nil
	}
	t, err := NewGeneralTree(s, g.labels)
	if err != nil {
		return nil
	}
	return t
}
