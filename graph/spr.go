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
	"fmt"
	"strconv"
	"strings"
)

// An SPRError reports an invalid subtree-prune-and-regraft request.
type SPRError struct {
	Msg string
}

func (e *SPRError) Error() string { return "spr: " + e.Msg }

// SPRMove describes where a pruned subtree is regrafted: either directly
// beneath an existing node (NewParent) or onto a fresh vertex spliced into
// an existing edge (InsertEdge). Exactly one of the two must be given.
type SPRMove struct {
	NewParent  string
	InsertEdge [2]string
	// AllowBreakingCycles permits pruning a node that lies on a
	// reticulation cycle, which destroys the cycle.
	AllowBreakingCycles bool
}

// PerformSPR prunes the subtree rooted at node and regrafts it per move.
// It returns the resulting structure and the length of the move: the
// undirected shortest-path distance from the node's original parent to the
// new attachment point. The receiver is not modified.
func (g *Graph) PerformSPR(node string, move SPRMove) (Structure, int, error) {
	hasParent := move.NewParent != ""
	hasEdge := move.InsertEdge[0] != "" || move.InsertEdge[1] != ""
	if hasParent == hasEdge {
		return nil, 0, &SPRError{Msg: "exactly one of a new parent and an insert edge must be given"}
	}
	id, ok := g.ids[node]
	if !ok {
		return nil, 0, &SPRError{Msg: fmt.Sprintf("node %q is not in the graph", node)}
	}
	if id == g.root {
		return nil, 0, &SPRError{Msg: "cannot move the root"}
	}
	if !move.AllowBreakingCycles && g.onCycle(id) {
		return nil, 0, &SPRError{Msg: fmt.Sprintf("node %q lies on a reticulation cycle", node)}
	}

	subtree := make(map[NodeID]bool)
	for d := range g.descendants(id) {
		subtree[d] = true
	}
	subtree[id] = true

	var target NodeID
	var length int
	if hasParent {
		np, ok := g.ids[move.NewParent]
		if !ok {
			return nil, 0, &SPRError{Msg: fmt.Sprintf("new parent %q is not in the graph", move.NewParent)}
		}
		if subtree[np] {
			return nil, 0, &SPRError{Msg: fmt.Sprintf("new parent %q is a descendant of %q", move.NewParent, node)}
		}
		target = np
		length = g.undirectedDistance(g.in[id][0], np)
	} else {
		u, uok := g.ids[move.InsertEdge[0]]
		v, vok := g.ids[move.InsertEdge[1]]
		if !uok || !vok || !g.hasEdge(u, v) {
			return nil, 0, &SPRError{Msg: fmt.Sprintf("insert edge %q -> %q is not in the graph", move.InsertEdge[0], move.InsertEdge[1])}
		}
		if subtree[u] || subtree[v] {
			return nil, 0, &SPRError{Msg: fmt.Sprintf("insert edge %q -> %q is incident to the subtree of %q", move.InsertEdge[0], move.InsertEdge[1], node)}
		}
		target = u
		du := g.undirectedDistance(g.in[id][0], u)
		if dv := g.undirectedDistance(g.in[id][0], v); dv < du {
			du = dv
		}
		length = du + 1
	}

	// Work on a mutable copy of the adjacency.
	out := make(map[string][]string, len(g.names))
	for fid, cs := range g.out {
		children := make([]string, len(cs))
		for i, c := range cs {
			children[i] = g.names[c]
		}
		out[g.names[fid]] = children
	}
	parents := make([]string, 0, 2)
	for _, p := range g.in[id] {
		parents = append(parents, g.names[p])
		out[g.names[p]] = remove(out[g.names[p]], node)
	}

	if hasParent {
		out[g.names[target]] = append(out[g.names[target]], node)
	} else {
		fresh := g.freshName(out)
		u, v := move.InsertEdge[0], move.InsertEdge[1]
		out[u] = remove(out[u], v)
		out[u] = append(out[u], fresh)
		out[fresh] = []string{v, node}
	}

	// Orphaned or unary unlabeled ex-parents are structural leftovers of
	// the prune; suppress them so a reverse move can restore the
	// original shape.
	rootName := g.names[g.root]
	for _, p := range parents {
		suppress(out, p, rootName, g.labeled)
	}

	return assemble(out, rootName), length, nil
}

// onCycle reports whether id lies on the cycle of some reticulation: the
// reticulation itself, or any node on the two parent arcs up to their merge
// point.
func (g *Graph) onCycle(id NodeID) bool {
	for r := range g.names {
		if len(g.in[r]) != 2 {
			continue
		}
		if NodeID(r) == id {
			return true
		}
		if g.cycleNodes(NodeID(r))[id] {
			return true
		}
	}
	return false
}

// cycleNodes returns the nodes of the cycle closed by reticulation r: the
// shortest undirected path between r's two parents that avoids r, plus r.
func (g *Graph) cycleNodes(r NodeID) map[NodeID]bool {
	p1, p2 := g.in[r][0], g.in[r][1]
	prev := make([]NodeID, len(g.names))
	seen := make([]bool, len(g.names))
	for i := range prev {
		prev[i] = -1
	}
	seen[p1], seen[r] = true, true
	queue := []NodeID{p1}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n == p2 {
			break
		}
		for _, next := range append(append([]NodeID(nil), g.out[n]...), g.in[n]...) {
			if !seen[next] {
				seen[next] = true
				prev[next] = n
				queue = append(queue, next)
			}
		}
	}
	nodes := map[NodeID]bool{r: true}
	if !seen[p2] {
		return nodes
	}
	for n := p2; n != -1; n = prev[n] {
		nodes[n] = true
	}
	nodes[p1] = true
	return nodes
}

func (g *Graph) undirectedDistance(from, to NodeID) int {
	dist := make([]int, len(g.names))
	for i := range dist {
		dist[i] = -1
	}
	dist[from] = 0
	queue := []NodeID{from}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n == to {
			return dist[n]
		}
		for _, next := range append(append([]NodeID(nil), g.out[n]...), g.in[n]...) {
			if dist[next] == -1 {
				dist[next] = dist[n] + 1
				queue = append(queue, next)
			}
		}
	}
	return -1
}

// freshName mints a synthetic node name not present in the adjacency.
func (g *Graph) freshName(out map[string][]string) string {
	k := 0
	for name := range out {
		if rest, ok := strings.CutPrefix(name, "*_"); ok {
			if n, err := strconv.Atoi(rest); err == nil && n >= k {
				k = n + 1
			}
		}
	}
	return "*_" + strconv.Itoa(k)
}

// suppress removes an unlabeled node that the prune left childless, or
// splices it out when it became a unary pass-through.
func suppress(out map[string][]string, name, rootName string, labeled map[string]bool) {
	if labeled[name] || name == rootName {
		return
	}
	children := out[name]
	var parents []string
	for p, cs := range out {
		for _, c := range cs {
			if c == name {
				parents = append(parents, p)
			}
		}
	}
	switch {
	case len(children) == 0:
		delete(out, name)
		for _, p := range parents {
			out[p] = remove(out[p], name)
			suppress(out, p, rootName, labeled)
		}
	case len(children) == 1 && len(parents) == 1:
		delete(out, name)
		out[parents[0]] = append(remove(out[parents[0]], name), children[0])
	}
}

func remove(ss []string, s string) []string {
	out := ss[:0]
	for _, x := range ss {
		if x != s {
			out = append(out, x)
		}
	}
	return out
}

// assemble rebuilds the nested mapping from a name adjacency.
func assemble(out map[string][]string, root string) Structure {
	memo := make(map[string]Structure)
	var sub func(string) Structure
	sub = func(name string) Structure {
		if s, ok := memo[name]; ok {
			return s
		}
		s := make(Structure, len(out[name]))
		memo[name] = s
		for _, c := range out[name] {
			s[c] = sub(c)
		}
		return s
	}
	return Structure{root: sub(root)}
}
