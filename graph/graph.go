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
Package graph models rooted phylogenetic structures: multifurcating trees,
general trees and level-1 networks.

A structure is described by a nested mapping from a node to its children
(Structure). A node identifier occurring in more than one place denotes the
same node, so reticulation joins are written by repeating the identifier.
A subset of the nodes is labeled; the remaining nodes are internal auxiliary
points.

The package enumerates the triplets a structure induces, decides equality of
two structures under label-preserving isomorphism, computes several distances
between structures over the same labels, and performs subtree-prune-and-
regraft moves.
*/
package graph

import (
	"errors"
	"fmt"
	"sort"

	"github.com/golang/groupcache/lru"

	"github.com/TMALevert/triplet-distance/triplet"
)

// ErrLabelMismatch reports a distance between structures over different
// label sets.
var ErrLabelMismatch = errors.New("graphs have different label sets")

// Structure is the nested parent-to-children mapping describing a rooted
// structure. Leaves map to empty (or nil) Structures. Repeating a node
// identifier makes the occurrences one node, which is how reticulations are
// expressed.
type Structure map[string]Structure

// Clone returns a deep copy of s.
func (s Structure) Clone() Structure {
	if s == nil {
		return nil
	}
	out := make(Structure, len(s))
	for k, v := range s {
		out[k] = v.Clone()
	}
	return out
}

// Kind states which triplet taxonomy a graph induces.
type Kind int

const (
	// Multifurcating graphs are trees whose labels all sit on leaves;
	// they induce only fanned and resolved triplets.
	Multifurcating Kind = iota
	// General graphs are trees that may label internal nodes and contain
	// unary chains; they induce the full eight-shape taxonomy.
	General
	// Network graphs are level-1 networks; their triplets are the union
	// over their spanning trees.
	Network
)

// NodeID identifies a node in a Graph. It is scoped to one Graph and indexes
// its node slices.
type NodeID int

// Graph is a rooted directed structure over named nodes.
// Graphs are immutable once constructed; derived data (triplet sets,
// reachability) is computed on first use and memoized.
type Graph struct {
	kind  Kind
	names []string
	ids   map[string]NodeID
	out   [][]NodeID
	in    [][]NodeID
	root  NodeID

	labels  []string
	labeled map[string]bool

	// Reachability sets are memoized per node, mirroring the repeated
	// ancestor/descendant probes of triplet enumeration.
	descCache *lru.Cache
	ancCache  *lru.Cache

	triplets     []triplet.Triplet
	haveTriplets bool
	spanning     []*Graph
}

// NewMultifurcatingTree builds a multifurcating tree from its nested mapping
// and label list. Every node must have at most one parent.
func NewMultifurcatingTree(s Structure, labels []string) (*Graph, error) {
	return build(Multifurcating, s, labels)
}

// NewGeneralTree builds a general tree from its nested mapping and label
// list. Every node must have at most one parent.
func NewGeneralTree(s Structure, labels []string) (*Graph, error) {
	return build(General, s, labels)
}

// NewLevelOneNetwork builds a level-1 network from its nested mapping and
// label list. Nodes with two parents are reticulations; more than two
// parents is rejected.
func NewLevelOneNetwork(s Structure, labels []string) (*Graph, error) {
	return build(Network, s, labels)
}

func build(kind Kind, s Structure, labels []string) (*Graph, error) {
	g := &Graph{
		kind:    kind,
		ids:     make(map[string]NodeID),
		labels:  append([]string(nil), labels...),
		labeled: make(map[string]bool, len(labels)),
	}
	for _, l := range labels {
		g.labeled[l] = true
	}
	var walk func(s Structure)
	walk = func(s Structure) {
		// Visit in sorted order so node numbering is deterministic.
		names := make([]string, 0, len(s))
		for name := range s {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			parent := g.node(name)
			children := s[name]
			childNames := make([]string, 0, len(children))
			for c := range children {
				childNames = append(childNames, c)
			}
			sort.Strings(childNames)
			for _, c := range childNames {
				g.addEdge(parent, g.node(c))
				walk(Structure{c: children[c]})
			}
		}
	}
	walk(s)
	if len(g.names) == 0 {
		return nil, errors.New("empty structure")
	}
	roots := g.rootCandidates()
	if len(roots) != 1 {
		return nil, fmt.Errorf("structure must have exactly one root, found %d", len(roots))
	}
	g.root = roots[0]
	for id := range g.names {
		switch indeg := len(g.in[id]); {
		case indeg > 2:
			return nil, fmt.Errorf("node %q has %d parents; at most 2 are allowed", g.names[id], indeg)
		case indeg == 2 && kind != Network:
			return nil, fmt.Errorf("node %q has two parents; only networks may contain reticulations", g.names[id])
		}
	}
	g.descCache = lru.New(len(g.names))
	g.ancCache = lru.New(len(g.names))
	return g, nil
}

func (g *Graph) node(name string) NodeID {
	if id, ok := g.ids[name]; ok {
		return id
	}
	id := NodeID(len(g.names))
	g.ids[name] = id
	g.names = append(g.names, name)
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	return id
}

func (g *Graph) addEdge(from, to NodeID) {
	for _, c := range g.out[from] {
		if c == to {
			return
		}
	}
	g.out[from] = append(g.out[from], to)
	g.in[to] = append(g.in[to], from)
}

func (g *Graph) rootCandidates() []NodeID {
	var roots []NodeID
	for id := range g.names {
		if len(g.in[id]) == 0 {
			roots = append(roots, NodeID(id))
		}
	}
	return roots
}

// Kind returns the graph's kind.
func (g *Graph) Kind() Kind { return g.kind }

// Labels returns the graph's labels in the order given at construction.
func (g *Graph) Labels() []string { return append([]string(nil), g.labels...) }

// Root returns the name of the root node.
func (g *Graph) Root() string { return g.names[g.root] }

// Nodes returns all node names, in construction order.
func (g *Graph) Nodes() []string { return append([]string(nil), g.names...) }

// Labeled reports whether name is a labeled node.
func (g *Graph) Labeled(name string) bool { return g.labeled[name] }

// Contains reports whether the graph has a node called name.
func (g *Graph) Contains(name string) bool {
	_, ok := g.ids[name]
	return ok
}

// descendants returns the set of nodes strictly below id.
func (g *Graph) descendants(id NodeID) map[NodeID]bool {
	if v, ok := g.descCache.Get(id); ok {
		return v.(map[NodeID]bool)
	}
	set := make(map[NodeID]bool)
	var walk func(NodeID)
	walk = func(n NodeID) {
		for _, c := range g.out[n] {
			if !set[c] {
				set[c] = true
				walk(c)
			}
		}
	}
	walk(id)
	g.descCache.Add(id, set)
	return set
}

// ancestors returns the set of nodes strictly above id.
func (g *Graph) ancestors(id NodeID) map[NodeID]bool {
	if v, ok := g.ancCache.Get(id); ok {
		return v.(map[NodeID]bool)
	}
	set := make(map[NodeID]bool)
	var walk func(NodeID)
	walk = func(n NodeID) {
		for _, p := range g.in[n] {
			if !set[p] {
				set[p] = true
				walk(p)
			}
		}
	}
	walk(id)
	g.ancCache.Add(id, set)
	return set
}

// Structure rebuilds the nested mapping form of the graph. Shared nodes
// appear once per parent, with identical subtrees.
func (g *Graph) Structure() Structure {
	memo := make(map[NodeID]Structure)
	var sub func(NodeID) Structure
	sub = func(id NodeID) Structure {
		if s, ok := memo[id]; ok {
			return s
		}
		s := make(Structure, len(g.out[id]))
		memo[id] = s
		for _, c := range g.out[id] {
			s[g.names[c]] = sub(c)
		}
		return s
	}
	return Structure{g.names[g.root]: sub(g.root)}
}

func (g *Graph) labeledIDs() []NodeID {
	var ids []NodeID
	for id, name := range g.names {
		if g.labeled[name] {
			ids = append(ids, NodeID(id))
		}
	}
	return ids
}
