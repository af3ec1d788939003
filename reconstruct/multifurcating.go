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
	"context"
	"fmt"

	"github.com/TMALevert/triplet-distance/graph"
	"github.com/TMALevert/triplet-distance/triplet"
)

// Multifurcating rebuilds a multifurcating tree from fanned and resolved
// triplets over labels. Every input triplet is induced by the result; a
// triplet set admitting no multifurcating tree fails with ErrContradiction.
func Multifurcating(ctx context.Context, labels []string, ts []triplet.Triplet) (graph.Structure, error) {
	for _, t := range ts {
		switch t.Shape() {
		case triplet.Fanned, triplet.ResolvedLeft, triplet.ResolvedRight:
		default:
			return nil, fmt.Errorf("triplet %q: shape %v does not occur in multifurcating trees", t, t.Shape())
		}
	}
	e := &multiEngine{
		ctx:     ctx,
		labels:  dedupeLabels(labels),
		ts:      ts,
		counter: &counter{},
	}
	e.dSets = make(map[string]set, len(e.labels))
	for _, l := range e.labels {
		e.dSets[l] = e.dSet(l)
	}
	return e.reconstruct(e.labels, e.counter.next())
}

type multiEngine struct {
	ctx     context.Context
	labels  []string
	ts      []triplet.Triplet
	dSets   map[string]set
	counter *counter
}

// dSet returns the candidate siblings of label: every other label that is
// never mentioned together with it.
func (e *multiEngine) dSet(label string) set {
	d := newSet(e.labels...)
	delete(d, label)
	for _, t := range e.ts {
		if !t.Contains(label) {
			continue
		}
		for _, l := range t.Labels() {
			delete(d, l)
		}
	}
	return d
}

// childrenOfRoot returns the labels that may sit directly under the current
// root: those never constrained under a strict common ancestor by a
// resolved triplet.
func (e *multiEngine) childrenOfRoot(labels []string, ts []triplet.Triplet) set {
	children := newSet(labels...)
	for _, t := range ts {
		switch t.Shape() {
		case triplet.ResolvedLeft, triplet.ResolvedRight:
			for _, part := range t.Parts() {
				if len(part) == 2 {
					delete(children, part[0])
					delete(children, part[1])
				}
			}
		}
	}
	return children
}

func (e *multiEngine) reconstruct(labels []string, rootName string) (graph.Structure, error) {
	if err := e.ctx.Err(); err != nil {
		return nil, err
	}
	switch len(labels) {
	case 0:
		return graph.Structure{rootName: {}}, nil
	case 1:
		return graph.Structure{rootName: {labels[0]: {}}}, nil
	case 2:
		return graph.Structure{rootName: {labels[0]: {}, labels[1]: {}}}, nil
	}
	ts := restrict(e.ts, newSet(labels...))
	children := e.childrenOfRoot(labels, ts)
	branches := e.divideInBranches(labels, ts, children)
	if len(branches) == 1 {
		return nil, fmt.Errorf("%w: the labels %v form a single branch", ErrContradiction, labels)
	}
	tree := graph.Structure{}
	for _, branch := range branches {
		sub, err := e.reconstructBranch(branch, ts, children)
		if err != nil {
			return nil, err
		}
		for k, v := range sub {
			tree[k] = v
		}
	}
	return graph.Structure{rootName: tree}, nil
}

func (e *multiEngine) reconstructBranch(branch set, ts []triplet.Triplet, children set) (graph.Structure, error) {
	// A candidate root of the branch must be a root child whose D-set
	// covers the rest of the branch.
	for _, root := range branch.sorted() {
		if !children[root] {
			continue
		}
		rest := branch.clone()
		delete(rest, root)
		if rest.subsetOf(e.dSets[root]) {
			return e.reconstruct(rest.sorted(), root)
		}
	}
	return e.reconstruct(branch.sorted(), e.counter.next())
}

// divideInBranches partitions labels into the sibling branches of the
// current root: resolved pairs force their labels together, fanned triplets
// merge or place labels using the D-sets, and everything still unplaced
// becomes a singleton.
func (e *multiEngine) divideInBranches(labels []string, ts []triplet.Triplet, children set) []set {
	var branches []set
	placed := set{}
	var fanned []triplet.Triplet

	for _, t := range ts {
		switch t.Shape() {
		case triplet.ResolvedLeft, triplet.ResolvedRight:
			for _, part := range t.Parts() {
				if len(part) != 2 {
					continue
				}
				pair := newSet(part...)
				switch pair.intersectionSize(placed) {
				case 0:
					branches = append(branches, pair.clone())
				case 2:
					branches = mergeBranches(branches, pair, pair)
				default:
					for _, b := range branches {
						if b.intersects(pair) {
							b.addAll(pair)
							break
						}
					}
				}
				placed.addAll(pair)
			}
		default:
			fanned = append(fanned, t)
		}
	}

	var resolveFanned func(t triplet.Triplet)
	resolveFanned = func(t triplet.Triplet) {
		tl := newSet(t.Labels()...)
		numPlaced := tl.intersectionSize(placed)
		var containing []int
		for i, b := range branches {
			if b.intersects(tl) {
				containing = append(containing, i)
			}
		}
		if len(containing) == 3 || (numPlaced == 3 && len(containing) == 1) {
			return
		}
		if numPlaced > len(containing) {
			merged := tl.clone()
			branches = mergeIndices(branches, containing, merged)
			placed.addAll(tl)
			target := branches[len(branches)-1]
			for _, other := range fanned {
				if newSet(other.Labels()...).intersects(target) {
					resolveFanned(other)
				}
			}
			return
		}
		if numPlaced == 2 {
			for _, l := range tl.sorted() {
				if placed[l] {
					continue
				}
				placedNode := false
				if children[l] {
					for _, b := range branches {
						if len(b) >= 2 && b.subsetOf(e.dSets[l]) {
							b[l] = true
							placed[l] = true
							placedNode = true
							for _, other := range fanned {
								if newSet(other.Labels()...).intersects(b) {
									resolveFanned(other)
								}
							}
							break
						}
					}
				}
				if !placedNode && !placed[l] {
					branches = append(branches, newSet(l))
				}
			}
			placed.addAll(tl)
		}
	}

	for _, t := range fanned {
		resolveFanned(t)
	}

	for _, l := range labels {
		if placed[l] {
			continue
		}
		for _, t := range fanned {
			if t.Contains(l) {
				resolveFanned(t)
			}
		}
		if placed[l] {
			continue
		}
		placedNode := false
		for _, b := range branches {
			if ((children[l] && len(b) >= 2) || !children[l]) && b.subsetOf(e.dSets[l]) {
				b[l] = true
				placedNode = true
				break
			}
		}
		if !placedNode {
			branches = append(branches, newSet(l))
		}
		placed[l] = true
	}
	return branches
}

// mergeBranches removes the branches intersecting probe and appends their
// union together with extra.
func mergeBranches(branches []set, probe, extra set) []set {
	merged := extra.clone()
	out := make([]set, 0, len(branches))
	for _, b := range branches {
		if b.intersects(probe) {
			merged.addAll(b)
		} else {
			out = append(out, b)
		}
	}
	return append(out, merged)
}

// mergeIndices removes the branches at the given indices and appends their
// union together with extra.
func mergeIndices(branches []set, indices []int, extra set) []set {
	merged := extra.clone()
	skip := make(map[int]bool, len(indices))
	for _, i := range indices {
		skip[i] = true
		merged.addAll(branches[i])
	}
	out := make([]set, 0, len(branches))
	for i, b := range branches {
		if !skip[i] {
			out = append(out, b)
		}
	}
	return append(out, merged)
}
