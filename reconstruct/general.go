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
	"math/rand"

	"github.com/TMALevert/triplet-distance/graph"
	"github.com/TMALevert/triplet-distance/triplet"
)

// General rebuilds a general tree from triplets of the full eight-shape
// taxonomy over labels. The result may contain labeled internal nodes and
// unary chains. Every input triplet is induced by the result.
func General(ctx context.Context, labels []string, ts []triplet.Triplet, opts Options) (graph.Structure, error) {
	ls := dedupeLabels(labels)
	e := &generalEngine{
		base: base{
			ctx:            ctx,
			rng:            opts.rng(),
			labels:         ls,
			labelSet:       newSet(ls...),
			ts:             restrict(ts, newSet(ls...)),
			rel:            deriveRelations(ls, ts),
			counter:        &counter{},
			crossPairGuard: true,
		},
	}
	return e.reconstruct()
}

// base carries the state every recursive engine frame owns: its label
// universe, the triplets restricted to it, the derived relations, and the
// shared RNG and name counter.
type base struct {
	ctx      context.Context
	rng      *rand.Rand
	labels   []string
	labelSet set
	ts       []triplet.Triplet
	rel      *relations
	counter  *counter
	// crossPairGuard drops a V-triplet's root candidate when a resolved
	// triplet pairs descendants of its two arms. That always contradicts
	// a tree root, but in a network the spanning-tree union produces
	// such pairs around every cycle, so the network engine leaves the
	// guard off.
	crossPairGuard bool
}

// findPossibleRoots returns the labels that may sit at the top of the
// current frame: not separated from anything, not below anything, and not
// ruled out by a V-triplet guard.
func (e *base) findPossibleRoots() []string {
	cands := set{}
	for _, l := range e.labels {
		if e.rel.sep[l].intersectionSize(e.labelSet) > 0 {
			continue
		}
		below := false
		for _, m := range e.labels {
			if e.rel.desc[m][l] {
				below = true
				break
			}
		}
		if !below {
			cands[l] = true
		}
	}
	for idx := 0; len(cands) >= 1 && idx < len(e.ts); {
		t := e.ts[idx]
		root, isV := "", t.Shape() == triplet.V
		if isV {
			root, _ = t.Root()
		}
		if isV && cands[root] {
			branchUnion := set{}
			for _, b := range t.Branches() {
				branchUnion.addAll(newSet(b...))
			}
			covered := false
			for _, m := range e.labels {
				if m != root && branchUnion.subsetOf(e.rel.desc[m]) {
					covered = true
					break
				}
			}
			if covered {
				delete(cands, root)
				continue
			}
			if e.crossPairGuard {
				n := t.Nodes()
				d1 := e.rel.desc[n[0]].clone()
				d1[n[0]] = true
				d2 := e.rel.desc[n[2]].clone()
				d2[n[2]] = true
				if e.crossPairResolved(d1, d2) {
					delete(cands, root)
					continue
				}
			}
		}
		idx++
	}
	return cands.sorted()
}

// crossPairResolved reports whether some resolved triplet pairs a label
// from d1 with a label from d2, which would force the merge point of the
// two sides below another node.
func (e *base) crossPairResolved(d1, d2 set) bool {
	for _, u := range e.ts {
		switch u.Shape() {
		case triplet.ResolvedLeft, triplet.ResolvedRight:
		default:
			continue
		}
		for a := range d1 {
			for b := range d2 {
				if a != b && u.HasBranch(a, b) {
					return true
				}
			}
		}
	}
	return false
}

// seedBranches builds the initial partition of the frame's labels (minus
// root) from the descendant closure, then merges blocks hit by a resolved
// pair.
func (e *base) seedBranches(root string) []set {
	var branches []set
	placed := set{}
	for _, l := range e.labels {
		if l == root || placed[l] {
			continue
		}
		dl := set{l: true}
		for d := range e.rel.desc[l] {
			if e.labelSet[d] {
				dl[d] = true
			}
		}
		if dl.intersects(placed) {
			branches = mergeBranches(branches, dl, dl)
		} else {
			branches = append(branches, dl)
		}
		placed.addAll(dl)
	}
	for _, t := range e.ts {
		switch t.Shape() {
		case triplet.ResolvedLeft, triplet.ResolvedRight:
		default:
			continue
		}
		for _, part := range t.Parts() {
			if len(part) != 2 {
				continue
			}
			pair := newSet(part...)
			var containing []int
			for i, b := range branches {
				if b.intersects(pair) {
					containing = append(containing, i)
				}
			}
			if len(containing) == 2 {
				branches = mergeIndices(branches, containing, set{})
			}
		}
	}
	return branches
}

// violatesVGuard reports whether some V-triplet rooted at root does not
// split its labels across exactly two branches.
func (e *base) violatesVGuard(root string, branches []set) bool {
	for _, t := range e.ts {
		if t.Shape() != triplet.V {
			continue
		}
		if r, _ := t.Root(); r != root {
			continue
		}
		tl := newSet(t.Labels()...)
		hit := 0
		for _, b := range branches {
			if b.intersects(tl) {
				hit++
			}
		}
		if hit != 2 {
			return true
		}
	}
	return false
}

// fannedOf collects the frame's fanned triplets.
func (e *base) fannedOf() []triplet.Triplet {
	var out []triplet.Triplet
	for _, t := range e.ts {
		if t.Shape() == triplet.Fanned {
			out = append(out, t)
		}
	}
	return out
}

// chooseRoot draws candidate roots until one passes the V-triplet guards,
// minting a synthetic root when none does. It returns the root and the
// branch partition it produced.
func (e *base) chooseRoot(divide func(root string) []set) (string, []set, bool) {
	roots := e.findPossibleRoots()
	for len(roots) >= 1 {
		i := e.rng.Intn(len(roots))
		root := roots[i]
		branches := divide(root)
		if e.violatesVGuard(root, branches) {
			roots = append(roots[:i], roots[i+1:]...)
			continue
		}
		return root, branches, true
	}
	root := e.counter.next()
	return root, divide(root), false
}

type generalEngine struct {
	base
}

func (e *generalEngine) reconstruct() (graph.Structure, error) {
	if err := e.ctx.Err(); err != nil {
		return nil, err
	}
	root, branches, labeled := e.chooseRoot(e.divideInBranches)
	if !labeled && len(branches) == 1 {
		return nil, fmt.Errorf("%w: the labels %v form a single branch", ErrContradiction, e.labels)
	}
	tree := graph.Structure{}
	for _, branch := range branches {
		sub, err := e.reconstructBranch(branch)
		if err != nil {
			return nil, err
		}
		for k, v := range sub {
			tree[k] = v
		}
	}
	return graph.Structure{root: tree}, nil
}

func (e *generalEngine) reconstructBranch(branch set) (graph.Structure, error) {
	switch ls := branch.sorted(); len(ls) {
	case 1:
		return graph.Structure{ls[0]: {}}, nil
	case 2:
		return e.pairStructure(ls[0], ls[1]), nil
	default:
		child := &generalEngine{base: base{
			ctx:            e.ctx,
			rng:            e.rng,
			labels:         ls,
			labelSet:       branch.clone(),
			ts:             restrict(e.ts, branch),
			rel:            e.rel.restricted(branch),
			counter:        e.counter,
			crossPairGuard: true,
		}}
		return child.reconstruct()
	}
}

// pairStructure resolves a two-label block: a chain when one label is known
// to descend from the other, a fresh parent otherwise.
func (e *base) pairStructure(l1, l2 string) graph.Structure {
	switch {
	case e.rel.desc[l2][l1]:
		return graph.Structure{l2: {l1: {}}}
	case e.rel.desc[l1][l2]:
		return graph.Structure{l1: {l2: {}}}
	}
	return graph.Structure{e.counter.next(): {l1: {}, l2: {}}}
}

// divideInBranches partitions the labels under root. Fanned triplets merge
// blocks when exactly two blocks hold their labels; each processed fanned
// triplet also widens the descendant sets of labels already covering two of
// its members.
func (e *generalEngine) divideInBranches(root string) []set {
	branches := e.seedBranches(root)
	fanned := e.fannedOf()
	queue := append([]triplet.Triplet(nil), fanned...)
	for qi := 0; qi < len(queue); qi++ {
		t := queue[qi]
		queue = append(queue, resolveFannedMerge(&branches, t, e.ts)...)
		tl := newSet(t.Labels()...)
		for _, l := range e.labels {
			if e.rel.desc[l].intersectionSize(tl) == 2 {
				e.rel.desc[l].addAll(tl)
			}
		}
	}
	e.rel.desc = transitiveClosure(e.rel.desc)
	return branches
}

// resolveFannedMerge merges two branches when exactly two of them contain
// branches of the fanned triplet t, and returns the other fanned triplets
// touching t for re-resolution.
func resolveFannedMerge(branches *[]set, t triplet.Triplet, ts []triplet.Triplet) []triplet.Triplet {
	var containing []int
	for i, b := range *branches {
		for _, tb := range t.Branches() {
			if newSet(tb...).subsetOf(b) {
				containing = append(containing, i)
				break
			}
		}
	}
	if len(containing) != 2 {
		return nil
	}
	*branches = mergeIndices(*branches, containing, set{})
	tl := newSet(t.Labels()...)
	var extra []triplet.Triplet
	for _, other := range ts {
		if other.Shape() == triplet.Fanned && !other.Equal(t) && newSet(other.Labels()...).intersects(tl) {
			extra = append(extra, other)
		}
	}
	return extra
}
