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
	"sort"

	"github.com/TMALevert/triplet-distance/graph"
	"github.com/TMALevert/triplet-distance/triplet"
)

// LevelOneNetwork rebuilds a level-1 network from triplets over labels.
// When the triplets witness a reticulation cycle under some vertex, the
// engine locates the cycle's sink, splits the cycle contents into its two
// arcs, reconstructs each arc with the shared sink and joins them. Every
// input triplet is induced by the result.
func LevelOneNetwork(ctx context.Context, labels []string, ts []triplet.Triplet, opts Options) (graph.Structure, error) {
	ls := dedupeLabels(labels)
	e := newNetEngine(ctx, opts.rng(), ls, restrict(ts, newSet(ls...)), nil, nil, &counter{})
	return e.reconstruct()
}

type netEngine struct {
	base
	index *tripleIndex
	// snSets is the laminar family of separating-neighbor sets over the
	// frame's labels, singletons included; maximalSN are its maximal
	// elements.
	snSets    []set
	maximalSN []set
	// isCycle records whether this frame resolved a cycle, which the
	// parent frame inspects to lift the cycle's root.
	isCycle bool
}

// newNetEngine builds a recursion frame. rel and sn are the closures handed
// down by the parent, or nil to derive them from the frame's own triplets.
func newNetEngine(ctx context.Context, rng *rand.Rand, labels []string, ts []triplet.Triplet, rel *relations, sn []set, c *counter) *netEngine {
	labelSet := newSet(labels...)
	e := &netEngine{
		base: base{
			ctx:      ctx,
			rng:      rng,
			labels:   labels,
			labelSet: labelSet,
			ts:       ts,
			counter:  c,
		},
		index: newTripleIndex(ts),
	}
	if rel != nil && sn != nil {
		e.rel = rel.restricted(labelSet)
		for _, s := range sn {
			if len(s) != len(labels) && s.subsetOf(labelSet) {
				e.snSets = append(e.snSets, s.clone())
			}
		}
	} else {
		e.rel = deriveRelations(labels, ts)
		e.snSets = e.nonTrivialSNSets()
	}
	e.maximalSN = maximalSets(e.snSets)
	return e
}

// nonTrivialSNSets grows, for every unordered label pair (i, j), the smallest
// set containing i that no triplet separates from j, and keeps the
// non-trivial results together with all singletons.
func (e *netEngine) nonTrivialSNSets() []set {
	family := make(map[string]set)
	for _, l := range e.labels {
		s := newSet(l)
		family[s.key()] = s
	}
	for i := 0; i < len(e.labels); i++ {
		for j := i + 1; j < len(e.labels); j++ {
			sn := newSet(e.labels[i])
			frontier := []string{e.labels[j]}
			inFrontier := newSet(e.labels[j])
			for len(frontier) > 0 {
				z := frontier[0]
				frontier = frontier[1:]
				delete(inFrontier, z)
				for _, l := range sn.sorted() {
					for _, t := range e.index.withPair(l, z) {
						other := ""
						for _, x := range t.Labels() {
							if x != l && x != z {
								other = x
							}
						}
						if sn[other] || inFrontier[other] {
							continue
						}
						if !e.canBeApart(t, l, z, other) {
							frontier = append(frontier, other)
							inFrontier[other] = true
						}
					}
				}
				sn[z] = true
			}
			if len(sn) != len(e.labels) {
				family[sn.key()] = sn
			}
		}
	}
	out := make([]set, 0, len(family))
	for _, k := range sortedMapKeys(family) {
		out = append(out, family[k])
	}
	return out
}

// canBeApart reports whether t allows other to sit apart from the pair
// {l, z}: other is t's pinned apex, or t separates exactly {l, z} from it,
// except that fanned and V triplets never testify apartness, and a resolved
// triplet testifies it only when other is its own branch.
func (e *netEngine) canBeApart(t triplet.Triplet, l, z, other string) bool {
	switch t.Shape() {
	case triplet.Fanned, triplet.V:
		return false
	case triplet.ResolvedLeft, triplet.ResolvedRight:
		if !t.HasBranch(other) {
			return false
		}
	}
	if root, ok := t.Root(); ok && root == other {
		return true
	}
	return newSet(t.SeparationsOf(other)...).equal(newSet(l, z))
}

func maximalSets(family []set) []set {
	var out []set
	for i, s := range family {
		maximal := true
		for j, o := range family {
			if i != j && s.subsetOf(o) && !s.equal(o) {
				maximal = false
				break
			}
		}
		if maximal {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key() < out[j].key() })
	return out
}

func (e *netEngine) child(labels set, ts []triplet.Triplet, shareClosures bool) *netEngine {
	var rel *relations
	var sn []set
	if shareClosures {
		rel, sn = e.rel, e.snSets
	}
	return newNetEngine(e.ctx, e.rng, labels.sorted(), ts, rel, sn, e.counter)
}

func (e *netEngine) reconstruct() (graph.Structure, error) {
	if err := e.ctx.Err(); err != nil {
		return nil, err
	}
	switch len(e.labels) {
	case 1:
		return graph.Structure{e.labels[0]: {}}, nil
	case 2:
		return e.pairStructure(e.labels[0], e.labels[1]), nil
	}
	roots := e.findPossibleRoots()
	var root string
	if len(roots) >= 1 {
		root = roots[e.rng.Intn(len(roots))]
	} else {
		root = e.counter.next()
	}
	branches := e.divideInBranches(root)
	if len(branches) == 1 {
		return e.reconstructCycle(root, branches[0])
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

func (e *netEngine) reconstructBranch(branch set) (graph.Structure, error) {
	ls := branch.sorted()
	switch len(ls) {
	case 1:
		return graph.Structure{ls[0]: {}}, nil
	case 2:
		return e.pairStructure(ls[0], ls[1]), nil
	}
	child := e.child(branch, restrict(e.ts, branch), true)
	sub, err := child.reconstruct()
	if err != nil {
		return nil, err
	}
	if child.isCycle && e.fannedTiesOutside(branch) {
		// The child's cycle is fanned against a sibling branch, so its
		// source belongs at this level: splice out the minted root.
		for _, v := range sub {
			sub = v
			break
		}
	}
	return sub, nil
}

// fannedTiesOutside reports whether some fanned triplet joins two labels of
// branch with a label outside it.
func (e *netEngine) fannedTiesOutside(branch set) bool {
	ls := branch.sorted()
	outside := set{}
	for _, l := range e.labels {
		if !branch[l] {
			outside[l] = true
		}
	}
	for i := 0; i < len(ls); i++ {
		for j := i + 1; j < len(ls); j++ {
			for _, o := range outside.sorted() {
				for _, t := range e.index.onTriple(ls[i], ls[j], o) {
					if t.Shape() == triplet.Fanned {
						return true
					}
				}
			}
		}
	}
	return false
}

// divideInBranches partitions the labels under root. Fanned triplets merge
// blocks only when the SN-set structure does not explain them as three
// separate cycle arms.
func (e *netEngine) divideInBranches(root string) []set {
	branches := e.seedBranches(root)
	queue := e.fannedOf()
	for qi := 0; qi < len(queue); qi++ {
		t := queue[qi]
		if e.fannedSuppressed(t) {
			continue
		}
		queue = append(queue, resolveFannedMerge(&branches, t, e.ts)...)
	}
	return branches
}

// fannedSuppressed reports whether a fanned triplet must not merge blocks:
// its labels may stand for distinct cycle arms.
func (e *netEngine) fannedSuppressed(t triplet.Triplet) bool {
	tl := t.Labels()
	tlSet := newSet(tl...)
	for _, m := range e.maximalSN {
		for _, l := range tl {
			if m.subsetOf(e.rel.desc[l]) {
				return true
			}
		}
	}
	if len(e.index.onTriple(tl[0], tl[1], tl[2])) > 1 {
		return true
	}
	underTriplet := set{}
	for _, l := range tl {
		underTriplet.addAll(e.rel.desc[l])
	}
	for _, l := range tl {
		for _, m := range e.labels {
			if tlSet[m] || underTriplet[m] {
				continue
			}
			if !e.rel.desc[m][l] {
				continue
			}
			otherBelow := false
			for _, l2 := range tl {
				if l2 != l && e.rel.desc[m][l2] {
					otherBelow = true
					break
				}
			}
			if otherBelow {
				continue
			}
			for _, sn := range e.maximalSN {
				if sn.subsetOf(e.rel.desc[m]) {
					return true
				}
			}
		}
	}
	hit := 0
	for _, m := range e.maximalSN {
		if m.intersects(tlSet) {
			hit++
		}
	}
	return hit == 3
}

// reconstructCycle handles a frame whose labels form one branch under root:
// either the root is labeled and simply tops a resolvable subtree, or the
// branch is the content of one or more reticulation cycles sourced at root.
func (e *netEngine) reconstructCycle(root string, branch set) (graph.Structure, error) {
	if e.labelSet[root] {
		probe := e.child(branch, restrict(e.ts, branch), true)
		if len(probe.findPossibleRoots()) == 1 {
			sub, err := probe.reconstruct()
			if err != nil {
				return nil, err
			}
			return graph.Structure{root: sub}, nil
		}
	}
	sinks := e.findSinkOfCycle(root)
	var cycleLabels []set
	if len(sinks) > 1 {
		sinks, cycleLabels = e.findSingularCycleSink(sinks, root)
	}
	if len(cycleLabels) == 0 {
		rest := e.labelSet.clone()
		delete(rest, root)
		cycleLabels = []set{rest}
	}
	if len(sinks) == 0 {
		return nil, fmt.Errorf("%w: the labels %v form a single branch but witness no cycle sink", ErrContradiction, e.labels)
	}
	tree := graph.Structure{}
	for i, sink := range sinks {
		e.isCycle = true
		arcs, sink, cycleVertices := e.resolveCycle(sink, cycleLabels[i], root)
		left, right := e.findCycleOrder(arcs, sink, cycleVertices, root)
		leftNodes := union(append(append([]set(nil), left...), sink)...)
		rightNodes := union(append(append([]set(nil), right...), sink)...)
		leftTs := e.filterHalf(leftNodes, left, sink, cycleVertices, false)
		rightTs := e.filterHalf(rightNodes, right, sink, cycleVertices, true)

		leftEngine := e.child(leftNodes, leftTs, len(leftTs) == 0 || leftNodes.equal(sink))
		leftSub, err := leftEngine.reconstruct()
		if err != nil {
			return nil, err
		}
		rightEngine := e.child(rightNodes, rightTs, len(rightTs) == 0 || rightNodes.equal(sink))
		rightSub, err := rightEngine.reconstruct()
		if err != nil {
			return nil, err
		}

		// Both halves contain the sink subtree; retarget the right
		// half's sink at the left half's so the arcs join in one
		// reticulation node.
		leftPath := findSinkPath(leftSub, sink, cycleVertices)
		rightPath := findSinkPath(rightSub, sink, cycleVertices)
		if len(leftPath) > 0 && len(rightPath) > 0 {
			cur := rightSub
			for _, k := range rightPath[:len(rightPath)-1] {
				cur = cur[k]
			}
			delete(cur, rightPath[len(rightPath)-1])
			cur[leftPath[len(leftPath)-1]] = graph.Structure{}
		}
		for k, v := range leftSub {
			tree[k] = v
		}
		for k, v := range rightSub {
			tree[k] = v
		}
	}
	return graph.Structure{root: tree}, nil
}

// findSinkOfCycle gathers candidate sink SN-sets from the triplet evidence
// around source, per the sink heuristics over label triples.
func (e *netEngine) findSinkOfCycle(source string) []set {
	hits := set{}
	if e.labelSet[source] {
		for _, t := range e.ts {
			if t.Shape() != triplet.V {
				continue
			}
			if r, _ := t.Root(); r != source {
				continue
			}
			n := t.Nodes()
			n1, n2 := n[0], n[2]
			common := set{}
			for d := range e.rel.desc[n1] {
				if e.rel.desc[n2][d] {
					common[d] = true
				}
			}
			if e.rel.desc[n2][n1] {
				common[n1] = true
			} else if e.rel.desc[n1][n2] {
				common[n2] = true
			}
			if len(common) == 0 {
				continue
			}
			for _, m := range e.maximalSN {
				if common.subsetOf(m) {
					hits.addAll(m)
					break
				}
			}
		}
	}

	var doubleResolved []triplet.Triplet
	for i := 0; i < len(e.labels); i++ {
		for j := i + 1; j < len(e.labels); j++ {
			for k := j + 1; k < len(e.labels); k++ {
				ts := e.index.onTriple(e.labels[i], e.labels[j], e.labels[k])
				if len(ts) != 2 {
					continue
				}
				hasDownUp := anyShape(ts, triplet.DownResolved, triplet.UpResolved)
				hasChain := anyShape(ts, triplet.ChainRising, triplet.ChainFalling)
				hasV := anyShape(ts, triplet.V)
				switch {
				case hasDownUp && !hasChain && !hasV:
					t := firstShape(ts, triplet.DownResolved, triplet.UpResolved)
					for _, b := range t.Branches() {
						if len(b) != 1 {
							for _, l := range b {
								if t.DescendantsOf(l) == nil {
									hits[l] = true
								}
							}
							break
						}
					}
				case hasDownUp && hasChain:
					t := firstShape(ts, triplet.ChainRising, triplet.ChainFalling)
					for _, l := range []string{e.labels[i], e.labels[j], e.labels[k]} {
						if t.Contains(l) && t.DescendantsOf(l) == nil {
							hits[l] = true
						}
					}
				case hasV && hasDownUp:
					t := firstShape(ts, triplet.DownResolved, triplet.UpResolved, triplet.Fanned,
						triplet.ResolvedLeft, triplet.ResolvedRight, triplet.ChainRising, triplet.ChainFalling)
					for _, b := range t.Branches() {
						if len(b) == 1 {
							hits[b[0]] = true
							break
						}
					}
				case allResolved(ts):
					doubleResolved = append(doubleResolved, ts...)
				}
			}
		}
	}

	e.sinkFromDoubleResolved(doubleResolved, hits)

	if len(hits) == 0 {
		e.sinkFromSparseTriples(source, hits)
	}

	var out []set
	for _, m := range e.maximalSN {
		if m.subsetOf(hits) {
			out = append(out, m)
		}
	}
	return out
}

// sinkFromDoubleResolved pinpoints a sink label from pairs of resolved
// triplets over overlapping triples: among the four sub-triples of a
// four-label set, exactly one missing configuration names the sink.
func (e *netEngine) sinkFromDoubleResolved(doubleResolved []triplet.Triplet, hits set) {
	countOn := func(labels set) int {
		n := 0
		for _, t := range doubleResolved {
			if newSet(t.Labels()...).equal(labels) {
				n++
			}
		}
		return n
	}
	for _, rt := range doubleResolved {
		rl := rt.Labels()
		if newSet(rl...).intersects(hits) {
			continue
		}
		a, b, c := rl[0], rl[1], rl[2]
		for _, t2 := range doubleResolved {
			overlap := newSet(t2.Labels()...).intersectionSize(newSet(a, b, c))
			if overlap != 2 {
				continue
			}
			d := ""
			for _, l := range t2.Labels() {
				if l != a && l != b && l != c {
					d = l
				}
			}
			if hits[d] {
				continue
			}
			missing := 0
			var absent string
			for _, sub := range []struct {
				triple set
				other  string
			}{
				{newSet(a, b, c), d},
				{newSet(a, b, d), c},
				{newSet(a, c, d), b},
				{newSet(b, c, d), a},
			} {
				if countOn(sub.triple) == 0 {
					missing++
					absent = sub.other
				}
			}
			if missing != 1 {
				continue
			}
			hits[absent] = true
			if absent != d {
				break
			}
		}
	}
}

// sinkFromSparseTriples falls back to triple sparsity. A label other than
// the source counts as a sink label, and its maximal SN-set joins hits, when
// every pair of non-descendant labels that shares exactly one triplet with
// it shares at most one triplet with each other label as well; a label with
// no such single-triplet pair counts too.
func (e *netEngine) sinkFromSparseTriples(source string, hits set) {
	for _, label := range e.labels {
		if label == source {
			continue
		}
		pool := set{}
		for _, l := range e.labels {
			if l != label && l != source && !e.rel.desc[label][l] {
				pool[l] = true
			}
		}
		ps := pool.sorted()
		var lonely []triplet.Triplet
		for i := 0; i < len(ps); i++ {
			for j := i + 1; j < len(ps); j++ {
				if ts := e.index.onTriple(label, ps[i], ps[j]); len(ts) == 1 {
					lonely = append(lonely, ts[0])
				}
			}
		}
		confirmed := len(lonely) > 0
		for _, t := range lonely {
			pair := []string{}
			for _, l := range t.Labels() {
				if l != label {
					pair = append(pair, l)
				}
			}
			ok := true
			for _, other := range e.labels {
				if t.Contains(other) {
					continue
				}
				if len(e.index.onTriple(other, pair[0], pair[1])) > 1 {
					ok = false
					break
				}
			}
			if !ok {
				confirmed = false
				break
			}
		}
		if len(lonely) == 0 || confirmed {
			for _, m := range e.maximalSN {
				if m[label] {
					hits.addAll(m)
					break
				}
			}
		}
	}
}

// findSingularCycleSink disambiguates between several candidate sink
// SN-sets and, when more than one survives, splits the non-sink labels into
// one cycle per sink.
func (e *netEngine) findSingularCycleSink(sinks []set, source string) ([]set, []set) {
	discarded := make([]bool, len(sinks))
	for i := 0; i < len(sinks); i++ {
		for j := i + 1; j < len(sinks); j++ {
			s1 := e.pick(sinks[i])
			s2 := e.pick(sinks[j])
			for _, other := range e.othersOf(sinks[i], sinks[j], source) {
				var fanlike, resolved []triplet.Triplet
				for _, t := range e.index.onTriple(s1, s2, other) {
					switch t.Shape() {
					case triplet.Fanned, triplet.DownResolved, triplet.UpResolved:
						fanlike = append(fanlike, t)
					case triplet.ResolvedLeft, triplet.ResolvedRight:
						resolved = append(resolved, t)
					}
				}
				if len(fanlike) == 0 && len(resolved) > 0 {
					if sinks[i].subsetOf(e.rel.desc[other]) {
						discarded[i] = true
					} else if sinks[j].subsetOf(e.rel.desc[other]) {
						discarded[j] = true
					}
				} else if len(fanlike) >= 1 && len(resolved) > 0 {
					for _, res := range resolved {
						if res.HasBranch(s1) && !anyHasBranch(resolved, s2) {
							discarded[j] = true
							break
						}
						if res.HasBranch(s2) && !anyHasBranch(resolved, s1) {
							discarded[i] = true
							break
						}
					}
				}
			}
		}
	}
	var remaining []set
	for i, s := range sinks {
		if !discarded[i] {
			remaining = append(remaining, s)
		}
	}
	if len(remaining) <= 1 {
		rest := e.labelSet.clone()
		delete(rest, source)
		return remaining, []set{rest}
	}
	perCycle := make([]set, len(remaining))
	for i := range perCycle {
		perCycle[i] = set{}
	}
	allSinks := union(remaining...)
	for i := 0; i < len(remaining); i++ {
		for j := i + 1; j < len(remaining); j++ {
			s1 := e.pick(remaining[i])
			s2 := e.pick(remaining[j])
			for _, label := range e.labels {
				if allSinks[label] || label == source {
					continue
				}
				var rts []triplet.Triplet
				for _, t := range e.index.onTriple(s1, s2, label) {
					switch t.Shape() {
					case triplet.ResolvedLeft, triplet.ResolvedRight, triplet.DownResolved, triplet.UpResolved:
						rts = append(rts, t)
					}
				}
				if len(rts) == 0 {
					continue
				}
				if rts[0].HasBranch(s1) {
					perCycle[j][label] = true
				} else if rts[0].HasBranch(s2) {
					perCycle[i][label] = true
				}
			}
		}
	}
	return remaining, perCycle
}

func (e *netEngine) pick(s set) string {
	ls := s.sorted()
	return ls[e.rng.Intn(len(ls))]
}

func (e *netEngine) othersOf(s1, s2 set, source string) []string {
	var out []string
	for _, l := range e.labels {
		if !s1[l] && !s2[l] && l != source {
			out = append(out, l)
		}
	}
	return out
}

func anyHasBranch(ts []triplet.Triplet, label string) bool {
	for _, t := range ts {
		if t.HasBranch(label) {
			return true
		}
	}
	return false
}

// resolveCycle determines, for the cycle under source with the given sink,
// the labels sitting on the cycle arcs as internal vertices and the branch
// blocks hanging off the arcs.
func (e *netEngine) resolveCycle(sink set, cycleLabels set, source string) (arcs []set, outSink set, internal set) {
	internal = set{}
	for l := range cycleLabels {
		want := sink.clone()
		delete(want, l)
		inter := set{}
		for d := range e.rel.desc[l] {
			if sink[d] {
				inter[d] = true
			}
		}
		if inter.equal(want) {
			internal[l] = true
		}
	}

	nonSink := set{}
	for l := range cycleLabels {
		if !sink[l] {
			nonSink[l] = true
		}
	}
	var promotions [][2]string
	ns := nonSink.sorted()
	for i := 0; i < len(ns); i++ {
		for j := i + 1; j < len(ns); j++ {
			n1, n2 := ns[i], ns[j]
			for _, sn := range sink.sorted() {
				ts := e.index.onTriple(n1, n2, sn)
				if len(ts) == 1 {
					pairBlock := e.arcBlock(n1, n2, source, internal)
					arcs = e.mergeArc(arcs, n1, n2, internal, pairBlock)
					break
				}
				if anyShape(ts, triplet.DownResolved, triplet.UpResolved) && anyShape(ts, triplet.V) {
					pairBlock := e.arcBlock(n1, n2, source, internal)
					arcs = e.mergeArc(arcs, n1, n2, internal, pairBlock)
				}
				if !inAnyArc(arcs, n1) && n1 != source && !internal[n1] {
					arcs = append(arcs, newSet(n1))
				}
				if !inAnyArc(arcs, n2) && n2 != source && !internal[n2] {
					arcs = append(arcs, newSet(n2))
				}
				for _, t := range ts {
					if t.Shape() != triplet.V {
						continue
					}
					if internal[n1] && n1 != source && !internal[n2] {
						promotions = append(promotions, [2]string{n1, n2})
					} else if internal[n2] && n2 != source && !internal[n1] {
						promotions = append(promotions, [2]string{n2, n1})
					}
				}
			}
		}
	}
	for _, p := range promotions {
		for _, arc := range arcs {
			if arc[p[1]] {
				arc[p[0]] = true
				break
			}
		}
	}
	if len(arcs) == 0 && len(promotions) == 0 && len(nonSink) == 2 {
		for _, l := range nonSink.sorted() {
			arcs = append(arcs, newSet(l))
		}
	}
	return arcs, sink, internal
}

// arcBlock is the block contributed by a non-sink pair: the pair minus the
// source and the internal cycle vertices.
func (e *netEngine) arcBlock(n1, n2, source string, internal set) set {
	block := newSet(n1, n2)
	delete(block, source)
	for l := range internal {
		delete(block, l)
	}
	return block
}

// mergeArc merges into one block every arc holding n1 or n2 outside the
// internal vertices, together with block.
func (e *netEngine) mergeArc(arcs []set, n1, n2 string, internal set, block set) []set {
	merged := block.clone()
	out := make([]set, 0, len(arcs))
	for _, arc := range arcs {
		holds := (arc[n1] && !internal[n1]) || (arc[n2] && !internal[n2])
		if holds {
			merged.addAll(arc)
		} else {
			out = append(out, arc)
		}
	}
	return append(out, merged)
}

func inAnyArc(arcs []set, l string) bool {
	for _, arc := range arcs {
		if arc[l] {
			return true
		}
	}
	return false
}

func anyShape(ts []triplet.Triplet, shapes ...triplet.Shape) bool {
	return firstShape(ts, shapes...) != (triplet.Triplet{})
}

func firstShape(ts []triplet.Triplet, shapes ...triplet.Shape) triplet.Triplet {
	for _, t := range ts {
		for _, s := range shapes {
			if t.Shape() == s {
				return t
			}
		}
	}
	return triplet.Triplet{}
}

func allResolved(ts []triplet.Triplet) bool {
	for _, t := range ts {
		switch t.Shape() {
		case triplet.ResolvedLeft, triplet.ResolvedRight:
		default:
			return false
		}
	}
	return len(ts) > 0
}

func sortedMapKeys[V any](m map[string]V) []string {
	ks := make([]string, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	return ks
}
