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
	"sort"
	"strconv"
	"strings"
)

// TripletDistance returns the normalized symmetric difference of the two
// structures' triplet sets: |T(g) xor T(h)| / |T(g) union T(h)|, in [0, 1].
func (g *Graph) TripletDistance(h *Graph) (float64, error) {
	if !sameLabelSet(g.labels, h.labels) {
		return 0, ErrLabelMismatch
	}
	gs := make(map[string]bool)
	for _, t := range g.Triplets() {
		gs[t.Key()] = true
	}
	hs := make(map[string]bool)
	for _, t := range h.Triplets() {
		hs[t.Key()] = true
	}
	return setDistance(gs, hs), nil
}

// RobinsonFouldsDistance returns the normalized symmetric difference of the
// two structures' cluster sets. A node's cluster is the set of labels at or
// below it.
func (g *Graph) RobinsonFouldsDistance(h *Graph) (float64, error) {
	if !sameLabelSet(g.labels, h.labels) {
		return 0, ErrLabelMismatch
	}
	return setDistance(g.clusters(), h.clusters()), nil
}

func (g *Graph) clusters() map[string]bool {
	out := make(map[string]bool)
	for id := range g.names {
		c := g.labelsAtOrBelow(NodeID(id))
		if len(c) > 0 {
			out[strings.Join(c, "\x00")] = true
		}
	}
	return out
}

func (g *Graph) labelsAtOrBelow(id NodeID) []string {
	var c []string
	if g.labeled[g.names[id]] {
		c = append(c, g.names[id])
	}
	for d := range g.descendants(id) {
		if g.labeled[g.names[d]] {
			c = append(c, g.names[d])
		}
	}
	sort.Strings(c)
	return c
}

// TripartitionDistance returns the normalized symmetric difference of the
// per-node tripartitions: the pair (labels strictly below the node, labels
// at or below the node).
func (g *Graph) TripartitionDistance(h *Graph) (float64, error) {
	if !sameLabelSet(g.labels, h.labels) {
		return 0, ErrLabelMismatch
	}
	return setDistance(g.tripartitions(), h.tripartitions()), nil
}

func (g *Graph) tripartitions() map[string]bool {
	out := make(map[string]bool)
	for id := range g.names {
		var strict []string
		for d := range g.descendants(NodeID(id)) {
			if g.labeled[g.names[d]] {
				strict = append(strict, g.names[d])
			}
		}
		sort.Strings(strict)
		key := strings.Join(strict, "\x00") + "\x01" + strings.Join(g.labelsAtOrBelow(NodeID(id)), "\x00")
		out[key] = true
	}
	return out
}

// MuDistance returns the normalized multiset difference of the structures'
// mu vectors: per node, the number of simple directed paths from the node to
// each label, labels in sorted order.
func (g *Graph) MuDistance(h *Graph) (float64, error) {
	if !sameLabelSet(g.labels, h.labels) {
		return 0, ErrLabelMismatch
	}
	labels := append([]string(nil), g.labels...)
	sort.Strings(labels)
	gm, hm := g.muVectors(labels), h.muVectors(labels)
	var diff, union int
	for k, c := range gm {
		hc := hm[k]
		diff += abs(c - hc)
		union += max(c, hc)
	}
	for k, c := range hm {
		if _, ok := gm[k]; !ok {
			diff += c
			union += c
		}
	}
	if union == 0 {
		return 0, nil
	}
	return float64(diff) / float64(union), nil
}

// muVectors returns the multiset of per-node path-count vectors, keyed by
// the vector's textual form.
func (g *Graph) muVectors(labels []string) map[string]int {
	counts := make([][]int64, len(g.names))
	var compute func(NodeID) []int64
	compute = func(id NodeID) []int64 {
		if counts[id] != nil {
			return counts[id]
		}
		v := make([]int64, len(labels))
		counts[id] = v
		for i, l := range labels {
			if g.names[id] == l {
				v[i]++
			}
		}
		for _, c := range g.out[id] {
			cv := compute(c)
			for i := range v {
				v[i] += cv[i]
			}
		}
		return v
	}
	out := make(map[string]int)
	for id := range g.names {
		v := compute(NodeID(id))
		parts := make([]string, len(v))
		for i, n := range v {
			parts[i] = strconv.FormatInt(n, 10)
		}
		out[strings.Join(parts, ",")]++
	}
	return out
}

// AverageSignDistance compares, over all ordered triples of distinct labels
// (l1, l2, l3), the sign of d(l1,l2) - d(l1,l3) in the two structures, where
// d is the undirected shortest-path distance. Each disagreement contributes
// half the absolute sign difference; the result is the average.
func (g *Graph) AverageSignDistance(h *Graph) (float64, error) {
	if !sameLabelSet(g.labels, h.labels) {
		return 0, ErrLabelMismatch
	}
	labels := append([]string(nil), g.labels...)
	sort.Strings(labels)
	if len(labels) < 3 {
		return 0, nil
	}
	gd, err := g.labelDistances(labels)
	if err != nil {
		return 0, err
	}
	hd, err := h.labelDistances(labels)
	if err != nil {
		return 0, err
	}
	var sum float64
	var count int
	for i := range labels {
		for j := range labels {
			if j == i {
				continue
			}
			for k := range labels {
				if k == i || k == j {
					continue
				}
				sg := sign(gd[i][j] - gd[i][k])
				sh := sign(hd[i][j] - hd[i][k])
				sum += 0.5 * float64(abs(sg-sh))
				count++
			}
		}
	}
	return sum / float64(count), nil
}

// labelDistances computes the undirected shortest-path distance between
// every pair of labels by breadth-first search.
func (g *Graph) labelDistances(labels []string) ([][]int, error) {
	out := make([][]int, len(labels))
	for i, l := range labels {
		src, ok := g.ids[l]
		if !ok {
			return nil, fmt.Errorf("label %q is not a node in the graph", l)
		}
		dist := make([]int, len(g.names))
		for n := range dist {
			dist[n] = -1
		}
		dist[src] = 0
		queue := []NodeID{src}
		for len(queue) > 0 {
			n := queue[0]
			queue = queue[1:]
			for _, next := range append(append([]NodeID(nil), g.out[n]...), g.in[n]...) {
				if dist[next] == -1 {
					dist[next] = dist[n] + 1
					queue = append(queue, next)
				}
			}
		}
		out[i] = make([]int, len(labels))
		for j, m := range labels {
			out[i][j] = dist[g.ids[m]]
		}
	}
	return out, nil
}

func setDistance(a, b map[string]bool) float64 {
	diff, union := 0, 0
	for k := range a {
		union++
		if !b[k] {
			diff++
		}
	}
	for k := range b {
		if !a[k] {
			diff++
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(diff) / float64(union)
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
