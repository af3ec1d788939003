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
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/TMALevert/triplet-distance/graph"
)

// network1 has labeled source p, reticulation below the arcs holding
// {1, a} and {g, h}, and cycle sink subtree d -> c.
func network1(t *testing.T, withSource bool) *graph.Graph {
	t.Helper()
	labels := []string{"a", "b", "c", "e", "d", "f", "g", "h", "1"}
	if withSource {
		labels = append(labels, "p")
	}
	g, err := graph.NewLevelOneNetwork(graph.Structure{
		"p": {
			"1": {"a": {}, "2": {"b": {"e": {}}, "d": {}}},
			"3": {"f": {}, "4": {"g": {"h": {}}, "d": {"c": {}}}},
		},
	}, labels)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

// network2 moves the reticulation to b, with cycle sink subtree b -> e.
func network2(t *testing.T, withSource bool) *graph.Graph {
	t.Helper()
	labels := []string{"a", "b", "c", "e", "d", "f", "g", "h", "1"}
	if withSource {
		labels = append(labels, "p")
	}
	g, err := graph.NewLevelOneNetwork(graph.Structure{
		"p": {
			"1": {"a": {}, "2": {"b": {"e": {}}, "d": {"c": {}}}},
			"3": {"f": {}, "4": {"g": {"h": {}}, "b": {"e": {}}}},
		},
	}, labels)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func newTestNetEngine(t *testing.T, g *graph.Graph) *netEngine {
	t.Helper()
	ls := dedupeLabels(g.Labels())
	return newNetEngine(context.Background(), rand.New(rand.NewSource(1)),
		ls, restrict(g.Triplets(), newSet(ls...)), nil, nil, &counter{})
}

func TestNetworkFindPossibleRoots(t *testing.T) {
	for name, g := range map[string]*graph.Graph{
		"network1": network1(t, true),
		"network2": network2(t, true),
	} {
		e := newTestNetEngine(t, g)
		if diff := cmp.Diff([]string{"p"}, e.findPossibleRoots()); diff != "" {
			t.Errorf("%s: findPossibleRoots mismatch (-want +got):\n%s", name, diff)
		}
	}
}

func TestNetworkFindPossibleRootsNoSource(t *testing.T) {
	for name, g := range map[string]*graph.Graph{
		"network1": network1(t, false),
		"network2": network2(t, false),
	} {
		e := newTestNetEngine(t, g)
		if got := e.findPossibleRoots(); len(got) != 0 {
			t.Errorf("%s: findPossibleRoots = %v, want none", name, got)
		}
	}
}

func TestNetworkCycleIsOneBranch(t *testing.T) {
	e := newTestNetEngine(t, network1(t, true))
	if got := e.divideInBranches("p"); len(got) != 1 {
		t.Errorf("network1: divideInBranches(p) produced %d branches, want 1", len(got))
	}
	e = newTestNetEngine(t, network1(t, false))
	if got := e.divideInBranches(e.counter.next()); len(got) != 1 {
		t.Errorf("network1 without source: divideInBranches produced %d branches, want 1", len(got))
	}
}

func TestNetworkFindSinkOfCycle(t *testing.T) {
	tests := []struct {
		name   string
		g      *graph.Graph
		source string
		want   [][]string
	}{
		{"network1", network1(t, true), "p", [][]string{{"c", "d"}}},
		{"network2", network2(t, true), "p", [][]string{{"b", "e"}}},
		{"network1 no source", network1(t, false), "*_0", [][]string{{"c", "d"}}},
		{"network2 no source", network2(t, false), "*_0", [][]string{{"b", "e"}}},
	}
	for _, test := range tests {
		e := newTestNetEngine(t, test.g)
		got := branchSets(e.findSinkOfCycle(test.source))
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("%s: findSinkOfCycle mismatch (-want +got):\n%s", test.name, diff)
		}
	}
}

func TestNetworkResolveCycle(t *testing.T) {
	e := newTestNetEngine(t, network1(t, true))
	rest := e.labelSet.clone()
	delete(rest, "p")
	arcs, sink, internal := e.resolveCycle(newSet("c", "d"), rest, "p")
	wantArcs := map[string]bool{
		"f": true, "1\x00a": true, "g\x00h": true, "b\x00e": true,
	}
	for _, arc := range arcs {
		if !wantArcs[arc.key()] {
			t.Errorf("unexpected cycle arc %v", arc.sorted())
		}
	}
	if diff := cmp.Diff([]string{"c", "d"}, sink.sorted()); diff != "" {
		t.Errorf("sink mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"1", "d"}, internal.sorted()); diff != "" {
		t.Errorf("internal cycle vertices mismatch (-want +got):\n%s", diff)
	}
}

func TestNetworkResolveCycle2(t *testing.T) {
	e := newTestNetEngine(t, network2(t, true))
	rest := e.labelSet.clone()
	delete(rest, "p")
	arcs, sink, internal := e.resolveCycle(newSet("b", "e"), rest, "p")
	wantArcs := map[string]bool{
		"f": true, "1\x00a": true, "g\x00h": true, "c\x00d": true,
	}
	for _, arc := range arcs {
		if !wantArcs[arc.key()] {
			t.Errorf("unexpected cycle arc %v", arc.sorted())
		}
	}
	if diff := cmp.Diff([]string{"b", "e"}, sink.sorted()); diff != "" {
		t.Errorf("sink mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"1", "b"}, internal.sorted()); diff != "" {
		t.Errorf("internal cycle vertices mismatch (-want +got):\n%s", diff)
	}
}

func TestNetworkReconstruct(t *testing.T) {
	for name, g := range map[string]*graph.Graph{
		"network1":           network1(t, true),
		"network2":           network2(t, true),
		"network1 no source": network1(t, false),
		"network2 no source": network2(t, false),
	} {
		s, err := LevelOneNetwork(context.Background(), g.Labels(), g.Triplets(), Options{Rand: rand.New(rand.NewSource(5))})
		if err != nil {
			t.Errorf("%s: LevelOneNetwork: %v", name, err)
			continue
		}
		got, err := graph.NewLevelOneNetwork(s, g.Labels())
		if err != nil {
			t.Errorf("%s: rebuilding result: %v\n%v", name, err, s)
			continue
		}
		if !got.Equal(g) {
			t.Errorf("%s: reconstruction is not isomorphic to the source:\n%v", name, s)
		}
		if err := VerifyContainment(got, g.Triplets()); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}

func TestNetworkReconstructTreeInput(t *testing.T) {
	// A triplet set without any cycle evidence reconstructs as a tree.
	labels := []string{"A", "B", "C", "D"}
	s, err := LevelOneNetwork(context.Background(), labels, mustParseAll(t, "A,B|C", "A,B|D", "C,D|A", "C,D|B"), Options{})
	if err != nil {
		t.Fatalf("LevelOneNetwork: %v", err)
	}
	got, err := graph.NewLevelOneNetwork(s, labels)
	if err != nil {
		t.Fatalf("rebuilding result: %v", err)
	}
	want, err := graph.NewLevelOneNetwork(graph.Structure{
		"*_0": {"*_1": {"A": {}, "B": {}}, "*_2": {"C": {}, "D": {}}},
	}, labels)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(want) {
		t.Errorf("reconstruction mismatch:\n%v", s)
	}
}

func TestNetworkSNSets(t *testing.T) {
	e := newTestNetEngine(t, network1(t, true))
	var got [][]string
	for _, s := range e.maximalSN {
		got = append(got, s.sorted())
	}
	// The sink SN-set {c, d} must be present among the maximal SN-sets.
	found := false
	for _, s := range got {
		if len(s) == 2 && s[0] == "c" && s[1] == "d" {
			found = true
		}
	}
	if !found {
		t.Errorf("maximal SN-sets %v do not include {c, d}", got)
	}
}

func TestNetworkCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := network1(t, true)
	_, err := LevelOneNetwork(ctx, g.Labels(), g.Triplets(), Options{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
