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
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rogpeppe/go-internal/txtar"

	"github.com/TMALevert/triplet-distance/graph"
	"github.com/TMALevert/triplet-distance/schema"
	"github.com/TMALevert/triplet-distance/triplet"
)

func newTestGeneralEngine(t *testing.T, labels []string, triplets []string) *generalEngine {
	t.Helper()
	ts := mustParseAll(t, triplets...)
	ls := dedupeLabels(labels)
	return &generalEngine{base: base{
		ctx:            context.Background(),
		rng:            rand.New(rand.NewSource(1)),
		labels:         ls,
		labelSet:       newSet(ls...),
		ts:             ts,
		rel:            deriveRelations(ls, ts),
		counter:        &counter{},
		crossPairGuard: true,
	}}
}

func branchSets(branches []set) [][]string {
	out := make([][]string, len(branches))
	for i, b := range branches {
		out[i] = b.sorted()
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) == 0 || len(out[j]) == 0 {
			return len(out[i]) < len(out[j])
		}
		return out[i][0] < out[j][0]
	})
	return out
}

func TestDivideInBranches(t *testing.T) {
	tests := []struct {
		triplets []string
		labels   []string
		want     [][]string
	}{
		{[]string{"A,B|C"}, []string{"A", "B", "C"}, [][]string{{"A", "B"}, {"C"}}},
		{[]string{"A,B|C", "A|C,D"}, []string{"A", "B", "C", "D"}, [][]string{{"A", "B"}, {"C", "D"}}},
		{[]string{"A,B|C", "A|C,D", "A|C|D"}, []string{"A", "B", "C", "D"}, [][]string{{"A", "B", "C", "D"}}},
		{[]string{"A,B|C", "A|C,D", "A|C|D", "A|B,C"}, []string{"A", "B", "C", "D"}, [][]string{{"A", "B", "C", "D"}}},
		{[]string{"A|B,C", "C,B|D", "A|C|D"}, []string{"A", "B", "C", "D"}, [][]string{{"A"}, {"B", "C"}, {"D"}}},
		{[]string{"A|B,C", "C,B|D"}, []string{"A", "B", "C", "D"}, [][]string{{"A"}, {"B", "C"}, {"D"}}},
		{[]string{"A|B,C", "C,B|D", "A|C|D", "A|B,D"}, []string{"A", "B", "C", "D"}, [][]string{{"A", "B", "C", "D"}}},
		{[]string{"A|B,C", "C,B|D", "A|C|D"}, []string{"A", "B", "C", "D", "E"}, [][]string{{"A"}, {"B", "C"}, {"D"}, {"E"}}},
		{[]string{"A|B|C", "C,D|E", "A,E|B"}, []string{"A", "B", "C", "D", "E"}, [][]string{{"A", "E"}, {"B"}, {"C", "D"}}},
		{
			[]string{"A|B|C", "C,D|E", "A,E|B", "A,E|C", "A,E|D", "D,C|A", "D,C|B", "A|D|B", "E|D|B", "E|C|B"},
			[]string{"A", "B", "C", "D", "E"},
			[][]string{{"A", "E"}, {"B"}, {"C", "D"}},
		},
		{nil, []string{"A", "B", "C"}, [][]string{{"A"}, {"B"}, {"C"}}},
	}
	for _, test := range tests {
		e := newTestGeneralEngine(t, test.labels, test.triplets)
		got := branchSets(e.divideInBranches(e.counter.next()))
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("divideInBranches(%v over %v) mismatch (-want +got):\n%s", test.triplets, test.labels, diff)
		}
	}
}

func TestDivideInBranchesConflicting(t *testing.T) {
	tests := [][]string{
		{"A,B|C", "A|B|C"},
		{"A,B|C", "A|B|C", "A|B,C"},
		{"C,A|B", "A|B|C"},
	}
	for _, triplets := range tests {
		e := newTestGeneralEngine(t, []string{"A", "B", "C"}, triplets)
		if got := e.divideInBranches(e.counter.next()); len(got) != 1 {
			t.Errorf("divideInBranches(%v) produced %d branches, want 1", triplets, len(got))
		}
	}
	e := newTestGeneralEngine(t, []string{"A", "B", "C", "E"}, []string{"A,B|C", "B|C,E", "E|A|B"})
	if got := e.divideInBranches(e.counter.next()); len(got) != 1 {
		t.Errorf("divideInBranches produced %d branches, want 1", len(got))
	}
}

func TestGeneralContradiction(t *testing.T) {
	_, err := General(context.Background(), []string{"A", "B", "C"}, mustParseAll(t, "A,B|C", "A|B|C"), Options{})
	if !errors.Is(err, ErrContradiction) {
		t.Errorf("error = %v, want ErrContradiction", err)
	}
}

func TestGeneralRoundTrip(t *testing.T) {
	labels := []string{"A", "B", "C", "D", "E", "F"}
	g, err := graph.NewGeneralTree(graph.Structure{
		"A": {
			"B":   {"C": {}, "D": {}},
			"*_0": {"E": {}, "F": {}},
		},
	}, labels)
	if err != nil {
		t.Fatal(err)
	}
	s, err := General(context.Background(), labels, g.Triplets(), Options{})
	if err != nil {
		t.Fatalf("General: %v", err)
	}
	got, err := graph.NewGeneralTree(s, labels)
	if err != nil {
		t.Fatalf("rebuilding result: %v", err)
	}
	if !got.Equal(g) {
		t.Errorf("full-input reconstruction is not isomorphic to the source:\n%v", s)
	}
	if err := VerifyContainment(got, g.Triplets()); err != nil {
		t.Error(err)
	}
}

func TestGeneralPartialInput(t *testing.T) {
	labels := []string{"A", "B", "C", "D", "E", "F"}
	g, err := graph.NewGeneralTree(graph.Structure{
		"A": {
			"B":   {"C": {}, "D": {}},
			"*_0": {"E": {}, "F": {}},
		},
	}, labels)
	if err != nil {
		t.Fatal(err)
	}
	all := g.Triplets()
	rng := rand.New(rand.NewSource(7))
	var partial []triplet.Triplet
	for _, tr := range all {
		if rng.Intn(2) == 0 {
			partial = append(partial, tr)
		}
	}
	s, err := General(context.Background(), labels, partial, Options{Rand: rand.New(rand.NewSource(3))})
	if err != nil {
		t.Fatalf("General on partial input: %v", err)
	}
	got, err := graph.NewGeneralTree(s, labels)
	if err != nil {
		t.Fatalf("rebuilding result: %v", err)
	}
	if err := VerifyContainment(got, partial); err != nil {
		t.Error(err)
	}
}

func TestGeneralDeterministicUnderSeed(t *testing.T) {
	labels := []string{"A", "B", "C", "D", "E", "F"}
	g, err := graph.NewGeneralTree(graph.Structure{
		"A": {
			"B":   {"C": {}, "D": {}},
			"*_0": {"E": {}, "F": {}},
		},
	}, labels)
	if err != nil {
		t.Fatal(err)
	}
	s1, err := General(context.Background(), labels, g.Triplets(), Options{Rand: rand.New(rand.NewSource(42))})
	if err != nil {
		t.Fatal(err)
	}
	s2, err := General(context.Background(), labels, g.Triplets(), Options{Rand: rand.New(rand.NewSource(42))})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(s1, s2); diff != "" {
		t.Errorf("same seed produced different structures (-first +second):\n%s", diff)
	}
}

func TestGeneralCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := General(ctx, []string{"A", "B", "C"}, mustParseAll(t, "A,B|C"), Options{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

// TestGeneralFixtures round-trips every structure in the txtar archive:
// enumerate the triplets, rebuild from them, compare up to isomorphism.
func TestGeneralFixtures(t *testing.T) {
	ar, err := txtar.ParseFile("testdata/general.txtar")
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range ar.Files {
		t.Run(f.Name, func(t *testing.T) {
			s, err := schema.Parse(string(f.Data))
			if err != nil {
				t.Fatalf("schema.Parse: %v", err)
			}
			g, err := graph.NewGeneralTree(s, labeledNodes(s))
			if err != nil {
				t.Fatalf("NewGeneralTree: %v", err)
			}
			out, err := General(context.Background(), g.Labels(), g.Triplets(), Options{})
			if err != nil {
				t.Fatalf("General: %v", err)
			}
			got, err := graph.NewGeneralTree(out, g.Labels())
			if err != nil {
				t.Fatalf("rebuilding result: %v", err)
			}
			if !got.Equal(g) {
				t.Errorf("reconstruction is not isomorphic to the fixture:\n%v", out)
			}
		})
	}
}

// labeledNodes treats every node not named *_k as labeled.
func labeledNodes(s graph.Structure) []string {
	seen := set{}
	var walk func(graph.Structure)
	walk = func(s graph.Structure) {
		for name, children := range s {
			if len(name) < 2 || name[0] != '*' {
				seen[name] = true
			}
			walk(children)
		}
	}
	walk(s)
	return seen.sorted()
}
