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
	"testing"

	"github.com/TMALevert/triplet-distance/graph"
	"github.com/TMALevert/triplet-distance/triplet"
)

func mustParseAll(t *testing.T, ss ...string) []triplet.Triplet {
	t.Helper()
	ts, err := triplet.ParseAll(ss)
	if err != nil {
		t.Fatal(err)
	}
	return ts
}

func buildMultifurcating(t *testing.T, s graph.Structure, labels []string) *graph.Graph {
	t.Helper()
	g, err := graph.NewMultifurcatingTree(s, labels)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestMultifurcatingFanned(t *testing.T) {
	labels := []string{"A", "B", "C"}
	s, err := Multifurcating(context.Background(), labels, mustParseAll(t, "A|B|C"))
	if err != nil {
		t.Fatalf("Multifurcating: %v", err)
	}
	got := buildMultifurcating(t, s, labels)
	want := buildMultifurcating(t, graph.Structure{"*_0": {"A": {}, "B": {}, "C": {}}}, labels)
	if !got.Equal(want) {
		t.Errorf("reconstruction mismatch:\ngot  %v\nwant root with three leaves", s)
	}
}

func TestMultifurcatingResolvedPairs(t *testing.T) {
	labels := []string{"A", "B", "C", "D"}
	s, err := Multifurcating(context.Background(), labels, mustParseAll(t, "A,B|C", "A|C,D"))
	if err != nil {
		t.Fatalf("Multifurcating: %v", err)
	}
	got := buildMultifurcating(t, s, labels)
	want := buildMultifurcating(t, graph.Structure{
		"*_0": {"*_1": {"A": {}, "B": {}}, "*_2": {"C": {}, "D": {}}},
	}, labels)
	if !got.Equal(want) {
		t.Errorf("reconstruction mismatch:\ngot %v", s)
	}
}

func TestMultifurcatingRoundTrip(t *testing.T) {
	labels := []string{"A", "B", "C", "D", "E"}
	g := buildMultifurcating(t, graph.Structure{
		"*_0": {
			"*_1": {"A": {}, "B": {}, "C": {}},
			"*_2": {"D": {}, "E": {}},
		},
	}, labels)
	s, err := Multifurcating(context.Background(), labels, g.Triplets())
	if err != nil {
		t.Fatalf("Multifurcating: %v", err)
	}
	got := buildMultifurcating(t, s, labels)
	if !got.Equal(g) {
		t.Errorf("full-input reconstruction is not isomorphic to the source:\n%v", s)
	}
}

func TestMultifurcatingPartialInput(t *testing.T) {
	labels := []string{"A", "B", "C", "D", "E"}
	g := buildMultifurcating(t, graph.Structure{
		"*_0": {
			"*_1": {"A": {}, "B": {}, "C": {}},
			"*_2": {"D": {}, "E": {}},
		},
	}, labels)
	all := g.Triplets()
	partial := all[:len(all)/2]
	s, err := Multifurcating(context.Background(), labels, partial)
	if err != nil {
		t.Fatalf("Multifurcating: %v", err)
	}
	got := buildMultifurcating(t, s, labels)
	if err := VerifyContainment(got, partial); err != nil {
		t.Errorf("partial-input containment: %v", err)
	}
}

func TestMultifurcatingRejectsGeneralShapes(t *testing.T) {
	if _, err := Multifurcating(context.Background(), []string{"A", "B", "C"}, mustParseAll(t, "A/B/C")); err == nil {
		t.Errorf("chain triplet accepted by the multifurcating engine")
	}
}

func TestMultifurcatingCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Multifurcating(ctx, []string{"A", "B", "C"}, mustParseAll(t, "A|B|C")); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
