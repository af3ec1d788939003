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
	"fmt"

	"github.com/TMALevert/triplet-distance/graph"
	"github.com/TMALevert/triplet-distance/triplet"
)

// VerifyContainment checks that every input triplet is induced by the
// reconstructed structure, failing with ErrRoundTrip otherwise. It is the
// soundness check reconstruction promises on partial input.
func VerifyContainment(result *graph.Graph, input []triplet.Triplet) error {
	induced := make(map[string]bool)
	for _, t := range result.Triplets() {
		induced[t.Key()] = true
	}
	for _, t := range input {
		if !induced[t.Key()] {
			return fmt.Errorf("%w: %q is missing", ErrRoundTrip, t)
		}
	}
	return nil
}
