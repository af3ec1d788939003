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

package triplet

import (
	"fmt"
)

// A ParseError reports a triplet string that matches none of the eight
// shapes.
type ParseError struct {
	Input string
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid triplet %#q: %s", e.Input, e.Msg)
}

// The written form has the property that the operator pair between the three
// labels identifies the shape: labels never contain operator characters, so
// the input tokenizes into exactly five tokens, label-operator-label-
// operator-label, and the two operators are looked up in shapeOf.
var shapeOf = map[[2]byte]Shape{
	{'|', '|'}:   Fanned,
	{',', '|'}:   ResolvedLeft,
	{'|', ','}:   ResolvedRight,
	{'/', '|'}:   DownResolved,
	{'|', '\\'}:  UpResolved,
	{'/', '\\'}:  V,
	{'/', '/'}:   ChainRising,
	{'\\', '\\'}: ChainFalling,
}

func isOperator(b byte) bool {
	return b == '|' || b == ',' || b == '/' || b == '\\'
}

// Parse parses the written form of a triplet. It fails with a *ParseError
// when the operators match no shape, when a label is empty, or when the
// three labels are not pairwise distinct.
func Parse(s string) (Triplet, error) {
	var labels [3]string
	var ops [2]byte
	nLabels, nOps := 0, 0
	start := 0
	for i := 0; i <= len(s); i++ {
		if i < len(s) && !isOperator(s[i]) {
			continue
		}
		if i == start {
			return Triplet{}, &ParseError{Input: s, Msg: "empty label"}
		}
		if nLabels == 3 {
			return Triplet{}, &ParseError{Input: s, Msg: "more than three labels"}
		}
		labels[nLabels] = s[start:i]
		nLabels++
		if i < len(s) {
			if nOps == 2 {
				return Triplet{}, &ParseError{Input: s, Msg: "more than two operators"}
			}
			ops[nOps] = s[i]
			nOps++
		}
		start = i + 1
	}
	if nLabels < 3 {
		return Triplet{}, &ParseError{Input: s, Msg: "fewer than three labels"}
	}
	if labels[0] == labels[1] || labels[0] == labels[2] || labels[1] == labels[2] {
		return Triplet{}, &ParseError{Input: s, Msg: "labels are not pairwise distinct"}
	}
	shape, ok := shapeOf[ops]
	if !ok {
		return Triplet{}, &ParseError{Input: s, Msg: fmt.Sprintf("operator pair %q%q matches no shape", ops[0], ops[1])}
	}
	return make3(shape, labels[0], labels[1], labels[2]), nil
}

// MustParse is like Parse but panics on error. It simplifies tests and
// fixtures with known-good inputs.
func MustParse(s string) Triplet {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseAll parses one triplet per element, failing on the first invalid
// input.
func ParseAll(ss []string) ([]Triplet, error) {
	ts := make([]Triplet, 0, len(ss))
	for _, s := range ss {
		t, err := Parse(s)
		if err != nil {
			return nil, err
		}
		ts = append(ts, t)
	}
	return ts, nil
}
