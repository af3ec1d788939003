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
Package schema reads and writes the textual forms of rooted structures.

The plain text schema is tab-sensitive: each line names one node, each level
of indentation is an edge from the closest preceding line one level up.
Lines are trimmed on the right; empty lines and lines starting with '#' are
skipped. A node name occurring on several lines denotes the same node, which
is how reticulations are written:

	# a small level-1 network; d is the reticulation
	p
		1
			a
			2
				b
					e
				d
		3
			f
			4
				g
					h
				d
					c

Structures also round-trip through YAML, where a structure is a nested
mapping and leaves are empty mappings:

	p: {x: {}, y: {z: {}}}
*/
package schema

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/TMALevert/triplet-distance/graph"
)

// Parse reads the tab-indented text form of a structure.
func Parse(text string) (graph.Structure, error) {
	root := graph.Structure{}
	// stack[d] holds the children map for indentation depth d.
	stack := []graph.Structure{root}
	// nodes shares children maps between occurrences of the same name.
	nodes := map[string]graph.Structure{}
	for i, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimRight(line, " \t")
		if trimmed == "" || strings.HasPrefix(strings.TrimSpace(trimmed), "#") {
			continue
		}
		depth := 0
		for depth < len(trimmed) && trimmed[depth] == '\t' {
			depth++
		}
		name := strings.TrimSpace(trimmed[depth:])
		if name == "" {
			return nil, fmt.Errorf("line %d: missing node name", i+1)
		}
		if depth >= len(stack) {
			return nil, fmt.Errorf("line %d: indentation jumps by more than one level", i+1)
		}
		if depth == 0 && len(root) > 0 {
			return nil, fmt.Errorf("line %d: second root %q", i+1, name)
		}
		children, ok := nodes[name]
		if !ok {
			children = graph.Structure{}
			nodes[name] = children
		}
		stack[depth][name] = children
		stack = append(stack[:depth+1], children)
	}
	if len(root) == 0 {
		return nil, fmt.Errorf("empty structure")
	}
	return root, nil
}

// Format renders a structure in the text form, children sorted by name.
func Format(s graph.Structure) string {
	var sb strings.Builder
	var write func(s graph.Structure, depth int)
	write = func(s graph.Structure, depth int) {
		names := make([]string, 0, len(s))
		for name := range s {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			sb.WriteString(strings.Repeat("\t", depth))
			sb.WriteString(name)
			sb.WriteByte('\n')
			write(s[name], depth+1)
		}
	}
	write(s, 0)
	return sb.String()
}

// ParseYAML reads the YAML form of a structure: nested mappings with empty
// (or null) mappings as leaves.
func ParseYAML(data []byte) (graph.Structure, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing structure: %w", err)
	}
	return fromAny(raw)
}

func fromAny(raw map[string]any) (graph.Structure, error) {
	s := make(graph.Structure, len(raw))
	for name, v := range raw {
		switch cv := v.(type) {
		case nil:
			s[name] = graph.Structure{}
		case map[string]any:
			child, err := fromAny(cv)
			if err != nil {
				return nil, err
			}
			s[name] = child
		default:
			return nil, fmt.Errorf("node %q: children must be a mapping, got %T", name, v)
		}
	}
	return s, nil
}

// FormatYAML renders a structure as YAML.
func FormatYAML(s graph.Structure) ([]byte, error) {
	return yaml.Marshal(toAny(s))
}

func toAny(s graph.Structure) map[string]any {
	out := make(map[string]any, len(s))
	for name, child := range s {
		out[name] = toAny(child)
	}
	return out
}
