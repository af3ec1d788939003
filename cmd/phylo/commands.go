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

package main

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
	"github.com/kr/pretty"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/TMALevert/triplet-distance/graph"
	"github.com/TMALevert/triplet-distance/reconstruct"
	"github.com/TMALevert/triplet-distance/schema"
	"github.com/TMALevert/triplet-distance/triplet"
)

func loadStructure(opts *options, path string) (graph.Structure, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	var s graph.Structure
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		s, err = schema.ParseYAML(data)
	} else {
		s, err = schema.Parse(string(data))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if opts.verbose {
		log.Printf("parsed %s:\n%# v", path, pretty.Formatter(s))
	}
	return s, nil
}

func loadGraph(opts *options, path string) (*graph.Graph, error) {
	s, err := loadStructure(opts, path)
	if err != nil {
		return nil, err
	}
	return opts.build(s)
}

func writeStructure(opts *options, s graph.Structure) error {
	if opts.yaml {
		data, err := schema.FormatYAML(s)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}
	_, err := fmt.Print(schema.Format(s))
	return err
}

func newTripletsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "triplets <structure-file>",
		Short: "list the triplets a structure induces, in canonical order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGraph(opts, args[0])
			if err != nil {
				return err
			}
			fmt.Print(triplet.Format(g.Triplets()))
			return nil
		},
	}
}

func newReconstructCommand(opts *options) *cobra.Command {
	var seed int64
	var labels []string
	cmd := &cobra.Command{
		Use:   "reconstruct <triplets-file>",
		Short: "rebuild a structure from a file of triplets, one per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readFile(args[0])
			if err != nil {
				return err
			}
			var ts []triplet.Triplet
			for _, line := range strings.Split(string(data), "\n") {
				line = strings.TrimSpace(line)
				if line == "" || strings.HasPrefix(line, "#") {
					continue
				}
				t, err := triplet.Parse(line)
				if err != nil {
					return err
				}
				ts = append(ts, t)
			}
			ls := labels
			if len(ls) == 0 {
				seen := map[string]bool{}
				for _, t := range ts {
					for _, l := range t.Labels() {
						if !seen[l] {
							seen[l] = true
							ls = append(ls, l)
						}
					}
				}
			}
			rngOpts := reconstruct.Options{Rand: rand.New(rand.NewSource(seed))}
			var s graph.Structure
			switch opts.kind {
			case "multifurcating":
				s, err = reconstruct.Multifurcating(cmd.Context(), ls, ts)
			case "general":
				s, err = reconstruct.General(cmd.Context(), ls, ts, rngOpts)
			case "network":
				s, err = reconstruct.LevelOneNetwork(cmd.Context(), ls, ts, rngOpts)
			default:
				return fmt.Errorf("unknown kind %q", opts.kind)
			}
			if err != nil {
				return err
			}
			return writeStructure(opts, s)
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 0, "seed for root tie-breaking")
	cmd.Flags().StringSliceVar(&labels, "reconstruct-labels", nil,
		"label universe (default: every label mentioned by a triplet)")
	return cmd
}

func newDistCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dist <structure-file> <structure-file>",
		Short: "print the distances between two structures over the same labels",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGraph(opts, args[0])
			if err != nil {
				return err
			}
			h, err := loadGraph(opts, args[1])
			if err != nil {
				return err
			}
			rows := []struct {
				name string
				fn   func(*graph.Graph) (float64, error)
			}{
				{"triplet", g.TripletDistance},
				{"robinson-foulds", g.RobinsonFouldsDistance},
				{"tripartition", g.TripartitionDistance},
				{"mu", g.MuDistance},
				{"average sign", g.AverageSignDistance},
			}
			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Distance", "Value"})
			for _, row := range rows {
				d, err := row.fn(h)
				if err != nil {
					return err
				}
				table.Append([]string{row.name, fmt.Sprintf("%.6f", d)})
			}
			table.Render()
			return nil
		},
	}
}

func newDiffCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "diff <structure-file> <structure-file>",
		Short: "show a unified diff of the canonical triplet listings of two structures",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGraph(opts, args[0])
			if err != nil {
				return err
			}
			h, err := loadGraph(opts, args[1])
			if err != nil {
				return err
			}
			want := triplet.Format(g.Triplets())
			got := triplet.Format(h.Triplets())
			edits := myers.ComputeEdits(span.URIFromPath(args[0]), want, got)
			fmt.Print(gotextdiff.ToUnified(args[0], args[1], want, edits))
			return nil
		},
	}
}

func newSPRCommand(opts *options) *cobra.Command {
	var newParent string
	var insertEdge []string
	var allowBreaking bool
	cmd := &cobra.Command{
		Use:   "spr <structure-file> <node>",
		Short: "prune a subtree and regraft it under a new parent or into an edge",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGraph(opts, args[0])
			if err != nil {
				return err
			}
			move := graph.SPRMove{
				NewParent:           newParent,
				AllowBreakingCycles: allowBreaking,
			}
			if len(insertEdge) > 0 {
				if len(insertEdge) != 2 {
					return fmt.Errorf("--insert-edge needs exactly two nodes, got %d", len(insertEdge))
				}
				move.InsertEdge = [2]string{insertEdge[0], insertEdge[1]}
			}
			s, length, err := g.PerformSPR(args[1], move)
			if err != nil {
				return err
			}
			log.Printf("move length %d", length)
			return writeStructure(opts, s)
		},
	}
	cmd.Flags().StringVar(&newParent, "new-parent", "", "existing node to regraft beneath")
	cmd.Flags().StringSliceVar(&insertEdge, "insert-edge", nil,
		"edge parent,child to splice a fresh vertex into")
	cmd.Flags().BoolVar(&allowBreaking, "allow-breaking-cycles", false,
		"permit pruning a node that lies on a reticulation cycle")
	return cmd
}
