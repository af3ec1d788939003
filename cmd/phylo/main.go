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

// Phylo works with rooted phylogenetic structures and their triplets: it
// enumerates the triplets a structure induces, rebuilds structures from
// triplet sets, compares structures and applies SPR moves.
//
// Structure files use the indented text schema, or YAML with a .yaml/.yml
// extension. Triplet files carry one triplet per line.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/TMALevert/triplet-distance/graph"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("phylo: ")
	if err := newRootCommand().Execute(); err != nil {
		log.Fatal(err)
	}
}

type options struct {
	kind    string
	labels  []string
	yaml    bool
	verbose bool
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "phylo",
		Short:         "work with rooted phylogenetic structures and triplets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	cmd.PersistentFlags().StringVar(&opts.kind, "kind", "network",
		"structure kind: multifurcating, general or network")
	cmd.PersistentFlags().StringSliceVar(&opts.labels, "labels", nil,
		"labeled nodes (default: every node not named *_k)")
	cmd.PersistentFlags().BoolVar(&opts.yaml, "yaml", false,
		"write structures as YAML instead of the text schema")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false,
		"log parsed structures to stderr")
	cmd.AddCommand(
		newTripletsCommand(opts),
		newReconstructCommand(opts),
		newDistCommand(opts),
		newDiffCommand(opts),
		newSPRCommand(opts),
	)
	return cmd
}

func (o *options) build(s graph.Structure) (*graph.Graph, error) {
	labels := o.labels
	if len(labels) == 0 {
		labels = defaultLabels(s)
	}
	switch o.kind {
	case "multifurcating":
		return graph.NewMultifurcatingTree(s, labels)
	case "general":
		return graph.NewGeneralTree(s, labels)
	case "network":
		return graph.NewLevelOneNetwork(s, labels)
	}
	return nil, fmt.Errorf("unknown kind %q", o.kind)
}

// defaultLabels labels every node except the synthetic *_k ones.
func defaultLabels(s graph.Structure) []string {
	seen := map[string]bool{}
	var walk func(graph.Structure)
	walk = func(s graph.Structure) {
		for name, children := range s {
			if len(name) == 0 || name[0] != '*' {
				seen[name] = true
			}
			walk(children)
		}
	}
	walk(s)
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	return out
}

func readFile(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
