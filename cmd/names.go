package cmd

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var showBounds bool

var namesCmd = &cobra.Command{
	Use:   "names [file.lisp]",
	Short: "Sweep each feature and print its topology names",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := load(args[0])
		if err != nil {
			return err
		}

		var features []any
		var failed []error
		for _, f := range s.features {
			entry := map[string]any{"name": f.Name, "id": f.ID}
			features = append(features, entry)

			res, err := s.eval.Evaluate(f)
			if err != nil {
				entry["error"] = err.Error()
				failed = append(failed, err)
				continue
			}
			snap := res.Snapshot
			entry["faces"] = sortedKeys(snap.Faces)
			entry["edges"] = sortedKeys(snap.Edges)
			entry["coedges"] = sortedKeys(snap.Coedges)
			entry["boundary_edges"] = int64(res.Sweep.Solid.Tags.BoundaryEdges.GetCardinality())

			if showBounds {
				env, err := s.eval.Envelope(f)
				if err != nil {
					entry["bounds_error"] = err.Error()
				} else {
					bmin, bmax := env.BoundingBox()
					entry["bounds"] = []any{lo.ToAnySlice(bmin[:]), lo.ToAnySlice(bmax[:])}
				}
			}
		}
		report := map[string]any{"features": features, "findings": findingsReport(s.findings)}

		err = emit(cmd.OutOrStdout(), report, func(w io.Writer) {
			for _, fr := range features {
				m := fr.(map[string]any)
				fmt.Fprintf(w, "%s (%s)\n", m["name"], m["id"])
				if e, ok := m["error"]; ok {
					fmt.Fprintf(w, "  error: %s\n", e)
					continue
				}
				for _, kind := range []string{"faces", "edges", "coedges"} {
					names := m[kind].([]any)
					fmt.Fprintf(w, "  %s (%d)\n", kind, len(names))
					for _, n := range names {
						fmt.Fprintf(w, "    %s\n", n)
					}
				}
				if b, ok := m["bounds"]; ok {
					fmt.Fprintf(w, "  bounds %v\n", b)
				}
			}
			printFindings(w, s.findings)
		})
		if err != nil {
			return err
		}
		return errors.Join(failed...)
	},
}

func sortedKeys[V any](m map[string]V) []any {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return lo.ToAnySlice(keys)
}

func init() {
	namesCmd.Flags().BoolVar(&showBounds, "bounds", false, "Include the swept volume bounding box")
	rootCmd.AddCommand(namesCmd)
}
