package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var chainsCmd = &cobra.Command{
	Use:   "chains [file.lisp]",
	Short: "Assemble the fragments of each feature into chains",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := load(args[0])
		if err != nil {
			return err
		}
		a := s.eval.Assembler

		var features []any
		for _, f := range s.features {
			chains, err := a.AssembleChains(f.Fragments)
			if err != nil {
				return fmt.Errorf("%s: %w", f.Name, err)
			}
			path, err := f.SweepPath(a, true)
			if err != nil {
				return err
			}

			var cs []any
			for _, ch := range chains {
				cs = append(cs, map[string]any{
					"tags":   strings.Join(ch.Tags(), " "),
					"start":  vecReport(ch.Start()),
					"end":    vecReport(ch.End()),
					"length": ch.Length(),
					"closed": ch.Closed(a.Epsilon()),
				})
			}
			features = append(features, map[string]any{
				"name":     f.Name,
				"id":       f.ID,
				"chains":   cs,
				"in_wall":  f.InWall(),
				"segments": int64(path.Len()),
			})
		}
		report := map[string]any{"features": features, "findings": findingsReport(s.findings)}

		return emit(cmd.OutOrStdout(), report, func(w io.Writer) {
			for _, fr := range features {
				m := fr.(map[string]any)
				fmt.Fprintf(w, "%s: %d chains, %d sweep segments\n", m["name"], len(m["chains"].([]any)), m["segments"])
				for i, c := range m["chains"].([]any) {
					cm := c.(map[string]any)
					fmt.Fprintf(w, "  chain %d [%s] length %.6g closed=%v\n", i, cm["tags"], cm["length"], cm["closed"])
				}
			}
			printFindings(w, s.findings)
		})
	},
}

func init() {
	rootCmd.AddCommand(chainsCmd)
}
