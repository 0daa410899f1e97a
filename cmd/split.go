package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var splitAt string

var splitCmd = &cobra.Command{
	Use:   "split [file.lisp]",
	Short: "Split each feature's path in two at a point",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		point, err := parseVec(splitAt)
		if err != nil {
			return err
		}
		s, err := load(args[0])
		if err != nil {
			return err
		}

		var features []any
		for _, f := range s.features {
			parts, err := f.Split(s.eval.Assembler, point)
			if err != nil {
				return err
			}
			var ps []any
			for _, p := range parts {
				var frags []any
				for _, fr := range p.Fragments {
					r := fr.Dump()
					frags = append(frags, map[string]any{
						"host":    r.Host,
						"index":   r.Index,
						"aux":     r.Aux,
						"opening": r.Opening,
						"from":    r.From,
						"to":      r.To,
					})
				}
				ps = append(ps, map[string]any{"id": p.ID, "fragments": frags})
			}
			features = append(features, map[string]any{"name": f.Name, "id": f.ID, "parts": ps})
		}
		report := map[string]any{
			"at":       vecReport(point),
			"features": features,
			"findings": findingsReport(s.findings),
		}

		return emit(cmd.OutOrStdout(), report, func(w io.Writer) {
			for _, fr := range features {
				m := fr.(map[string]any)
				parts := m["parts"].([]any)
				fmt.Fprintf(w, "%s: %d parts\n", m["name"], len(parts))
				for i, p := range parts {
					pm := p.(map[string]any)
					fmt.Fprintf(w, "  part %d (%s)\n", i, pm["id"])
					for _, fg := range pm["fragments"].([]any) {
						fm := fg.(map[string]any)
						fmt.Fprintf(w, "    %s [%.4g, %.4g]\n", fm["index"], fm["from"], fm["to"])
					}
				}
			}
			printFindings(w, s.findings)
		})
	},
}

func init() {
	splitCmd.Flags().StringVar(&splitAt, "at", "", "Split point as x,y or x,y,z")
	_ = splitCmd.MarkFlagRequired("at")
	rootCmd.AddCommand(splitCmd)
}
