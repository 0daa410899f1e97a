package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/chazu/trim/pkg/kernel"
	"github.com/chazu/trim/pkg/tessellate"
)

var meshGeometry bool

var meshCmd = &cobra.Command{
	Use:   "mesh [file.lisp]",
	Short: "Triangulate the named faces of each swept feature",
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
			if err == nil {
				var meshes []*kernel.Mesh
				meshes, err = tessellate.Tessellate(res.Sweep.Solid)
				entry["faces"] = lo.Map(meshes, func(m *kernel.Mesh, _ int) any {
					return meshReport(m)
				})
			}
			if err != nil {
				entry["error"] = err.Error()
				failed = append(failed, fmt.Errorf("%s: %w", f.Name, err))
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
				for _, fm := range m["faces"].([]any) {
					face := fm.(map[string]any)
					fmt.Fprintf(w, "  %-16s %3d vertices %3d triangles\n",
						face["face"], face["vertices"], face["triangles"])
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

func meshReport(m *kernel.Mesh) map[string]any {
	r := map[string]any{
		"face":      m.Face,
		"vertices":  int64(m.VertexCount()),
		"triangles": int64(m.TriangleCount()),
	}
	if meshGeometry {
		r["positions"] = lo.Map(m.Vertices, func(v float32, _ int) any { return float64(v) })
		r["normals"] = lo.Map(m.Normals, func(v float32, _ int) any { return float64(v) })
		r["indices"] = lo.Map(m.Indices, func(i uint32, _ int) any { return int64(i) })
	}
	return r
}

func init() {
	meshCmd.Flags().BoolVar(&meshGeometry, "geometry", false, "Include vertex, normal and index arrays")
	rootCmd.AddCommand(meshCmd)
}
