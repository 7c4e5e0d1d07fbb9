package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Draaaaaaven/ecad/pkg/errors"
	"github.com/Draaaaaaven/ecad/pkg/hierarchy"
)

func (c *CLI) hierarchyCommand() *cobra.Command {
	var (
		format    string
		output    string
		detailed  bool
		highlight []string
	)

	cmd := &cobra.Command{
		Use:   "hierarchy <database>",
		Short: "Export the cell hierarchy as DOT or SVG",
		Long: `Export the cell instancing graph. Top cells are drawn bold; --detailed adds
depths and instance counts. SVG output is rendered with Graphviz.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, db, err := c.loadOne(ctx, args[0])
			if err != nil {
				return err
			}
			g := db.Hierarchy()
			dot := hierarchy.ToDOT(g, hierarchy.DOTOptions{Detailed: detailed, Highlight: highlight})

			var data []byte
			switch format {
			case "dot":
				data = []byte(dot)
			case "svg":
				if data, err = run(ctx, c.status, "Rendering SVG", func() ([]byte, error) {
					return hierarchy.RenderSVG(ctx, dot)
				}); err != nil {
					return errors.Wrap(errors.ErrCodeInternal, err, "render hierarchy")
				}
			default:
				return errors.New(errors.ErrCodeInvalidInput, "unknown hierarchy format %q (want dot or svg)", format)
			}

			if output == "" {
				_, err := fmt.Fprint(c.out, string(data))
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return errors.Wrap(errors.ErrCodeIO, err, "write %s", output)
			}
			c.printSuccess("Exported %d cells, %d instance edges", g.CellCount(), g.EdgeCount())
			c.printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "as", "dot", "output format: dot or svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "label depths and instance counts")
	cmd.Flags().StringSliceVar(&highlight, "highlight", nil, "cells to highlight")
	return cmd
}
