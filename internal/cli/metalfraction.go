package cli

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Draaaaaaven/ecad/pkg/ecad"
	"github.com/Draaaaaaven/ecad/pkg/errors"
)

func (c *CLI) metalFractionCommand() *cobra.Command {
	var (
		cellName string
		grid     string
		ext      []float64
		nets     []string
		noMerge  bool
		output   string
	)

	cmd := &cobra.Command{
		Use:   "metal-fraction <database>",
		Short: "Map conductor density over a grid",
		Long: `Rasterize the conductors of every stackup layer over the cell boundary and
report the covered fraction of each grid cell. The boundary can be extended
with --ext left,bottom,right,top in user units.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			mgr, db, err := c.loadOne(ctx, args[0])
			if err != nil {
				return err
			}
			cell, err := pickCell(db, cellName)
			if err != nil {
				return err
			}

			cfg := mgr.Config().MetalFraction
			settings := ecad.DefaultMetalFractionMappingSettings()
			settings.Grid = cfg.Grid
			settings.MergeGeomBeforeMapping = cfg.MergeGeometry && !noMerge
			settings.SelectNets = nets
			settings.OutFile = output
			if grid != "" {
				if settings.Grid, err = parseGrid(grid); err != nil {
					return err
				}
			}
			if len(ext) > 0 {
				if len(ext) != 4 {
					return errors.New(errors.ErrCodeInvalidInput, "--ext takes four values, got %d", len(ext))
				}
				settings.RegionExtLeft, settings.RegionExtBot = ext[0], ext[1]
				settings.RegionExtRight, settings.RegionExtTop = ext[2], ext[3]
			}

			mf, err := run(ctx, c.status, "Mapping metal fraction", func() (*ecad.MetalFraction, error) {
				return cell.LayoutView().GenerateMetalFractionMapping(settings)
			})
			if err != nil {
				return err
			}

			c.printSuccess("Mapped %s on a %dx%d grid", cell.Name(), mf.NX, mf.NY)
			rows := make([][]string, 0, len(mf.Layers))
			for _, l := range mf.Layers {
				lo, hi, mean := stats(l.Values)
				rows = append(rows, []string{l.Name, fmt.Sprintf("%.3f", lo), fmt.Sprintf("%.3f", mean), fmt.Sprintf("%.3f", hi)})
			}
			c.printTable([]string{"Layer", "Min", "Mean", "Max"}, rows)
			if output != "" {
				c.printFile(output)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cellName, "cell", "", "cell to map (default: the only top cell)")
	cmd.Flags().StringVar(&grid, "grid", "", "grid size as NXxNY, e.g. 8x4 (default: from config)")
	cmd.Flags().Float64SliceVar(&ext, "ext", nil, "region extension left,bottom,right,top in user units")
	cmd.Flags().StringSliceVar(&nets, "nets", nil, "only map these nets")
	cmd.Flags().BoolVar(&noMerge, "no-merge", false, "count overlapping shapes separately")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the full grid report")
	return cmd
}

// parseGrid parses "NXxNY".
func parseGrid(s string) ([2]int, error) {
	x, y, ok := strings.Cut(strings.ToLower(s), "x")
	nx, errX := strconv.Atoi(x)
	ny, errY := strconv.Atoi(y)
	if !ok || errX != nil || errY != nil {
		return [2]int{}, errors.New(errors.ErrCodeInvalidInput, "grid %q is not of the form NXxNY", s)
	}
	return [2]int{nx, ny}, nil
}

func stats(values []float64) (lo, hi, mean float64) {
	if len(values) == 0 {
		return 0, 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return slices.Min(values), slices.Max(values), sum / float64(len(values))
}
