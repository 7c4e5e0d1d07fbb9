package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Draaaaaaven/ecad/pkg/ecad"
)

func (c *CLI) mergePolygonsCommand() *cobra.Command {
	var (
		cellName     string
		nets         []string
		noPadstacks  bool
		noDielectric bool
		skipOuter    bool
		flatten      bool
		report       string
		output       string
	)

	cmd := &cobra.Command{
		Use:   "merge-polygons <database>",
		Short: "Union the shapes of each layer and net",
		Long: `Replace the shapes of a cell by the union of their outlines per layer and
net. Pad shapes of padstack instances join the union unless --no-padstacks is
given. With --flatten the cell is flattened first so instanced geometry takes
part. With --output the database is written to the given path.`,
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

			settings := ecad.DefaultLayoutPolygonMergeSettings()
			settings.IncludePadstackInst = !noPadstacks
			settings.IncludeDielectricLayer = !noDielectric
			settings.SkipTopBotDielectricLayers = skipOuter
			settings.SelectNets = nets
			settings.OutFile = report

			before := cell.LayoutView().PrimitiveCollection().Size()
			view, err := run(ctx, c.status, "Merging polygons of "+cell.Name(), func() (*ecad.LayoutView, error) {
				v := cell.LayoutView()
				if flatten {
					flat, err := db.Flatten(ctx, cell)
					if err != nil {
						return nil, err
					}
					v = flat.Clone()
					cell.SetLayoutView(v)
				}
				return v, v.MergeLayerPolygons(settings)
			})
			if err != nil {
				return err
			}

			c.printSuccess("Merged %s", cell.Name())
			counts := make(map[ecad.LayerID]int)
			for _, p := range view.PrimitiveCollection().All() {
				if g, ok := p.(*ecad.Geometry2D); ok {
					counts[g.Layer()]++
				}
			}
			rows := make([][]string, 0, len(counts))
			for i, l := range view.LayerCollection().All() {
				rows = append(rows, []string{l.Name(), l.Type().String(), strconv.Itoa(counts[ecad.LayerID(i)])})
			}
			c.printTable([]string{"Layer", "Type", "Shapes"}, rows)
			c.printKeyValue("primitives", strconv.Itoa(before)+" -> "+strconv.Itoa(view.PrimitiveCollection().Size()))
			if report != "" {
				c.printFile(report)
			}

			if output == "" {
				return nil
			}
			f, err := c.inputFormat(output)
			if err != nil {
				return err
			}
			if err := mgr.SaveDatabase(ctx, db, output, f); err != nil {
				return err
			}
			c.printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVar(&cellName, "cell", "", "cell to merge (default: the only top cell)")
	cmd.Flags().StringSliceVar(&nets, "nets", nil, "only merge these nets")
	cmd.Flags().BoolVar(&noPadstacks, "no-padstacks", false, "leave pad shapes out of the union")
	cmd.Flags().BoolVar(&noDielectric, "no-dielectric", false, "leave shapes on dielectric layers alone")
	cmd.Flags().BoolVar(&skipOuter, "skip-outer-dielectric", false, "leave the outermost dielectric layers alone")
	cmd.Flags().BoolVar(&flatten, "flatten", false, "flatten the cell before merging")
	cmd.Flags().StringVar(&report, "report", "", "write the merged contours as text")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the database with the merged cell")
	return cmd
}
