package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Draaaaaaven/ecad/pkg/ecad"
)

func (c *CLI) infoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <database>",
		Short: "Summarize a database",
		Long:  `Print the units, definitions and per-cell statistics of a database archive.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := c.loadOne(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			c.printDatabase(db)
			return nil
		},
	}
}

func (c *CLI) printDatabase(db *ecad.Database) {
	units := db.CoordUnits()
	c.printTitle(db.Name())
	c.printKeyValue("unit", fmt.Sprintf("%g m", units.Unit))
	c.printKeyValue("precision", fmt.Sprintf("%g m", units.Precision))
	c.printKeyValue("cells", db.CellCollection().Size())

	var tops, maps, defs []string
	for _, t := range db.TopCells() {
		tops = append(tops, t.Name())
	}
	for _, lm := range db.LayerMapCollection().All() {
		maps = append(maps, lm.Name())
	}
	for _, d := range db.PadstackDefCollection().All() {
		defs = append(defs, d.Name())
	}
	c.printKeyValue("top cells", joinOrDash(tops))
	c.printKeyValue("layer maps", joinOrDash(maps))
	c.printKeyValue("padstacks", joinOrDash(defs))

	if db.CellCollection().Size() == 0 {
		return
	}
	rows := make([][]string, 0, db.CellCollection().Size())
	for _, cell := range db.CellCollection().All() {
		lv := cell.LayoutView()
		rows = append(rows, []string{
			cell.Name(),
			strconv.Itoa(lv.LayerCollection().Size()),
			strconv.Itoa(lv.NetCollection().Size()),
			strconv.Itoa(lv.PrimitiveCollection().Size()),
			strconv.Itoa(lv.PadstackInstCollection().Size()),
			strconv.Itoa(lv.CellInstCollection().Size()),
		})
	}
	c.printTable([]string{"Cell", "Layers", "Nets", "Primitives", "Padstacks", "Instances"}, rows)
}
