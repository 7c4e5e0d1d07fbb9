package cli

import (
	"github.com/spf13/cobra"

	"github.com/Draaaaaaven/ecad/pkg/ecad"
)

func (c *CLI) flattenCommand() *cobra.Command {
	var (
		cellName string
		output   string
		depth    int
		threads  int
	)

	cmd := &cobra.Command{
		Use:   "flatten <database>",
		Short: "Flatten a cell hierarchy",
		Long: `Flatten a cell and everything it instantiates into a single level.

Without --depth the hierarchy is flattened bottom-up in parallel. With
--output the flattened layout replaces the cell's layout and the database is
written to the given path.`,
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
			if threads > 0 {
				db.SetThreads(threads)
			}

			prog := newProgress(c.Logger)
			flat, err := run(ctx, c.status, "Flattening "+cell.Name(), func() (*ecad.LayoutView, error) {
				if depth > 0 {
					return cell.LayoutView().Flatten(ecad.FlattenOptions{MaxDepth: depth})
				}
				return db.Flatten(ctx, cell)
			})
			if err != nil {
				return err
			}
			prog.done("Flattened "+cell.Name(), "threads", db.Threads())

			c.printSuccess("Flattened %s", cell.Name())
			c.printKeyValue("primitives", flat.PrimitiveCollection().Size())
			c.printKeyValue("padstacks", flat.PadstackInstCollection().Size())
			c.printKeyValue("instances", flat.CellInstCollection().Size())
			c.printKeyValue("nets", flat.NetCollection().Size())

			if output == "" {
				return nil
			}
			cell.SetLayoutView(flat)
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

	cmd.Flags().StringVar(&cellName, "cell", "", "cell to flatten (default: the only top cell)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the database with the flattened cell")
	cmd.Flags().IntVar(&depth, "depth", 0, "flatten at most this many instance levels (0: all)")
	cmd.Flags().IntVar(&threads, "threads", 0, "parallel workers (default: from config)")
	return cmd
}
