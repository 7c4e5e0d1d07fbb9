package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Draaaaaaven/ecad/pkg/ecad"
)

func (c *CLI) connectivityCommand() *cobra.Command {
	var cellName string

	cmd := &cobra.Command{
		Use:   "connectivity <database>",
		Short: "Report islands, shorts and floating conductors",
		Long: `Group the conductors of a cell by geometric contact. Nets split into more
than one island are open; touching conductors on different nets are shorts.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, db, err := c.loadOne(ctx, args[0])
			if err != nil {
				return err
			}
			cell, err := pickCell(db, cellName)
			if err != nil {
				return err
			}
			rep, err := run(ctx, c.status, "Extracting connectivity", func() (*ecad.ConnectivityReport, error) {
				return cell.LayoutView().ConnectivityExtraction()
			})
			if err != nil {
				return err
			}
			c.printReport(rep)
			return nil
		},
	}

	cmd.Flags().StringVar(&cellName, "cell", "", "cell to check (default: the only top cell)")
	return cmd
}

func (c *CLI) printReport(rep *ecad.ConnectivityReport) {
	view := rep.View
	rows := [][]string{}
	open := 0
	for _, n := range view.NetCollection().All() {
		islands := len(rep.Islands[n.ID()])
		if islands == 0 {
			continue
		}
		status := "ok"
		if rep.Open(n.ID()) {
			status = "open"
			open++
		}
		rows = append(rows, []string{n.Name(), strconv.Itoa(islands), status})
	}
	if len(rows) > 0 {
		c.printTable([]string{"Net", "Islands", "Status"}, rows)
	}

	netName := func(o ecad.ConnObj) string {
		if n := view.Net(o.Net()); n != nil {
			return n.Name()
		}
		return "?"
	}
	for _, s := range rep.Shorts {
		c.printWarning("short between %s and %s on %s", netName(s.A), netName(s.B), layerName(view, s.Layer))
	}

	switch {
	case open == 0 && len(rep.Shorts) == 0:
		c.printSuccess("%d nets connected, no shorts", len(rows))
	default:
		c.printError("%d open nets, %d shorts", open, len(rep.Shorts))
	}
	if len(rep.Floating) > 0 {
		c.printInfo("%d conductors without a net", len(rep.Floating))
	}
}

func layerName(v *ecad.LayoutView, id ecad.LayerID) string {
	if l := v.Layer(id); l != nil {
		return l.Name()
	}
	return "layer " + strconv.Itoa(int(id))
}
