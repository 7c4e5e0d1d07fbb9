package cli

import (
	"github.com/spf13/cobra"

	"github.com/Draaaaaaven/ecad/pkg/archive"
)

func (c *CLI) convertCommand() *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "convert <input> <output>",
		Short: "Rewrite an archive in another format",
		Long: `Load a database archive and save it again. The output format comes
from --to, or from the output extension (.xml is XML, anything else BIN).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			mgr, db, err := c.loadOne(ctx, args[0])
			if err != nil {
				return err
			}
			f := archive.FormatFromPath(args[1])
			if to != "" {
				if f, err = archive.ParseFormat(to); err != nil {
					return err
				}
			}
			if err := mgr.SaveDatabase(ctx, db, args[1], f); err != nil {
				return err
			}
			c.printSuccess("Converted %s to %s", args[0], f)
			c.printFile(args[1])
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "output format: bin or xml")
	return cmd
}
