package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newInsertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "insert <artifact>",
		Short: "Insert an artifact's current outputs into the cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Insert(cmd.Context(), args[0], c.options(cmd)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "inserted")
			return nil
		},
	}
}
