package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.memora.dev/memora/internal/app"
)

func (c *CLI) newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <artifact>",
		Short: "Materialize an artifact's outputs from the cache if present",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outcome, err := c.app.Get(cmd.Context(), args[0], c.options(cmd))
			if err != nil {
				return err
			}
			if outcome == app.Miss {
				c.exitCode = 1
				fmt.Fprintln(cmd.OutOrStdout(), "miss")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "hit")
			return nil
		},
	}
}
