package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mark3labs/swagger2code/internal/generators"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available generators",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := generators.Default()
			for _, id := range registry.List() {
				p, err := registry.Get(id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s\n", id, p.Description())
			}
			return nil
		},
	}
}
