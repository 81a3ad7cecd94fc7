package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rfuzzo/plox/internal/gameconfig"
)

// newListCmd builds the "list" subcommand: print the current, unmodified
// inventory in its on-disk load order.
func newListCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the currently installed plugins in load order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, flags)
		},
	}
}

func runList(cmd *cobra.Command, flags *globalFlags) error {
	ctx := cmd.Context()

	game, err := resolveGame(flags)
	if err != nil {
		return exitError(2, err)
	}
	adapter, err := gameconfig.NewAdapter(game, flags.gameRoot)
	if err != nil {
		return exitError(2, err)
	}
	names, err := adapter.ReadOrder()
	if err != nil {
		return exitError(2, fmt.Errorf("read load order: %w", err))
	}
	for _, name := range names {
		cmd.Println(name)
	}
	return nil
}
