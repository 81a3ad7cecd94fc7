package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rfuzzo/plox/internal/config"
	"github.com/rfuzzo/plox/internal/engine"
	"github.com/rfuzzo/plox/internal/topo"
)

// newSortCmd builds the "sort" subcommand: compute a new load order and,
// unless --dry-run is set, write it back via the resolved game adapter.
func newSortCmd(flags *globalFlags) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "sort",
		Short: "Sort the installed plugins according to the rule set",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSort(cmd, flags, dryRun)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "compute the new order without writing it back")
	return cmd
}

func runSort(cmd *cobra.Command, flags *globalFlags, dryRun bool) error {
	ctx := cmd.Context()

	if flags.configPath != "" {
		if err := config.LoadEnvFile(flags.configPath); err != nil {
			return exitError(2, fmt.Errorf("load config: %w", err))
		}
	}

	c, err := openCache()
	if err != nil {
		return exitError(2, fmt.Errorf("open rule cache: %w", err))
	}
	defer c.Close()

	inv, ruleset, adapter, parseWarnings, cleanup, err := buildInventoryAndRules(ctx, flags, c)
	defer cleanup()
	if err != nil {
		return exitError(2, err)
	}
	printParseWarnings(cmd, parseWarnings)

	sorter := engine.SorterStable
	if flags.unstable {
		sorter = engine.SorterUnstable
	}

	result, runErr := engine.Run(ruleset, inv, sorter)
	var cycleErr *topo.CycleError
	if runErr != nil && !errors.As(runErr, &cycleErr) {
		return exitError(2, runErr)
	}

	printMessages(cmd, result.Messages)

	if result.Cycles != nil {
		cmd.Println(result.Cycles.Text())
		return exitError(1, errors.New("ordering cycle: sort aborted"))
	}

	if sameOrder(result.Order, inv.Names()) {
		cmd.Println("Already sorted.")
		return nil
	}

	for _, name := range result.Order {
		cmd.Println(name)
	}

	if dryRun {
		return nil
	}
	if err := adapter.WriteOrder(result.Order); err != nil {
		return exitError(2, fmt.Errorf("write load order: %w", err))
	}
	return nil
}
