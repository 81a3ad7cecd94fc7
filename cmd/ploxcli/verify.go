package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rfuzzo/plox/internal/engine"
	"github.com/rfuzzo/plox/internal/topo"
)

// newVerifyCmd builds the "verify" subcommand: report what a sort would
// change without ever writing anything back.
func newVerifyCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Report rule violations and whether the current order needs sorting",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVerify(cmd, flags)
		},
	}
}

func runVerify(cmd *cobra.Command, flags *globalFlags) error {
	ctx := cmd.Context()

	c, err := openCache()
	if err != nil {
		return exitError(2, fmt.Errorf("open rule cache: %w", err))
	}
	defer c.Close()

	inv, ruleset, _, parseWarnings, cleanup, err := buildInventoryAndRules(ctx, flags, c)
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
		return exitError(1, errors.New("ordering cycle detected"))
	}

	if sameOrder(result.Order, inv.Names()) {
		cmd.Println("Load order already satisfies every rule.")
	} else {
		cmd.Println("Load order does not satisfy the rule set; run `ploxcli sort` to fix it.")
	}
	return nil
}
