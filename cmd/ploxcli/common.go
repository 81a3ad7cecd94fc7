package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rfuzzo/plox/internal/cache"
	"github.com/rfuzzo/plox/internal/engine"
	"github.com/rfuzzo/plox/internal/gameconfig"
	"github.com/rfuzzo/plox/internal/message"
	"github.com/rfuzzo/plox/internal/plugin"
	"github.com/rfuzzo/plox/internal/rulebundle"
	"github.com/rfuzzo/plox/internal/rules"
)

// dataDir is where ploxcli keeps its rule-AST cache, mirroring the
// server's DATA_DIR default.
const dataDir = "./data"

// openCache opens the on-disk rule-AST cache every subcommand shares, so
// repeated runs over an unchanged rules directory skip re-parsing.
func openCache() (*cache.Cache, error) {
	return cache.New(cache.Config{DBPath: filepath.Join(dataDir, "rules.db")})
}

// resolveRulesDir returns the directory LoadRuleSet should scan. When
// flags.bundle is set, the bundle archive is extracted to a fresh temp
// directory and that directory is used in place of flags.rulesDir; the
// returned cleanup func removes it and must be called once the rule set
// has been loaded. Without --bundle, cleanup is a no-op.
func resolveRulesDir(ctx context.Context, flags *globalFlags) (dir string, cleanup func(), err error) {
	if flags.bundle == "" {
		return flags.rulesDir, func() {}, nil
	}

	reader := rulebundle.New(rulebundle.Config{})
	result, err := reader.ExtractRuleFiles(ctx, flags.bundle)
	if err != nil {
		return "", func() {}, fmt.Errorf("extract rule bundle: %w", err)
	}
	return result.OutputDir, func() { _ = reader.Cleanup(result.OutputDir) }, nil
}

// buildInventoryAndRules performs the steps every subcommand needs: build
// the game adapter, read the current inventory, resolve the rules
// directory (extracting --bundle first if set), and load the rule set. A
// partially-failed rule load is not fatal: ruleset carries whatever
// parsed, and the returned parseWarnings carries the per-file diagnostics
// for the caller to print as PARSE-ERROR lines, mirroring the HTTP API's
// Deps.loadRulesAndInventory. The returned cleanup must be deferred by the
// caller regardless of err.
func buildInventoryAndRules(ctx context.Context, flags *globalFlags, c *cache.Cache) (inv *plugin.Inventory, ruleset []rules.Rule, adapter gameconfig.Adapter, parseWarnings []string, cleanup func(), err error) {
	cleanup = func() {}

	game, err := resolveGame(flags)
	if err != nil {
		return nil, nil, nil, nil, cleanup, err
	}

	adapter, err = gameconfig.NewAdapter(game, flags.gameRoot)
	if err != nil {
		return nil, nil, nil, nil, cleanup, err
	}

	inv, err = engine.BuildInventory(ctx, adapter, flags.gameRoot)
	if err != nil {
		return nil, nil, nil, nil, cleanup, fmt.Errorf("build inventory: %w", err)
	}

	rulesDir, cleanup, err := resolveRulesDir(ctx, flags)
	if err != nil {
		return nil, nil, nil, nil, cleanup, err
	}

	var loadErr error
	ruleset, loadErr = engine.LoadRuleSet(ctx, rulesDir, c)
	if loadErr != nil {
		if ruleset == nil {
			return nil, nil, nil, nil, cleanup, fmt.Errorf("load rules: %w", loadErr)
		}
		if merr, ok := loadErr.(interface{ WrappedErrors() []error }); ok {
			for _, e := range merr.WrappedErrors() {
				parseWarnings = append(parseWarnings, e.Error())
			}
		} else {
			parseWarnings = append(parseWarnings, loadErr.Error())
		}
	}

	return inv, ruleset, adapter, parseWarnings, cleanup, nil
}

func printMessages(cmd *cobra.Command, msgs *message.Set) {
	for _, m := range msgs.Messages() {
		cmd.Printf("[%s] %s: %s\n", m.Kind, m.Source, m.Text)
	}
}

// printParseWarnings prints each rule-file parse diagnostic as a
// PARSE-ERROR line, the same message kind the HTTP API's ParseWarnings
// field carries.
func printParseWarnings(cmd *cobra.Command, warnings []string) {
	for _, w := range warnings {
		cmd.Printf("[%s] %s\n", message.KindParseError, w)
	}
}

func sameOrder(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
