package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/rfuzzo/plox/internal/cache"
	"github.com/rfuzzo/plox/internal/config"
	"github.com/rfuzzo/plox/internal/engine"
	"github.com/rfuzzo/plox/internal/gameconfig"
	"github.com/rfuzzo/plox/internal/plugin"
	"github.com/rfuzzo/plox/internal/rules"
	"github.com/rfuzzo/plox/internal/topo"
)

// runRequest is the JSON body accepted by /api/sort, /api/verify, and the
// query parameters accepted by /api/list. Every field is optional and
// falls back to the server's configured defaults.
type runRequest struct {
	Game     string `json:"game,omitempty"`
	GameRoot string `json:"gameRoot,omitempty"`
	RulesDir string `json:"rulesDir,omitempty"`
	Sorter   string `json:"sorter,omitempty"`
}

// Deps are the shared dependencies every handler needs: the server's
// default configuration and the rule-AST cache.
type Deps struct {
	Defaults *config.Config
	Cache    *cache.Cache
}

// resolved is a runRequest with every field defaulted and validated.
type resolved struct {
	game     gameconfig.Game
	gameRoot string
	rulesDir string
	sorter   engine.Sorter
}

func (d Deps) resolve(req runRequest) (resolved, error) {
	game := gameconfig.Game(req.Game)
	if game == "" {
		game = d.Defaults.Game
	}
	gameRoot := req.GameRoot
	if gameRoot == "" {
		gameRoot = d.Defaults.GameRoot
	}
	rulesDir := req.RulesDir
	if rulesDir == "" {
		rulesDir = d.Defaults.RulesDir
	}
	sorterName := req.Sorter
	if sorterName == "" {
		sorterName = d.Defaults.Sorter
	}

	var sorter engine.Sorter
	switch sorterName {
	case "unstable":
		sorter = engine.SorterUnstable
	case "stable", "":
		sorter = engine.SorterStable
	default:
		return resolved{}, fmt.Errorf("unsupported sorter %q", sorterName)
	}

	switch game {
	case gameconfig.GameMorrowind, gameconfig.GameOpenMW, gameconfig.GameCyberpunk:
	default:
		return resolved{}, fmt.Errorf("unsupported game %q", game)
	}

	return resolved{game: game, gameRoot: gameRoot, rulesDir: rulesDir, sorter: sorter}, nil
}

// buildInventory builds the game adapter and reads the current inventory,
// without touching rule files.
func (d Deps) buildInventory(ctx context.Context, r resolved) (*plugin.Inventory, gameconfig.Adapter, error) {
	adapter, err := gameconfig.NewAdapter(r.game, r.gameRoot)
	if err != nil {
		return nil, nil, fmt.Errorf("build game adapter: %w", err)
	}

	inv, err := engine.BuildInventory(ctx, adapter, r.gameRoot)
	if err != nil {
		return nil, nil, fmt.Errorf("build inventory: %w", err)
	}
	return inv, adapter, nil
}

// loadRulesAndInventory is the orchestration every handler shares: build
// the game adapter, read the current inventory, and load the rule set,
// same three steps ploxcli's runSort/runVerify perform. A
// partially-failed rule load (some files parsed, some didn't) is not
// fatal: ruleset carries whatever parsed, and parseWarnings carries the
// per-file diagnostics for the caller to surface.
func (d Deps) loadRulesAndInventory(ctx context.Context, r resolved) (inv *plugin.Inventory, ruleset []rules.Rule, adapter gameconfig.Adapter, parseWarnings []string, err error) {
	inv, adapter, err = d.buildInventory(ctx, r)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	ruleset, loadErr := engine.LoadRuleSet(ctx, r.rulesDir, d.Cache)
	if loadErr != nil {
		if ruleset == nil {
			return nil, nil, nil, nil, fmt.Errorf("load rules: %w", loadErr)
		}
		if merr, ok := loadErr.(interface{ WrappedErrors() []error }); ok {
			for _, e := range merr.WrappedErrors() {
				parseWarnings = append(parseWarnings, e.Error())
			}
		} else {
			parseWarnings = append(parseWarnings, loadErr.Error())
		}
	}

	return inv, ruleset, adapter, parseWarnings, nil
}

// runSortOrVerify is the shared body of SortHandler.Sort and
// VerifyHandler.Verify: resolve the request, build the inventory and rule
// set, run the engine, and shape the response. It never writes anything
// back; the caller decides whether and when to do that.
func (d Deps) runSortOrVerify(ctx context.Context, req runRequest) (sortResponse, gameconfig.Adapter, []string, error) {
	r, err := d.resolve(req)
	if err != nil {
		return sortResponse{}, nil, nil, err
	}

	inv, ruleset, adapter, parseWarnings, err := d.loadRulesAndInventory(ctx, r)
	if err != nil {
		return sortResponse{}, nil, nil, err
	}

	result, runErr := engine.Run(ruleset, inv, r.sorter)
	resp := sortResponse{ParseWarnings: parseWarnings}

	var cycleErr *topo.CycleError
	if runErr != nil && !errors.As(runErr, &cycleErr) {
		return sortResponse{}, nil, nil, runErr
	}

	resp.Messages = result.Messages.Messages()
	resp.Stats = result.Messages.Stats()
	resp.Cycles = result.Cycles
	if result.Order != nil {
		resp.Order = result.Order
		resp.AlreadySorted = sameOrder(result.Order, inv.Names())
	}

	return resp, adapter, result.Order, nil
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
