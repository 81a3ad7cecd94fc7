// Package engine orchestrates a full sort run: loading and caching rule
// files, building the plugin inventory from a game adapter, applying the
// rules, running the configured sorter, and reporting any cycle. It plays
// the same "two-pass, build a result object" role the teacher's load-order
// analyzer played, generalized from post-hoc issue detection to producing
// a new order.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/rfuzzo/plox/internal/cache"
	"github.com/rfuzzo/plox/internal/rules"
)

// ruleFileExtensions are the extensions treated as rule files when
// scanning a rules directory.
var ruleFileExtensions = map[string]bool{".txt": true, ".mlox": true}

// LoadRuleSet reads every rule file directly under dir (not recursively,
// mirroring how mlox-style rule repositories keep all rule files at their
// root), in filename order, parsing each and concatenating the results.
// A per-file parse failure is recorded in the returned error but does not
// stop other files from loading, the same recoverable-parsing posture the
// rule parser itself takes toward individual bad rules.
//
// If c is non-nil, each file's parsed AST is served from and written back
// to the cache, keyed by the file's (name, size, modtime, content hash).
func LoadRuleSet(ctx context.Context, dir string, c *cache.Cache) ([]rules.Rule, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("engine: read rules directory %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ruleFileExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var all []rules.Rule
	var errs *multierror.Error
	for _, name := range names {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		path := filepath.Join(dir, name)
		parsed, err := loadOneRuleFile(ctx, path, name, c)
		// rules.Parse is recoverable: a file with one bad rule still
		// returns every rule that did parse alongside the diagnostic, so
		// the good rules are kept regardless of whether err is set.
		all = append(all, parsed...)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	return all, errs.ErrorOrNil()
}

func loadOneRuleFile(ctx context.Context, path, name string, c *cache.Cache) ([]rules.Rule, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	if c != nil {
		key := cache.Key(name, info.Size(), info.ModTime().Unix(), content)
		if cached, err := c.Get(ctx, key); err == nil {
			return cached, nil
		}
		parsed, err := rules.Parse(name, string(content))
		if err != nil {
			// Diagnostics, not a fatal failure: parsed still holds every
			// rule that did parse. Only a clean parse is cached, so the
			// next run retries the file instead of re-serving the same
			// diagnostics forever.
			return parsed, err
		}
		_ = c.Put(ctx, key, name, parsed, nowUnix())
		return parsed, nil
	}

	return rules.Parse(name, string(content))
}

func nowUnix() int64 { return time.Now().Unix() }
