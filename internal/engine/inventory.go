package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/rfuzzo/plox/internal/gameconfig"
	"github.com/rfuzzo/plox/internal/plugin"
)

// versionInDescription finds a version-shaped substring anywhere in a
// plugin's free-text description, e.g. "Great Mod v1.2.3 - fixes stuff".
var versionInDescription = regexp.MustCompile(`[vV]?\d+(?:\.\d+){1,2}`)

// BuildInventory builds a plugin.Inventory in the adapter's current load
// order, enriching each entry with header metadata (for plugin kinds that
// carry one) and filesystem size/modtime from dataDir.
func BuildInventory(ctx context.Context, adapter gameconfig.Adapter, dataDir string) (*plugin.Inventory, error) {
	names, err := adapter.ReadOrder()
	if err != nil {
		return nil, fmt.Errorf("engine: read current load order: %w", err)
	}

	hr := plugin.NewHeaderReader()
	records := make([]plugin.Record, len(names))
	for i, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec := plugin.Record{Name: name}
		path := filepath.Join(dataDir, name)

		if info, err := os.Stat(path); err == nil {
			size := info.Size()
			rec.Size = &size
			rec.ModTime = info.ModTime()
		}

		if plugin.HasBinaryHeader(name) {
			if header, err := hr.ReadFile(ctx, path); err == nil {
				rec.Author = header.Author
				rec.Description = header.Description
				if match := versionInDescription.FindString(header.Description); match != "" {
					if v, err := plugin.ParseVersion(match); err == nil {
						rec.Version = v
					}
				}
			}
			// A header read failure (missing file, truncated plugin) is not
			// fatal: the plugin still takes its place in the order, just
			// without metadata the DESC/VER predicates could use.
		}

		records[i] = rec
	}

	return plugin.NewInventory(records), nil
}
