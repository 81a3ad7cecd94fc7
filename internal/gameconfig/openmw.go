package gameconfig

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadOpenMWContent returns the plugin filenames named by content= lines in
// openmw.cfg, in file order. Lines other than content= (data=, fallback=,
// etc.) are ignored here; WriteOpenMWContent preserves them verbatim.
func ReadOpenMWContent(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gameconfig: open %s: %w", path, err)
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if name, ok := strings.CutPrefix(line, "content="); ok {
			names = append(names, strings.TrimSpace(name))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("gameconfig: read %s: %w", path, err)
	}
	return names, nil
}

// WriteOpenMWContent rewrites openmw.cfg's content= lines to list order's
// plugins, in order, preserving every other line (data=, fallback-archive=,
// etc.) and its position relative to the content block.
func WriteOpenMWContent(path string, order []string) error {
	existing, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("gameconfig: read %s: %w", path, err)
	}

	var out strings.Builder
	wrote := false
	lines := strings.Split(string(existing), "\n")
	for _, raw := range lines {
		trimmed := strings.TrimSpace(raw)
		if strings.HasPrefix(trimmed, "content=") {
			if !wrote {
				for _, name := range order {
					fmt.Fprintf(&out, "content=%s\n", name)
				}
				wrote = true
			}
			continue
		}
		out.WriteString(raw)
		out.WriteString("\n")
	}
	if !wrote {
		for _, name := range order {
			fmt.Fprintf(&out, "content=%s\n", name)
		}
	}

	if err := os.WriteFile(path, []byte(out.String()), 0644); err != nil {
		return fmt.Errorf("gameconfig: write %s: %w", path, err)
	}
	return nil
}

// ReadOpenMWDataDirs returns the data= directories listed in openmw.cfg, in
// file order, for resolving content= filenames to plugin paths on disk.
func ReadOpenMWDataDirs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gameconfig: open %s: %w", path, err)
	}
	defer f.Close()

	var dirs []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if dir, ok := strings.CutPrefix(line, "data="); ok {
			dirs = append(dirs, strings.Trim(strings.TrimSpace(dir), `"`))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("gameconfig: read %s: %w", path, err)
	}
	return dirs, nil
}
