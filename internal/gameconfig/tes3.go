// Package gameconfig reads and writes each supported game's on-disk
// load-order representation: Morrowind.ini's [Game Files] section,
// openmw.cfg's content= lines, and Cyberpunk 2077's archive/redscript
// directories. Parsing follows the teacher's hand-rolled, no-external-
// library style for small line-oriented config formats.
package gameconfig

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"
)

// gameFilesHeader is the Morrowind.ini section PLOX reads and rewrites.
const gameFilesHeader = "[Game Files]"

// ReadMorrowindINI returns the plugin filenames listed under [Game Files]
// in Morrowind.ini, in their on-disk order.
func ReadMorrowindINI(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gameconfig: open %s: %w", path, err)
	}
	defer f.Close()

	var names []string
	inSection := false
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "[") {
			inSection = strings.EqualFold(line, gameFilesHeader)
			continue
		}
		if !inSection || line == "" {
			continue
		}
		if eq := strings.IndexByte(line, '='); eq >= 0 {
			names = append(names, strings.TrimSpace(line[eq+1:]))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("gameconfig: read %s: %w", path, err)
	}
	return names, nil
}

// WriteMorrowindINI rewrites the [Game Files] section of Morrowind.ini to
// list order's plugins as GameFileN=name entries, preserving every other
// line verbatim. If touchDir is non-empty, each plugin's file under that
// directory has its mtime bumped to increase monotonically in load-order
// sequence, the way Morrowind's engine itself falls back to mtime
// ordering if it disagrees with the ini.
func WriteMorrowindINI(path string, order []string, touchDir string) error {
	existing, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("gameconfig: read %s: %w", path, err)
	}

	var out strings.Builder
	inSection := false
	wroteSection := false
	lines := strings.Split(string(existing), "\n")
	for _, raw := range lines {
		trimmed := strings.TrimSpace(raw)
		if strings.HasPrefix(trimmed, "[") {
			if inSection && !wroteSection {
				writeGameFiles(&out, order)
				wroteSection = true
			}
			inSection = strings.EqualFold(trimmed, gameFilesHeader)
			if inSection {
				out.WriteString(raw)
				out.WriteString("\n")
				writeGameFiles(&out, order)
				wroteSection = true
				continue
			}
			out.WriteString(raw)
			out.WriteString("\n")
			continue
		}
		if inSection {
			continue // drop old GameFileN= entries; replaced above
		}
		out.WriteString(raw)
		out.WriteString("\n")
	}
	if !wroteSection {
		out.WriteString(gameFilesHeader)
		out.WriteString("\n")
		writeGameFiles(&out, order)
	}

	if err := os.WriteFile(path, []byte(out.String()), 0644); err != nil {
		return fmt.Errorf("gameconfig: write %s: %w", path, err)
	}

	if touchDir != "" {
		if err := touchMTimesInOrder(touchDir, order); err != nil {
			return err
		}
	}
	return nil
}

func writeGameFiles(out *strings.Builder, order []string) {
	for i, name := range order {
		fmt.Fprintf(out, "GameFile%d=%s\n", i, name)
	}
}

// touchMTimesInOrder sets each plugin's mtime under dir to increase by one
// second per position in order, so a filesystem sort by mtime agrees with
// the written ini order.
func touchMTimesInOrder(dir string, order []string) error {
	base := time.Now().Add(-time.Duration(len(order)) * time.Second)
	for i, name := range order {
		path := dir + string(os.PathSeparator) + name
		t := base.Add(time.Duration(i) * time.Second)
		if err := os.Chtimes(path, t, t); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("gameconfig: touch %s: %w", path, err)
		}
	}
	return nil
}
