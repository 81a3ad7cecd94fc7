// Package cache provides a content-addressed, SQLite-backed cache of
// parsed rule ASTs, so a sort run over an unchanged rule file skips the
// lexer/parser entirely. An in-memory LRU sits in front of SQLite so a
// single process re-checking the same file (e.g. the API re-validating a
// rules directory on every request) doesn't pay a round trip to disk.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "modernc.org/sqlite"

	"github.com/rfuzzo/plox/internal/rules"
)

// ErrNotFound is returned when no cache entry matches the given key.
var ErrNotFound = errors.New("cache: entry not found")

// defaultMemEntries bounds the in-memory front cache's size when Config
// does not specify one.
const defaultMemEntries = 256

// Config holds configuration for the rule cache.
type Config struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// MemEntries bounds the in-memory LRU front cache's entry count. Zero
	// uses defaultMemEntries; negative disables the front cache.
	MemEntries int
}

// Cache is a content-addressed cache of parsed rule ASTs. Entries are
// keyed by (filename, size, modtime, content hash); since the key already
// encodes the file's content, a hit is never stale and there is no TTL to
// manage.
type Cache struct {
	db  *sql.DB
	mem *lru.Cache[string, []rules.Rule]
}

// New opens (creating if necessary) the rule cache database at cfg.DBPath.
func New(cfg Config) (*Cache, error) {
	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("cache: create directory: %w", err)
	}

	db, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("cache: open database: %w", err)
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: initialize schema: %w", err)
	}

	c := &Cache{db: db}
	if cfg.MemEntries >= 0 {
		size := cfg.MemEntries
		if size == 0 {
			size = defaultMemEntries
		}
		mem, err := lru.New[string, []rules.Rule](size)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("cache: create front cache: %w", err)
		}
		c.mem = mem
	}
	return c, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS rule_cache (
			cache_key  TEXT PRIMARY KEY,
			filename   TEXT NOT NULL,
			ast        TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);
	`)
	return err
}

// Key derives a cache key from a rule file's name, size, modtime, and
// content hash. The content is always hashed, so a file whose modtime is
// unreliable (e.g. a rule bundle re-extracted from an archive) still gets
// a key that changes whenever its content does.
func Key(filename string, size int64, modTimeUnix int64, content []byte) string {
	sum := sha256.Sum256(content)
	return fmt.Sprintf("%s:%d:%d:%s", filename, size, modTimeUnix, hex.EncodeToString(sum[:8]))
}

// KeyFromReader is Key, but hashes content read from r instead of an
// in-memory buffer, for callers that have not already read the file.
func KeyFromReader(filename string, size, modTimeUnix int64, r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("cache: hash content: %w", err)
	}
	return fmt.Sprintf("%s:%d:%d:%s", filename, size, modTimeUnix, hex.EncodeToString(h.Sum(nil)[:8])), nil
}

// Get returns the cached rule AST for key, or ErrNotFound. A hit in the
// in-memory front cache skips SQLite entirely.
func (c *Cache) Get(ctx context.Context, key string) ([]rules.Rule, error) {
	if c.mem != nil {
		if ruleset, ok := c.mem.Get(key); ok {
			return ruleset, nil
		}
	}

	var ast string
	err := c.db.QueryRowContext(ctx, `SELECT ast FROM rule_cache WHERE cache_key = ?`, key).Scan(&ast)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cache: query: %w", err)
	}
	parsed, err := rules.Unmarshal([]byte(ast))
	if err != nil {
		return nil, fmt.Errorf("cache: decode cached AST: %w", err)
	}
	if c.mem != nil {
		c.mem.Add(key, parsed)
	}
	return parsed, nil
}

// Put stores ruleset under key, keyed also by filename for InvalidateFile.
func (c *Cache) Put(ctx context.Context, key, filename string, ruleset []rules.Rule, nowUnix int64) error {
	data, err := rules.Marshal(ruleset)
	if err != nil {
		return fmt.Errorf("cache: encode AST: %w", err)
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO rule_cache (cache_key, filename, ast, created_at)
		VALUES (?, ?, ?, ?)
	`, key, filename, string(data), nowUnix)
	if err != nil {
		return fmt.Errorf("cache: insert: %w", err)
	}
	if c.mem != nil {
		c.mem.Add(key, ruleset)
	}
	return nil
}

// InvalidateFile removes every cached entry for filename, e.g. when a
// caller wants to force a re-parse regardless of the content-addressed key.
// The in-memory front cache is cleared wholesale since its keys aren't
// indexed by filename.
func (c *Cache) InvalidateFile(ctx context.Context, filename string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM rule_cache WHERE filename = ?`, filename)
	if err != nil {
		return err
	}
	if c.mem != nil {
		c.mem.Purge()
	}
	return nil
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}
