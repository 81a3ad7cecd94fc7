// Package config loads PLOX's configuration from environment variables
// and an optional .env file, following the teacher's hand-rolled loader
// rather than pulling in an external dotenv library.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rfuzzo/plox/internal/gameconfig"
)

// Config holds all configuration for the application.
type Config struct {
	// Port is the HTTP server port (default: 8080).
	Port string

	// Game selects which title's load-order format is read and written.
	Game gameconfig.Game

	// GameRoot is the game's installation directory.
	GameRoot string

	// RulesDir is the directory rule files are loaded from.
	RulesDir string

	// DataDir is the directory for storing cached data (default: ./data).
	DataDir string

	// CacheDBPath is the path to the rule-AST cache's SQLite file.
	CacheDBPath string

	// Sorter selects "stable" or "unstable" topological ordering.
	Sorter string

	// Environment is the running environment (development, production).
	Environment string

	// CORSOrigins are the allowed origins for CORS.
	CORSOrigins []string
}

// Load reads configuration from environment variables and an optional
// .env file. The .env file is loaded first, then environment variables
// already set in the process take precedence.
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Game:        gameconfig.Game(getEnv("PLOX_GAME", string(gameconfig.GameMorrowind))),
		GameRoot:    getEnv("PLOX_GAME_ROOT", "."),
		RulesDir:    getEnv("PLOX_RULES_DIR", "./rules"),
		DataDir:     getEnv("DATA_DIR", "./data"),
		CacheDBPath: getEnv("PLOX_CACHE_DB", "./data/rules.db"),
		Sorter:      getEnv("PLOX_SORTER", "stable"),
		Environment: getEnv("ENVIRONMENT", "development"),
	}

	origins := getEnv("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")
	cfg.CORSOrigins = parseCSV(origins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the loaded configuration is usable.
func (c *Config) Validate() error {
	switch c.Game {
	case gameconfig.GameMorrowind, gameconfig.GameOpenMW, gameconfig.GameCyberpunk:
	default:
		return fmt.Errorf("config: unsupported PLOX_GAME %q", c.Game)
	}

	switch c.Sorter {
	case "stable", "unstable":
	default:
		return fmt.Errorf("config: unsupported PLOX_SORTER %q (want stable or unstable)", c.Sorter)
	}

	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// LoadEnvFile loads environment variables from an explicit .env-style
// file path, for callers (e.g. ploxcli's --config flag) that name their
// own config file instead of relying on Load's default search path.
// Variables already set in the process are not overridden.
func LoadEnvFile(path string) error {
	return loadEnvFromPath(path)
}

// loadEnvFile attempts to load a .env file from the current directory or
// a nearby parent directory.
func loadEnvFile() {
	paths := []string{".env", "../.env", "../../.env"}
	for _, path := range paths {
		if err := loadEnvFromPath(path); err == nil {
			return
		}
	}
}

// loadEnvFromPath loads environment variables from a file.
func loadEnvFromPath(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	file, err := os.Open(absPath)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := trimQuotes(strings.TrimSpace(parts[1]))

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}

	return scanner.Err()
}

// trimQuotes removes surrounding quotes from a string.
func trimQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') ||
			(s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// getEnv returns the environment variable value or the default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseCSV splits a comma-separated string into a slice.
func parseCSV(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
