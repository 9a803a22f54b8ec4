package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvAPIBaseURL names the variable that overrides the backend base URL.
// It is read from a .env file first, then from the process environment.
const EnvAPIBaseURL = "DAYBRIEF_API_BASE_URL"

// Config holds application configuration.
type Config struct {
	// APIBaseURL is the backend base URL; operation paths are appended to it.
	APIBaseURL string `json:"api_base_url,omitempty"`

	// LegacySummaryPath switches the daily summary fetch from
	// /api/summary/daily to the older /run_daily_summary route.
	LegacySummaryPath bool `json:"legacy_summary_path,omitempty"`

	// RequestTimeoutSeconds bounds every backend request. 0 means use the default.
	RequestTimeoutSeconds int `json:"request_timeout_seconds,omitempty"`

	// ThreadIDs overrides the conversation thread id sent for a chat panel,
	// keyed by panel id (e.g. "jira", "calendarbot").
	ThreadIDs map[string]string `json:"thread_ids,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		APIBaseURL:            "http://localhost:8000",
		RequestTimeoutSeconds: 60,
	}
}

// RequestTimeout returns the per-request backend timeout.
func (c *Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return time.Duration(DefaultConfig().RequestTimeoutSeconds) * time.Second
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// ThreadID returns the configured thread id for a panel, or def when unset.
func (c *Config) ThreadID(panel, def string) string {
	if id := strings.TrimSpace(c.ThreadIDs[panel]); id != "" {
		return id
	}
	return def
}

// Load loads configuration from baseDir/config.json and then applies the
// base URL override from baseDir/.env, ./.env and the environment.
// Returns default config if no file exists.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.daybrief.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFile(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	if err := ApplyEnv(cfg, filepath.Join(baseDir, ".env"), ".env"); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays the base URL from the given dotenv files (later files win,
// missing files are skipped) and finally from the process environment.
func ApplyEnv(cfg *Config, envFiles ...string) error {
	for _, path := range envFiles {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		vals, err := godotenv.Read(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if v := strings.TrimSpace(vals[EnvAPIBaseURL]); v != "" {
			cfg.APIBaseURL = v
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvAPIBaseURL)); v != "" {
		cfg.APIBaseURL = v
	}
	return nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.APIBaseURL = strings.TrimSpace(overlay.APIBaseURL)
	if result.APIBaseURL == "" {
		result.APIBaseURL = base.APIBaseURL
	}

	result.RequestTimeoutSeconds = overlay.RequestTimeoutSeconds
	if result.RequestTimeoutSeconds == 0 {
		result.RequestTimeoutSeconds = base.RequestTimeoutSeconds
	}

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	result.LegacySummaryPath = base.LegacySummaryPath || overlay.LegacySummaryPath

	if len(base.ThreadIDs)+len(overlay.ThreadIDs) > 0 {
		result.ThreadIDs = make(map[string]string, len(base.ThreadIDs)+len(overlay.ThreadIDs))
		for k, v := range base.ThreadIDs {
			result.ThreadIDs[k] = v
		}
		for k, v := range overlay.ThreadIDs {
			result.ThreadIDs[k] = v
		}
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, list := range [][]string{a, b} {
		for _, s := range list {
			s = strings.TrimSpace(s)
			if s != "" && !seen[s] {
				seen[s] = true
				result = append(result, s)
			}
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
