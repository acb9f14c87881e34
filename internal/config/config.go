package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration for the checkpoint and its bookkeeping.
type Paths struct {
	CheckpointDir string `toml:"checkpoint_dir"`
	LockDir       string `toml:"lock_dir"`
	LogDir        string `toml:"log_dir"`
	ReportDir     string `toml:"report_dir"`
	BackupDir     string `toml:"backup_dir"`
}

// Freesound contains configuration for the Freesound API client.
type Freesound struct {
	APIKey            string `toml:"api_key"`
	BaseURL           string `toml:"base_url"`
	PageSize          int    `toml:"page_size"`
	RequestsPerMinute int    `toml:"requests_per_minute"`
	TimeoutSeconds    int    `toml:"timeout_seconds"`
}

// Integrity contains configuration for the scan/repair cycle.
type Integrity struct {
	FetchBudget      int `toml:"fetch_budget"`
	ScanResultMaxAge int `toml:"scan_result_max_age_minutes"`
	StaleAfterDays   int `toml:"stale_after_days"`
}

// Lock contains configuration for the checkpoint file lock.
type Lock struct {
	StaleAfterMinutes   int `toml:"stale_after_minutes"`
	PollIntervalSeconds int `toml:"poll_interval_seconds"`
	TimeoutSeconds      int `toml:"timeout_seconds"`
}

// Workflows contains configuration for the CI workflow conflict coordinator.
type Workflows struct {
	StatusBaseURL       string `toml:"status_base_url"`
	Token               string `toml:"token"`
	CacheTTLSeconds     int    `toml:"cache_ttl_seconds"`
	PollIntervalSeconds int    `toml:"poll_interval_seconds"`
	WaitTimeoutSeconds  int    `toml:"wait_timeout_seconds"`
	TimeoutSeconds      int    `toml:"timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for samplegraph.
//
// Configuration sections by subsystem:
//   - Paths: checkpoint, lock, log, report, and backup directories
//   - Freesound: sample fetch API credentials and rate limits
//   - Integrity: scan/repair budgets and freshness thresholds
//   - Lock: checkpoint file lock staleness and polling
//   - Workflows: CI status API endpoint and conflict wait timing
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Freesound Freesound `toml:"freesound"`
	Integrity Integrity `toml:"integrity"`
	Lock      Lock      `toml:"lock"`
	Workflows Workflows `toml:"workflows"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/samplegraph/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/samplegraph/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("samplegraph.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories required for checkpoint operations.
// BackupDir is created on a best-effort basis so a run can proceed when the
// backup target is temporarily unavailable.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.CheckpointDir, c.Paths.LockDir, c.Paths.LogDir, c.Paths.ReportDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.BackupDir) != "" {
		_ = os.MkdirAll(c.Paths.BackupDir, 0o755)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
