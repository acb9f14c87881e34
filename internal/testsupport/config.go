package testsupport

import (
	"path/filepath"
	"testing"

	"samplegraph/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.CheckpointDir = filepath.Join(base, "checkpoint")
	cfg.Paths.LockDir = filepath.Join(base, "locks")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.ReportDir = filepath.Join(base, "reports")
	cfg.Paths.BackupDir = filepath.Join(base, "backups")
	cfg.Freesound.APIKey = "test"

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithFetchBudget overrides the repair fetch budget on the test config.
func WithFetchBudget(budget int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Integrity.FetchBudget = budget
	}
}

// WithPageSize overrides the Freesound page size on the test config.
func WithPageSize(size int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Freesound.PageSize = size
	}
}
