package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeFreesound()
	c.normalizeIntegrity()
	c.normalizeLock()
	c.normalizeWorkflows()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.CheckpointDir, err = expandPath(c.Paths.CheckpointDir); err != nil {
		return fmt.Errorf("paths.checkpoint_dir: %w", err)
	}
	if c.Paths.LockDir, err = expandPath(c.Paths.LockDir); err != nil {
		return fmt.Errorf("paths.lock_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.ReportDir, err = expandPath(c.Paths.ReportDir); err != nil {
		return fmt.Errorf("paths.report_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.BackupDir) != "" {
		if c.Paths.BackupDir, err = expandPath(c.Paths.BackupDir); err != nil {
			return fmt.Errorf("paths.backup_dir: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeFreesound() {
	if c.Freesound.APIKey == "" {
		if value, ok := os.LookupEnv("FREESOUND_API_KEY"); ok {
			c.Freesound.APIKey = strings.TrimSpace(value)
		}
	}
	c.Freesound.BaseURL = strings.TrimRight(strings.TrimSpace(c.Freesound.BaseURL), "/")
	if c.Freesound.BaseURL == "" {
		c.Freesound.BaseURL = defaultFreesoundBaseURL
	}
	if c.Freesound.PageSize <= 0 {
		c.Freesound.PageSize = defaultFreesoundPageSize
	}
	if c.Freesound.RequestsPerMinute <= 0 {
		c.Freesound.RequestsPerMinute = defaultFreesoundRPM
	}
	if c.Freesound.TimeoutSeconds <= 0 {
		c.Freesound.TimeoutSeconds = defaultFreesoundTimeout
	}
}

func (c *Config) normalizeIntegrity() {
	if c.Integrity.FetchBudget <= 0 {
		c.Integrity.FetchBudget = defaultFetchBudget
	}
	if c.Integrity.ScanResultMaxAge <= 0 {
		c.Integrity.ScanResultMaxAge = defaultScanResultMaxAge
	}
	if c.Integrity.StaleAfterDays <= 0 {
		c.Integrity.StaleAfterDays = defaultStaleAfterDays
	}
}

func (c *Config) normalizeLock() {
	if c.Lock.StaleAfterMinutes <= 0 {
		c.Lock.StaleAfterMinutes = defaultLockStaleAfterMinutes
	}
	if c.Lock.PollIntervalSeconds <= 0 {
		c.Lock.PollIntervalSeconds = defaultLockPollInterval
	}
	if c.Lock.TimeoutSeconds <= 0 {
		c.Lock.TimeoutSeconds = defaultLockTimeout
	}
}

func (c *Config) normalizeWorkflows() {
	if c.Workflows.Token == "" {
		if value, ok := os.LookupEnv("SAMPLEGRAPH_STATUS_TOKEN"); ok {
			c.Workflows.Token = strings.TrimSpace(value)
		}
	}
	c.Workflows.StatusBaseURL = strings.TrimRight(strings.TrimSpace(c.Workflows.StatusBaseURL), "/")
	if c.Workflows.StatusBaseURL == "" {
		c.Workflows.StatusBaseURL = defaultStatusBaseURL
	}
	if c.Workflows.CacheTTLSeconds <= 0 {
		c.Workflows.CacheTTLSeconds = defaultStatusCacheTTL
	}
	if c.Workflows.PollIntervalSeconds <= 0 {
		c.Workflows.PollIntervalSeconds = defaultConflictPollInterval
	}
	if c.Workflows.WaitTimeoutSeconds <= 0 {
		c.Workflows.WaitTimeoutSeconds = defaultConflictWaitTimeout
	}
	if c.Workflows.TimeoutSeconds <= 0 {
		c.Workflows.TimeoutSeconds = defaultStatusRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
