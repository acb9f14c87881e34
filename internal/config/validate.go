package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateFreesound(); err != nil {
		return err
	}
	if err := c.validateIntegrity(); err != nil {
		return err
	}
	if err := c.validateLock(); err != nil {
		return err
	}
	if err := c.validateWorkflows(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.CheckpointDir) == "" {
		return errors.New("paths.checkpoint_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LockDir) == "" {
		return errors.New("paths.lock_dir must be set")
	}
	return nil
}

func (c *Config) validateFreesound() error {
	if c.Freesound.PageSize > 150 {
		return fmt.Errorf("freesound.page_size must not exceed 150 (the API page-size cap), got %d", c.Freesound.PageSize)
	}
	if c.Freesound.RequestsPerMinute <= 0 {
		return errors.New("freesound.requests_per_minute must be positive")
	}
	return nil
}

func (c *Config) validateIntegrity() error {
	if c.Integrity.FetchBudget <= 0 {
		return errors.New("integrity.fetch_budget must be positive")
	}
	return nil
}

func (c *Config) validateLock() error {
	if c.Lock.StaleAfterMinutes <= 0 {
		return errors.New("lock.stale_after_minutes must be positive")
	}
	if c.Lock.PollIntervalSeconds <= 0 {
		return errors.New("lock.poll_interval_seconds must be positive")
	}
	return nil
}

func (c *Config) validateWorkflows() error {
	if strings.TrimSpace(c.Workflows.StatusBaseURL) == "" {
		return errors.New("workflows.status_base_url must be set")
	}
	if c.Workflows.PollIntervalSeconds <= 0 {
		return errors.New("workflows.poll_interval_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
