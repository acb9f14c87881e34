package main

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"samplegraph/internal/checkpoint"
	"samplegraph/internal/config"
	"samplegraph/internal/freesound"
	"samplegraph/internal/integrity"
	"samplegraph/internal/lock"
	"samplegraph/internal/logging"
	"samplegraph/internal/workflows"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool
	dryRunFlag *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string, jsonFlag, dryRunFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
		dryRunFlag: dryRunFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

func (c *commandContext) dryRun() bool {
	return c.dryRunFlag != nil && *c.dryRunFlag
}

func (c *commandContext) log() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) openStore() (*checkpoint.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return checkpoint.OpenStore(checkpoint.MetadataPath(cfg.Paths.CheckpointDir))
}

func (c *commandContext) newFetcher() (freesound.Fetcher, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return freesound.New(cfg.Freesound.APIKey, cfg.Freesound.BaseURL)
}

func (c *commandContext) repairOptions() integrity.RepairOptions {
	cfg := c.config
	return integrity.RepairOptions{
		BatchSize:   cfg.Freesound.PageSize,
		FetchBudget: cfg.Integrity.FetchBudget,
		Pause:       freesound.PauseBetweenBatches(cfg.Freesound.RequestsPerMinute),
	}
}

func (c *commandContext) newLock(name string) (*lock.FileLock, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return lock.New(cfg.Paths.LockDir, name,
		lock.WithStaleAfter(time.Duration(cfg.Lock.StaleAfterMinutes)*time.Minute),
		lock.WithPollInterval(time.Duration(cfg.Lock.PollIntervalSeconds)*time.Second),
		lock.WithDryRun(c.dryRun()),
		lock.WithLogger(c.log())), nil
}

func (c *commandContext) lockTimeout() time.Duration {
	return time.Duration(c.config.Lock.TimeoutSeconds) * time.Second
}

func (c *commandContext) newCoordinator() (*workflows.Coordinator, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	status := workflows.NewStatusClient(cfg.Workflows.StatusBaseURL, cfg.Workflows.Token, c.log(),
		workflows.WithCacheTTL(time.Duration(cfg.Workflows.CacheTTLSeconds)*time.Second),
		workflows.WithDryRun(c.dryRun()))
	return workflows.NewCoordinator(workflows.DefaultMatrix(), status, c.log(),
		workflows.WithPollInterval(time.Duration(cfg.Workflows.PollIntervalSeconds)*time.Second)), nil
}

func (c *commandContext) conflictWaitTimeout() time.Duration {
	return time.Duration(c.config.Workflows.WaitTimeoutSeconds) * time.Second
}

func (c *commandContext) scanResultMaxAge() time.Duration {
	return time.Duration(c.config.Integrity.ScanResultMaxAge) * time.Minute
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
