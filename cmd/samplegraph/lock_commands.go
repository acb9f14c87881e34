package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"samplegraph/internal/lock"
	"samplegraph/internal/logging"
	"samplegraph/internal/services"
)

const checkpointLockName = "checkpoint"

// withCheckpointLock runs fn while holding the checkpoint lock. In dry-run
// mode the lock layer acquires nothing and fn still runs.
func withCheckpointLock(cmd *cobra.Command, ctx *commandContext, fn func() error) error {
	fileLock, err := ctx.newLock(checkpointLockName)
	if err != nil {
		return err
	}
	ok, err := fileLock.Acquire(cmd.Context(), ctx.lockTimeout())
	if err != nil {
		return fmt.Errorf("acquire checkpoint lock: %w", err)
	}
	if !ok {
		return services.Wrap(services.ErrLocked, "lock", "acquire",
			fmt.Sprintf("checkpoint lock held by another run (timeout %s)", ctx.lockTimeout()), nil)
	}
	defer func() {
		if releaseErr := fileLock.Release(); releaseErr != nil {
			ctx.log().Warn("release checkpoint lock failed", logging.Error(releaseErr))
		}
	}()
	return fn()
}

func newLockCommand(ctx *commandContext) *cobra.Command {
	lockCmd := &cobra.Command{
		Use:   "lock",
		Short: "Checkpoint lock utilities",
	}
	lockCmd.AddCommand(newLockAcquireCommand(ctx))
	lockCmd.AddCommand(newLockReleaseCommand(ctx))
	lockCmd.AddCommand(newLockStatusCommand(ctx))
	return lockCmd
}

func newLockAcquireCommand(ctx *commandContext) *cobra.Command {
	var holder string
	var timeoutSeconds int

	cmd := &cobra.Command{
		Use:   "acquire",
		Short: "Acquire the checkpoint lock and leave it held",
		RunE: func(cmd *cobra.Command, args []string) error {
			var fileLock *lock.FileLock
			var err error
			if holder != "" {
				fileLock, err = lockWithHolder(ctx, holder)
			} else {
				fileLock, err = ctx.newLock(checkpointLockName)
			}
			if err != nil {
				return err
			}
			timeout := ctx.lockTimeout()
			if timeoutSeconds > 0 {
				timeout = time.Duration(timeoutSeconds) * time.Second
			}
			ok, err := fileLock.Acquire(cmd.Context(), timeout)
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !ok {
				return fmt.Errorf("lock is held by another run (timeout %s)", timeout)
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]string{
					"path":   fileLock.Path(),
					"holder": fileLock.Holder(),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Acquired %s as %s\n", fileLock.Path(), fileLock.Holder())
			return nil
		},
	}

	cmd.Flags().StringVar(&holder, "holder", "", "Holder identifier to record in the lock file")
	cmd.Flags().IntVar(&timeoutSeconds, "timeout", 0, "Acquisition timeout in seconds (defaults to configuration)")
	return cmd
}

func lockWithHolder(ctx *commandContext, holder string) (*lock.FileLock, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	return lock.New(cfg.Paths.LockDir, checkpointLockName,
		lock.WithStaleAfter(time.Duration(cfg.Lock.StaleAfterMinutes)*time.Minute),
		lock.WithPollInterval(time.Duration(cfg.Lock.PollIntervalSeconds)*time.Second),
		lock.WithHolder(holder),
		lock.WithDryRun(ctx.dryRun()),
		lock.WithLogger(ctx.log())), nil
}

func newLockReleaseCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "release",
		Short: "Release the checkpoint lock if present",
		RunE: func(cmd *cobra.Command, args []string) error {
			fileLock, err := ctx.newLock(checkpointLockName)
			if err != nil {
				return err
			}
			if err := fileLock.Release(); err != nil {
				return fmt.Errorf("release lock: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Lock released")
			return nil
		},
	}
}

type lockStatusOutput struct {
	Held       bool   `json:"held"`
	Holder     string `json:"holder,omitempty"`
	AcquiredAt string `json:"acquired_at,omitempty"`
	Path       string `json:"path"`
}

func newLockStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the checkpoint lock state",
		RunE: func(cmd *cobra.Command, args []string) error {
			fileLock, err := ctx.newLock(checkpointLockName)
			if err != nil {
				return err
			}
			info, held, err := fileLock.ReadInfo()
			if err != nil {
				return fmt.Errorf("read lock: %w", err)
			}

			output := lockStatusOutput{Held: held, Path: fileLock.Path()}
			if held {
				output.Holder = info.Holder
				output.AcquiredAt = info.AcquiredAt.Format(time.RFC3339)
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, output)
			}

			rows := [][]string{
				{"Held", yesNo(held)},
				{"Path", fileLock.Path()},
			}
			if held {
				rows = append(rows,
					[]string{"Holder", info.Holder},
					[]string{"Acquired", info.AcquiredAt.Format(time.RFC3339)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Field", "Value"},
				rows,
				[]columnAlignment{alignLeft, alignLeft}))
			return nil
		},
	}
}
