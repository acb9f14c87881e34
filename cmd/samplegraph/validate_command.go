package main

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"samplegraph/internal/checkpoint"
	"samplegraph/internal/integrity"
	"samplegraph/internal/logging"
	"samplegraph/internal/services"
	"samplegraph/internal/workflows"
)

func newValidateCommand(ctx *commandContext) *cobra.Command {
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Checkpoint validation pipeline",
	}
	validateCmd.AddCommand(newValidateRunCommand(ctx))
	return validateCmd
}

// newValidateRunCommand wires the full coordination protocol: one process
// per host (flock guard), no conflicting CI siblings (coordinator), then
// verify, scan, and repair under the checkpoint lock.
func newValidateRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the verify, scan, and repair cycle under full coordination",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			instanceGuard := flock.New(filepath.Join(cfg.Paths.LockDir, "validate.flock"))
			held, err := instanceGuard.TryLock()
			if err != nil {
				return fmt.Errorf("acquire instance guard: %w", err)
			}
			if !held {
				return fmt.Errorf("another validate run is active on this host")
			}
			defer func() { _ = instanceGuard.Unlock() }()

			coordinator, err := ctx.newCoordinator()
			if err != nil {
				return err
			}
			ok, reason := coordinator.CheckAndWait(cmd.Context(), workflows.ClassValidate, ctx.conflictWaitTimeout())
			if !ok {
				return fmt.Errorf("conflicting workflow still running: %s", reason)
			}
			ctx.log().Info("conflict check passed", logging.String("reason", reason))

			return withCheckpointLock(cmd, ctx, func() error {
				if result := checkpoint.Verify(cmd.Context(), cfg.Paths.CheckpointDir); !result.OK {
					return services.Wrap(services.ErrCheckpoint, "verify", string(result.Kind), result.Message, nil)
				}
				if result := checkpoint.CheckConsistency(cfg.Paths.CheckpointDir); !result.OK {
					return services.Wrap(services.ErrCheckpoint, "consistency", string(result.Kind), result.Message, nil)
				}

				store, err := ctx.openStore()
				if err != nil {
					return err
				}
				defer store.Close()

				scanner := integrity.NewScanner(store, ctx.log())
				result, err := scanner.ScanOrReuse(cmd.Context(), scanResultPath(ctx), ctx.scanResultMaxAge())
				if err != nil {
					return err
				}
				if result.IssueCount() == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Checkpoint healthy, no repairs needed")
					return nil
				}
				if ctx.dryRun() {
					fmt.Fprintf(cmd.OutOrStdout(), "Dry run: would repair %s samples\n",
						formatCount(len(result.SampleIDs())))
					return nil
				}

				fetcher, err := ctx.newFetcher()
				if err != nil {
					return err
				}
				repairer := integrity.NewRepairer(store, fetcher, ctx.log(), ctx.repairOptions())
				report, err := repairer.Repair(cmd.Context(), result)
				if err != nil {
					return err
				}
				return renderReport(cmd, ctx, report)
			})
		},
	}
}
