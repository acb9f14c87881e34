package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"samplegraph/internal/checkpoint"
	"samplegraph/internal/services"
)

type verifyOutput struct {
	OK      bool   `json:"ok"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

func resultOutput(result checkpoint.Result) verifyOutput {
	return verifyOutput{
		OK:      result.OK,
		Kind:    string(result.Kind),
		Message: result.Message,
	}
}

func reportResult(cmd *cobra.Command, ctx *commandContext, result checkpoint.Result) error {
	if ctx.jsonOutput() {
		if err := writeJSON(cmd, resultOutput(result)); err != nil {
			return err
		}
	} else if result.OK {
		fmt.Fprintln(cmd.OutOrStdout(), result.Message)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", result.Kind, result.Message)
	}
	if !result.OK {
		return services.Wrap(services.ErrCheckpoint, "checkpoint", string(result.Kind), result.Message, nil)
	}
	return nil
}

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Verify the checkpoint artifacts are present, parseable, and non-empty",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			result := checkpoint.Verify(cmd.Context(), cfg.Paths.CheckpointDir)
			if result.OK {
				result = checkpoint.CheckConsistency(cfg.Paths.CheckpointDir)
			}
			return reportResult(cmd, ctx, result)
		},
	}
}

func newConsistencyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "consistency",
		Short: "Check manifest counts against the graph topology",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return reportResult(cmd, ctx, checkpoint.CheckConsistency(cfg.Paths.CheckpointDir))
		},
	}
}

func newCheckpointCommand(ctx *commandContext) *cobra.Command {
	checkpointCmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Checkpoint maintenance utilities",
	}
	checkpointCmd.AddCommand(newBackupCommand(ctx))
	return checkpointCmd
}

func newBackupCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Copy the checkpoint into a timestamped backup directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if result := checkpoint.Verify(cmd.Context(), cfg.Paths.CheckpointDir); !result.OK {
				return fmt.Errorf("refusing to back up failing checkpoint: %s", result.Message)
			}
			if ctx.dryRun() {
				fmt.Fprintf(cmd.OutOrStdout(), "Dry run: would back up %s to %s\n",
					cfg.Paths.CheckpointDir, cfg.Paths.BackupDir)
				return nil
			}
			dest, err := checkpoint.Backup(cfg.Paths.CheckpointDir, cfg.Paths.BackupDir)
			if err != nil {
				return fmt.Errorf("back up checkpoint: %w", err)
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]string{"backup_dir": dest})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Checkpoint backed up to %s\n", dest)
			return nil
		},
	}
}
