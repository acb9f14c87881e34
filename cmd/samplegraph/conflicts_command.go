package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"samplegraph/internal/workflows"
)

type conflictOutput struct {
	Class      string `json:"class"`
	CanProceed bool   `json:"can_proceed"`
	Reason     string `json:"reason"`
}

func newConflictsCommand(ctx *commandContext) *cobra.Command {
	conflictsCmd := &cobra.Command{
		Use:   "conflicts",
		Short: "Workflow conflict coordination",
	}
	conflictsCmd.AddCommand(newConflictsCheckCommand(ctx))
	return conflictsCmd
}

func newConflictsCheckCommand(ctx *commandContext) *cobra.Command {
	var class string
	var wait bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check whether a job class may proceed given its conflicting siblings",
		RunE: func(cmd *cobra.Command, args []string) error {
			coordinator, err := ctx.newCoordinator()
			if err != nil {
				return err
			}
			timeout := ctx.conflictWaitTimeout()
			if !wait {
				timeout = 0
			}
			ok, reason := coordinator.CheckAndWait(cmd.Context(), workflows.Class(class), timeout)

			if ctx.jsonOutput() {
				if err := writeJSON(cmd, conflictOutput{Class: class, CanProceed: ok, Reason: reason}); err != nil {
					return err
				}
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: proceed=%s (%s)\n", class, yesNo(ok), reason)
			}
			if !ok {
				return fmt.Errorf("conflicting workflow still running: %s", reason)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&class, "class", string(workflows.ClassValidate), "Job class to check")
	cmd.Flags().BoolVar(&wait, "wait", false, "Wait for conflicting runs up to the configured timeout")
	return cmd
}
