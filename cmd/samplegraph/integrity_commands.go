package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"samplegraph/internal/integrity"
)

const scanResultFile = "scan_result.json"

func scanResultPath(ctx *commandContext) string {
	return filepath.Join(ctx.config.Paths.ReportDir, scanResultFile)
}

func newScanCommand(ctx *commandContext) *cobra.Command {
	var fresh bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the metadata cache for missing, empty, or mistyped fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			scanner := integrity.NewScanner(store, ctx.log())
			var result *integrity.ScanResult
			if fresh {
				if result, err = scanner.Scan(cmd.Context()); err != nil {
					return err
				}
				if err := result.Save(scanResultPath(ctx)); err != nil {
					return err
				}
			} else {
				if result, err = scanner.ScanOrReuse(cmd.Context(), scanResultPath(ctx), ctx.scanResultMaxAge()); err != nil {
					return err
				}
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}
			renderScanResult(cmd, result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&fresh, "fresh", false, "Ignore any persisted scan result and rescan")
	return cmd
}

func renderScanResult(cmd *cobra.Command, result *integrity.ScanResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Scanned %s of %s records, %s issues on %s samples\n",
		formatCount(result.Checked), formatCount(result.Total),
		formatCount(result.IssueCount()), formatCount(len(result.SampleIDs())))
	if len(result.PerField) == 0 {
		return
	}

	fields := make([]string, 0, len(result.PerField))
	for field := range result.PerField {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	rows := make([][]string, 0, len(fields))
	for _, field := range fields {
		rows = append(rows, []string{field, formatCount(result.PerField[field])})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Field", "Issues"},
		rows,
		[]columnAlignment{alignLeft, alignRight}))
}

func newRepairCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "repair",
		Short: "Gap-fill flagged records from fresh Freesound fetches",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCheckpointLock(cmd, ctx, func() error {
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
					fmt.Fprintln(cmd.OutOrStdout(), "No issues to repair")
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

func newRefreshCommand(ctx *commandContext) *cobra.Command {
	var staleDays int

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Refresh engagement counters for records not updated recently",
		RunE: func(cmd *cobra.Command, args []string) error {
			if staleDays <= 0 {
				staleDays = ctx.config.Integrity.StaleAfterDays
			}
			return withCheckpointLock(cmd, ctx, func() error {
				store, err := ctx.openStore()
				if err != nil {
					return err
				}
				defer store.Close()

				cutoff := time.Now().UTC().AddDate(0, 0, -staleDays)
				ids, err := store.StaleSampleIDs(cmd.Context(), cutoff)
				if err != nil {
					return err
				}
				if len(ids) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No stale records to refresh")
					return nil
				}
				if ctx.dryRun() {
					fmt.Fprintf(cmd.OutOrStdout(), "Dry run: would refresh %s samples\n", formatCount(len(ids)))
					return nil
				}

				fetcher, err := ctx.newFetcher()
				if err != nil {
					return err
				}
				repairer := integrity.NewRepairer(store, fetcher, ctx.log(), ctx.repairOptions())
				report, err := repairer.Refresh(cmd.Context(), ids)
				if err != nil {
					return err
				}
				return renderReport(cmd, ctx, report)
			})
		},
	}

	cmd.Flags().IntVar(&staleDays, "stale-days", 0, "Refresh records older than this many days (defaults to configuration)")
	return cmd
}

func renderReport(cmd *cobra.Command, ctx *commandContext, report integrity.Report) error {
	if ctx.jsonOutput() {
		return writeJSON(cmd, report)
	}
	rows := [][]string{
		{"Total records", formatCount(report.Total)},
		{"Checked", formatCount(report.Checked)},
		{"Issues found", formatCount(report.IssuesFound)},
		{"Fields filled", formatCount(report.FieldsFilled)},
		{"Fields refreshed", formatCount(report.FieldsRefreshed)},
		{"Marked unavailable", formatCount(report.MarkedUnavailable)},
		{"Batches skipped", formatCount(report.BatchesSkipped)},
		{"Fetches used", fmt.Sprintf("%s / %s", formatCount(report.FetchesUsed), formatCount(report.FetchBudget))},
		{"Remaining samples", formatCount(report.RemainingSamples)},
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Metric", "Value"},
		rows,
		[]columnAlignment{alignLeft, alignRight}))
	return nil
}
