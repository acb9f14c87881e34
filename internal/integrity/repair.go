package integrity

import (
	"context"
	"log/slog"
	"time"

	"samplegraph/internal/checkpoint"
	"samplegraph/internal/freesound"
	"samplegraph/internal/logging"
)

// RepairOptions bounds one repair run.
type RepairOptions struct {
	// BatchSize caps ids per fetch; clamped to the API page-size limit.
	BatchSize int
	// FetchBudget caps fetch calls per run. Exhaustion is a designed
	// stopping condition, not a failure; leftovers wait for the next run.
	FetchBudget int
	// Pause is the inter-batch delay that respects the upstream rate limit.
	Pause time.Duration
}

// Repairer drives the fetch-and-patch cycle for records the scan flagged.
type Repairer struct {
	store   *checkpoint.Store
	fetcher freesound.Fetcher
	logger  *slog.Logger
	opts    RepairOptions
}

// NewRepairer constructs a repairer. Zero option fields fall back to safe
// bounds.
func NewRepairer(store *checkpoint.Store, fetcher freesound.Fetcher, logger *slog.Logger, opts RepairOptions) *Repairer {
	if opts.BatchSize <= 0 || opts.BatchSize > freesound.MaxPageSize {
		opts.BatchSize = freesound.MaxPageSize
	}
	if opts.FetchBudget <= 0 {
		opts.FetchBudget = 1
	}
	return &Repairer{
		store:   store,
		fetcher: fetcher,
		logger:  logging.NewComponentLogger(logger, "repair"),
		opts:    opts,
	}
}

// Repair gap-fills the samples a scan flagged: fields missing or empty
// locally are overwritten from fresh fetches, populated fields are never
// touched. Changes persist per batch so partial progress survives crashes
// and budget exhaustion. A failed batch fetch is logged and skipped; its
// samples stay flagged for the next run.
func (r *Repairer) Repair(ctx context.Context, scan *ScanResult) (Report, error) {
	report := Report{
		Total:       scan.Total,
		Checked:     scan.Checked,
		IssuesFound: scan.IssueCount(),
		FetchBudget: r.opts.FetchBudget,
	}

	batches := partition(scan.SampleIDs(), r.opts.BatchSize)
	for index, batch := range batches {
		if report.FetchesUsed >= r.opts.FetchBudget {
			for _, rest := range batches[index:] {
				report.RemainingSamples += len(rest)
			}
			r.logger.Info("fetch budget exhausted, deferring remainder",
				logging.Int("remaining_samples", report.RemainingSamples))
			break
		}
		if index > 0 {
			if err := sleepCtx(ctx, r.opts.Pause); err != nil {
				return report, err
			}
		}

		found, err := r.fetcher.FetchByIDs(ctx, batch, freesound.DefaultFields)
		report.FetchesUsed++
		if err != nil {
			r.logger.Warn("batch fetch failed, skipping batch",
				logging.Int(logging.FieldBatch, index),
				logging.Int("batch_size", len(batch)),
				logging.Error(err))
			report.BatchesSkipped++
			report.RemainingSamples += len(batch)
			continue
		}

		updates, stats := r.patchBatch(ctx, batch, found)
		report.FieldsFilled += stats.filled
		report.MarkedUnavailable += stats.unavailable

		if err := r.store.PutBatch(ctx, updates); err != nil {
			return report, err
		}
		r.logger.Debug("batch persisted",
			logging.Int(logging.FieldBatch, index),
			logging.Int("records", len(updates)))
	}

	report.Log(r.logger)
	return report, nil
}

type patchStats struct {
	filled      int
	unavailable int
}

func (r *Repairer) patchBatch(ctx context.Context, batch []int64, found map[int64]map[string]any) (map[int64]checkpoint.Record, patchStats) {
	now := time.Now().UTC()
	updates := make(map[int64]checkpoint.Record, len(batch))
	var stats patchStats

	for _, sampleID := range batch {
		record, ok, err := r.store.Get(ctx, sampleID)
		if err != nil {
			r.logger.Warn("skipping unreadable record",
				logging.Int64(logging.FieldSampleID, sampleID),
				logging.Error(err))
			continue
		}
		if !ok {
			continue
		}

		fetched, present := found[sampleID]
		if !present {
			// Deleted upstream: remember so future scans stop flagging it.
			record.MarkUnavailable(defectiveFields(record))
			record.MarkChecked(now)
			stats.unavailable++
			updates[sampleID] = record
			continue
		}

		var stillMissing []string
		for _, field := range ExpectedFields {
			if !needsFill(record, field) {
				continue
			}
			value, has := fetched[field.Name]
			if !has || checkpoint.Empty(value) {
				stillMissing = append(stillMissing, field.Name)
				continue
			}
			record[field.Name] = value
			stats.filled++
		}
		record.AddMissingFromFreesound(stillMissing)
		record.MarkChecked(now)
		updates[sampleID] = record
	}
	return updates, stats
}

// Refresh unconditionally overwrites the engagement counters (downloads,
// ratings, comments) for the given samples with freshly fetched values.
// This is a distinct operation from Repair: gap-filling never replaces a
// populated value, a refresh always does, but only for EngagementFields.
func (r *Repairer) Refresh(ctx context.Context, sampleIDs []int64) (Report, error) {
	report := Report{FetchBudget: r.opts.FetchBudget}

	batches := partition(sampleIDs, r.opts.BatchSize)
	for index, batch := range batches {
		if report.FetchesUsed >= r.opts.FetchBudget {
			for _, rest := range batches[index:] {
				report.RemainingSamples += len(rest)
			}
			break
		}
		if index > 0 {
			if err := sleepCtx(ctx, r.opts.Pause); err != nil {
				return report, err
			}
		}

		found, err := r.fetcher.FetchByIDs(ctx, batch, refreshFields())
		report.FetchesUsed++
		if err != nil {
			r.logger.Warn("refresh batch fetch failed, skipping batch",
				logging.Int(logging.FieldBatch, index),
				logging.Error(err))
			report.BatchesSkipped++
			report.RemainingSamples += len(batch)
			continue
		}

		now := time.Now().UTC()
		updates := make(map[int64]checkpoint.Record, len(batch))
		for _, sampleID := range batch {
			record, ok, err := r.store.Get(ctx, sampleID)
			if err != nil || !ok {
				continue
			}
			fetched, present := found[sampleID]
			if !present {
				record.MarkUnavailable(nil)
				record.MarkChecked(now)
				report.MarkedUnavailable++
				updates[sampleID] = record
				continue
			}
			for _, name := range EngagementFields {
				value, has := fetched[name]
				if !has {
					continue
				}
				record[name] = value
				report.FieldsRefreshed++
			}
			record.MarkChecked(now)
			updates[sampleID] = record
			report.Checked++
		}

		if err := r.store.PutBatch(ctx, updates); err != nil {
			return report, err
		}
	}

	report.Total = len(sampleIDs)
	report.Log(r.logger)
	return report, nil
}

// needsFill reports whether gap-filling may write this field: only fields
// missing or empty locally qualify. A present-but-mistyped value is left
// alone, matching the overwrite policy of the gap-filling pass.
func needsFill(record checkpoint.Record, field Field) bool {
	kind, flagged := classifyField(record, field)
	return flagged && kind != IssueInvalidType
}

// defectiveFields lists the fields currently missing or empty on a record,
// used when the whole sample turns out to be deleted upstream.
func defectiveFields(record checkpoint.Record) []string {
	var names []string
	for _, field := range ExpectedFields {
		if needsFill(record, field) {
			names = append(names, field.Name)
		}
	}
	return names
}

func refreshFields() []string {
	fields := make([]string, 0, len(EngagementFields)+1)
	fields = append(fields, "id")
	fields = append(fields, EngagementFields...)
	return fields
}

func partition(ids []int64, size int) [][]int64 {
	if size <= 0 || len(ids) == 0 {
		return nil
	}
	batches := make([][]int64, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		batches = append(batches, ids[start:end])
	}
	return batches
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
