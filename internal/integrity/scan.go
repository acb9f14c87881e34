package integrity

import (
	"context"
	"log/slog"
	"time"

	"samplegraph/internal/checkpoint"
	"samplegraph/internal/logging"
)

// Scanner walks every metadata record and classifies data-quality defects
// against the expected field schema.
type Scanner struct {
	store  *checkpoint.Store
	logger *slog.Logger
}

// NewScanner constructs a scanner over the given metadata store.
func NewScanner(store *checkpoint.Store, logger *slog.Logger) *Scanner {
	return &Scanner{
		store:  store,
		logger: logging.NewComponentLogger(logger, "scan"),
	}
}

// Scan evaluates every record and returns the aggregated issue set. Records
// already confirmed unavailable upstream are skipped entirely, and fields
// known missing upstream are never re-flagged, which keeps the scan
// idempotent across runs.
func (s *Scanner) Scan(ctx context.Context) (*ScanResult, error) {
	result := &ScanResult{
		ScannedAt: time.Now().UTC(),
		PerField:  make(map[string]int),
	}

	err := s.store.ForEach(ctx, func(sampleID int64, record checkpoint.Record) error {
		result.Total++
		if record.Unavailable() {
			return nil
		}
		result.Checked++

		excused := record.MissingFromFreesound()
		for _, field := range ExpectedFields {
			if _, ok := excused[field.Name]; ok {
				continue
			}
			issueKind, flagged := classifyField(record, field)
			if !flagged {
				continue
			}
			result.Issues = append(result.Issues, Issue{
				SampleID: sampleID,
				Kind:     issueKind,
				Field:    field.Name,
			})
			result.PerField[field.Name]++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("scan complete",
		logging.Int("total", result.Total),
		logging.Int("checked", result.Checked),
		logging.Int("issues", result.IssueCount()),
		logging.Int("samples_needing_repair", len(result.SampleIDs())))
	return result, nil
}

// ScanOrReuse loads a persisted scan result younger than maxAge, falling
// back to a fresh scan that is then persisted to resultPath.
func (s *Scanner) ScanOrReuse(ctx context.Context, resultPath string, maxAge time.Duration) (*ScanResult, error) {
	if cached := LoadRecentScanResult(resultPath, maxAge); cached != nil {
		s.logger.Info("reusing persisted scan result",
			logging.String("path", resultPath),
			logging.Int("issues", cached.IssueCount()))
		return cached, nil
	}

	result, err := s.Scan(ctx)
	if err != nil {
		return nil, err
	}
	if err := result.Save(resultPath); err != nil {
		s.logger.Warn("failed to persist scan result", logging.Error(err))
	}
	return result, nil
}

// classifyField applies the missing/empty/wrong-type rules for one field.
// The boolean reports whether an issue was found.
func classifyField(record checkpoint.Record, field Field) (IssueKind, bool) {
	value, present := record[field.Name]
	if !present {
		if field.Nullable {
			return "", false
		}
		return IssueMissingField, true
	}
	if value == nil {
		if field.Nullable {
			return "", false
		}
		return IssueEmptyValue, true
	}
	if checkpoint.Empty(value) {
		return IssueEmptyValue, true
	}
	if !matchesKind(value, field.Kind) {
		return IssueInvalidType, true
	}
	return "", false
}
