package integrity

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"samplegraph/internal/fileutil"
)

// IssueKind classifies one data-quality defect.
type IssueKind string

const (
	IssueMissingField IssueKind = "missing_field"
	IssueEmptyValue   IssueKind = "empty_value"
	IssueInvalidType  IssueKind = "invalid_type"
)

// Issue records a single defect on one record field.
type Issue struct {
	SampleID int64     `json:"sample_id"`
	Kind     IssueKind `json:"kind"`
	Field    string    `json:"field"`
}

// ScanResult aggregates one scan pass two ways: per sample (drives batched
// repair) and per field (drives reporting).
type ScanResult struct {
	ScannedAt time.Time      `json:"scanned_at"`
	Total     int            `json:"total"`
	Checked   int            `json:"checked"`
	Issues    []Issue        `json:"issues"`
	PerField  map[string]int `json:"per_field"`
}

// SampleIDs returns the distinct ids needing repair, ascending.
func (r *ScanResult) SampleIDs() []int64 {
	seen := make(map[int64]struct{}, len(r.Issues))
	for _, issue := range r.Issues {
		seen[issue.SampleID] = struct{}{}
	}
	ids := make([]int64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// IssueCount returns the number of recorded defects.
func (r *ScanResult) IssueCount() int {
	return len(r.Issues)
}

// Save persists the scan result so successive pipeline stages reuse it
// instead of rescanning.
func (r *ScanResult) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal scan result: %w", err)
	}
	if err := fileutil.WriteAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write scan result: %w", err)
	}
	return nil
}

// LoadRecentScanResult returns a persisted scan result younger than maxAge,
// or nil when none is usable. A corrupt or stale file is ignored, never an
// error: the caller simply rescans.
func LoadRecentScanResult(path string, maxAge time.Duration) *ScanResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var result ScanResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil
	}
	if result.ScannedAt.IsZero() || time.Since(result.ScannedAt) > maxAge {
		return nil
	}
	return &result
}
