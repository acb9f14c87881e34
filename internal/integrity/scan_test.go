package integrity_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"samplegraph/internal/checkpoint"
	"samplegraph/internal/integrity"
	"samplegraph/internal/logging"
	"samplegraph/internal/testsupport"
)

func seedRecords(t *testing.T, store *checkpoint.Store, records map[int64]checkpoint.Record) {
	t.Helper()
	if err := store.PutBatch(context.Background(), records); err != nil {
		t.Fatalf("seed records: %v", err)
	}
}

func TestScanFlagsDefects(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	missing := testsupport.SampleRecord(2)
	delete(missing, "uploader_id")
	empty := testsupport.SampleRecord(3)
	empty["name"] = ""
	mistyped := testsupport.SampleRecord(4)
	mistyped["duration"] = "1.5"

	seedRecords(t, store, map[int64]checkpoint.Record{
		1: testsupport.SampleRecord(1),
		2: missing,
		3: empty,
		4: mistyped,
	})

	result, err := integrity.NewScanner(store, logging.NewNop()).Scan(context.Background())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if result.Total != 4 || result.Checked != 4 {
		t.Fatalf("total=%d checked=%d, want 4/4", result.Total, result.Checked)
	}
	if got := result.IssueCount(); got != 3 {
		t.Fatalf("issue count = %d, want 3: %+v", got, result.Issues)
	}

	kinds := make(map[int64]integrity.IssueKind)
	for _, issue := range result.Issues {
		kinds[issue.SampleID] = issue.Kind
	}
	if kinds[2] != integrity.IssueMissingField {
		t.Errorf("sample 2 kind = %q, want missing_field", kinds[2])
	}
	if kinds[3] != integrity.IssueEmptyValue {
		t.Errorf("sample 3 kind = %q, want empty_value", kinds[3])
	}
	if kinds[4] != integrity.IssueInvalidType {
		t.Errorf("sample 4 kind = %q, want invalid_type", kinds[4])
	}
	if ids := result.SampleIDs(); len(ids) != 3 || ids[0] != 2 || ids[2] != 4 {
		t.Errorf("sample ids = %v, want [2 3 4]", ids)
	}
}

func TestScanAllowsNullableFields(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	record := testsupport.SampleRecord(1)
	record["geotag"] = nil
	delete(record, "pack")
	seedRecords(t, store, map[int64]checkpoint.Record{1: record})

	result, err := integrity.NewScanner(store, logging.NewNop()).Scan(context.Background())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if result.IssueCount() != 0 {
		t.Fatalf("expected clean scan, got %+v", result.Issues)
	}
}

func TestScanSkipsUnavailableAndExcused(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	gone := testsupport.SampleRecord(1)
	delete(gone, "uploader_id")
	gone.MarkUnavailable([]string{"uploader_id"})

	excused := testsupport.SampleRecord(2)
	delete(excused, "uploader_id")
	excused.AddMissingFromFreesound([]string{"uploader_id"})

	seedRecords(t, store, map[int64]checkpoint.Record{1: gone, 2: excused})

	result, err := integrity.NewScanner(store, logging.NewNop()).Scan(context.Background())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if result.Total != 2 || result.Checked != 1 {
		t.Errorf("total=%d checked=%d, want 2/1", result.Total, result.Checked)
	}
	if result.IssueCount() != 0 {
		t.Errorf("expected no issues, got %+v", result.Issues)
	}
}

func TestScanOrReuseHonorsMaxAge(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	bad := testsupport.SampleRecord(1)
	delete(bad, "name")
	seedRecords(t, store, map[int64]checkpoint.Record{1: bad})

	scanner := integrity.NewScanner(store, logging.NewNop())
	path := filepath.Join(cfg.Paths.ReportDir, "scan.json")

	first, err := scanner.ScanOrReuse(context.Background(), path, time.Hour)
	if err != nil {
		t.Fatalf("first scan: %v", err)
	}
	if first.IssueCount() != 1 {
		t.Fatalf("first scan issues = %d, want 1", first.IssueCount())
	}

	// The defect is fixed but the cached result is still fresh, so the
	// stale issue set is returned untouched.
	seedRecords(t, store, map[int64]checkpoint.Record{1: testsupport.SampleRecord(1)})
	reused, err := scanner.ScanOrReuse(context.Background(), path, time.Hour)
	if err != nil {
		t.Fatalf("reuse: %v", err)
	}
	if reused.IssueCount() != 1 {
		t.Fatalf("reused issues = %d, want cached 1", reused.IssueCount())
	}

	fresh, err := scanner.ScanOrReuse(context.Background(), path, 0)
	if err != nil {
		t.Fatalf("fresh scan: %v", err)
	}
	if fresh.IssueCount() != 0 {
		t.Fatalf("fresh issues = %d, want 0", fresh.IssueCount())
	}
}

func TestLoadRecentScanResultIgnoresCorrupt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scan.json")
	if got := integrity.LoadRecentScanResult(path, time.Hour); got != nil {
		t.Fatalf("missing file should yield nil, got %+v", got)
	}

	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := integrity.LoadRecentScanResult(path, time.Hour); got != nil {
		t.Fatalf("corrupt file should yield nil, got %+v", got)
	}
}
