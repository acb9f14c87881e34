package checkpoint_test

import (
	"context"
	"testing"
	"time"

	"samplegraph/internal/checkpoint"
	"samplegraph/internal/testsupport"
)

func TestStorePutGetRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	record := testsupport.SampleRecord(7)
	if err := store.Put(ctx, 7, record); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	fetched, ok, err := store.Get(ctx, 7)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("expected record to be present")
	}
	if fetched["name"] != "sample" || fetched["duration"] != 1.5 {
		t.Fatalf("unexpected record: %#v", fetched)
	}

	_, ok, err = store.Get(ctx, 999)
	if err != nil {
		t.Fatalf("Get missing failed: %v", err)
	}
	if ok {
		t.Fatal("expected absent record to report not found")
	}
}

func TestStorePutBatchIsAtomic(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	records := map[int64]checkpoint.Record{
		1: testsupport.SampleRecord(1),
		2: testsupport.SampleRecord(2),
		3: testsupport.SampleRecord(3),
	}
	if err := store.PutBatch(ctx, records); err != nil {
		t.Fatalf("PutBatch failed: %v", err)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 records, got %d", count)
	}

	ids, err := store.SampleIDs(ctx)
	if err != nil {
		t.Fatalf("SampleIDs failed: %v", err)
	}
	if len(ids) != 3 || ids[0] != 1 || ids[2] != 3 {
		t.Fatalf("unexpected ids: %v", ids)
	}
}

func TestStoreForEachOrdersByID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	for _, id := range []int64{30, 10, 20} {
		if err := store.Put(ctx, id, testsupport.SampleRecord(id)); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	var seen []int64
	err := store.ForEach(ctx, func(id int64, record checkpoint.Record) error {
		seen = append(seen, id)
		return nil
	})
	if err != nil {
		t.Fatalf("ForEach failed: %v", err)
	}
	if len(seen) != 3 || seen[0] != 10 || seen[1] != 20 || seen[2] != 30 {
		t.Fatalf("unexpected iteration order: %v", seen)
	}
}

func TestStoreStaleSampleIDs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if err := store.Put(ctx, 1, testsupport.SampleRecord(1)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	past, err := store.StaleSampleIDs(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("StaleSampleIDs failed: %v", err)
	}
	if len(past) != 0 {
		t.Fatalf("expected no stale records against a past cutoff, got %v", past)
	}

	future, err := store.StaleSampleIDs(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("StaleSampleIDs failed: %v", err)
	}
	if len(future) != 1 || future[0] != 1 {
		t.Fatalf("expected record to be stale against a future cutoff, got %v", future)
	}
}

func TestStoreSetPriorityScore(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if err := store.Put(ctx, 1, testsupport.SampleRecord(1)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.SetPriorityScore(ctx, 1, 0.75, true); err != nil {
		t.Fatalf("SetPriorityScore failed: %v", err)
	}
	// Updating a missing row is a no-op, not an error.
	if err := store.SetPriorityScore(ctx, 999, 0.1, false); err != nil {
		t.Fatalf("SetPriorityScore on absent row failed: %v", err)
	}
}

func TestRecordBookkeeping(t *testing.T) {
	record := checkpoint.Record{}
	if record.Unavailable() {
		t.Fatal("fresh record should not be unavailable")
	}

	record.MarkUnavailable([]string{"duration", "uploader_id"})
	if !record.Unavailable() {
		t.Fatal("expected record to be marked unavailable")
	}
	missing := record.MissingFromFreesound()
	if _, ok := missing["uploader_id"]; !ok {
		t.Fatalf("expected uploader_id in missing set, got %v", missing)
	}

	// Merging keeps earlier entries.
	record.AddMissingFromFreesound([]string{"bitrate"})
	missing = record.MissingFromFreesound()
	if len(missing) != 3 {
		t.Fatalf("expected merged set of 3, got %v", missing)
	}
}

func TestEmptyClassifier(t *testing.T) {
	cases := []struct {
		name   string
		value  any
		expect bool
	}{
		{"nil", nil, true},
		{"empty string", "", true},
		{"empty slice", []any{}, true},
		{"empty map", map[string]any{}, true},
		{"zero number", float64(0), false},
		{"false", false, false},
		{"populated string", "wav", false},
	}
	for _, tc := range cases {
		if got := checkpoint.Empty(tc.value); got != tc.expect {
			t.Errorf("%s: expected Empty=%v, got %v", tc.name, tc.expect, got)
		}
	}
}
