package checkpoint

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Get fetches one sample record. The boolean reports presence.
func (s *Store) Get(ctx context.Context, sampleID int64) (Record, bool, error) {
	ctx = ensureContext(ctx)
	var data string
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM metadata WHERE sample_id = ?", sampleID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query record %d: %w", sampleID, err)
	}

	var record Record
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, false, fmt.Errorf("decode record %d: %w", sampleID, err)
	}
	return record, true, nil
}

// Put inserts or replaces one sample record, refreshing its last_updated
// column.
func (s *Store) Put(ctx context.Context, sampleID int64, record Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode record %d: %w", sampleID, err)
	}
	return s.execWithRetry(ctx,
		`INSERT INTO metadata (sample_id, data, last_updated)
         VALUES (?, ?, ?)
         ON CONFLICT(sample_id) DO UPDATE SET
             data = excluded.data,
             last_updated = excluded.last_updated`,
		sampleID, string(data), time.Now().UTC().Format(time.RFC3339Nano))
}

// PutBatch writes several records in one transaction so a crash mid-repair
// leaves either all or none of a batch persisted.
func (s *Store) PutBatch(ctx context.Context, records map[int64]Record) error {
	if len(records) == 0 {
		return nil
	}
	ctx = ensureContext(ctx)
	now := time.Now().UTC().Format(time.RFC3339Nano)

	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin batch tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO metadata (sample_id, data, last_updated)
             VALUES (?, ?, ?)
             ON CONFLICT(sample_id) DO UPDATE SET
                 data = excluded.data,
                 last_updated = excluded.last_updated`)
		if err != nil {
			return fmt.Errorf("prepare batch insert: %w", err)
		}
		defer stmt.Close()

		for sampleID, record := range records {
			data, err := json.Marshal(record)
			if err != nil {
				return fmt.Errorf("encode record %d: %w", sampleID, err)
			}
			if _, err := stmt.ExecContext(ctx, sampleID, string(data), now); err != nil {
				return fmt.Errorf("insert record %d: %w", sampleID, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit batch: %w", err)
		}
		return nil
	})
}

// Count returns the number of sample records.
func (s *Store) Count(ctx context.Context) (int, error) {
	ctx = ensureContext(ctx)
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM metadata").Scan(&count); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return count, nil
}

// SampleIDs returns all sample ids in ascending order.
func (s *Store) SampleIDs(ctx context.Context) ([]int64, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, "SELECT sample_id FROM metadata ORDER BY sample_id")
	if err != nil {
		return nil, fmt.Errorf("query sample ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan sample id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ForEach streams every record to fn in ascending sample-id order. Iteration
// stops at the first error fn returns.
func (s *Store) ForEach(ctx context.Context, fn func(sampleID int64, record Record) error) error {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, "SELECT sample_id, data FROM metadata ORDER BY sample_id")
	if err != nil {
		return fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id   int64
			data string
		)
		if err := rows.Scan(&id, &data); err != nil {
			return fmt.Errorf("scan record: %w", err)
		}
		var record Record
		if err := json.Unmarshal([]byte(data), &record); err != nil {
			return fmt.Errorf("decode record %d: %w", id, err)
		}
		if err := fn(id, record); err != nil {
			return err
		}
	}
	return rows.Err()
}

// StaleSampleIDs returns ids whose records were last written before cutoff,
// used to pick metadata-refresh candidates.
func (s *Store) StaleSampleIDs(ctx context.Context, cutoff time.Time) ([]int64, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		"SELECT sample_id FROM metadata WHERE last_updated IS NULL OR last_updated < ? ORDER BY sample_id",
		cutoff.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("query stale ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan stale id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetPriorityScore updates the query-acceleration columns for a sample.
func (s *Store) SetPriorityScore(ctx context.Context, sampleID int64, score float64, dormant bool) error {
	dormantVal := 0
	if dormant {
		dormantVal = 1
	}
	return s.execWithRetry(ctx,
		"UPDATE metadata SET priority_score = ?, is_dormant = ? WHERE sample_id = ?",
		score, dormantVal, sampleID)
}

// HasMetadataTable reports whether the metadata table exists at all. The
// verifier uses this to distinguish a corrupt cache from an empty one.
func (s *Store) HasMetadataTable(ctx context.Context) (bool, error) {
	ctx = ensureContext(ctx)
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='metadata'",
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check metadata table: %w", err)
	}
	return count > 0, nil
}
