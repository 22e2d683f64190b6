package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rrmetrics/eventcode/aggregate"
	"github.com/rrmetrics/eventcode/errs"
)

// SaveRecords stores aggregate records of a run. A record with the same
// attribute, year and key replaces the stored one.
func (s *Store) SaveRecords(ctx context.Context, id uuid.UUID, records []aggregate.Record) error {
	if _, err := s.GetRun(ctx, id); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save records: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO aggregates (run_id, attribute, year, packed_key, value) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert record: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if r.Attribute == "" {
			return fmt.Errorf("%w: record of key %d has no attribute", errs.ErrInvalidConfig, r.Key)
		}

		if _, err := stmt.ExecContext(ctx, id.String(), r.Attribute, r.Year, int64(r.Key), r.Value); err != nil { //nolint:gosec
			return fmt.Errorf("insert record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save records: %w", err)
	}

	return nil
}

// LoadRecords returns the records of a run ordered by attribute, year and
// key. An empty attribute returns every record.
func (s *Store) LoadRecords(ctx context.Context, id uuid.UUID, attribute string) ([]aggregate.Record, error) {
	if _, err := s.GetRun(ctx, id); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT packed_key, attribute, year, value FROM aggregates
		 WHERE run_id = ? AND (? = '' OR attribute = ?)`,
		id.String(), attribute, attribute,
	)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	defer rows.Close()

	var records []aggregate.Record
	for rows.Next() {
		var (
			r   aggregate.Record
			key int64
		)
		if err := rows.Scan(&key, &r.Attribute, &r.Year, &r.Value); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		r.Key = uint64(key) //nolint:gosec
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	aggregate.SortRecords(records)

	return records, nil
}
