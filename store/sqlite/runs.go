package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rrmetrics/eventcode/dictionary"
	"github.com/rrmetrics/eventcode/domain"
	"github.com/rrmetrics/eventcode/errs"
	"github.com/rrmetrics/eventcode/format"
	"github.com/rrmetrics/eventcode/grid"
	"github.com/rrmetrics/eventcode/pipeline"
)

// Run is the metadata of a stored build.
type Run struct {
	ID        uuid.UUID
	Domain    domain.Domain
	MaxUnit   uint64
	Stats     pipeline.Stats
	CreatedAt time.Time
}

const runColumns = `id, domain, max_unit, cells, masked, burned, tiles, elapsed_ns, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run       Run
		id        string
		doc       string
		maxUnit   int64
		elapsed   int64
		createdAt int64
	)
	if err := row.Scan(&id, &doc, &maxUnit, &run.Stats.Cells, &run.Stats.Masked,
		&run.Stats.Burned, &run.Stats.Tiles, &elapsed, &createdAt); err != nil {
		return Run{}, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return Run{}, fmt.Errorf("run id %q: %w", id, err)
	}

	dom, err := domain.Parse([]byte(doc))
	if err != nil {
		return Run{}, fmt.Errorf("run %s: %w", id, err)
	}

	run.ID = parsed
	run.Domain = dom
	run.MaxUnit = uint64(maxUnit) //nolint:gosec
	run.Stats.Elapsed = time.Duration(elapsed)
	run.CreatedAt = fromMillis(createdAt)

	return run, nil
}

// SaveResult stores the run metadata, key tables and packed key grid of res.
// A run id that is already stored fails with errs.ErrRunExists.
func (s *Store) SaveResult(ctx context.Context, res *pipeline.Result) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	dom := res.Domain
	doc, err := dom.Marshal()
	if err != nil {
		return fmt.Errorf("marshal domain: %w", err)
	}

	keys, err := grid.Marshal(res.Keys,
		grid.WithFingerprint(dom.Fingerprint()),
		grid.WithCompression(dom.Compression),
		grid.WithWidth(dom.Width),
	)
	if err != nil {
		return fmt.Errorf("marshal keys: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save run: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, dataset, version, fingerprint, domain, max_unit,
		   cells, masked, burned, tiles, elapsed_ns, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.RunID.String(),
		dom.Dataset,
		dom.RunVersion(),
		int64(dom.Fingerprint()), //nolint:gosec
		string(doc),
		int64(res.MaxUnit), //nolint:gosec
		res.Stats.Cells,
		res.Stats.Masked,
		res.Stats.Burned,
		res.Stats.Tiles,
		int64(res.Stats.Elapsed),
		toMillis(time.Now()),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", errs.ErrRunExists, res.RunID)
		}

		return fmt.Errorf("insert run: %w", err)
	}

	for _, t := range []*dictionary.KeyTable{res.FireYear, res.Severity, res.Composite} {
		if t == nil {
			continue
		}

		data, err := t.Encode(dom.Compression, false)
		if err != nil {
			return fmt.Errorf("marshal %s table: %w", t.Kind(), err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO key_tables (run_id, kind, entries, data) VALUES (?, ?, ?, ?)`,
			res.RunID.String(), int(t.Kind()), t.Len(), data,
		); err != nil {
			return fmt.Errorf("insert %s table: %w", t.Kind(), err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO grids (run_id, cells, data) VALUES (?, ?, ?)`,
		res.RunID.String(), len(res.Keys), keys,
	); err != nil {
		return fmt.Errorf("insert keys: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save run: %w", err)
	}

	return nil
}

// GetRun returns the metadata of one run.
func (s *Store) GetRun(ctx context.Context, id uuid.UUID) (Run, error) {
	if err := s.ready(ctx); err != nil {
		return Run{}, err
	}

	run, err := scanRun(s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", errs.ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}

	return run, nil
}

// ListRuns returns the runs of dataset, newest first. An empty dataset lists every run.
func (s *Store) ListRuns(ctx context.Context, dataset string) ([]Run, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs
		 WHERE ? = '' OR dataset = ?
		 ORDER BY created_at DESC, id`,
		dataset, dataset,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

// DeleteRun removes a run and everything stored for it.
func (s *Store) DeleteRun(ctx context.Context, id uuid.UUID) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete run: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"aggregates", "grids", "key_tables"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE run_id = ?`, id.String()); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", errs.ErrRunNotFound, id)
	}

	return tx.Commit()
}

// LoadKeyTable returns the key table of kind stored for a run, verified
// against the run's domain fingerprint. A build without severity has no
// severity table; loading it fails with errs.ErrRunNotFound.
func (s *Store) LoadKeyTable(ctx context.Context, id uuid.UUID, kind format.TableKind) (*dictionary.KeyTable, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	var (
		data []byte
		fp   int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT k.data, r.fingerprint FROM key_tables k JOIN runs r ON r.id = k.run_id
		 WHERE k.run_id = ? AND k.kind = ?`,
		id.String(), int(kind),
	).Scan(&data, &fp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s table of %s", errs.ErrRunNotFound, kind, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s table: %w", kind, err)
	}

	return dictionary.ParseForDomain(data, uint64(fp)) //nolint:gosec
}

// LoadKeys returns the packed key grid of a run in cell order.
func (s *Store) LoadKeys(ctx context.Context, id uuid.UUID) ([]uint64, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	var (
		data []byte
		fp   int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT g.data, r.fingerprint FROM grids g JOIN runs r ON r.id = g.run_id WHERE g.run_id = ?`,
		id.String(),
	).Scan(&data, &fp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: keys of %s", errs.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load keys: %w", err)
	}

	g, err := grid.UnmarshalForDomain(data, uint64(fp)) //nolint:gosec
	if err != nil {
		return nil, err
	}

	return g.Codes, nil
}

// LoadDecoder rebuilds the key decoder of a run from its stored tables.
func (s *Store) LoadDecoder(ctx context.Context, id uuid.UUID) (*pipeline.Decoder, error) {
	run, err := s.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}

	fireYear, err := s.LoadKeyTable(ctx, id, format.KindFireYear)
	if err != nil {
		return nil, err
	}

	sev, err := s.LoadKeyTable(ctx, id, format.KindSeverity)
	if errors.Is(err, errs.ErrRunNotFound) {
		sev = nil
	} else if err != nil {
		return nil, err
	}

	return pipeline.NewDecoder(run.Domain, run.MaxUnit, fireYear, sev)
}
