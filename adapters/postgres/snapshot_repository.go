package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/igordot/SuMu/domain/core"
	"github.com/igordot/SuMu/domain/genomics"
	"github.com/igordot/SuMu/internal/errors"
	"github.com/igordot/SuMu/ports"
)

// snapshotRepository implements ports.SnapshotStore on Postgres. Tables are
// stored as JSONB per cohort; one row per cohort, last write wins.
type snapshotRepository struct {
	db *sqlx.DB
}

// NewSnapshotRepository creates a snapshot repository.
func NewSnapshotRepository(db *sqlx.DB) ports.SnapshotStore {
	return &snapshotRepository{db: db}
}

// Connect opens a Postgres connection and ensures the schema exists.
func Connect(databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, errors.Wrap(errors.WithCode(errors.CodeDatabaseError, err), "failed to connect to postgres")
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.WithCode(errors.CodeDatabaseError, err), "failed to ensure snapshot schema")
	}
	return db, nil
}

const schema = `CREATE TABLE IF NOT EXISTS cohort_snapshots (
	cohort      TEXT PRIMARY KEY,
	clinical    JSONB NOT NULL,
	mutations   JSONB NOT NULL,
	expression  JSONB,
	copy_number JSONB,
	fetched_at  TIMESTAMPTZ NOT NULL
)`

// Save upserts the snapshot for a cohort.
func (r *snapshotRepository) Save(ctx context.Context, snap *genomics.CohortSnapshot) error {
	clinicalJSON, err := json.Marshal(snap.Clinical)
	if err != nil {
		return fmt.Errorf("failed to marshal clinical table: %w", err)
	}
	mutationsJSON, err := json.Marshal(snap.Mutations)
	if err != nil {
		return fmt.Errorf("failed to marshal mutation table: %w", err)
	}
	expressionJSON, err := marshalMatrix(snap.Expression)
	if err != nil {
		return fmt.Errorf("failed to marshal expression matrix: %w", err)
	}
	copyNumberJSON, err := marshalMatrix(snap.CopyNumber)
	if err != nil {
		return fmt.Errorf("failed to marshal copy-number matrix: %w", err)
	}

	query := `INSERT INTO cohort_snapshots (cohort, clinical, mutations, expression, copy_number, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (cohort) DO UPDATE SET
			clinical = EXCLUDED.clinical,
			mutations = EXCLUDED.mutations,
			expression = EXCLUDED.expression,
			copy_number = EXCLUDED.copy_number,
			fetched_at = EXCLUDED.fetched_at`

	_, err = r.db.ExecContext(ctx, query,
		snap.Cohort, clinicalJSON, mutationsJSON, expressionJSON, copyNumberJSON, snap.FetchedAt)
	if err != nil {
		return errors.Wrapf(errors.WithCode(errors.CodeDatabaseError, err), "failed to save snapshot for cohort %s", snap.Cohort)
	}
	return nil
}

// Get retrieves a cohort snapshot, or a not-found error.
func (r *snapshotRepository) Get(ctx context.Context, cohort string) (*genomics.CohortSnapshot, error) {
	query := `SELECT clinical, mutations, expression, copy_number, fetched_at
		FROM cohort_snapshots WHERE cohort = $1`

	var clinicalJSON, mutationsJSON []byte
	var expressionJSON, copyNumberJSON sql.NullString
	var fetchedAt time.Time

	err := r.db.QueryRowContext(ctx, query, cohort).Scan(
		&clinicalJSON, &mutationsJSON, &expressionJSON, &copyNumberJSON, &fetchedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", core.ErrCohortNotFound, cohort)
		}
		return nil, errors.Wrapf(errors.WithCode(errors.CodeDatabaseError, err), "failed to load snapshot for cohort %s", cohort)
	}

	snap := &genomics.CohortSnapshot{Cohort: cohort, FetchedAt: fetchedAt}
	if err := json.Unmarshal(clinicalJSON, &snap.Clinical); err != nil {
		return nil, fmt.Errorf("failed to unmarshal clinical table: %w", err)
	}
	if err := json.Unmarshal(mutationsJSON, &snap.Mutations); err != nil {
		return nil, fmt.Errorf("failed to unmarshal mutation table: %w", err)
	}
	if snap.Expression, err = unmarshalMatrix(expressionJSON); err != nil {
		return nil, fmt.Errorf("failed to unmarshal expression matrix: %w", err)
	}
	if snap.CopyNumber, err = unmarshalMatrix(copyNumberJSON); err != nil {
		return nil, fmt.Errorf("failed to unmarshal copy-number matrix: %w", err)
	}
	return snap, nil
}

// Delete drops a cohort snapshot. Deleting a missing cohort is a no-op.
func (r *snapshotRepository) Delete(ctx context.Context, cohort string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cohort_snapshots WHERE cohort = $1`, cohort)
	if err != nil {
		return errors.Wrapf(errors.WithCode(errors.CodeDatabaseError, err), "failed to delete snapshot for cohort %s", cohort)
	}
	return nil
}

func marshalMatrix(m *genomics.GeneMatrix) (interface{}, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func unmarshalMatrix(raw sql.NullString) (*genomics.GeneMatrix, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var m genomics.GeneMatrix
	if err := json.Unmarshal([]byte(raw.String), &m); err != nil {
		return nil, err
	}
	return &m, nil
}
