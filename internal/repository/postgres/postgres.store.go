// FilePath: internal/repository/postgres/postgres.store.go
package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/itsatony/pillhub/internal/database"
	"github.com/itsatony/pillhub/internal/errors"
	"github.com/itsatony/pillhub/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

var schemaQueries = []string{
	`CREATE TABLE IF NOT EXISTS records (
		kind TEXT PRIMARY KEY,
		data JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS dose_executions (
		schedule_id TEXT NOT NULL,
		day DATE NOT NULL,
		executed_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (schedule_id, day)
	)`,
}

// RecordStore keeps one JSONB row per record kind
type RecordStore struct {
	PostgresBaseRepo
}

// NewRecordStore creates the schema if needed and returns the store
func NewRecordStore(ctx context.Context, db database.DB) (*RecordStore, error) {
	repo := &RecordStore{PostgresBaseRepo: PostgresBaseRepo{db: db}}
	if err := repo.initializeSchema(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *RecordStore) initializeSchema(ctx context.Context) error {
	for _, query := range schemaQueries {
		if _, err := r.ExecContext(ctx, query); err != nil {
			return err
		}
	}
	nuts.L.Infof("[PostgresRecordStore] Schema ready")
	return nil
}

func (r *RecordStore) Load(ctx context.Context, kind repository.Kind) ([]byte, error) {
	var doc []byte
	err := r.db.GetDB().GetContext(ctx, &doc, `SELECT data FROM records WHERE kind = $1`, string(kind))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.NewDatabaseError("failed to read "+string(kind), err)
	}
	return doc, nil
}

func (r *RecordStore) Save(ctx context.Context, kind repository.Kind, doc []byte) error {
	query := `
		INSERT INTO records (kind, data, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (kind) DO UPDATE SET
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at`

	if _, err := r.ExecContext(ctx, query, string(kind), doc, time.Now().UTC()); err != nil {
		return errors.NewDatabaseError("failed to write "+string(kind), err)
	}
	return nil
}

// Claim inserts the (schedule, day) row; a conflict means another poller won.
func (r *RecordStore) Claim(ctx context.Context, scheduleID, date string, at time.Time) (bool, error) {
	query := `
		INSERT INTO dose_executions (schedule_id, day, executed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (schedule_id, day) DO NOTHING`

	result, err := r.ExecContext(ctx, query, scheduleID, date, at.UTC())
	if err != nil {
		return false, errors.NewDatabaseError("failed to claim execution", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, errors.NewDatabaseError("failed to get rows affected", err)
	}
	return rows == 1, nil
}

// PruneExecutions removes claims for days before the given date
func (r *RecordStore) PruneExecutions(ctx context.Context, before string) (int64, error) {
	result, err := r.ExecContext(ctx, `DELETE FROM dose_executions WHERE day < $1`, before)
	if err != nil {
		return 0, errors.NewDatabaseError("failed to prune executions", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewDatabaseError("failed to get rows affected", err)
	}
	return rows, nil
}
