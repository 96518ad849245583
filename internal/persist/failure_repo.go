package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/flandre-go/flandre/internal/core/event"
)

// FailureRow is one suspended-entity record.
type FailureRow struct {
	ID         int64
	Entity     uint64
	Layer      int
	Event      string
	Message    string
	ScriptHash string
	FailedAt   time.Time
}

// RowFromEvent flattens a suspension event into a row stamped with at.
func RowFromEvent(ev event.EntitySuspended, at time.Time) FailureRow {
	msg := ""
	if ev.Failure.Err != nil {
		msg = ev.Failure.Err.Error()
	}
	return FailureRow{
		Entity:     uint64(ev.Failure.Handle),
		Layer:      ev.Failure.Layer,
		Event:      ev.Failure.Event.String(),
		Message:    msg,
		ScriptHash: ev.ScriptHash,
		FailedAt:   at,
	}
}

type FailureRepo struct {
	db *DB
}

func NewFailureRepo(db *DB) *FailureRepo {
	return &FailureRepo{db: db}
}

// InsertBatch writes rows in a single transaction.
func (r *FailureRepo) InsertBatch(ctx context.Context, rows []FailureRow) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failure journal begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, row := range rows {
		if _, err := tx.Exec(ctx,
			`INSERT INTO entity_failures (entity, layer, event, message, script_hash, failed_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			int64(row.Entity), int16(row.Layer), row.Event, row.Message, row.ScriptHash, row.FailedAt,
		); err != nil {
			return fmt.Errorf("failure journal insert: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// Recent returns up to limit rows, newest first.
func (r *FailureRepo) Recent(ctx context.Context, limit int) ([]FailureRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, entity, layer, event, message, script_hash, failed_at
		 FROM entity_failures ORDER BY failed_at DESC, id DESC LIMIT $1`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []FailureRow
	for rows.Next() {
		var (
			row    FailureRow
			entity int64
			layer  int16
		)
		if err := rows.Scan(&row.ID, &entity, &layer, &row.Event, &row.Message, &row.ScriptHash, &row.FailedAt); err != nil {
			return nil, err
		}
		row.Entity = uint64(entity)
		row.Layer = int(layer)
		result = append(result, row)
	}
	return result, rows.Err()
}
