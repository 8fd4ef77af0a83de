package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/seung-gu/factset-data-collector/constants"
)

// RunRepository keeps a ledger of extraction runs.
type RunRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewRunRepository(db *DB, logger *slog.Logger) *RunRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &RunRepository{db: db, logger: logger}
}

// Start records a new run in RUNNING and returns its ID.
func (r *RunRepository) Start(ctx context.Context) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.db.ExecContext(ctx, r.db.rebind(
		`INSERT INTO extraction_runs (id, started_at, status) VALUES (?, ?, ?)`),
		id.String(), time.Now().UTC().Format(time.RFC3339), string(constants.RunStatusRunning))
	if err != nil {
		return uuid.Nil, fmt.Errorf("start run: %w", err)
	}
	r.logger.Info("run started", "run_id", id)
	return id, nil
}

// Finish marks a run terminal with its outcome counts.
func (r *RunRepository) Finish(ctx context.Context, id uuid.UUID, status constants.RunStatus, images, records int, errMsg string) error {
	_, err := r.db.ExecContext(ctx, r.db.rebind(
		`UPDATE extraction_runs SET finished_at = ?, status = ?, images = ?, records = ?, error_message = ? WHERE id = ?`),
		time.Now().UTC().Format(time.RFC3339), string(status), images, records, errMsg, id.String())
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}
