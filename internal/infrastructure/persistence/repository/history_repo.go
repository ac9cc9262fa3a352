package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/garyjia/leave-approval/internal/application/port"
	"github.com/garyjia/leave-approval/internal/domain/entity"
	"github.com/garyjia/leave-approval/internal/domain/workflow"
	"github.com/garyjia/leave-approval/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// HistoryRepository implements port.HistoryRepository
type HistoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *sql.DB, logger *zap.Logger) port.HistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Create records one transition
func (r *HistoryRepository) Create(ctx context.Context, history *entity.RequestHistory) error {
	if history.CreatedAt.IsZero() {
		history.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO request_history (
			request_id, from_status, to_status, action, actor, reason, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		history.RequestID,
		string(history.FromStatus),
		string(history.ToStatus),
		string(history.Action),
		history.Actor,
		history.Reason,
		history.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create history record", zap.Int64("request_id", history.RequestID), zap.Error(err))
		return fmt.Errorf("failed to create history: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	history.ID = id
	return nil
}

// GetByRequestID retrieves the transitions of a request in the order they happened
func (r *HistoryRepository) GetByRequestID(ctx context.Context, requestID int64) ([]*entity.RequestHistory, error) {
	query := `
		SELECT id, request_id, from_status, to_status, action, actor, reason, created_at
		FROM request_history
		WHERE request_id = ?
		ORDER BY id ASC
	`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, requestID)
	if err != nil {
		r.logger.Error("Failed to get history by request ID", zap.Int64("request_id", requestID), zap.Error(err))
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	records := make([]*entity.RequestHistory, 0)
	for rows.Next() {
		var (
			record           entity.RequestHistory
			from, to, action string
		)
		err := rows.Scan(
			&record.ID,
			&record.RequestID,
			&from,
			&to,
			&action,
			&record.Actor,
			&record.Reason,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}
		record.FromStatus = workflow.State(from)
		record.ToStatus = workflow.State(to)
		record.Action = workflow.Trigger(action)
		records = append(records, &record)
	}

	return records, rows.Err()
}

var _ port.HistoryRepository = (*HistoryRepository)(nil)
