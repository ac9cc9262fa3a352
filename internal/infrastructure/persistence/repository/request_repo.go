package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/garyjia/leave-approval/internal/application/port"
	"github.com/garyjia/leave-approval/internal/domain/entity"
	"github.com/garyjia/leave-approval/internal/domain/workflow"
	"github.com/garyjia/leave-approval/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

const requestColumns = `
	r.id, r.employee_id, e.name, e.department, r.category, r.subcategory, r.relation,
	r.start_date, r.end_date, r.duration, r.note, r.status, r.rejection_reason,
	r.approved_by, r.created_at, r.updated_at
`

// RequestRepository implements port.RequestRepository
type RequestRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRequestRepository creates a new leave request repository
func NewRequestRepository(db *sql.DB, logger *zap.Logger) port.RequestRepository {
	return &RequestRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new leave request
func (r *RequestRepository) Create(ctx context.Context, req *entity.LeaveRequest) error {
	now := time.Now().UTC()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	req.UpdatedAt = req.CreatedAt

	query := `
		INSERT INTO leave_requests (
			employee_id, category, subcategory, relation, start_date, end_date,
			duration, note, status, rejection_reason, approved_by, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		req.EmployeeID,
		string(req.Category),
		string(req.Subcategory),
		string(req.Relation),
		req.Period.StartString(),
		req.Period.EndString(),
		req.Duration,
		req.Note,
		string(req.Status),
		req.RejectionReason,
		req.ApprovedBy,
		req.CreatedAt,
		req.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create leave request", zap.Int64("employee_id", req.EmployeeID), zap.Error(err))
		return fmt.Errorf("failed to create leave request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	req.ID = id
	return nil
}

// GetByID retrieves a leave request by ID
func (r *RequestRepository) GetByID(ctx context.Context, id int64) (*entity.LeaveRequest, error) {
	query := `SELECT ` + requestColumns + `
		FROM leave_requests r
		JOIN employees e ON e.id = r.employee_id
		WHERE r.id = ?
	`

	req, err := scanRequest(sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get leave request by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get leave request: %w", err)
	}
	return req, nil
}

// UpdateTransition writes the new status only when the stored status is still expected
func (r *RequestRepository) UpdateTransition(ctx context.Context, req *entity.LeaveRequest, expected workflow.State) (bool, error) {
	req.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE leave_requests
		SET status = ?, approved_by = ?, rejection_reason = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		string(req.Status),
		req.ApprovedBy,
		req.RejectionReason,
		req.UpdatedAt,
		req.ID,
		string(expected),
	)
	if err != nil {
		r.logger.Error("Failed to update leave request status",
			zap.Int64("id", req.ID),
			zap.String("status", req.Status.String()),
			zap.Error(err))
		return false, fmt.Errorf("failed to update leave request status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows == 1, nil
}

// HasOverlap checks stored ranges against period; dates compare as ISO strings
func (r *RequestRepository) HasOverlap(ctx context.Context, employeeID int64, period entity.DateRange, excluding []workflow.State) (bool, error) {
	query := `
		SELECT COUNT(*) FROM leave_requests
		WHERE employee_id = ? AND start_date <= ? AND end_date >= ?
	`
	args := []interface{}{employeeID, period.EndString(), period.StartString()}

	if len(excluding) > 0 {
		marks, stateArgs := statusPlaceholders(excluding)
		query += ` AND status NOT IN (` + marks + `)`
		args = append(args, stateArgs...)
	}

	var count int
	if err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		r.logger.Error("Failed to check overlapping leave", zap.Int64("employee_id", employeeID), zap.Error(err))
		return false, fmt.Errorf("failed to check overlapping leave: %w", err)
	}
	return count > 0, nil
}

// ListByStatus retrieves requests in a status, oldest first
func (r *RequestRepository) ListByStatus(ctx context.Context, status workflow.State, department string) ([]*entity.LeaveRequest, error) {
	query := `SELECT ` + requestColumns + `
		FROM leave_requests r
		JOIN employees e ON e.id = r.employee_id
		WHERE r.status = ?
	`
	args := []interface{}{string(status)}
	if department != "" {
		query += ` AND e.department = ?`
		args = append(args, department)
	}
	query += ` ORDER BY r.created_at ASC, r.id ASC`

	return r.list(ctx, query, args...)
}

// ListByEmployee retrieves every request of an employee, newest first
func (r *RequestRepository) ListByEmployee(ctx context.Context, employeeID int64) ([]*entity.LeaveRequest, error) {
	query := `SELECT ` + requestColumns + `
		FROM leave_requests r
		JOIN employees e ON e.id = r.employee_id
		WHERE r.employee_id = ?
		ORDER BY r.created_at DESC, r.id DESC
	`
	return r.list(ctx, query, employeeID)
}

func (r *RequestRepository) list(ctx context.Context, query string, args ...interface{}) ([]*entity.LeaveRequest, error) {
	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list leave requests", zap.Error(err))
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}
	defer rows.Close()

	requests := make([]*entity.LeaveRequest, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func scanRequest(row rowScanner) (*entity.LeaveRequest, error) {
	var (
		req                        entity.LeaveRequest
		category, sub, rel, status string
		start, end                 string
	)

	err := row.Scan(
		&req.ID,
		&req.EmployeeID,
		&req.EmployeeName,
		&req.Department,
		&category,
		&sub,
		&rel,
		&start,
		&end,
		&req.Duration,
		&req.Note,
		&status,
		&req.RejectionReason,
		&req.ApprovedBy,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	period, err := parsePeriod(start, end)
	if err != nil {
		return nil, err
	}

	req.Category = entity.Category(category)
	req.Subcategory = entity.Subcategory(sub)
	req.Relation = entity.Relation(rel)
	req.Status = workflow.State(status)
	req.Period = period
	return &req, nil
}

var _ port.RequestRepository = (*RequestRepository)(nil)
