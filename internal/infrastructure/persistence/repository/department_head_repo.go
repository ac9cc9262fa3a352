package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/garyjia/leave-approval/internal/application/port"
	"github.com/garyjia/leave-approval/internal/domain/entity"
	"github.com/garyjia/leave-approval/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

const headColumns = `h.id, h.department, h.employee_id, e.name, e.notification_address, h.created_at`

// DepartmentHeadRepository implements port.DepartmentHeadRepository
type DepartmentHeadRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDepartmentHeadRepository creates a new department head repository
func NewDepartmentHeadRepository(db *sql.DB, logger *zap.Logger) port.DepartmentHeadRepository {
	return &DepartmentHeadRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert assigns the head of a department, replacing the previous one
func (r *DepartmentHeadRepository) Upsert(ctx context.Context, head *entity.DepartmentHead) error {
	head.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO department_heads (department, employee_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(department) DO UPDATE SET
			employee_id = excluded.employee_id,
			created_at = excluded.created_at
		RETURNING id
	`

	err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query,
		head.Department,
		head.EmployeeID,
		head.CreatedAt,
	).Scan(&head.ID)
	if err != nil {
		r.logger.Error("Failed to assign department head",
			zap.String("department", head.Department),
			zap.Int64("employee_id", head.EmployeeID),
			zap.Error(err))
		return fmt.Errorf("failed to assign department head: %w", err)
	}
	return nil
}

// GetByDepartment retrieves the head of a department
func (r *DepartmentHeadRepository) GetByDepartment(ctx context.Context, department string) (*entity.DepartmentHead, error) {
	query := `SELECT ` + headColumns + `
		FROM department_heads h
		JOIN employees e ON e.id = h.employee_id
		WHERE h.department = ?
	`

	head, err := scanHead(sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, department))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get department head", zap.String("department", department), zap.Error(err))
		return nil, fmt.Errorf("failed to get department head: %w", err)
	}
	return head, nil
}

// Delete removes the head of a department
func (r *DepartmentHeadRepository) Delete(ctx context.Context, department string) (bool, error) {
	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx,
		`DELETE FROM department_heads WHERE department = ?`, department)
	if err != nil {
		r.logger.Error("Failed to remove department head", zap.String("department", department), zap.Error(err))
		return false, fmt.Errorf("failed to remove department head: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

// List retrieves every assigned head
func (r *DepartmentHeadRepository) List(ctx context.Context) ([]*entity.DepartmentHead, error) {
	query := `SELECT ` + headColumns + `
		FROM department_heads h
		JOIN employees e ON e.id = h.employee_id
		ORDER BY h.department ASC
	`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list department heads", zap.Error(err))
		return nil, fmt.Errorf("failed to list department heads: %w", err)
	}
	defer rows.Close()

	heads := make([]*entity.DepartmentHead, 0)
	for rows.Next() {
		head, err := scanHead(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan department head: %w", err)
		}
		heads = append(heads, head)
	}
	return heads, rows.Err()
}

func scanHead(row rowScanner) (*entity.DepartmentHead, error) {
	var head entity.DepartmentHead
	err := row.Scan(
		&head.ID,
		&head.Department,
		&head.EmployeeID,
		&head.EmployeeName,
		&head.NotificationAddress,
		&head.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &head, nil
}

var _ port.DepartmentHeadRepository = (*DepartmentHeadRepository)(nil)
