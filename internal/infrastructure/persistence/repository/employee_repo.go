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

const employeeColumns = `id, name, department, job_grade, balance, notification_address, created_at, updated_at`

// EmployeeRepository implements port.EmployeeRepository
type EmployeeRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewEmployeeRepository creates a new employee repository
func NewEmployeeRepository(db *sql.DB, logger *zap.Logger) port.EmployeeRepository {
	return &EmployeeRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new employee
func (r *EmployeeRepository) Create(ctx context.Context, emp *entity.Employee) error {
	now := time.Now().UTC()
	emp.CreatedAt = now
	emp.UpdatedAt = now

	query := `
		INSERT INTO employees (name, department, job_grade, balance, notification_address, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		emp.Name,
		emp.Department,
		emp.JobGrade,
		emp.Balance,
		emp.NotificationAddress,
		emp.CreatedAt,
		emp.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create employee", zap.String("name", emp.Name), zap.Error(err))
		return fmt.Errorf("failed to create employee: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	emp.ID = id
	return nil
}

// GetByID retrieves an employee by ID
func (r *EmployeeRepository) GetByID(ctx context.Context, id int64) (*entity.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = ?`
	return r.getOne(ctx, query, id)
}

// GetManager retrieves the first employee holding the manager grade
func (r *EmployeeRepository) GetManager(ctx context.Context) (*entity.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE job_grade = ? ORDER BY id ASC LIMIT 1`
	return r.getOne(ctx, query, entity.JobGradeManager)
}

// AdjustBalance applies delta unless the balance would drop below zero
func (r *EmployeeRepository) AdjustBalance(ctx context.Context, id int64, delta int) (bool, error) {
	query := `
		UPDATE employees
		SET balance = balance + ?, updated_at = ?
		WHERE id = ? AND balance + ? >= 0
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query, delta, time.Now().UTC(), id, delta)
	if err != nil {
		r.logger.Error("Failed to adjust balance",
			zap.Int64("employee_id", id),
			zap.Int("delta", delta),
			zap.Error(err))
		return false, fmt.Errorf("failed to adjust balance: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows == 1, nil
}

// List retrieves every employee
func (r *EmployeeRepository) List(ctx context.Context) ([]*entity.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees ORDER BY id ASC`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list employees", zap.Error(err))
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	employees := make([]*entity.Employee, 0)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

func (r *EmployeeRepository) getOne(ctx context.Context, query string, args ...interface{}) (*entity.Employee, error) {
	emp, err := scanEmployee(sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get employee", zap.Error(err))
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return emp, nil
}

func scanEmployee(row rowScanner) (*entity.Employee, error) {
	var emp entity.Employee
	err := row.Scan(
		&emp.ID,
		&emp.Name,
		&emp.Department,
		&emp.JobGrade,
		&emp.Balance,
		&emp.NotificationAddress,
		&emp.CreatedAt,
		&emp.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

var _ port.EmployeeRepository = (*EmployeeRepository)(nil)
