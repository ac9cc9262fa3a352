package port

import (
	"context"

	"github.com/garyjia/leave-approval/internal/domain/entity"
	"github.com/garyjia/leave-approval/internal/domain/workflow"
)

// RequestRepository defines persistence operations for LeaveRequest
type RequestRepository interface {
	// Create inserts a new request and sets its ID
	Create(ctx context.Context, req *entity.LeaveRequest) error

	// GetByID returns the request joined with its employee, or nil if it does not exist
	GetByID(ctx context.Context, id int64) (*entity.LeaveRequest, error)

	// UpdateTransition writes status, approver and rejection reason only if the stored
	// status still equals expected. It reports whether a row was updated.
	UpdateTransition(ctx context.Context, req *entity.LeaveRequest, expected workflow.State) (bool, error)

	// HasOverlap reports whether any request of the employee whose status is not in
	// excluding shares at least one day with period
	HasOverlap(ctx context.Context, employeeID int64, period entity.DateRange, excluding []workflow.State) (bool, error)

	// ListByStatus returns requests in the given status, oldest created first.
	// An empty department matches every department.
	ListByStatus(ctx context.Context, status workflow.State, department string) ([]*entity.LeaveRequest, error)

	// ListByEmployee returns every request of an employee, newest created first
	ListByEmployee(ctx context.Context, employeeID int64) ([]*entity.LeaveRequest, error)
}

// EmployeeRepository defines persistence operations for Employee balances and lookups
type EmployeeRepository interface {
	// Create inserts a new employee and sets its ID
	Create(ctx context.Context, emp *entity.Employee) error

	// GetByID returns the employee, or nil if it does not exist
	GetByID(ctx context.Context, id int64) (*entity.Employee, error)

	// GetManager returns the top manager, or nil if none is registered
	GetManager(ctx context.Context) (*entity.Employee, error)

	// AdjustBalance adds delta to the balance unless the result would be negative.
	// It reports whether a row was updated.
	AdjustBalance(ctx context.Context, id int64, delta int) (bool, error)

	// List returns every employee ordered by id
	List(ctx context.Context) ([]*entity.Employee, error)
}

// DepartmentHeadRepository defines persistence operations for DepartmentHead
type DepartmentHeadRepository interface {
	// Upsert assigns the head of a department, replacing any previous one
	Upsert(ctx context.Context, head *entity.DepartmentHead) error

	// GetByDepartment returns the head of a department, or nil if none is assigned
	GetByDepartment(ctx context.Context, department string) (*entity.DepartmentHead, error)

	// Delete removes the head of a department and reports whether one existed
	Delete(ctx context.Context, department string) (bool, error)

	// List returns every assigned head ordered by department
	List(ctx context.Context) ([]*entity.DepartmentHead, error)
}

// HistoryRepository defines persistence operations for RequestHistory
type HistoryRepository interface {
	Create(ctx context.Context, history *entity.RequestHistory) error
	GetByRequestID(ctx context.Context, requestID int64) ([]*entity.RequestHistory, error)
}

// TransactionManager handles database transactions.
// Repositories called with the ctx handed to fn run inside the transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
