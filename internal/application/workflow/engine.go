package workflow

import (
	"context"

	"github.com/garyjia/leave-approval/internal/domain/entity"
	"github.com/garyjia/leave-approval/internal/domain/notification"
	domainwf "github.com/garyjia/leave-approval/internal/domain/workflow"
)

// Role selects which approval queue ListPending reads
type Role string

const (
	RoleHead    Role = "head"
	RoleManager Role = "manager"
)

// PendingState returns the status a role acts on
func (r Role) PendingState() (domainwf.State, bool) {
	switch r {
	case RoleHead:
		return domainwf.StatePendingHeadApproval, true
	case RoleManager:
		return domainwf.StatePendingManagerApproval, true
	}
	return "", false
}

// SubmitInput describes a new leave request
type SubmitInput struct {
	EmployeeID  int64
	Category    entity.Category
	Subcategory entity.Subcategory
	Relation    entity.Relation
	// Period.End may be left zero for fixed-length categories; it is derived from the duration
	Period entity.DateRange
	// Days overrides the sick leave default; ignored for other categories
	Days int
	Note string
	// Actor defaults to the employee ID when empty
	Actor string
}

// Result is the outcome of a successful operation. Intent is never dispatched by
// the engine; the caller hands it to a dispatcher once the transaction committed.
type Result struct {
	Request *entity.LeaveRequest
	Intent  *notification.Intent
}

// ApprovalWorkflow drives a leave request through head and manager approval.
// Every operation commits its status change, history entry and balance movement
// together or not at all.
type ApprovalWorkflow interface {
	// Submit validates and stores a new request in PENDING_HEAD_APPROVAL
	Submit(ctx context.Context, in SubmitInput) (*Result, error)

	ApproveByHead(ctx context.Context, requestID int64, headID string) (*Result, error)
	RejectByHead(ctx context.Context, requestID int64, headID, reason string) (*Result, error)

	// ApproveByManager debits the balance for balance-consuming categories
	ApproveByManager(ctx context.Context, requestID int64, managerID string) (*Result, error)
	RejectByManager(ctx context.Context, requestID int64, managerID, reason string) (*Result, error)

	// Cancel withdraws an approved request and credits back any debited days
	Cancel(ctx context.Context, requestID int64, actorID, reason string) (*Result, error)

	// ListPending returns requests awaiting the role, oldest first.
	// An empty department lists every department.
	ListPending(ctx context.Context, role Role, department string) ([]*entity.LeaveRequest, error)

	GetRequest(ctx context.Context, requestID int64) (*entity.LeaveRequest, error)
	ListByEmployee(ctx context.Context, employeeID int64) ([]*entity.LeaveRequest, error)
	History(ctx context.Context, requestID int64) ([]*entity.RequestHistory, error)

	// Balance returns the employee's remaining annual days
	Balance(ctx context.Context, employeeID int64) (int, error)
}

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
