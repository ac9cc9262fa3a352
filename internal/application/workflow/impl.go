package workflow

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/garyjia/leave-approval/internal/application/conflict"
	"github.com/garyjia/leave-approval/internal/application/ledger"
	"github.com/garyjia/leave-approval/internal/application/port"
	"github.com/garyjia/leave-approval/internal/domain/entity"
	"github.com/garyjia/leave-approval/internal/domain/policy"
	domainwf "github.com/garyjia/leave-approval/internal/domain/workflow"
	"github.com/garyjia/leave-approval/pkg/utils"
)

// engineImpl is the concrete implementation of ApprovalWorkflow
type engineImpl struct {
	requests  port.RequestRepository
	history   port.HistoryRepository
	txManager port.TransactionManager
	ledger    ledger.BalanceLedger
	conflicts conflict.Detector
	directory port.Directory
	logger    Logger
}

// EngineOption configures the workflow engine
type EngineOption func(*engineImpl)

// WithLogger sets the engine logger
func WithLogger(logger Logger) EngineOption {
	return func(e *engineImpl) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates a new approval workflow engine
func NewEngine(
	requests port.RequestRepository,
	history port.HistoryRepository,
	txManager port.TransactionManager,
	balances ledger.BalanceLedger,
	conflicts conflict.Detector,
	directory port.Directory,
	opts ...EngineOption,
) ApprovalWorkflow {
	e := &engineImpl{
		requests:  requests,
		history:   history,
		txManager: txManager,
		ledger:    balances,
		conflicts: conflicts,
		directory: directory,
		logger:    nopLogger{},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// transitionEffect runs inside the transaction before the status is written
type transitionEffect func(ctx context.Context, req *entity.LeaveRequest) error

func (e *engineImpl) Submit(ctx context.Context, in SubmitInput) (*Result, error) {
	req, err := newRequest(in)
	if err != nil {
		e.logFailure("Leave request rejected at submission", err, "employee_id", in.EmployeeID, "category", in.Category)
		return nil, err
	}

	actor := strings.TrimSpace(in.Actor)
	if actor == "" {
		actor = strconv.FormatInt(in.EmployeeID, 10)
	}

	var result *Result
	err = e.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		emp, err := e.directory.Employee(txCtx, in.EmployeeID)
		if err != nil {
			return err
		}

		overlap, err := e.conflicts.Overlaps(txCtx, emp.ID, req.Period, domainwf.ReleasedStates())
		if err != nil {
			return err
		}
		if overlap {
			return fmt.Errorf("%w: employee %d already has leave between %s and %s",
				entity.ErrConflict, emp.ID, req.Period.StartString(), req.Period.EndString())
		}

		req.EmployeeName = emp.Name
		req.Department = emp.Department
		if err := e.requests.Create(txCtx, req); err != nil {
			return err
		}

		if err := e.record(txCtx, req, "", domainwf.TriggerSubmit, actor, ""); err != nil {
			return err
		}

		intent, err := e.intentFor(txCtx, req, domainwf.TriggerSubmit, actor, "")
		if err != nil {
			return err
		}
		result = &Result{Request: req, Intent: intent}
		return nil
	})
	if err != nil {
		e.logFailure("Failed to submit leave request", err, "employee_id", in.EmployeeID, "category", in.Category)
		return nil, err
	}

	e.logger.Info("Leave request submitted",
		"request_id", req.ID,
		"employee_id", req.EmployeeID,
		"category", req.Category,
		"duration", req.Duration,
		"start", req.Period.StartString(),
		"end", req.Period.EndString(),
	)
	return result, nil
}

func (e *engineImpl) ApproveByHead(ctx context.Context, requestID int64, headID string) (*Result, error) {
	return e.transition(ctx, requestID, domainwf.TriggerHeadApprove, headID, "", nil)
}

func (e *engineImpl) RejectByHead(ctx context.Context, requestID int64, headID, reason string) (*Result, error) {
	return e.transition(ctx, requestID, domainwf.TriggerHeadReject, headID, reason, nil)
}

func (e *engineImpl) ApproveByManager(ctx context.Context, requestID int64, managerID string) (*Result, error) {
	return e.transition(ctx, requestID, domainwf.TriggerManagerApprove, managerID, "",
		func(txCtx context.Context, req *entity.LeaveRequest) error {
			if !req.Category.DebitsBalance() {
				return nil
			}
			return e.ledger.Debit(txCtx, req.EmployeeID, req.Duration)
		})
}

func (e *engineImpl) RejectByManager(ctx context.Context, requestID int64, managerID, reason string) (*Result, error) {
	return e.transition(ctx, requestID, domainwf.TriggerManagerReject, managerID, reason, nil)
}

func (e *engineImpl) Cancel(ctx context.Context, requestID int64, actorID, reason string) (*Result, error) {
	return e.transition(ctx, requestID, domainwf.TriggerCancel, actorID, reason,
		func(txCtx context.Context, req *entity.LeaveRequest) error {
			if !req.Category.DebitsBalance() {
				return nil
			}
			return e.ledger.Credit(txCtx, req.EmployeeID, req.Duration)
		})
}

// transition loads the request, checks the trigger against the transition table,
// applies the effect and writes status and history in one transaction
func (e *engineImpl) transition(
	ctx context.Context,
	requestID int64,
	trigger domainwf.Trigger,
	actor, reason string,
	effect transitionEffect,
) (*Result, error) {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return nil, fmt.Errorf("%w: actor is required", entity.ErrValidation)
	}
	reason = utils.SanitizeText(reason)

	var (
		result *Result
		from   domainwf.State
	)
	err := e.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		req, err := e.requests.GetByID(txCtx, requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return fmt.Errorf("%w: leave request %d", entity.ErrNotFound, requestID)
		}

		from = req.Status
		to, err := domainwf.Next(from, trigger)
		if err != nil {
			return fmt.Errorf("%w: cannot %s request %d: %v", entity.ErrInvalidState, trigger, requestID, err)
		}

		if effect != nil {
			if err := effect(txCtx, req); err != nil {
				return err
			}
		}

		req.Status = to
		switch trigger {
		case domainwf.TriggerHeadApprove, domainwf.TriggerManagerApprove:
			req.ApprovedBy = actor
		case domainwf.TriggerHeadReject, domainwf.TriggerManagerReject:
			req.RejectionReason = reason
		}

		updated, err := e.requests.UpdateTransition(txCtx, req, from)
		if err != nil {
			return err
		}
		if !updated {
			return fmt.Errorf("%w: leave request %d changed while processing %s", entity.ErrInvalidState, requestID, trigger)
		}

		if err := e.record(txCtx, req, from, trigger, actor, reason); err != nil {
			return err
		}

		intent, err := e.intentFor(txCtx, req, trigger, actor, reason)
		if err != nil {
			return err
		}
		result = &Result{Request: req, Intent: intent}
		return nil
	})
	if err != nil {
		e.logFailure("Leave request transition failed", err,
			"request_id", requestID,
			"trigger", trigger,
			"actor", actor,
		)
		return nil, err
	}

	e.logger.Info("Leave request transitioned",
		"request_id", requestID,
		"trigger", trigger,
		"from", from,
		"to", result.Request.Status,
		"actor", actor,
	)
	return result, nil
}

func (e *engineImpl) record(ctx context.Context, req *entity.LeaveRequest, from domainwf.State, trigger domainwf.Trigger, actor, reason string) error {
	return e.history.Create(ctx, &entity.RequestHistory{
		RequestID:  req.ID,
		FromStatus: from,
		ToStatus:   req.Status,
		Action:     trigger,
		Actor:      actor,
		Reason:     reason,
	})
}

func (e *engineImpl) ListPending(ctx context.Context, role Role, department string) ([]*entity.LeaveRequest, error) {
	state, ok := role.PendingState()
	if !ok {
		return nil, fmt.Errorf("%w: unknown approver role %q", entity.ErrValidation, role)
	}
	return e.requests.ListByStatus(ctx, state, strings.TrimSpace(department))
}

func (e *engineImpl) GetRequest(ctx context.Context, requestID int64) (*entity.LeaveRequest, error) {
	req, err := e.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("%w: leave request %d", entity.ErrNotFound, requestID)
	}
	return req, nil
}

func (e *engineImpl) ListByEmployee(ctx context.Context, employeeID int64) ([]*entity.LeaveRequest, error) {
	if _, err := e.directory.Employee(ctx, employeeID); err != nil {
		return nil, err
	}
	return e.requests.ListByEmployee(ctx, employeeID)
}

func (e *engineImpl) History(ctx context.Context, requestID int64) ([]*entity.RequestHistory, error) {
	if _, err := e.GetRequest(ctx, requestID); err != nil {
		return nil, err
	}
	return e.history.GetByRequestID(ctx, requestID)
}

func (e *engineImpl) Balance(ctx context.Context, employeeID int64) (int, error) {
	return e.ledger.Balance(ctx, employeeID)
}

// newRequest validates the input and computes the duration without touching storage
func newRequest(in SubmitInput) (*entity.LeaveRequest, error) {
	if !in.Category.IsValid() {
		return nil, fmt.Errorf("%w: unknown leave category %q", entity.ErrValidation, in.Category)
	}
	if in.Period.Start.IsZero() {
		return nil, fmt.Errorf("%w: start date is required", entity.ErrValidation)
	}

	input := policy.Input{
		Category:    in.Category,
		Subcategory: in.Subcategory,
		Relation:    in.Relation,
		Period:      in.Period,
	}
	if in.Category == entity.CategorySick {
		input.RequestedDays = in.Days
	}

	duration, err := policy.Duration(input)
	if err != nil {
		return nil, err
	}
	if duration < 1 {
		return nil, fmt.Errorf("%w: duration must be at least one day", entity.ErrValidation)
	}

	period := in.Period
	if !policy.RangeDerived(in.Category) {
		// the blocked range must cover exactly the days charged
		derived := entity.NewDateRange(period.Start, period.Start.AddDate(0, 0, duration-1))
		if !period.End.IsZero() && !period.End.Equal(derived.End) {
			return nil, fmt.Errorf("%w: %s leave of %d days from %s ends on %s, not %s",
				entity.ErrValidation, in.Category, duration, derived.StartString(), derived.EndString(), period.EndString())
		}
		period = derived
	}
	if err := period.Validate(); err != nil {
		return nil, err
	}

	return &entity.LeaveRequest{
		EmployeeID:  in.EmployeeID,
		Category:    in.Category,
		Subcategory: in.Subcategory,
		Relation:    in.Relation,
		Period:      period,
		Duration:    duration,
		Note:        utils.SanitizeText(in.Note),
		Status:      domainwf.InitialState,
	}, nil
}

func (e *engineImpl) logFailure(msg string, err error, keysAndValues ...interface{}) {
	keysAndValues = append(keysAndValues, "error", err)
	if isBusinessError(err) {
		e.logger.Info(msg, keysAndValues...)
		return
	}
	e.logger.Error(msg, keysAndValues...)
}

func isBusinessError(err error) bool {
	for _, target := range []error{
		entity.ErrValidation,
		entity.ErrConflict,
		entity.ErrNotFound,
		entity.ErrInvalidState,
		entity.ErrInsufficientBalance,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
