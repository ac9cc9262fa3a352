// Package ledger moves days in and out of employee balances.
// Callers run Debit and Credit inside the transaction that records the status
// change, so a balance never moves without its transition.
package ledger

import (
	"context"
	"fmt"

	"github.com/garyjia/leave-approval/internal/application/port"
	"github.com/garyjia/leave-approval/internal/domain/entity"
)

// BalanceLedger adjusts an employee's remaining days
type BalanceLedger interface {
	// Balance returns the remaining days
	Balance(ctx context.Context, employeeID int64) (int, error)

	// Debit removes days, failing with ErrInsufficientBalance rather than going negative
	Debit(ctx context.Context, employeeID int64, days int) error

	// Credit returns days. There is no upper cap.
	Credit(ctx context.Context, employeeID int64, days int) error
}

type balanceLedger struct {
	employees port.EmployeeRepository
}

// NewBalanceLedger creates a ledger over the employee store
func NewBalanceLedger(employees port.EmployeeRepository) BalanceLedger {
	return &balanceLedger{employees: employees}
}

func (l *balanceLedger) Balance(ctx context.Context, employeeID int64) (int, error) {
	emp, err := l.employee(ctx, employeeID)
	if err != nil {
		return 0, err
	}
	return emp.Balance, nil
}

func (l *balanceLedger) Debit(ctx context.Context, employeeID int64, days int) error {
	if days < 1 {
		return fmt.Errorf("%w: debit of %d days", entity.ErrValidation, days)
	}

	balance, err := l.Balance(ctx, employeeID)
	if err != nil {
		return err
	}
	if balance < days {
		return fmt.Errorf("%w: employee %d has %d days, needs %d", entity.ErrInsufficientBalance, employeeID, balance, days)
	}

	ok, err := l.employees.AdjustBalance(ctx, employeeID, -days)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: employee %d balance changed during debit", entity.ErrInsufficientBalance, employeeID)
	}
	return nil
}

func (l *balanceLedger) Credit(ctx context.Context, employeeID int64, days int) error {
	if days < 1 {
		return fmt.Errorf("%w: credit of %d days", entity.ErrValidation, days)
	}

	ok, err := l.employees.AdjustBalance(ctx, employeeID, days)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: employee %d", entity.ErrNotFound, employeeID)
	}
	return nil
}

func (l *balanceLedger) employee(ctx context.Context, id int64) (*entity.Employee, error) {
	emp, err := l.employees.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, fmt.Errorf("%w: employee %d", entity.ErrNotFound, id)
	}
	return emp, nil
}
