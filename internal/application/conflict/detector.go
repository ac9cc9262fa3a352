// Package conflict finds leave requests of the same employee whose dates collide.
package conflict

import (
	"context"

	"github.com/garyjia/leave-approval/internal/application/port"
	"github.com/garyjia/leave-approval/internal/domain/entity"
	"github.com/garyjia/leave-approval/internal/domain/workflow"
)

// Detector answers whether a period overlaps an employee's existing leave.
// Two inclusive ranges overlap when each starts on or before the other ends.
type Detector interface {
	// Overlaps ignores requests whose status is in excluding
	Overlaps(ctx context.Context, employeeID int64, period entity.DateRange, excluding []workflow.State) (bool, error)
}

type detector struct {
	requests port.RequestRepository
}

// NewDetector creates a detector over the request store
func NewDetector(requests port.RequestRepository) Detector {
	return &detector{requests: requests}
}

func (d *detector) Overlaps(ctx context.Context, employeeID int64, period entity.DateRange, excluding []workflow.State) (bool, error) {
	if err := period.Validate(); err != nil {
		return false, err
	}
	return d.requests.HasOverlap(ctx, employeeID, period, excluding)
}
