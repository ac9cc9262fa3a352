package workflow

import (
	"context"

	"github.com/garyjia/leave-approval/internal/domain/entity"
	"github.com/garyjia/leave-approval/internal/domain/notification"
	domainwf "github.com/garyjia/leave-approval/internal/domain/workflow"
)

var intentTypes = map[domainwf.Trigger]notification.Type{
	domainwf.TriggerSubmit:         notification.TypeHeadApprovalPending,
	domainwf.TriggerHeadApprove:    notification.TypeManagerApprovalPending,
	domainwf.TriggerHeadReject:     notification.TypeRejectedByHead,
	domainwf.TriggerManagerApprove: notification.TypeApproved,
	domainwf.TriggerManagerReject:  notification.TypeRejectedByManager,
	domainwf.TriggerCancel:         notification.TypeCancelled,
}

// intentFor describes who must hear about a transition. A missing head or
// manager yields an intent without recipient rather than an error.
func (e *engineImpl) intentFor(ctx context.Context, req *entity.LeaveRequest, trigger domainwf.Trigger, actor, reason string) (*notification.Intent, error) {
	intentType, ok := intentTypes[trigger]
	if !ok {
		return nil, nil
	}

	var recipient string
	switch trigger {
	case domainwf.TriggerSubmit:
		head, err := e.directory.DepartmentHead(ctx, req.Department)
		if err != nil {
			return nil, err
		}
		if head != nil {
			recipient = head.NotificationAddress
		}

	case domainwf.TriggerHeadApprove:
		manager, err := e.directory.Manager(ctx)
		if err != nil {
			return nil, err
		}
		if manager != nil {
			recipient = manager.NotificationAddress
		}

	default:
		emp, err := e.directory.Employee(ctx, req.EmployeeID)
		if err != nil {
			return nil, err
		}
		recipient = emp.NotificationAddress
	}

	if recipient == "" {
		e.logger.Info("No recipient for notification",
			"request_id", req.ID,
			"type", intentType,
			"department", req.Department,
		)
	}

	data := map[string]interface{}{
		notification.KeyEmployeeName: req.EmployeeName,
		notification.KeyCategory:     string(req.Category),
		notification.KeyStartDate:    req.Period.StartString(),
		notification.KeyEndDate:      req.Period.EndString(),
		notification.KeyDuration:     req.Duration,
		notification.KeyActor:        actor,
	}
	if reason != "" {
		data[notification.KeyReason] = reason
	}

	return notification.NewIntent(intentType, req.ID, recipient, data), nil
}
