package port

import (
	"context"

	"github.com/garyjia/leave-approval/internal/domain/entity"
)

// MessageSender delivers a text message to a chat address
type MessageSender interface {
	SendMessage(ctx context.Context, address string, content string) error
}

// Directory resolves who must hear about a request
type Directory interface {
	// Employee returns the employee with department and notification address
	Employee(ctx context.Context, id int64) (*entity.Employee, error)

	// DepartmentHead returns the current head of a department, or nil if none is assigned
	DepartmentHead(ctx context.Context, department string) (*entity.DepartmentHead, error)

	// Manager returns the top manager, or nil if none is registered
	Manager(ctx context.Context) (*entity.Employee, error)
}
