package dispatcher

import (
	"context"

	"github.com/garyjia/leave-approval/internal/domain/notification"
)

// Handler delivers one notification intent
type Handler func(ctx context.Context, intent *notification.Intent) error

// HandlerInfo contains handler metadata for debugging
type HandlerInfo struct {
	Name        string
	Type        notification.Type
	Handler     Handler
	Description string
}
