package service

import (
	"context"
	"fmt"

	"github.com/garyjia/leave-approval/internal/application/port"
	"github.com/garyjia/leave-approval/internal/domain/notification"
)

// Localizer renders a message template in the locale carried by ctx
type Localizer interface {
	Localize(ctx context.Context, messageID string, templateData map[string]interface{}) (string, error)
}

// NotificationService turns intents into chat messages
type NotificationService interface {
	// Deliver renders and sends one intent. Intents without recipient are skipped.
	Deliver(ctx context.Context, intent *notification.Intent) error
}

type notificationServiceImpl struct {
	localizer     Localizer
	messageSender port.MessageSender
	logger        Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(localizer Localizer, messageSender port.MessageSender, logger Logger) NotificationService {
	return &notificationServiceImpl{
		localizer:     localizer,
		messageSender: messageSender,
		logger:        logger,
	}
}

func (s *notificationServiceImpl) Deliver(ctx context.Context, intent *notification.Intent) error {
	if !intent.HasRecipient() {
		if intent != nil {
			s.logger.Info("Skipping notification without recipient",
				"intent_id", intent.ID,
				"type", intent.Type,
				"request_id", intent.RequestID,
			)
		}
		return nil
	}

	message, err := s.render(ctx, intent)
	if err != nil {
		s.logger.Error("Failed to render notification", "error", err, "type", intent.Type, "request_id", intent.RequestID)
		return fmt.Errorf("render notification: %w", err)
	}

	if err := s.messageSender.SendMessage(ctx, intent.Recipient, message); err != nil {
		s.logger.Error("Failed to send message",
			"error", err,
			"request_id", intent.RequestID,
			"recipient", intent.Recipient,
		)
		return fmt.Errorf("send message: %w", err)
	}

	s.logger.Info("Notification sent successfully",
		"intent_id", intent.ID,
		"type", intent.Type,
		"request_id", intent.RequestID,
		"message_length", len(message),
	)
	return nil
}

func (s *notificationServiceImpl) render(ctx context.Context, intent *notification.Intent) (string, error) {
	data := make(map[string]interface{}, len(intent.Data))
	for k, v := range intent.Data {
		data[k] = v
	}

	if category := intent.GetString(notification.KeyCategory); category != "" {
		if label, err := s.localizer.Localize(ctx, "category."+category, nil); err == nil {
			data[notification.KeyCategory] = label
		}
	}

	return s.localizer.Localize(ctx, intent.Type.String(), data)
}
