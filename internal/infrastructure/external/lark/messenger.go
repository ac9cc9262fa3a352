package lark

import (
	"context"
	"encoding/json"
	"fmt"

	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"go.uber.org/zap"

	"github.com/garyjia/leave-approval/internal/application/port"
)

// messageCreator is the im/v1 message resource of the SDK
type messageCreator interface {
	Create(ctx context.Context, req *larkim.CreateMessageReq, options ...larkcore.RequestOptionFunc) (*larkim.CreateMessageResp, error)
}

// Messenger implements port.MessageSender over Lark text messages
type Messenger struct {
	messages      messageCreator
	receiveIDType string
	logger        *zap.Logger
}

// NewMessenger creates a new Lark message sender adapter
func NewMessenger(client *SDKClient, logger *zap.Logger) *Messenger {
	return newMessenger(client.GetClient().Im.Message, client.ReceiveIDType(), logger)
}

func newMessenger(messages messageCreator, receiveIDType string, logger *zap.Logger) *Messenger {
	return &Messenger{
		messages:      messages,
		receiveIDType: receiveIDType,
		logger:        logger,
	}
}

// SendMessage sends a text message to one address
func (m *Messenger) SendMessage(ctx context.Context, address string, content string) error {
	if address == "" {
		return fmt.Errorf("address cannot be empty")
	}
	if content == "" {
		return fmt.Errorf("content cannot be empty")
	}

	body, err := newTextBody(address, content)
	if err != nil {
		return err
	}

	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(m.receiveIDType).
		Body(body).
		Build()

	resp, err := m.messages.Create(ctx, req)
	if err != nil {
		m.logger.Error("Failed to send message",
			zap.String("receive_id", address),
			zap.Error(err))
		return fmt.Errorf("failed to send message: %w", err)
	}

	if !resp.Success() {
		m.logger.Error("API returned failure",
			zap.String("receive_id", address),
			zap.Int("code", resp.Code),
			zap.String("msg", resp.Msg))
		return fmt.Errorf("API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}

	messageID := ""
	if resp.Data != nil && resp.Data.MessageId != nil {
		messageID = *resp.Data.MessageId
	}

	m.logger.Info("Message sent successfully",
		zap.String("message_id", messageID),
		zap.String("receive_id", address))
	return nil
}

// newTextBody builds an im/v1 text message body; content is JSON-encoded as {"text": ...}
func newTextBody(address, content string) (*larkim.CreateMessageReqBody, error) {
	text, err := json.Marshal(map[string]string{"text": content})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal text content: %w", err)
	}
	return larkim.NewCreateMessageReqBodyBuilder().
		ReceiveId(address).
		MsgType(larkim.MsgTypeText).
		Content(string(text)).
		Build(), nil
}

// LogMessenger writes messages to the log instead of Lark, used when Lark is disabled
type LogMessenger struct {
	logger *zap.Logger
}

// NewLogMessenger creates a sender that only logs
func NewLogMessenger(logger *zap.Logger) *LogMessenger {
	return &LogMessenger{logger: logger}
}

// SendMessage logs the message and never fails
func (m *LogMessenger) SendMessage(ctx context.Context, address string, content string) error {
	m.logger.Info("Notification (lark disabled)",
		zap.String("receive_id", address),
		zap.String("content", content))
	return nil
}

var (
	_ port.MessageSender = (*Messenger)(nil)
	_ port.MessageSender = (*LogMessenger)(nil)
)
