package lark

import (
	"time"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	"go.uber.org/zap"
)

// Config holds Lark client configuration
type Config struct {
	AppID     string
	AppSecret string
	// ReceiveIDType tells Lark how to read a notification address: open_id, user_id or email
	ReceiveIDType string
	Timeout       time.Duration
}

// SDKClient wraps the Lark SDK client
type SDKClient struct {
	client        *lark.Client
	receiveIDType string
	logger        *zap.Logger
}

// NewSDKClient creates a new Lark SDK client
func NewSDKClient(cfg Config, logger *zap.Logger) *SDKClient {
	opts := []lark.ClientOptionFunc{
		lark.WithLogLevel(larkcore.LogLevelInfo),
		lark.WithEnableTokenCache(true),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, lark.WithReqTimeout(cfg.Timeout))
	}

	receiveIDType := cfg.ReceiveIDType
	if receiveIDType == "" {
		receiveIDType = "open_id"
	}

	return &SDKClient{
		client:        lark.NewClient(cfg.AppID, cfg.AppSecret, opts...),
		receiveIDType: receiveIDType,
		logger:        logger,
	}
}

// GetClient returns the underlying Lark SDK client
func (c *SDKClient) GetClient() *lark.Client {
	return c.client
}

// ReceiveIDType returns the configured address kind
func (c *SDKClient) ReceiveIDType() string {
	return c.receiveIDType
}
