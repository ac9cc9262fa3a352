// Package notification describes the messages a workflow transition asks to be delivered.
// An Intent is a plain value: producing one never touches a delivery channel.
package notification

import (
	"time"

	"github.com/google/uuid"
)

// Template data keys
const (
	KeyEmployeeName = "employee_name"
	KeyCategory     = "category"
	KeyStartDate    = "start_date"
	KeyEndDate      = "end_date"
	KeyDuration     = "duration"
	KeyReason       = "reason"
	KeyActor        = "actor"
)

// Intent asks for one message to be delivered to one recipient
type Intent struct {
	ID        string                 `json:"id"`
	Type      Type                   `json:"type"`
	RequestID int64                  `json:"request_id"`
	Recipient string                 `json:"recipient"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
}

// NewIntent creates an intent with a generated ID and timestamp
func NewIntent(intentType Type, requestID int64, recipient string, data map[string]interface{}) *Intent {
	if data == nil {
		data = map[string]interface{}{}
	}
	return &Intent{
		ID:        uuid.NewString(),
		Type:      intentType,
		RequestID: requestID,
		Recipient: recipient,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// HasRecipient reports whether the intent can be routed at all
func (i *Intent) HasRecipient() bool {
	return i != nil && i.Recipient != ""
}

// WithData returns a copy of the intent with an extra data entry
func (i *Intent) WithData(key string, value interface{}) *Intent {
	newData := make(map[string]interface{}, len(i.Data)+1)
	for k, v := range i.Data {
		newData[k] = v
	}
	newData[key] = value

	return &Intent{
		ID:        i.ID,
		Type:      i.Type,
		RequestID: i.RequestID,
		Recipient: i.Recipient,
		Data:      newData,
		Timestamp: i.Timestamp,
	}
}

// GetString retrieves a string value from the template data
func (i *Intent) GetString(key string) string {
	if val, ok := i.Data[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

// GetInt retrieves an integer value from the template data
func (i *Intent) GetInt(key string) int64 {
	if val, ok := i.Data[key]; ok {
		switch v := val.(type) {
		case int64:
			return v
		case int:
			return int64(v)
		case float64:
			return int64(v)
		}
	}
	return 0
}
