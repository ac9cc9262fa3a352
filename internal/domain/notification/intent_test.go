package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIntent(t *testing.T) {
	i := NewIntent(TypeApproved, 42, "ou_123", map[string]interface{}{
		KeyDuration:  5,
		KeyCategory:  "annual",
		KeyStartDate: "2024-06-01",
	})

	assert.NotEmpty(t, i.ID)
	assert.Equal(t, TypeApproved, i.Type)
	assert.Equal(t, int64(42), i.RequestID)
	assert.True(t, i.HasRecipient())
	assert.False(t, i.Timestamp.IsZero())
	assert.Equal(t, int64(5), i.GetInt(KeyDuration))
	assert.Equal(t, "annual", i.GetString(KeyCategory))
	assert.Equal(t, "", i.GetString("missing"))
	assert.Equal(t, int64(0), i.GetInt(KeyCategory))

	other := NewIntent(TypeApproved, 42, "ou_123", nil)
	assert.NotEqual(t, i.ID, other.ID)
	assert.NotNil(t, other.Data)
}

func TestIntent_WithDataIsImmutable(t *testing.T) {
	i := NewIntent(TypeRejectedByHead, 1, "ou_1", map[string]interface{}{KeyReason: "busy season"})
	j := i.WithData(KeyActor, "head-7")

	assert.Equal(t, "head-7", j.GetString(KeyActor))
	assert.Equal(t, "", i.GetString(KeyActor))
	assert.Equal(t, i.ID, j.ID)
	assert.Equal(t, "busy season", j.GetString(KeyReason))
}

func TestIntent_HasRecipient(t *testing.T) {
	var nilIntent *Intent
	assert.False(t, nilIntent.HasRecipient())
	assert.False(t, NewIntent(TypeCancelled, 1, "", nil).HasRecipient())
}

func TestType_IsValid(t *testing.T) {
	for _, typ := range AllTypes() {
		assert.True(t, typ.IsValid(), typ.String())
	}
	assert.False(t, Type("request.archived").IsValid())
}
