package workflow

import (
	"testing"

	domainwf "github.com/garyjia/leave-approval/internal/domain/workflow"
)

func TestRolePendingState(t *testing.T) {
	tests := []struct {
		role Role
		want domainwf.State
		ok   bool
	}{
		{RoleHead, domainwf.StatePendingHeadApproval, true},
		{RoleManager, domainwf.StatePendingManagerApproval, true},
		{Role("hr"), "", false},
	}

	for _, tt := range tests {
		got, ok := tt.role.PendingState()
		if got != tt.want || ok != tt.ok {
			t.Errorf("%q.PendingState() = %q, %v; want %q, %v", tt.role, got, ok, tt.want, tt.ok)
		}
	}
}
