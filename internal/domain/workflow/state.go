package workflow

// State represents a leave request status in the approval lifecycle
type State string

const (
	StatePendingHeadApproval    State = "PENDING_HEAD_APPROVAL"
	StatePendingManagerApproval State = "PENDING_MANAGER_APPROVAL"
	StateApproved               State = "APPROVED"
	StateRejectedByHead         State = "REJECTED_BY_HEAD"
	StateRejectedByManager      State = "REJECTED_BY_MANAGER"
	StateCancelled              State = "CANCELLED"
)

// ReleasesDates returns true if a request in this state is ignored by overlap checks
func (s State) ReleasesDates() bool {
	switch s {
	case StateRejectedByHead, StateRejectedByManager, StateCancelled:
		return true
	}
	return false
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a valid workflow state
func (s State) IsValid() bool {
	switch s {
	case StatePendingHeadApproval, StatePendingManagerApproval, StateApproved,
		StateRejectedByHead, StateRejectedByManager, StateCancelled:
		return true
	}
	return false
}

// ReleasedStates lists the states exempt from overlap detection
func ReleasedStates() []State {
	return []State{StateRejectedByHead, StateRejectedByManager, StateCancelled}
}
