package workflow

// Trigger represents an approver or owner action that can cause a state transition
type Trigger string

const (
	TriggerSubmit         Trigger = "SUBMIT"
	TriggerHeadApprove    Trigger = "HEAD_APPROVE"
	TriggerHeadReject     Trigger = "HEAD_REJECT"
	TriggerManagerApprove Trigger = "MANAGER_APPROVE"
	TriggerManagerReject  Trigger = "MANAGER_REJECT"
	TriggerCancel         Trigger = "CANCEL"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
