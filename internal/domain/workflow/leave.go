package workflow

// leaveApproval is the fixed two-stage approval graph.
// Every request gets its own machine from it.
var leaveApproval StateMachineBuilder

func init() {
	leaveApproval = buildLeaveApproval()
}

func buildLeaveApproval() StateMachineBuilder {
	b := NewBuilder()

	b.Configure(StatePendingHeadApproval).
		Permit(TriggerHeadApprove, StatePendingManagerApproval).
		Permit(TriggerHeadReject, StateRejectedByHead)

	b.Configure(StatePendingManagerApproval).
		Permit(TriggerManagerApprove, StateApproved).
		Permit(TriggerManagerReject, StateRejectedByManager)

	b.Configure(StateApproved).
		Permit(TriggerCancel, StateCancelled)

	return b
}

// InitialState is the status every admitted request starts in
const InitialState = StatePendingHeadApproval

// NewLeaveMachine returns a machine positioned at the given status of a leave request
func NewLeaveMachine(current State) (StateMachine, error) {
	if !current.IsValid() {
		return nil, ErrInvalidState
	}
	return leaveApproval.Build(current), nil
}

// Next resolves the state a trigger leads to from the current state without mutating anything
func Next(current State, trigger Trigger) (State, error) {
	m, err := NewLeaveMachine(current)
	if err != nil {
		return "", err
	}
	if err := m.Fire(trigger); err != nil {
		return current, err
	}
	return m.State(), nil
}

// AllowedTriggers lists the actions a request in the given status still accepts
func AllowedTriggers(current State) []Trigger {
	m, err := NewLeaveMachine(current)
	if err != nil {
		return []Trigger{}
	}
	return m.PermittedTriggers()
}
