package workflow

// StateMachine tracks the current state of one request and validates transitions
type StateMachine interface {
	// State returns the current state
	State() State

	// Fire attempts to execute the trigger, transitioning to the new state if allowed
	Fire(trigger Trigger) error

	// PermittedTriggers returns all triggers that can be fired in the current state
	PermittedTriggers() []Trigger
}
