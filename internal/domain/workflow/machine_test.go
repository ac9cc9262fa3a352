package workflow

import (
	"errors"
	"testing"
)

func TestState_ReleasesDates(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StatePendingHeadApproval, false},
		{StatePendingManagerApproval, false},
		{StateApproved, false},
		{StateRejectedByHead, true},
		{StateRejectedByManager, true},
		{StateCancelled, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.ReleasesDates(); got != tt.expected {
				t.Errorf("State.ReleasesDates() = %v, want %v", got, tt.expected)
			}
		})
	}

	for _, s := range ReleasedStates() {
		if !s.ReleasesDates() {
			t.Errorf("ReleasedStates() contains %v which does not release dates", s)
		}
	}
	if got := len(ReleasedStates()); got != 3 {
		t.Errorf("ReleasedStates() returned %d states, want 3", got)
	}
}

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"valid state", StatePendingHeadApproval, true},
		{"valid state", StateCancelled, true},
		{"invalid state", State("INVALID"), false},
		{"empty state", State(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("State.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuilder_ConfigurePanicsOnInvalidState(t *testing.T) {
	builder := NewBuilder()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Configure() should panic on invalid state")
		}
	}()

	builder.Configure(State("INVALID"))
}

func TestBuilder_BuildPanicsOnInvalidInitialState(t *testing.T) {
	builder := NewBuilder()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Build() should panic on invalid initial state")
		}
	}()

	builder.Build(State("INVALID"))
}

func TestStateConfiguration_PermitPanicsOnConflictingTarget(t *testing.T) {
	builder := NewBuilder()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Permit() should panic when a trigger already targets another state")
		}
	}()

	builder.Configure(StatePendingHeadApproval).
		Permit(TriggerHeadApprove, StatePendingManagerApproval).
		Permit(TriggerHeadApprove, StateApproved)
}

func TestStateMachine_Immutability(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StatePendingHeadApproval).
		Permit(TriggerHeadApprove, StatePendingManagerApproval)

	machine1 := builder.Build(StatePendingHeadApproval)
	machine2 := builder.Build(StatePendingHeadApproval)

	if err := machine1.Fire(TriggerHeadApprove); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}

	if machine2.State() != StatePendingHeadApproval {
		t.Errorf("machine2 state = %v, want %v (machines should be independent)", machine2.State(), StatePendingHeadApproval)
	}

	// Configuring the builder afterwards must not leak into built machines
	builder.Configure(StatePendingHeadApproval).Permit(TriggerHeadReject, StateRejectedByHead)
	if triggers := machine2.PermittedTriggers(); len(triggers) != 1 || triggers[0] != TriggerHeadApprove {
		t.Errorf("machine2 should not see transitions configured after Build(), got %v", triggers)
	}
}

// Every (state, trigger) pair of the leave graph, legal or not.
func TestLeaveMachine_TransitionTable(t *testing.T) {
	legal := map[State]map[Trigger]State{
		StatePendingHeadApproval: {
			TriggerHeadApprove: StatePendingManagerApproval,
			TriggerHeadReject:  StateRejectedByHead,
		},
		StatePendingManagerApproval: {
			TriggerManagerApprove: StateApproved,
			TriggerManagerReject:  StateRejectedByManager,
		},
		StateApproved: {
			TriggerCancel: StateCancelled,
		},
	}

	states := []State{
		StatePendingHeadApproval, StatePendingManagerApproval, StateApproved,
		StateRejectedByHead, StateRejectedByManager, StateCancelled,
	}
	triggers := []Trigger{
		TriggerHeadApprove, TriggerHeadReject, TriggerManagerApprove,
		TriggerManagerReject, TriggerCancel, TriggerSubmit,
	}

	for _, from := range states {
		for _, trigger := range triggers {
			t.Run(from.String()+"/"+trigger.String(), func(t *testing.T) {
				to, err := Next(from, trigger)
				want, ok := legal[from][trigger]
				if ok {
					if err != nil {
						t.Fatalf("Next() unexpected error: %v", err)
					}
					if to != want {
						t.Errorf("Next() = %v, want %v", to, want)
					}
					return
				}
				if !errors.Is(err, ErrInvalidTransition) {
					t.Errorf("Next() error = %v, want %v", err, ErrInvalidTransition)
				}
				if to != from {
					t.Errorf("Next() state = %v, want unchanged %v", to, from)
				}
			})
		}
	}
}

func TestLeaveMachine_FullPathAndCancel(t *testing.T) {
	machine, err := NewLeaveMachine(InitialState)
	if err != nil {
		t.Fatalf("NewLeaveMachine() error = %v", err)
	}

	steps := []struct {
		trigger       Trigger
		expectedState State
	}{
		{TriggerHeadApprove, StatePendingManagerApproval},
		{TriggerManagerApprove, StateApproved},
		{TriggerCancel, StateCancelled},
	}

	for i, step := range steps {
		if err := machine.Fire(step.trigger); err != nil {
			t.Errorf("Step %d: Fire(%v) failed: %v", i, step.trigger, err)
		}
		if machine.State() != step.expectedState {
			t.Errorf("Step %d: State after Fire(%v) = %v, want %v", i, step.trigger, machine.State(), step.expectedState)
		}
	}

	if triggers := machine.PermittedTriggers(); len(triggers) != 0 {
		t.Errorf("Cancelled state should have 0 permitted triggers, got %v", triggers)
	}
	if err := machine.Fire(TriggerCancel); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second cancel error = %v, want %v", err, ErrInvalidTransition)
	}
}

func TestLeaveMachine_PermittedTriggers(t *testing.T) {
	machine, err := NewLeaveMachine(StatePendingHeadApproval)
	if err != nil {
		t.Fatalf("NewLeaveMachine() error = %v", err)
	}

	triggers := machine.PermittedTriggers()
	if len(triggers) != 2 || triggers[0] != TriggerHeadApprove || triggers[1] != TriggerHeadReject {
		t.Errorf("PermittedTriggers() = %v, want [HEAD_APPROVE HEAD_REJECT]", triggers)
	}
}

func TestNewLeaveMachine_InvalidState(t *testing.T) {
	if _, err := NewLeaveMachine(State("UNDER_REVIEW")); !errors.Is(err, ErrInvalidState) {
		t.Errorf("NewLeaveMachine() error = %v, want %v", err, ErrInvalidState)
	}
}

// The shared table is populated before any caller can reach it.
func TestLeaveApproval_ReadyAfterInit(t *testing.T) {
	if leaveApproval == nil {
		t.Fatal("leaveApproval is nil after package init")
	}
	to, err := Next(StatePendingHeadApproval, TriggerHeadApprove)
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if to != StatePendingManagerApproval {
		t.Errorf("Next() = %v, want %v", to, StatePendingManagerApproval)
	}

	fresh := buildLeaveApproval().Build(StatePendingManagerApproval).PermittedTriggers()
	shared := AllowedTriggers(StatePendingManagerApproval)
	if len(fresh) != len(shared) || len(shared) != 2 {
		t.Errorf("AllowedTriggers() = %v, want %v", shared, fresh)
	}
}

func TestAllowedTriggers(t *testing.T) {
	tests := []struct {
		state State
		want  []Trigger
	}{
		{StatePendingHeadApproval, []Trigger{TriggerHeadApprove, TriggerHeadReject}},
		{StatePendingManagerApproval, []Trigger{TriggerManagerApprove, TriggerManagerReject}},
		{StateApproved, []Trigger{TriggerCancel}},
		{StateRejectedByHead, nil},
		{StateCancelled, nil},
		{State("UNDER_REVIEW"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			got := AllowedTriggers(tt.state)
			if len(got) != len(tt.want) {
				t.Fatalf("AllowedTriggers() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("AllowedTriggers()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
