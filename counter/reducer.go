package counter

import "github.com/weegigs/wee-counter-go/we"

// Reduce returns the state that follows action. A nil state is treated as
// InitialState. The given state is never modified; actions that are not
// counter actions return it unchanged.
func Reduce(state *State, action we.Action) *State {
	if state == nil {
		initial := InitialState()
		state = &initial
	}

	switch a := action.(type) {
	case SetDiffAction:
		next := *state
		next.Diff = a.Diff
		return &next
	case IncreaseAction:
		next := *state
		next.Number = state.Number + state.Diff
		return &next
	case DecreaseAction:
		next := *state
		next.Number = state.Number - state.Diff
		return &next
	default:
		return state
	}
}
