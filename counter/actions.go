package counter

import "github.com/weegigs/wee-counter-go/we"

// Action types are prefixed with the slice name so they cannot collide with
// actions of other slices dispatched through the same host.
const (
	SetDiffType  = we.ActionType("counter/SET_DIFF")
	IncreaseType = we.ActionType("counter/INCREASE")
	DecreaseType = we.ActionType("counter/DECREASE")
)

// Action is the closed set of counter actions.
type Action interface {
	we.Action
	counterAction()
}

type SetDiffAction struct {
	Diff int `json:"diff"`
}

func (SetDiffAction) ActionType() we.ActionType { return SetDiffType }
func (SetDiffAction) counterAction()            {}

type IncreaseAction struct{}

func (IncreaseAction) ActionType() we.ActionType { return IncreaseType }
func (IncreaseAction) counterAction()            {}

type DecreaseAction struct{}

func (DecreaseAction) ActionType() we.ActionType { return DecreaseType }
func (DecreaseAction) counterAction()            {}

// SetDiff carries diff verbatim. Zero and negative steps are allowed.
func SetDiff(diff int) SetDiffAction {
	return SetDiffAction{Diff: diff}
}

func Increase() IncreaseAction {
	return IncreaseAction{}
}

func Decrease() DecreaseAction {
	return DecreaseAction{}
}
