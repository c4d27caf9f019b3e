package we

type ActionType string

func (t ActionType) String() string {
	return string(t)
}

// Action is an immutable description of a single intended state change.
type Action interface {
	ActionType() ActionType
}

func ActionTypeOf(action Action) ActionType {
	if action == nil {
		return ""
	}

	return action.ActionType()
}

// RemoteAction is an action that has not been decoded into its concrete type,
// either because it arrived over a transport or was read back from a log.
type RemoteAction struct {
	Type    ActionType `json:"type"`
	Payload Data       `json:"payload"`
}

func (a RemoteAction) ActionType() ActionType {
	return a.Type
}

const InitActionType = ActionType("@@we/INIT")

// InitAction is never handled by a slice reducer. Reducing it from an absent
// state yields the slice's initial state.
type InitAction struct{}

func (InitAction) ActionType() ActionType {
	return InitActionType
}
