package we

import (
	"context"
)

// Reducer computes the next state from the current state and an action. A nil
// state stands for the initial state. Reducers must not modify *state and
// return state itself for actions they do not handle.
type Reducer[S any] func(state *S, action Action) *S

type Slice[S any] struct {
	Name     string
	Reduce   Reducer[S]
	Decoders Decoders
}

func (s Slice[S]) Initial() *S {
	return s.Reduce(nil, InitAction{})
}

// Decode converts a RemoteAction with a registered type into its concrete
// action. Any other action, including remote actions of unregistered types, is
// returned as is.
func (s Slice[S]) Decode(ctx context.Context, action Action) (Action, error) {
	remote, ok := action.(RemoteAction)
	if !ok {
		return action, nil
	}

	decoder := s.Decoders[remote.Type]
	if decoder == nil {
		return remote, nil
	}

	decoded, err := decoder.Decode(ctx, remote.Payload)
	if err != nil {
		return nil, ActionNotDecoded(remote.Type, err)
	}

	return decoded, nil
}

func (s Slice[S]) Handles(actionType ActionType) bool {
	_, ok := s.Decoders[actionType]
	return ok
}
