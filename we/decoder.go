package we

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
)

type ActionDecoder interface {
	Decode(ctx context.Context, data Data) (Action, error)
}

type Decoders map[ActionType]ActionDecoder

// JsonDecoder decodes a json payload into A. Actions without fields may be
// sent with an empty payload.
type JsonDecoder[A Action] struct{}

func (JsonDecoder[A]) Decode(ctx context.Context, data Data) (Action, error) {
	var action A
	if data.Empty() {
		return action, nil
	}

	if data.Encoding != JsonEncoding {
		return nil, InvalidEncoding(JsonEncoding, data.Encoding)
	}

	if err := json.UnmarshalContext(ctx, data.Data, &action); err != nil {
		return nil, err
	}

	return action, nil
}

type ActionNotDecodedError struct {
	Type  ActionType
	Cause error
}

func (e *ActionNotDecodedError) Error() string {
	return fmt.Sprintf("failed to decode action %s: %v", e.Type, e.Cause)
}

func (e *ActionNotDecodedError) Unwrap() error {
	return e.Cause
}

func ActionNotDecoded(actionType ActionType, cause error) error {
	return &ActionNotDecodedError{Type: actionType, Cause: cause}
}
