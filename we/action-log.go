package we

import (
	"context"
	"errors"
	"strings"
)

type ActionID string

func (id ActionID) String() string {
	return string(id)
}

type CorrelationID string

func (id CorrelationID) String() string {
	return string(id)
}

// SliceId identifies one instance of a slice, for example a single named
// counter.
type SliceId struct {
	Type string `json:"type"`
	Key  string `json:"key"`
}

type EncodedSliceId string

func (id SliceId) Encode() EncodedSliceId {
	return EncodedSliceId(strings.Join([]string{id.Type, id.Key}, "."))
}

func (id SliceId) String() string {
	return id.Encode().String()
}

func (id EncodedSliceId) String() string {
	return string(id)
}

func (id EncodedSliceId) Decode() (*SliceId, error) {
	separated := strings.Split(string(id), ".")
	if len(separated) < 2 {
		return nil, errors.New("expected . delimiter in slice id")
	}

	return &SliceId{
		Type: separated[0],
		Key:  strings.Join(separated[1:], "."),
	}, nil
}

type RecordedActionMetadata struct {
	CausationId   ActionID      `json:"causationId,omitempty"`
	CorrelationId CorrelationID `json:"correlationId,omitempty"`
}

type RecordedAction struct {
	SliceId    SliceId                `json:"slice"`
	Revision   Revision               `json:"revision"`
	ActionID   ActionID               `json:"id"`
	ActionType ActionType             `json:"type"`
	Timestamp  Timestamp              `json:"timestamp"`
	Metadata   RecordedActionMetadata `json:"metadata"`
	Data       Data                   `json:"data"`
}

// Remote returns the recorded action in the form a slice can decode.
func (r RecordedAction) Remote() RemoteAction {
	return RemoteAction{Type: r.ActionType, Payload: r.Data}
}

type History struct {
	Id       SliceId          `json:"id"`
	Actions  []RecordedAction `json:"actions,omitempty"`
	Revision Revision         `json:"revision"`
}

func RevisionOf(actions []RecordedAction) Revision {
	if len(actions) == 0 {
		return InitialRevision
	}

	return actions[len(actions)-1].Revision
}

type HistoryLoader = func(ctx context.Context, id SliceId) (History, error)
type ActionAppender = func(ctx context.Context, id SliceId, options AppendOptions, actions ...Action) error

// ActionLog records the actions dispatched to slice instances.
type ActionLog interface {
	Load(ctx context.Context, id SliceId) (History, error)
	Append(ctx context.Context, id SliceId, options AppendOptions, actions ...Action) error
}

var RevisionConflict = errors.New("revision-conflict")

var NothingToAppend = errors.New("attempted to append an empty list of actions")

type AppendOptions struct {
	RecordedActionMetadata
	ExpectedRevision Revision
}

type AppendOption func(modifier *AppendOptions)

func Options(options ...AppendOption) AppendOptions {
	modifiers := &AppendOptions{}
	for _, option := range options {
		option(modifiers)
	}

	return *modifiers
}

func WithExpectedRevision(expectedRevision Revision) AppendOption {
	return func(modifier *AppendOptions) {
		modifier.ExpectedRevision = expectedRevision
	}
}

func WithCorrelationId(correlationId CorrelationID) AppendOption {
	return func(modifier *AppendOptions) {
		modifier.RecordedActionMetadata.CorrelationId = correlationId
	}
}

func WithCausationId(correlationId CorrelationID, causationId ActionID) AppendOption {
	return func(modifier *AppendOptions) {
		modifier.RecordedActionMetadata.CausationId = causationId
		modifier.RecordedActionMetadata.CorrelationId = correlationId
	}
}

// EncodeAction converts an action into its recorded payload. Remote actions
// keep their original payload.
func EncodeAction(action Action) (Data, error) {
	if remote, ok := action.(RemoteAction); ok {
		return remote.Payload, nil
	}

	return MarshalToData(action)
}
