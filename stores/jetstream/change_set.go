package jetstream

import (
	"github.com/goccy/go-json"

	"github.com/weegigs/wee-counter-go/we"
)

// ActionRecord is an action as published. Revisions and timestamps are taken
// from the stream when the change set is read back.
type ActionRecord struct {
	SliceId    we.SliceId                `json:"slice-id"`
	ActionID   we.ActionID               `json:"id"`
	ActionType we.ActionType             `json:"type"`
	Data       we.Data                   `json:"data"`
	Metadata   we.RecordedActionMetadata `json:"metadata"`
}

type ChangeSet struct {
	Actions []ActionRecord `json:"actions"`
}

func WithMarshaller(marshaller Marshaller) LogOption {
	return func(log *ActionLog) {
		log.marshaller = marshaller
	}
}

type Marshaller interface {
	Unmarshal(data []byte, v any) error
	Marshal(v any) ([]byte, error)
}

type JSONMarshaller struct{}

func (JSONMarshaller) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (JSONMarshaller) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}
