package ds

import (
	"strings"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/weegigs/wee-counter-go/we"
)

const (
	changeSetPrefix = "change-set#"
	latestSortKey   = "latest-revision"
)

// ChangeSet is the item written for a single append. Actions are stored as a
// json document so the item shape does not depend on the action payloads.
type ChangeSet struct {
	PartitionKey string       `dynamodbav:"pk"`
	SortKey      string       `dynamodbav:"sk"`
	Actions      string       `dynamodbav:"actions"`
	Revision     we.Revision  `dynamodbav:"revision"`
	Timestamp    we.Timestamp `dynamodbav:"timestamp"`
}

type LatestRecord struct {
	PartitionKey string       `dynamodbav:"pk"`
	SortKey      string       `dynamodbav:"sk"`
	Revision     we.Revision  `dynamodbav:"revision"`
	Timestamp    we.Timestamp `dynamodbav:"timestamp"`
}

func partitionKey(id we.SliceId) string {
	return id.Encode().String()
}

func sortKey(revision we.Revision) string {
	return strings.Join([]string{changeSetPrefix, revision.String()}, "")
}

func NewChangeSet(id we.SliceId, actions []we.RecordedAction, timestamp we.Timestamp) (*ChangeSet, error) {
	encoded, err := json.Marshal(actions)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal actions")
	}

	last := we.RevisionOf(actions)

	return &ChangeSet{
		PartitionKey: partitionKey(id),
		SortKey:      sortKey(last),
		Actions:      string(encoded),
		Revision:     last,
		Timestamp:    timestamp,
	}, nil
}

func (cs *ChangeSet) RecordedActions() ([]we.RecordedAction, error) {
	var actions []we.RecordedAction
	if err := json.Unmarshal([]byte(cs.Actions), &actions); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal actions")
	}

	return actions, nil
}

func (cs *ChangeSet) SliceId() (*we.SliceId, error) {
	return we.EncodedSliceId(cs.PartitionKey).Decode()
}

func (cs *ChangeSet) Latest() *LatestRecord {
	return &LatestRecord{
		PartitionKey: cs.PartitionKey,
		SortKey:      latestSortKey,
		Revision:     cs.Revision,
		Timestamp:    cs.Timestamp,
	}
}
