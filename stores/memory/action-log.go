package memory

import (
	"context"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"

	"github.com/weegigs/wee-counter-go/we"
)

type LogOption func(*ActionLog)

func WithClock(clock we.Clock) LogOption {
	return func(log *ActionLog) {
		log.clock = clock
	}
}

func NewActionLog(options ...LogOption) *ActionLog {
	log := &ActionLog{
		streams:  make(map[we.EncodedSliceId][]we.RecordedAction),
		revision: we.NewRevisionGenerator(),
	}

	for _, option := range options {
		option(log)
	}

	if log.clock == nil {
		log.clock = we.SystemClock{}
	}

	return log
}

// ActionLog keeps recorded actions in process. Its contents are lost when the
// process exits.
type ActionLog struct {
	lk       sync.RWMutex
	streams  map[we.EncodedSliceId][]we.RecordedAction
	revision *we.RevisionGenerator
	clock    we.Clock
}

func (l *ActionLog) Load(ctx context.Context, id we.SliceId) (we.History, error) {
	l.lk.RLock()
	defer l.lk.RUnlock()

	stored := l.streams[id.Encode()]
	actions := make([]we.RecordedAction, len(stored))
	copy(actions, stored)

	return we.History{
		Id:       id,
		Actions:  actions,
		Revision: we.RevisionOf(actions),
	}, nil
}

func (l *ActionLog) Append(ctx context.Context, id we.SliceId, options we.AppendOptions, actions ...we.Action) error {
	if len(actions) == 0 {
		return we.NothingToAppend
	}

	now := l.clock.Now()
	timestamp := we.TimestampFromTime(now)

	recorded := make([]we.RecordedAction, len(actions))
	for i, action := range actions {
		data, err := we.EncodeAction(action)
		if err != nil {
			return errors.Wrap(err, "failed to encode action")
		}

		recorded[i] = we.RecordedAction{
			SliceId:    id,
			ActionID:   we.ActionID(ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String()),
			ActionType: we.ActionTypeOf(action),
			Timestamp:  timestamp,
			Metadata:   options.RecordedActionMetadata,
			Data:       data,
		}
	}

	l.lk.Lock()
	defer l.lk.Unlock()

	key := id.Encode()
	current := we.RevisionOf(l.streams[key])
	if options.ExpectedRevision != "" && options.ExpectedRevision != current {
		return we.RevisionConflict
	}

	for i := range recorded {
		recorded[i].Revision = l.revision.NewRevision(now)
	}

	l.streams[key] = append(l.streams[key], recorded...)

	return nil
}

func (l *ActionLog) Remove(ctx context.Context, id we.SliceId) (int, error) {
	l.lk.Lock()
	defer l.lk.Unlock()

	key := id.Encode()
	count := len(l.streams[key])
	delete(l.streams, key)

	return count, nil
}
