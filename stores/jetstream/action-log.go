package jetstream

import (
	"context"
	"errors"

	"github.com/nats-io/nats.go"
	"github.com/oklog/ulid/v2"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/weegigs/wee-counter-go/internal/revision"
	"github.com/weegigs/wee-counter-go/we"
)

type LogOption func(*ActionLog)

const prefix = "change-set."

// NewActionLog stores change sets in the stream name, one subject per slice
// instance. The stream is created when it does not exist.
func NewActionLog(name string, connection *nats.Conn, options ...LogOption) (*ActionLog, error) {
	stream, err := connection.JetStream()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to open jetstream context")
	}

	if _, err := stream.StreamInfo(name); err != nil {
		if !errors.Is(err, nats.ErrStreamNotFound) {
			return nil, pkgerrors.Wrap(err, "failed to look up stream")
		}

		_, err = stream.AddStream(&nats.StreamConfig{
			Name:        name,
			Description: "change set stream for " + name,
			Subjects:    []string{prefix + ">"},
		})
		if err != nil {
			return nil, pkgerrors.Wrap(err, "failed to create stream")
		}
	}

	actionLog := &ActionLog{
		name:   name,
		stream: stream,
	}

	for _, option := range options {
		option(actionLog)
	}

	if actionLog.clock == nil {
		actionLog.clock = we.SystemClock{}
	}

	if actionLog.id == nil {
		actionLog.id = NewDefaultIdGenerator(actionLog.clock)
	}

	if actionLog.marshaller == nil {
		actionLog.marshaller = JSONMarshaller{}
	}

	return actionLog, nil
}

type ActionLog struct {
	name       string
	stream     nats.JetStreamContext
	clock      we.Clock
	id         IDGenerator
	marshaller Marshaller
}

func subject(id we.SliceId) string {
	return prefix + id.Encode().String()
}

func (l *ActionLog) Append(ctx context.Context, id we.SliceId, options we.AppendOptions, actions ...we.Action) error {
	if len(actions) == 0 {
		return we.NothingToAppend
	}

	records := make([]ActionRecord, len(actions))
	for index, action := range actions {
		data, err := we.EncodeAction(action)
		if err != nil {
			return pkgerrors.Wrap(err, "failed to encode action")
		}

		records[index] = ActionRecord{
			SliceId:    id,
			ActionID:   l.id.Create(),
			ActionType: we.ActionTypeOf(action),
			Data:       data,
			Metadata:   options.RecordedActionMetadata,
		}
	}

	bytes, err := l.marshaller.Marshal(ChangeSet{Actions: records})
	if err != nil {
		return err
	}

	opts := []nats.PubOpt{nats.Context(ctx)}

	expected := options.ExpectedRevision
	if expected != "" {
		if expected == we.InitialRevision {
			opts = append(opts, nats.ExpectLastSequencePerSubject(0))
		} else {
			sequence, err := revision.DecodeSequenceNumber(expected)
			if err != nil {
				return pkgerrors.Wrap(err, "invalid expected revision")
			}

			opts = append(opts, nats.ExpectLastSequencePerSubject(sequence))
		}
	}

	if _, err = l.stream.Publish(subject(id), bytes, opts...); err != nil {
		return maybeRevisionConflict(err)
	}

	return nil
}

// maybeRevisionConflict maps a rejected per subject sequence expectation to
// we.RevisionConflict.
func maybeRevisionConflict(err error) error {
	var api *nats.APIError
	if errors.As(err, &api) && api.ErrorCode == nats.JSErrCodeStreamWrongLastSequence {
		return we.RevisionConflict
	}

	return pkgerrors.Wrap(err, "failed to publish change set")
}

func (l *ActionLog) Load(ctx context.Context, id we.SliceId) (we.History, error) {
	actions, err := l.read(ctx, subject(id))
	if err != nil {
		return we.History{}, err
	}

	return we.History{
		Id:       id,
		Actions:  actions,
		Revision: we.RevisionOf(actions),
	}, nil
}

func (l *ActionLog) latest(ctx context.Context, subject string) (*uint64, error) {
	msg, err := l.stream.GetLastMsg(l.name, subject, nats.Context(ctx))
	if err != nil {
		if errors.Is(err, nats.ErrMsgNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return &msg.Sequence, nil
}

func (l *ActionLog) read(ctx context.Context, subject string) ([]we.RecordedAction, error) {
	latest, err := l.latest(ctx, subject)
	if err != nil {
		return nil, err
	}

	if latest == nil {
		return nil, nil
	}

	subscription, err := l.stream.SubscribeSync(subject, nats.DeliverAll(), nats.OrderedConsumer())
	if err != nil {
		return nil, err
	}
	defer func(subscription *nats.Subscription) {
		if err := subscription.Unsubscribe(); err != nil {
			log.Err(err).Msg("ephemeral stream subscription failed to unsubscribe cleanly")
		}
	}(subscription)

	var actions []we.RecordedAction
	for {
		msg, err := subscription.NextMsgWithContext(ctx)
		if err != nil {
			return nil, err
		}

		metadata, err := msg.Metadata()
		if err != nil {
			return nil, err
		}

		recorded, err := l.decodeChangeSet(msg.Data, metadata)
		if err != nil {
			return nil, err
		}

		actions = append(actions, recorded...)

		if metadata.Sequence.Stream >= *latest {
			break
		}
	}

	return actions, nil
}

func (l *ActionLog) decodeChangeSet(data []byte, metadata *nats.MsgMetadata) ([]we.RecordedAction, error) {
	cs := &ChangeSet{}
	if err := l.marshaller.Unmarshal(data, cs); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to unmarshal change set")
	}

	ts := ulid.Timestamp(metadata.Timestamp)
	timestamp := we.TimestampFromTime(metadata.Timestamp)

	result := make([]we.RecordedAction, 0, len(cs.Actions))
	for i, action := range cs.Actions {
		rev, err := revision.Encode(ts, metadata.Sequence.Stream, uint16(i))
		if err != nil {
			return nil, err
		}

		result = append(result, we.RecordedAction{
			SliceId:    action.SliceId,
			ActionID:   action.ActionID,
			Revision:   rev,
			Timestamp:  timestamp,
			ActionType: action.ActionType,
			Data:       action.Data,
			Metadata:   action.Metadata,
		})
	}

	return result, nil
}
