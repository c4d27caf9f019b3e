package esdb

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/EventStore/EventStore-Client-Go/esdb"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/weegigs/wee-counter-go/we"
)

type LogOption func(*ActionLog)

const defaultPageSize = 97

func PageSize(size int) LogOption {
	return func(log *ActionLog) {
		if size <= 0 {
			size = defaultPageSize
		}

		log.pageSize = size
	}
}

func NewActionLog(client *esdb.Client, options ...LogOption) *ActionLog {
	log := &ActionLog{
		db:       client,
		pageSize: defaultPageSize,
	}

	for _, option := range options {
		option(log)
	}

	return log
}

// ActionLog keeps one EventStoreDB stream per slice instance. Revisions are the
// stream position plus one, hex encoded, so that InitialRevision is never a
// real position.
type ActionLog struct {
	db       *esdb.Client
	pageSize int
}

func ToRevision(eventNumber uint64) we.Revision {
	return we.Revision(fmt.Sprintf("%026x", eventNumber+1))
}

func FromRevision(revision we.Revision) (uint64, error) {
	r, err := strconv.ParseUint(revision.String(), 16, 64)
	if err != nil {
		return 0, errors.Wrap(err, "invalid expected revision")
	}

	if r == 0 {
		return 0, errors.New("invalid expected revision")
	}

	return r - 1, nil
}

func expectedRevision(revision we.Revision) (esdb.ExpectedRevision, error) {
	switch revision {
	case "":
		return esdb.Any{}, nil
	case we.InitialRevision:
		return esdb.NoStream{}, nil
	default:
		r, err := FromRevision(revision)
		if err != nil {
			return nil, err
		}

		return esdb.Revision(r), nil
	}
}

func (l *ActionLog) Append(ctx context.Context, id we.SliceId, options we.AppendOptions, actions ...we.Action) error {
	if len(actions) == 0 {
		return we.NothingToAppend
	}

	metadata := map[string]string{}
	if options.RecordedActionMetadata.CorrelationId != "" {
		metadata["$correlationId"] = options.RecordedActionMetadata.CorrelationId.String()
	}
	if options.RecordedActionMetadata.CausationId != "" {
		metadata["$causationId"] = options.RecordedActionMetadata.CausationId.String()
	}

	var err error
	var md []byte
	if len(metadata) > 0 {
		md, err = json.Marshal(metadata)
		if err != nil {
			return errors.Wrap(err, "failed to marshal metadata")
		}
	}

	records := make([]esdb.EventData, len(actions))
	for i, action := range actions {
		data, err := we.EncodeAction(action)
		if err != nil {
			return errors.Wrap(err, "failed to encode action")
		}

		payload := data.Data
		if len(payload) == 0 {
			payload = []byte("{}")
		}

		records[i] = esdb.EventData{
			ContentType: esdb.JsonContentType,
			EventType:   we.ActionTypeOf(action).String(),
			Data:        payload,
			Metadata:    md,
		}
	}

	revision, err := expectedRevision(options.ExpectedRevision)
	if err != nil {
		return err
	}

	_, err = l.db.AppendToStream(ctx, id.Encode().String(), esdb.AppendToStreamOptions{ExpectedRevision: revision}, records...)
	if err != nil {
		if errors.Is(err, esdb.ErrWrongExpectedStreamRevision) {
			return we.RevisionConflict
		}

		return errors.Wrap(err, "failed to append to stream")
	}

	return nil
}

func (l *ActionLog) Load(ctx context.Context, id we.SliceId) (we.History, error) {
	var actions []we.RecordedAction

	var position esdb.StreamPosition = esdb.Start{}
	for {
		page, last, err := l.read(ctx, id, position)
		if err != nil {
			return we.History{}, err
		}

		actions = append(actions, page...)
		if len(page) < l.pageSize {
			break
		}

		position = last
	}

	return we.History{
		Id:       id,
		Actions:  actions,
		Revision: we.RevisionOf(actions),
	}, nil
}

func (l *ActionLog) read(ctx context.Context, id we.SliceId, from esdb.StreamPosition) ([]we.RecordedAction, esdb.StreamPosition, error) {
	if revision, ok := from.(esdb.StreamRevision); ok {
		from = esdb.StreamRevision{Value: revision.Value + 1}
	}

	stream, err := l.db.ReadStream(ctx, id.Encode().String(), esdb.ReadStreamOptions{From: from}, uint64(l.pageSize))
	if err != nil {
		if errors.Is(err, esdb.ErrStreamNotFound) || errors.Is(err, io.EOF) {
			return nil, esdb.End{}, nil
		}

		return nil, esdb.End{}, errors.Wrap(err, "failed to read stream")
	}
	defer stream.Close()

	var actions []we.RecordedAction
	var last esdb.StreamPosition = esdb.End{}

	for {
		event, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}

		if errors.Is(err, esdb.ErrStreamNotFound) {
			return nil, esdb.End{}, nil
		}

		if err != nil {
			return nil, esdb.End{}, errors.Wrap(err, "failed to read action")
		}

		e := event.OriginalEvent()

		var userMetadata map[string]string
		if len(e.UserMetadata) > 0 {
			if err := json.Unmarshal(e.UserMetadata, &userMetadata); err != nil {
				return nil, esdb.End{}, errors.Wrap(err, "failed to unmarshal metadata")
			}
		}

		actions = append(actions, we.RecordedAction{
			SliceId:    id,
			ActionID:   we.ActionID(e.EventID.String()),
			Revision:   ToRevision(e.EventNumber),
			Timestamp:  we.TimestampFromTime(e.CreatedDate),
			ActionType: we.ActionType(e.EventType),
			Data: we.Data{
				Encoding: e.ContentType,
				Data:     e.Data,
			},
			Metadata: we.RecordedActionMetadata{
				CorrelationId: we.CorrelationID(userMetadata["$correlationId"]),
				CausationId:   we.ActionID(userMetadata["$causationId"]),
			},
		})

		last = esdb.Revision(e.EventNumber)
	}

	return actions, last, nil
}
