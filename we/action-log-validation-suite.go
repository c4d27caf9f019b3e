package we

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/jaswdr/faker"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
)

var entropy = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)

func NewActionLogValidationSuite(ctx context.Context, log ActionLog) *ActionLogValidationSuite {
	return &ActionLogValidationSuite{
		log:   log,
		ctx:   ctx,
		faker: faker.New(),
	}
}

// ActionLogValidationSuite checks the behaviour every ActionLog implementation
// must share.
type ActionLogValidationSuite struct {
	log   ActionLog
	ctx   context.Context
	faker faker.Faker
}

const LogValidationActionType = ActionType("go-test/VALIDATED")

type LogValidationAction struct {
	TestStringValue string `json:"test_string_value"`
	TestIntValue    int    `json:"test_int_value"`
}

func (LogValidationAction) ActionType() ActionType {
	return LogValidationActionType
}

func (s *ActionLogValidationSuite) Run(t *testing.T) {
	t.Run("loads an initial revision", s.LoadInitial)
	t.Run("loads a revision with actions", s.LoadsRevisionWithActions)
	t.Run("appends single action", s.AppendsSingleAction)
	t.Run("appends multiple actions in a single transaction", s.AppendsMultipleActions)
	t.Run("rejects an empty append", s.RejectsEmptyAppend)
	t.Run("returns a revision conflict with an initial revision", s.RevisionConflictOnInitialRevision)
	t.Run("returns a revision conflict on subsequent revision", s.RevisionConflictOnSubsequentRevision)
	t.Run("accepts the expected revision", s.AcceptsExpectedRevision)
	t.Run("supports causation id", s.Causation)
}

func (s *ActionLogValidationSuite) MakeTestSliceId() SliceId {
	return SliceId{
		Type: "go-test",
		Key:  ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String(),
	}
}

func (s *ActionLogValidationSuite) MakeTestAction() LogValidationAction {
	return LogValidationAction{
		TestStringValue: s.faker.Lorem().Sentence(10),
		TestIntValue:    s.faker.Int(),
	}
}

func (s *ActionLogValidationSuite) MakeTestActions(count int) []Action {
	actions := make([]Action, count)
	for i := 0; i < count; i++ {
		actions[i] = s.MakeTestAction()
	}

	return actions
}

func (s *ActionLogValidationSuite) LoadInitial(t *testing.T) {
	id := s.MakeTestSliceId()
	history, err := s.log.Load(s.ctx, id)
	if !assert.Nil(t, err) {
		return
	}

	assert.Empty(t, history.Actions)
	assert.Equal(t, InitialRevision, history.Revision)
	assert.EqualValues(t, id, history.Id)
}

func (s *ActionLogValidationSuite) AppendsSingleAction(t *testing.T) {
	id := s.MakeTestSliceId()
	err := s.log.Append(s.ctx, id, Options(), s.MakeTestAction())

	assert.Nil(t, err)
}

func (s *ActionLogValidationSuite) AppendsMultipleActions(t *testing.T) {
	actions := s.MakeTestActions(17)

	id := s.MakeTestSliceId()
	err := s.log.Append(s.ctx, id, Options(), actions...)
	if !assert.Nil(t, err) {
		return
	}

	history, err := s.log.Load(s.ctx, id)
	if !assert.Nil(t, err) {
		return
	}

	assert.Len(t, history.Actions, 17)
	for i, recorded := range history.Actions {
		var action LogValidationAction
		if !assert.Nil(t, UnmarshalFromData(recorded.Data, &action)) {
			return
		}
		assert.Equal(t, actions[i], action)
	}
}

func (s *ActionLogValidationSuite) RejectsEmptyAppend(t *testing.T) {
	err := s.log.Append(s.ctx, s.MakeTestSliceId(), Options())

	assert.ErrorIs(t, err, NothingToAppend)
}

func (s *ActionLogValidationSuite) LoadsRevisionWithActions(t *testing.T) {
	id := s.MakeTestSliceId()
	action := s.MakeTestAction()

	err := s.log.Append(s.ctx, id, Options(), action)
	if !assert.Nil(t, err) {
		return
	}

	history, err := s.log.Load(s.ctx, id)
	if !assert.Nil(t, err) {
		return
	}

	if !assert.Len(t, history.Actions, 1) {
		return
	}

	recorded := history.Actions[0]
	assert.EqualValues(t, id, history.Id)
	assert.NotEqual(t, InitialRevision, history.Revision)
	assert.Equal(t, recorded.Revision, history.Revision)
	assert.Equal(t, LogValidationActionType, recorded.ActionType)
	assert.EqualValues(t, id, recorded.SliceId)
	assert.NotEmpty(t, recorded.ActionID)
}

func (s *ActionLogValidationSuite) Last(id SliceId) (*RecordedAction, error) {
	loaded, err := s.log.Load(s.ctx, id)
	if err != nil {
		return nil, err
	}

	length := len(loaded.Actions)
	if length == 0 {
		return nil, errors.New("no actions found")
	}

	return &loaded.Actions[length-1], nil
}

func (s *ActionLogValidationSuite) RevisionConflictOnInitialRevision(t *testing.T) {
	action := s.MakeTestAction()

	id := s.MakeTestSliceId()
	err := s.log.Append(s.ctx, id, Options(), action)
	if !assert.Nil(t, err) {
		return
	}

	err = s.log.Append(s.ctx, id, Options(WithExpectedRevision(InitialRevision)), action)
	assert.NotNil(t, err)
	assert.Equal(t, RevisionConflict, err)
}

func (s *ActionLogValidationSuite) RevisionConflictOnSubsequentRevision(t *testing.T) {
	id := s.MakeTestSliceId()
	action := s.MakeTestAction()

	err := s.log.Append(s.ctx, id, Options(), action)
	if !assert.Nil(t, err) {
		return
	}

	first, err := s.log.Load(s.ctx, id)
	if !assert.Nil(t, err) {
		return
	}

	err = s.log.Append(s.ctx, id, Options(), action)
	if !assert.Nil(t, err) {
		return
	}

	err = s.log.Append(s.ctx, id, Options(WithExpectedRevision(first.Revision)), action)
	assert.NotNil(t, err)
	assert.Equal(t, RevisionConflict, err)
}

func (s *ActionLogValidationSuite) AcceptsExpectedRevision(t *testing.T) {
	id := s.MakeTestSliceId()

	err := s.log.Append(s.ctx, id, Options(WithExpectedRevision(InitialRevision)), s.MakeTestAction())
	if !assert.Nil(t, err) {
		return
	}

	first, err := s.log.Load(s.ctx, id)
	if !assert.Nil(t, err) {
		return
	}

	err = s.log.Append(s.ctx, id, Options(WithExpectedRevision(first.Revision)), s.MakeTestAction())
	if !assert.Nil(t, err) {
		return
	}

	second, err := s.log.Load(s.ctx, id)
	if !assert.Nil(t, err) {
		return
	}

	assert.Len(t, second.Actions, 2)
	assert.NotEqual(t, first.Revision, second.Revision)
}

func (s *ActionLogValidationSuite) Causation(t *testing.T) {
	action := s.MakeTestAction()

	id := s.MakeTestSliceId()
	err := s.log.Append(s.ctx, id, Options(), action)
	if !assert.Nil(t, err) {
		return
	}

	first, err := s.Last(id)
	if !assert.Nil(t, err) {
		return
	}

	correlationId := CorrelationID(strings.Join([]string{"action/", first.ActionID.String()}, ""))

	err = s.log.Append(
		s.ctx,
		id,
		Options(WithCausationId(correlationId, first.ActionID)),
		action,
	)
	if !assert.Nil(t, err) {
		return
	}

	second, err := s.Last(id)
	if !assert.Nil(t, err) {
		return
	}

	assert.Equal(t, correlationId, second.Metadata.CorrelationId)
	assert.Equal(t, first.ActionID, second.Metadata.CausationId)
}
