package ds

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/weegigs/wee-counter-go/we"
)

func TestDynamoActionLog(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}

	ctx := context.Background()
	log, tearDown, err := DynamoTestActionLog(ctx)
	if err != nil {
		t.Logf("failed to create test action log. %+v", err)
		t.FailNow()
	}
	defer tearDown()

	t.Run("dynamodb action log validation", func(t *testing.T) {
		suite := we.NewActionLogValidationSuite(ctx, log)
		suite.Run(t)
	})

	t.Run("removes recorded actions", func(t *testing.T) {
		id := we.SliceId{Type: "go-test", Key: "remove"}

		err := log.Append(ctx, id, we.Options(), we.LogValidationAction{TestIntValue: 1})
		if !assert.Nil(t, err) {
			return
		}

		count, err := log.Remove(ctx, id)
		if !assert.Nil(t, err) {
			return
		}
		assert.Equal(t, 2, count)

		loaded, err := log.Load(ctx, id)
		if assert.Nil(t, err) {
			assert.Equal(t, we.InitialRevision, loaded.Revision)
		}
	})
}

func TestChangeSet(t *testing.T) {
	id := we.SliceId{Type: "counter", Key: "change-set"}
	actions := []we.RecordedAction{
		{SliceId: id, Revision: "01FX0000000000000000000001", ActionType: "counter/INCREASE"},
		{SliceId: id, Revision: "01FX0000000000000000000002", ActionType: "counter/SET_DIFF", Data: we.JsonData([]byte(`{"diff":3}`))},
	}

	cs, err := NewChangeSet(id, actions, "2022-03-04T05:06:07.008Z")
	if !assert.Nil(t, err) {
		return
	}

	assert.Equal(t, "counter.change-set", cs.PartitionKey)
	assert.Equal(t, "change-set#01FX0000000000000000000002", cs.SortKey)
	assert.Equal(t, we.Revision("01FX0000000000000000000002"), cs.Revision)
	assert.Equal(t, latestSortKey, cs.Latest().SortKey)

	decoded, err := cs.RecordedActions()
	if assert.Nil(t, err) {
		assert.Equal(t, actions, decoded)
	}

	sliceId, err := cs.SliceId()
	if assert.Nil(t, err) {
		assert.Equal(t, id, *sliceId)
	}
}
