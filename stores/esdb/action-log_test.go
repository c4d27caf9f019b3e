package esdb

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/weegigs/wee-counter-go/we"
)

func TestActionLog(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}

	ctx := context.Background()
	log, cleanup, err := NewTestActionLog(ctx, PageSize(5))
	if err != nil {
		t.Fatal(err)
	}
	defer cleanup()

	t.Run("esdb action log validation", func(t *testing.T) {
		suite := we.NewActionLogValidationSuite(ctx, log)
		suite.Run(t)
	})

	t.Run("should page through long streams", func(t *testing.T) {
		id := we.SliceId{Type: "test", Key: "should-page"}

		err := log.Append(ctx, id, we.Options(), createActions(12)...)
		if !assert.Nil(t, err) {
			return
		}

		history, err := log.Load(ctx, id)
		if !assert.Nil(t, err) {
			return
		}

		assert.Equal(t, 12, len(history.Actions))
		assert.Equal(t, we.Revision("0000000000000000000000000c"), history.Revision)
	})
}

func TestRevisions(t *testing.T) {
	assert.Equal(t, we.Revision("00000000000000000000000001"), ToRevision(0))

	r, err := FromRevision(ToRevision(41))
	if assert.Nil(t, err) {
		assert.Equal(t, uint64(41), r)
	}

	_, err = FromRevision(we.InitialRevision)
	assert.NotNil(t, err)

	_, err = FromRevision("not-hex")
	assert.NotNil(t, err)
}

func createActions(count int) []we.Action {
	actions := make([]we.Action, count)
	for i := range actions {
		actions[i] = we.LogValidationAction{TestStringValue: fmt.Sprintf("test %d", i)}
	}
	return actions
}
