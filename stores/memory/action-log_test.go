package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/weegigs/wee-counter-go/we"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func TestActionLog(t *testing.T) {
	ctx := context.Background()
	log := NewActionLog()

	t.Run("memory action log validation", func(t *testing.T) {
		suite := we.NewActionLogValidationSuite(ctx, log)
		suite.Run(t)
	})

	t.Run("removes recorded actions", func(t *testing.T) {
		id := we.SliceId{Type: "test", Key: "remove"}

		err := log.Append(ctx, id, we.Options(), we.LogValidationAction{TestStringValue: "a"}, we.LogValidationAction{TestStringValue: "b"})
		if !assert.Nil(t, err) {
			return
		}

		count, err := log.Remove(ctx, id)
		if !assert.Nil(t, err) {
			return
		}
		assert.Equal(t, 2, count)

		history, err := log.Load(ctx, id)
		if !assert.Nil(t, err) {
			return
		}
		assert.Equal(t, we.InitialRevision, history.Revision)
	})

	t.Run("stamps actions with the clock", func(t *testing.T) {
		now := time.Date(2022, 3, 4, 5, 6, 7, 8000000, time.UTC)
		log := NewActionLog(WithClock(fixedClock{now: now}))
		id := we.SliceId{Type: "test", Key: "clock"}

		err := log.Append(ctx, id, we.Options(), we.LogValidationAction{})
		if !assert.Nil(t, err) {
			return
		}

		history, err := log.Load(ctx, id)
		if !assert.Nil(t, err) {
			return
		}

		assert.Equal(t, we.Timestamp("2022-03-04T05:06:07.008Z"), history.Actions[0].Timestamp)
		assert.Equal(t, we.Timestamp("2022-03-04T05:06:07.008Z"), history.Revision.Timestamp())
	})
}
