package jetstream

import (
	"errors"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"

	"github.com/weegigs/wee-counter-go/we"
)

func TestRevisionConflicts(t *testing.T) {
	t.Run("wrong last sequence is a conflict", func(t *testing.T) {
		err := maybeRevisionConflict(&nats.APIError{
			Code:        400,
			ErrorCode:   nats.JSErrCodeStreamWrongLastSequence,
			Description: "wrong last sequence: 3",
		})

		assert.True(t, errors.Is(err, we.RevisionConflict))
	})

	t.Run("other api errors are wrapped", func(t *testing.T) {
		cause := &nats.APIError{Code: 503, ErrorCode: nats.JSErrCodeJetStreamNotEnabled}

		err := maybeRevisionConflict(cause)

		assert.False(t, errors.Is(err, we.RevisionConflict))
		assert.True(t, errors.Is(err, cause))
	})

	t.Run("timeouts are not conflicts", func(t *testing.T) {
		err := maybeRevisionConflict(nats.ErrTimeout)

		assert.False(t, errors.Is(err, we.RevisionConflict))
		assert.True(t, errors.Is(err, nats.ErrTimeout))
	})
}
