package jetstream

import (
	"github.com/oklog/ulid/v2"

	"github.com/weegigs/wee-counter-go/we"
)

type IDGenerator interface {
	Create() we.ActionID
}

func WithIdGenerator(generator IDGenerator) LogOption {
	return func(log *ActionLog) {
		log.id = generator
	}
}

// WithClock sets the clock used for action ids. Revisions always come from
// the stream sequence and the server timestamp.
func WithClock(clock we.Clock) LogOption {
	return func(log *ActionLog) {
		log.clock = clock
	}
}

func NewDefaultIdGenerator(clock we.Clock) IDGenerator {
	return &DefaultIdGenerator{clock: clock}
}

type DefaultIdGenerator struct {
	clock we.Clock
}

func (g *DefaultIdGenerator) Create() we.ActionID {
	return we.ActionID(ulid.MustNew(ulid.Timestamp(g.clock.Now()), ulid.DefaultEntropy()).String())
}
