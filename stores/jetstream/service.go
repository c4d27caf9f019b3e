package jetstream

import (
	"github.com/google/wire"
	"github.com/nats-io/nats.go"

	"github.com/weegigs/wee-counter-go/we"
)

type URL string

type StreamName string

const DefaultStreamName = StreamName("wee-counter")

func Connection(url URL) (*nats.Conn, func(), error) {
	nc, err := nats.Connect(string(url))
	if err != nil {
		return nil, nil, err
	}

	return nc, nc.Close, nil
}

func ProvideActionLog(name StreamName, connection *nats.Conn) (*ActionLog, error) {
	return NewActionLog(string(name), connection)
}

var Set = wire.NewSet(
	Connection,
	wire.Value(DefaultStreamName),
	ProvideActionLog,
	wire.Bind(new(we.ActionLog), new(*ActionLog)),
)
