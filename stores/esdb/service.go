package esdb

import (
	"github.com/google/wire"

	"github.com/weegigs/wee-counter-go/we"
)

type ConnectionString string

func ProvideActionLog(connection ConnectionString) (*ActionLog, error) {
	return Connect(string(connection))
}

var Set = wire.NewSet(
	ProvideActionLog,
	wire.Bind(new(we.ActionLog), new(*ActionLog)),
)
