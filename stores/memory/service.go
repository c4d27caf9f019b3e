package memory

import (
	"github.com/google/wire"

	"github.com/weegigs/wee-counter-go/we"
)

func ProvideActionLog() *ActionLog {
	return NewActionLog()
}

var Set = wire.NewSet(
	ProvideActionLog,
	wire.Bind(new(we.ActionLog), new(*ActionLog)),
)
