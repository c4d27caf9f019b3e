package counter

import "github.com/weegigs/wee-counter-go/we"

const Name = "counter"

var Slice = we.Slice[State]{
	Name:   Name,
	Reduce: Reduce,
	Decoders: we.Decoders{
		SetDiffType:  we.JsonDecoder[SetDiffAction]{},
		IncreaseType: we.JsonDecoder[IncreaseAction]{},
		DecreaseType: we.JsonDecoder[DecreaseAction]{},
	},
}

type CounterService = we.SliceService[State]

func NewCounterService(log we.ActionLog) CounterService {
	return we.NewSliceService(log, Slice)
}

func NewStore(options ...we.StoreOption[State]) *we.Store[State] {
	return we.NewStore(Slice, options...)
}
