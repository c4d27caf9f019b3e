//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"github.com/weegigs/wee-counter-go/counter"
	"github.com/weegigs/wee-counter-go/stores/ds"
)

func live(ctx context.Context) (counter.CounterService, error) {
	panic(wire.Build(ds.Live, counter.NewCounterService))
}
