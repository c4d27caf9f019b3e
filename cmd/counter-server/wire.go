//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"github.com/weegigs/wee-counter-go/counter"
	"github.com/weegigs/wee-counter-go/stores/ds"
	"github.com/weegigs/wee-counter-go/stores/esdb"
	"github.com/weegigs/wee-counter-go/stores/jetstream"
	"github.com/weegigs/wee-counter-go/stores/memory"
)

func memoryService() counter.CounterService {
	panic(wire.Build(memory.Set, counter.NewCounterService))
}

func live(ctx context.Context) (counter.CounterService, error) {
	panic(wire.Build(ds.Live, counter.NewCounterService))
}

func local(ctx context.Context) (counter.CounterService, error) {
	panic(wire.Build(ds.Local, counter.NewCounterService))
}

func jetstreamService(url jetstream.URL) (counter.CounterService, func(), error) {
	panic(wire.Build(jetstream.Set, counter.NewCounterService))
}

func esdbService(connection esdb.ConnectionString) (counter.CounterService, error) {
	panic(wire.Build(esdb.Set, counter.NewCounterService))
}
