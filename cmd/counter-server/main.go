package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/sdk/trace"

	"github.com/weegigs/wee-counter-go/connectors/wehttp"
	"github.com/weegigs/wee-counter-go/counter"
	"github.com/weegigs/wee-counter-go/stores/ds"
	"github.com/weegigs/wee-counter-go/stores/esdb"
	"github.com/weegigs/wee-counter-go/stores/jetstream"
	"github.com/weegigs/wee-counter-go/support"
	"github.com/weegigs/wee-counter-go/we"
)

type options struct {
	addr  string
	store string
	table string
	nats  string
	esdb  string
	trace string
}

func service(ctx context.Context, opts options) (counter.CounterService, func(), error) {
	none := func() {}

	switch opts.store {
	case "memory":
		return memoryService(), none, nil
	case "local":
		s, err := local(ctx)
		return s, none, err
	case "dynamo":
		if opts.table != "" {
			if err := os.Setenv(ds.TableNameVariable, opts.table); err != nil {
				return nil, nil, err
			}
		}
		s, err := live(ctx)
		return s, none, err
	case "jetstream":
		return jetstreamService(jetstream.URL(opts.nats))
	case "esdb":
		s, err := esdbService(esdb.ConnectionString(opts.esdb))
		return s, none, err
	}

	return nil, nil, errors.Errorf("unknown store %q", opts.store)
}

func exporter(ctx context.Context, name string) (trace.SpanExporter, error) {
	switch name {
	case "none":
		return nil, nil
	case "console":
		return we.ConsoleExporter()
	case "honeycomb":
		return we.HoneycombExporter(ctx, os.Getenv("HONEYCOMB_TEAM"), support.Getenv("HONEYCOMB_DATASET", counter.Name))
	case "jaeger":
		return we.JaegerExporter(support.Getenv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"))
	}

	return nil, errors.Errorf("unknown trace exporter %q", name)
}

func run(ctx context.Context, opts options) error {
	exp, err := exporter(ctx, opts.trace)
	if err != nil {
		return err
	}
	if exp != nil {
		shutdown := we.InstallTracing(exp)
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.WithError(err).Warn("failed to shut down tracing")
			}
		}()
	}

	svc, cleanup, err := service(ctx, opts)
	if err != nil {
		return errors.Wrapf(err, "failed to configure %s store", opts.store)
	}
	defer cleanup()

	logger := zerolog.New(os.Stderr).With().Timestamp().Str("store", opts.store).Logger()
	handler := wehttp.NewHandler[counter.State](svc, wehttp.Logger[counter.State](&logger))
	server := &http.Server{
		Addr:    opts.addr,
		Handler: withLogging(handler),
	}

	errs := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{"addr": opts.addr, "store": opts.store}).Info("listening")
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return server.Shutdown(shutdown)
}

func main() {
	var opts options
	flag.StringVar(&opts.addr, "addr", ":9080", "listen address")
	flag.StringVar(&opts.store, "store", "memory", "action log: memory, local, dynamo, jetstream or esdb")
	flag.StringVar(&opts.table, "table", "", "DynamoDB table, overrides "+ds.TableNameVariable)
	flag.StringVar(&opts.nats, "nats", "nats://localhost:4222", "NATS server url")
	flag.StringVar(&opts.esdb, "esdb", "esdb://localhost:2113?tls=false", "EventStoreDB connection string")
	flag.StringVar(&opts.trace, "trace", "none", "trace exporter: none, console, honeycomb or jaeger")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("server failed")
	}
}
