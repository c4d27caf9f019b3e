package we

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	"go.opentelemetry.io/otel"
)

const tracerName = "slice-service"

type SliceService[S any] interface {
	Load(ctx context.Context, id SliceId) (Snapshot[S], error)
	Dispatch(ctx context.Context, id SliceId, action Action) (Snapshot[S], error)
}

type ServiceOption func(options *serviceOptions)

type serviceOptions struct {
	attempts uint
	delay    time.Duration
}

// ConflictRetries bounds how often a dispatch is replayed after losing a race
// with a concurrent writer.
func ConflictRetries(attempts uint) ServiceOption {
	return func(options *serviceOptions) {
		if attempts == 0 {
			attempts = 1
		}
		options.attempts = attempts
	}
}

func NewSliceService[S any](log ActionLog, slice Slice[S], options ...ServiceOption) SliceService[S] {
	opts := serviceOptions{attempts: 5, delay: 10 * time.Millisecond}
	for _, option := range options {
		option(&opts)
	}

	return &sliceService[S]{
		slice:   slice,
		loader:  NewSnapshotLoader(log, slice),
		append:  log.Append,
		options: opts,
	}
}

type sliceService[S any] struct {
	slice   Slice[S]
	loader  *SnapshotLoader[S]
	append  ActionAppender
	options serviceOptions
}

func (s *sliceService[S]) Load(ctx context.Context, id SliceId) (Snapshot[S], error) {
	return s.loader.Load(ctx, id)
}

func (s *sliceService[S]) Dispatch(ctx context.Context, id SliceId, action Action) (Snapshot[S], error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, fmt.Sprintf("dispatch %s", ActionTypeOf(action)))
	defer span.End()

	decoded, err := s.slice.Decode(ctx, action)
	if err != nil {
		return Snapshot[S]{}, err
	}

	var snapshot Snapshot[S]
	appended := false

	err = retry.Do(
		func() error {
			loaded, err := s.Load(ctx, id)
			if err != nil {
				return err
			}
			snapshot = loaded

			next := s.slice.Reduce(loaded.State, decoded)
			if next == loaded.State {
				return nil
			}

			if err := s.append(ctx, id, Options(WithExpectedRevision(loaded.Revision)), decoded); err != nil {
				return err
			}
			appended = true

			return nil
		},
		retry.RetryIf(
			func(err error) bool {
				return errors.Is(err, RevisionConflict)
			},
		),
		retry.Context(ctx),
		retry.Attempts(s.options.attempts),
		retry.Delay(s.options.delay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return Snapshot[S]{}, err
	}

	if !appended {
		return snapshot, nil
	}

	return s.Load(ctx, id)
}
