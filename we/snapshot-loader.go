package we

import (
	"context"

	"go.opentelemetry.io/otel"
)

type SnapshotLoader[S any] struct {
	Loader   HistoryLoader
	Renderer *Renderer[S]
}

func NewSnapshotLoader[S any](log ActionLog, slice Slice[S]) *SnapshotLoader[S] {
	return &SnapshotLoader[S]{Loader: log.Load, Renderer: &Renderer[S]{Slice: slice}}
}

func (s *SnapshotLoader[S]) Load(ctx context.Context, id SliceId) (Snapshot[S], error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "load snapshot")
	defer span.End()

	history, err := s.Loader(ctx, id)
	if err != nil {
		return Snapshot[S]{}, err
	}

	return s.Renderer.Render(ctx, history)
}
