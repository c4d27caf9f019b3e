package we

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
)

type Renderer[S any] struct {
	Slice Slice[S]
}

// Render folds the recorded history through the slice reducer, starting from
// the slice's initial state. Recorded actions the slice does not handle leave
// the state as it is.
func (r *Renderer[S]) Render(ctx context.Context, history History) (Snapshot[S], error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, fmt.Sprintf("render %s", r.Slice.Name))
	defer span.End()

	state := r.Slice.Initial()
	for _, recorded := range history.Actions {
		action, err := r.Slice.Decode(ctx, recorded.Remote())
		if err != nil {
			return Snapshot[S]{}, errors.Wrap(
				err,
				fmt.Sprintf("failed to process update with %s", recorded.ActionType),
			)
		}

		state = r.Slice.Reduce(state, action)
	}

	return Snapshot[S]{
		Id:       history.Id,
		Revision: history.Revision,
		Type:     r.Slice.Name,
		State:    state,
	}, nil
}
