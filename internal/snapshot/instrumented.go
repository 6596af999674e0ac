package snapshot

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"storefront-workers/internal/catalog"
	apperrors "storefront-workers/internal/common/errors"
	"storefront-workers/internal/common/metrics"
	"storefront-workers/internal/common/observability"
)

// Instrumented bounds every load by a timeout, records it and converts failures into
// StandardErrors that job handlers and the HTTP API can map.
type Instrumented struct {
	inner   Source
	timeout time.Duration
	obs     *observability.Observability
}

func NewInstrumented(inner Source, timeout time.Duration, obs *observability.Observability) *Instrumented {
	if obs == nil {
		obs = observability.NewNoop()
	}
	return &Instrumented{inner: inner, timeout: timeout, obs: obs}
}

func (i *Instrumented) Name() string { return i.inner.Name() }

func (i *Instrumented) Load(ctx context.Context) (catalog.Snapshot, error) {
	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	ctx, span := i.obs.StartSpan(ctx, "snapshot.load", attribute.String("snapshot.source", i.Name()))
	defer span.End()

	start := time.Now()
	snap, err := i.inner.Load(ctx)
	metrics.SnapshotLoadDuration.WithLabelValues(i.Name()).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.SnapshotLoads.WithLabelValues(i.Name(), "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, i.classify(ctx, err)
	}

	metrics.SnapshotLoads.WithLabelValues(i.Name(), "success").Inc()
	span.SetAttributes(attribute.Int("snapshot.size", len(snap)))
	i.obs.RecordSnapshot(ctx, i.Name(), len(snap))
	return snap, nil
}

func (i *Instrumented) classify(ctx context.Context, err error) error {
	var (
		stdErr   *apperrors.StandardError
		notFound *indexNotFoundError
	)
	switch {
	case errors.As(err, &stdErr):
		return stdErr
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return apperrors.NewSnapshotTimeoutError(i.Name(), err)
	case errors.As(err, &notFound):
		return apperrors.NewIndexNotFoundError(notFound.index)
	case errors.Is(err, ErrSnapshotDecode):
		return apperrors.NewSnapshotDecodeFailedError(err)
	default:
		return apperrors.NewSnapshotLoadFailedError(i.Name(), err)
	}
}
