// internal/workers/catalog/evaluate-listing/handler.go
package evaluatelisting

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"storefront-workers/internal/catalog"
	"storefront-workers/internal/common/errors"
	"storefront-workers/internal/common/logger"
	"storefront-workers/internal/common/metrics"
	"storefront-workers/internal/common/observability"
	"storefront-workers/internal/common/validation"
	"storefront-workers/internal/snapshot"
)

const (
	TaskType = "evaluate-listing"
)

var (
	ErrSnapshotSourceMissing = stderrors.New("SNAPSHOT_SOURCE_MISSING")
)

type Handler struct {
	config       *Config
	source       snapshot.Source
	obs          *observability.Observability
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, source snapshot.Source, obs *observability.Observability, log logger.Logger) (*Handler, error) {
	if source == nil {
		return nil, ErrSnapshotSourceMissing
	}
	if obs == nil {
		obs = observability.NewNoop()
	}

	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		source:       source,
		obs:          obs,
		logger:       scoped,
		errorHandler: errors.NewErrorHandler(scoped),
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.Key,
		"processInstanceKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := ParseInput([]byte(job.Variables))
	if err != nil {
		h.failJob(context.Background(), client, job, err)
		return
	}

	output, err := h.execute(ctx, input)
	if err != nil {
		h.failJob(context.Background(), client, job, err)
		return
	}

	h.completeJob(context.Background(), client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
}

func ParseInput(raw []byte) (*Input, error) {
	result, err := validation.EvaluateRequestSchema.ValidateJSON(raw)
	if err != nil {
		return nil, errors.NewParseError(err)
	}
	if !result.Valid {
		return nil, errors.NewInvalidCriteriaError(result.Summary())
	}

	input := newInput()
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, errors.NewParseError(err)
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	ctx, span := h.obs.StartSpan(ctx, "listing.evaluate", attribute.String("task.type", TaskType))
	defer span.End()

	snap, err := h.source.Load(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	listing := catalog.List(snap, input.Criteria)
	elapsed := time.Since(start)

	metrics.ListingEvaluations.WithLabelValues(TaskType, string(listing.SortKey)).Inc()
	metrics.ListingResultSize.Observe(float64(listing.ShownCount))
	h.obs.RecordEvaluation(ctx, string(listing.SortKey), listing.ShownCount, elapsed)

	products, truncated := limitProducts(listing.Products, h.effectiveLimit(input.Limit))

	h.logger.Debug("listing evaluated", map[string]interface{}{
		"shownCount": listing.ShownCount,
		"totalCount": listing.TotalCount,
		"sortKey":    listing.SortKey,
		"durationMs": elapsed.Milliseconds(),
	})

	return &Output{
		EvaluationID: uuid.NewString(),
		Products:     products,
		ShownCount:   listing.ShownCount,
		TotalCount:   listing.TotalCount,
		Truncated:    truncated,
		SortKey:      listing.SortKey,
		SearchTerm:   listing.SearchTerm,
	}, nil
}

// Execute evaluates a listing without a job client.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) effectiveLimit(requested int) int {
	switch {
	case h.config.MaxLimit <= 0:
		return requested
	case requested <= 0 || requested > h.config.MaxLimit:
		return h.config.MaxLimit
	default:
		return requested
	}
}

func limitProducts(products []*catalog.Product, limit int) ([]*catalog.Product, bool) {
	if limit <= 0 || len(products) <= limit {
		return products, false
	}
	return products[:limit], true
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err = cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	h.logger.Info("job completed", map[string]interface{}{
		"jobKey":       job.Key,
		"evaluationId": output.EvaluationID,
		"shownCount":   output.ShownCount,
	})
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.AsStandardError(err).Code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}
