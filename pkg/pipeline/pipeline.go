package pipeline

import (
	"context"
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/coldchain-labs/inbound/pkg/backend"
	"github.com/coldchain-labs/inbound/pkg/events"
	"github.com/coldchain-labs/inbound/pkg/metrics"
	"github.com/coldchain-labs/inbound/pkg/submit"
	"github.com/coldchain-labs/inbound/pkg/types"
	"github.com/coldchain-labs/inbound/pkg/validate"
)

// DefaultTimeout bounds one full extract-and-submit run
const DefaultTimeout = 600 * time.Second

// Pipeline sequences extraction and submission with no retries and no
// partial resumption
type Pipeline struct {
	backend backend.Backend
	orch    *submit.Orchestrator
	broker  *events.Broker
	timeout time.Duration
	logger  zerolog.Logger
}

// New creates a pipeline coordinator. The broker is optional.
func New(b backend.Backend, orch *submit.Orchestrator, broker *events.Broker, timeout time.Duration) *Pipeline {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Pipeline{
		backend: b,
		orch:    orch,
		broker:  broker,
		timeout: timeout,
		logger: zerolog.New(os.Stdout).With().
			Str("component", "pipeline").
			Timestamp().
			Logger(),
	}
}

// Run executes extract then submit. Failures are embedded in the result
// with the stage that caused them; Run itself never returns an error.
func (p *Pipeline) Run(ctx context.Context) *types.PipelineResult {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	p.logger.Info().Msg("Starting full pipeline")
	p.publish(events.EventExtractionStarted, "extraction started", nil)

	extraction, err := p.backend.Extract(ctx)
	if err != nil {
		metrics.ExtractionsTotal.WithLabelValues("failed").Inc()
		p.publish(events.EventExtractionFailed, err.Error(), nil)
		return p.fail(types.StageExtraction, err.Error())
	}

	metrics.ExtractionsTotal.WithLabelValues("success").Inc()
	p.publish(events.EventExtractionCompleted, "extraction completed", map[string]string{
		"email_subject": extraction.EmailSubject,
		"orders":        strconv.Itoa(len(extraction.Orders)),
	})

	// A clean run that found nothing still stops the pipeline at the
	// extraction stage; there is no batch to submit.
	if len(extraction.Orders) == 0 {
		p.logger.Warn().Str("email_subject", extraction.EmailSubject).Msg("No orders extracted")
		return p.fail(types.StageExtraction, "no orders extracted")
	}

	p.logger.Info().Int("orders", len(extraction.Orders)).Msg("Extraction succeeded, submitting")

	submission, err := p.orch.Submit(ctx, extraction)
	if err != nil {
		return p.fail(classifyStage(err), err.Error())
	}

	result := &types.PipelineResult{
		Status:           submission.Status,
		EmailSubject:     extraction.EmailSubject,
		OrdersExtracted:  len(extraction.Orders),
		OrdersSubmitted:  submission.OrdersSubmitted,
		OrdersFailed:     submission.OrdersFailed,
		SuccessfulOrders: submission.SuccessfulOrders,
		FailedOrders:     submission.FailedOrders,
	}

	p.publish(events.EventPipelineCompleted, string(result.Status), map[string]string{
		"orders_extracted": strconv.Itoa(result.OrdersExtracted),
		"orders_submitted": strconv.Itoa(result.OrdersSubmitted),
		"orders_failed":    strconv.Itoa(result.OrdersFailed),
	})
	p.logger.Info().
		Str("status", string(result.Status)).
		Int("submitted", result.OrdersSubmitted).
		Int("failed", result.OrdersFailed).
		Msg("Pipeline completed")

	return result
}

// fail builds a stage-tagged failure with no itemized results
func (p *Pipeline) fail(stage types.Stage, message string) *types.PipelineResult {
	p.logger.Error().
		Str("stage", string(stage)).
		Str("error", message).
		Msg("Pipeline failed")
	p.publish(events.EventPipelineFailed, message, map[string]string{"stage": string(stage)})

	return &types.PipelineResult{
		Status:           types.BatchStatusFailed,
		Stage:            stage,
		Error:            message,
		SuccessfulOrders: []types.OrderResult{},
		FailedOrders:     []types.OrderResult{},
	}
}

// classifyStage attributes an error raised after extraction succeeded
func classifyStage(err error) types.Stage {
	var verr *validate.Error
	var serr *submit.SubmissionError
	if errors.As(err, &verr) || errors.As(err, &serr) {
		return types.StageSubmission
	}
	return types.StageUnknown
}

func (p *Pipeline) publish(eventType events.EventType, message string, meta map[string]string) {
	if p.broker == nil {
		return
	}
	p.broker.Publish(events.New(eventType, message, meta))
}
