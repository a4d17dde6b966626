package submit

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/coldchain-labs/inbound/pkg/backend"
	"github.com/coldchain-labs/inbound/pkg/events"
	"github.com/coldchain-labs/inbound/pkg/metrics"
	"github.com/coldchain-labs/inbound/pkg/types"
	"github.com/coldchain-labs/inbound/pkg/validate"
)

// SubmissionError reports a batch-level failure: an orchestrator-internal
// problem rather than an individual order outcome.
type SubmissionError struct {
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// Orchestrator converts one extraction into a batch of independent
// single-product submissions
type Orchestrator struct {
	backend backend.Backend
	broker  *events.Broker
	logger  zerolog.Logger
}

// NewOrchestrator creates a submission orchestrator. The broker is optional;
// with nil no events are published.
func NewOrchestrator(b backend.Backend, broker *events.Broker) *Orchestrator {
	return &Orchestrator{
		backend: b,
		broker:  broker,
		logger: zerolog.New(os.Stdout).With().
			Str("component", "submit").
			Timestamp().
			Logger(),
	}
}

// Submit issues one order-creation call per product of every order, in
// extraction order, and aggregates the outcomes. A failing product never
// aborts the batch; an empty batch is a caller error rejected before any
// submission attempt.
func (o *Orchestrator) Submit(ctx context.Context, extraction *types.EmailExtraction) (*types.SubmissionResult, error) {
	if extraction == nil || len(extraction.Orders) == 0 {
		return nil, validate.Errorf("no orders to submit")
	}

	o.logger.Info().
		Str("email_subject", extraction.EmailSubject).
		Int("orders", len(extraction.Orders)).
		Msg("Submitting orders to Arcadia")

	result := &types.SubmissionResult{
		SuccessfulOrders: []types.OrderResult{},
		FailedOrders:     []types.OrderResult{},
	}

	for _, order := range extraction.Orders {
		for _, product := range order.Products {
			outcome := o.submitProduct(ctx, &order, &product)
			if outcome.Status == types.OrderStatusSuccess {
				result.SuccessfulOrders = append(result.SuccessfulOrders, *outcome)
				metrics.OrdersSubmittedTotal.Inc()
				o.publish(events.EventOrderSubmitted, outcome)
			} else {
				result.FailedOrders = append(result.FailedOrders, *outcome)
				metrics.OrdersFailedTotal.Inc()
				o.publish(events.EventOrderFailed, outcome)
			}
		}
	}

	result.OrdersSubmitted = len(result.SuccessfulOrders)
	result.OrdersFailed = len(result.FailedOrders)
	result.Status = types.DeriveBatchStatus(result.OrdersSubmitted, result.OrdersFailed)

	metrics.BatchesTotal.WithLabelValues(string(result.Status)).Inc()
	if o.broker != nil {
		o.broker.Publish(events.New(events.EventBatchCompleted, "batch completed", map[string]string{
			"status":           string(result.Status),
			"orders_submitted": strconv.Itoa(result.OrdersSubmitted),
			"orders_failed":    strconv.Itoa(result.OrdersFailed),
		}))
	}

	o.logger.Info().
		Str("status", string(result.Status)).
		Int("submitted", result.OrdersSubmitted).
		Int("failed", result.OrdersFailed).
		Msg("Batch completed")

	return result, nil
}

// submitProduct builds and submits one creation request. Any error from the
// backend is recovered into a failed result here so the loop continues.
func (o *Orchestrator) submitProduct(ctx context.Context, order *types.Order, product *types.ProductLine) *types.OrderResult {
	req := &types.OrderCreationRequest{
		MasterBillNumber:        order.MasterBillNumber,
		ProductCode:             product.ProductCode,
		Quantity:                product.Quantity,
		Temperature:             product.Temperature,
		SupplyingFacilityNumber: order.Facility(),
		DeliveryDate:            order.Date,
	}

	result, err := o.backend.CreateOrder(ctx, req)
	if err != nil {
		o.logger.Error().
			Err(err).
			Str("master_bill", order.MasterBillNumber).
			Str("product_code", product.ProductCode).
			Msg("Failed to submit product")
		return &types.OrderResult{
			Status:           types.OrderStatusFailed,
			MasterBillNumber: order.MasterBillNumber,
			ProductCode:      product.ProductCode,
			Quantity:         product.Quantity,
			Temperature:      product.Temperature,
			Error:            err.Error(),
		}
	}
	return result
}

func (o *Orchestrator) publish(eventType events.EventType, result *types.OrderResult) {
	if o.broker == nil {
		return
	}
	meta := map[string]string{
		"master_bill":  result.MasterBillNumber,
		"product_code": result.ProductCode,
	}
	if result.Error != "" {
		meta["error"] = result.Error
	}
	o.broker.Publish(events.New(eventType, string(result.Status), meta))
}
