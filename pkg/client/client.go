package client

import (
	"context"
	"time"

	"github.com/coldchain-labs/inbound/pkg/backend"
	"github.com/coldchain-labs/inbound/pkg/config"
	"github.com/coldchain-labs/inbound/pkg/events"
	"github.com/coldchain-labs/inbound/pkg/pipeline"
	"github.com/coldchain-labs/inbound/pkg/submit"
	"github.com/coldchain-labs/inbound/pkg/types"
)

// Client drives the automation flows in-process, without the HTTP server
type Client struct {
	backend backend.Backend
	orch    *submit.Orchestrator
	pipe    *pipeline.Pipeline
}

// New builds a client over the script-backed automation backend described
// by the configuration
func New(cfg *config.Config) *Client {
	b := backend.NewScriptBackend(backend.Options{
		Interpreter:     cfg.Interpreter,
		ExtractScript:   cfg.ExtractScript,
		OrderScript:     cfg.OrderScript,
		ProfileDir:      cfg.ProfileDir,
		APIKey:          cfg.APIKey,
		ArcadiaUsername: cfg.ArcadiaUsername,
		ArcadiaPassword: cfg.ArcadiaPassword,
		OrderTimeout:    cfg.OrderTimeout,
		ExtractTimeout:  cfg.ExtractTimeout,
	})
	return NewWithBackend(b, cfg.PipelineTimeout, nil)
}

// NewWithBackend builds a client over an arbitrary backend. The broker is
// optional; a non-positive timeout selects the pipeline default.
func NewWithBackend(b backend.Backend, pipelineTimeout time.Duration, broker *events.Broker) *Client {
	orch := submit.NewOrchestrator(b, broker)
	return &Client{
		backend: b,
		orch:    orch,
		pipe:    pipeline.New(b, orch, broker, pipelineTimeout),
	}
}

// Extract reads the most recent inbound shipment email and returns the
// structured orders it describes
func (c *Client) Extract(ctx context.Context) (*types.EmailExtraction, error) {
	return c.backend.Extract(ctx)
}

// CreateOrder keys a single order into Arcadia
func (c *Client) CreateOrder(ctx context.Context, req *types.OrderCreationRequest) (*types.OrderResult, error) {
	return c.backend.CreateOrder(ctx, req)
}

// SubmitOrders submits every product line of an extraction as individual
// Arcadia orders, continuing past per-order failures
func (c *Client) SubmitOrders(ctx context.Context, extraction *types.EmailExtraction) (*types.SubmissionResult, error) {
	return c.orch.Submit(ctx, extraction)
}

// RunPipeline runs extract-then-submit end to end. Failures are reported
// inside the result, never as an error.
func (c *Client) RunPipeline(ctx context.Context) *types.PipelineResult {
	return c.pipe.Run(ctx)
}

// ExtractInboundOrders is a convenience wrapper that loads configuration
// from the environment and runs a single extraction
func ExtractInboundOrders(ctx context.Context) (*types.EmailExtraction, error) {
	cfg, err := config.Load("")
	if err != nil {
		return nil, err
	}
	return New(cfg).Extract(ctx)
}

// CreateArcadiaOrder is a convenience wrapper that loads configuration
// from the environment and creates one order
func CreateArcadiaOrder(ctx context.Context, req *types.OrderCreationRequest) (*types.OrderResult, error) {
	cfg, err := config.Load("")
	if err != nil {
		return nil, err
	}
	return New(cfg).CreateOrder(ctx, req)
}

// RunFullPipeline is a convenience wrapper that loads configuration from
// the environment and runs the complete extract-and-submit flow
func RunFullPipeline(ctx context.Context) (*types.PipelineResult, error) {
	cfg, err := config.Load("")
	if err != nil {
		return nil, err
	}
	return New(cfg).RunPipeline(ctx), nil
}
