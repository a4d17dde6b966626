package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/coldchain-labs/inbound/pkg/metrics"
	"github.com/coldchain-labs/inbound/pkg/types"
	"github.com/coldchain-labs/inbound/pkg/validate"
)

// Options configures the script-backed automation backend
type Options struct {
	// Interpreter runs the automation scripts (default: python3)
	Interpreter string

	// ExtractScript is the mailbox extraction entry point
	ExtractScript string

	// OrderScript is the single-order creation entry point
	OrderScript string

	// ProfileDir is the persisted browser profile the scripts write to.
	// At most one invocation runs against a profile at a time.
	ProfileDir string

	// APIKey authenticates against the automation service. Required for
	// order creation.
	APIKey string

	// ArcadiaUsername and ArcadiaPassword enable the scripts' automatic
	// login path when set.
	ArcadiaUsername string
	ArcadiaPassword string

	// OrderTimeout and ExtractTimeout are hard wall-clock ceilings per
	// invocation (default: 300s each).
	OrderTimeout   time.Duration
	ExtractTimeout time.Duration
}

// ScriptBackend runs each automation operation as an isolated external
// process. Expected process failures (non-zero exit, timeout) are classified
// into results rather than propagated as errors.
type ScriptBackend struct {
	opts   Options
	logger zerolog.Logger
}

// NewScriptBackend creates a script-backed automation backend
func NewScriptBackend(opts Options) *ScriptBackend {
	if opts.Interpreter == "" {
		opts.Interpreter = "python3"
	}
	if opts.OrderTimeout <= 0 {
		opts.OrderTimeout = 300 * time.Second
	}
	if opts.ExtractTimeout <= 0 {
		opts.ExtractTimeout = 300 * time.Second
	}
	if opts.ProfileDir == "" {
		opts.ProfileDir = ".browser-profile"
	}

	return &ScriptBackend{
		opts: opts,
		logger: zerolog.New(os.Stdout).With().
			Str("component", "backend").
			Timestamp().
			Logger(),
	}
}

// runOutcome captures everything the invoker needs to classify one process
type runOutcome struct {
	stdout   []byte
	stderr   []byte
	timedOut bool
	exitCode int
}

func (b *ScriptBackend) run(ctx context.Context, operation, script string, timeout time.Duration, args []string) (*runOutcome, error) {
	release, err := acquireProfile(ctx, b.opts.ProfileDir)
	if err != nil {
		return nil, err
	}
	defer release()

	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmdArgs := append([]string{script}, args...)
	cmd := exec.CommandContext(execCtx, b.opts.Interpreter, cmdArgs...)
	cmd.Env = b.environ()
	// A killed script can leave a child holding the output pipe; don't let
	// that hold Wait past the ceiling.
	cmd.WaitDelay = 5 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	metrics.ScriptInflight.Inc()
	start := time.Now()
	runErr := cmd.Run()
	metrics.ScriptInflight.Dec()
	metrics.ScriptDurationSeconds.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	out := &runOutcome{stdout: stdout.Bytes(), stderr: stderr.Bytes()}

	if execCtx.Err() == context.DeadlineExceeded {
		out.timedOut = true
		return out, nil
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			out.exitCode = exitErr.ExitCode()
			return out, nil
		}
		// Launch failure (interpreter or script missing), not a script outcome.
		return nil, &ScriptError{
			Message:  fmt.Sprintf("failed to launch %s script: %v", operation, runErr),
			ExitCode: -1,
		}
	}
	return out, nil
}

func (b *ScriptBackend) environ() []string {
	env := os.Environ()
	env = append(env, "AUTOMATION_API_KEY="+b.opts.APIKey)
	env = append(env, "BROWSER_PROFILE_DIR="+b.opts.ProfileDir)
	if b.opts.ArcadiaUsername != "" {
		env = append(env, "ARCADIA_USERNAME="+b.opts.ArcadiaUsername)
	}
	if b.opts.ArcadiaPassword != "" {
		env = append(env, "ARCADIA_PASSWORD="+b.opts.ArcadiaPassword)
	}
	return env
}

// errorText picks the most useful failure message from captured output:
// stderr, then stdout, then the bare exit code.
func errorText(out *runOutcome) string {
	if msg := strings.TrimSpace(string(out.stderr)); msg != "" {
		return msg
	}
	if msg := strings.TrimSpace(string(out.stdout)); msg != "" {
		return msg
	}
	return fmt.Sprintf("script failed with exit code %d", out.exitCode)
}

// CreateOrder keys one order into Arcadia via the order script. The request
// is normalized and validated, credentials are checked, and only then is a
// process spawned. Non-zero exits and timeouts come back as failed results.
func (b *ScriptBackend) CreateOrder(ctx context.Context, req *types.OrderCreationRequest) (*types.OrderResult, error) {
	r := *req
	r.Normalize()
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if b.opts.APIKey == "" {
		return nil, validate.Errorf("AUTOMATION_API_KEY is required")
	}

	logger := b.logger.With().
		Str("master_bill", r.MasterBillNumber).
		Str("product_code", r.ProductCode).
		Logger()
	logger.Info().
		Int("quantity", r.Quantity).
		Str("temperature", r.Temperature).
		Msg("Creating Arcadia inbound order")

	args := []string{
		r.MasterBillNumber,
		r.ProductCode,
		strconv.Itoa(r.Quantity),
		r.Temperature,
		r.DeliveryDate,
		r.DeliveryCompany,
		r.Comments,
	}

	out, err := b.run(ctx, "create_order", b.opts.OrderScript, b.opts.OrderTimeout, args)
	if err != nil {
		return nil, err
	}

	result := &types.OrderResult{
		MasterBillNumber: r.MasterBillNumber,
		ProductCode:      r.ProductCode,
		Quantity:         r.Quantity,
		Temperature:      r.Temperature,
	}

	// Diagnostic artifacts are salvaged on every path, including timeout.
	rep, hasReport := parseReport(out.stdout)
	if hasReport {
		result.VideoPath = rep.VideoPath
	}

	switch {
	case out.timedOut:
		result.Status = types.OrderStatusFailed
		result.Error = (&TimeoutError{Operation: "order", Limit: b.opts.OrderTimeout}).Error()
		logger.Error().Dur("timeout", b.opts.OrderTimeout).Msg("Order script timed out")

	case out.exitCode != 0:
		result.Status = types.OrderStatusFailed
		result.Error = errorText(out)
		logger.Error().Int("exit_code", out.exitCode).Msg("Order script failed")

	default:
		result.Status = types.OrderStatusSuccess
		// The script does not surface Arcadia's own identifier yet; the
		// synthesized ID is a placeholder unless the report carries one.
		result.ConfirmationID = "ORD-" + r.MasterBillNumber
		if hasReport && rep.ConfirmationID != "" {
			result.ConfirmationID = rep.ConfirmationID
		}
		result.Message = "Order created successfully in Arcadia"
		logger.Info().Str("confirmation_id", result.ConfirmationID).Msg("Order created")
	}

	return result, nil
}

// Extract scans the mailbox via the extraction script. Exit failures and
// timeouts are errors here: an extraction that did not complete has no
// partial value. A completed run without a parseable report is a success
// with zero orders.
func (b *ScriptBackend) Extract(ctx context.Context) (*types.EmailExtraction, error) {
	if b.opts.APIKey == "" {
		b.logger.Warn().Msg("AUTOMATION_API_KEY not set, extraction may fail")
	}
	b.logger.Info().Str("script", b.opts.ExtractScript).Msg("Extracting inbound orders from mailbox")

	out, err := b.run(ctx, "extract", b.opts.ExtractScript, b.opts.ExtractTimeout, nil)
	if err != nil {
		return nil, &ExtractionError{Message: "extraction failed", Err: err}
	}

	if out.timedOut {
		return nil, &TimeoutError{Operation: "extraction", Limit: b.opts.ExtractTimeout}
	}
	if out.exitCode != 0 {
		return nil, &ScriptError{
			Message:  fmt.Sprintf("extraction script failed: %s", errorText(out)),
			ExitCode: out.exitCode,
			Stderr:   string(out.stderr),
		}
	}

	extraction := &types.EmailExtraction{
		EmailSubject: "Unknown",
		Orders:       []types.Order{},
		ExtractedAt:  time.Now().UTC(),
	}

	if rep, ok := parseReport(out.stdout); ok {
		if rep.EmailSubject != "" {
			extraction.EmailSubject = rep.EmailSubject
		}
		for _, order := range rep.Orders {
			for i := range order.Products {
				p := &order.Products[i]
				if strings.TrimSpace(p.Temperature) == "" {
					p.Temperature = validate.InferTemperature(p.ProductCode)
				} else {
					p.Temperature = validate.NormalizeTemperature(p.Temperature)
				}
			}
			extraction.Orders = append(extraction.Orders, order)
		}
	}

	b.logger.Info().
		Int("orders", len(extraction.Orders)).
		Str("email_subject", extraction.EmailSubject).
		Msg("Extraction completed")

	return extraction, nil
}
