package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/coldchain-labs/inbound/pkg/types"
)

// Backend performs one unit of browser automation per call. The caller does
// not care whether the implementation is an external process, an in-process
// driver or a test double.
type Backend interface {
	// Extract scans the mailbox for inbound-shipment emails and returns the
	// parsed orders. A successful run with zero orders is a valid outcome,
	// distinct from an extraction failure.
	Extract(ctx context.Context) (*types.EmailExtraction, error)

	// CreateOrder keys one normalized order into the target application.
	// Expected failures (non-zero exit, timeout) come back as a failed
	// OrderResult, not an error; an error means the invocation could not be
	// attempted at all (bad input, missing credentials, launch failure).
	CreateOrder(ctx context.Context, req *types.OrderCreationRequest) (*types.OrderResult, error)
}

// ScriptError reports an automation process that exited non-zero or could
// not be launched
type ScriptError struct {
	Message  string
	ExitCode int
	Stderr   string
}

func (e *ScriptError) Error() string {
	return e.Message
}

// TimeoutError reports an automation process that exceeded its wall-clock
// ceiling
type TimeoutError struct {
	Operation string
	Limit     time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s script timed out after %s", e.Operation, e.Limit)
}

// ExtractionError reports a mailbox scan that failed for a reason other
// than exit code or timeout
type ExtractionError struct {
	Message string
	Err     error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
