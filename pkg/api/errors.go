package api

import (
	"errors"

	"github.com/coldchain-labs/inbound/pkg/backend"
	"github.com/coldchain-labs/inbound/pkg/submit"
	"github.com/coldchain-labs/inbound/pkg/validate"
)

// errorKind names the domain error category carried in tool-level failure
// text and in the data field of protocol errors
func errorKind(err error) string {
	var verr *validate.Error
	var eerr *backend.ExtractionError
	var terr *backend.TimeoutError
	var serr *backend.ScriptError
	var suberr *submit.SubmissionError

	switch {
	case errors.As(err, &verr):
		return "ValidationError"
	case errors.As(err, &eerr):
		return "ExtractionError"
	case errors.As(err, &terr):
		return "TimeoutError"
	case errors.As(err, &serr):
		return "ScriptExecutionError"
	case errors.As(err, &suberr):
		return "SubmissionError"
	default:
		return "InternalError"
	}
}

// toolError formats a domain failure as an MCP error result
func toolError(err error) *toolResponse {
	return errorResponse(errorKind(err) + ": " + err.Error())
}
