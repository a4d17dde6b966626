package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/coldchain-labs/inbound/pkg/types"
)

// toolCallParams is the params object of a tools/call request
type toolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// extractionEnvelope is the wire shape of a successful extraction result
type extractionEnvelope struct {
	Status       string        `json:"status"`
	EmailSubject string        `json:"email_subject"`
	OrdersCount  int           `json:"orders_count"`
	Orders       []types.Order `json:"orders"`
}

// callTool dispatches one tool invocation. A slot from the dispatch pool is
// held for the duration so concurrent browser sessions stay bounded even
// before the per-profile lock is reached.
func (s *Server) callTool(ctx context.Context, params toolCallParams) (*toolResponse, *rpcError) {
	if err := s.slots.Acquire(ctx, 1); err != nil {
		return nil, &rpcError{
			Code:    codeInternalError,
			Message: "request cancelled while waiting for a dispatch slot",
			Data:    errData("InternalError"),
		}
	}
	defer s.slots.Release(1)

	s.logger.Info().Str("tool", params.Name).Msg("Tool call dispatched")

	switch params.Name {
	case toolExtractInboundOrders:
		return s.toolExtract(ctx), nil
	case toolAddToArcadia:
		return s.toolSubmit(ctx, params.Arguments), nil
	case toolCreateArcadiaOrder:
		return s.toolCreateOrder(ctx, params.Arguments), nil
	case toolRunFullPipeline:
		return s.toolPipeline(ctx), nil
	default:
		return nil, &rpcError{
			Code:    codeMethodNotFound,
			Message: fmt.Sprintf("Unknown tool: %s", params.Name),
			Data:    errData("MethodNotFound"),
		}
	}
}

func (s *Server) toolExtract(ctx context.Context) *toolResponse {
	extraction, err := s.backend.Extract(ctx)
	if err != nil {
		return toolError(err)
	}

	resp, merr := successResponse(extractionEnvelope{
		Status:       "success",
		EmailSubject: extraction.EmailSubject,
		OrdersCount:  len(extraction.Orders),
		Orders:       extraction.Orders,
	})
	if merr != nil {
		return errorResponse("InternalError: " + merr.Error())
	}
	return resp
}

func (s *Server) toolSubmit(ctx context.Context, args json.RawMessage) *toolResponse {
	var params struct {
		OrderData *types.EmailExtraction `json:"order_data"`
	}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &params); err != nil {
			return errorResponse("ValidationError: invalid order_data: " + err.Error())
		}
	}
	if params.OrderData == nil {
		return errorResponse("ValidationError: order_data is required")
	}

	result, err := s.orch.Submit(ctx, params.OrderData)
	if err != nil {
		return toolError(err)
	}

	resp, merr := successResponse(result)
	if merr != nil {
		return errorResponse("InternalError: " + merr.Error())
	}
	return resp
}

func (s *Server) toolCreateOrder(ctx context.Context, args json.RawMessage) *toolResponse {
	var req types.OrderCreationRequest
	if len(args) > 0 {
		if err := json.Unmarshal(args, &req); err != nil {
			return errorResponse("ValidationError: invalid arguments: " + err.Error())
		}
	}

	result, err := s.backend.CreateOrder(ctx, &req)
	if err != nil {
		return toolError(err)
	}
	if result.Status == types.OrderStatusFailed {
		return errorResponse("Order creation failed: " + result.Error)
	}

	resp, merr := successResponse(result)
	if merr != nil {
		return errorResponse("InternalError: " + merr.Error())
	}
	return resp
}

func (s *Server) toolPipeline(ctx context.Context) *toolResponse {
	result := s.pipe.Run(ctx)
	if result.Status == types.BatchStatusFailed && result.Stage != "" {
		return errorResponse(fmt.Sprintf("Pipeline failed at %s: %s", result.Stage, result.Error))
	}

	resp, merr := successResponse(result)
	if merr != nil {
		return errorResponse("InternalError: " + merr.Error())
	}
	return resp
}
