package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coldchain-labs/inbound/pkg/backend"
	"github.com/coldchain-labs/inbound/pkg/config"
	"github.com/coldchain-labs/inbound/pkg/pipeline"
	"github.com/coldchain-labs/inbound/pkg/submit"
	"github.com/coldchain-labs/inbound/pkg/types"
	"github.com/coldchain-labs/inbound/pkg/validate"
)

// fakeBackend answers with canned extraction and order results
type fakeBackend struct {
	extraction *types.EmailExtraction
	extractErr error
	orderErr   error
	orderFail  string
}

func (f *fakeBackend) Extract(ctx context.Context) (*types.EmailExtraction, error) {
	if f.extractErr != nil {
		return nil, f.extractErr
	}
	if f.extraction != nil {
		return f.extraction, nil
	}
	return &types.EmailExtraction{EmailSubject: "Unknown", Orders: []types.Order{}}, nil
}

func (f *fakeBackend) CreateOrder(ctx context.Context, req *types.OrderCreationRequest) (*types.OrderResult, error) {
	if f.orderErr != nil {
		return nil, f.orderErr
	}
	if f.orderFail != "" {
		return &types.OrderResult{
			Status:           types.OrderStatusFailed,
			MasterBillNumber: req.MasterBillNumber,
			ProductCode:      req.ProductCode,
			Error:            f.orderFail,
		}, nil
	}
	return &types.OrderResult{
		Status:           types.OrderStatusSuccess,
		MasterBillNumber: req.MasterBillNumber,
		ProductCode:      req.ProductCode,
		Quantity:         req.Quantity,
		ConfirmationID:   "ORD-" + req.MasterBillNumber,
		Message:          "Order created successfully in Arcadia",
	}, nil
}

func newTestServer(fb *fakeBackend, cfg *config.Config) *Server {
	if cfg == nil {
		cfg = config.Default()
		cfg.AuthMode = config.AuthModeNone
	}
	orch := submit.NewOrchestrator(fb, nil)
	pipe := pipeline.New(fb, orch, nil, time.Minute)
	return NewServer(cfg, fb, orch, pipe, nil, nil)
}

// rpcEnvelope mirrors the response shape with the result left raw
type rpcEnvelope struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
	ID      any             `json:"id"`
}

func doRPC(t *testing.T, s *Server, body string) rpcEnvelope {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var env rpcEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "2.0", env.JSONRPC)
	return env
}

// contentText unwraps the MCP content envelope down to its text payload
func contentText(t *testing.T, result json.RawMessage) string {
	t.Helper()

	var tool toolResponse
	require.NoError(t, json.Unmarshal(result, &tool))
	require.Len(t, tool.Content, 1)
	assert.Equal(t, "text", tool.Content[0].Type)
	return tool.Content[0].Text
}

func extractionFixture() *types.EmailExtraction {
	return &types.EmailExtraction{
		EmailSubject: "Inbound ATL 6/9",
		Orders: []types.Order{
			{
				MasterBillNumber: "123456789",
				Products: []types.ProductLine{
					{ProductCode: "PP48F", Quantity: 10, Temperature: "FREEZER"},
					{ProductCode: "BTL18-1R", Quantity: 4, Temperature: "COOLER"},
				},
			},
		},
	}
}

// TestInitialize tests the handshake, including the client version echo
func TestInitialize(t *testing.T) {
	s := newTestServer(&fakeBackend{}, nil)

	env := doRPC(t, s, `{"jsonrpc":"2.0","method":"initialize","id":1}`)
	require.Nil(t, env.Error)

	var result struct {
		ProtocolVersion string `json:"protocolVersion"`
		ServerInfo      struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		} `json:"serverInfo"`
	}
	require.NoError(t, json.Unmarshal(env.Result, &result))
	assert.Equal(t, defaultProtocol, result.ProtocolVersion)
	assert.Equal(t, serviceName, result.ServerInfo.Name)

	env = doRPC(t, s, `{"jsonrpc":"2.0","method":"initialize","params":{"protocolVersion":"2024-11-05"},"id":2}`)
	require.NoError(t, json.Unmarshal(env.Result, &result))
	assert.Equal(t, "2024-11-05", result.ProtocolVersion, "client protocol version is echoed back")
}

// TestToolsList tests the tool catalog over RPC and the plain GET index
func TestToolsList(t *testing.T) {
	s := newTestServer(&fakeBackend{}, nil)

	env := doRPC(t, s, `{"jsonrpc":"2.0","method":"tools/list","id":3}`)
	require.Nil(t, env.Error)

	var result struct {
		Tools []toolSchema `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(env.Result, &result))
	require.Len(t, result.Tools, 4)

	names := make([]string, 0, len(result.Tools))
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
		assert.NotEmpty(t, tool.Description)
		assert.NotNil(t, tool.InputSchema)
	}
	assert.ElementsMatch(t, []string{
		toolExtractInboundOrders, toolAddToArcadia, toolCreateArcadiaOrder, toolRunFullPipeline,
	}, names)

	req := httptest.NewRequest(http.MethodGet, "/tools", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), toolCreateArcadiaOrder)
}

// TestMethodNotFound tests the -32601 protocol error
func TestMethodNotFound(t *testing.T) {
	s := newTestServer(&fakeBackend{}, nil)

	env := doRPC(t, s, `{"jsonrpc":"2.0","method":"resources/list","id":4}`)
	require.NotNil(t, env.Error)
	assert.Equal(t, codeMethodNotFound, env.Error.Code)
	assert.Contains(t, env.Error.Message, "resources/list")
	assert.Equal(t, map[string]any{"kind": "MethodNotFound"}, env.Error.Data)
}

// TestParseError tests the -32700 protocol error for malformed JSON
func TestParseError(t *testing.T) {
	s := newTestServer(&fakeBackend{}, nil)

	env := doRPC(t, s, `{"jsonrpc":"2.0","method":`)
	require.NotNil(t, env.Error)
	assert.Equal(t, codeParseError, env.Error.Code)
}

// TestToolsCallProtocolErrors tests missing and unknown tool names
func TestToolsCallProtocolErrors(t *testing.T) {
	s := newTestServer(&fakeBackend{}, nil)

	env := doRPC(t, s, `{"jsonrpc":"2.0","method":"tools/call","params":{"arguments":{}},"id":5}`)
	require.NotNil(t, env.Error)
	assert.Equal(t, codeInvalidParams, env.Error.Code)

	env = doRPC(t, s, `{"jsonrpc":"2.0","method":"tools/call","params":{"name":"reboot_warehouse"},"id":6}`)
	require.NotNil(t, env.Error)
	assert.Equal(t, codeMethodNotFound, env.Error.Code)
	assert.Contains(t, env.Error.Message, "reboot_warehouse")
}

// TestExtractTool tests the extraction envelope shape
func TestExtractTool(t *testing.T) {
	s := newTestServer(&fakeBackend{extraction: extractionFixture()}, nil)

	env := doRPC(t, s, `{"jsonrpc":"2.0","method":"tools/call","params":{"name":"extract_inbound_orders"},"id":7}`)
	require.Nil(t, env.Error)

	var payload extractionEnvelope
	require.NoError(t, json.Unmarshal([]byte(contentText(t, env.Result)), &payload))
	assert.Equal(t, "success", payload.Status)
	assert.Equal(t, "Inbound ATL 6/9", payload.EmailSubject)
	assert.Equal(t, 1, payload.OrdersCount)
	require.Len(t, payload.Orders, 1)
	assert.Equal(t, "123456789", payload.Orders[0].MasterBillNumber)
}

// TestExtractToolFailure tests that a domain failure stays a tool result,
// not a protocol error, and carries its category
func TestExtractToolFailure(t *testing.T) {
	s := newTestServer(&fakeBackend{
		extractErr: &backend.ScriptError{Message: "extraction script failed: mailbox unreachable", ExitCode: 1},
	}, nil)

	env := doRPC(t, s, `{"jsonrpc":"2.0","method":"tools/call","params":{"name":"extract_inbound_orders"},"id":8}`)
	require.Nil(t, env.Error, "domain failures are results, not protocol errors")

	text := contentText(t, env.Result)
	assert.True(t, strings.HasPrefix(text, "Error: ScriptExecutionError: "), text)
	assert.Contains(t, text, "mailbox unreachable")
}

// TestCreateOrderTool tests success, the failed-result branch and the
// error category tags
func TestCreateOrderTool(t *testing.T) {
	args := `{"master_bill_number":"123456789","product_code":"PP48F","quantity":24,"temperature":"FREEZER"}`

	t.Run("success", func(t *testing.T) {
		s := newTestServer(&fakeBackend{}, nil)
		env := doRPC(t, s, `{"jsonrpc":"2.0","method":"tools/call","params":{"name":"create_arcadia_order","arguments":`+args+`},"id":9}`)
		require.Nil(t, env.Error)

		var result types.OrderResult
		require.NoError(t, json.Unmarshal([]byte(contentText(t, env.Result)), &result))
		assert.Equal(t, types.OrderStatusSuccess, result.Status)
		assert.Equal(t, "ORD-123456789", result.ConfirmationID)
	})

	t.Run("failed result", func(t *testing.T) {
		s := newTestServer(&fakeBackend{orderFail: "confirmation not detected"}, nil)
		env := doRPC(t, s, `{"jsonrpc":"2.0","method":"tools/call","params":{"name":"create_arcadia_order","arguments":`+args+`},"id":10}`)
		require.Nil(t, env.Error)

		text := contentText(t, env.Result)
		assert.True(t, strings.HasPrefix(text, "Error: Order creation failed: "), text)
		assert.Contains(t, text, "confirmation not detected")
	})

	t.Run("validation error", func(t *testing.T) {
		s := newTestServer(&fakeBackend{orderErr: validate.Errorf("master bill number must be exactly 9 digits, got %q", "12AB")}, nil)
		env := doRPC(t, s, `{"jsonrpc":"2.0","method":"tools/call","params":{"name":"create_arcadia_order","arguments":`+args+`},"id":11}`)
		require.Nil(t, env.Error)
		assert.True(t, strings.HasPrefix(contentText(t, env.Result), "Error: ValidationError: "))
	})

	t.Run("timeout error", func(t *testing.T) {
		s := newTestServer(&fakeBackend{orderErr: &backend.TimeoutError{Operation: "order creation", Limit: 300 * time.Second}}, nil)
		env := doRPC(t, s, `{"jsonrpc":"2.0","method":"tools/call","params":{"name":"create_arcadia_order","arguments":`+args+`},"id":12}`)
		require.Nil(t, env.Error)

		text := contentText(t, env.Result)
		assert.True(t, strings.HasPrefix(text, "Error: TimeoutError: "), text)
		assert.Contains(t, text, "timed out")
	})
}

// TestSubmitTool tests batch submission through the protocol layer
func TestSubmitTool(t *testing.T) {
	s := newTestServer(&fakeBackend{}, nil)

	orderData, err := json.Marshal(extractionFixture())
	require.NoError(t, err)

	env := doRPC(t, s, `{"jsonrpc":"2.0","method":"tools/call","params":{"name":"add_to_arcadia","arguments":{"order_data":`+string(orderData)+`}},"id":13}`)
	require.Nil(t, env.Error)

	var result types.SubmissionResult
	require.NoError(t, json.Unmarshal([]byte(contentText(t, env.Result)), &result))
	assert.Equal(t, types.BatchStatusSuccess, result.Status)
	assert.Equal(t, 2, result.OrdersSubmitted)
	assert.Equal(t, 0, result.OrdersFailed)
}

// TestSubmitToolMissingOrderData tests the required-argument failure
func TestSubmitToolMissingOrderData(t *testing.T) {
	s := newTestServer(&fakeBackend{}, nil)

	env := doRPC(t, s, `{"jsonrpc":"2.0","method":"tools/call","params":{"name":"add_to_arcadia","arguments":{}},"id":14}`)
	require.Nil(t, env.Error)
	assert.Contains(t, contentText(t, env.Result), "order_data is required")
}

// TestSubmitToolEmptyBatch tests that an empty batch surfaces as a
// validation failure without reaching the backend
func TestSubmitToolEmptyBatch(t *testing.T) {
	s := newTestServer(&fakeBackend{}, nil)

	env := doRPC(t, s, `{"jsonrpc":"2.0","method":"tools/call","params":{"name":"add_to_arcadia","arguments":{"order_data":{"email_subject":"empty","orders":[]}}},"id":15}`)
	require.Nil(t, env.Error)
	assert.True(t, strings.HasPrefix(contentText(t, env.Result), "Error: ValidationError: "))
}

// TestPipelineTool tests both the happy path and stage-tagged failures
func TestPipelineTool(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		s := newTestServer(&fakeBackend{extraction: extractionFixture()}, nil)
		env := doRPC(t, s, `{"jsonrpc":"2.0","method":"tools/call","params":{"name":"run_full_pipeline"},"id":16}`)
		require.Nil(t, env.Error)

		var result types.PipelineResult
		require.NoError(t, json.Unmarshal([]byte(contentText(t, env.Result)), &result))
		assert.Equal(t, types.BatchStatusSuccess, result.Status)
		assert.Equal(t, 1, result.OrdersExtracted)
		assert.Equal(t, 2, result.OrdersSubmitted)
	})

	t.Run("extraction stage failure", func(t *testing.T) {
		s := newTestServer(&fakeBackend{
			extractErr: &backend.ScriptError{Message: "extraction script failed: no inbound email found", ExitCode: 1},
		}, nil)
		env := doRPC(t, s, `{"jsonrpc":"2.0","method":"tools/call","params":{"name":"run_full_pipeline"},"id":17}`)
		require.Nil(t, env.Error)

		text := contentText(t, env.Result)
		assert.True(t, strings.HasPrefix(text, "Error: Pipeline failed at extraction: "), text)
		assert.Contains(t, text, "no inbound email found")
	})

	t.Run("all orders failed keeps itemized result", func(t *testing.T) {
		s := newTestServer(&fakeBackend{
			extraction: extractionFixture(),
			orderFail:  "confirmation not detected",
		}, nil)
		env := doRPC(t, s, `{"jsonrpc":"2.0","method":"tools/call","params":{"name":"run_full_pipeline"},"id":18}`)
		require.Nil(t, env.Error)

		var result types.PipelineResult
		require.NoError(t, json.Unmarshal([]byte(contentText(t, env.Result)), &result))
		assert.Equal(t, types.BatchStatusFailed, result.Status)
		assert.Empty(t, result.Stage)
		assert.Len(t, result.FailedOrders, 2)
	})
}

// TestRootEndpoint tests service discovery and the SSE rejection
func TestRootEndpoint(t *testing.T) {
	s := newTestServer(&fakeBackend{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), serviceName)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "text/event-stream")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// TestHealthEndpoint tests the no-registry fallback document
func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(&fakeBackend{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

// TestErrorKind tests category attribution across the domain error types
func TestErrorKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation", validate.Errorf("bad input"), "ValidationError"},
		{"timeout", &backend.TimeoutError{Operation: "order creation", Limit: time.Second}, "TimeoutError"},
		{"script", &backend.ScriptError{Message: "boom", ExitCode: 2}, "ScriptExecutionError"},
		{"extraction", &backend.ExtractionError{Message: "launch failed"}, "ExtractionError"},
		{"submission", &submit.SubmissionError{Message: "batch aborted"}, "SubmissionError"},
		{"unknown", errors.New("mystery"), "InternalError"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorKind(tt.err))
		})
	}
}
