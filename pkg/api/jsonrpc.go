package api

import (
	"encoding/json"
)

// JSON-RPC 2.0 error codes
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

// rpcRequest is a JSON-RPC 2.0 request envelope
type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      any             `json:"id"`
}

// rpcError is a JSON-RPC 2.0 error object. Data carries the domain error
// kind so callers can distinguish bad input from timeouts programmatically.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// rpcResponse is a JSON-RPC 2.0 response envelope
type rpcResponse struct {
	JSONRPC string    `json:"jsonrpc"`
	Result  any       `json:"result,omitempty"`
	Error   *rpcError `json:"error,omitempty"`
	ID      any       `json:"id"`
}

func rpcResult(id, result any) rpcResponse {
	return rpcResponse{JSONRPC: "2.0", Result: result, ID: id}
}

// errData tags a protocol error with its category for programmatic callers
func errData(kind string) map[string]string {
	return map[string]string{"kind": kind}
}

func rpcFailure(id any, code int, message string, data any) rpcResponse {
	return rpcResponse{
		JSONRPC: "2.0",
		Error:   &rpcError{Code: code, Message: message, Data: data},
		ID:      id,
	}
}

// toolResponse is the MCP content-array envelope every tool result is
// wrapped in
type toolResponse struct {
	Content []contentItem `json:"content"`
}

type contentItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// successResponse wraps JSON-encoded data in the MCP content envelope
func successResponse(data any) (*toolResponse, error) {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, err
	}
	return &toolResponse{Content: []contentItem{{Type: "text", Text: string(raw)}}}, nil
}

// errorResponse wraps a tool-level failure message in the MCP envelope.
// Domain failures are results, not protocol faults.
func errorResponse(message string) *toolResponse {
	return &toolResponse{Content: []contentItem{{Type: "text", Text: "Error: " + message}}}
}
