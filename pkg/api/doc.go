/*
Package api exposes the automation tools over HTTP as a JSON-RPC 2.0
endpoint speaking the MCP tool-calling shape.

Three methods are served: initialize, tools/list and tools/call. Every
tool result, success or domain failure, is wrapped in the MCP content
envelope; protocol-level errors (malformed JSON, unknown method, unknown
tool, missing tool name) become JSON-RPC error objects instead. Domain
failure text is prefixed with the error category, for example
"Error: ValidationError: master bill number must be exactly 9 digits".

Tool dispatch is bounded by a slot pool sized from the configuration so
the server never launches more automation processes than configured,
independent of the per-profile browser lock underneath.

The server also serves /health, /tools, /metrics and an SSE stream of
pipeline lifecycle events on /events. Authentication is selected by
config.AuthMode: a bearer token, an X-API-Key header, or none. The
health endpoint always bypasses auth.
*/
package api
