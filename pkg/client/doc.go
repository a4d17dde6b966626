/*
Package client is the in-process SDK for the inbound order automation
flows. It wires the same backend, orchestrator and pipeline the HTTP
server uses, minus the protocol layer, so Go programs can embed the
automation directly.

Construct a Client from a config.Config, or use the package-level
wrappers (ExtractInboundOrders, CreateArcadiaOrder, RunFullPipeline)
which read configuration from the environment on each call.
*/
package client
