/*
Package metrics exposes Prometheus collectors for the inbound automation
service: counters for submitted and failed orders, batch and extraction
outcomes, a histogram of automation script durations, an in-flight gauge
and JSON-RPC request counts. Register installs them in the default registry
and Handler serves the /metrics endpoint.
*/
package metrics
