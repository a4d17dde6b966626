/*
Package events provides an in-memory event broker for pipeline lifecycle
notifications.

The orchestrator and pipeline coordinator publish events as extraction runs
start and finish and as individual order submissions succeed or fail; the
HTTP server relays them to interested clients over SSE. Delivery is
best-effort: publish never blocks, and a subscriber with a full buffer
misses events rather than stalling the pipeline. These events are
notifications for observers, not a progress or delivery contract.
*/
package events
