/*
Package types defines the core data structures for inbound order automation.

This package contains the domain model shared by every other package: product
lines, orders, mailbox extractions, single-order creation requests, and the
three result shapes (per-order, batch, pipeline). These types carry the JSON
field names used on the wire, so a result marshaled here round-trips through
the MCP envelope without loss.

All records are value types: they are constructed once (by the extraction
parser, by an API caller, or by the submission orchestrator) and passed by
value through the pipeline. The only mutation after construction is the
accumulation of result lists while the orchestrator is building a batch.

Status semantics:

  - OrderResult.Status is success or failed; a confirmation ID is present
    only on success, an error message only on failure.
  - SubmissionResult.Status is derived from the success/failure mix via
    DeriveBatchStatus: failed only when nothing succeeded, success only when
    nothing failed, partial otherwise.
  - PipelineResult adds the extraction context and, on failure, the Stage
    (extraction, submission, unknown) where the run stopped.
*/
package types
