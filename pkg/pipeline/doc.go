/*
Package pipeline sequences the two automation stages: extract orders from
the mailbox, then submit them.

The coordinator is strictly sequential with no retries and no backward
transitions. An extraction failure, or a successful extraction with zero
orders, stops the run with stage=extraction. Errors surfaced by the
orchestrator (as opposed to per-order failures, which it absorbs into a
partial batch result) stop the run with stage=submission; anything else is
stage=unknown. A stage-level failure reports zero submitted and failed
counts with no itemized results.
*/
package pipeline
