/*
Package backend isolates browser automation behind a pluggable interface.

Each operation (mailbox extraction, single-order creation) runs as one
external process: the invoker passes order fields as arguments, supplies
credentials through the environment, enforces a hard wall-clock ceiling and
captures both output streams. The process's failure modes never propagate
past classification:

  - exit code 0: success; a confirmation ID is synthesized from the master
    bill number unless the script reports a real one
  - non-zero exit: failed, with the error text taken from stderr, then
    stdout, then the exit code
  - ceiling exceeded: failed with a distinct timeout message; partial output
    is still searched for diagnostic artifacts

Scripts may emit a structured report as the final line of stdout (a single
JSON object carrying video_path, confirmation_id, or the extraction
payload). A missing or malformed report is "diagnostics unavailable", never
a failure.

The persisted browser profile directory is a shared on-disk resource; a
single-slot lock per profile serializes invocations against it.
*/
package backend
