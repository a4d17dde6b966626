package backend

import (
	"bytes"
	"encoding/json"

	"github.com/coldchain-labs/inbound/pkg/types"
)

// report is the structured result an automation script emits as the final
// line of its standard output. Every field is optional; the report exists
// for diagnostics (video path) and extraction payloads, and a script that
// prints nothing parseable is still a successful script.
type report struct {
	Success        *bool         `json:"success,omitempty"`
	VideoPath      string        `json:"video_path,omitempty"`
	ConfirmationID string        `json:"confirmation_id,omitempty"`
	EmailSubject   string        `json:"email_subject,omitempty"`
	Orders         []types.Order `json:"orders,omitempty"`
	Error          string        `json:"error,omitempty"`
}

// parseReport reads the last non-empty line of captured output as a JSON
// report. A missing or malformed report means "diagnostic data unavailable",
// never an operation failure.
func parseReport(output []byte) (*report, bool) {
	lines := bytes.Split(output, []byte("\n"))
	for i := len(lines) - 1; i >= 0; i-- {
		line := bytes.TrimSpace(lines[i])
		if len(line) == 0 {
			continue
		}
		if line[0] != '{' {
			return nil, false
		}
		var r report
		if err := json.Unmarshal(line, &r); err != nil {
			return nil, false
		}
		return &r, true
	}
	return nil, false
}
