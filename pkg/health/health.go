package health

import (
	"context"
	"time"
)

// CheckType represents the type of health check
type CheckType string

const (
	CheckTypeScript      CheckType = "script"
	CheckTypeInterpreter CheckType = "interpreter"
	CheckTypeCredential  CheckType = "credential"
)

// Result represents the outcome of a health check
type Result struct {
	Healthy   bool
	Message   string
	CheckedAt time.Time
	Duration  time.Duration
}

// Checker is the interface that all health checkers must implement
type Checker interface {
	// Check performs the health check and returns the result
	Check(ctx context.Context) Result

	// Type returns the type of health check
	Type() CheckType
}

// Report is the aggregate health document served by the HTTP layer
type Report struct {
	Status     string            `json:"status"` // "ok" or "degraded"
	Service    string            `json:"service"`
	Components map[string]string `json:"components,omitempty"`
	CheckedAt  time.Time         `json:"checked_at"`
}

// Registry holds named checkers and produces aggregate reports
type Registry struct {
	service  string
	checkers map[string]Checker
}

// NewRegistry creates a registry for the named service
func NewRegistry(service string) *Registry {
	return &Registry{
		service:  service,
		checkers: make(map[string]Checker),
	}
}

// Register adds a named checker
func (r *Registry) Register(name string, c Checker) {
	r.checkers[name] = c
}

// Report runs every registered checker and aggregates the results. The
// overall status is degraded if any component is unhealthy; the service
// still answers so operators can see which component is down.
func (r *Registry) Report(ctx context.Context) Report {
	report := Report{
		Status:     "ok",
		Service:    r.service,
		Components: make(map[string]string, len(r.checkers)),
		CheckedAt:  time.Now(),
	}

	for name, checker := range r.checkers {
		res := checker.Check(ctx)
		if res.Healthy {
			report.Components[name] = "ok"
			continue
		}
		report.Status = "degraded"
		report.Components[name] = res.Message
	}
	return report
}
