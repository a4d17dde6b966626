package health

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// ScriptChecker verifies an automation script exists on disk
type ScriptChecker struct {
	// Path is the script location to stat
	Path string
}

// NewScriptChecker creates a script-presence checker
func NewScriptChecker(path string) *ScriptChecker {
	return &ScriptChecker{Path: path}
}

// Check performs the script presence check
func (s *ScriptChecker) Check(ctx context.Context) Result {
	start := time.Now()

	info, err := os.Stat(s.Path)
	if err != nil {
		return Result{
			Healthy:   false,
			Message:   fmt.Sprintf("script not found: %s", s.Path),
			CheckedAt: start,
			Duration:  time.Since(start),
		}
	}
	if info.IsDir() {
		return Result{
			Healthy:   false,
			Message:   fmt.Sprintf("script path is a directory: %s", s.Path),
			CheckedAt: start,
			Duration:  time.Since(start),
		}
	}

	return Result{
		Healthy:   true,
		Message:   fmt.Sprintf("script present: %s", s.Path),
		CheckedAt: start,
		Duration:  time.Since(start),
	}
}

// Type returns the health check type
func (s *ScriptChecker) Type() CheckType {
	return CheckTypeScript
}

// InterpreterChecker verifies the script interpreter resolves on PATH
type InterpreterChecker struct {
	// Command is the interpreter binary name or path
	Command string
}

// NewInterpreterChecker creates an interpreter lookup checker
func NewInterpreterChecker(command string) *InterpreterChecker {
	return &InterpreterChecker{Command: command}
}

// Check performs the interpreter lookup
func (i *InterpreterChecker) Check(ctx context.Context) Result {
	start := time.Now()

	path, err := exec.LookPath(i.Command)
	if err != nil {
		return Result{
			Healthy:   false,
			Message:   fmt.Sprintf("interpreter not found: %s", i.Command),
			CheckedAt: start,
			Duration:  time.Since(start),
		}
	}

	return Result{
		Healthy:   true,
		Message:   fmt.Sprintf("interpreter resolved: %s", path),
		CheckedAt: start,
		Duration:  time.Since(start),
	}
}

// Type returns the health check type
func (i *InterpreterChecker) Type() CheckType {
	return CheckTypeInterpreter
}

// CredentialChecker verifies a required credential is configured. It only
// reports presence; the value is never logged or echoed.
type CredentialChecker struct {
	// Name identifies the credential in the report
	Name string

	// Lookup returns the configured value
	Lookup func() string
}

// NewCredentialChecker creates a credential presence checker
func NewCredentialChecker(name string, lookup func() string) *CredentialChecker {
	return &CredentialChecker{Name: name, Lookup: lookup}
}

// Check performs the credential presence check
func (c *CredentialChecker) Check(ctx context.Context) Result {
	start := time.Now()

	if c.Lookup == nil || c.Lookup() == "" {
		return Result{
			Healthy:   false,
			Message:   fmt.Sprintf("%s is not set", c.Name),
			CheckedAt: start,
			Duration:  time.Since(start),
		}
	}

	return Result{
		Healthy:   true,
		Message:   fmt.Sprintf("%s is set", c.Name),
		CheckedAt: start,
		Duration:  time.Since(start),
	}
}

// Type returns the health check type
func (c *CredentialChecker) Type() CheckType {
	return CheckTypeCredential
}
