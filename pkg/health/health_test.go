package health

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScriptChecker tests script presence detection
func TestScriptChecker(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "order.py")
	require.NoError(t, os.WriteFile(path, []byte("print('ok')\n"), 0o644))

	res := NewScriptChecker(path).Check(context.Background())
	assert.True(t, res.Healthy)

	res = NewScriptChecker(filepath.Join(dir, "missing.py")).Check(context.Background())
	assert.False(t, res.Healthy)
	assert.Contains(t, res.Message, "not found")

	res = NewScriptChecker(dir).Check(context.Background())
	assert.False(t, res.Healthy)
}

// TestInterpreterChecker tests PATH lookup
func TestInterpreterChecker(t *testing.T) {
	res := NewInterpreterChecker("sh").Check(context.Background())
	assert.True(t, res.Healthy)

	res = NewInterpreterChecker("definitely-not-a-binary-xyz").Check(context.Background())
	assert.False(t, res.Healthy)
}

// TestCredentialChecker tests credential presence reporting
func TestCredentialChecker(t *testing.T) {
	res := NewCredentialChecker("AUTOMATION_API_KEY", func() string { return "secret" }).Check(context.Background())
	assert.True(t, res.Healthy)
	assert.NotContains(t, res.Message, "secret", "value must not leak into the report")

	res = NewCredentialChecker("AUTOMATION_API_KEY", func() string { return "" }).Check(context.Background())
	assert.False(t, res.Healthy)
}

// TestRegistryReport tests aggregate status derivation
func TestRegistryReport(t *testing.T) {
	reg := NewRegistry("inbound-mcp")
	reg.Register("interpreter", NewInterpreterChecker("sh"))
	reg.Register("api_key", NewCredentialChecker("AUTOMATION_API_KEY", func() string { return "" }))

	report := reg.Report(context.Background())
	assert.Equal(t, "degraded", report.Status)
	assert.Equal(t, "ok", report.Components["interpreter"])
	assert.Contains(t, report.Components["api_key"], "not set")

	reg = NewRegistry("inbound-mcp")
	reg.Register("interpreter", NewInterpreterChecker("sh"))
	report = reg.Report(context.Background())
	assert.Equal(t, "ok", report.Status)
}
