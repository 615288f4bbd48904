package profiles

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProfile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "agent.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
model: gpt-4o
base_url: http://localhost:8000/v1
max_calls: 12
working_token_budget: 40000
hard_token_ceiling: 80000
wall_clock_limit: 30m
workers: 4
`), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", p.Model)
	assert.Equal(t, 12, p.MaxCalls)
	assert.Equal(t, 30*time.Minute, p.WallClock.Std())
	assert.Equal(t, 4, p.Workers)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load("/nonexistent/agent.yaml")
	assert.Error(t, err)
}

func TestLoadBadYAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
