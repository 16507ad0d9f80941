package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "agent:\n  user_key: alice\n"))
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8000", cfg.ServerBase)
	assert.Equal(t, "alice", cfg.UserKey)
	assert.Equal(t, 2*time.Second, cfg.PollInterval)
	assert.Equal(t, "maa", cfg.MaaBinary)
	assert.Equal(t, "/maa/getTask", cfg.GetTaskPath)
	assert.Equal(t, "/maa/reportStatus", cfg.ReportStatusPath)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, time.Duration(0), cfg.TaskTimeout)
	assert.Equal(t, 4000, cfg.ReportLogMaxChars)
}

func TestLoadRequiresUserKey(t *testing.T) {
	_, err := Load(writeConfig(t, "agent: {}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user_key")
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
agent:
  server_base: http://server:9000/
  user_key: alice
  device_id: phone-1
  poll_interval: 500ms
  maa_binary: /usr/local/bin/maa
  task_timeout: 10m
  env:
    - MAA_LOG=debug
`))
	require.NoError(t, err)
	assert.Equal(t, "http://server:9000", cfg.ServerBase, "trailing slash is stripped")
	assert.Equal(t, "phone-1", cfg.DeviceID)
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, "/usr/local/bin/maa", cfg.MaaBinary)
	assert.Equal(t, 10*time.Minute, cfg.TaskTimeout)
	assert.Equal(t, []string{"MAA_LOG=debug"}, cfg.Env)
}
