package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the agent's runtime configuration, loaded once at startup and
// handed to the components that need it.
type Config struct {
	ServerBase        string
	UserKey           string
	DeviceID          string
	PollInterval      time.Duration
	MaaBinary         string
	WorkDir           string
	AgentVersion      string
	GetTaskPath       string
	ReportStatusPath  string
	RequestTimeout    time.Duration
	TaskTimeout       time.Duration
	ReportLogMaxChars int
	// Env holds KEY=VALUE pairs appended to the process environment for
	// executed commands, so they win over inherited variables.
	Env     []string
	LogPath string
	DBPath  string
}

func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// defaults
	v.SetDefault("agent.server_base", "http://127.0.0.1:8000")
	v.SetDefault("agent.poll_interval", "2s")
	v.SetDefault("agent.maa_binary", "maa")
	v.SetDefault("agent.agent_version", "maa-remote-agent/0.1.0")
	v.SetDefault("agent.get_task_path", "/maa/getTask")
	v.SetDefault("agent.report_status_path", "/maa/reportStatus")
	v.SetDefault("agent.request_timeout", "30s")
	v.SetDefault("agent.task_timeout", "0")
	v.SetDefault("agent.report_log_max_chars", 4000)
	v.SetDefault("agent.db_path", filepath.Join(os.TempDir(), "maa-remote", "agent.db"))
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Config{
		ServerBase:        strings.TrimRight(v.GetString("agent.server_base"), "/"),
		UserKey:           v.GetString("agent.user_key"),
		DeviceID:          v.GetString("agent.device_id"),
		PollInterval:      v.GetDuration("agent.poll_interval"),
		MaaBinary:         v.GetString("agent.maa_binary"),
		WorkDir:           v.GetString("agent.work_dir"),
		AgentVersion:      v.GetString("agent.agent_version"),
		GetTaskPath:       v.GetString("agent.get_task_path"),
		ReportStatusPath:  v.GetString("agent.report_status_path"),
		RequestTimeout:    v.GetDuration("agent.request_timeout"),
		TaskTimeout:       v.GetDuration("agent.task_timeout"),
		ReportLogMaxChars: v.GetInt("agent.report_log_max_chars"),
		Env:               v.GetStringSlice("agent.env"),
		LogPath:           v.GetString("agent.log_path"),
		DBPath:            v.GetString("agent.db_path"),
	}
	if cfg.UserKey == "" {
		return Config{}, fmt.Errorf("agent.user_key is required")
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.ReportLogMaxChars <= 0 {
		cfg.ReportLogMaxChars = 4000
	}
	return cfg, nil
}
