package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host string
	Port int
}

type DB struct {
	Driver string // sqlite or mysql
	Path   string // sqlite file path
	Host   string
	Port   int
	User   string
	Pass   string
	Name   string
}

// Maa holds dispatch protocol knobs.
type Maa struct {
	GetTaskPath      string
	ReportStatusPath string
	MaxLogChars      int
	// PollInterval, when positive, is advertised to agents in getTask
	// responses (seconds).
	PollInterval float64
}

// Config is built once at startup and passed explicitly into every component
// that needs it.
type Config struct {
	HTTP HTTP
	DB   DB
	Maa  Maa
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.db.driver", "sqlite")
	v.SetDefault("server.db.path", "data/maa_remote.db")
	v.SetDefault("server.db.host", "127.0.0.1")
	v.SetDefault("server.db.port", 3306)
	v.SetDefault("server.db.user", "root")
	v.SetDefault("server.db.pass", "")
	v.SetDefault("server.db.name", "maa_remote")
	v.SetDefault("server.maa.get_task_path", "/maa/getTask")
	v.SetDefault("server.maa.report_status_path", "/maa/reportStatus")
	v.SetDefault("server.maa.max_log_chars", 4000)
	v.SetDefault("server.maa.poll_interval", 0)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{
		HTTP: HTTP{
			Host: v.GetString("server.host"),
			Port: v.GetInt("server.port"),
		},
		DB: DB{
			Driver: v.GetString("server.db.driver"),
			Path:   v.GetString("server.db.path"),
			Host:   v.GetString("server.db.host"),
			Port:   v.GetInt("server.db.port"),
			User:   v.GetString("server.db.user"),
			Pass:   v.GetString("server.db.pass"),
			Name:   v.GetString("server.db.name"),
		},
		Maa: Maa{
			GetTaskPath:      v.GetString("server.maa.get_task_path"),
			ReportStatusPath: v.GetString("server.maa.report_status_path"),
			MaxLogChars:      v.GetInt("server.maa.max_log_chars"),
			PollInterval:     v.GetFloat64("server.maa.poll_interval"),
		},
	}
	if cfg.Maa.MaxLogChars <= 0 {
		cfg.Maa.MaxLogChars = 4000
	}
	return cfg, nil
}
