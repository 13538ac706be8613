package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/loom-ml/loom/internal/logger"
	"github.com/loom-ml/loom/internal/tensor"
)

// Config represents the loom configuration file
// (~/.config/loom/config.yaml). Absent fields fall back to defaults.
type Config struct {
	LogLevel  string `yaml:"log_level"`  // debug, info, warn, error
	LogFormat string `yaml:"log_format"` // text, json
	TraceOps  bool   `yaml:"trace_ops"`  // log every engine operation
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "loom", "config.yaml")
}

// loadConfig reads the config file if present. A missing file is not
// an error.
func loadConfig() (Config, error) {
	var cfg Config
	path := configPath()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// setupLogger builds the logger from config and installs the engine
// tracer when trace_ops is set.
func setupLogger(cfg Config) logger.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var log logger.Logger
	if cfg.LogFormat == "json" {
		log = logger.JSON(os.Stderr, level)
	} else {
		log = logger.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}

	if cfg.TraceOps {
		tensor.SetTracer(logger.OpTracer{L: log})
	}
	return log
}
