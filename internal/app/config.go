package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	GraphPath string // .hcl file or directory of graph definitions

	LogFormat string
	LogLevel  string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.GraphPath == "" {
		return nil, errors.New("GraphPath is a required configuration field and cannot be empty")
	}

	return &cfg, nil
}
