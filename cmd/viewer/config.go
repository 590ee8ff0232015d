package main

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	DatasetPath string `envconfig:"DATASET_PATH"`
	Sender      string `envconfig:"SENDER" default:"agent@mail.com"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"WARN"`
	// VIEWER_COLOURS enables colorized headers
	Colours bool `envconfig:"VIEWER_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
