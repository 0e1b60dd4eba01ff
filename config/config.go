// Package config reads environment-driven defaults for the CLI.
package config

import "github.com/kelseyhightower/envconfig"

// Config groups the settings every command starts from. Command-line flags
// override these where both exist.
type Config struct {
	DatabasePath string `envconfig:"DATABASE" default:""`
	HashSize     int    `envconfig:"HASH_SIZE" default:"8"`
	// MaxWorkers limits parallel hash computations; 0 sizes the pool from
	// the CPU count.
	MaxWorkers    int    `envconfig:"MAX_WORKERS" default:"0"`
	LogFile       string `envconfig:"LOG_FILE" default:"imagehasher.log"`
	DefaultCutoff int    `envconfig:"CUTOFF" default:"10"`
}

// Load builds the Config from IMAGEHASHER_* environment variables.
func Load() (Config, error) {
	var cfg Config
	err := envconfig.Process("IMAGEHASHER", &cfg)
	return cfg, err
}
