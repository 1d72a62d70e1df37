// Package config handles terragen configuration loading and management.
package config

import "github.com/Faultbox/terragen/internal/terrain"

// Config holds all terragen settings.
type Config struct {
	Terrain    terrain.Config   `yaml:"terrain"`
	Generation GenerationConfig `yaml:"generation"`
	Output     OutputConfig     `yaml:"output"`
	Store      StoreConfig      `yaml:"store"`
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`

	// Source is the file the config was loaded from, empty for pure defaults.
	Source string `yaml:"-"`
}

// GenerationConfig holds chunk build settings.
type GenerationConfig struct {
	Workers int `yaml:"workers"` // 0 = one per CPU
}

// OutputConfig holds export settings.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// StoreConfig holds chunk database settings.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig holds chunk stream server settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Terrain: terrain.DefaultConfig(),
		Generation: GenerationConfig{
			Workers: 0,
		},
		Output: OutputConfig{
			Dir: "out",
		},
		Store: StoreConfig{
			Path: "terragen.sqlite",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8787",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
