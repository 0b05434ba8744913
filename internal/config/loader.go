package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds optional runtime tunables read from a --config file. Zero
// values mean "unspecified" and keep the built-in defaults; CLI flags win
// over file values.
type Config struct {
	Port           int    `json:"port" yaml:"port" toml:"port"`
	CtxSize        int    `json:"ctx_size" yaml:"ctx_size" toml:"ctx_size"`
	GPULayers      *int   `json:"gpu_layers" yaml:"gpu_layers" toml:"gpu_layers"`
	Threads        int    `json:"threads" yaml:"threads" toml:"threads"`
	MaxWaitSeconds int64  `json:"max_wait_seconds" yaml:"max_wait_seconds" toml:"max_wait_seconds"`
	MaxBodyBytes   int64  `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	ResponseMode   string `json:"response_mode" yaml:"response_mode" toml:"response_mode"`
	LogLevel       string `json:"log_level" yaml:"log_level" toml:"log_level"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
