package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // text or json
	} `yaml:"log"`
	Network struct {
		IncludePartialReaches bool `yaml:"include_partial_reaches"`
	} `yaml:"network"`
	Scan struct {
		Workers int      `yaml:"workers"`
		Ignored []string `yaml:"ignored"`
	} `yaml:"scan"`
	Trace struct {
		MaxHops int `yaml:"max_hops"`
	} `yaml:"trace"`
}

// Default returns the settings used when no config file exists.
func Default() *Config {
	var cfg Config
	cfg.Storage.Path = "rivernet.db"
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.Network.IncludePartialReaches = true
	cfg.Scan.Workers = 4
	cfg.Scan.Ignored = []string{".git", "results", "backup"}
	cfg.Trace.MaxHops = 0
	return &cfg
}

func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	// 2. Load YAML config over the defaults; a missing file keeps them
	cfg := Default()
	if path != "" {
		file, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(file, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	// 3. Override with Environment Variables if present
	if db := os.Getenv("RIVERNET_DB"); db != "" {
		cfg.Storage.Path = db
	}
	if level := os.Getenv("RIVERNET_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if format := os.Getenv("RIVERNET_LOG_FORMAT"); format != "" {
		cfg.Log.Format = format
	}
	if v := os.Getenv("RIVERNET_INCLUDE_PARTIAL"); v != "" {
		include, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid RIVERNET_INCLUDE_PARTIAL %q: %w", v, err)
		}
		cfg.Network.IncludePartialReaches = include
	}

	return cfg, nil
}
