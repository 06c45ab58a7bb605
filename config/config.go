// config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the server configuration. Precedence, lowest to highest:
// defaults, YAML file, environment.
type Config struct {
	ListenAddr  string `yaml:"listen_addr"`
	DatabaseURL string `yaml:"database_url"`
	// TokenHash is the bcrypt hash of the shared API token. Empty disables auth.
	TokenHash string `yaml:"token_hash"`
	LogLevel  string `yaml:"log_level"`
	// EnableWS controls the /ws event stream.
	EnableWS bool `yaml:"enable_ws"`
}

func Default() Config {
	return Config{
		ListenAddr: ":8080",
		LogLevel:   "info",
		EnableWS:   true,
	}
}

// Load reads the optional YAML file at path (empty path or a missing file is
// fine) and applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Optional file.
		case err != nil:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("NOTES_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("NOTES_TOKEN_HASH"); v != "" {
		cfg.TokenHash = v
	}
	if v := os.Getenv("NOTES_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("NOTES_ENABLE_WS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.EnableWS = b
		}
	}
}
