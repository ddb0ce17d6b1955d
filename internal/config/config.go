// Package config loads server settings from an optional YAML file with
// environment variable overrides. Env always wins over file values.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenAddr    string `yaml:"listen_addr"`
	HistoryDBPath string `yaml:"history_db_path"`
	JWTSecret     string `yaml:"jwt_secret"`
	JWTIssuer     string `yaml:"jwt_issuer"`
	OTLPEndpoint  string `yaml:"otlp_endpoint"`
	OTLPInsecure  bool   `yaml:"otlp_insecure"`
	ServiceName   string `yaml:"service_name"`
}

func defaults() Config {
	return Config{
		ListenAddr:  ":8080",
		JWTIssuer:   "mediaplanner",
		ServiceName: "mediaplan-server",
	}
}

// Load reads the YAML file at path (skipped when path is empty or the
// file does not exist) and then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		blob, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(blob, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.ListenAddr = envOrDefault("MEDIAPLANNER_LISTEN_ADDR", cfg.ListenAddr)
	cfg.HistoryDBPath = envOrDefault("MEDIAPLANNER_HISTORY_DB", cfg.HistoryDBPath)
	cfg.JWTSecret = envOrDefault("MEDIAPLANNER_JWT_SECRET", cfg.JWTSecret)
	cfg.JWTIssuer = envOrDefault("MEDIAPLANNER_JWT_ISSUER", cfg.JWTIssuer)
	cfg.OTLPEndpoint = envOrDefault("MEDIAPLANNER_OTLP_ENDPOINT", cfg.OTLPEndpoint)
	cfg.OTLPInsecure = envBool("MEDIAPLANNER_OTLP_INSECURE", cfg.OTLPInsecure)
	cfg.ServiceName = envOrDefault("MEDIAPLANNER_SERVICE_NAME", cfg.ServiceName)

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
