package utils

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read from the working directory when present.
// Without it every field keeps its default and the export needs no input
// beyond hadith.db.
const DefaultConfigFile = "hadith-export.yaml"

type Config struct {
	DBPath      string       `yaml:"db_path"`
	OutputDir   string       `yaml:"output_dir"`
	FailureMode string       `yaml:"failure_mode"`
	Server      ServerConfig `yaml:"server"`
	Auth        AuthConfig   `yaml:"auth"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
	// UDPAddr enables the UDP progress feed when set.
	UDPAddr string `yaml:"udp_addr"`
}

type AuthConfig struct {
	JWTSecret   string        `yaml:"secret"`
	JWTIssuer   string        `yaml:"issuer"`
	JWTDuration time.Duration `yaml:"ttl"`
}

func DefaultConfig() Config {
	return Config{
		DBPath:      "hadith.db",
		OutputDir:   "output",
		FailureMode: "fail-fast",
		Server:      ServerConfig{Addr: ":8080"},
		Auth: AuthConfig{
			// dev default (change for any shared deployment)
			JWTSecret:   "dev-secret-change-me",
			JWTIssuer:   "hadithexport",
			JWTDuration: 24 * time.Hour,
		},
	}
}

// LoadConfig overlays the YAML file at path on DefaultConfig. A missing
// file is not an error; unknown keys are.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.DBPath == "" {
		return cfg, fmt.Errorf("config %s: db_path must not be empty", path)
	}
	if cfg.OutputDir == "" {
		return cfg, fmt.Errorf("config %s: output_dir must not be empty", path)
	}
	if cfg.Auth.JWTDuration <= 0 {
		cfg.Auth.JWTDuration = 24 * time.Hour
	}
	return cfg, nil
}
