package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("config = %+v, want defaults", cfg)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
db_path: /data/hadith.db
output_dir: /srv/export
failure_mode: per-book
server:
  addr: ":9090"
auth:
  secret: s3cret
  ttl: 2h
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.DBPath != "/data/hadith.db" || cfg.OutputDir != "/srv/export" || cfg.FailureMode != "per-book" {
		t.Errorf("config = %+v", cfg)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("server.addr = %q", cfg.Server.Addr)
	}
	if cfg.Auth.JWTSecret != "s3cret" || cfg.Auth.JWTDuration != 2*time.Hour {
		t.Errorf("auth = %+v", cfg.Auth)
	}
	if cfg.Auth.JWTIssuer != "hadithexport" {
		t.Errorf("unset issuer should keep its default, got %q", cfg.Auth.JWTIssuer)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown key", "db_path: x.db\ncolour: blue\n"},
		{"empty db path", "db_path: \"\"\n"},
		{"empty output", "output_dir: \"\"\n"},
		{"bad yaml", "db_path: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, tt.body)); err == nil {
				t.Error("LoadConfig succeeded, want error")
			}
		})
	}
}

func TestLoadConfigEmptyFile(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("config = %+v, want defaults", cfg)
	}
}
