package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("unexpected default listen addr: %q", cfg.ListenAddr)
	}
	if cfg.JWTIssuer != "mediaplanner" {
		t.Fatalf("unexpected default issuer: %q", cfg.JWTIssuer)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "listen_addr: \":9090\"\nhistory_db_path: /tmp/h.db\notlp_insecure: true\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ListenAddr != ":9090" {
		t.Fatalf("file value not applied: %q", cfg.ListenAddr)
	}
	if cfg.HistoryDBPath != "/tmp/h.db" {
		t.Fatalf("file value not applied: %q", cfg.HistoryDBPath)
	}
	if !cfg.OTLPInsecure {
		t.Fatal("bool file value not applied")
	}
	// Unset fields keep defaults.
	if cfg.JWTIssuer != "mediaplanner" {
		t.Fatalf("default lost: %q", cfg.JWTIssuer)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("listen_addr: \":9090\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MEDIAPLANNER_LISTEN_ADDR", ":7070")
	t.Setenv("MEDIAPLANNER_OTLP_INSECURE", "true")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ListenAddr != ":7070" {
		t.Fatalf("env must win over file: %q", cfg.ListenAddr)
	}
	if !cfg.OTLPInsecure {
		t.Fatal("env bool override not applied")
	}
}

func TestLoadMissingFileIsNotFatal(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("expected defaults, got %q", cfg.ListenAddr)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("listen_addr: [broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
