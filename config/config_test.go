package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Http.Port != 8080 || cfg.Model.Path != "models/price_tree.json" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
http:
  port: 9090
  timeout: 5s
model:
  path: /srv/model.json
  watch: true
  cache_size: 16
log:
  level: debug
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Http.Port != 9090 || cfg.Http.Timeout != 5*time.Second {
		t.Fatalf("unexpected http config: %+v", cfg.Http)
	}
	if cfg.Model.Path != "/srv/model.json" || !cfg.Model.Watch || cfg.Model.CacheSize != 16 {
		t.Fatalf("unexpected model config: %+v", cfg.Model)
	}
	if cfg.Log.Level != "debug" || cfg.Log.MaxBackups != 3 {
		t.Fatalf("unexpected log config: %+v", cfg.Log)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PHONEPRICE_HTTP_PORT", "7000")
	t.Setenv("PHONEPRICE_MODEL_PATH", "other.json")
	t.Setenv("PHONEPRICE_LOG_LEVEL", "warn")
	t.Setenv("PHONEPRICE_MODEL_WATCH", "true")

	cfg, err := Load(writeConfig(t, "http:\n  port: 9090\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Http.Port != 7000 || cfg.Model.Path != "other.json" || cfg.Log.Level != "warn" || !cfg.Model.Watch {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	if _, err := Load(writeConfig(t, "http:\n  port: 70000\n")); err == nil {
		t.Fatal("expected error for invalid port")
	}
	if _, err := Load(writeConfig(t, "http: [")); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
	t.Setenv("PHONEPRICE_HTTP_PORT", "eighty")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for non-numeric port")
	}
}
