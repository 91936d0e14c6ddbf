package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AlexisVallejos/macroentreno-flet/internal/config"
)

func TestLoadMergesFileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	yaml := "data:\n  path: /tmp/from-file.json\nlog:\n  level: debug\ncatalog:\n  path: /tmp/catalog.json\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("MACRO_LOG_LEVEL", "error")
	t.Setenv("MACRO_USDA_API_KEY", "")

	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("MACRO_USDA_API_KEY=from-dotenv\n"), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	os.Unsetenv("MACRO_USDA_API_KEY")

	cfg, err := config.Load(config.NewViper(), dir, envFile)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Data.Path != "/tmp/from-file.json" || cfg.Data.Backend != config.BackendJSON {
		t.Fatalf("unexpected data config: %+v", cfg.Data)
	}
	if cfg.Log.Level != "error" {
		t.Fatalf("expected env to override file log level, got %q", cfg.Log.Level)
	}
	if cfg.Catalog.Path != "/tmp/catalog.json" {
		t.Fatalf("unexpected catalog path %q", cfg.Catalog.Path)
	}
	if cfg.USDA.APIKey != "from-dotenv" {
		t.Fatalf("expected api key from .env, got %q", cfg.USDA.APIKey)
	}
}

func TestLoadDefaultsAndBackendValidation(t *testing.T) {
	t.Setenv("MACRO_DATA_BACKEND", "sqlite")
	t.Setenv("MACRO_DATA_PATH", "")

	cfg, err := config.Load(config.NewViper(), t.TempDir(), "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Data.Backend != config.BackendSQLite || !strings.HasSuffix(cfg.Data.Path, "macroentreno.db") {
		t.Fatalf("expected default sqlite path, got %+v", cfg.Data)
	}

	t.Setenv("MACRO_DATA_BACKEND", "mongo")
	if _, err := config.Load(config.NewViper(), "", ""); err == nil {
		t.Fatalf("expected unsupported backend error")
	}
}

func TestLoadFatSecretDefaultsAndEnvironment(t *testing.T) {
	t.Setenv("MACRO_FATSECRET_CONSUMER_KEY", "key")
	t.Setenv("MACRO_FATSECRET_CONSUMER_SECRET", "secret")
	t.Setenv("MACRO_FATSECRET_LANGUAGE", "en")

	cfg, err := config.Load(config.NewViper(), t.TempDir(), "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := config.FatSecretConfig{ConsumerKey: "key", ConsumerSecret: "secret", Region: "AR", Language: "en"}
	if cfg.FatSecret != want {
		t.Fatalf("unexpected fatsecret config: %+v", cfg.FatSecret)
	}
}
