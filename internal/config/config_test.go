package config

import (
	"strings"
	"testing"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ARK_API_KEY", "test-key")
	t.Setenv("ARK_ACCESS_KEY", "")
	t.Setenv("ARK_SECRET_KEY", "")
	t.Setenv("COUNSEL_MODEL", "test-model")
	t.Setenv("COUNSEL_TEMPERATURE", "")
	t.Setenv("ARK_TOP_P", "")
	t.Setenv("ARK_MAX_TOKENS", "")
	t.Setenv("ARK_STREAM", "")
	t.Setenv("PORT", "")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Fatalf("addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.AI.Temperature != 0.7 {
		t.Fatalf("temperature = %v, want 0.7", cfg.AI.Temperature)
	}
	if !cfg.AI.StreamResponse {
		t.Fatal("streaming should default to enabled")
	}
}

func TestLoadTemperatureOverride(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("COUNSEL_TEMPERATURE", "0.2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.AI.Temperature != 0.2 {
		t.Fatalf("temperature = %v, want 0.2", cfg.AI.Temperature)
	}
}

func TestLoadInvalidTemperature(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("COUNSEL_TEMPERATURE", "warm")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid temperature")
	}
}

func TestLoadPortVariants(t *testing.T) {
	setBaseEnv(t)

	t.Setenv("PORT", "9000")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Fatalf("addr = %q, want :9000", cfg.Server.Addr)
	}

	t.Setenv("PORT", "127.0.0.1:9001")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9001" {
		t.Fatalf("addr = %q, want 127.0.0.1:9001", cfg.Server.Addr)
	}

	t.Setenv("PORT", "bad port")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed PORT")
	}
}

func TestValidateRequiresModelAndCredential(t *testing.T) {
	cfg := AIConfig{APIKey: "key"}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "COUNSEL_MODEL") {
		t.Fatalf("Validate err = %v, want missing model", err)
	}

	cfg = AIConfig{Model: "m"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing credential")
	}

	cfg = AIConfig{Model: "m", AccessKey: "ak"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for incomplete AK/SK pair")
	}

	cfg = AIConfig{Model: "m", APIKey: "key"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate err: %v", err)
	}
	cfg = AIConfig{Model: "m", AccessKey: "ak", SecretKey: "sk"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate err: %v", err)
	}
}
