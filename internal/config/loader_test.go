package config

import (
	"strings"
	"testing"
)

func TestLoadFromReader_Defaults(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("listen_addr = %q, want :8080", cfg.Server.ListenAddr)
	}
	if cfg.Server.LogLevel != LogInfo {
		t.Errorf("log_level = %q, want info", cfg.Server.LogLevel)
	}
	if cfg.Sessions.Backend != "memory" {
		t.Errorf("sessions.backend = %q, want memory", cfg.Sessions.Backend)
	}
}

func TestLoadFromReader_FullConfig(t *testing.T) {
	yml := `
server:
  listen_addr: ":9000"
  log_level: debug
providers:
  gemini_api_key: file-key
  weather_api_key: wk
sessions:
  backend: redis
  redis_addr: localhost:6379
  ttl_hours: 12
stream:
  chunk_size: 16384
  pace_millis: 25
`
	cfg, err := LoadFromReader(strings.NewReader(yml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.ListenAddr != ":9000" || cfg.Server.LogLevel != LogDebug {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Sessions.Backend != "redis" || cfg.Sessions.RedisAddr != "localhost:6379" {
		t.Errorf("sessions = %+v", cfg.Sessions)
	}
	if cfg.Stream.ChunkSize != 16384 || cfg.Stream.PaceMillis != 25 {
		t.Errorf("stream = %+v", cfg.Stream)
	}
}

func TestLoadFromReader_EnvOverridesFile(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")

	cfg, err := LoadFromReader(strings.NewReader("providers:\n  gemini_api_key: file-key\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Providers.GeminiKey != "env-key" {
		t.Fatalf("gemini key = %q, want env-key", cfg.Providers.GeminiKey)
	}
}

func TestLoadFromReader_UnknownFieldRejected(t *testing.T) {
	_, err := LoadFromReader(strings.NewReader("serverr:\n  listen_addr: \":1\"\n"))
	if err == nil {
		t.Fatal("expected error for unknown top-level field")
	}
}

func TestValidate_RedisBackendNeedsAddr(t *testing.T) {
	_, err := LoadFromReader(strings.NewReader("sessions:\n  backend: redis\n"))
	if err == nil || !strings.Contains(err.Error(), "redis_addr") {
		t.Fatalf("err = %v, want redis_addr requirement", err)
	}
}

func TestValidate_InvalidBackend(t *testing.T) {
	_, err := LoadFromReader(strings.NewReader("sessions:\n  backend: dynamo\n"))
	if err == nil || !strings.Contains(err.Error(), "sessions.backend") {
		t.Fatalf("err = %v, want backend validation failure", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	_, err := LoadFromReader(strings.NewReader("server:\n  log_level: loud\n"))
	if err == nil || !strings.Contains(err.Error(), "log_level") {
		t.Fatalf("err = %v, want log_level validation failure", err)
	}
}
