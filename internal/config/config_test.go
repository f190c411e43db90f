package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			InstanceID:             "test",
			HTTPListen:             ":8080",
			LogLevel:               "info",
			ShutdownTimeoutSeconds: 30,
		},
		Archive: ArchiveConfig{
			Path:            "testdata.bgp",
			MaxPayloadBytes: 4096,
		},
		Store: StoreConfig{
			MaxConns: 10,
			MinConns: 2,
		},
		Publish: PublishConfig{
			Enabled:  true,
			Brokers:  []string{"localhost:9092"},
			Topic:    "bgp-events",
			ClientID: "bgparchive",
		},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got error: %v", err)
	}
}

func TestValidate_NoArchivePath(t *testing.T) {
	cfg := validConfig()
	cfg.Archive.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty archive.path")
	}
}

func TestValidate_MaxPayloadBytesZero(t *testing.T) {
	cfg := validConfig()
	cfg.Archive.MaxPayloadBytes = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for archive.max_payload_bytes = 0")
	}
}

func TestValidate_ShutdownTimeoutZero(t *testing.T) {
	cfg := validConfig()
	cfg.Service.ShutdownTimeoutSeconds = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for shutdown_timeout_seconds = 0")
	}
}

func TestValidate_StoreEnabledNoDSN(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Enabled = true
	cfg.Store.DSN = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for store.enabled with empty dsn")
	}
}

func TestValidate_StoreEnabledMaxConnsZero(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Enabled = true
	cfg.Store.DSN = "postgres://localhost/test"
	cfg.Store.MaxConns = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for store.max_conns = 0")
	}
}

func TestValidate_PublishEnabledNoBrokers(t *testing.T) {
	cfg := validConfig()
	cfg.Publish.Brokers = nil
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for publish.enabled with no brokers")
	}
}

func TestValidate_PublishEnabledNoTopic(t *testing.T) {
	cfg := validConfig()
	cfg.Publish.Topic = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for publish.enabled with empty topic")
	}
}

func TestValidate_PublishDisabledIgnoresMissingBrokers(t *testing.T) {
	cfg := validConfig()
	cfg.Publish.Enabled = false
	cfg.Publish.Brokers = nil
	cfg.Publish.Topic = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config with publish disabled, got: %v", err)
	}
}

func writeMinimalYAML(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	data := `
archive:
  path: "testdata.bgp"
store:
  enabled: true
  dsn: "postgres://localhost/test"
`
	if err := os.WriteFile(p, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_EnvOverrideDSN(t *testing.T) {
	p := writeMinimalYAML(t)
	t.Setenv("BGPARCHIVE_STORE__DSN", "postgres://envhost/envdb")

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Store.DSN != "postgres://envhost/envdb" {
		t.Errorf("expected DSN from env, got %q", cfg.Store.DSN)
	}
}

func TestLoad_EnvOverrideLogLevel(t *testing.T) {
	p := writeMinimalYAML(t)
	t.Setenv("BGPARCHIVE_SERVICE__LOG_LEVEL", "debug")

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Service.LogLevel != "debug" {
		t.Errorf("expected log_level 'debug' from env, got %q", cfg.Service.LogLevel)
	}
}

func TestLoad_EnvEmptyArchivePathFailsValidation(t *testing.T) {
	p := writeMinimalYAML(t)
	t.Setenv("BGPARCHIVE_ARCHIVE__PATH", "")

	_, err := Load(p)
	if err == nil {
		t.Fatal("expected validation error for empty archive.path via env")
	}
}

func TestLoad_BrokersFromCommaSeparatedEnv(t *testing.T) {
	p := writeMinimalYAML(t)
	t.Setenv("BGPARCHIVE_PUBLISH__ENABLED", "true")
	t.Setenv("BGPARCHIVE_PUBLISH__TOPIC", "bgp-events")
	t.Setenv("BGPARCHIVE_PUBLISH__BROKERS", "broker1:9092,broker2:9092")

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Publish.Brokers) != 2 || cfg.Publish.Brokers[0] != "broker1:9092" || cfg.Publish.Brokers[1] != "broker2:9092" {
		t.Errorf("expected brokers split from comma-separated env var, got %v", cfg.Publish.Brokers)
	}
}
