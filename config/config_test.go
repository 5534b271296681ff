package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected default addr :8080, got %s", cfg.Server.Addr)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("expected default shutdown timeout 10s, got %s", cfg.Server.ShutdownTimeout)
	}
	if !cfg.NATS.Embedded {
		t.Error("expected embedded NATS by default")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected default log level info, got %s", cfg.Log.Level)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing server addr",
			modify:  func(c *Config) { c.Server.Addr = "" },
			wantErr: true,
		},
		{
			name:    "zero shutdown timeout",
			modify:  func(c *Config) { c.Server.ShutdownTimeout = 0 },
			wantErr: true,
		},
		{
			name: "external NATS without URL",
			modify: func(c *Config) {
				c.NATS.Embedded = false
				c.NATS.URL = ""
			},
			wantErr: true,
		},
		{
			name: "external NATS with URL",
			modify: func(c *Config) {
				c.NATS.Embedded = false
				c.NATS.URL = "nats://localhost:4222"
			},
			wantErr: false,
		},
		{
			name:    "bogus log level",
			modify:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
server:
  addr: ":9090"
nats:
  url: "nats://broker:4222"
log:
  level: "debug"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("expected addr :9090, got %s", cfg.Server.Addr)
	}
	if cfg.NATS.URL != "nats://broker:4222" {
		t.Errorf("expected NATS URL nats://broker:4222, got %s", cfg.NATS.URL)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Log.Level)
	}
	// Unset fields keep their defaults.
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("expected default shutdown timeout, got %s", cfg.Server.ShutdownTimeout)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()
	base.Merge(&Config{
		Server: ServerConfig{Addr: ":7000"},
		NATS:   NATSConfig{URL: "nats://other:4222"},
		Log:    LogConfig{Level: "warn"},
	})

	if base.Server.Addr != ":7000" {
		t.Errorf("expected merged addr :7000, got %s", base.Server.Addr)
	}
	if base.NATS.URL != "nats://other:4222" {
		t.Errorf("expected merged NATS URL, got %s", base.NATS.URL)
	}
	if base.NATS.Embedded {
		t.Error("setting a NATS URL must disable the embedded server")
	}
	if base.Log.Level != "warn" {
		t.Errorf("expected merged log level warn, got %s", base.Log.Level)
	}
	// Unset fields remain untouched.
	if base.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("expected default shutdown timeout, got %s", base.Server.ShutdownTimeout)
	}
}

func TestMergeNil(t *testing.T) {
	base := DefaultConfig()
	base.Merge(nil)
	if base.Server.Addr != ":8080" {
		t.Error("merging nil must not change anything")
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("PALLETFORGE_ADDR", ":6060")
	t.Setenv("PALLETFORGE_LOG_LEVEL", "error")

	loader := NewLoader(nil)
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != ":6060" {
		t.Errorf("expected env addr :6060, got %s", cfg.Server.Addr)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("expected env log level error, got %s", cfg.Log.Level)
	}
}
