package config

import (
	"errors"
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
	if cfg.Registry.Timeout != 30*time.Second {
		t.Errorf("expected registry timeout 30s, got %v", cfg.Registry.Timeout)
	}
	if cfg.Library.Namespace != "http://cellocad.org/Terms/cello#" {
		t.Errorf("expected cello namespace, got %s", cfg.Library.Namespace)
	}
	if cfg.Library.FileName != "library.UCF.json" {
		t.Errorf("expected library.UCF.json, got %s", cfg.Library.FileName)
	}
	if !cfg.NATS.Embedded {
		t.Error("expected embedded NATS by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
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
			name:    "missing addr",
			modify:  func(c *Config) { c.Server.Addr = "" },
			wantErr: true,
		},
		{
			name:    "zero registry timeout",
			modify:  func(c *Config) { c.Registry.Timeout = 0 },
			wantErr: true,
		},
		{
			name:    "zero attachment concurrency",
			modify:  func(c *Config) { c.Registry.AttachmentConcurrency = 0 },
			wantErr: true,
		},
		{
			name:    "missing namespace",
			modify:  func(c *Config) { c.Library.Namespace = "" },
			wantErr: true,
		},
		{
			name:    "library file with directory",
			modify:  func(c *Config) { c.Library.FileName = "../library.UCF.json" },
			wantErr: true,
		},
		{
			name:    "missing compiler",
			modify:  func(c *Config) { c.Compiler.Executable = "" },
			wantErr: true,
		},
		{
			name:    "external nats without url",
			modify:  func(c *Config) { c.NATS.Embedded = false },
			wantErr: true,
		},
		{
			name: "external nats with url",
			modify: func(c *Config) {
				c.NATS.Embedded = false
				c.NATS.URL = "nats://localhost:4222"
			},
			wantErr: false,
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

func TestValidateServe(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.ValidateServe(); !errors.Is(err, ErrNoAuthSecret) {
		t.Errorf("expected ErrNoAuthSecret, got %v", err)
	}
	cfg.Auth.Secret = "s3cret"
	if err := cfg.ValidateServe(); err != nil {
		t.Errorf("ValidateServe() error = %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
server:
  addr: ":9090"
registry:
  url: "https://synbiohub.example.org"
  timeout: 45s
  requests_per_second: 2.5
compiler:
  executable: "/opt/cello/bin/cello"
  args: ["{verilog}", "{ucf}"]
  timeout: 20m
nats:
  url: "nats://test:4222"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("expected addr :9090, got %s", cfg.Server.Addr)
	}
	if cfg.Registry.URL != "https://synbiohub.example.org" {
		t.Errorf("expected registry url, got %s", cfg.Registry.URL)
	}
	if cfg.Registry.Timeout != 45*time.Second {
		t.Errorf("expected timeout 45s, got %v", cfg.Registry.Timeout)
	}
	if cfg.Registry.RequestsPerSecond != 2.5 {
		t.Errorf("expected 2.5 requests per second, got %f", cfg.Registry.RequestsPerSecond)
	}
	if len(cfg.Compiler.Args) != 2 {
		t.Errorf("expected 2 compiler args, got %d", len(cfg.Compiler.Args))
	}
	if cfg.Compiler.Timeout != 20*time.Minute {
		t.Errorf("expected compiler timeout 20m, got %v", cfg.Compiler.Timeout)
	}
	// Unset keys keep their defaults
	if cfg.Registry.Burst != 5 {
		t.Errorf("expected default burst 5, got %d", cfg.Registry.Burst)
	}
	if cfg.Projects.Root != "./projects" {
		t.Errorf("expected default projects root, got %s", cfg.Projects.Root)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("server: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(configPath); err == nil {
		t.Error("expected parse error")
	}
	if _, err := LoadFromFile(filepath.Join(tmpDir, "missing.yaml")); err == nil {
		t.Error("expected read error")
	}
}

func TestConfigMerge(t *testing.T) {
	base := DefaultConfig()
	override := &Config{
		Registry: RegistryConfig{
			URL: "https://override.example.org",
		},
		NATS: NATSConfig{
			URL: "nats://external:4222",
		},
		Auth: AuthConfig{
			Secret: "override",
		},
	}

	base.Merge(override)

	if base.Registry.URL != "https://override.example.org" {
		t.Errorf("expected registry override, got %s", base.Registry.URL)
	}
	// Timeout should remain from base since override didn't set it
	if base.Registry.Timeout != 30*time.Second {
		t.Errorf("expected timeout to remain default, got %v", base.Registry.Timeout)
	}
	if base.NATS.Embedded {
		t.Error("expected external NATS after URL override")
	}
	if base.Auth.Secret != "override" {
		t.Errorf("expected secret override, got %s", base.Auth.Secret)
	}
	if !base.TargetData.Watch {
		t.Error("expected watch to stay enabled")
	}
}

func TestConfigSaveToFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "subdir", "config.yaml")

	cfg := DefaultConfig()
	cfg.Registry.URL = "https://saved.example.org"
	cfg.Compiler.Timeout = 3 * time.Minute

	if err := cfg.SaveToFile(configPath); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("config file was not created")
	}

	loaded, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}
	if loaded.Registry.URL != "https://saved.example.org" {
		t.Errorf("expected saved registry url, got %s", loaded.Registry.URL)
	}
	if loaded.Compiler.Timeout != 3*time.Minute {
		t.Errorf("expected compiler timeout 3m, got %v", loaded.Compiler.Timeout)
	}
}
