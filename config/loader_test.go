package config

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestLoader(home, work string, env map[string]string) *Loader {
	l := NewLoader(nil)
	l.homeDir = func() (string, error) { return home, nil }
	l.workDir = func() (string, error) { return work, nil }
	l.getenv = func(k string) string { return env[k] }
	return l
}

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoaderLayers(t *testing.T) {
	home := t.TempDir()
	repo := t.TempDir()
	work := filepath.Join(repo, "nested", "dir")
	if err := os.MkdirAll(work, 0755); err != nil {
		t.Fatal(err)
	}

	writeConfig(t, filepath.Join(home, UserConfigDir, UserConfigFile), `
registry:
  url: "https://user.example.org"
  token: "user-token"
server:
  addr: ":7000"
`)
	writeConfig(t, filepath.Join(repo, ProjectConfigFile), `
registry:
  url: "https://project.example.org"
target_data:
  watch: false
`)

	cfg, err := newTestLoader(home, work, nil).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Registry.URL != "https://project.example.org" {
		t.Errorf("project config should win, got %s", cfg.Registry.URL)
	}
	if cfg.Registry.Token != "user-token" {
		t.Errorf("user token should survive project layer, got %q", cfg.Registry.Token)
	}
	if cfg.Server.Addr != ":7000" {
		t.Errorf("user addr should survive project layer, got %s", cfg.Server.Addr)
	}
	if cfg.TargetData.Watch {
		t.Error("project config disabled watching")
	}
}

func TestLoaderEnv(t *testing.T) {
	env := map[string]string{
		EnvNATSURL:     "nats://env:4222",
		EnvAuthSecret:  "env-secret",
		EnvRegistryURL: "https://env.example.org",
	}

	cfg, err := newTestLoader(t.TempDir(), t.TempDir(), env).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.NATS.URL != "nats://env:4222" || cfg.NATS.Embedded {
		t.Errorf("expected external NATS from env, got %+v", cfg.NATS)
	}
	if cfg.Auth.Secret != "env-secret" {
		t.Errorf("expected secret from env, got %q", cfg.Auth.Secret)
	}
	if cfg.Registry.URL != "https://env.example.org" {
		t.Errorf("expected registry from env, got %s", cfg.Registry.URL)
	}
}

func TestLoaderLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "explicit.yaml")
	writeConfig(t, path, "auth:\n  secret: file-secret\n")

	cfg, err := newTestLoader(t.TempDir(), t.TempDir(), map[string]string{EnvAuthSecret: "env-secret"}).LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Auth.Secret != "env-secret" {
		t.Errorf("environment should override file, got %q", cfg.Auth.Secret)
	}

	if _, err := newTestLoader("", "", nil).LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoaderInvalidResult(t *testing.T) {
	work := t.TempDir()
	writeConfig(t, filepath.Join(work, ProjectConfigFile), "compiler:\n  executable: \"\"\n")

	if _, err := newTestLoader(t.TempDir(), work, nil).Load(); err == nil {
		t.Error("expected validation error")
	}
}

func TestEnsureUserConfig(t *testing.T) {
	home := t.TempDir()
	l := newTestLoader(home, t.TempDir(), nil)

	if err := l.EnsureUserConfig(); err != nil {
		t.Fatalf("EnsureUserConfig() error = %v", err)
	}
	path := filepath.Join(home, UserConfigDir, UserConfigFile)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("user config not created: %v", err)
	}
	if _, err := LoadFromFile(path); err != nil {
		t.Errorf("created config does not load: %v", err)
	}
	// Second call leaves the file alone
	if err := l.EnsureUserConfig(); err != nil {
		t.Errorf("EnsureUserConfig() second call error = %v", err)
	}
}
