package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestEnsureUserConfigSeedsFromDefault(t *testing.T) {
	dir := t.TempDir()
	defaultPath := filepath.Join(dir, "default.yml")
	writeFile(t, defaultPath, "app:\n  port: 8080\n")

	dataDir := filepath.Join(dir, "data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := EnsureUserConfig(dataDir, defaultPath)
	if err != nil {
		t.Fatalf("EnsureUserConfig: %v", err)
	}
	want := filepath.Join(dataDir, UserConfigName)
	if got != want {
		t.Errorf("path = %q, want %q", got, want)
	}
	b, err := os.ReadFile(got)
	if err != nil {
		t.Fatalf("read seeded config: %v", err)
	}
	if string(b) != "app:\n  port: 8080\n" {
		t.Errorf("seeded content = %q", b)
	}
}

func TestEnsureUserConfigKeepsUserEdits(t *testing.T) {
	dir := t.TempDir()
	defaultPath := filepath.Join(dir, "default.yml")
	writeFile(t, defaultPath, "app:\n  port: 8080\n")

	userPath := filepath.Join(dir, UserConfigName)
	writeFile(t, userPath, "app:\n  port: 9999\n")

	got, err := EnsureUserConfig(dir, defaultPath)
	if err != nil {
		t.Fatalf("EnsureUserConfig: %v", err)
	}
	b, _ := os.ReadFile(got)
	if string(b) != "app:\n  port: 9999\n" {
		t.Errorf("user config was overwritten: %q", b)
	}
}

func TestEnsureUserConfigMissingDefault(t *testing.T) {
	dir := t.TempDir()
	if _, err := EnsureUserConfig(dir, filepath.Join(dir, "nope.yml")); err == nil {
		t.Fatal("want error for a missing default config")
	}
}

func TestLoadAndValidate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	writeFile(t, path, `
app:
  port: 8080
aggregation:
  politeness_delay_ms: 250
  max_sources: 5
email:
  enabled: true
  imap_host: imap.example.com
  imap_port: 993
  username: alerts@example.com
  senders: [" alerts@auction.com ", "alerts@auction.com", ""]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg, res := NormalizeAndValidate(cfg)
	if !res.OK() {
		t.Fatalf("validation errors: %v", res.Errors)
	}
	if len(cfg.Email.Senders) != 1 {
		t.Errorf("senders = %v, want trimmed and deduplicated to one entry", cfg.Email.Senders)
	}
	if cfg.PolitenessDelay().Milliseconds() != 250 {
		t.Errorf("PolitenessDelay = %v, want 250ms", cfg.PolitenessDelay())
	}
}

func TestValidateRejectsBadPort(t *testing.T) {
	var cfg Config
	cfg.App.Port = 0
	if _, res := NormalizeAndValidate(cfg); res.OK() {
		t.Fatal("want a validation error for port 0")
	}
}
