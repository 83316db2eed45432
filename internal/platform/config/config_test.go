package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
  cors_allow_origins:
    - https://www.example.com
hubspot:
  api_key: file-key
  base_url: https://crm.example.com
  timeout_seconds: 10
  max_retries: 2
capture:
  default_note_body: "Webinar signup"
  single_flight: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("unexpected port: got=%q", cfg.Server.Port)
	}
	if len(cfg.Server.CORSAllowOrigins) != 1 || cfg.Server.CORSAllowOrigins[0] != "https://www.example.com" {
		t.Fatalf("unexpected origins: %+v", cfg.Server.CORSAllowOrigins)
	}
	if cfg.HubSpot.APIKey != "file-key" || cfg.HubSpot.TimeoutSeconds != 10 || cfg.HubSpot.MaxRetries != 2 {
		t.Fatalf("unexpected hubspot config: %+v", cfg.HubSpot)
	}
	if cfg.Capture.DefaultNoteBody != "Webinar signup" || !cfg.Capture.SingleFlight {
		t.Fatalf("unexpected capture config: %+v", cfg.Capture)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
hubspot:
  api_key: file-key
capture:
  default_note_body: "File note"
`)

	t.Setenv("PORT", "7070")
	t.Setenv("HUBSPOT_API_KEY", "env-key")
	t.Setenv("CAPTURE_DEFAULT_NOTE_BODY", "Env note")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Fatalf("env PORT should win: got=%q", cfg.Server.Port)
	}
	if cfg.HubSpot.APIKey != "env-key" {
		t.Fatalf("env HUBSPOT_API_KEY should win: got=%q", cfg.HubSpot.APIKey)
	}
	if cfg.Capture.DefaultNoteBody != "Env note" {
		t.Fatalf("env CAPTURE_DEFAULT_NOTE_BODY should win: got=%q", cfg.Capture.DefaultNoteBody)
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if len(cfg.Server.CORSAllowOrigins) != 2 ||
		cfg.Server.CORSAllowOrigins[0] != want[0] ||
		cfg.Server.CORSAllowOrigins[1] != want[1] {
		t.Fatalf("unexpected origins: got=%+v want=%+v", cfg.Server.CORSAllowOrigins, want)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file must not fail: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("unexpected default port: got=%q", cfg.Server.Port)
	}
	if cfg.Capture.DefaultNoteBody != defaultNoteBody {
		t.Fatalf("unexpected default note body: got=%q", cfg.Capture.DefaultNoteBody)
	}
	if cfg.HubSpot.TimeoutSeconds != 30 {
		t.Fatalf("unexpected default timeout: got=%d", cfg.HubSpot.TimeoutSeconds)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a mapping")
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
