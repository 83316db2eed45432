package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/signalpost/leadcapture-backend/internal/platform/envutil"
	"github.com/signalpost/leadcapture-backend/internal/platform/hubspot"
)

// Config is the full deployment configuration. Values come from an optional
// YAML file, with environment variables winning over file values.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	HubSpot HubSpotConfig `yaml:"hubspot"`
	Capture CaptureConfig `yaml:"capture"`
}

type ServerConfig struct {
	Port             string   `yaml:"port"`
	CORSAllowOrigins []string `yaml:"cors_allow_origins"`
}

type HubSpotConfig struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxRetries     int    `yaml:"max_retries"`
}

type CaptureConfig struct {
	// DefaultNoteBody is attached verbatim when a capture request carries
	// no note text.
	DefaultNoteBody string `yaml:"default_note_body"`
	// SingleFlight coalesces concurrent resolves for the same email.
	SingleFlight bool `yaml:"single_flight"`
}

const defaultNoteBody = "Lead captured via signup form"

// Load reads path (missing file is fine; env-only deployments are common)
// and applies env overrides on top.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(raw, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Port = envutil.String("PORT", c.Server.Port)
	if v := envutil.String("CORS_ALLOW_ORIGINS", ""); v != "" {
		c.Server.CORSAllowOrigins = splitCSV(v)
	}

	c.HubSpot.APIKey = envutil.String("HUBSPOT_API_KEY", c.HubSpot.APIKey)
	c.HubSpot.BaseURL = envutil.String("HUBSPOT_BASE_URL", c.HubSpot.BaseURL)
	c.HubSpot.TimeoutSeconds = envutil.Int("HUBSPOT_TIMEOUT_SECONDS", c.HubSpot.TimeoutSeconds)
	c.HubSpot.MaxRetries = envutil.Int("HUBSPOT_MAX_RETRIES", c.HubSpot.MaxRetries)

	c.Capture.DefaultNoteBody = envutil.String("CAPTURE_DEFAULT_NOTE_BODY", c.Capture.DefaultNoteBody)
	c.Capture.SingleFlight = envutil.Bool("CAPTURE_SINGLE_FLIGHT", c.Capture.SingleFlight)
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Capture.DefaultNoteBody == "" {
		c.Capture.DefaultNoteBody = defaultNoteBody
	}
	if c.HubSpot.TimeoutSeconds <= 0 {
		c.HubSpot.TimeoutSeconds = 30
	}
	if c.HubSpot.MaxRetries < 0 {
		c.HubSpot.MaxRetries = 0
	}
}

// HubSpotClientConfig converts the loaded settings into the client's config.
func (c *Config) HubSpotClientConfig() hubspot.Config {
	return hubspot.Config{
		APIKey:     c.HubSpot.APIKey,
		BaseURL:    c.HubSpot.BaseURL,
		Timeout:    time.Duration(c.HubSpot.TimeoutSeconds) * time.Second,
		MaxRetries: c.HubSpot.MaxRetries,
	}
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
