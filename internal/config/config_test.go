package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Survey.Domain != "pt.surveymonkey.com" {
		t.Errorf("Survey.Domain = %q", cfg.Survey.Domain)
	}
	if !cfg.Survey.IncludeTimestamp {
		t.Error("Survey.IncludeTimestamp should default to true")
	}
	if cfg.QR.BoxSize != 10 {
		t.Errorf("QR.BoxSize = %d, want 10", cfg.QR.BoxSize)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SURVEY_DOMAIN", "www.surveymonkey.com")
	t.Setenv("SURVEY_CODE", "9B9GS555")
	t.Setenv("INCLUDE_TIMESTAMP", "false")
	t.Setenv("QR_BOX_SIZE", "12")
	t.Setenv("REDIS_CACHE_TTL", "5m")

	cfg := Load()

	if cfg.Server.Port != "9090" {
		t.Errorf("Server.Port = %q, want 9090", cfg.Server.Port)
	}
	if cfg.Survey.Domain != "www.surveymonkey.com" {
		t.Errorf("Survey.Domain = %q", cfg.Survey.Domain)
	}
	if cfg.Survey.SurveyCode != "9B9GS555" {
		t.Errorf("Survey.SurveyCode = %q", cfg.Survey.SurveyCode)
	}
	if cfg.Survey.IncludeTimestamp {
		t.Error("INCLUDE_TIMESTAMP=false not applied")
	}
	if cfg.QR.BoxSize != 12 {
		t.Errorf("QR.BoxSize = %d, want 12", cfg.QR.BoxSize)
	}
	if cfg.Redis.CacheTTL != 5*time.Minute {
		t.Errorf("Redis.CacheTTL = %v, want 5m", cfg.Redis.CacheTTL)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("QR_BOX_SIZE", "not-a-number")
	t.Setenv("REDIS_CACHE_TTL", "soon")

	cfg := Load()

	if cfg.QR.BoxSize != 10 {
		t.Errorf("QR.BoxSize = %d, want default 10", cfg.QR.BoxSize)
	}
	if cfg.Redis.CacheTTL != 30*time.Minute {
		t.Errorf("Redis.CacheTTL = %v, want default 30m", cfg.Redis.CacheTTL)
	}
}
