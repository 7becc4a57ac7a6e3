package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		"PORT", "BOT_NAME", "BOT_SERVICES_FILE", "LUIS_SERVICE_NAME",
		"OPENWEATHER_API_KEY", "OPENWEATHER_BASE_URL",
		"HTTP_TIMEOUT", "TYPING_DELAY",
		"DIGEST_CITIES", "DIGEST_INTERVAL", "DIGEST_REFERENCE_MAX_AGE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "3978" {
		t.Fatalf("expected default port 3978, got %q", cfg.Port)
	}
	if cfg.BotName != "WeatherBotv4" {
		t.Fatalf("expected default bot name, got %q", cfg.BotName)
	}
	if cfg.ServicesFile != "services.json" {
		t.Fatalf("expected default services file, got %q", cfg.ServicesFile)
	}
	if cfg.HTTPTimeout != 10*time.Second {
		t.Fatalf("expected default http timeout, got %v", cfg.HTTPTimeout)
	}
	if cfg.TypingDelay != 2*time.Second {
		t.Fatalf("expected default typing delay, got %v", cfg.TypingDelay)
	}
	if len(cfg.DigestCities) != 0 {
		t.Fatalf("expected digest disabled by default, got %v", cfg.DigestCities)
	}
	if cfg.DigestInterval != 24*time.Hour {
		t.Fatalf("expected default digest interval, got %v", cfg.DigestInterval)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("TYPING_DELAY", "250ms")
	t.Setenv("DIGEST_CITIES", "Prague, Berlin ,,Oslo")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Fatalf("expected port 8080, got %q", cfg.Port)
	}
	if cfg.TypingDelay != 250*time.Millisecond {
		t.Fatalf("expected 250ms typing delay, got %v", cfg.TypingDelay)
	}

	want := []string{"Prague", "Berlin", "Oslo"}
	if len(cfg.DigestCities) != len(want) {
		t.Fatalf("expected %v, got %v", want, cfg.DigestCities)
	}
	for i := range want {
		if cfg.DigestCities[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, cfg.DigestCities)
		}
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_TIMEOUT", "soon")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}
