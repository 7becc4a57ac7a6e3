package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds everything the bot process needs at startup. Secrets and
// endpoints are injected here and passed to the clients at construction;
// nothing is read from the environment after Load returns.
type AppConfig struct {
	Port    string
	BotName string

	// ServicesFile points at the JSON list of external service descriptors
	// (recognizer apps and friends). LuisServiceName selects the registry
	// entry the turn handler binds to; when empty and exactly one
	// recognizer is configured, that one is used.
	ServicesFile    string
	LuisServiceName string

	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string

	// HTTPTimeout bounds the shared outbound HTTP client used for the
	// recognizer, weather and connector calls.
	HTTPTimeout time.Duration

	// TypingDelay is the artificial pause sent between the typing indicator
	// and the weather reply.
	TypingDelay time.Duration

	// Proactive digest settings. An empty city list disables the digest.
	DigestCities    []string
	DigestInterval  time.Duration
	ReferenceMaxAge time.Duration
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "3978")
	cfg.BotName = getenvDefault("BOT_NAME", "WeatherBotv4")

	cfg.ServicesFile = getenvDefault("BOT_SERVICES_FILE", "services.json")
	cfg.LuisServiceName = os.Getenv("LUIS_SERVICE_NAME")

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.OpenWeatherBaseURL = getenvDefault("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5/weather")

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	delayStr := getenvDefault("TYPING_DELAY", "2s")
	delay, err := time.ParseDuration(delayStr)
	if err != nil {
		return nil, fmt.Errorf("invalid TYPING_DELAY: %w", err)
	}
	cfg.TypingDelay = delay

	cfg.DigestCities = splitList(os.Getenv("DIGEST_CITIES"))

	intervalStr := getenvDefault("DIGEST_INTERVAL", "24h")
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DIGEST_INTERVAL: %w", err)
	}
	cfg.DigestInterval = interval

	maxAgeStr := getenvDefault("DIGEST_REFERENCE_MAX_AGE", "720h")
	maxAge, err := time.ParseDuration(maxAgeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DIGEST_REFERENCE_MAX_AGE: %w", err)
	}
	cfg.ReferenceMaxAge = maxAge

	return cfg, nil
}

// splitList parses a comma-separated env value, dropping blank items.
func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
