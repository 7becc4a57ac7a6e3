package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/icebeam7/IgniteWeatherBot/internal/api/http"
	"github.com/icebeam7/IgniteWeatherBot/internal/bot"
	"github.com/icebeam7/IgniteWeatherBot/internal/config"
	"github.com/icebeam7/IgniteWeatherBot/internal/connector"
	"github.com/icebeam7/IgniteWeatherBot/internal/digest"
	"github.com/icebeam7/IgniteWeatherBot/internal/luis"
	"github.com/icebeam7/IgniteWeatherBot/internal/registry"
	"github.com/icebeam7/IgniteWeatherBot/internal/scheduler"
	"github.com/icebeam7/IgniteWeatherBot/internal/store"
	"github.com/icebeam7/IgniteWeatherBot/internal/weather"
)

func main() {
	// Load configuration (.env handled inside Load).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Service registry built once from the descriptor file.
	entries, err := config.LoadServices(cfg.ServicesFile)
	if err != nil {
		log.Fatalf("failed to load services: %v", err)
	}

	reg, err := registry.New(httpClient, entries)
	if err != nil {
		log.Fatalf("failed to build service registry: %v", err)
	}

	recognizer := resolveRecognizer(reg, cfg.LuisServiceName)

	// Collaborators for the turn handler.
	weatherClient := weather.NewClient(httpClient, cfg.OpenWeatherAPIKey, cfg.OpenWeatherBaseURL)
	sender := connector.NewClient(httpClient)
	weatherBot := bot.New(recognizer, weatherClient, cfg.BotName, cfg.TypingDelay)

	// Conversation references with configured retention.
	refs := store.NewMemoryStore(cfg.ReferenceMaxAge)

	// Proactive digest and its scheduler.
	dig := digest.New(weatherClient, sender, refs, cfg.DigestCities)

	sched := scheduler.New(dig, cfg.DigestInterval)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               cfg.BotName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": cfg.BotName,
		})
	})

	// Bot routes.
	httpapi.RegisterRoutes(app, httpapi.Handlers{
		Bot:    weatherBot,
		Sender: sender,
		Refs:   refs,
		Digest: dig,
	})

	// Start server with graceful shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}

// resolveRecognizer picks the LUIS service the bot binds to: the configured
// name when set, otherwise the registry's sole entry.
func resolveRecognizer(reg *registry.Registry, name string) *luis.Recognizer {
	if name != "" {
		rec, ok := reg.Recognizer(name)
		if !ok {
			log.Fatalf("luis service %q not found; available: %v", name, reg.Names())
		}
		return rec
	}

	rec, ok := reg.Single()
	if !ok {
		log.Fatalf("LUIS_SERVICE_NAME must be set when multiple luis services are configured; available: %v", reg.Names())
	}
	return rec
}
