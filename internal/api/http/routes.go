package httpapi

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/icebeam7/IgniteWeatherBot/internal/activity"
	"github.com/icebeam7/IgniteWeatherBot/internal/bot"
	"github.com/icebeam7/IgniteWeatherBot/internal/digest"
	"github.com/icebeam7/IgniteWeatherBot/internal/store"
)

var validate = validator.New()

// Handlers bundles the collaborators the HTTP layer dispatches to.
type Handlers struct {
	Bot    *bot.WeatherBot
	Sender bot.Sender
	Refs   *store.MemoryStore
	Digest *digest.Digest
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, h Handlers) {
	api := app.Group("/api")

	api.Post("/messages", func(c *fiber.Ctx) error {
		var a activity.Activity
		if err := c.BodyParser(&a); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid activity payload")
		}

		if err := validate.Struct(a); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		// Remember how to reach this conversation for proactive sends.
		h.Refs.Save(a.Reference())

		tc := bot.NewTurnContext(a, h.Sender)
		if err := h.Bot.OnTurn(c.UserContext(), tc); err != nil {
			log.Printf("httpapi: turn for activity %q: %v", a.ID, err)
			return fiber.NewError(fiber.StatusInternalServerError, "failed to process activity")
		}

		return c.SendStatus(fiber.StatusOK)
	})

	api.Post("/notify", func(c *fiber.Ctx) error {
		if err := h.Digest.Run(c.UserContext()); err != nil {
			log.Printf("httpapi: digest run: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "failed to deliver digest")
		}

		return c.JSON(fiber.Map{"status": "completed"})
	})
}
