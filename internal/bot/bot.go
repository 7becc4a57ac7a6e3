package bot

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/icebeam7/IgniteWeatherBot/internal/activity"
	"github.com/icebeam7/IgniteWeatherBot/internal/luis"
	"github.com/icebeam7/IgniteWeatherBot/internal/weather"
)

// Reply texts. The weather, closing and welcome strings are part of the
// bot's observable contract and must not drift.
const (
	helpText           = `I can tell you the current weather. Ask me something like "What's the weather in Prague?"`
	dontUnderstandText = "Sorry, I don't understand you. Which city are you interested in?"
	unavailableText    = "Sorry, I could not reach the weather service. Please try again later."
	closingText        = "Thanks for using our service!"

	weatherReplyFormat = "Weather of %s is: %s (%.2f °C)"
	welcomeFormat      = "Welcome to %s %s!"
	eventFormat        = "%s event detected"
)

// FormatReading renders the canonical weather reply line for a city.
func FormatReading(city string, r weather.Reading) string {
	return fmt.Sprintf(weatherReplyFormat, city, r.Summary, r.TemperatureC)
}

// Recognizer produces intent and entity predictions for an utterance.
type Recognizer interface {
	Recognize(ctx context.Context, text string) (*luis.RecognizerResult, error)
}

// WeatherService looks up the current weather for a city. A nil reading
// with a nil error means the lookup soft-failed.
type WeatherService interface {
	Current(ctx context.Context, city string) (*weather.Reading, error)
}

// WeatherBot is the turn handler. It holds no per-conversation state, so a
// single instance serves concurrent turns.
type WeatherBot struct {
	recognizer  Recognizer
	weather     WeatherService
	botName     string
	typingDelay time.Duration
}

// New builds the turn handler. typingDelay is the pause inserted between
// the typing indicator and the weather answer.
func New(recognizer Recognizer, weather WeatherService, botName string, typingDelay time.Duration) *WeatherBot {
	return &WeatherBot{
		recognizer:  recognizer,
		weather:     weather,
		botName:     botName,
		typingDelay: typingDelay,
	}
}

// OnTurn routes one inbound activity. Every path answers with at least one
// message; downstream failures degrade to a fallback text instead of
// bubbling up to the transport.
func (b *WeatherBot) OnTurn(ctx context.Context, tc *TurnContext) error {
	switch tc.Activity.Type {
	case activity.TypeMessage:
		return b.onMessage(ctx, tc)
	case activity.TypeConversationUpdate:
		return b.onConversationUpdate(ctx, tc)
	default:
		return tc.SendText(ctx, fmt.Sprintf(eventFormat, tc.Activity.Type))
	}
}

func (b *WeatherBot) onMessage(ctx context.Context, tc *TurnContext) error {
	result, err := b.recognizer.Recognize(ctx, tc.Activity.Text)
	if err != nil {
		log.Printf("bot: recognize %q: %v", tc.Activity.Text, err)
		return tc.SendText(ctx, dontUnderstandText)
	}

	intent, _ := result.TopIntent()
	if intent == "" || intent == luis.IntentNone {
		return tc.SendText(ctx, helpText)
	}

	city := result.Location()
	if city == "" {
		return tc.SendText(ctx, dontUnderstandText)
	}

	reading, err := b.weather.Current(ctx, city)
	if err != nil {
		log.Printf("bot: weather for %q: %v", city, err)
	}
	if reading == nil {
		return tc.SendText(ctx, unavailableText)
	}

	return tc.SendActivities(ctx,
		activity.Typing(),
		activity.Delay(b.typingDelay),
		activity.Message(FormatReading(city, *reading)),
		activity.Message(closingText),
	)
}

// onConversationUpdate greets every added member except the bot itself.
func (b *WeatherBot) onConversationUpdate(ctx context.Context, tc *TurnContext) error {
	for _, member := range tc.Activity.MembersAdded {
		if member.ID == tc.Activity.Recipient.ID {
			continue
		}
		if err := tc.SendText(ctx, fmt.Sprintf(welcomeFormat, b.botName, member.Name)); err != nil {
			return err
		}
	}
	return nil
}
