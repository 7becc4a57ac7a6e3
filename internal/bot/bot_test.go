package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/icebeam7/IgniteWeatherBot/internal/activity"
	"github.com/icebeam7/IgniteWeatherBot/internal/luis"
	"github.com/icebeam7/IgniteWeatherBot/internal/weather"
)

type fakeRecognizer struct {
	result   *luis.RecognizerResult
	err      error
	calls    int
	lastText string
}

func (f *fakeRecognizer) Recognize(ctx context.Context, text string) (*luis.RecognizerResult, error) {
	f.calls++
	f.lastText = text
	return f.result, f.err
}

type fakeWeather struct {
	reading  *weather.Reading
	err      error
	calls    int
	lastCity string
}

func (f *fakeWeather) Current(ctx context.Context, city string) (*weather.Reading, error) {
	f.calls++
	f.lastCity = city
	return f.reading, f.err
}

type captureSender struct {
	sent []activity.Activity
	err  error
}

func (s *captureSender) Send(ctx context.Context, a activity.Activity) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, a)
	return nil
}

func weatherIntent(city string) *luis.RecognizerResult {
	entities := map[string][]string{}
	if city != "" {
		entities[luis.EntityCity] = []string{city}
	}
	return &luis.RecognizerResult{
		Intents:  []luis.IntentScore{{Intent: "Weather.GetForecast", Score: 0.95}},
		Entities: entities,
	}
}

func inbound(text string) activity.Activity {
	return activity.Activity{
		Type:         activity.TypeMessage,
		ID:           "act-1",
		ChannelID:    "emulator",
		ServiceURL:   "https://smba.example.com",
		From:         activity.ChannelAccount{ID: "user-1", Name: "Alice"},
		Recipient:    activity.ChannelAccount{ID: "bot-1", Name: "WeatherBotv4"},
		Conversation: activity.ConversationAccount{ID: "conv-1"},
		Text:         text,
	}
}

func runTurn(t *testing.T, b *WeatherBot, in activity.Activity) *captureSender {
	t.Helper()

	sender := &captureSender{}
	if err := b.OnTurn(context.Background(), NewTurnContext(in, sender)); err != nil {
		t.Fatalf("OnTurn failed: %v", err)
	}
	return sender
}

func TestWeatherTurnReplySequence(t *testing.T) {
	rec := &fakeRecognizer{result: weatherIntent("Prague")}
	wx := &fakeWeather{reading: &weather.Reading{Summary: "Clear", TemperatureC: 20}}
	b := New(rec, wx, "WeatherBotv4", 2*time.Second)

	sender := runTurn(t, b, inbound("What's the weather in Prague?"))

	if len(sender.sent) != 4 {
		t.Fatalf("expected 4 activities, got %d", len(sender.sent))
	}

	if sender.sent[0].Type != activity.TypeTyping {
		t.Fatalf("expected typing first, got %q", sender.sent[0].Type)
	}
	if sender.sent[1].Type != activity.TypeDelay {
		t.Fatalf("expected delay second, got %q", sender.sent[1].Type)
	}
	if got := sender.sent[1].DelayDuration(); got != 2*time.Second {
		t.Fatalf("expected 2s delay, got %v", got)
	}
	if sender.sent[2].Text != "Weather of Prague is: Clear (20.00 °C)" {
		t.Fatalf("unexpected weather reply: %q", sender.sent[2].Text)
	}
	if sender.sent[3].Text != "Thanks for using our service!" {
		t.Fatalf("unexpected closing reply: %q", sender.sent[3].Text)
	}

	if rec.lastText != "What's the weather in Prague?" {
		t.Fatalf("recognizer got %q", rec.lastText)
	}
	if wx.calls != 1 || wx.lastCity != "Prague" {
		t.Fatalf("expected one lookup for Prague, got %d/%q", wx.calls, wx.lastCity)
	}
}

func TestWeatherTurnAddressing(t *testing.T) {
	rec := &fakeRecognizer{result: weatherIntent("Prague")}
	wx := &fakeWeather{reading: &weather.Reading{Summary: "Clear", TemperatureC: 20}}
	b := New(rec, wx, "WeatherBotv4", 0)

	sender := runTurn(t, b, inbound("weather in Prague"))

	if len(sender.sent) != 4 {
		t.Fatalf("expected 4 activities, got %d", len(sender.sent))
	}

	for i, out := range sender.sent {
		if out.From.ID != "bot-1" || out.Recipient.ID != "user-1" {
			t.Fatalf("activity %d badly addressed: from=%q recipient=%q", i, out.From.ID, out.Recipient.ID)
		}
		if out.Conversation.ID != "conv-1" || out.ReplyToID != "act-1" {
			t.Fatalf("activity %d lost routing: %+v", i, out)
		}
		if out.ID == "" {
			t.Fatalf("activity %d has no id", i)
		}
		if out.Timestamp.IsZero() {
			t.Fatalf("activity %d has no timestamp", i)
		}
	}

	if sender.sent[0].ID == sender.sent[2].ID {
		t.Fatalf("expected distinct outbound ids")
	}
}

func TestNoneIntentSendsHelp(t *testing.T) {
	rec := &fakeRecognizer{result: &luis.RecognizerResult{
		Intents: []luis.IntentScore{{Intent: luis.IntentNone, Score: 0.8}},
	}}
	wx := &fakeWeather{}
	b := New(rec, wx, "WeatherBotv4", 0)

	sender := runTurn(t, b, inbound("tell me a joke"))

	if len(sender.sent) != 1 || sender.sent[0].Text != helpText {
		t.Fatalf("expected help reply, got %+v", sender.sent)
	}
	if wx.calls != 0 {
		t.Fatalf("expected no weather lookup, got %d", wx.calls)
	}
}

func TestEmptyPredictionSendsHelp(t *testing.T) {
	rec := &fakeRecognizer{result: &luis.RecognizerResult{}}
	b := New(rec, &fakeWeather{}, "WeatherBotv4", 0)

	sender := runTurn(t, b, inbound("???"))

	if len(sender.sent) != 1 || sender.sent[0].Text != helpText {
		t.Fatalf("expected help reply, got %+v", sender.sent)
	}
}

func TestRecognizerFailureFallsBack(t *testing.T) {
	rec := &fakeRecognizer{err: errors.New("boom")}
	wx := &fakeWeather{}
	b := New(rec, wx, "WeatherBotv4", 0)

	sender := runTurn(t, b, inbound("weather in Prague"))

	if len(sender.sent) != 1 || sender.sent[0].Text != dontUnderstandText {
		t.Fatalf("expected fallback reply, got %+v", sender.sent)
	}
	if wx.calls != 0 {
		t.Fatalf("expected no weather lookup after recognizer failure, got %d", wx.calls)
	}
}

func TestMissingLocationAsksAgain(t *testing.T) {
	rec := &fakeRecognizer{result: weatherIntent("")}
	wx := &fakeWeather{}
	b := New(rec, wx, "WeatherBotv4", 0)

	sender := runTurn(t, b, inbound("what's the weather like"))

	if len(sender.sent) != 1 || sender.sent[0].Text != dontUnderstandText {
		t.Fatalf("expected fallback reply, got %+v", sender.sent)
	}
	if wx.calls != 0 {
		t.Fatalf("expected no weather lookup without a location, got %d", wx.calls)
	}
}

func TestPatternAnyLocationFallback(t *testing.T) {
	rec := &fakeRecognizer{result: &luis.RecognizerResult{
		Intents:  []luis.IntentScore{{Intent: "Weather.GetForecast", Score: 0.9}},
		Entities: map[string][]string{luis.EntityCityPatternAny: {"Berlin"}},
	}}
	wx := &fakeWeather{reading: &weather.Reading{Summary: "Clouds", TemperatureC: 11.5}}
	b := New(rec, wx, "WeatherBotv4", 0)

	sender := runTurn(t, b, inbound("how is it in Berlin"))

	if wx.lastCity != "Berlin" {
		t.Fatalf("expected pattern-any city Berlin, got %q", wx.lastCity)
	}
	if len(sender.sent) != 4 {
		t.Fatalf("expected 4 activities, got %d", len(sender.sent))
	}
	if sender.sent[2].Text != "Weather of Berlin is: Clouds (11.50 °C)" {
		t.Fatalf("unexpected weather reply: %q", sender.sent[2].Text)
	}
}

func TestWeatherSoftFailureDegrades(t *testing.T) {
	rec := &fakeRecognizer{result: weatherIntent("Atlantis")}
	wx := &fakeWeather{} // nil reading, nil error
	b := New(rec, wx, "WeatherBotv4", 0)

	sender := runTurn(t, b, inbound("weather in Atlantis"))

	if len(sender.sent) != 1 || sender.sent[0].Text != unavailableText {
		t.Fatalf("expected unavailable reply, got %+v", sender.sent)
	}
}

func TestWeatherErrorDegrades(t *testing.T) {
	rec := &fakeRecognizer{result: weatherIntent("Prague")}
	wx := &fakeWeather{err: errors.New("connection refused")}
	b := New(rec, wx, "WeatherBotv4", 0)

	sender := runTurn(t, b, inbound("weather in Prague"))

	if len(sender.sent) != 1 || sender.sent[0].Text != unavailableText {
		t.Fatalf("expected unavailable reply, got %+v", sender.sent)
	}
}

func TestConversationUpdateWelcomesNewMembers(t *testing.T) {
	b := New(&fakeRecognizer{}, &fakeWeather{}, "WeatherBotv4", 0)

	in := inbound("")
	in.Type = activity.TypeConversationUpdate
	in.Text = ""
	in.MembersAdded = []activity.ChannelAccount{
		{ID: "bot-1", Name: "WeatherBotv4"},
		{ID: "user-2", Name: "Alice"},
	}

	sender := runTurn(t, b, in)

	if len(sender.sent) != 1 {
		t.Fatalf("expected one welcome, got %d", len(sender.sent))
	}
	if sender.sent[0].Text != "Welcome to WeatherBotv4 Alice!" {
		t.Fatalf("unexpected welcome: %q", sender.sent[0].Text)
	}
}

func TestConversationUpdateWithoutMembers(t *testing.T) {
	b := New(&fakeRecognizer{}, &fakeWeather{}, "WeatherBotv4", 0)

	in := inbound("")
	in.Type = activity.TypeConversationUpdate
	in.Text = ""

	sender := runTurn(t, b, in)

	if len(sender.sent) != 0 {
		t.Fatalf("expected no replies, got %+v", sender.sent)
	}
}

func TestUnhandledActivityTypeAcknowledged(t *testing.T) {
	b := New(&fakeRecognizer{}, &fakeWeather{}, "WeatherBotv4", 0)

	in := inbound("")
	in.Type = "contactRelationUpdate"
	in.Text = ""

	sender := runTurn(t, b, in)

	if len(sender.sent) != 1 || sender.sent[0].Text != "contactRelationUpdate event detected" {
		t.Fatalf("unexpected acknowledgement: %+v", sender.sent)
	}
}

func TestSendFailureSurfaces(t *testing.T) {
	rec := &fakeRecognizer{result: weatherIntent("Prague")}
	wx := &fakeWeather{reading: &weather.Reading{Summary: "Clear", TemperatureC: 20}}
	b := New(rec, wx, "WeatherBotv4", 0)

	sender := &captureSender{err: errors.New("connector down")}
	if err := b.OnTurn(context.Background(), NewTurnContext(inbound("weather in Prague"), sender)); err == nil {
		t.Fatalf("expected send failure to surface")
	}
}

func TestFormatReading(t *testing.T) {
	got := FormatReading("Prague", weather.Reading{Summary: "Clear", TemperatureC: 20})
	if got != "Weather of Prague is: Clear (20.00 °C)" {
		t.Fatalf("unexpected format: %q", got)
	}
}
