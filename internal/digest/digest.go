// Package digest composes a periodic weather summary and delivers it
// proactively to every stored conversation.
package digest

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/icebeam7/IgniteWeatherBot/internal/activity"
	"github.com/icebeam7/IgniteWeatherBot/internal/bot"
	"github.com/icebeam7/IgniteWeatherBot/internal/weather"
)

const digestHeader = "Your weather digest:"

// Sender delivers one outbound activity to the transport.
type Sender interface {
	Send(ctx context.Context, a activity.Activity) error
}

// WeatherService looks up the current weather for a city.
type WeatherService interface {
	Current(ctx context.Context, city string) (*weather.Reading, error)
}

// ReferenceStore lists the conversations a digest can be delivered to.
type ReferenceStore interface {
	List() []activity.ConversationReference
	Prune() int
}

// Digest runs the proactive weather digest: one fetch per configured city,
// one message per stored conversation.
type Digest struct {
	weather WeatherService
	sender  Sender
	refs    ReferenceStore
	cities  []string
}

// New builds a Digest over the given cities. Duplicate and empty city names
// are dropped so every city is fetched at most once per run.
func New(weather WeatherService, sender Sender, refs ReferenceStore, cities []string) *Digest {
	seen := make(map[string]struct{}, len(cities))
	unique := make([]string, 0, len(cities))
	for _, city := range cities {
		city = strings.TrimSpace(city)
		if city == "" {
			continue
		}
		if _, ok := seen[city]; ok {
			continue
		}
		seen[city] = struct{}{}
		unique = append(unique, city)
	}

	return &Digest{
		weather: weather,
		sender:  sender,
		refs:    refs,
		cities:  unique,
	}
}

// Cities returns the cities the digest covers, in configuration order.
func (d *Digest) Cities() []string {
	return append([]string(nil), d.cities...)
}

// Run executes one digest pass. Cities that fail to produce a reading are
// skipped; a pass with no cities, no readings or no stored conversations
// sends nothing. Send failures are counted, not fatal per conversation.
func (d *Digest) Run(ctx context.Context) error {
	if len(d.cities) == 0 {
		return nil
	}

	if removed := d.refs.Prune(); removed > 0 {
		log.Printf("digest: pruned %d stale conversation references", removed)
	}

	targets := d.refs.List()
	if len(targets) == 0 {
		log.Printf("digest: no conversations to notify")
		return nil
	}

	lines := d.collect(ctx)
	if len(lines) == 0 {
		log.Printf("digest: no city produced a reading, skipping send")
		return nil
	}

	text := digestHeader + "\n" + strings.Join(lines, "\n")

	failed := 0
	for _, ref := range targets {
		out := ref.Apply(activity.Message(text))
		out.ID = uuid.NewString()
		out.Timestamp = time.Now().UTC()

		if err := d.sender.Send(ctx, out); err != nil {
			log.Printf("digest: send to conversation %s: %v", ref.Conversation.ID, err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("digest: %d of %d sends failed", failed, len(targets))
	}
	return nil
}

// collect fetches every city concurrently. Results land in per-city slots,
// so no lock is needed and configuration order survives.
func (d *Digest) collect(ctx context.Context) []string {
	var wg sync.WaitGroup
	slots := make([]string, len(d.cities))

	for i, city := range d.cities {
		i, city := i, city
		wg.Add(1)
		go func() {
			defer wg.Done()

			reading, err := d.weather.Current(ctx, city)
			if err != nil {
				log.Printf("digest: weather for %q: %v", city, err)
				return
			}
			if reading == nil {
				log.Printf("digest: no reading for %q, skipping", city)
				return
			}
			slots[i] = bot.FormatReading(city, *reading)
		}()
	}

	wg.Wait()

	lines := make([]string, 0, len(slots))
	for _, line := range slots {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
