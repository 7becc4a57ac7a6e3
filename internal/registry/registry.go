// Package registry materializes the configured external services into
// clients, once, at startup.
package registry

import (
	"fmt"
	"log"
	"net/http"
	"sort"

	"github.com/icebeam7/IgniteWeatherBot/internal/config"
	"github.com/icebeam7/IgniteWeatherBot/internal/luis"
)

// Registry maps configured service names to recognizer clients. It is built
// in one pass and read-only afterwards, so concurrent turns can look clients
// up without locking. Callers resolve the names they need once at startup,
// never per turn.
type Registry struct {
	recognizers map[string]*luis.Recognizer
}

// New builds the registry from service descriptor entries. Entries of
// unknown kinds are skipped with a log line; a recognizer entry that cannot
// be materialized is a construction error and the process must not serve.
func New(client *http.Client, entries []config.ServiceEntry) (*Registry, error) {
	r := &Registry{recognizers: make(map[string]*luis.Recognizer)}

	for _, entry := range entries {
		switch entry.Kind {
		case config.ServiceKindLuis:
			if entry.AppID == "" || entry.SubscriptionKey == "" {
				return nil, fmt.Errorf("recognizer %q is missing required fields", entry.Name)
			}
			if _, exists := r.recognizers[entry.Name]; exists {
				return nil, fmt.Errorf("duplicate recognizer name %q", entry.Name)
			}
			r.recognizers[entry.Name] = luis.NewRecognizer(client, luis.Config{
				Name:            entry.Name,
				AppID:           entry.AppID,
				SubscriptionKey: entry.SubscriptionKey,
				Region:          entry.Region,
				Endpoint:        entry.Endpoint,
			})
		default:
			log.Printf("registry: ignoring service %q of kind %q", entry.Name, entry.Kind)
		}
	}

	return r, nil
}

// Recognizer returns the recognizer registered under name.
func (r *Registry) Recognizer(name string) (*luis.Recognizer, bool) {
	rec, ok := r.recognizers[name]
	return rec, ok
}

// Single returns the only registered recognizer. It is the fallback binding
// for configurations that omit an explicit recognizer name.
func (r *Registry) Single() (*luis.Recognizer, bool) {
	if len(r.recognizers) != 1 {
		return nil, false
	}
	for _, rec := range r.recognizers {
		return rec, true
	}
	return nil, false
}

// Names lists the registered recognizer names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.recognizers))
	for name := range r.recognizers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
