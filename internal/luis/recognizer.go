package luis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

var (
	errUnexpectedStatus = errors.New("unexpected status code")
	errNoHTTPClient     = errors.New("http client not configured")
)

// Config carries the construction parameters for one recognizer application,
// as read from the service registry descriptor.
type Config struct {
	Name            string
	AppID           string
	SubscriptionKey string
	// Region builds the default cognitive-services host; Endpoint overrides
	// the full base URL when set.
	Region   string
	Endpoint string
}

// Recognizer calls one hosted NLU application over HTTP. A circuit breaker
// guards the call so that a dead recognizer fails fast instead of stalling
// every turn; the turn handler degrades those failures to a fallback reply.
type Recognizer struct {
	name     string
	appID    string
	key      string
	endpoint string
	client   *http.Client
	circuit  *gobreaker.CircuitBreaker
}

// NewRecognizer builds a recognizer client for one application.
func NewRecognizer(client *http.Client, cfg Config) *Recognizer {
	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.api.cognitive.microsoft.com", cfg.Region)
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "luis-" + cfg.Name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Recognizer{
		name:     cfg.Name,
		appID:    cfg.AppID,
		key:      cfg.SubscriptionKey,
		endpoint: endpoint,
		client:   client,
		circuit:  cb,
	}
}

// Name returns the registry name this recognizer was configured under.
func (r *Recognizer) Name() string {
	return r.name
}

// Recognize sends the utterance to the recognizer application and maps the
// prediction into a RecognizerResult. One round trip per call, no retries; a
// non-success status or an open circuit is a hard error the caller must
// degrade gracefully.
func (r *Recognizer) Recognize(ctx context.Context, text string) (*RecognizerResult, error) {
	if r.client == nil {
		return nil, errNoHTTPClient
	}

	values := url.Values{}
	values.Set("subscription-key", r.key)
	values.Set("verbose", "true")
	values.Set("q", text)

	u := fmt.Sprintf("%s/luis/v2.0/apps/%s?%s", r.endpoint, r.appID, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	result, err := r.circuit.Execute(func() (interface{}, error) {
		resp, execErr := r.client.Do(req)
		if execErr != nil {
			return nil, execErr
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			return nil, fmt.Errorf("%w: %d", errUnexpectedStatus, resp.StatusCode)
		}

		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	defer resp.Body.Close()

	var payload struct {
		Query            string `json:"query"`
		TopScoringIntent struct {
			Intent string  `json:"intent"`
			Score  float64 `json:"score"`
		} `json:"topScoringIntent"`
		Intents []struct {
			Intent string  `json:"intent"`
			Score  float64 `json:"score"`
		} `json:"intents"`
		Entities []struct {
			Entity string  `json:"entity"`
			Type   string  `json:"type"`
			Score  float64 `json:"score"`
		} `json:"entities"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	rr := &RecognizerResult{
		Text:     payload.Query,
		Entities: make(map[string][]string),
	}

	for _, in := range payload.Intents {
		rr.Intents = append(rr.Intents, IntentScore{Intent: in.Intent, Score: in.Score})
	}
	if len(rr.Intents) == 0 && payload.TopScoringIntent.Intent != "" {
		rr.Intents = append(rr.Intents, IntentScore{
			Intent: payload.TopScoringIntent.Intent,
			Score:  payload.TopScoringIntent.Score,
		})
	}
	// The service answers ranked already; keep the order stable regardless.
	sort.SliceStable(rr.Intents, func(i, j int) bool {
		return rr.Intents[i].Score > rr.Intents[j].Score
	})

	for _, e := range payload.Entities {
		rr.Entities[e.Type] = append(rr.Entities[e.Type], e.Entity)
	}

	return rr, nil
}
