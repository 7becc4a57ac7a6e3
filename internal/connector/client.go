// Package connector delivers outbound activities to the channel transport
// service each conversation advertises through its serviceUrl.
package connector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/icebeam7/IgniteWeatherBot/internal/activity"
)

var (
	errMissingServiceURL = errors.New("activity has no service url")
	errUnexpectedStatus  = errors.New("unexpected status code")
)

// Client posts activities to the connector REST surface.
type Client struct {
	client *http.Client
}

// NewClient builds a connector client on the shared HTTP client.
func NewClient(client *http.Client) *Client {
	return &Client{client: client}
}

// Send delivers one outbound activity. Delay activities never reach the
// wire: they are a pause hint to the transport, so the client waits out the
// carried duration (or the context) locally and in order.
func (c *Client) Send(ctx context.Context, a activity.Activity) error {
	if a.Type == activity.TypeDelay {
		return c.pause(ctx, a.DelayDuration())
	}

	endpoint, err := sendURL(a)
	if err != nil {
		return err
	}

	body, err := json.Marshal(a)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %d", errUnexpectedStatus, resp.StatusCode)
	}
	return nil
}

func (c *Client) pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// sendURL picks the reply route when the activity answers a specific
// inbound activity, and the plain conversation route for proactive sends.
func sendURL(a activity.Activity) (string, error) {
	if a.ServiceURL == "" {
		return "", errMissingServiceURL
	}

	base := strings.TrimRight(a.ServiceURL, "/")
	conv := url.PathEscape(a.Conversation.ID)

	if a.ReplyToID != "" {
		return fmt.Sprintf("%s/v3/conversations/%s/activities/%s", base, conv, url.PathEscape(a.ReplyToID)), nil
	}
	return fmt.Sprintf("%s/v3/conversations/%s/activities", base, conv), nil
}
