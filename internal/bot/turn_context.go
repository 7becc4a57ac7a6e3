package bot

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/icebeam7/IgniteWeatherBot/internal/activity"
)

// Sender delivers one outbound activity to the transport. The connector
// client satisfies it.
type Sender interface {
	Send(ctx context.Context, a activity.Activity) error
}

// TurnContext scopes one inbound activity and the way back to its sender.
// It is built fresh per turn and never outlives it.
type TurnContext struct {
	Activity activity.Activity

	sender Sender
}

// NewTurnContext pairs an inbound activity with the sender its replies go
// through.
func NewTurnContext(a activity.Activity, sender Sender) *TurnContext {
	return &TurnContext{Activity: a, sender: sender}
}

// SendActivities stamps and delivers outbound activities strictly in order,
// each addressed as a reply to the inbound activity. Delivery stops at the
// first failure.
func (tc *TurnContext) SendActivities(ctx context.Context, activities ...activity.Activity) error {
	for _, out := range activities {
		out = activity.ReplyTo(tc.Activity, out)
		if out.ID == "" {
			out.ID = uuid.NewString()
		}
		if out.Timestamp.IsZero() {
			out.Timestamp = time.Now().UTC()
		}

		if err := tc.sender.Send(ctx, out); err != nil {
			return err
		}
	}
	return nil
}

// SendText is shorthand for a single text reply.
func (tc *TurnContext) SendText(ctx context.Context, text string) error {
	return tc.SendActivities(ctx, activity.Message(text))
}
