// Package activity defines the wire model for conversational activities
// exchanged with the bot channel transport.
package activity

import (
	"time"
)

// Type identifies the kind of an activity.
type Type string

const (
	TypeMessage            Type = "message"
	TypeConversationUpdate Type = "conversationUpdate"
	TypeTyping             Type = "typing"
	TypeEndOfConversation  Type = "endOfConversation"
	TypeEvent              Type = "event"

	// TypeDelay is a transport hint: the connector pauses for the duration
	// carried in Value instead of delivering anything to the channel.
	TypeDelay Type = "delay"
)

// ChannelAccount identifies a user or bot on a channel.
type ChannelAccount struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Role string `json:"role,omitempty"`
}

// ConversationAccount identifies the conversation an activity belongs to.
type ConversationAccount struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	IsGroup bool   `json:"isGroup,omitempty"`
}

// Activity is one unit of conversational exchange flowing between the user
// and the bot through the channel transport.
type Activity struct {
	Type         Type                `json:"type" validate:"required"`
	ID           string              `json:"id,omitempty"`
	Timestamp    time.Time           `json:"timestamp"`
	ChannelID    string              `json:"channelId,omitempty"`
	ServiceURL   string              `json:"serviceUrl,omitempty"`
	From         ChannelAccount      `json:"from"`
	Recipient    ChannelAccount      `json:"recipient"`
	Conversation ConversationAccount `json:"conversation"`
	ReplyToID    string              `json:"replyToId,omitempty"`
	Locale       string              `json:"locale,omitempty"`
	Text         string              `json:"text,omitempty"`

	// Value carries type-specific payload; for delay activities it is the
	// pause in milliseconds.
	Value any `json:"value,omitempty"`

	MembersAdded   []ChannelAccount `json:"membersAdded,omitempty"`
	MembersRemoved []ChannelAccount `json:"membersRemoved,omitempty"`
}

// Message returns a message activity carrying text.
func Message(text string) Activity {
	return Activity{Type: TypeMessage, Text: text}
}

// Typing returns a typing-indicator activity.
func Typing() Activity {
	return Activity{Type: TypeTyping}
}

// Delay returns a delay activity instructing the connector to pause for d.
func Delay(d time.Duration) Activity {
	return Activity{Type: TypeDelay, Value: d.Milliseconds()}
}

// DelayDuration decodes the pause carried by a delay activity. The value is
// an int64 when built in-process and a float64 after a JSON round trip.
func (a Activity) DelayDuration() time.Duration {
	switch v := a.Value.(type) {
	case int64:
		return time.Duration(v) * time.Millisecond
	case int:
		return time.Duration(v) * time.Millisecond
	case float64:
		return time.Duration(v * float64(time.Millisecond))
	default:
		return 0
	}
}

// ReplyTo returns out addressed as a reply to in: sender and recipient
// swapped, conversation and transport routing copied over.
func ReplyTo(in, out Activity) Activity {
	out.From = in.Recipient
	out.Recipient = in.From
	out.Conversation = in.Conversation
	out.ChannelID = in.ChannelID
	out.ServiceURL = in.ServiceURL
	out.Locale = in.Locale
	out.ReplyToID = in.ID
	return out
}

// ConversationReference is the minimal addressing state needed to resume a
// conversation later (proactive sends).
type ConversationReference struct {
	ActivityID   string              `json:"activityId,omitempty"`
	User         ChannelAccount      `json:"user"`
	Bot          ChannelAccount      `json:"bot"`
	Conversation ConversationAccount `json:"conversation"`
	ChannelID    string              `json:"channelId,omitempty"`
	ServiceURL   string              `json:"serviceUrl,omitempty"`
}

// Reference extracts the conversation reference from an inbound activity.
func (a Activity) Reference() ConversationReference {
	return ConversationReference{
		ActivityID:   a.ID,
		User:         a.From,
		Bot:          a.Recipient,
		Conversation: a.Conversation,
		ChannelID:    a.ChannelID,
		ServiceURL:   a.ServiceURL,
	}
}

// Apply returns out addressed by the reference, for sends that do not reply
// to a specific inbound activity.
func (r ConversationReference) Apply(out Activity) Activity {
	out.From = r.Bot
	out.Recipient = r.User
	out.Conversation = r.Conversation
	out.ChannelID = r.ChannelID
	out.ServiceURL = r.ServiceURL
	return out
}
