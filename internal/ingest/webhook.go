package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/AngelCh415/spark-tracker/internal/models"
)

const mediaPlaceholder = "[Media/Attachment]"

var ErrInvalidPayload = errors.New("invalid webhook payload")

// Inbound is one decoded DM. OwnerID is set only by producer payloads that carry it.
type Inbound struct {
	OwnerID string
	Message models.InboundMessage
}

// flexTime acepta epoch en ms (número o string) o RFC3339.
type flexTime struct {
	time.Time
	set bool
}

func (f *flexTime) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	s := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	}
	if s == "" {
		return nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		f.Time, f.set = time.UnixMilli(ms).UTC(), true
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("timestamp %q: %w", s, err)
	}
	f.Time, f.set = t.UTC(), true
	return nil
}

func (f flexTime) or(def time.Time) time.Time {
	if f.set {
		return f.Time
	}
	return def
}

type metaEnvelope struct {
	Object string      `json:"object"`
	Entry  []metaEntry `json:"entry"`
}

type metaEntry struct {
	ID        string           `json:"id"`
	Messaging []messagingEvent `json:"messaging"`
	Changes   []igChange       `json:"changes"`
}

type messagingEvent struct {
	Sender struct {
		ID string `json:"id"`
	} `json:"sender"`
	Timestamp flexTime `json:"timestamp"`
	Message   *struct {
		Mid    string `json:"mid"`
		Text   string `json:"text"`
		IsEcho bool   `json:"is_echo"`
	} `json:"message"`
}

type igChange struct {
	Field string `json:"field"`
	Value struct {
		From *struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"from"`
		Message *struct {
			Mid       string   `json:"mid"`
			Text      string   `json:"text"`
			Timestamp flexTime `json:"timestamp"`
		} `json:"message"`
	} `json:"value"`
}

type producerPayload struct {
	Platform       string   `json:"platform"`
	SenderUsername string   `json:"sender_username"`
	SenderName     string   `json:"sender_name"`
	MessageText    string   `json:"message_text"`
	MessageID      string   `json:"message_id"`
	ConversationID string   `json:"conversation_id"`
	Timestamp      flexTime `json:"timestamp"`
	UserID         string   `json:"user_id"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func orPlaceholder(text string) string {
	if strings.TrimSpace(text) == "" {
		return mediaPlaceholder
	}
	return text
}

// ParseWebhook decodes a Meta page/instagram webhook or a flat producer payload.
// Echoes and events without a message are skipped; now fills missing timestamps.
func ParseWebhook(body []byte, now time.Time) ([]Inbound, error) {
	var env metaEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if env.Object == "page" || env.Object == "instagram" {
		return parseMeta(env, now), nil
	}

	var p producerPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if p.Platform == "" || p.SenderUsername == "" || p.MessageText == "" || !p.Timestamp.set {
		return nil, fmt.Errorf("%w: platform, sender_username, message_text and timestamp are required", ErrInvalidPayload)
	}
	return []Inbound{{
		OwnerID: p.UserID,
		Message: models.InboundMessage{
			Platform:       models.Platform(strings.ToLower(p.Platform)),
			SenderUsername: p.SenderUsername,
			SenderName:     optional(p.SenderName),
			MessageText:    p.MessageText,
			MessageID:      optional(p.MessageID),
			ConversationID: optional(p.ConversationID),
			Timestamp:      p.Timestamp.Time,
		},
	}}, nil
}

func parseMeta(env metaEnvelope, now time.Time) []Inbound {
	var out []Inbound
	for _, e := range env.Entry {
		for _, ev := range e.Messaging {
			if ev.Message == nil || ev.Message.IsEcho {
				continue
			}
			sender := ev.Sender.ID
			short := sender
			if len(short) > 8 {
				short = short[:8]
			}
			name := "Facebook User " + short
			out = append(out, Inbound{Message: models.InboundMessage{
				Platform:       models.PlatformFacebook,
				SenderUsername: sender,
				SenderName:     &name,
				MessageText:    orPlaceholder(ev.Message.Text),
				MessageID:      optional(ev.Message.Mid),
				ConversationID: optional(sender),
				Timestamp:      ev.Timestamp.or(now),
			}})
		}
		for _, ch := range e.Changes {
			if ch.Field != "messages" || ch.Value.Message == nil {
				continue
			}
			senderID, username := "unknown", ""
			if f := ch.Value.From; f != nil {
				if f.ID != "" {
					senderID = f.ID
				}
				username = f.Username
			}
			if username == "" {
				username = senderID
			}
			m := ch.Value.Message
			out = append(out, Inbound{Message: models.InboundMessage{
				Platform:       models.PlatformInstagram,
				SenderUsername: username,
				SenderName:     optional(username),
				MessageText:    orPlaceholder(m.Text),
				MessageID:      optional(m.Mid),
				ConversationID: optional(senderID),
				Timestamp:      m.Timestamp.or(now),
			}})
		}
	}
	return out
}
