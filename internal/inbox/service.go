// Package inbox gestiona los DMs capturados: estado, notas, tags y altas desde el webhook.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/AngelCh415/spark-tracker/internal/models"
	"github.com/AngelCh415/spark-tracker/internal/store"
)

var (
	ErrInvalidStatus     = errors.New("invalid message status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidMessage    = errors.New("invalid inbound message")
)

// transiciones permitidas; nunca se vuelve a new
var allowed = map[models.MessageStatus][]models.MessageStatus{
	models.StatusNew:       {models.StatusResponded, models.StatusArchived},
	models.StatusResponded: {models.StatusArchived},
}

// CanTransition reports whether a message may move from one status to another.
// Staying in the same status is always allowed.
func CanTransition(from, to models.MessageStatus) bool {
	if from == to {
		return true
	}
	for _, s := range allowed[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Service struct {
	st     store.MessageStore
	policy *bluemonday.Policy
}

func NewService(st store.MessageStore) *Service {
	return &Service{st: st, policy: bluemonday.StrictPolicy()}
}

// clean quita el markup y deja texto plano (bluemonday escapa entidades).
func (s *Service) clean(v string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(v)))
}

// Ingest guarda un mensaje nuevo con estado new. Si el messageId ya existe para
// el owner devuelve el existente y created=false.
func (s *Service) Ingest(ctx context.Context, ownerID string, msg models.InboundMessage) (models.InboundMessage, bool, error) {
	if !msg.Platform.IsDM() {
		return models.InboundMessage{}, false, fmt.Errorf("%w: platform %q", ErrInvalidMessage, msg.Platform)
	}
	if strings.TrimSpace(msg.SenderUsername) == "" {
		return models.InboundMessage{}, false, fmt.Errorf("%w: sender username required", ErrInvalidMessage)
	}
	if msg.MessageID != nil && *msg.MessageID != "" {
		existing, err := s.st.FindByMessageID(ctx, ownerID, *msg.MessageID)
		if err != nil {
			return models.InboundMessage{}, false, err
		}
		if existing != nil {
			return *existing, false, nil
		}
	}

	msg.ID = ""
	msg.UserID = ownerID
	msg.Status = models.StatusNew
	msg.MessageText = s.clean(msg.MessageText)
	msg.SenderUsername = s.clean(msg.SenderUsername)
	if msg.SenderName != nil {
		n := s.clean(*msg.SenderName)
		msg.SenderName = &n
	}
	msg.Tags = nil
	msg.Notes = nil

	saved, err := s.st.Insert(ctx, msg)
	if err != nil {
		return models.InboundMessage{}, false, err
	}
	return saved, true, nil
}

// Get devuelve el mensaje sólo si pertenece a ownerID; si no, not found.
func (s *Service) Get(ctx context.Context, ownerID, id string) (models.InboundMessage, error) {
	m, err := s.st.Get(ctx, id)
	if err != nil {
		return models.InboundMessage{}, err
	}
	if m.UserID != ownerID {
		return models.InboundMessage{}, store.NotFound("get message", id)
	}
	return m, nil
}

// UpdateStatus mueve el mensaje de estado. El cambio se aplica sólo si el estado
// leído sigue vigente; si otro request lo cambió antes, es una transición inválida.
func (s *Service) UpdateStatus(ctx context.Context, ownerID, id string, to models.MessageStatus) (models.InboundMessage, error) {
	if !to.Valid() {
		return models.InboundMessage{}, fmt.Errorf("%w: %q", ErrInvalidStatus, to)
	}
	cur, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return models.InboundMessage{}, err
	}
	if cur.Status == to {
		return cur, nil
	}
	if !CanTransition(cur.Status, to) {
		return models.InboundMessage{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, cur.Status, to)
	}
	from := cur.Status
	upd, err := s.st.Update(ctx, id, models.MessagePatch{Status: &to, ExpectStatus: &from})
	if errors.Is(err, store.ErrStatusConflict) {
		return models.InboundMessage{}, fmt.Errorf("%w: %s -> %s: %v", ErrInvalidTransition, from, to, err)
	}
	return upd, err
}

// SetNotes works in any status, archived included.
func (s *Service) SetNotes(ctx context.Context, ownerID, id, notes string) (models.InboundMessage, error) {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return models.InboundMessage{}, err
	}
	n := s.clean(notes)
	return s.st.Update(ctx, id, models.MessagePatch{Notes: &n})
}

// SetTags guarda los tags como conjunto: limpios, sin vacíos ni repetidos, ordenados.
func (s *Service) SetTags(ctx context.Context, ownerID, id string, tags []string) (models.InboundMessage, error) {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return models.InboundMessage{}, err
	}
	set := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = s.clean(t)
		if t == "" {
			continue
		}
		if _, dup := set[t]; dup {
			continue
		}
		set[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return s.st.Update(ctx, id, models.MessagePatch{Tags: &out})
}

func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return err
	}
	return s.st.Remove(ctx, id)
}

func (s *Service) List(ctx context.Context, f store.MessageFilter) ([]models.InboundMessage, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, f.Status)
	}
	return s.st.List(ctx, f)
}

// Stats cuenta los mensajes del owner por estado y plataforma.
func (s *Service) Stats(ctx context.Context, ownerID string) (models.MessageStats, error) {
	msgs, err := s.st.List(ctx, store.MessageFilter{UserID: ownerID})
	if err != nil {
		return models.MessageStats{}, err
	}
	var st models.MessageStats
	st.Total = len(msgs)
	for _, m := range msgs {
		switch m.Status {
		case models.StatusNew:
			st.New++
		case models.StatusResponded:
			st.Responded++
		case models.StatusArchived:
			st.Archived++
		}
		switch m.Platform {
		case models.PlatformInstagram:
			st.Instagram++
		case models.PlatformFacebook:
			st.Facebook++
		}
	}
	return st, nil
}
