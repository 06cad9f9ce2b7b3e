package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AngelCh415/spark-tracker/internal/models"
	"github.com/AngelCh415/spark-tracker/internal/normalize"
)

type dailyKey struct {
	UserID   string
	Platform models.Platform
	Date     string
}

type MemoryStore struct {
	mu       sync.RWMutex
	outreach map[string]models.OutreachRecord
	messages map[string]models.InboundMessage
	daily    map[dailyKey]models.DailyMetric
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		outreach: make(map[string]models.OutreachRecord),
		messages: make(map[string]models.InboundMessage),
		daily:    make(map[dailyKey]models.DailyMetric),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Outreach devuelve la vista OutreachStore del store.
func (s *MemoryStore) Outreach() OutreachStore { return memOutreach{s} }

// Messages devuelve la vista MessageStore del store.
func (s *MemoryStore) Messages() MessageStore { return memMessages{s} }

type memOutreach struct{ s *MemoryStore }

func (m memOutreach) List(_ context.Context, f OutreachFilter) ([]models.OutreachRecord, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	out := make([]models.OutreachRecord, 0, len(m.s.outreach))
	for _, r := range m.s.outreach {
		if f.match(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m memOutreach) Get(_ context.Context, id string) (models.OutreachRecord, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	rec, ok := m.s.outreach[id]
	if !ok {
		return models.OutreachRecord{}, notFound("get outreach", id)
	}
	return rec, nil
}

func (m memOutreach) Insert(_ context.Context, rec models.OutreachRecord) (models.OutreachRecord, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if _, ok := m.s.outreach[rec.ID]; ok {
		return models.OutreachRecord{}, storeErr("insert outreach", "duplicate id "+rec.ID, nil)
	}
	rec.CreatedAt = m.s.now()
	m.s.outreach[rec.ID] = rec
	return rec, nil
}

func (m memOutreach) Update(_ context.Context, id string, patch models.RecordPatch) (models.OutreachRecord, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	rec, ok := m.s.outreach[id]
	if !ok {
		return models.OutreachRecord{}, notFound("update outreach", id)
	}
	normalize.ApplyPatch(&rec, patch)
	m.s.outreach[id] = rec
	return rec, nil
}

func (m memOutreach) Remove(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.outreach[id]; !ok {
		return notFound("remove outreach", id)
	}
	delete(m.s.outreach, id)
	return nil
}

type memMessages struct{ s *MemoryStore }

func (m memMessages) List(_ context.Context, f MessageFilter) ([]models.InboundMessage, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	out := make([]models.InboundMessage, 0, len(m.s.messages))
	for _, msg := range m.s.messages {
		if f.match(msg) {
			out = append(out, cloneMessage(msg))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m memMessages) Get(_ context.Context, id string) (models.InboundMessage, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	msg, ok := m.s.messages[id]
	if !ok {
		return models.InboundMessage{}, notFound("get message", id)
	}
	return cloneMessage(msg), nil
}

func (m memMessages) FindByMessageID(_ context.Context, userID, messageID string) (*models.InboundMessage, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	for _, msg := range m.s.messages {
		if msg.UserID == userID && msg.MessageID != nil && *msg.MessageID == messageID {
			c := cloneMessage(msg)
			return &c, nil
		}
	}
	return nil, nil
}

func (m memMessages) Insert(_ context.Context, msg models.InboundMessage) (models.InboundMessage, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	now := m.s.now()
	msg.CreatedAt, msg.UpdatedAt = now, now
	m.s.messages[msg.ID] = cloneMessage(msg)
	return msg, nil
}

func (m memMessages) Update(_ context.Context, id string, patch models.MessagePatch) (models.InboundMessage, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	msg, ok := m.s.messages[id]
	if !ok {
		return models.InboundMessage{}, notFound("update message", id)
	}
	if patch.ExpectStatus != nil && msg.Status != *patch.ExpectStatus {
		return models.InboundMessage{}, statusConflict("update message", id, *patch.ExpectStatus)
	}
	if patch.Status != nil {
		msg.Status = *patch.Status
	}
	if patch.Notes != nil {
		n := *patch.Notes
		msg.Notes = &n
	}
	if patch.Tags != nil {
		msg.Tags = append([]string(nil), (*patch.Tags)...)
	}
	msg.UpdatedAt = m.s.now()
	m.s.messages[id] = msg
	return cloneMessage(msg), nil
}

func (m memMessages) Remove(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.messages[id]; !ok {
		return notFound("remove message", id)
	}
	delete(m.s.messages, id)
	return nil
}

func (s *MemoryStore) UpsertDaily(_ context.Context, userID string, p models.Platform, rows []models.DailyMetric) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.daily[dailyKey{UserID: userID, Platform: p, Date: r.Date}] = r
	}
	return nil
}

func (s *MemoryStore) ListDaily(_ context.Context, userID string, p models.Platform) ([]models.DailyMetric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.DailyMetric
	for k, v := range s.daily {
		if k.UserID == userID && k.Platform == p {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func cloneMessage(m models.InboundMessage) models.InboundMessage {
	if m.Tags != nil {
		m.Tags = append([]string(nil), m.Tags...)
	}
	return m
}

var (
	_ OutreachStore    = memOutreach{}
	_ MessageStore     = memMessages{}
	_ DailyMetricStore = (*MemoryStore)(nil)
)
