// Package outreach maneja el ciclo de vida de las entradas diarias del pipeline de DMs.
package outreach

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AngelCh415/spark-tracker/internal/models"
	"github.com/AngelCh415/spark-tracker/internal/normalize"
	"github.com/AngelCh415/spark-tracker/internal/store"
)

var (
	ErrInvalidPlatform = errors.New("platform must be facebook or instagram")
	ErrInvalidDate     = errors.New("date must be YYYY-MM-DD")
)

type Service struct{ st store.OutreachStore }

func NewService(st store.OutreachStore) *Service { return &Service{st: st} }

// Create guarda una entrada nueva. dayOfWeek se deriva de la fecha una sola vez.
func (s *Service) Create(ctx context.Context, ownerID string, e models.OutreachEntry) (models.OutreachEntry, error) {
	e.Platform = models.Platform(strings.ToLower(strings.TrimSpace(string(e.Platform))))
	if !e.Platform.IsDM() {
		return models.OutreachEntry{}, fmt.Errorf("%w: got %q", ErrInvalidPlatform, e.Platform)
	}
	day, err := time.Parse("2006-01-02", e.Date)
	if err != nil {
		return models.OutreachEntry{}, fmt.Errorf("%w: got %q", ErrInvalidDate, e.Date)
	}
	e.ID = ""
	e.DayOfWeek = day.Weekday().String()

	rec, err := s.st.Insert(ctx, normalize.ToRecord(e, ownerID))
	if err != nil {
		return models.OutreachEntry{}, err
	}
	return normalize.ToEntity(rec), nil
}

// owned falla con not found si la entrada no existe o es de otro owner.
func (s *Service) owned(ctx context.Context, ownerID, id string) error {
	rec, err := s.st.Get(ctx, id)
	if err != nil {
		return err
	}
	if rec.UserID != ownerID {
		return store.NotFound("get outreach", id)
	}
	return nil
}

// Update aplica sólo los contadores presentes en p.
func (s *Service) Update(ctx context.Context, ownerID, id string, p models.OutreachPatch) (models.OutreachEntry, error) {
	if err := s.owned(ctx, ownerID, id); err != nil {
		return models.OutreachEntry{}, err
	}
	rec, err := s.st.Update(ctx, id, normalize.ToRecordPatch(p))
	if err != nil {
		return models.OutreachEntry{}, err
	}
	return normalize.ToEntity(rec), nil
}

func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.owned(ctx, ownerID, id); err != nil {
		return err
	}
	return s.st.Remove(ctx, id)
}

func (s *Service) List(ctx context.Context, f store.OutreachFilter) ([]models.OutreachEntry, error) {
	if f.From != "" {
		if _, err := time.Parse("2006-01-02", f.From); err != nil {
			return nil, fmt.Errorf("%w: from %q", ErrInvalidDate, f.From)
		}
	}
	if f.To != "" {
		if _, err := time.Parse("2006-01-02", f.To); err != nil {
			return nil, fmt.Errorf("%w: to %q", ErrInvalidDate, f.To)
		}
	}
	recs, err := s.st.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]models.OutreachEntry, len(recs))
	for i, r := range recs {
		out[i] = normalize.ToEntity(r)
	}
	return out, nil
}
