package metrics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/AngelCh415/spark-tracker/internal/models"
	"github.com/AngelCh415/spark-tracker/internal/normalize"
	"github.com/AngelCh415/spark-tracker/internal/store"
)

// WinRateGoal is the target overall conversion rate, in percent.
const WinRateGoal = 10.0

var ErrInvalidInput = errors.New("invalid input")

type Service struct {
	outreach store.OutreachStore
	daily    store.DailyMetricStore
}

func NewService(o store.OutreachStore, d store.DailyMetricStore) *Service {
	return &Service{outreach: o, daily: d}
}

type Summary struct {
	Entries         int                          `json:"entries"`
	Combined        models.PlatformFunnelStats   `json:"combined"`
	Funnel          []FunnelStage                `json:"funnel"`
	Platforms       []models.PlatformFunnelStats `json:"platforms"`
	Stages          models.StageDistribution     `json:"stages"`
	WinRate         float64                      `json:"winRate"`
	WinRateGoal     float64                      `json:"winRateGoal"`
	GoalReached     bool                         `json:"goalReached"`
	RemainingToGoal float64                      `json:"remainingToGoal"`
}

type PlatformTotal struct {
	Platform models.Platform `json:"platform"`
	Total    int64           `json:"total"`
}

func (s *Service) entries(ctx context.Context, f store.OutreachFilter) ([]models.OutreachEntry, error) {
	recs, err := s.outreach.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]models.OutreachEntry, len(recs))
	for i, r := range recs {
		out[i] = normalize.ToEntity(r)
	}
	return out, nil
}

// FunnelStats devuelve el funnel por plataforma, ordenado por nombre.
func (s *Service) FunnelStats(ctx context.Context, f store.OutreachFilter) ([]models.PlatformFunnelStats, error) {
	es, err := s.entries(ctx, f)
	if err != nil {
		return nil, err
	}
	return Sorted(Aggregate(es)), nil
}

func (s *Service) StageDistribution(ctx context.Context, f store.OutreachFilter) (models.StageDistribution, error) {
	es, err := s.entries(ctx, f)
	if err != nil {
		return models.StageDistribution{}, err
	}
	return AggregateStages(es), nil
}

func (s *Service) Summary(ctx context.Context, f store.OutreachFilter) (Summary, error) {
	es, err := s.entries(ctx, f)
	if err != nil {
		return Summary{}, err
	}
	per := Aggregate(es)
	c := Combine(per)
	sum := Summary{
		Entries:     len(es),
		Combined:    c,
		Funnel:      Stages(c),
		Platforms:   Sorted(per),
		Stages:      AggregateStages(es),
		WinRate:     round2(c.ConversionRate),
		WinRateGoal: WinRateGoal,
		GoalReached: c.ConversionRate >= WinRateGoal,
	}
	if !sum.GoalReached {
		sum.RemainingToGoal = round2(WinRateGoal - c.ConversionRate)
	}
	return sum, nil
}

// RecordSeries valida y guarda filas diarias de un productor.
func (s *Service) RecordSeries(ctx context.Context, userID string, p models.Platform, rows []models.DailyMetric) error {
	if !p.Valid() {
		return fmt.Errorf("%w: unknown platform %q", ErrInvalidInput, p)
	}
	for _, r := range rows {
		if _, err := time.Parse("2006-01-02", r.Date); err != nil {
			return fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidInput, r.Date)
		}
	}
	return s.daily.UpsertDaily(ctx, userID, p, rows)
}

func (s *Service) series(ctx context.Context, userID string) (map[models.Platform][]models.DailyMetric, error) {
	out := make(map[models.Platform][]models.DailyMetric)
	for _, p := range models.Platforms {
		rows, err := s.daily.ListDaily(ctx, userID, p)
		if err != nil {
			return nil, err
		}
		if len(rows) > 0 {
			out[p] = rows
		}
	}
	return out, nil
}

// Window junta las series de todas las plataformas por fecha dentro de la ventana.
func (s *Service) Window(ctx context.Context, userID string, field MetricField, windowDays int) ([]MergedRow, error) {
	all, err := s.series(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Merge(all, field, windowDays), nil
}

// Growth is the cumulative series of one platform, relative to the window start.
func (s *Service) Growth(ctx context.Context, userID string, p models.Platform, field MetricField, windowDays int) ([]models.SeriesPoint, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: unknown platform %q", ErrInvalidInput, p)
	}
	rows, err := s.daily.ListDaily(ctx, userID, p)
	if err != nil {
		return nil, err
	}
	return CumulativeSum(Slice(rows, windowDays), field), nil
}

// Compare suma el campo por plataforma dentro de la ventana, de mayor a menor.
func (s *Service) Compare(ctx context.Context, userID string, field MetricField, windowDays int) ([]PlatformTotal, error) {
	all, err := s.series(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]PlatformTotal, 0, len(all))
	for p, rows := range all {
		var t int64
		for _, r := range Slice(rows, windowDays) {
			t += field.Value(r)
		}
		out = append(out, PlatformTotal{Platform: p, Total: t})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Platform < out[j].Platform
	})
	return out, nil
}

func round2(f float64) float64 { return float64(int64(f*100+0.5)) / 100 }
