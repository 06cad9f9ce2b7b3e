package metrics

import (
	"sort"

	"github.com/AngelCh415/spark-tracker/internal/models"
)

// Aggregate suma los contadores por plataforma y deriva las tasas sobre los totales.
// Plataformas sin entradas no aparecen en el mapa.
func Aggregate(entries []models.OutreachEntry) map[models.Platform]models.PlatformFunnelStats {
	out := make(map[models.Platform]models.PlatformFunnelStats)
	for _, e := range entries {
		s, ok := out[e.Platform]
		if !ok {
			s = models.PlatformFunnelStats{Platform: e.Platform}
		}
		s.TotalChatsStarted += e.ChatsStarted
		s.TotalActiveChats += e.ActiveChats
		s.TotalTriageBooked += e.TriageBooked
		s.TotalTriageShowUp += e.TriageShowUp
		s.TotalStrategyBooked += e.StrategyBooked
		s.TotalStrategyShowUp += e.StrategyShowUp
		s.TotalWins += e.Wins
		s.TotalNurture += e.Nurture
		out[e.Platform] = s
	}
	// métricas derivadas, después de sumar
	for p, s := range out {
		out[p] = withRates(s)
	}
	return out
}

// Combine folds per-platform stats into one all-platform funnel.
func Combine(stats map[models.Platform]models.PlatformFunnelStats) models.PlatformFunnelStats {
	var c models.PlatformFunnelStats
	for _, s := range stats {
		c.TotalChatsStarted += s.TotalChatsStarted
		c.TotalActiveChats += s.TotalActiveChats
		c.TotalTriageBooked += s.TotalTriageBooked
		c.TotalTriageShowUp += s.TotalTriageShowUp
		c.TotalStrategyBooked += s.TotalStrategyBooked
		c.TotalStrategyShowUp += s.TotalStrategyShowUp
		c.TotalWins += s.TotalWins
		c.TotalNurture += s.TotalNurture
	}
	return withRates(c)
}

// Sorted returns the stats ordered by platform name.
func Sorted(stats map[models.Platform]models.PlatformFunnelStats) []models.PlatformFunnelStats {
	out := make([]models.PlatformFunnelStats, 0, len(stats))
	for _, s := range stats {
		out = append(out, s)
	}
	// orden determinista
	sort.Slice(out, func(i, j int) bool { return out[i].Platform < out[j].Platform })
	return out
}

type FunnelStage struct {
	Stage string `json:"stage"`
	Count int64  `json:"count"`
}

// Stages lays out a funnel as the ordered bars of the pipeline.
func Stages(s models.PlatformFunnelStats) []FunnelStage {
	return []FunnelStage{
		{"Chats Started", s.TotalChatsStarted},
		{"Triage Booked", s.TotalTriageBooked},
		{"Triage Show", s.TotalTriageShowUp},
		{"Strategy Booked", s.TotalStrategyBooked},
		{"Strategy Show", s.TotalStrategyShowUp},
		{"Wins", s.TotalWins},
	}
}

func withRates(s models.PlatformFunnelStats) models.PlatformFunnelStats {
	s.ConversionRate = percent(s.TotalWins, s.TotalChatsStarted)
	s.TriageShowRate = percent(s.TotalTriageShowUp, s.TotalTriageBooked)
	s.StrategyShowRate = percent(s.TotalStrategyShowUp, s.TotalStrategyBooked)
	return s
}

// percent devuelve num/den*100; 0 si den <= 0 y nunca negativo.
// Valores > 100 (show-ups > booked) se dejan pasar.
func percent(num, den int64) float64 {
	if den <= 0 || num <= 0 {
		return 0
	}
	return float64(num) / float64(den) * 100
}
