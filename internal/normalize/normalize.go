// Package normalize translates between persisted outreach records (snake_case)
// and application entities (camelCase). The column table below is the only
// place where that mapping lives.
package normalize

import (
	"sort"

	"github.com/AngelCh415/spark-tracker/internal/models"
)

type counterColumn struct {
	name   string
	entity func(*models.OutreachEntry) *int64
	record func(*models.OutreachRecord) *int64
	patch  func(*models.OutreachPatch) *int64
}

var counters = []counterColumn{
	{"chats_started",
		func(e *models.OutreachEntry) *int64 { return &e.ChatsStarted },
		func(r *models.OutreachRecord) *int64 { return &r.ChatsStarted },
		func(p *models.OutreachPatch) *int64 { return p.ChatsStarted }},
	{"active_chats",
		func(e *models.OutreachEntry) *int64 { return &e.ActiveChats },
		func(r *models.OutreachRecord) *int64 { return &r.ActiveChats },
		func(p *models.OutreachPatch) *int64 { return p.ActiveChats }},
	{"triage_booked",
		func(e *models.OutreachEntry) *int64 { return &e.TriageBooked },
		func(r *models.OutreachRecord) *int64 { return &r.TriageBooked },
		func(p *models.OutreachPatch) *int64 { return p.TriageBooked }},
	{"triage_show_up",
		func(e *models.OutreachEntry) *int64 { return &e.TriageShowUp },
		func(r *models.OutreachRecord) *int64 { return &r.TriageShowUp },
		func(p *models.OutreachPatch) *int64 { return p.TriageShowUp }},
	{"strategy_booked",
		func(e *models.OutreachEntry) *int64 { return &e.StrategyBooked },
		func(r *models.OutreachRecord) *int64 { return &r.StrategyBooked },
		func(p *models.OutreachPatch) *int64 { return p.StrategyBooked }},
	{"strategy_show_up",
		func(e *models.OutreachEntry) *int64 { return &e.StrategyShowUp },
		func(r *models.OutreachRecord) *int64 { return &r.StrategyShowUp },
		func(p *models.OutreachPatch) *int64 { return p.StrategyShowUp }},
	{"wins",
		func(e *models.OutreachEntry) *int64 { return &e.Wins },
		func(r *models.OutreachRecord) *int64 { return &r.Wins },
		func(p *models.OutreachPatch) *int64 { return p.Wins }},
	{"nurture",
		func(e *models.OutreachEntry) *int64 { return &e.Nurture },
		func(r *models.OutreachRecord) *int64 { return &r.Nurture },
		func(p *models.OutreachPatch) *int64 { return p.Nurture }},
	{"connect_stage",
		func(e *models.OutreachEntry) *int64 { return &e.ConnectStage },
		func(r *models.OutreachRecord) *int64 { return &r.ConnectStage },
		func(p *models.OutreachPatch) *int64 { return p.ConnectStage }},
	{"qualify_stage",
		func(e *models.OutreachEntry) *int64 { return &e.QualifyStage },
		func(r *models.OutreachRecord) *int64 { return &r.QualifyStage },
		func(p *models.OutreachPatch) *int64 { return p.QualifyStage }},
	{"convert_stage",
		func(e *models.OutreachEntry) *int64 { return &e.ConvertStage },
		func(r *models.OutreachRecord) *int64 { return &r.ConvertStage },
		func(p *models.OutreachPatch) *int64 { return p.ConvertStage }},
}

// ToEntity renames persisted fields; values pass through unchanged.
func ToEntity(rec models.OutreachRecord) models.OutreachEntry {
	e := models.OutreachEntry{
		ID:        rec.ID,
		Date:      rec.Date,
		DayOfWeek: rec.Day,
		Platform:  rec.Platform,
	}
	for _, c := range counters {
		*c.entity(&e) = *c.record(&rec)
	}
	return e
}

// ToRecord is the inverse of ToEntity and injects the owner required by the store.
func ToRecord(e models.OutreachEntry, ownerID string) models.OutreachRecord {
	rec := models.OutreachRecord{
		ID:       e.ID,
		UserID:   ownerID,
		Date:     e.Date,
		Day:      e.DayOfWeek,
		Platform: e.Platform,
	}
	for _, c := range counters {
		*c.record(&rec) = *c.entity(&e)
	}
	return rec
}

// ToRecordPatch keeps only the fields present in p. Absent fields are omitted, never zeroed.
func ToRecordPatch(p models.OutreachPatch) models.RecordPatch {
	out := models.RecordPatch{}
	for _, c := range counters {
		if v := c.patch(&p); v != nil {
			out[c.name] = *v
		}
	}
	return out
}

// ApplyPatch writes the patched columns onto rec. Unknown columns are ignored.
func ApplyPatch(rec *models.OutreachRecord, patch models.RecordPatch) {
	for _, c := range counters {
		if v, ok := patch[c.name]; ok {
			*c.record(rec) = v
		}
	}
}

// Columns returns the counter columns in table order.
func Columns() []string {
	out := make([]string, len(counters))
	for i, c := range counters {
		out[i] = c.name
	}
	return out
}

func IsCounterColumn(col string) bool {
	for _, c := range counters {
		if c.name == col {
			return true
		}
	}
	return false
}

// SortedColumns devuelve las columnas de un patch en orden determinista.
func SortedColumns(patch models.RecordPatch) []string {
	cols := make([]string, 0, len(patch))
	for k := range patch {
		if IsCounterColumn(k) {
			cols = append(cols, k)
		}
	}
	sort.Strings(cols)
	return cols
}
