package metrics

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/AngelCh415/spark-tracker/internal/models"
)

type MetricField string

const (
	FieldViews       MetricField = "views"
	FieldLikes       MetricField = "likes"
	FieldComments    MetricField = "comments"
	FieldShares      MetricField = "shares"
	FieldSubscribers MetricField = "subscribers"
)

func ParseField(s string) (MetricField, error) {
	f := MetricField(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FieldViews, FieldLikes, FieldComments, FieldShares, FieldSubscribers:
		return f, nil
	case "":
		return FieldViews, nil
	}
	return "", fmt.Errorf("unknown field %q", s)
}

// Value reads one field of a DailyMetric; missing subscribers count as 0.
func (f MetricField) Value(m models.DailyMetric) int64 {
	switch f {
	case FieldViews:
		return m.Views
	case FieldLikes:
		return m.Likes
	case FieldComments:
		return m.Comments
	case FieldShares:
		return m.Shares
	case FieldSubscribers:
		if m.Subscribers != nil {
			return *m.Subscribers
		}
	}
	return 0
}

// ParseTimeRange acepta 7d, 30d o 90d.
func ParseTimeRange(s string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "7d", "7":
		return 7, nil
	case "30d", "30", "":
		return 30, nil
	case "90d", "90":
		return 90, nil
	}
	return 0, fmt.Errorf("invalid range %q (want 7d, 30d or 90d)", s)
}

// Slice returns the trailing windowDays items of an ascending series.
// Shorter series come back whole; the result shares the input's backing array.
func Slice[T any](series []T, windowDays int) []T {
	if windowDays <= 0 {
		return series[:0]
	}
	if len(series) <= windowDays {
		return series
	}
	return series[len(series)-windowDays:]
}

// CumulativeSum is a running total of one field that starts at zero on the
// first element it is given, so totals are relative to the window.
func CumulativeSum(series []models.DailyMetric, field MetricField) []models.SeriesPoint {
	out := make([]models.SeriesPoint, 0, len(series))
	var acc int64
	for _, m := range series {
		acc += field.Value(m)
		out = append(out, models.SeriesPoint{Date: m.Date, Value: acc})
	}
	return out
}

// MergedRow is one date of a multi-platform chart. Platforms without a point
// on that date are absent from Values.
type MergedRow struct {
	Date   string
	Values map[models.Platform]int64
}

func (r MergedRow) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(r.Values)+1)
	m["date"] = r.Date
	for p, v := range r.Values {
		m[string(p)] = v
	}
	return json.Marshal(m)
}

// Merge slices every platform's series to the window and joins them by date,
// ascending by ISO date string.
func Merge(series map[models.Platform][]models.DailyMetric, field MetricField, windowDays int) []MergedRow {
	byDate := map[string]*MergedRow{}
	for p, s := range series {
		for _, m := range Slice(s, windowDays) {
			row, ok := byDate[m.Date]
			if !ok {
				row = &MergedRow{Date: m.Date, Values: map[models.Platform]int64{}}
				byDate[m.Date] = row
			}
			row.Values[p] = field.Value(m)
		}
	}
	out := make([]MergedRow, 0, len(byDate))
	for _, r := range byDate {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
