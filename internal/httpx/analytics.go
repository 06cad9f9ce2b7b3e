package httpx

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/AngelCh415/spark-tracker/internal/metrics"
	"github.com/AngelCh415/spark-tracker/internal/models"
	"github.com/AngelCh415/spark-tracker/internal/settings"
	"github.com/AngelCh415/spark-tracker/internal/utils"
)

func (s *server) recordSeries(w http.ResponseWriter, r *http.Request) {
	var rows []models.DailyMetric
	if err := decodeJSON(r, &rows); err != nil {
		s.writeError(w, r, err)
		return
	}
	p := models.Platform(strings.ToLower(chi.URLParam(r, "platform")))
	if err := s.Metrics.RecordSeries(r.Context(), utils.Owner(r.Context()), p, rows); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, map[string]int{"stored": len(rows)})
}

// chartParams lee ?range= y ?field=.
func chartParams(r *http.Request) (metrics.MetricField, int, error) {
	q := r.URL.Query()
	days, err := metrics.ParseTimeRange(q.Get("range"))
	if err != nil {
		return "", 0, badRequest("%v", err)
	}
	field, err := metrics.ParseField(q.Get("field"))
	if err != nil {
		return "", 0, badRequest("%v", err)
	}
	return field, days, nil
}

func (s *server) chartViews(w http.ResponseWriter, r *http.Request) {
	field, days, err := chartParams(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rows, err := s.Metrics.Window(r.Context(), utils.Owner(r.Context()), field, days)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, rows)
}

func (s *server) chartGrowth(w http.ResponseWriter, r *http.Request) {
	field, days, err := chartParams(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p := models.Platform(strings.ToLower(r.URL.Query().Get("platform")))
	pts, err := s.Metrics.Growth(r.Context(), utils.Owner(r.Context()), p, field, days)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, pts)
}

func (s *server) chartCompare(w http.ResponseWriter, r *http.Request) {
	field, days, err := chartParams(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	totals, err := s.Metrics.Compare(r.Context(), utils.Owner(r.Context()), field, days)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, totals)
}

func (s *server) getSettings(w http.ResponseWriter, r *http.Request) {
	st, err := settings.Load(r.Context(), s.Settings, utils.Owner(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, st.Masked())
}

func (s *server) putSettings(w http.ResponseWriter, r *http.Request) {
	var body map[string]string
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	owner := utils.Owner(r.Context())
	if err := settings.Save(r.Context(), s.Settings, owner, body); err != nil {
		s.writeError(w, r, err)
		return
	}
	st, err := settings.Load(r.Context(), s.Settings, owner)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, st.Masked())
}

// withSettings carga las credenciales del owner y delega en fn.
func (s *server) withSettings(fn func(w http.ResponseWriter, r *http.Request, st settings.Settings) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := settings.Load(r.Context(), s.Settings, utils.Owner(r.Context()))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		v, err := fn(w, r, st)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, v)
	}
}

func limitParam(r *http.Request) int { return atoiDef(r.URL.Query().Get("limit"), 20) }

func (s *server) youtubeChannel(w http.ResponseWriter, r *http.Request) {
	s.withSettings(func(w http.ResponseWriter, r *http.Request, st settings.Settings) (any, error) {
		return s.YouTube.ChannelStats(r.Context(), st)
	})(w, r)
}

func (s *server) youtubeVideos(w http.ResponseWriter, r *http.Request) {
	s.withSettings(func(w http.ResponseWriter, r *http.Request, st settings.Settings) (any, error) {
		return s.YouTube.RecentVideos(r.Context(), st, limitParam(r))
	})(w, r)
}

func (s *server) instagramProfile(w http.ResponseWriter, r *http.Request) {
	s.withSettings(func(w http.ResponseWriter, r *http.Request, st settings.Settings) (any, error) {
		return s.Meta.InstagramProfile(r.Context(), st)
	})(w, r)
}

func (s *server) instagramMedia(w http.ResponseWriter, r *http.Request) {
	s.withSettings(func(w http.ResponseWriter, r *http.Request, st settings.Settings) (any, error) {
		return s.Meta.InstagramMedia(r.Context(), st, limitParam(r))
	})(w, r)
}

func (s *server) facebookPage(w http.ResponseWriter, r *http.Request) {
	s.withSettings(func(w http.ResponseWriter, r *http.Request, st settings.Settings) (any, error) {
		return s.Meta.FacebookPage(r.Context(), st)
	})(w, r)
}

func (s *server) facebookPosts(w http.ResponseWriter, r *http.Request) {
	s.withSettings(func(w http.ResponseWriter, r *http.Request, st settings.Settings) (any, error) {
		return s.Meta.FacebookPosts(r.Context(), st, limitParam(r))
	})(w, r)
}
