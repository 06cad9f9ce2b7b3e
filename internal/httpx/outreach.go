package httpx

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/AngelCh415/spark-tracker/internal/models"
	"github.com/AngelCh415/spark-tracker/internal/store"
	"github.com/AngelCh415/spark-tracker/internal/utils"
)

// outreachFilter arma el filtro desde ?platform=&from=&to= para el owner de la request.
func outreachFilter(r *http.Request) store.OutreachFilter {
	q := r.URL.Query()
	return store.OutreachFilter{
		UserID:   utils.Owner(r.Context()),
		Platform: models.Platform(strings.ToLower(strings.TrimSpace(q.Get("platform")))),
		From:     q.Get("from"),
		To:       q.Get("to"),
	}
}

func (s *server) listOutreach(w http.ResponseWriter, r *http.Request) {
	rows, err := s.Outreach.List(r.Context(), outreachFilter(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	limit := atoiDef(r.URL.Query().Get("limit"), 0)
	offset := atoiDef(r.URL.Query().Get("offset"), 0)
	limit, offset = clampLimitOffset(limit, offset, len(rows))
	w.Header().Set("X-Total-Count", strconv.Itoa(len(rows)))
	writeJSON(w, paginate(rows, limit, offset))
}

func (s *server) createOutreach(w http.ResponseWriter, r *http.Request) {
	var e models.OutreachEntry
	if err := decodeJSON(r, &e); err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.Outreach.Create(r.Context(), utils.Owner(r.Context()), e)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.Telemetry.RecordOutreachCreated(string(created.Platform))
	writeJSONStatus(w, http.StatusCreated, created)
}

func (s *server) updateOutreach(w http.ResponseWriter, r *http.Request) {
	var p models.OutreachPatch
	if err := decodeJSON(r, &p); err != nil {
		s.writeError(w, r, err)
		return
	}
	updated, err := s.Outreach.Update(r.Context(), utils.Owner(r.Context()), chi.URLParam(r, "id"), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, updated)
}

func (s *server) deleteOutreach(w http.ResponseWriter, r *http.Request) {
	if err := s.Outreach.Delete(r.Context(), utils.Owner(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) outreachStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.Metrics.FunnelStats(r.Context(), outreachFilter(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, stats)
}

func (s *server) outreachStages(w http.ResponseWriter, r *http.Request) {
	d, err := s.Metrics.StageDistribution(r.Context(), outreachFilter(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, d)
}

func (s *server) outreachSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.Metrics.Summary(r.Context(), outreachFilter(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, sum)
}
