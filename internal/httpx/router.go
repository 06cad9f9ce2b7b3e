package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/AngelCh415/spark-tracker/internal/config"
	"github.com/AngelCh415/spark-tracker/internal/inbox"
	"github.com/AngelCh415/spark-tracker/internal/ingest"
	"github.com/AngelCh415/spark-tracker/internal/metrics"
	"github.com/AngelCh415/spark-tracker/internal/outreach"
	"github.com/AngelCh415/spark-tracker/internal/settings"
	"github.com/AngelCh415/spark-tracker/internal/store"
	"github.com/AngelCh415/spark-tracker/internal/telemetry"
	"github.com/AngelCh415/spark-tracker/internal/utils"
)

const maxBody = 1 << 20

type Deps struct {
	Log       *slog.Logger
	Config    config.Config
	Outreach  *outreach.Service
	Inbox     *inbox.Service
	Metrics   *metrics.Service
	Settings  settings.Store
	YouTube   *ingest.YouTube
	Meta      *ingest.Meta
	Telemetry telemetry.Recorder
	Gatherer  prometheus.Gatherer
	// Ready chequea las dependencias externas; nil = siempre listo
	Ready func(ctx context.Context) error
	Now   func() time.Time
}

type server struct{ Deps }

func NewRouter(d Deps) http.Handler {
	if d.Telemetry == nil {
		d.Telemetry = telemetry.Nop{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	s := &server{d}

	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(d.Log, d.Telemetry))
	mux.Use(utils.Recovery(d.Log))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", s.readyz)
	if d.Gatherer != nil {
		mux.Handle("/metrics", telemetry.Handler(d.Gatherer))
	}

	limiter := utils.NewRateLimiter(d.Config.WebhookRatePerMin, d.Config.WebhookBurst)
	mux.Route("/webhooks/meta", func(r chi.Router) {
		r.Use(limiter.Middleware)
		r.Get("/", s.webhookVerify)
		r.Post("/", s.webhookReceive)
	})

	mux.Group(func(r chi.Router) {
		r.Use(utils.Auth(d.Config.JWTSecret, d.Config.DefaultOwnerID))

		r.Route("/outreach", func(r chi.Router) {
			r.Get("/", s.listOutreach)
			r.Post("/", s.createOutreach)
			r.Get("/stats", s.outreachStats)
			r.Get("/stages", s.outreachStages)
			r.Get("/summary", s.outreachSummary)
			r.Patch("/{id}", s.updateOutreach)
			r.Delete("/{id}", s.deleteOutreach)
		})

		r.Route("/messages", func(r chi.Router) {
			r.Get("/", s.listMessages)
			r.Get("/stats", s.messageStats)
			r.Patch("/{id}/status", s.updateMessageStatus)
			r.Put("/{id}/notes", s.setMessageNotes)
			r.Put("/{id}/tags", s.setMessageTags)
			r.Delete("/{id}", s.deleteMessage)
		})

		r.Post("/series/{platform}", s.recordSeries)
		r.Get("/charts/views", s.chartViews)
		r.Get("/charts/growth", s.chartGrowth)
		r.Get("/charts/compare", s.chartCompare)

		r.Get("/settings", s.getSettings)
		r.Put("/settings", s.putSettings)

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/youtube/channel", s.youtubeChannel)
			r.Get("/youtube/videos", s.youtubeVideos)
			r.Get("/instagram/profile", s.instagramProfile)
			r.Get("/instagram/media", s.instagramMedia)
			r.Get("/facebook/page", s.facebookPage)
			r.Get("/facebook/posts", s.facebookPosts)
		})
	})

	return mux
}

func (s *server) readyz(w http.ResponseWriter, r *http.Request) {
	if s.Ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.Ready(ctx); err != nil {
			s.Log.Warn("not ready", slog.String("err", err.Error()))
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(200)
	w.Write([]byte("ready"))
}

// errBadRequest marca errores de decodificación o de parámetros.
var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	if err := dec.Decode(v); err != nil {
		return badRequest("invalid json body: %v", err)
	}
	return nil
}

func statusFor(err error) int {
	var apiErr *ingest.APIError
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, inbox.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, errBadRequest),
		errors.Is(err, outreach.ErrInvalidPlatform),
		errors.Is(err, outreach.ErrInvalidDate),
		errors.Is(err, inbox.ErrInvalidStatus),
		errors.Is(err, inbox.ErrInvalidMessage),
		errors.Is(err, metrics.ErrInvalidInput),
		errors.Is(err, settings.ErrUnknownKey),
		errors.Is(err, ingest.ErrMissingCredential),
		errors.Is(err, ingest.ErrInvalidPayload):
		return http.StatusBadRequest
	case errors.As(err, &apiErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// writeError traduce err a status + {"error": ...}. Los 5xx no exponen detalles internos.
func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	var se *store.StoreError
	if errors.As(err, &se) && code == http.StatusInternalServerError {
		s.Telemetry.RecordStoreError(se.Op)
	}
	var apiErr *ingest.APIError
	if errors.As(err, &apiErr) {
		s.Telemetry.RecordUpstreamError(string(apiErr.Platform))
	}

	msg := err.Error()
	if code == http.StatusInternalServerError {
		s.Log.Error("request failed", slog.String("rid", utils.RID(r.Context())), slog.String("err", msg))
		msg = "internal error"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}

func paginate[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

func atoiDef(s string, d int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}

// clampLimitOffset: sin limit se devuelve todo desde offset; un limit explícito se topea en 1000.
func clampLimitOffset(limit, offset, n int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	switch {
	case limit <= 0:
		limit = n - offset
	case limit > 1000:
		limit = 1000
	}
	return limit, offset
}
