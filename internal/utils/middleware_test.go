package utils

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/spark-tracker/internal/telemetry"
)

type spyRecorder struct {
	telemetry.Nop
	method, route string
	status        int
}

func (s *spyRecorder) RecordRequest(method, route string, status int, _ time.Duration) {
	s.method, s.route, s.status = method, route, status
}

func TestRequestIDPropagates(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { seen = RID(r.Context()) }))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, seen, 16)
	assert.Equal(t, seen, rr.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "abc", seen)
}

func TestLoggerLevelsAndRoutePattern(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	spy := &spyRecorder{}

	r := chi.NewRouter()
	r.Use(RequestID, Logger(log, spy))
	r.Get("/messages/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/messages/42", nil))

	assert.Equal(t, "/messages/{id}", spy.route)
	assert.Equal(t, http.StatusNotFound, spy.status)
	out := buf.String()
	assert.Contains(t, out, `"level":"WARN"`)
	assert.Contains(t, out, `"status":404`)
	assert.Contains(t, out, `"path":"/messages/42"`)
}

func TestLoggerLabelsUnknownPathsAsUnmatched(t *testing.T) {
	spy := &spyRecorder{}
	r := chi.NewRouter()
	r.Use(Logger(slog.New(slog.NewJSONHandler(io.Discard, nil)), spy))
	r.Get("/healthz", func(http.ResponseWriter, *http.Request) {})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/random/a8f3c1", nil))

	assert.Equal(t, "unmatched", spy.route)
	assert.Equal(t, http.StatusNotFound, spy.status)
}

func TestRecoveryReturns500(t *testing.T) {
	var buf bytes.Buffer
	h := Recovery(slog.New(slog.NewJSONHandler(&buf, nil)))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	assert.NotPanics(t, func() { h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil)) })
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, buf.String(), "panic recovered")
}

func ownerEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(Owner(r.Context()))) })
}

func TestAuthWithoutSecretUsesDefaultOwner(t *testing.T) {
	rr := httptest.NewRecorder()
	Auth("", "local")(ownerEcho()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "local", rr.Body.String())
}

func TestAuthWithSecret(t *testing.T) {
	h := Auth("s3cret", "local")(ownerEcho())

	tok, err := GenerateToken("s3cret", "user-9", time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "user-9", rr.Body.String())

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	bad, err := GenerateToken("other", "user-9", time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+bad)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json"))
}

func TestValidateTokenRejectsExpiredAndAnonymous(t *testing.T) {
	expired, err := GenerateToken("k", "u", -time.Minute)
	require.NoError(t, err)
	_, err = ValidateToken("k", expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	anon, err := GenerateToken("k", "", time.Hour)
	require.NoError(t, err)
	_, err = ValidateToken("k", anon)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(60, 2)
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/meta", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	other := httptest.NewRequest(http.MethodPost, "/webhooks/meta", nil)
	other.RemoteAddr = "10.0.0.2:5555"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, other)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 2, rl.Len())
}

func TestRateLimiterForgetsIdleClients(t *testing.T) {
	rl := NewRateLimiter(60, 1)
	base := time.Now()
	rl.now = func() time.Time { return base }
	rl.get("a")
	rl.now = func() time.Time { return base.Add(time.Hour) }
	rl.get("b")
	assert.Equal(t, 1, rl.Len())
}
