package httpx

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/AngelCh415/spark-tracker/internal/models"
	"github.com/AngelCh415/spark-tracker/internal/store"
	"github.com/AngelCh415/spark-tracker/internal/utils"
)

func (s *server) listMessages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	msgs, err := s.Inbox.List(r.Context(), store.MessageFilter{
		UserID:   utils.Owner(r.Context()),
		Platform: models.Platform(strings.ToLower(q.Get("platform"))),
		Status:   models.MessageStatus(strings.ToLower(q.Get("status"))),
		Limit:    atoiDef(q.Get("limit"), 100),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, msgs)
}

func (s *server) messageStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.Inbox.Stats(r.Context(), utils.Owner(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, st)
}

func (s *server) updateMessageStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status models.MessageStatus `json:"status"`
	}
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	msg, err := s.Inbox.UpdateStatus(r.Context(), utils.Owner(r.Context()), chi.URLParam(r, "id"), body.Status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, msg)
}

func (s *server) setMessageNotes(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Notes string `json:"notes"`
	}
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	msg, err := s.Inbox.SetNotes(r.Context(), utils.Owner(r.Context()), chi.URLParam(r, "id"), body.Notes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, msg)
}

func (s *server) setMessageTags(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Tags []string `json:"tags"`
	}
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	msg, err := s.Inbox.SetTags(r.Context(), utils.Owner(r.Context()), chi.URLParam(r, "id"), body.Tags)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, msg)
}

func (s *server) deleteMessage(w http.ResponseWriter, r *http.Request) {
	if err := s.Inbox.Delete(r.Context(), utils.Owner(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
