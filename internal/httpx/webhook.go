package httpx

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/AngelCh415/spark-tracker/internal/ingest"
)

func (s *server) webhookVerify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	challenge, ok := ingest.VerifyChallenge(q.Get("hub.mode"), q.Get("hub.verify_token"), q.Get("hub.challenge"), s.Config.WebhookVerifyToken)
	if !ok {
		s.Log.Warn("webhook verification failed", slog.String("mode", q.Get("hub.mode")))
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(challenge))
}

type webhookResult struct {
	Received   int `json:"received"`
	Created    int `json:"created"`
	Duplicates int `json:"duplicates"`
}

// webhookReceive valida la firma, decodifica y guarda cada DM como new.
func (s *server) webhookReceive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		s.writeError(w, r, badRequest("read body: %v", err))
		return
	}
	if err := ingest.VerifySignature(s.Config.WebhookAppSecret, r.Header.Get("X-Hub-Signature-256"), body); err != nil {
		s.Log.Warn("webhook signature rejected")
		writeJSONStatus(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
		return
	}
	msgs, err := ingest.ParseWebhook(body, s.Now().UTC())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var res webhookResult
	var errs []error
	for _, in := range msgs {
		owner := in.OwnerID
		if owner == "" {
			owner = s.Config.WebhookOwnerID
		}
		_, created, err := s.Inbox.Ingest(r.Context(), owner, in.Message)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		res.Received++
		if created {
			res.Created++
		} else {
			res.Duplicates++
		}
		s.Telemetry.RecordWebhookMessage(string(in.Message.Platform), created)
	}
	if len(errs) > 0 && res.Received == 0 {
		s.writeError(w, r, errors.Join(errs...))
		return
	}
	for _, e := range errs {
		s.Log.Warn("webhook message skipped", slog.String("err", e.Error()))
	}
	writeJSON(w, res)
}
