package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/AngelCh415/spark-tracker/internal/models"
)

var ErrMissingCredential = errors.New("missing platform credential")

// APIError is a non-2xx answer from a platform API, or a transport failure
// reaching it (Status 502, Err set).
type APIError struct {
	Platform models.Platform
	Status   int
	Message  string
	Err      error
}

func (e *APIError) Unwrap() error { return e.Err }

func (e *APIError) Error() string {
	return fmt.Sprintf("%s api: status %d: %s", e.Platform, e.Status, e.Message)
}

// Temporary reporta si vale la pena reintentar.
func (e *APIError) Temporary() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

func NewHTTPClient(timeout time.Duration) HTTPClient {
	return &http.Client{Timeout: timeout}
}

// errorBody is the error envelope shared by the Google and Graph APIs.
type errorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// redactURL quita la query (key=, access_token=) para que no llegue a logs ni respuestas.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparseable url>"
	}
	u.RawQuery, u.User = "", nil
	return u.String()
}

// transportError envuelve un fallo de red sin exponer credenciales.
func transportError(p models.Platform, err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		ue.URL = redactURL(ue.URL)
	}
	return &APIError{Platform: p, Status: http.StatusBadGateway, Message: err.Error(), Err: err}
}

func getJSON(ctx context.Context, c HTTPClient, p models.Platform, rawURL string, v any) error {
	if rawURL == "" {
		return errors.New("empty url")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%s api: build request for %s", p, redactURL(rawURL))
	}
	resp, err := c.Do(req)
	if err != nil {
		return transportError(p, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := resp.Status
		var eb errorBody
		if json.Unmarshal(b, &eb) == nil && eb.Error.Message != "" {
			msg = eb.Error.Message
		}
		return &APIError{Platform: p, Status: resp.StatusCode, Message: msg}
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
