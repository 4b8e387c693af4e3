package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/wayfarerhq/tours-api/internal/application"
)

// Handler is the HTTP adapter entrypoint. It holds the application service,
// the session transport, and the fatal hook invoked on unexpected faults.
type Handler struct {
	service   *application.Service
	transport *SessionTransport
	fatal     func(reason any)
}

// NewHandler wires the adapter. fatal may be nil in tests; in production it
// initiates shutdown so a supervisor restarts the process.
func NewHandler(service *application.Service, transport *SessionTransport, fatal func(reason any)) *Handler {
	return &Handler{service: service, transport: transport, fatal: fatal}
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON value")
	}
	return nil
}

// requestOrigin reconstructs the externally visible scheme://host of the
// request, honoring the proxy header, for links embedded in outbound mail.
func requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}
