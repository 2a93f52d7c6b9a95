package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bobmcallan/quotevault/internal/models"
)

// errorResponse is the JSON error envelope
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status
func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

// writeError maps a service error onto the HTTP status taxonomy:
// unknown tickers are 404, bad input is 400, upstream provider failures
// surface as 502. Anything else is a 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		notFound   *models.NotFoundError
		validation *models.ValidationError
		fetch      *models.ProviderFetchError
	)

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	case errors.As(err, &validation):
		status = http.StatusBadRequest
	case errors.As(err, &fetch):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
	}

	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

// requireMethod enforces the HTTP method, answering 405 otherwise
func (s *Server) requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		s.writeJSON(w, http.StatusMethodNotAllowed, errorResponse{
			Error: fmt.Sprintf("method %s not allowed", r.Method),
		})
		return false
	}
	return true
}

// decodeJSON decodes a request body into dst
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &models.ValidationError{Field: "body", Message: err.Error()}
	}
	return nil
}

// parseDateParam parses an optional yyyy-mm-dd query parameter. An absent
// parameter returns the zero time.
func parseDateParam(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, &models.ValidationError{Field: name, Message: "expected yyyy-mm-dd"}
	}
	return t, nil
}
