package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"khata/internal/core"
	"khata/internal/storage"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain errors onto HTTP statuses: missing records to 404,
// name collisions to 409, everything else to 500. Validation failures are
// handled at the decode site with writeValidationError.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, storage.ErrDuplicateName):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"error", err, "method", r.Method, "path", r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// isValidationError reports whether a service error originated in domain
// validation, so handlers that call services after their own parsing can
// still answer 422 instead of 500.
func isValidationError(err error) bool {
	return errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrMissingDate) ||
		errors.Is(err, core.ErrEmptyName) ||
		errors.Is(err, core.ErrInvalidMethod) ||
		errors.Is(err, core.ErrInvalidStatus)
}

func writeValidationError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
}

// decodeJSON reads a JSON request body with a 1 MiB cap.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// parseDateField parses an ISO date, naming the field in the error.
func parseDateField(field, value string) (core.Date, error) {
	if strings.TrimSpace(value) == "" {
		return core.Date{}, fmt.Errorf("%s: %w", field, core.ErrMissingDate)
	}
	d, err := core.ParseDate(value)
	if err != nil {
		return core.Date{}, fmt.Errorf("%s: invalid date %q", field, value)
	}
	return d, nil
}
