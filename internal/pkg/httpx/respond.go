// Package httpx holds the JSON response helpers and middleware shared by
// every service router.
package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/marketplace/internal/pkg/apperr"
)

func init() {
	// Prices and amounts are JSON numbers on every response.
	decimal.MarshalJSONWithoutQuotes = true
}

type ErrorResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message,omitempty"`
	Constraint string `json:"constraint,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, code, msg string) {
	WriteJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}

// WriteAppError translates err through the apperr taxonomy. Internal causes
// are logged, never written to the body.
func WriteAppError(w http.ResponseWriter, r *http.Request, err error) {
	e := apperr.As(err)
	if e.Kind == apperr.KindInternal {
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
	}
	WriteJSON(w, e.Kind.Status(), ErrorResponse{
		Error:      e.Kind.Code(),
		Message:    e.Message,
		Constraint: e.Constraint,
	})
}

// DecodeJSON decodes the request body into v, rejecting unknown shapes with
// a BadRequest.
func DecodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.BadRequest("Invalid JSON body")
	}
	return nil
}

// Health reports process liveness only.
func Health(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// NotFound is the router fallback.
func NotFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusNotFound, "not_found", "Not Found")
}
