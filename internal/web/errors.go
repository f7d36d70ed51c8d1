package web

// errors.go maps engine errors to HTTP responses. Every error is logged with
// its request ID and returned as JSON with a machine-readable code.

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/zjrosen/gridclip/internal/log"
	"github.com/zjrosen/gridclip/internal/paste"
	"github.com/zjrosen/gridclip/internal/serialize"
)

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// badRequestError marks malformed input.
type badRequestError struct {
	msg string
}

func (e *badRequestError) Error() string { return e.msg }

func badRequest(msg string) error { return &badRequestError{msg: msg} }

// statusFor classifies err.
func statusFor(err error) (int, string) {
	var (
		bad      *badRequestError
		parse    *paste.ParseAmbiguityError
		anchor   *paste.NoAnchorError
		locked   *paste.SchemaLockedError
		state    *paste.InvalidStateError
		write    *paste.CellWriteError
		limit    *paste.GrowthLimitError
		outOfGrd *serialize.OutOfGridError
	)
	switch {
	case errors.As(err, &bad):
		return http.StatusBadRequest, "bad_request"
	case errors.As(err, &parse):
		return http.StatusUnprocessableEntity, "parse_ambiguity"
	case errors.As(err, &write):
		return http.StatusUnprocessableEntity, "cell_write"
	case errors.As(err, &limit):
		return http.StatusUnprocessableEntity, "too_large"
	case errors.As(err, &locked):
		return http.StatusConflict, "schema_locked"
	case errors.As(err, &state):
		return http.StatusConflict, "invalid_state"
	case errors.As(err, &anchor):
		return http.StatusBadRequest, "no_anchor"
	case errors.As(err, &outOfGrd):
		return http.StatusBadRequest, "out_of_grid"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// respondError logs err and writes it as JSON.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	log.ErrorErr(log.CatWeb, "request error", err,
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"code", code,
		"request_id", middleware.GetReqID(r.Context()),
	)
	respondJSON(w, status, ErrorResponse{Error: err.Error(), Code: code})
}

// respondJSON writes v with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
