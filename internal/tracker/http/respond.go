package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tracklane/tracklane/internal/tracker/service"
	"github.com/tracklane/tracklane/pkg/httpx"
	"github.com/tracklane/tracklane/pkg/slogx"
)

func writeError(w http.ResponseWriter, status int, code, desc string) {
	httpx.WriteJSON(w, status, ErrorResponse{Error: code, ErrorDescription: desc})
}

// respondServiceError maps service sentinels onto HTTP statuses. Anything
// unmapped is a 500 and gets logged; the body stays generic so internals
// never leak to clients.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrBoardNotFound),
		errors.Is(err, service.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, err.Error(), "")

	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrTimerForbidden),
		errors.Is(err, service.ErrAccountDisabled),
		errors.Is(err, service.ErrSelfDelete):
		writeError(w, http.StatusForbidden, err.Error(), "")

	case errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrTimerRunning),
		errors.Is(err, service.ErrNoTimerRunning),
		errors.Is(err, service.ErrTimerTaskMismatch):
		writeError(w, http.StatusConflict, err.Error(), "")

	case errors.Is(err, service.ErrBoardInvalid),
		errors.Is(err, service.ErrTaskInvalid),
		errors.Is(err, service.ErrAssigneeInvalid),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrInvalidRange):
		writeError(w, http.StatusBadRequest, err.Error(), "")

	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error(), "")

	default:
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "")
	}
}

// decodeJSON parses the request body into v, rejecting unknown fields so
// client typos fail loudly instead of silently no-opping.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func respondBadJSON(w http.ResponseWriter) {
	writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
}
