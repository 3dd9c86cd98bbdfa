package http

import (
	"net/http"

	"github.com/tracklane/tracklane/internal/tracker/service"
	"github.com/tracklane/tracklane/pkg/httpx"
)

func (r *Router) registerTimer() {
	h := &TimerHandler{TimerService: r.TimerService, router: r}

	r.Mux.Handle("POST /v1/timer/start",
		httpx.Chain(http.HandlerFunc(h.HandleStart),
			r.authn(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		))
	r.Mux.Handle("POST /v1/timer/stop",
		httpx.Chain(http.HandlerFunc(h.HandleStop),
			r.authn(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		))

	// Frontends poll this, hence the lenient limit.
	r.Mux.Handle("GET /v1/timer/current",
		httpx.Chain(http.HandlerFunc(h.HandleCurrent),
			r.authn(),
			httpx.RateLimitByUser(httpx.LenientLimit),
		))
}

type TimerHandler struct {
	TimerService *service.TimerService
	router       *Router
}

func (h *TimerHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	user, ok := h.router.currentUser(w, r)
	if !ok {
		return
	}

	var req startTimerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadJSON(w)
		return
	}
	if req.TaskID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "task_id is required")
		return
	}

	entry, err := h.TimerService.Start(r.Context(), user, req.TaskID, req.Note)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toTimeEntryResponse(entry))
}

func (h *TimerHandler) HandleStop(w http.ResponseWriter, r *http.Request) {
	user, ok := h.router.currentUser(w, r)
	if !ok {
		return
	}

	// Empty body means "stop whatever is running".
	var req stopTimerRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondBadJSON(w)
			return
		}
	}

	entry, err := h.TimerService.Stop(r.Context(), user, req.TaskID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toTimeEntryResponse(entry))
}

// HandleCurrent returns the running entry or 204 when idle. Idle is not
// an error from the client's point of view.
func (h *TimerHandler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	user, ok := h.router.currentUser(w, r)
	if !ok {
		return
	}

	entry, err := h.TimerService.Running(r.Context(), user)
	if err != nil {
		if err == service.ErrNoTimerRunning {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		respondServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toTimeEntryResponse(entry))
}
