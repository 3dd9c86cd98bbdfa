package http

import (
	"net/http"
	"time"

	"github.com/tracklane/tracklane/pkg/httpx"
)

func (r *Router) registerSystem() {
	r.Mux.HandleFunc("GET /livez", r.handleLivez)
	r.Mux.HandleFunc("GET /readyz", r.handleReadyz)
}

// handleLivez always answers 200 while the process is up.
func (r *Router) handleLivez(w http.ResponseWriter, req *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Uptime:  time.Since(r.startTime).String(),
		Version: r.buildVersion,
	})
}

// handleReadyz additionally verifies the database connection.
func (r *Router) handleReadyz(w http.ResponseWriter, req *http.Request) {
	checks := map[string]string{"database": "ok"}
	status := "ok"
	code := http.StatusOK

	if err := r.store.Ping(req.Context()); err != nil {
		checks["database"] = "error: " + err.Error()
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	httpx.WriteJSON(w, code, healthResponse{
		Status:  status,
		Uptime:  time.Since(r.startTime).String(),
		Version: r.buildVersion,
		Checks:  checks,
	})
}
