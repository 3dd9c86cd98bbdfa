package http

import (
	"net/http"
	"time"

	"github.com/tracklane/tracklane/internal/tracker/service"
	"github.com/tracklane/tracklane/pkg/clockx"
	"github.com/tracklane/tracklane/pkg/httpx"
)

func (r *Router) registerReports() {
	h := &ReportsHandler{ReportService: r.ReportService, Clock: r.clock(), router: r}

	read := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			r.authn(),
			httpx.RateLimitByUser(httpx.LenientLimit),
		)
	}
	r.Mux.Handle("GET /v1/reports/daily", read(http.HandlerFunc(h.HandleDaily)))
	r.Mux.Handle("GET /v1/reports/range", read(http.HandlerFunc(h.HandleRange)))
	r.Mux.Handle("GET /v1/reports/tasks", read(http.HandlerFunc(h.HandleByTask)))
	r.Mux.Handle("GET /v1/reports/summary", read(http.HandlerFunc(h.HandleSummary)))
}

type ReportsHandler struct {
	ReportService *service.ReportService
	Clock         clockx.Clock
	router        *Router
}

// HandleDaily reports one day, defaulting to today (UTC).
func (h *ReportsHandler) HandleDaily(w http.ResponseWriter, r *http.Request) {
	user, ok := h.router.currentUser(w, r)
	if !ok {
		return
	}

	date := h.Clock.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "date must be YYYY-MM-DD")
			return
		}
		date = parsed
	}

	report, err := h.ReportService.Daily(r.Context(), user.ID, date)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	entries := make([]timeEntryResponse, 0, len(report.Entries))
	for _, e := range report.Entries {
		entries = append(entries, toTimeEntryResponse(e))
	}
	httpx.WriteJSON(w, http.StatusOK, dailyReportResponse{
		Date:         report.Date,
		TotalSeconds: report.TotalSeconds,
		Entries:      entries,
	})
}

func (h *ReportsHandler) HandleRange(w http.ResponseWriter, r *http.Request) {
	user, ok := h.router.currentUser(w, r)
	if !ok {
		return
	}

	start, end, ok := h.parseRange(w, r)
	if !ok {
		return
	}

	report, err := h.ReportService.Range(r.Context(), user.ID, start, end)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	days := make([]dayBucketResponse, 0, len(report.Days))
	for _, d := range report.Days {
		days = append(days, dayBucketResponse{
			Date:         d.Date,
			TotalSeconds: d.TotalSeconds,
			EntryCount:   d.EntryCount,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, rangeReportResponse{
		Start:        report.Start,
		End:          report.End,
		TotalSeconds: report.TotalSeconds,
		Days:         days,
	})
}

func (h *ReportsHandler) HandleByTask(w http.ResponseWriter, r *http.Request) {
	user, ok := h.router.currentUser(w, r)
	if !ok {
		return
	}

	start, end, ok := h.parseRange(w, r)
	if !ok {
		return
	}

	reports, err := h.ReportService.ByTask(r.Context(), user.ID, start, end)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	out := make([]taskReportResponse, 0, len(reports))
	for _, t := range reports {
		out = append(out, taskReportResponse{
			TaskID:       t.TaskID,
			Title:        t.Title,
			TotalSeconds: t.TotalSeconds,
			EntryCount:   t.EntryCount,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *ReportsHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	user, ok := h.router.currentUser(w, r)
	if !ok {
		return
	}

	start, end, ok := h.parseRange(w, r)
	if !ok {
		return
	}

	report, err := h.ReportService.Summary(r.Context(), user.ID, start, end)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, summaryReportResponse{
		Start:            report.Start,
		End:              report.End,
		TotalSeconds:     report.TotalSeconds,
		TaskCount:        report.TaskCount,
		EntryCount:       report.EntryCount,
		AvgSecondsPerDay: report.AvgSecondsPerDay,
	})
}

// parseRange reads start/end query params; both default to today so a
// bare request acts as a one-day report.
func (h *ReportsHandler) parseRange(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	now := h.Clock.Now()
	start, end := now, now

	q := r.URL.Query()
	if raw := q.Get("start"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "start must be YYYY-MM-DD")
			return time.Time{}, time.Time{}, false
		}
		start = parsed
	}
	if raw := q.Get("end"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "end must be YYYY-MM-DD")
			return time.Time{}, time.Time{}, false
		}
		end = parsed
	}

	return start, end, true
}
