package http

import (
	"net/http"

	"github.com/tracklane/tracklane/internal/tracker/domain"
	"github.com/tracklane/tracklane/internal/tracker/service"
	"github.com/tracklane/tracklane/pkg/httpx"
)

func (r *Router) registerTasks() {
	h := &TasksHandler{TaskService: r.TaskService, router: r}

	r.Mux.Handle("GET /v1/boards/{id}/tasks",
		httpx.Chain(http.HandlerFunc(h.HandleListByBoard),
			r.optionalAuthn(),
			httpx.RateLimitByUser(httpx.LenientLimit),
		))
	r.Mux.Handle("POST /v1/boards/{id}/tasks",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			r.authn(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		))

	// Literal route wins over {id} on the stdlib mux.
	r.Mux.Handle("GET /v1/tasks/assigned",
		httpx.Chain(http.HandlerFunc(h.HandleListAssigned),
			r.authn(),
			httpx.RateLimitByUser(httpx.LenientLimit),
		))
	r.Mux.Handle("GET /v1/tasks/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			r.optionalAuthn(),
			httpx.RateLimitByUser(httpx.LenientLimit),
		))
	r.Mux.Handle("PATCH /v1/tasks/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate),
			r.authn(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		))
	r.Mux.Handle("POST /v1/tasks/{id}/move",
		httpx.Chain(http.HandlerFunc(h.HandleMove),
			r.authn(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		))
	r.Mux.Handle("POST /v1/tasks/{id}/assign",
		httpx.Chain(http.HandlerFunc(h.HandleAssign),
			r.authn(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		))
	r.Mux.Handle("DELETE /v1/tasks/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			r.authn(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		))
}

type TasksHandler struct {
	TaskService *service.TaskService
	router      *Router
}

func (h *TasksHandler) HandleListByBoard(w http.ResponseWriter, r *http.Request) {
	user, ok := h.router.optionalUser(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	tasks, err := h.TaskService.ListByBoard(r.Context(), user, r.PathValue("id"), service.TaskFilter{
		Status:   domain.Status(q.Get("status")),
		Assignee: q.Get("assignee"),
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toTaskResponses(tasks))
}

func (h *TasksHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := h.router.currentUser(w, r)
	if !ok {
		return
	}

	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadJSON(w)
		return
	}

	task, err := h.TaskService.Create(r.Context(), user, r.PathValue("id"), service.CreateTaskRequest{
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.Status(req.Status),
		Priority:    domain.Priority(req.Priority),
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toTaskResponse(task))
}

// HandleListAssigned returns the caller's assigned tasks; admins see
// everything.
func (h *TasksHandler) HandleListAssigned(w http.ResponseWriter, r *http.Request) {
	user, ok := h.router.currentUser(w, r)
	if !ok {
		return
	}

	tasks, err := h.TaskService.ListAssigned(r.Context(), user)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toTaskResponses(tasks))
}

func (h *TasksHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := h.router.optionalUser(w, r)
	if !ok {
		return
	}

	task, err := h.TaskService.Get(r.Context(), user, r.PathValue("id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toTaskResponse(task))
}

func (h *TasksHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := h.router.currentUser(w, r)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadJSON(w)
		return
	}

	upd := service.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		ClearDue:    req.ClearDue,
	}
	if req.Priority != nil {
		p := domain.Priority(*req.Priority)
		upd.Priority = &p
	}

	task, err := h.TaskService.Update(r.Context(), user, r.PathValue("id"), upd)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toTaskResponse(task))
}

func (h *TasksHandler) HandleMove(w http.ResponseWriter, r *http.Request) {
	user, ok := h.router.currentUser(w, r)
	if !ok {
		return
	}

	var req moveTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadJSON(w)
		return
	}

	task, err := h.TaskService.Move(r.Context(), user, r.PathValue("id"), domain.Status(req.Status), req.Position)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toTaskResponse(task))
}

func (h *TasksHandler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	user, ok := h.router.currentUser(w, r)
	if !ok {
		return
	}

	var req assignTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadJSON(w)
		return
	}

	task, err := h.TaskService.Assign(r.Context(), user, r.PathValue("id"), req.AssigneeID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toTaskResponse(task))
}

func (h *TasksHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := h.router.currentUser(w, r)
	if !ok {
		return
	}

	if err := h.TaskService.Delete(r.Context(), user, r.PathValue("id")); err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
