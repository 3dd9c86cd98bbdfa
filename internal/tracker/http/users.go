package http

import (
	"net/http"
	"strconv"

	"github.com/tracklane/tracklane/internal/tracker/domain"
	"github.com/tracklane/tracklane/internal/tracker/service"
	"github.com/tracklane/tracklane/pkg/httpx"
)

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService, router: r}

	r.Mux.Handle("GET /v1/users/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			r.authn(),
			httpx.RateLimitByUser(httpx.LenientLimit),
		))
	r.Mux.Handle("PATCH /v1/users/me",
		httpx.Chain(http.HandlerFunc(h.HandleUpdateMe),
			r.authn(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		))
	r.Mux.Handle("POST /v1/users/me/password",
		httpx.Chain(http.HandlerFunc(h.HandleChangePassword),
			r.authn(),
			httpx.RateLimitByUser(httpx.StrictLimit),
		))

	// Admin-only user management.
	admin := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			r.authn(),
			httpx.RequireRole(domain.RoleAdmin),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}
	r.Mux.Handle("GET /v1/users", admin(http.HandlerFunc(h.HandleList)))
	r.Mux.Handle("GET /v1/users/{id}", admin(http.HandlerFunc(h.HandleGet)))
	r.Mux.Handle("PATCH /v1/users/{id}", admin(http.HandlerFunc(h.HandleUpdate)))
	r.Mux.Handle("DELETE /v1/users/{id}", admin(http.HandlerFunc(h.HandleDelete)))
}

type UsersHandler struct {
	UserService *service.UserService
	router      *Router
}

func (h *UsersHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := h.router.currentUser(w, r)
	if !ok {
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleUpdateMe lets a user edit their own profile. Role and active
// changes stay admin-only regardless of what the body carries.
func (h *UsersHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	user, ok := h.router.currentUser(w, r)
	if !ok {
		return
	}

	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadJSON(w)
		return
	}

	if req.Role != nil || req.IsActive != nil {
		writeError(w, http.StatusForbidden, "forbidden", "role and active status are admin managed")
		return
	}

	updated, err := h.UserService.UpdateUser(r.Context(), user.ID, service.UpdateRequest{
		Email:    req.Email,
		FullName: req.FullName,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(updated))
}

func (h *UsersHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := h.router.currentUser(w, r)
	if !ok {
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadJSON(w)
		return
	}
	if req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "new_password is required")
		return
	}

	if err := h.UserService.ChangePassword(r.Context(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)
	offset, _ := strconv.ParseInt(r.URL.Query().Get("offset"), 10, 64)

	users, err := h.UserService.ListUsers(r.Context(), limit, offset)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.UserService.GetUserByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadJSON(w)
		return
	}

	user, err := h.UserService.UpdateUser(r.Context(), r.PathValue("id"), service.UpdateRequest{
		Email:    req.Email,
		FullName: req.FullName,
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.router.currentUser(w, r)
	if !ok {
		return
	}

	if err := h.UserService.DeleteUser(r.Context(), actor.ID, r.PathValue("id")); err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
