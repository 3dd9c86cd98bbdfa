package http

import (
	"net/http"

	"github.com/tracklane/tracklane/internal/tracker/service"
	"github.com/tracklane/tracklane/pkg/httpx"
)

func (r *Router) registerBoards() {
	h := &BoardsHandler{BoardService: r.BoardService, router: r}

	r.Mux.Handle("GET /v1/boards",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			r.authn(),
			httpx.RateLimitByUser(httpx.LenientLimit),
		))
	r.Mux.Handle("GET /v1/boards/public",
		httpx.Chain(http.HandlerFunc(h.HandleListPublic),
			httpx.RateLimitByIP(httpx.PublicLimit),
		))
	r.Mux.Handle("POST /v1/boards",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			r.authn(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		))

	// Board detail is optional-authn so anonymous readers can open public
	// boards; the access evaluator decides per board.
	r.Mux.Handle("GET /v1/boards/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			r.optionalAuthn(),
			httpx.RateLimitByUser(httpx.LenientLimit),
		))
	r.Mux.Handle("PATCH /v1/boards/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate),
			r.authn(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		))
	r.Mux.Handle("DELETE /v1/boards/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			r.authn(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		))
}

type BoardsHandler struct {
	BoardService *service.BoardService
	router       *Router
}

func (h *BoardsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, ok := h.router.currentUser(w, r)
	if !ok {
		return
	}

	boards, err := h.BoardService.List(r.Context(), user)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	out := make([]boardSummaryResponse, 0, len(boards))
	for _, b := range boards {
		out = append(out, toBoardSummaryResponse(b))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *BoardsHandler) HandleListPublic(w http.ResponseWriter, r *http.Request) {
	boards, err := h.BoardService.ListPublic(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	out := make([]boardSummaryResponse, 0, len(boards))
	for _, b := range boards {
		out = append(out, toBoardSummaryResponse(b))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *BoardsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := h.router.currentUser(w, r)
	if !ok {
		return
	}

	var req createBoardRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadJSON(w)
		return
	}

	board, err := h.BoardService.Create(r.Context(), user, req.Name, req.Description, req.IsPublic)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toBoardResponse(board))
}

func (h *BoardsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := h.router.optionalUser(w, r)
	if !ok {
		return
	}

	detail, err := h.BoardService.Get(r.Context(), user, r.PathValue("id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, boardDetailResponse{
		boardResponse: toBoardResponse(detail.Board),
		Tasks:         toTaskResponses(detail.Tasks),
	})
}

func (h *BoardsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := h.router.currentUser(w, r)
	if !ok {
		return
	}

	var req updateBoardRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadJSON(w)
		return
	}

	board, err := h.BoardService.Update(r.Context(), user, r.PathValue("id"), service.BoardUpdate{
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toBoardResponse(board))
}

func (h *BoardsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := h.router.currentUser(w, r)
	if !ok {
		return
	}

	count, err := h.BoardService.Delete(r.Context(), user, r.PathValue("id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, deleteBoardResponse{
		Deleted:      true,
		TasksDeleted: count,
	})
}
