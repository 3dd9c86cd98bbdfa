package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/tracklane/tracklane/internal/tracker/domain"
	"github.com/tracklane/tracklane/internal/tracker/service"
	"github.com/tracklane/tracklane/internal/tracker/store"
	"github.com/tracklane/tracklane/pkg/clockx"
	"github.com/tracklane/tracklane/pkg/httpx"
	"github.com/tracklane/tracklane/pkg/jwtx"
	"github.com/tracklane/tracklane/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	// Clock is injectable for handler tests; nil means the system clock.
	Clock clockx.Clock

	store         store.Store
	UserService   *service.UserService
	TokenService  *service.TokenService
	BoardService  *service.BoardService
	TaskService   *service.TaskService
	TimerService  *service.TimerService
	ReportService *service.ReportService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerBoards()
	r.registerTasks()
	r.registerTimer()
	r.registerReports()
	r.registerSystem()
}

// ServeHTTP implements http.Handler and applies the global middleware
// chain around the mux.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) clock() clockx.Clock {
	if r.Clock == nil {
		return clockx.System
	}
	return r.Clock
}

func (r *Router) authn() httpx.Middleware {
	return httpx.AuthnMiddleware(r.verifier)
}

func (r *Router) optionalAuthn() httpx.Middleware {
	return httpx.OptionalAuthnMiddleware(r.verifier)
}

// currentUser resolves the authenticated subject to its database row.
// Token claims alone are not trusted for authorisation; a user disabled
// after the token was minted gets cut off here.
func (r *Router) currentUser(w http.ResponseWriter, req *http.Request) (domain.User, bool) {
	userID := httpx.UserIDFromCtx(req.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "invalid_token", "missing subject")
		return domain.User{}, false
	}

	user, err := r.store.Users().GetUserByID(req.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "invalid_token", "unknown subject")
			return domain.User{}, false
		}
		respondServiceError(w, req, err)
		return domain.User{}, false
	}

	if !user.IsActive {
		writeError(w, http.StatusForbidden, "account_disabled", "")
		return domain.User{}, false
	}

	return user, true
}

// optionalUser is currentUser for optional-authn routes: anonymous
// requests come back as a zero User with ok=true.
func (r *Router) optionalUser(w http.ResponseWriter, req *http.Request) (domain.User, bool) {
	if httpx.UserIDFromCtx(req.Context()) == "" {
		return domain.User{}, true
	}
	return r.currentUser(w, req)
}
