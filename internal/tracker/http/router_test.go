package http

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tracklane/tracklane/internal/tracker/service"
	"github.com/tracklane/tracklane/internal/tracker/store"
	"github.com/tracklane/tracklane/internal/tracker/store/drivers/sqlite"
	"github.com/tracklane/tracklane/pkg/clockx"
	"github.com/tracklane/tracklane/pkg/idx"
	"github.com/tracklane/tracklane/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	*httptest.Server
	clock *clockx.Fixed
	st    store.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	signer, err := jwtx.NewSigner(idx.New().String(), priv)
	require.NoError(t, err)

	clock := clockx.NewFixed(time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := NewRouter(jwtx.VerifierForSigner("test-issuer", signer), "test", st, logger)
	router.Clock = clock
	router.UserService = &service.UserService{Store: st}
	router.TokenService = &service.TokenService{Signer: signer, Issuer: "test-issuer", Clock: clockx.System}
	router.BoardService = &service.BoardService{Store: st}
	router.TaskService = &service.TaskService{Store: st}
	router.TimerService = &service.TimerService{Store: st, Clock: clock}
	router.ReportService = &service.ReportService{Store: st}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, clock: clock, st: st}
}

// do issues a JSON request and decodes the response body into out when
// out is non-nil.
func (s *testServer) do(t *testing.T, method, path, token string, body, out any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, s.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func (s *testServer) register(t *testing.T, username, password string) tokenResponse {
	t.Helper()

	var tok tokenResponse
	resp := s.do(t, http.MethodPost, "/v1/auth/register", "", registerRequest{
		Username: username,
		Password: password,
	}, &tok)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return tok
}

func TestRegisterAndLoginFlow(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	reg := srv.register(t, "alice", "correct horse")
	require.NotEmpty(t, reg.AccessToken)
	require.Equal(t, "Bearer", reg.TokenType)
	require.Equal(t, "alice", reg.User.Username)

	t.Run("login returns a working token", func(t *testing.T) {
		var tok tokenResponse
		resp := srv.do(t, http.MethodPost, "/v1/auth/login", "", loginRequest{
			Username: "alice", Password: "correct horse",
		}, &tok)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var me userResponse
		resp = srv.do(t, http.MethodGet, "/v1/users/me", tok.AccessToken, nil, &me)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "alice", me.Username)
	})

	t.Run("bad password is 401", func(t *testing.T) {
		resp := srv.do(t, http.MethodPost, "/v1/auth/login", "", loginRequest{
			Username: "alice", Password: "wrong",
		}, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("duplicate username is 409", func(t *testing.T) {
		resp := srv.do(t, http.MethodPost, "/v1/auth/register", "", registerRequest{
			Username: "alice", Password: "whatever",
		}, nil)
		require.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("no token is 401", func(t *testing.T) {
		resp := srv.do(t, http.MethodGet, "/v1/users/me", "", nil, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestBoardAccessOverHTTP(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	owner := srv.register(t, "owner", "password one")
	stranger := srv.register(t, "stranger", "password two")

	var private boardResponse
	resp := srv.do(t, http.MethodPost, "/v1/boards", owner.AccessToken,
		createBoardRequest{Name: "secret plans"}, &private)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var public boardResponse
	resp = srv.do(t, http.MethodPost, "/v1/boards", owner.AccessToken,
		createBoardRequest{Name: "open roadmap", IsPublic: true}, &public)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	t.Run("stranger gets 403 on the private board", func(t *testing.T) {
		resp := srv.do(t, http.MethodGet, "/v1/boards/"+private.ID, stranger.AccessToken, nil, nil)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("anonymous reads the public board", func(t *testing.T) {
		var detail boardDetailResponse
		resp := srv.do(t, http.MethodGet, "/v1/boards/"+public.ID, "", nil, &detail)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "open roadmap", detail.Name)
	})

	t.Run("anonymous cannot see the private board", func(t *testing.T) {
		resp := srv.do(t, http.MethodGet, "/v1/boards/"+private.ID, "", nil, nil)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("stranger cannot write the public board", func(t *testing.T) {
		name := "defaced"
		resp := srv.do(t, http.MethodPatch, "/v1/boards/"+public.ID, stranger.AccessToken,
			updateBoardRequest{Name: &name}, nil)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("missing board is 404", func(t *testing.T) {
		resp := srv.do(t, http.MethodGet, "/v1/boards/ghost", owner.AccessToken, nil, nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestTaskLifecycleOverHTTP(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	owner := srv.register(t, "owner", "password one")

	var board boardResponse
	resp := srv.do(t, http.MethodPost, "/v1/boards", owner.AccessToken,
		createBoardRequest{Name: "sprint"}, &board)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var first, second taskResponse
	resp = srv.do(t, http.MethodPost, "/v1/boards/"+board.ID+"/tasks", owner.AccessToken,
		createTaskRequest{Title: "first"}, &first)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, int64(0), first.Position)

	resp = srv.do(t, http.MethodPost, "/v1/boards/"+board.ID+"/tasks", owner.AccessToken,
		createTaskRequest{Title: "second"}, &second)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, int64(1), second.Position)

	t.Run("move to a new lane appends", func(t *testing.T) {
		var moved taskResponse
		resp := srv.do(t, http.MethodPost, "/v1/tasks/"+first.ID+"/move", owner.AccessToken,
			moveTaskRequest{Status: "in_progress"}, &moved)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "in_progress", moved.Status)
		require.Equal(t, int64(0), moved.Position)
	})

	t.Run("assign to owner", func(t *testing.T) {
		var assigned taskResponse
		resp := srv.do(t, http.MethodPost, "/v1/tasks/"+second.ID+"/assign", owner.AccessToken,
			assignTaskRequest{AssigneeID: &owner.User.ID}, &assigned)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.NotNil(t, assigned.AssigneeID)

		var mine []taskResponse
		resp = srv.do(t, http.MethodGet, "/v1/tasks/assigned", owner.AccessToken, nil, &mine)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, mine, 1)
	})

	t.Run("bogus status is 400", func(t *testing.T) {
		resp := srv.do(t, http.MethodPost, "/v1/tasks/"+second.ID+"/move", owner.AccessToken,
			moveTaskRequest{Status: "limbo"}, nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("delete", func(t *testing.T) {
		resp := srv.do(t, http.MethodDelete, "/v1/tasks/"+second.ID, owner.AccessToken, nil, nil)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp = srv.do(t, http.MethodGet, "/v1/tasks/"+second.ID, owner.AccessToken, nil, nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestTimerOverHTTP(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	user := srv.register(t, "alice", "password one")

	var board boardResponse
	resp := srv.do(t, http.MethodPost, "/v1/boards", user.AccessToken,
		createBoardRequest{Name: "work"}, &board)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var task taskResponse
	resp = srv.do(t, http.MethodPost, "/v1/boards/"+board.ID+"/tasks", user.AccessToken,
		createTaskRequest{Title: "deep work"}, &task)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	t.Run("current while idle is 204", func(t *testing.T) {
		resp := srv.do(t, http.MethodGet, "/v1/timer/current", user.AccessToken, nil, nil)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("stop while idle is 409", func(t *testing.T) {
		resp := srv.do(t, http.MethodPost, "/v1/timer/stop", user.AccessToken, nil, nil)
		require.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	var entry timeEntryResponse
	resp = srv.do(t, http.MethodPost, "/v1/timer/start", user.AccessToken,
		startTimerRequest{TaskID: task.ID, Note: "focus"}, &entry)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.True(t, entry.Running)

	t.Run("double start is 409", func(t *testing.T) {
		resp := srv.do(t, http.MethodPost, "/v1/timer/start", user.AccessToken,
			startTimerRequest{TaskID: task.ID}, nil)
		require.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("unknown task is 404", func(t *testing.T) {
		// Stop first so the 404 is about the task, not the running timer.
		srv.clock.Advance(90 * time.Second)
		var stopped timeEntryResponse
		resp := srv.do(t, http.MethodPost, "/v1/timer/stop", user.AccessToken, nil, &stopped)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.NotNil(t, stopped.DurationSeconds)
		require.Equal(t, int64(90), *stopped.DurationSeconds)

		resp = srv.do(t, http.MethodPost, "/v1/timer/start", user.AccessToken,
			startTimerRequest{TaskID: "ghost"}, nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestReportsOverHTTP(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	user := srv.register(t, "alice", "password one")

	var board boardResponse
	resp := srv.do(t, http.MethodPost, "/v1/boards", user.AccessToken,
		createBoardRequest{Name: "work"}, &board)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var task taskResponse
	resp = srv.do(t, http.MethodPost, "/v1/boards/"+board.ID+"/tasks", user.AccessToken,
		createTaskRequest{Title: "tracked"}, &task)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// One hour of work on the fixed clock's day.
	resp = srv.do(t, http.MethodPost, "/v1/timer/start", user.AccessToken,
		startTimerRequest{TaskID: task.ID}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	srv.clock.Advance(time.Hour)
	resp = srv.do(t, http.MethodPost, "/v1/timer/stop", user.AccessToken, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	t.Run("daily", func(t *testing.T) {
		var report dailyReportResponse
		resp := srv.do(t, http.MethodGet, "/v1/reports/daily?date=2024-03-15", user.AccessToken, nil, &report)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, int64(3600), report.TotalSeconds)
		require.Len(t, report.Entries, 1)
	})

	t.Run("range with zero days", func(t *testing.T) {
		var report rangeReportResponse
		resp := srv.do(t, http.MethodGet,
			"/v1/reports/range?start=2024-03-14&end=2024-03-16", user.AccessToken, nil, &report)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, report.Days, 3)
		require.Equal(t, int64(3600), report.TotalSeconds)
		require.Equal(t, int64(0), report.Days[0].TotalSeconds)
		require.Equal(t, int64(3600), report.Days[1].TotalSeconds)
	})

	t.Run("summary", func(t *testing.T) {
		var report summaryReportResponse
		resp := srv.do(t, http.MethodGet,
			"/v1/reports/summary?start=2024-03-14&end=2024-03-15", user.AccessToken, nil, &report)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, int64(3600), report.TotalSeconds)
		require.Equal(t, int64(1), report.TaskCount)
		require.Equal(t, float64(1800), report.AvgSecondsPerDay)
	})

	t.Run("inverted range is 400", func(t *testing.T) {
		resp := srv.do(t, http.MethodGet,
			"/v1/reports/range?start=2024-03-16&end=2024-03-14", user.AccessToken, nil, nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("malformed date is 400", func(t *testing.T) {
		resp := srv.do(t, http.MethodGet,
			"/v1/reports/daily?date=15-03-2024", user.AccessToken, nil, nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestAdminEndpoints(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	plain := srv.register(t, "alice", "password one")

	// Promote a second account directly through the service layer; the
	// API has no self-service path to admin.
	adminTok := srv.register(t, "root", "password two")
	roleAdmin := "admin"
	_, err := (&service.UserService{Store: srv.st}).UpdateUser(
		context.Background(), adminTok.User.ID, service.UpdateRequest{Role: &roleAdmin})
	require.NoError(t, err)

	// Token still carries the old role claim; re-login picks up admin.
	var tok tokenResponse
	resp := srv.do(t, http.MethodPost, "/v1/auth/login", "", loginRequest{
		Username: "root", Password: "password two",
	}, &tok)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	t.Run("plain user denied", func(t *testing.T) {
		resp := srv.do(t, http.MethodGet, "/v1/users", plain.AccessToken, nil, nil)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("admin lists users", func(t *testing.T) {
		var users []userResponse
		resp := srv.do(t, http.MethodGet, "/v1/users", tok.AccessToken, nil, &users)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, users, 2)
	})

	t.Run("admin cannot delete self", func(t *testing.T) {
		resp := srv.do(t, http.MethodDelete, "/v1/users/"+tok.User.ID, tok.AccessToken, nil, nil)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}
