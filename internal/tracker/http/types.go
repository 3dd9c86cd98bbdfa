package http

import (
	"time"

	"github.com/tracklane/tracklane/internal/tracker/domain"
	"github.com/tracklane/tracklane/internal/tracker/service"
)

// ErrorResponse is the JSON error body shared by every endpoint.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

type registerRequest struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	Email    *string `json:"email,omitempty"`
	FullName string  `json:"full_name,omitempty"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	User        userResponse `json:"user"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     *string   `json:"email,omitempty"`
	FullName  string    `json:"full_name,omitempty"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type updateUserRequest struct {
	Email    *string `json:"email,omitempty"`
	FullName *string `json:"full_name,omitempty"`
	Role     *string `json:"role,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type boardResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsPublic    bool      `json:"is_public"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toBoardResponse(b domain.Board) boardResponse {
	return boardResponse{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		IsPublic:    b.IsPublic,
		OwnerID:     b.OwnerID,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

type boardSummaryResponse struct {
	boardResponse
	OwnerName  string `json:"owner_name"`
	TasksCount int64  `json:"tasks_count"`
}

func toBoardSummaryResponse(s service.BoardSummary) boardSummaryResponse {
	return boardSummaryResponse{
		boardResponse: toBoardResponse(s.Board),
		OwnerName:     s.OwnerName,
		TasksCount:    s.TasksCount,
	}
}

type boardDetailResponse struct {
	boardResponse
	Tasks []taskResponse `json:"tasks"`
}

type createBoardRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsPublic    bool   `json:"is_public,omitempty"`
}

type updateBoardRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IsPublic    *bool   `json:"is_public,omitempty"`
}

type deleteBoardResponse struct {
	Deleted      bool  `json:"deleted"`
	TasksDeleted int64 `json:"tasks_deleted"`
}

type taskResponse struct {
	ID          string     `json:"id"`
	BoardID     string     `json:"board_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Position    int64      `json:"position"`
	AssigneeID  *string    `json:"assignee_id,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toTaskResponse(t domain.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		BoardID:     t.BoardID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		Position:    t.Position,
		AssigneeID:  t.AssigneeID,
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toTaskResponses(tasks []domain.Task) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	return out
}

type createTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	AssigneeID  *string    `json:"assignee_id,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

type updateTaskRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	ClearDue    bool       `json:"clear_due,omitempty"`
}

type moveTaskRequest struct {
	Status   string `json:"status"`
	Position *int64 `json:"position,omitempty"`
}

type assignTaskRequest struct {
	AssigneeID *string `json:"assignee_id"`
}

type timeEntryResponse struct {
	ID              string     `json:"id"`
	TaskID          string     `json:"task_id"`
	UserID          string     `json:"user_id"`
	StartedAt       time.Time  `json:"started_at"`
	StoppedAt       *time.Time `json:"stopped_at,omitempty"`
	DurationSeconds *int64     `json:"duration_seconds,omitempty"`
	Note            string     `json:"note,omitempty"`
	Running         bool       `json:"running"`
}

func toTimeEntryResponse(e domain.TimeEntry) timeEntryResponse {
	return timeEntryResponse{
		ID:              e.ID,
		TaskID:          e.TaskID,
		UserID:          e.UserID,
		StartedAt:       e.StartedAt,
		StoppedAt:       e.StoppedAt,
		DurationSeconds: e.DurationSeconds,
		Note:            e.Note,
		Running:         e.Running(),
	}
}

type startTimerRequest struct {
	TaskID string `json:"task_id"`
	Note   string `json:"note,omitempty"`
}

type stopTimerRequest struct {
	TaskID string `json:"task_id,omitempty"`
}

type dailyReportResponse struct {
	Date         string              `json:"date"`
	TotalSeconds int64               `json:"total_seconds"`
	Entries      []timeEntryResponse `json:"entries"`
}

type dayBucketResponse struct {
	Date         string `json:"date"`
	TotalSeconds int64  `json:"total_seconds"`
	EntryCount   int64  `json:"entry_count"`
}

type rangeReportResponse struct {
	Start        string              `json:"start"`
	End          string              `json:"end"`
	TotalSeconds int64               `json:"total_seconds"`
	Days         []dayBucketResponse `json:"days"`
}

type taskReportResponse struct {
	TaskID       string `json:"task_id"`
	Title        string `json:"title"`
	TotalSeconds int64  `json:"total_seconds"`
	EntryCount   int64  `json:"entry_count"`
}

type summaryReportResponse struct {
	Start            string  `json:"start"`
	End              string  `json:"end"`
	TotalSeconds     int64   `json:"total_seconds"`
	TaskCount        int64   `json:"task_count"`
	EntryCount       int64   `json:"entry_count"`
	AvgSecondsPerDay float64 `json:"avg_seconds_per_day"`
}

type healthResponse struct {
	Status  string            `json:"status"`
	Uptime  string            `json:"uptime"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}
