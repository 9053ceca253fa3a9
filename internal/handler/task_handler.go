package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/taskman/internal/middleware"
	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/repository"
	"github.com/hitoshi/taskman/internal/task"
)

// TaskServiceInterface はタスクハンドラーが必要とするサービスインターフェース。
type TaskServiceInterface interface {
	// Create は新規タスクを作成する。
	Create(ctx context.Context, ownerID string, in task.CreateInput) (*model.Task, error)
	// List は所有タスクの一覧をフィルタ付きで返す。
	List(ctx context.Context, ownerID string, filter repository.TaskFilter) ([]*model.Task, error)
	// Get はタスクを所有権検査付きで取得する。
	Get(ctx context.Context, ownerID, taskID string) (*model.Task, error)
	// Update はタスクを部分更新する。
	Update(ctx context.Context, ownerID, taskID string, in task.UpdateInput) (*model.Task, error)
	// Delete はタスクを所有権検査付きで削除する。
	Delete(ctx context.Context, ownerID, taskID string) error
	// Stats は所有タスクの統計を返す。
	Stats(ctx context.Context, ownerID string) (*task.Statistics, error)
}

// TaskHandler はタスク管理のHTTPハンドラー。
type TaskHandler struct {
	service TaskServiceInterface
}

// NewTaskHandler はTaskHandlerを生成する。
func NewTaskHandler(service TaskServiceInterface) *TaskHandler {
	return &TaskHandler{service: service}
}

// createTaskRequest はタスク作成リクエストのボディ。
type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
}

// updateTaskRequest はタスク部分更新リクエストのボディ。
// 省略されたフィールドは変更しない。
type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	IsCompleted *bool   `json:"is_completed"`
}

// taskResponse はタスク情報のAPIレスポンス。
type taskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	IsCompleted bool       `json:"is_completed"`
	OwnerID     string     `json:"owner_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// taskListResponse はタスク一覧のAPIレスポンス。
type taskListResponse struct {
	Tasks []taskResponse `json:"tasks"`
	Total int            `json:"total"`
}

// taskStatsResponse はタスク統計のAPIレスポンス。
type taskStatsResponse struct {
	TotalTasks      int     `json:"total_tasks"`
	CompletedTasks  int     `json:"completed_tasks"`
	PendingTasks    int     `json:"pending_tasks"`
	InProgressTasks int     `json:"in_progress_tasks"`
	HighPriority    int     `json:"high_priority"`
	MediumPriority  int     `json:"medium_priority"`
	LowPriority     int     `json:"low_priority"`
	CompletionRate  float64 `json:"completion_rate"`
}

// toTaskResponse はドメインのTaskをAPIレスポンス型に変換する。
func toTaskResponse(t *model.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		IsCompleted: t.IsCompleted,
		OwnerID:     t.OwnerID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		CompletedAt: t.CompletedAt,
	}
}

// CreateTask はタスク作成を処理する。
// POST /api/v1/tasks
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	account, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	created, err := h.service.Create(r.Context(), account.ID, task.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, toTaskResponse(created))
}

// ListTasks は所有タスクの一覧取得を処理する。
// GET /api/v1/tasks?status=&priority=&completed=
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	account, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	filter, apiErr := parseTaskFilter(r)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	tasks, err := h.service.List(r.Context(), account.ID, filter)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]taskResponse, len(tasks))
	for i, t := range tasks {
		results[i] = toTaskResponse(t)
	}

	writeJSONResponse(w, http.StatusOK, taskListResponse{
		Tasks: results,
		Total: len(results),
	})
}

// GetTask はタスク詳細の取得を処理する。
// GET /api/v1/tasks/{id}
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	account, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	taskID := chi.URLParam(r, "id")
	found, err := h.service.Get(r.Context(), account.ID, taskID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toTaskResponse(found))
}

// UpdateTask はタスクの部分更新を処理する。
// PATCH /api/v1/tasks/{id}
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	account, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	taskID := chi.URLParam(r, "id")
	updated, err := h.service.Update(r.Context(), account.ID, taskID, task.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		IsCompleted: req.IsCompleted,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toTaskResponse(updated))
}

// DeleteTask はタスク削除を処理する。
// DELETE /api/v1/tasks/{id}
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	account, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	taskID := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), account.ID, taskID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetStats は所有タスクの統計取得を処理する。
// GET /api/v1/tasks/stats
func (h *TaskHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	account, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	stats, err := h.service.Stats(r.Context(), account.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, taskStatsResponse{
		TotalTasks:      stats.Total,
		CompletedTasks:  stats.Completed,
		PendingTasks:    stats.Todo,
		InProgressTasks: stats.InProgress,
		HighPriority:    stats.High,
		MediumPriority:  stats.Medium,
		LowPriority:     stats.Low,
		CompletionRate:  stats.CompletionRate,
	})
}

// parseTaskFilter はクエリパラメータから一覧フィルタを構築する。
// 未知の値は検証エラーとして弾く。
func parseTaskFilter(r *http.Request) (repository.TaskFilter, *model.APIError) {
	var filter repository.TaskFilter

	if raw := r.URL.Query().Get("status"); raw != "" {
		status, ok := model.ParseTaskStatus(raw)
		if !ok {
			return repository.TaskFilter{}, model.NewInvalidFieldError("status", fmt.Sprintf("不正なステータスです: %s", raw))
		}
		filter.Status = &status
	}

	if raw := r.URL.Query().Get("priority"); raw != "" {
		priority, ok := model.ParseTaskPriority(raw)
		if !ok {
			return repository.TaskFilter{}, model.NewInvalidFieldError("priority", fmt.Sprintf("不正な優先度です: %s", raw))
		}
		filter.Priority = &priority
	}

	if raw := r.URL.Query().Get("completed"); raw != "" {
		switch raw {
		case "true":
			v := true
			filter.IsCompleted = &v
		case "false":
			v := false
			filter.IsCompleted = &v
		default:
			return repository.TaskFilter{}, model.NewInvalidFieldError("completed", fmt.Sprintf("trueまたはfalseを指定してください: %s", raw))
		}
	}

	return filter, nil
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// writeJSONResponse はJSONレスポンスを書き込む。
func writeJSONResponse(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	writeJSONResponse(w, statusCode, apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeTaskNotFound, model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeEmailTaken, model.ErrCodeUsernameTaken,
		model.ErrCodeInvalidEmail, model.ErrCodeInvalidUsername, model.ErrCodeReservedUsername,
		model.ErrCodeWeakPassword, model.ErrCodeInvalidTitle, model.ErrCodeInvalidField,
		model.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
