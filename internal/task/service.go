// Package task はタスクのCRUD・所有権検査・完了状態遷移を提供する。
package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/repository"
)

// MetricsRecorder はタスク操作のメトリクスを記録するインターフェース。
type MetricsRecorder interface {
	RecordTaskCreated()
	RecordTaskCompleted()
}

// Service はタスクのビジネスロジックを提供する。
type Service struct {
	taskRepo repository.TaskRepository
	metrics  MetricsRecorder
}

// NewService はServiceを生成する。
func NewService(taskRepo repository.TaskRepository, metrics MetricsRecorder) *Service {
	return &Service{
		taskRepo: taskRepo,
		metrics:  metrics,
	}
}

// CreateInput はタスク作成の入力。StatusとPriorityは空文字の場合
// 既定値（todo / medium）が適用される。
type CreateInput struct {
	Title       string
	Description string
	Status      string
	Priority    string
}

// UpdateInput はタスクの部分更新の入力。nilのフィールドは変更しない。
type UpdateInput struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	IsCompleted *bool
}

// isEmpty は更新対象フィールドが一つも指定されていない場合にtrueを返す。
func (in UpdateInput) isEmpty() bool {
	return in.Title == nil && in.Description == nil && in.Status == nil &&
		in.Priority == nil && in.IsCompleted == nil
}

// Statistics は所有者単位のタスク統計。
type Statistics struct {
	Total          int
	Completed      int
	Todo           int
	InProgress     int
	Done           int
	High           int
	Medium         int
	Low            int
	CompletionRate float64
}

// Create は新規タスクを作成する。所有者は認証済みユーザーに固定される。
func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (*model.Task, error) {
	title, apiErr := normalizeTitle(in.Title)
	if apiErr != nil {
		return nil, apiErr
	}

	description, apiErr := normalizeDescription(in.Description)
	if apiErr != nil {
		return nil, apiErr
	}

	status := model.TaskStatusTodo
	if in.Status != "" {
		parsed, ok := model.ParseTaskStatus(in.Status)
		if !ok {
			return nil, model.NewInvalidFieldError("status", fmt.Sprintf("不正なステータスです: %s", in.Status))
		}
		status = parsed
	}

	priority := model.TaskPriorityMedium
	if in.Priority != "" {
		parsed, ok := model.ParseTaskPriority(in.Priority)
		if !ok {
			return nil, model.NewInvalidFieldError("priority", fmt.Sprintf("不正な優先度です: %s", in.Priority))
		}
		priority = parsed
	}

	task := &model.Task{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		Status:      status,
		Priority:    priority,
		IsCompleted: false,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.metrics.RecordTaskCreated()
	slog.Info("task created", "task_id", task.ID, "owner_id", ownerID)

	return task, nil
}

// List は認証済みユーザーが所有するタスク一覧をフィルタ付きで返す。
// 作成日時の降順（新しい順）で返す。
func (s *Service) List(ctx context.Context, ownerID string, filter repository.TaskFilter) ([]*model.Task, error) {
	tasks, err := s.taskRepo.ListByOwnerID(ctx, ownerID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Get は指定IDのタスクを所有権検査付きで取得する。
// 存在しない場合はNotFound、他ユーザーの所有の場合はForbiddenを返す。
// 検査はこの順序で行う（存在確認が先）。
func (s *Service) Get(ctx context.Context, ownerID, taskID string) (*model.Task, error) {
	return s.authorize(ctx, ownerID, taskID)
}

// Update はタスクを部分更新する。nilのフィールドは変更しない。
// 更新対象が一つもない場合はエラーを返す。
//
// 完了フラグの連動規則:
//   - is_completed=true はステータスをdoneにし、completed_atを常に現在時刻で刻印する
//   - is_completed=false はcompleted_atをクリアする
//   - ステータス単独の変更は完了フラグに影響しない
func (s *Service) Update(ctx context.Context, ownerID, taskID string, in UpdateInput) (*model.Task, error) {
	if in.isEmpty() {
		return nil, model.NewInvalidRequestError("更新対象のフィールドが指定されていません")
	}

	task, err := s.authorize(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title, apiErr := normalizeTitle(*in.Title)
		if apiErr != nil {
			return nil, apiErr
		}
		task.Title = title
	}

	if in.Description != nil {
		description, apiErr := normalizeDescription(*in.Description)
		if apiErr != nil {
			return nil, apiErr
		}
		task.Description = description
	}

	if in.Status != nil {
		status, ok := model.ParseTaskStatus(*in.Status)
		if !ok {
			return nil, model.NewInvalidFieldError("status", fmt.Sprintf("不正なステータスです: %s", *in.Status))
		}
		task.Status = status
	}

	if in.Priority != nil {
		priority, ok := model.ParseTaskPriority(*in.Priority)
		if !ok {
			return nil, model.NewInvalidFieldError("priority", fmt.Sprintf("不正な優先度です: %s", *in.Priority))
		}
		task.Priority = priority
	}

	completedNow := false
	if in.IsCompleted != nil {
		if *in.IsCompleted {
			completedNow = !task.IsCompleted
			now := time.Now().UTC()
			task.IsCompleted = true
			task.Status = model.TaskStatusDone
			task.CompletedAt = &now
		} else {
			task.IsCompleted = false
			task.CompletedAt = nil
		}
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if completedNow {
		s.metrics.RecordTaskCompleted()
	}
	slog.Info("task updated", "task_id", task.ID, "owner_id", ownerID)

	return task, nil
}

// Delete は指定IDのタスクを所有権検査付きで削除する。
func (s *Service) Delete(ctx context.Context, ownerID, taskID string) error {
	if _, err := s.authorize(ctx, ownerID, taskID); err != nil {
		return err
	}

	if err := s.taskRepo.DeleteByID(ctx, taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	slog.Info("task deleted", "task_id", taskID, "owner_id", ownerID)
	return nil
}

// Stats は認証済みユーザーが所有するタスクの統計を返す。
// 完了率は完了タスク数 / 総数のパーセント値（0〜100）で、タスクが存在しない場合は0。
func (s *Service) Stats(ctx context.Context, ownerID string) (*Statistics, error) {
	counts, err := s.taskRepo.CountByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	stats := &Statistics{
		Total:      counts.Total,
		Completed:  counts.Completed,
		Todo:       counts.Todo,
		InProgress: counts.InProgress,
		Done:       counts.Done,
		High:       counts.High,
		Medium:     counts.Medium,
		Low:        counts.Low,
	}
	if counts.Total > 0 {
		stats.CompletionRate = float64(counts.Completed) / float64(counts.Total) * 100
	}

	return stats, nil
}

// authorize はタスクの存在確認と所有権検査を行う。
// 存在確認を先に行い、見つからない場合はNotFound、
// 所有者が異なる場合はForbiddenを返す。
func (s *Service) authorize(ctx context.Context, ownerID, taskID string) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	if task == nil {
		return nil, model.NewTaskNotFoundError(taskID)
	}
	if task.OwnerID != ownerID {
		return nil, model.NewForbiddenError()
	}
	return task, nil
}
