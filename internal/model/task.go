// Package model はドメインモデルを定義する。
package model

import "time"

// Task はユーザーが所有するタスクを表す。
// OwnerIDは作成時に確定し、以後変更されない。
type Task struct {
	ID          string
	OwnerID     string
	Title       string
	Description *string
	Status      TaskStatus
	Priority    TaskPriority
	IsCompleted bool
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	CompletedAt *time.Time
}

// TaskStatus はタスクの進行状態を表す。
type TaskStatus string

const (
	// TaskStatusTodo は未着手の状態。
	TaskStatusTodo TaskStatus = "todo"
	// TaskStatusInProgress は作業中の状態。
	TaskStatusInProgress TaskStatus = "in_progress"
	// TaskStatusDone は完了した状態。
	TaskStatusDone TaskStatus = "done"
)

// ParseTaskStatus は文字列をTaskStatusに変換する。
// 未定義の値の場合はfalseを返す。
func ParseTaskStatus(s string) (TaskStatus, bool) {
	switch TaskStatus(s) {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return TaskStatus(s), true
	default:
		return "", false
	}
}

// TaskPriority はタスクの優先度を表す。
type TaskPriority string

const (
	// TaskPriorityLow は低優先度。
	TaskPriorityLow TaskPriority = "low"
	// TaskPriorityMedium は中優先度。
	TaskPriorityMedium TaskPriority = "medium"
	// TaskPriorityHigh は高優先度。
	TaskPriorityHigh TaskPriority = "high"
)

// ParseTaskPriority は文字列をTaskPriorityに変換する。
// 未定義の値の場合はfalseを返す。
func ParseTaskPriority(s string) (TaskPriority, bool) {
	switch TaskPriority(s) {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return TaskPriority(s), true
	default:
		return "", false
	}
}
