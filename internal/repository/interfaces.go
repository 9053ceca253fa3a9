// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/taskman/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	// メールアドレスは大文字小文字を区別して比較する。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByUsername は正規化済みユーザー名でユーザーを検索する。見つからない場合はnilを返す。
	// usernameは呼び出し側で小文字に正規化されていること。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error

	// Update はユーザーの可変フィールド（email, username, password_hash, is_active）を
	// 更新し、updated_atを現在時刻で刻印する。
	Update(ctx context.Context, user *model.User) error

	// DeleteByID は指定IDのユーザーを削除する。
	// 所有するタスクはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// TaskFilter はタスク一覧取得の絞り込み条件。
// nilフィールドは条件として適用しない。
type TaskFilter struct {
	Status      *model.TaskStatus
	Priority    *model.TaskPriority
	IsCompleted *bool
}

// TaskCounts はタスク統計の集計結果。
type TaskCounts struct {
	Total      int
	Completed  int
	Todo       int
	InProgress int
	Done       int
	High       int
	Medium     int
	Low        int
}

// TaskRepository はタスクデータの永続化インターフェース。
type TaskRepository interface {
	// FindByID は指定IDのタスクを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Task, error)

	// ListByOwnerID は所有者のタスク一覧をフィルタ付きで返す。
	// created_at降順（新しい順）で返す。
	ListByOwnerID(ctx context.Context, ownerID string, filter TaskFilter) ([]*model.Task, error)

	// Create はタスクを作成する。
	Create(ctx context.Context, task *model.Task) error

	// Update はタスクの可変フィールドを更新し、updated_atを現在時刻で刻印する。
	// owner_idとcreated_atは変更しない。
	Update(ctx context.Context, task *model.Task) error

	// DeleteByID は指定IDのタスクを削除する。
	DeleteByID(ctx context.Context, id string) error

	// CountByOwnerID は所有者のタスクをステータス・優先度別に集計する。
	CountByOwnerID(ctx context.Context, ownerID string) (TaskCounts, error)
}
