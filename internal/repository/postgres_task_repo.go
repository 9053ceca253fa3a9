package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/taskman/internal/model"
)

// PostgresTaskRepo はPostgreSQLを使用したタスクリポジトリ。
type PostgresTaskRepo struct {
	db *sql.DB
}

// NewPostgresTaskRepo はPostgresTaskRepoを生成する。
func NewPostgresTaskRepo(db *sql.DB) *PostgresTaskRepo {
	return &PostgresTaskRepo{db: db}
}

const taskColumns = `id, owner_id, title, description, status, priority, is_completed, created_at, updated_at, completed_at`

// scanTask は行スキャン結果をmodel.Taskに変換する。
func scanTask(scan func(dest ...any) error) (*model.Task, error) {
	task := &model.Task{}
	var description sql.NullString
	var updatedAt, completedAt sql.NullTime
	var status, priority string

	err := scan(
		&task.ID, &task.OwnerID, &task.Title, &description,
		&status, &priority, &task.IsCompleted,
		&task.CreatedAt, &updatedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Status = model.TaskStatus(status)
	task.Priority = model.TaskPriority(priority)
	if description.Valid {
		task.Description = &description.String
	}
	if updatedAt.Valid {
		task.UpdatedAt = &updatedAt.Time
	}
	if completedAt.Valid {
		task.CompletedAt = &completedAt.Time
	}

	return task, nil
}

// FindByID は指定IDのタスクを取得する。見つからない場合はnilを返す。
func (r *PostgresTaskRepo) FindByID(ctx context.Context, id string) (*model.Task, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`,
		id,
	)

	task, err := scanTask(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find task by ID: %w", err)
	}

	return task, nil
}

// ListByOwnerID は所有者のタスク一覧をフィルタ付きでcreated_at降順で返す。
func (r *PostgresTaskRepo) ListByOwnerID(ctx context.Context, ownerID string, filter TaskFilter) ([]*model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE owner_id = $1`
	args := []any{ownerID}

	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if filter.Priority != nil {
		args = append(args, string(*filter.Priority))
		query += fmt.Sprintf(` AND priority = $%d`, len(args))
	}
	if filter.IsCompleted != nil {
		args = append(args, *filter.IsCompleted)
		query += fmt.Sprintf(` AND is_completed = $%d`, len(args))
	}

	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*model.Task
	for rows.Next() {
		task, err := scanTask(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}

	return tasks, nil
}

// Create はタスクを作成する。
func (r *PostgresTaskRepo) Create(ctx context.Context, task *model.Task) error {
	var description sql.NullString
	if task.Description != nil {
		description = sql.NullString{String: *task.Description, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (id, owner_id, title, description, status, priority, is_completed, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		task.ID, task.OwnerID, task.Title, description,
		string(task.Status), string(task.Priority), task.IsCompleted, task.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

// Update はタスクの可変フィールドを更新し、updated_atを現在時刻で刻印する。
// owner_idとcreated_atは更新対象に含めない。
func (r *PostgresTaskRepo) Update(ctx context.Context, task *model.Task) error {
	now := time.Now().UTC()

	var description sql.NullString
	if task.Description != nil {
		description = sql.NullString{String: *task.Description, Valid: true}
	}
	var completedAt sql.NullTime
	if task.CompletedAt != nil {
		completedAt = sql.NullTime{Time: *task.CompletedAt, Valid: true}
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE tasks
		 SET title = $1, description = $2, status = $3, priority = $4,
		     is_completed = $5, completed_at = $6, updated_at = $7
		 WHERE id = $8`,
		task.Title, description, string(task.Status), string(task.Priority),
		task.IsCompleted, completedAt, now, task.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("task not found: %s", task.ID)
	}

	task.UpdatedAt = &now
	return nil
}

// DeleteByID は指定IDのタスクを削除する。
func (r *PostgresTaskRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("task not found: %s", id)
	}
	return nil
}

// CountByOwnerID は所有者のタスクをステータス・優先度別に集計する。
func (r *PostgresTaskRepo) CountByOwnerID(ctx context.Context, ownerID string) (TaskCounts, error) {
	var counts TaskCounts

	err := r.db.QueryRowContext(ctx,
		`SELECT
		     COUNT(*),
		     COUNT(*) FILTER (WHERE is_completed),
		     COUNT(*) FILTER (WHERE status = 'todo'),
		     COUNT(*) FILTER (WHERE status = 'in_progress'),
		     COUNT(*) FILTER (WHERE status = 'done'),
		     COUNT(*) FILTER (WHERE priority = 'high'),
		     COUNT(*) FILTER (WHERE priority = 'medium'),
		     COUNT(*) FILTER (WHERE priority = 'low')
		 FROM tasks WHERE owner_id = $1`,
		ownerID,
	).Scan(
		&counts.Total, &counts.Completed,
		&counts.Todo, &counts.InProgress, &counts.Done,
		&counts.High, &counts.Medium, &counts.Low,
	)
	if err != nil {
		return TaskCounts{}, fmt.Errorf("failed to count tasks: %w", err)
	}

	return counts, nil
}

// compile-time interface check
var _ TaskRepository = (*PostgresTaskRepo)(nil)
