package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Nayuta9382/taskdeck/internal/models"
)

// ListOptions narrows and orders a task listing.
type ListOptions struct {
	// Search filters by title as a literal case-insensitive substring.
	Search string
	// SortDesc orders by deadline descending instead of ascending.
	SortDesc bool
	// Deleted selects soft-deleted tasks instead of active ones.
	Deleted bool
}

// TaskRepository defines the interface for task data operations. Ownership is
// enforced by the callers; this layer only matches what it is asked for.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id int64) (*models.Task, error)
	GetByIDs(ctx context.Context, ids []int64) ([]models.Task, error)
	List(ctx context.Context, userID string, opts ListOptions) ([]models.Task, error)
	Update(ctx context.Context, id int64, title, detail string, deadline time.Time) error
	SetDeleted(ctx context.Context, ids []int64, deleted bool) error
}

type taskRepo struct {
	pool *pgxpool.Pool
}

// NewTaskRepository creates a new task repository.
func NewTaskRepository(pool *pgxpool.Pool) TaskRepository {
	return &taskRepo{pool: pool}
}

// Create inserts a new active task.
func (r *taskRepo) Create(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (user_id, title, detail, deadline)
		VALUES ($1, $2, $3, $4)
		RETURNING id, del_flg, created_at`

	return r.pool.QueryRow(ctx, query,
		task.UserID,
		task.Title,
		task.Detail,
		task.Deadline,
	).Scan(&task.ID, &task.Deleted, &task.CreatedAt)
}

// GetByID retrieves a task by ID. Returns nil when the task does not exist.
func (r *taskRepo) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	query := `
		SELECT id, user_id, title, detail, deadline, del_flg, created_at
		FROM tasks WHERE id = $1`

	var task models.Task
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Detail,
		&task.Deadline,
		&task.Deleted,
		&task.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// GetByIDs retrieves all tasks matching the given ids. Missing ids simply
// produce a shorter result; callers compare counts.
func (r *taskRepo) GetByIDs(ctx context.Context, ids []int64) ([]models.Task, error) {
	query := `
		SELECT id, user_id, title, detail, deadline, del_flg, created_at
		FROM tasks WHERE id = ANY($1)`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTasks(rows)
}

// List retrieves the user's tasks matching the soft-delete flag and the
// search text, ordered by deadline.
func (r *taskRepo) List(ctx context.Context, userID string, opts ListOptions) ([]models.Task, error) {
	order := "ASC"
	if opts.SortDesc {
		order = "DESC"
	}
	query := `
		SELECT id, user_id, title, detail, deadline, del_flg, created_at
		FROM tasks
		WHERE user_id = $1 AND del_flg = $2 AND title ILIKE $3 ESCAPE '\'
		ORDER BY deadline ` + order + `, id ASC`

	pattern := "%" + escapeLike(opts.Search) + "%"

	rows, err := r.pool.Query(ctx, query, userID, opts.Deleted, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTasks(rows)
}

// Update overwrites the mutable task fields. The owner and the soft-delete
// flag are never touched here.
func (r *taskRepo) Update(ctx context.Context, id int64, title, detail string, deadline time.Time) error {
	query := `
		UPDATE tasks SET title = $2, detail = $3, deadline = $4
		WHERE id = $1`

	_, err := r.pool.Exec(ctx, query, id, title, detail, deadline)
	return err
}

// SetDeleted flips the soft-delete flag for the given id set.
func (r *taskRepo) SetDeleted(ctx context.Context, ids []int64, deleted bool) error {
	query := `UPDATE tasks SET del_flg = $2 WHERE id = ANY($1)`

	_, err := r.pool.Exec(ctx, query, ids, deleted)
	return err
}

func scanTasks(rows pgx.Rows) ([]models.Task, error) {
	var tasks []models.Task
	for rows.Next() {
		var task models.Task
		if err := rows.Scan(
			&task.ID,
			&task.UserID,
			&task.Title,
			&task.Detail,
			&task.Deadline,
			&task.Deleted,
			&task.CreatedAt,
		); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// escapeLike escapes LIKE wildcards so the search text matches literally.
func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}
