package service

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nayuta9382/taskdeck/internal/models"
	apperrors "github.com/Nayuta9382/taskdeck/internal/pkg/errors"
	"github.com/Nayuta9382/taskdeck/internal/repository"
)

type mockTaskRepo struct {
	tasks  map[int64]*models.Task
	nextID int64
}

func newMockTaskRepo() *mockTaskRepo {
	return &mockTaskRepo{tasks: make(map[int64]*models.Task)}
}

func (m *mockTaskRepo) Create(ctx context.Context, task *models.Task) error {
	m.nextID++
	task.ID = m.nextID
	task.CreatedAt = time.Now()
	clone := *task
	m.tasks[task.ID] = &clone
	return nil
}

func (m *mockTaskRepo) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	if task, ok := m.tasks[id]; ok {
		clone := *task
		return &clone, nil
	}
	return nil, nil
}

func (m *mockTaskRepo) GetByIDs(ctx context.Context, ids []int64) ([]models.Task, error) {
	var out []models.Task
	for _, id := range ids {
		if task, ok := m.tasks[id]; ok {
			out = append(out, *task)
		}
	}
	return out, nil
}

func (m *mockTaskRepo) List(ctx context.Context, userID string, opts repository.ListOptions) ([]models.Task, error) {
	var out []models.Task
	for _, task := range m.tasks {
		if task.UserID != userID || task.Deleted != opts.Deleted {
			continue
		}
		if opts.Search != "" && !strings.Contains(task.Title, opts.Search) &&
			!strings.Contains(task.Detail, opts.Search) {
			continue
		}
		out = append(out, *task)
	}
	sort.Slice(out, func(i, j int) bool {
		if opts.SortDesc {
			return out[i].Deadline.After(out[j].Deadline)
		}
		return out[i].Deadline.Before(out[j].Deadline)
	})
	return out, nil
}

func (m *mockTaskRepo) Update(ctx context.Context, id int64, title, detail string, deadline time.Time) error {
	if task, ok := m.tasks[id]; ok {
		task.Title = title
		task.Detail = detail
		task.Deadline = deadline
	}
	return nil
}

func (m *mockTaskRepo) SetDeleted(ctx context.Context, ids []int64, deleted bool) error {
	for _, id := range ids {
		if task, ok := m.tasks[id]; ok {
			task.Deleted = deleted
		}
	}
	return nil
}

func newTestTaskService() (TaskService, *mockTaskRepo) {
	repo := newMockTaskRepo()
	return NewTaskService(repo, testLogger()), repo
}

func seedTask(t *testing.T, repo *mockTaskRepo, userID, title string) *models.Task {
	t.Helper()
	task := &models.Task{
		UserID:   userID,
		Title:    title,
		Deadline: time.Now().AddDate(0, 0, 1),
	}
	require.NoError(t, repo.Create(context.Background(), task))
	return task
}

func TestGetOwned(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestTaskService()
	task := seedTask(t, repo, "alice", "buy milk")

	t.Run("owner can read", func(t *testing.T) {
		got, err := svc.GetOwned(ctx, "alice", task.ID)
		require.NoError(t, err)
		assert.Equal(t, "buy milk", got.Title)
	})

	t.Run("missing task is not found", func(t *testing.T) {
		_, err := svc.GetOwned(ctx, "alice", 9999)
		assert.True(t, apperrors.IsCode(err, "not_found"))
	})

	t.Run("other user is forbidden", func(t *testing.T) {
		_, err := svc.GetOwned(ctx, "bob", task.ID)
		assert.True(t, apperrors.IsCode(err, "forbidden"))
	})
}

func TestTaskUpdate(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestTaskService()
	task := seedTask(t, repo, "alice", "buy milk")
	deadline := time.Now().AddDate(0, 0, 3)

	t.Run("owner can update", func(t *testing.T) {
		err := svc.Update(ctx, "alice", task.ID, "buy oat milk", "two cartons", deadline)
		require.NoError(t, err)
		assert.Equal(t, "buy oat milk", repo.tasks[task.ID].Title)
		assert.Equal(t, "two cartons", repo.tasks[task.ID].Detail)
	})

	t.Run("non-owner update is forbidden and does not mutate", func(t *testing.T) {
		err := svc.Update(ctx, "bob", task.ID, "hijacked", "", deadline)
		assert.True(t, apperrors.IsCode(err, "forbidden"))
		assert.Equal(t, "buy oat milk", repo.tasks[task.ID].Title)
	})
}

func TestDeleteAndRestore(t *testing.T) {
	ctx := context.Background()

	t.Run("delete then restore round-trips", func(t *testing.T) {
		svc, repo := newTestTaskService()
		a := seedTask(t, repo, "alice", "one")
		b := seedTask(t, repo, "alice", "two")

		require.NoError(t, svc.Delete(ctx, "alice", []string{"1", "2"}))
		assert.True(t, repo.tasks[a.ID].Deleted)
		assert.True(t, repo.tasks[b.ID].Deleted)

		require.NoError(t, svc.Restore(ctx, "alice", []string{"1", "2"}))
		assert.False(t, repo.tasks[a.ID].Deleted)
		assert.False(t, repo.tasks[b.ID].Deleted)
	})

	t.Run("non-numeric id rejects the whole batch", func(t *testing.T) {
		svc, repo := newTestTaskService()
		a := seedTask(t, repo, "alice", "one")

		err := svc.Delete(ctx, "alice", []string{"1", "abc"})
		assert.True(t, apperrors.IsCode(err, "bad_request"))
		assert.False(t, repo.tasks[a.ID].Deleted)
	})

	t.Run("missing id rejects the whole batch", func(t *testing.T) {
		svc, repo := newTestTaskService()
		a := seedTask(t, repo, "alice", "one")

		err := svc.Delete(ctx, "alice", []string{"1", "42"})
		assert.True(t, apperrors.IsCode(err, "not_found"))
		assert.False(t, repo.tasks[a.ID].Deleted)
	})

	t.Run("foreign task rejects the whole batch", func(t *testing.T) {
		svc, repo := newTestTaskService()
		a := seedTask(t, repo, "alice", "mine")
		b := seedTask(t, repo, "bob", "theirs")

		err := svc.Delete(ctx, "alice", []string{"1", "2"})
		assert.True(t, apperrors.IsCode(err, "forbidden"))
		assert.False(t, repo.tasks[a.ID].Deleted)
		assert.False(t, repo.tasks[b.ID].Deleted)
	})
}

func TestTaskCreate(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestTaskService()

	deadline := time.Now().AddDate(0, 0, 2)
	task, err := svc.Create(ctx, "alice", "buy milk", "two cartons", deadline)
	require.NoError(t, err)

	assert.NotZero(t, task.ID)
	assert.Equal(t, "alice", repo.tasks[task.ID].UserID)
	assert.False(t, repo.tasks[task.ID].Deleted)
}

func TestTaskList(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestTaskService()

	early := &models.Task{UserID: "alice", Title: "early", Deadline: time.Now().AddDate(0, 0, 1)}
	late := &models.Task{UserID: "alice", Title: "late", Deadline: time.Now().AddDate(0, 0, 9)}
	require.NoError(t, repo.Create(ctx, late))
	require.NoError(t, repo.Create(ctx, early))
	seedTask(t, repo, "bob", "not mine")

	t.Run("ascending by default", func(t *testing.T) {
		tasks, err := svc.List(ctx, "alice", repository.ListOptions{})
		require.NoError(t, err)
		require.Len(t, tasks, 2)
		assert.Equal(t, "early", tasks[0].Title)
		assert.Equal(t, "late", tasks[1].Title)
	})

	t.Run("descending when requested", func(t *testing.T) {
		tasks, err := svc.List(ctx, "alice", repository.ListOptions{SortDesc: true})
		require.NoError(t, err)
		require.Len(t, tasks, 2)
		assert.Equal(t, "late", tasks[0].Title)
	})
}
