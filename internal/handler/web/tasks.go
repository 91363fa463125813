package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/a-h/templ"

	apperrors "github.com/Nayuta9382/taskdeck/internal/pkg/errors"
	"github.com/Nayuta9382/taskdeck/internal/repository"
	"github.com/Nayuta9382/taskdeck/internal/validation"
	"github.com/Nayuta9382/taskdeck/internal/view"
)

// TaskList renders the active or deleted task list with search and sort
// applied.
func (h *Handler) TaskList(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	q := r.URL.Query()

	opts := repository.ListOptions{
		Search:   q.Get("search"),
		SortDesc: q.Get("sort") == "desc",
		Deleted:  q.Get("task-status") == "1",
	}

	tasks, err := h.tasks.List(r.Context(), user.ID, opts)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	token, err := h.sessions.EnsureCSRFToken(w, r)
	if err != nil {
		h.renderError(w, r, apperrors.ErrInternal)
		return
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	templ.Handler(view.TaskList(view.TaskListData{
		User:         user,
		Tasks:        tasks,
		Search:       opts.Search,
		SortDesc:     opts.SortDesc,
		ShowDeleted:  opts.Deleted,
		Today:        today,
		OneWeekLater: today.AddDate(0, 0, 7),
		CSRFToken:    token,
	})).ServeHTTP(w, r)
}

// TaskNew renders the task creation form.
func (h *Handler) TaskNew(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	formErrors, oldInput := h.sessions.PopFormState(w, r)
	token, err := h.sessions.EnsureCSRFToken(w, r)
	if err != nil {
		h.renderError(w, r, apperrors.ErrInternal)
		return
	}

	templ.Handler(view.TaskForm(view.TaskFormData{
		User:       user,
		FormErrors: formErrors,
		OldInput:   oldInput,
		CSRFToken:  token,
	})).ServeHTTP(w, r)
}

// TaskCreate handles the task creation form submission.
func (h *Handler) TaskCreate(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, apperrors.ErrBadRequest)
		return
	}
	if !h.verifyCSRF(w, r) {
		return
	}

	form := validation.TaskForm{
		Title:    r.FormValue("title"),
		Detail:   r.FormValue("detail"),
		Deadline: r.FormValue("deadline"),
	}
	if errs := validation.Validate(form); len(errs) > 0 {
		h.sessions.SetFormState(w, r, errs, map[string]string{
			"title":    form.Title,
			"detail":   form.Detail,
			"deadline": form.Deadline,
		})
		http.Redirect(w, r, "/task/new", http.StatusFound)
		return
	}

	deadline, err := time.Parse(validation.DateLayout, form.Deadline)
	if err != nil {
		h.renderError(w, r, apperrors.ErrBadRequest)
		return
	}

	if _, err := h.tasks.Create(r.Context(), user.ID, form.Title, form.Detail, deadline); err != nil {
		h.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, "/task", http.StatusFound)
}

// TaskDetail renders one owned task.
func (h *Handler) TaskDetail(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	task := taskFrom(r.Context())

	token, err := h.sessions.EnsureCSRFToken(w, r)
	if err != nil {
		h.renderError(w, r, apperrors.ErrInternal)
		return
	}

	templ.Handler(view.TaskDetail(view.TaskDetailData{
		User:      user,
		Task:      task,
		CSRFToken: token,
	})).ServeHTTP(w, r)
}

// TaskEdit renders the edit form prefilled with the stored task, unless
// a failed submit left one-shot input to restore.
func (h *Handler) TaskEdit(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	task := taskFrom(r.Context())

	formErrors, oldInput := h.sessions.PopFormState(w, r)
	token, err := h.sessions.EnsureCSRFToken(w, r)
	if err != nil {
		h.renderError(w, r, apperrors.ErrInternal)
		return
	}

	templ.Handler(view.TaskForm(view.TaskFormData{
		User:       user,
		Task:       task,
		FormErrors: formErrors,
		OldInput:   oldInput,
		CSRFToken:  token,
	})).ServeHTTP(w, r)
}

// TaskUpdate handles the edit form submission for an owned task.
func (h *Handler) TaskUpdate(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	task := taskFrom(r.Context())

	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, apperrors.ErrBadRequest)
		return
	}
	if !h.verifyCSRF(w, r) {
		return
	}

	form := validation.TaskForm{
		Title:    r.FormValue("title"),
		Detail:   r.FormValue("detail"),
		Deadline: r.FormValue("deadline"),
	}
	if errs := validation.Validate(form); len(errs) > 0 {
		h.sessions.SetFormState(w, r, errs, map[string]string{
			"title":    form.Title,
			"detail":   form.Detail,
			"deadline": form.Deadline,
		})
		http.Redirect(w, r, r.URL.Path, http.StatusFound)
		return
	}

	deadline, err := time.Parse(validation.DateLayout, form.Deadline)
	if err != nil {
		h.renderError(w, r, apperrors.ErrBadRequest)
		return
	}

	if err := h.tasks.Update(r.Context(), user.ID, task.ID, form.Title, form.Detail, deadline); err != nil {
		h.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, "/task/detail/"+strconv.FormatInt(task.ID, 10), http.StatusFound)
}

// TaskDelete soft-deletes the checked tasks. An empty selection is a
// no-op redirect back to the list.
func (h *Handler) TaskDelete(w http.ResponseWriter, r *http.Request) {
	h.setTasksDeleted(w, r, true, "/task")
}

// TaskRestore brings soft-deleted tasks back, returning to the deleted
// list so the remaining entries stay visible.
func (h *Handler) TaskRestore(w http.ResponseWriter, r *http.Request) {
	h.setTasksDeleted(w, r, false, "/task?task-status=1")
}

func (h *Handler) setTasksDeleted(w http.ResponseWriter, r *http.Request, deleted bool, redirect string) {
	user := userFrom(r.Context())

	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, apperrors.ErrBadRequest)
		return
	}
	if !h.verifyCSRF(w, r) {
		return
	}

	ids := r.Form["ids"]
	if len(ids) == 0 {
		http.Redirect(w, r, redirect, http.StatusFound)
		return
	}

	var err error
	if deleted {
		err = h.tasks.Delete(r.Context(), user.ID, ids)
	} else {
		err = h.tasks.Restore(r.Context(), user.ID, ids)
	}
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, redirect, http.StatusFound)
}
