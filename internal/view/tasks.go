package view

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/a-h/templ"

	"github.com/Nayuta9382/taskdeck/internal/models"
)

const dateLayout = "2006-01-02"

// TaskListData carries the task list page state. Today and OneWeekLater
// let the template highlight tasks that are due or nearly due.
type TaskListData struct {
	User         *models.User
	Tasks        []models.Task
	Search       string
	SortDesc     bool
	ShowDeleted  bool
	Today        time.Time
	OneWeekLater time.Time
	CSRFToken    string
}

// TaskList renders the task list page, switching between the active list
// and the deleted (restorable) list.
func TaskList(data TaskListData) templ.Component {
	title := "Tasks"
	if data.ShowDeleted {
		title = "Deleted tasks"
	}
	return layout(title, func(ctx context.Context, w io.Writer) error {
		header(w, data.User.Name, data.User.ImgPath)
		fmt.Fprintf(w, `<main class="task-list-page"><h1>%s</h1>`, esc(title))

		// Search and sort controls keep their current values. The hidden
		// task-status field keeps the deleted view sticky across searches.
		status := "0"
		if data.ShowDeleted {
			status = "1"
		}
		sort := "asc"
		if data.SortDesc {
			sort = "desc"
		}
		fmt.Fprintf(w, `<form method="GET" action="/task" class="list-controls">
<input type="hidden" name="task-status" value="%s">
<input type="text" name="search" value="%s" placeholder="Search tasks">
<select name="sort">
<option value="asc"%s>Deadline (soonest first)</option>
<option value="desc"%s>Deadline (latest first)</option>
</select>
<button type="submit">Apply</button>
</form>`, status, esc(data.Search),
			selected(sort == "asc"), selected(sort == "desc"))

		if data.ShowDeleted {
			io.WriteString(w, `<p><a href="/task">Back to active tasks</a></p>`)
		} else {
			io.WriteString(w, `<p><a href="/task/new">New task</a> <a href="/task?task-status=1">Deleted tasks</a></p>`)
		}

		if len(data.Tasks) == 0 {
			io.WriteString(w, `<p class="empty">No tasks found.</p></main>`)
			return nil
		}

		action := "/task/delete"
		button := "Delete selected"
		if data.ShowDeleted {
			action = "/task/restore"
			button = "Restore selected"
		}
		fmt.Fprintf(w, `<form method="POST" action="%s">`, action)
		csrfField(w, data.CSRFToken)
		io.WriteString(w, `<table class="task-table">
<thead><tr><th></th><th>Title</th><th>Deadline</th><th></th></tr></thead>
<tbody>`)
		for _, t := range data.Tasks {
			fmt.Fprintf(w, `<tr class="%s">
<td><input type="checkbox" name="ids" value="%d"></td>
<td>%s</td>
<td>%s</td>
<td><a href="/task/detail/%d">Detail</a></td>
</tr>`, deadlineClass(t.Deadline, data.Today, data.OneWeekLater),
				t.ID, esc(t.Title), t.Deadline.Format(dateLayout), t.ID)
		}
		fmt.Fprintf(w, `</tbody>
</table>
<button type="submit">%s</button>
</form>
</main>`, button)
		return nil
	})
}

// TaskFormData carries the shared state of the new and edit task forms.
type TaskFormData struct {
	Task       *models.Task
	User       *models.User
	FormErrors map[string][]string
	OldInput   map[string]string
	CSRFToken  string
}

// TaskForm renders the task creation or edit form. A nil Task means a new
// task; old input from a failed submit wins over the stored values.
func TaskForm(data TaskFormData) templ.Component {
	title := "New task"
	action := "/task/new"
	var taskTitle, detail, deadline string
	if data.Task != nil {
		title = "Edit task"
		action = fmt.Sprintf("/task/edit/%d", data.Task.ID)
		taskTitle = data.Task.Title
		detail = data.Task.Detail
		deadline = data.Task.Deadline.Format(dateLayout)
	}
	if v, ok := data.OldInput["title"]; ok {
		taskTitle = v
	}
	if v, ok := data.OldInput["detail"]; ok {
		detail = v
	}
	if v, ok := data.OldInput["deadline"]; ok {
		deadline = v
	}

	return layout(title, func(ctx context.Context, w io.Writer) error {
		header(w, data.User.Name, data.User.ImgPath)
		fmt.Fprintf(w, `<main class="task-form-page"><h1>%s</h1>
<form method="POST" action="%s">`, esc(title), action)
		csrfField(w, data.CSRFToken)

		fmt.Fprintf(w, `<label for="title">Title</label>
<input type="text" id="title" name="title" value="%s">`, esc(taskTitle))
		fieldErrors(w, data.FormErrors, "title")

		fmt.Fprintf(w, `<label for="detail">Detail</label>
<textarea id="detail" name="detail">%s</textarea>`, esc(detail))
		fieldErrors(w, data.FormErrors, "detail")

		fmt.Fprintf(w, `<label for="deadline">Deadline</label>
<input type="date" id="deadline" name="deadline" value="%s">`, esc(deadline))
		fieldErrors(w, data.FormErrors, "deadline")

		io.WriteString(w, `<button type="submit">Save</button>
</form>
<p><a href="/task">Back to tasks</a></p>
</main>`)
		return nil
	})
}

// TaskDetailData carries the task detail page state.
type TaskDetailData struct {
	Task      *models.Task
	User      *models.User
	CSRFToken string
}

// TaskDetail renders a single task. The detail text keeps its line breaks.
func TaskDetail(data TaskDetailData) templ.Component {
	return layout("Task detail", func(ctx context.Context, w io.Writer) error {
		header(w, data.User.Name, data.User.ImgPath)
		fmt.Fprintf(w, `<main class="task-detail-page">
<h1>%s</h1>
<dl>
<dt>Deadline</dt><dd>%s</dd>
<dt>Detail</dt><dd>%s</dd>
</dl>`, esc(data.Task.Title), data.Task.Deadline.Format(dateLayout), nl2br(data.Task.Detail))

		fmt.Fprintf(w, `<p><a href="/task/edit/%d">Edit</a></p>
<form method="POST" action="/task/delete">`, data.Task.ID)
		csrfField(w, data.CSRFToken)
		fmt.Fprintf(w, `<input type="hidden" name="ids" value="%d">
<button type="submit">Delete</button>
</form>
<p><a href="/task">Back to tasks</a></p>
</main>`, data.Task.ID)
		return nil
	})
}

func selected(on bool) string {
	if on {
		return ` selected`
	}
	return ""
}

// deadlineClass flags tasks due today-or-earlier and tasks due within a
// week so the list can color them.
func deadlineClass(deadline, today, oneWeekLater time.Time) string {
	switch {
	case !deadline.After(today):
		return "due-now"
	case deadline.Before(oneWeekLater):
		return "due-soon"
	default:
		return ""
	}
}
