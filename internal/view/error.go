package view

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/a-h/templ"
)

// ErrorPage renders the shared error page for any failed request.
func ErrorPage(status int, message string) templ.Component {
	return layout(fmt.Sprintf("%d %s", status, http.StatusText(status)), func(ctx context.Context, w io.Writer) error {
		fmt.Fprintf(w, `<main class="error-page">
<h1>%d %s</h1>
<p>%s</p>
<p><a href="/task">Back to tasks</a></p>
</main>`, status, esc(http.StatusText(status)), esc(message))
		return nil
	})
}
