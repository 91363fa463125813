// Package view renders the server-side HTML pages. Components implement
// templ.Component so handlers serve them through templ.Handler.
package view

import (
	"context"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// esc HTML-escapes user-supplied text for safe interpolation.
func esc(s string) string {
	return html.EscapeString(s)
}

// nl2br escapes text and converts newlines to <br> so multi-line task
// details keep their line breaks. Escaping happens first, the inserted
// tags are the only markup in the result.
func nl2br(s string) string {
	escaped := html.EscapeString(s)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	return strings.ReplaceAll(escaped, "\n", "<br>")
}

// fieldErrors renders the validation messages attached to one form field.
func fieldErrors(w io.Writer, errs map[string][]string, field string) {
	for _, msg := range errs[field] {
		fmt.Fprintf(w, `<p class="field-error">%s</p>`, esc(msg))
	}
}

// flash renders a one-shot message when present.
func flash(w io.Writer, class, msg string) {
	if msg == "" {
		return
	}
	fmt.Fprintf(w, `<p class="%s">%s</p>`, class, esc(msg))
}

// csrfField renders the hidden CSRF token input for state-changing forms.
func csrfField(w io.Writer, token string) {
	fmt.Fprintf(w, `<input type="hidden" name="_csrf" value="%s">`, esc(token))
}

// layout wraps page content in the shared document shell.
func layout(title string, body func(ctx context.Context, w io.Writer) error) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s | TaskDeck</title>
<link rel="stylesheet" href="/static/css/style.css">
</head>
<body>`, esc(title)); err != nil {
			return err
		}
		if err := body(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</body>
</html>`)
		return err
	})
}

// header renders the signed-in navigation bar.
func header(w io.Writer, userName, imgPath string) {
	fmt.Fprintf(w, `<header class="site-header">
<a href="/task" class="brand">TaskDeck</a>
<nav>
<a href="/auth/edit" class="profile-link"><img src="%s" alt="avatar" class="avatar"><span>%s</span></a>
<a href="/auth/logout">Log out</a>
</nav>
</header>`, esc(imgPath), esc(userName))
}
