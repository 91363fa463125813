package view

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/Nayuta9382/taskdeck/internal/models"
)

// LoginData carries everything the login page needs, including one-shot
// state from a failed prior attempt.
type LoginData struct {
	Error      string
	FormErrors map[string][]string
	OldInput   map[string]string
}

// Login renders the login page.
func Login(data LoginData) templ.Component {
	return layout("Log in", func(ctx context.Context, w io.Writer) error {
		io.WriteString(w, `<main class="auth-page"><h1>Log in</h1>`)
		flash(w, "flash-error", data.Error)
		io.WriteString(w, `<form method="POST" action="/auth/login">`)

		fmt.Fprintf(w, `<label for="id">ID</label>
<input type="text" id="id" name="id" value="%s">`, esc(data.OldInput["id"]))
		fieldErrors(w, data.FormErrors, "id")

		io.WriteString(w, `<label for="password">Password</label>
<input type="password" id="password" name="password">`)
		fieldErrors(w, data.FormErrors, "password")

		io.WriteString(w, `<button type="submit">Log in</button>
</form>
<a href="/auth/github" class="github-login">Log in with GitHub</a>
<p><a href="/auth/signup">Create an account</a></p>
</main>`)
		return nil
	})
}

// SignupData carries the signup page state. ID and password errors are
// distinct flashes so each renders next to its own field.
type SignupData struct {
	IDError       string
	PasswordError string
	FormErrors    map[string][]string
	OldInput      map[string]string
}

// Signup renders the registration page.
func Signup(data SignupData) templ.Component {
	return layout("Sign up", func(ctx context.Context, w io.Writer) error {
		io.WriteString(w, `<main class="auth-page"><h1>Sign up</h1>
<form method="POST" action="/auth/signup">`)

		fmt.Fprintf(w, `<label for="id">ID</label>
<input type="text" id="id" name="id" value="%s">`, esc(data.OldInput["id"]))
		flash(w, "field-error", data.IDError)
		fieldErrors(w, data.FormErrors, "id")

		fmt.Fprintf(w, `<label for="name">Name</label>
<input type="text" id="name" name="name" value="%s">`, esc(data.OldInput["name"]))
		fieldErrors(w, data.FormErrors, "name")

		io.WriteString(w, `<label for="password">Password</label>
<input type="password" id="password" name="password">`)
		fieldErrors(w, data.FormErrors, "password")

		io.WriteString(w, `<label for="confirmPassword">Confirm password</label>
<input type="password" id="confirmPassword" name="confirmPassword">`)
		flash(w, "field-error", data.PasswordError)
		fieldErrors(w, data.FormErrors, "confirmPassword")

		io.WriteString(w, `<button type="submit">Sign up</button>
</form>
<p><a href="/auth/login">Back to log in</a></p>
</main>`)
		return nil
	})
}

// ProfileData carries the profile edit page state.
type ProfileData struct {
	User        *models.User
	UploadError string
	FormErrors  map[string][]string
	OldInput    map[string]string
	CSRFToken   string
}

// ProfileEdit renders the profile edit page with the avatar upload form.
func ProfileEdit(data ProfileData) templ.Component {
	return layout("Edit profile", func(ctx context.Context, w io.Writer) error {
		header(w, data.User.Name, data.User.ImgPath)
		io.WriteString(w, `<main class="profile-page"><h1>Edit profile</h1>`)
		flash(w, "flash-error", data.UploadError)

		name := data.User.Name
		if v, ok := data.OldInput["name"]; ok {
			name = v
		}

		io.WriteString(w, `<form method="POST" action="/auth/edit" enctype="multipart/form-data">`)
		csrfField(w, data.CSRFToken)
		fmt.Fprintf(w, `<img src="%s" alt="current avatar" class="avatar-large">
<label for="img">Profile image</label>
<input type="file" id="img" name="img" accept="image/jpeg,image/png,image/gif">`,
			esc(data.User.ImgPath))
		fieldErrors(w, data.FormErrors, "img")

		fmt.Fprintf(w, `<label for="name">Name</label>
<input type="text" id="name" name="name" value="%s">`, esc(name))
		fieldErrors(w, data.FormErrors, "name")

		io.WriteString(w, `<button type="submit">Save</button>
</form>
<p><a href="/task">Back to tasks</a></p>
</main>`)
		return nil
	})
}

// AuthFailure renders the OAuth failure page.
func AuthFailure() templ.Component {
	return layout("Authentication failed", func(ctx context.Context, w io.Writer) error {
		io.WriteString(w, `<main class="auth-page"><h1>Authentication failed</h1>
<p>GitHub login could not be completed. Please try again.</p>
<p><a href="/auth/login">Back to log in</a></p>
</main>`)
		return nil
	})
}
