package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateSignupForm(t *testing.T) {
	t.Run("valid form", func(t *testing.T) {
		errs := Validate(SignupForm{
			ID:              "alice",
			Name:            "Alice",
			Password:        "password123",
			ConfirmPassword: "password123",
		})
		assert.Empty(t, errs)
	})

	t.Run("all failing fields are collected", func(t *testing.T) {
		errs := Validate(SignupForm{
			ID:       "",
			Name:     "",
			Password: "short",
		})
		assert.Contains(t, errs, "id")
		assert.Contains(t, errs, "name")
		assert.Contains(t, errs, "password")
		assert.Contains(t, errs, "confirmPassword")
	})

	t.Run("messages use form field names", func(t *testing.T) {
		errs := Validate(SignupForm{})
		assert.Equal(t, []string{"ID is required"}, errs["id"])
		assert.Equal(t, []string{"Password is required"}, errs["password"])
	})

	t.Run("overlong id rejected", func(t *testing.T) {
		errs := Validate(SignupForm{
			ID:              strings.Repeat("a", 51),
			Name:            "Alice",
			Password:        "password123",
			ConfirmPassword: "password123",
		})
		assert.Equal(t, []string{"ID must be 50 characters or less"}, errs["id"])
	})
}

func TestValidateLoginForm(t *testing.T) {
	assert.Empty(t, Validate(LoginForm{ID: "alice", Password: "x"}))

	errs := Validate(LoginForm{})
	assert.Contains(t, errs, "id")
	assert.Contains(t, errs, "password")
}

func TestValidateTaskForm(t *testing.T) {
	today := time.Now().Format(DateLayout)
	yesterday := time.Now().AddDate(0, 0, -1).Format(DateLayout)
	tomorrow := time.Now().AddDate(0, 0, 1).Format(DateLayout)

	t.Run("deadline today is accepted", func(t *testing.T) {
		errs := Validate(TaskForm{Title: "buy milk", Deadline: today})
		assert.Empty(t, errs)
	})

	t.Run("deadline tomorrow is accepted", func(t *testing.T) {
		errs := Validate(TaskForm{Title: "buy milk", Deadline: tomorrow})
		assert.Empty(t, errs)
	})

	t.Run("deadline yesterday is rejected", func(t *testing.T) {
		errs := Validate(TaskForm{Title: "buy milk", Deadline: yesterday})
		assert.Equal(t, []string{"Deadline must be today or later"}, errs["deadline"])
	})

	t.Run("malformed deadline is rejected", func(t *testing.T) {
		errs := Validate(TaskForm{Title: "buy milk", Deadline: "next tuesday"})
		assert.Contains(t, errs, "deadline")
	})

	t.Run("empty detail is allowed", func(t *testing.T) {
		errs := Validate(TaskForm{Title: "buy milk", Detail: "", Deadline: today})
		assert.Empty(t, errs)
	})

	t.Run("overlong detail is rejected", func(t *testing.T) {
		errs := Validate(TaskForm{
			Title:    "buy milk",
			Detail:   strings.Repeat("x", 251),
			Deadline: today,
		})
		assert.Equal(t, []string{"Detail must be 250 characters or less"}, errs["detail"])
	})
}

func TestValidateProfileForm(t *testing.T) {
	assert.Empty(t, Validate(ProfileForm{Name: "Alice"}))

	errs := Validate(ProfileForm{})
	assert.Equal(t, []string{"Name is required"}, errs["name"])
}
