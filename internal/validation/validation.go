// Package validation runs the declarative form rules. Every field is
// checked; each failing field records its first failing rule's message. The
// resulting field-to-messages map is stashed in the session so the form can
// re-render with the errors after the redirect.
package validation

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the wire format for deadline fields.
const DateLayout = "2006-01-02"

// SignupForm carries the signup submission. The password/confirmPassword
// equality check lives in the controller because it spans two fields.
type SignupForm struct {
	ID              string `form:"id" validate:"required,max=50"`
	Name            string `form:"name" validate:"required,max=50"`
	Password        string `form:"password" validate:"required,min=8,max=50"`
	ConfirmPassword string `form:"confirmPassword" validate:"required,max=50"`
}

// LoginForm carries a login attempt. Presence checks only; credential
// correctness is the auth service's concern.
type LoginForm struct {
	ID       string `form:"id" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// TaskForm carries a task create or edit submission.
type TaskForm struct {
	Title    string `form:"title" validate:"required,max=50"`
	Detail   string `form:"detail" validate:"omitempty,max=250"`
	Deadline string `form:"deadline" validate:"required,datetime=2006-01-02,fromtoday"`
}

// ProfileForm carries a profile update submission.
type ProfileForm struct {
	Name string `form:"name" validate:"required,max=50"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their form name so error maps line up with inputs.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// fromtoday accepts a date that is today or later, compared at day
	// granularity so the time-of-day never rejects a same-day deadline.
	_ = v.RegisterValidation("fromtoday", func(fl validator.FieldLevel) bool {
		deadline, err := time.Parse(DateLayout, fl.Field().String())
		if err != nil {
			return false
		}
		now := time.Now()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		return !deadline.Before(today)
	})

	return v
}

// Validate runs the rules and returns a field-to-messages map, empty when
// the form is valid.
func Validate(form any) map[string][]string {
	errs := map[string][]string{}

	err := validate.Struct(form)
	if err == nil {
		return errs
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs[""] = []string{"Invalid input"}
		return errs
	}

	for _, fieldErr := range validationErrs {
		field := fieldErr.Field()
		errs[field] = append(errs[field], messageFor(field, fieldErr.Tag()))
	}
	return errs
}

// messageFor maps a failed rule to its user-facing message.
func messageFor(field, tag string) string {
	switch field {
	case "id":
		switch tag {
		case "required":
			return "ID is required"
		case "max":
			return "ID must be 50 characters or less"
		}
	case "name":
		switch tag {
		case "required":
			return "Name is required"
		case "max":
			return "Name must be 50 characters or less"
		}
	case "password":
		switch tag {
		case "required":
			return "Password is required"
		case "min":
			return "Password must be at least 8 characters"
		case "max":
			return "Password must be 50 characters or less"
		}
	case "confirmPassword":
		switch tag {
		case "required":
			return "Password confirmation is required"
		case "max":
			return "Password confirmation must be 50 characters or less"
		}
	case "title":
		switch tag {
		case "required":
			return "Title is required"
		case "max":
			return "Title must be 50 characters or less"
		}
	case "detail":
		if tag == "max" {
			return "Detail must be 250 characters or less"
		}
	case "deadline":
		switch tag {
		case "required":
			return "Deadline is required"
		case "datetime":
			return "Deadline must be a valid date"
		case "fromtoday":
			return "Deadline must be today or later"
		}
	}
	return "Invalid value"
}
