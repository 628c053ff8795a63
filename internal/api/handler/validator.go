package handler

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FormValidator checks the board's form posts and reports failures in the
// wording the board shows next to its forms.
type FormValidator struct {
	v *validator.Validate
}

// fieldLabels names form fields the way the page labels them.
var fieldLabels = map[string]string{
	"activity": "Activity",
	"email":    "Student email",
	"username": "Username",
	"password": "Password",
}

// NewValidator returns a FormValidator ready to be assigned to echo.Echo.Validator.
func NewValidator() *FormValidator {
	v := validator.New()
	// Report fields by their form name, not the Go struct field.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return strings.ToLower(f.Name)
		}
		return name
	})
	// notblank rejects values that are only whitespace.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return &FormValidator{v: v}
}

// Validate satisfies the echo.Validator interface.
func (fv *FormValidator) Validate(i any) error {
	err := fv.v.Struct(i)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fieldError(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func fieldError(fe validator.FieldError) string {
	label, ok := fieldLabels[fe.Field()]
	if !ok {
		label = fe.Field()
	}
	switch fe.Tag() {
	case "required", "notblank":
		if fe.Field() == "activity" {
			return "Please select an activity"
		}
		return label + " is required"
	case "email":
		return label + " must be a valid email address"
	default:
		return label + " is invalid"
	}
}
