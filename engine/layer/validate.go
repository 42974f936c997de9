package layer

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator with the layer tags registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		if err := RegisterCustomValidators(v); err != nil {
			panic(err)
		}
		validate = v
	})
	return validate
}

// RegisterCustomValidators registers the "glob" and "severity" tags.
func RegisterCustomValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("glob", validateGlob); err != nil {
		return err
	}
	return v.RegisterValidation("severity", validateSeverity)
}

func validateGlob(fl validator.FieldLevel) bool {
	return ValidPattern(fl.Field().String())
}

func validateSeverity(fl validator.FieldLevel) bool {
	return Severity(fl.Field().String()).Valid()
}

// Validate checks the structural invariants of a layer.
func (l *Layer) Validate() error {
	if err := Validator().Struct(l); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Layer.")
		switch fe.Tag() {
		case "glob":
			msgs = append(msgs, fmt.Sprintf("%s: invalid file pattern %q", field, fe.Value()))
		case "severity":
			msgs = append(msgs, fmt.Sprintf("%s: invalid severity %q", field, fe.Value()))
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s: value is required", field))
		default:
			msgs = append(msgs, fmt.Sprintf("%s: failed %q check (value %v)", field, fe.Tag(), fe.Value()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
