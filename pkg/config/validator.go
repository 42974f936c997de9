package config

import (
	"slices"

	"github.com/compozy/lintcompose/engine/adapter"
	"github.com/compozy/lintcompose/engine/layer"
	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidators registers custom validation functions
func RegisterCustomValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("glob", validateGlob); err != nil {
		return err
	}
	return v.RegisterValidation("environment", validateEnvironment)
}

// validateGlob validates a file pattern, allowing a leading negation
func validateGlob(fl validator.FieldLevel) bool {
	return layer.ValidPattern(fl.Field().String())
}

// validateEnvironment checks the name against the bundled global sets
func validateEnvironment(fl validator.FieldLevel) bool {
	return slices.Contains(adapter.EnvironmentNames(), fl.Field().String())
}
