package core

import (
	"errors"
	"fmt"
)

// ErrConfiguration is matched by every ConfigurationError through errors.Is.
var ErrConfiguration = errors.New("configuration error")

// Error codes
const (
	ErrCodeMissingProvider   = "MISSING_PROVIDER"
	ErrCodeEmptyProvider     = "EMPTY_PROVIDER"
	ErrCodeMalformedProvider = "MALFORMED_PROVIDER"
	ErrCodeDuplicateProvider = "DUPLICATE_PROVIDER"
	ErrCodeInvalidLayer      = "INVALID_LAYER"
)

// Error messages
const (
	ErrMsgMissingProvider   = "required provider %q is missing"
	ErrMsgEmptyProvider     = "required provider %q yielded no layers"
	ErrMsgMalformedProvider = "provider %q is malformed"
	ErrMsgDuplicateProvider = "provider %q is declared more than once"
	ErrMsgInvalidLayer      = "layer %d of provider %q is invalid"
)

// ConfigurationError is the fatal error raised while assembling the layer catalog.
type ConfigurationError struct {
	Code     string
	Message  string
	Provider string
	Cause    error
}

func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// NewConfigError creates a ConfigurationError with the given code and formatted message
func NewConfigError(code, provider, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{
		Code:     code,
		Provider: provider,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Common error constructors
func NewMissingProviderError(provider string) *ConfigurationError {
	return NewConfigError(ErrCodeMissingProvider, provider, ErrMsgMissingProvider, provider)
}

func NewEmptyProviderError(provider string) *ConfigurationError {
	return NewConfigError(ErrCodeEmptyProvider, provider, ErrMsgEmptyProvider, provider)
}

func NewMalformedProviderError(provider string, err error) *ConfigurationError {
	e := NewConfigError(ErrCodeMalformedProvider, provider, ErrMsgMalformedProvider, provider)
	e.Cause = err
	return e
}

func NewDuplicateProviderError(provider string) *ConfigurationError {
	return NewConfigError(ErrCodeDuplicateProvider, provider, ErrMsgDuplicateProvider, provider)
}

func NewInvalidLayerError(provider string, index int, err error) *ConfigurationError {
	e := NewConfigError(ErrCodeInvalidLayer, provider, ErrMsgInvalidLayer, index, provider)
	e.Cause = err
	return e
}

// AsConfigurationError extracts a ConfigurationError from err's chain.
func AsConfigurationError(err error) (*ConfigurationError, bool) {
	var cfgErr *ConfigurationError
	if errors.As(err, &cfgErr) {
		return cfgErr, true
	}
	return nil, false
}
