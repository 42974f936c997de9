package core

import (
	"fmt"

	"github.com/mohae/deepcopy"
)

// DeepCopy returns a deep copy of v.
//
// Nil slices and maps stay nil and empty ones stay empty, so callers can rely on
// the distinction between "absent" and "explicitly empty" surviving the copy.
// Only exported struct fields are copied.
func DeepCopy[T any](v T) (T, error) {
	var zero T
	copied := deepcopy.Copy(v)
	if copied == nil {
		return zero, nil
	}
	result, ok := copied.(T)
	if !ok {
		return zero, fmt.Errorf("failed to cast copied value to type %T", zero)
	}
	return result, nil
}

// MustDeepCopy is DeepCopy for values whose type is known to round-trip.
func MustDeepCopy[T any](v T) T {
	copied, err := DeepCopy(v)
	if err != nil {
		panic(err)
	}
	return copied
}

// CopyMap deep-copies a map[string]any, returning nil for a nil input.
func CopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	copied, err := DeepCopy(m)
	if err != nil {
		return nil
	}
	return copied
}
