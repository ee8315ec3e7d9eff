package ml

import (
	"errors"
	"fmt"
)

var (
	ErrModelLoad         = errors.New("model load failed")
	ErrSchemaMismatch    = errors.New("feature schema mismatch")
	ErrUnknownClass      = errors.New("unknown price class")
	ErrFeatureOutOfRange = errors.New("feature out of range")
	ErrModelUnavailable  = errors.New("model unavailable")
)

// ModelLoadError is returned when an artifact cannot be turned into a usable
// model. It matches ErrModelLoad as well as the underlying cause.
type ModelLoadError struct {
	Path string
	Err  error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("load model %s: %v", e.Path, e.Err)
}

func (e *ModelLoadError) Unwrap() []error {
	return []error{ErrModelLoad, e.Err}
}
