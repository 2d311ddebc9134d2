package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks across package boundaries.
var (
	ErrModelNotFound = errors.New("model artifact not found")
	ErrModelLoad     = errors.New("model artifact failed to load")
)

// NotFoundError reports a missing artifact, carrying the path that was tried.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("model artifact not found at %s", e.Path)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrModelNotFound }

// LoadError reports an artifact that exists but could not be deserialized
// (corrupt file, version mismatch, unsupported format).
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load model artifact %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func (e *LoadError) Is(target error) bool { return target == ErrModelLoad }

// InferenceError reports a failed classification call, e.g. a malformed
// feature row. Probability-extraction failures are never surfaced this way;
// they degrade to an absent probability instead.
type InferenceError struct {
	Err error
}

func (e *InferenceError) Error() string { return fmt.Sprintf("inference failed: %v", e.Err) }

func (e *InferenceError) Unwrap() error { return e.Err }
