package thread

import (
	"errors"
	"fmt"
)

// Sentinel errors for classification failures.
var (
	ErrShapeMismatch   = errors.New("shape mismatch")
	ErrInvalidSelector = errors.New("invalid selector")
)

// ShapeError reports a document whose top-level structure does not fit the
// declared shape. Hint is a short suggestion suitable for showing a user.
type ShapeError struct {
	Shape  Shape
	Layout Layout
	Hint   string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %s export given a %s root: %s", ErrShapeMismatch, e.Shape, e.Layout, e.Hint)
}

func (e *ShapeError) Unwrap() error { return ErrShapeMismatch }

func mismatch(shape Shape, layout Layout, hint string) *ShapeError {
	return &ShapeError{Shape: shape, Layout: layout, Hint: hint}
}

// SelectorError wraps ErrInvalidSelector with the rejected value.
type SelectorError struct {
	Field string
	Value string
}

func (e *SelectorError) Error() string {
	return fmt.Sprintf("%s: %s (value=%q)", ErrInvalidSelector, e.Field, e.Value)
}

func (e *SelectorError) Unwrap() error { return ErrInvalidSelector }
