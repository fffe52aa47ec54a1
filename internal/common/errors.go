package common

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure. The executor consults the kind to
// decide whether another attempt can succeed.
type Kind int

const (
	// KindTransient covers network resets, timeouts, rate limits and other
	// upstream hiccups that tend to clear on their own.
	KindTransient Kind = iota + 1
	// KindAuth means the API rejected our credentials. No retry will fix it.
	KindAuth
	// KindValidation means the payload itself is malformed or empty.
	KindValidation
	// KindPersistence covers database connection and write failures.
	KindPersistence
	// KindRender covers deck serialization and file write failures.
	KindRender
	// KindConfig marks bad run parameters or configuration files.
	KindConfig
	// KindCanceled means the surrounding context was canceled.
	KindCanceled
)

var kindNames = map[Kind]string{
	KindTransient:   "transient_external",
	KindAuth:        "external_auth",
	KindValidation:  "data_validation",
	KindPersistence: "persistence_failure",
	KindRender:      "render_failure",
	KindConfig:      "configuration_error",
	KindCanceled:    "canceled",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Retryable reports whether a failure of this kind may clear on a later
// attempt. Auth, validation, config and cancellation are final.
func (k Kind) Retryable() bool {
	switch k {
	case KindTransient, KindPersistence, KindRender:
		return true
	default:
		return false
	}
}

// Error is the classified error carried across stage boundaries.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a classified error from a format string.
func NewError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// WrapError attaches a kind to err. Returns nil if err is nil; if err is
// already classified the original kind wins.
func WrapError(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		return err
	}
	return &Error{Kind: kind, Err: err}
}

// KindOf extracts the classification from err. Context errors map to
// canceled/transient; anything unclassified is treated as transient so the
// executor gives it the benefit of retry.
func KindOf(err error) Kind {
	if err == nil {
		return 0
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTransient
	}
	return KindTransient
}
