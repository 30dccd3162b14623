package util

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailRegistered  = errors.New("email already registered")
	ErrPermissionDenied = errors.New("permission denied")

	// ErrPackageNotFound covers both a missing package and, for attempts, an
	// ownership mismatch: callers are not told whether the resource exists.
	ErrPackageNotFound  = errors.New("quiz package not found")
	ErrAttemptNotFound  = errors.New("attempt not found")
	ErrQuestionNotFound = errors.New("question not found")

	// ErrInvalidState is the wrap target for state-precondition failures
	// (wrong question count, no questions, question id mismatch). Wrapped
	// messages carry the specifics, e.g. the actual question count.
	ErrInvalidState = errors.New("invalid state")
)
