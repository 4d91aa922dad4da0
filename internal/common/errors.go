// Package common defines shared constants and sentinel errors used across
// client and server layers of postbox. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors. ErrMissingArgument is returned when a required
	// field is empty, ErrInvalidArgument when it is present but malformed.
	ErrMissingArgument = errors.New("missing argument")
	ErrInvalidArgument = errors.New("invalid argument")

	// Login errors.
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrAlreadyAuthenticated = errors.New("already logged in")

	// Auth errors (invalid, malformed, revoked or wrong-kind token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")

	// Message errors.
	ErrReceiverNotFound = errors.New("receiver does not exist")
	ErrSelfSend         = errors.New("cannot send a message to yourself")
)
