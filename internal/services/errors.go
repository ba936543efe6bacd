package services

import "errors"

// Data service errors
var (
	ErrNoValidData    = errors.New("no valid data found in file")
	ErrDecodeFailed   = errors.New("file could not be decoded")
	ErrStorage        = errors.New("failed to persist dataset")
	ErrUpstream       = errors.New("upstream source failed")
	ErrSheetsDisabled = errors.New("google sheets import is not configured")
	ErrInvalidInput   = errors.New("invalid input")
)

// Auth service errors
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrSessionExpired     = errors.New("session expired")
)

// General errors
var (
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
)
