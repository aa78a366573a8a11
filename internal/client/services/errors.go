package services

import "errors"

// Errors returned by the auth orchestrator. Each failure has already been
// reported through the Notifier by the time the caller sees it.
var (
	ErrValidation           = errors.New("username and password are required")
	ErrInvalidCredentials   = errors.New("login rejected")
	ErrNoSavedCredentials   = errors.New("no saved credentials")
	ErrCorruptCredentials   = errors.New("saved credentials are unreadable")
	ErrBiometricFailed      = errors.New("biometric check failed")
	ErrBiometricUnavailable = errors.New("biometric check unavailable")
	ErrNotAuthenticated     = errors.New("not authenticated")
)
