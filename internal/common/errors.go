// Package common defines sentinel errors and small helpers shared by the
// Madrasati client packages. Callers should use errors.Is to match the errors.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Stored values that exist but cannot be decoded.
	ErrorCorrupted = errors.New("corrupted data")
)
