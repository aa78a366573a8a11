// Package client talks to the Madrasati REST backend.
//
// # Overview
//
// The package provides:
//  1. The API contract (AuthAPI, ParentAPI, Client) consumed by the services.
//  2. HTTPClient, a JSON-over-HTTP implementation that unwraps the backend
//     envelope {status, message, code, data} and returns only data.
//
// Authenticated calls carry "Authorization: Bearer <token>" taken from a
// TokenSource, normally the session store. Login itself is anonymous.
//
// # Error Handling
//
// Failures map onto sentinel errors matched with errors.Is: ErrUnavailable,
// ErrUnauthorized, ErrRejected, ErrBadResponse. There is no retry; a request
// either succeeds or returns one error.
package client
