package client

import (
	"context"

	"github.com/dmitrijs2005/madrasati/internal/client/models"
)

// AuthAPI issues the login call.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (*models.LoginResult, error)
}

// ParentAPI reads the data shown to a logged-in parent.
type ParentAPI interface {
	GetCircuitDetails(ctx context.Context, parentID string) (*models.ParentDetails, error)
	GetTrips(ctx context.Context) ([]models.Trip, error)
	GetStudentsByParentID(ctx context.Context, parentID string) ([]models.StudentSummary, error)
	GetDocumentBase64(ctx context.Context, documentID string) (*models.Document, error)
}

// Client is the complete backend contract.
type Client interface {
	AuthAPI
	ParentAPI
}

// TokenSource supplies the bearer token for authenticated requests.
// An empty token means the request goes out without Authorization.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }
