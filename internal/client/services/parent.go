package services

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/dmitrijs2005/madrasati/internal/client/client"
	"github.com/dmitrijs2005/madrasati/internal/client/models"
	"github.com/dmitrijs2005/madrasati/internal/client/session"
	"github.com/dmitrijs2005/madrasati/internal/logging"
)

// ParentService reads the logged-in parent's data from the backend.
// Every call fails with ErrNotAuthenticated when there is no session;
// a token the backend no longer accepts surfaces as client.ErrUnauthorized.
type ParentService interface {
	Overview(ctx context.Context) (*models.ParentDetails, error)
	Students(ctx context.Context) ([]models.StudentSummary, error)
	Trips(ctx context.Context) ([]models.Trip, error)
	Document(ctx context.Context, documentID string) (*models.Document, []byte, error)
}

type parentService struct {
	api     client.ParentAPI
	session session.Reader
	log     logging.Logger
}

func NewParentService(api client.ParentAPI, s session.Reader, log logging.Logger) ParentService {
	return &parentService{api: api, session: s, log: log}
}

// parentID returns the user_id of the session, which the backend uses as
// the parent id.
func (p *parentService) parentID() (string, error) {
	if !p.session.IsAuthenticated() {
		return "", ErrNotAuthenticated
	}
	u := p.session.User()
	if u == nil || u.UserID == "" {
		return "", ErrNotAuthenticated
	}
	return u.UserID, nil
}

// Overview returns the parent, their children, each child's circuit and
// payment history.
func (p *parentService) Overview(ctx context.Context) (*models.ParentDetails, error) {
	id, err := p.parentID()
	if err != nil {
		return nil, err
	}
	d, err := p.api.GetCircuitDetails(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("circuit details: %w", err)
	}
	if d == nil {
		d = &models.ParentDetails{}
	}
	p.log.Debug(ctx, "circuit details loaded", "children", len(d.Children))
	return d, nil
}

func (p *parentService) Students(ctx context.Context) ([]models.StudentSummary, error) {
	id, err := p.parentID()
	if err != nil {
		return nil, err
	}
	s, err := p.api.GetStudentsByParentID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("students: %w", err)
	}
	return s, nil
}

func (p *parentService) Trips(ctx context.Context) ([]models.Trip, error) {
	if _, err := p.parentID(); err != nil {
		return nil, err
	}
	t, err := p.api.GetTrips(ctx)
	if err != nil {
		return nil, fmt.Errorf("trips: %w", err)
	}
	return t, nil
}

// Document fetches a document and decodes its content.
func (p *parentService) Document(ctx context.Context, documentID string) (*models.Document, []byte, error) {
	if _, err := p.parentID(); err != nil {
		return nil, nil, err
	}
	doc, err := p.api.GetDocumentBase64(ctx, documentID)
	if err != nil {
		return nil, nil, fmt.Errorf("document %s: %w", documentID, err)
	}
	content, err := base64.StdEncoding.DecodeString(doc.Base64Content)
	if err != nil {
		return nil, nil, fmt.Errorf("document %s: %w: %w", documentID, client.ErrBadResponse, err)
	}
	return doc, content, nil
}
