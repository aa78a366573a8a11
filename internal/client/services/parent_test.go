package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/madrasati/internal/client/client"
	"github.com/dmitrijs2005/madrasati/internal/client/models"
	"github.com/dmitrijs2005/madrasati/internal/client/session"
	"github.com/dmitrijs2005/madrasati/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeParentAPI struct {
	parentIDs []string
	details   *models.ParentDetails
	trips     []models.Trip
	students  []models.StudentSummary
	doc       *models.Document
	err       error
}

func (f *fakeParentAPI) GetCircuitDetails(_ context.Context, id string) (*models.ParentDetails, error) {
	f.parentIDs = append(f.parentIDs, id)
	return f.details, f.err
}

func (f *fakeParentAPI) GetTrips(context.Context) ([]models.Trip, error) { return f.trips, f.err }

func (f *fakeParentAPI) GetStudentsByParentID(_ context.Context, id string) ([]models.StudentSummary, error) {
	f.parentIDs = append(f.parentIDs, id)
	return f.students, f.err
}

func (f *fakeParentAPI) GetDocumentBase64(context.Context, string) (*models.Document, error) {
	return f.doc, f.err
}

func loggedIn(t *testing.T) *session.Store {
	t.Helper()
	s := session.NewStore(nil, logging.Nop())
	s.SetCredentials(context.Background(), models.LoginResult{Token: "t", UserID: "parent-42", Username: "AD108565"})
	return s
}

func TestParentService_RequiresSession(t *testing.T) {
	ctx := context.Background()
	api := &fakeParentAPI{}
	svc := NewParentService(api, session.NewStore(nil, logging.Nop()), logging.Nop())

	_, err := svc.Overview(ctx)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	_, err = svc.Students(ctx)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	_, err = svc.Trips(ctx)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	_, _, err = svc.Document(ctx, "d1")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Empty(t, api.parentIDs)
}

func TestParentService_OverviewUsesUserID(t *testing.T) {
	api := &fakeParentAPI{details: &models.ParentDetails{Children: []models.Child{{Student: models.Student{ID: "s1"}}}}}
	svc := NewParentService(api, loggedIn(t), logging.Nop())

	d, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Len(t, d.Children, 1)
	assert.Equal(t, []string{"parent-42"}, api.parentIDs)
}

func TestParentService_ExpiredTokenSurfaces(t *testing.T) {
	api := &fakeParentAPI{err: fmt.Errorf("get: %w", client.ErrUnauthorized)}
	svc := NewParentService(api, loggedIn(t), logging.Nop())

	_, err := svc.Overview(context.Background())
	assert.ErrorIs(t, err, client.ErrUnauthorized)
}

func TestParentService_Document(t *testing.T) {
	api := &fakeParentAPI{doc: &models.Document{FileName: "a.txt", Base64Content: base64.StdEncoding.EncodeToString([]byte("hello"))}}
	svc := NewParentService(api, loggedIn(t), logging.Nop())

	doc, content, err := svc.Document(context.Background(), "d1")
	require.NoError(t, err)
	assert.Equal(t, "a.txt", doc.FileName)
	assert.Equal(t, []byte("hello"), content)

	api.doc = &models.Document{Base64Content: "%%%"}
	_, _, err = svc.Document(context.Background(), "d1")
	assert.ErrorIs(t, err, client.ErrBadResponse)
}
