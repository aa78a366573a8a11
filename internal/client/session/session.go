// Package session owns the authenticated-user state of the client.
//
// A Store is created once per process, rehydrated from its Persister before
// anything reads it, and then handed to the components that need it: the
// auth service gets the *Store (read/write), everything else gets a Reader.
// Only SetCredentials and Logout mutate it.
package session

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/madrasati/internal/client/models"
	"github.com/dmitrijs2005/madrasati/internal/logging"
)

// Reader is the read-only view of the session.
type Reader interface {
	User() *models.LoginResult
	Token() string
	IsAuthenticated() bool
	HasOnboarded() bool
	Snapshot() Snapshot
}

// Snapshot is a consistent copy of the session at one point in time.
type Snapshot struct {
	User            *models.LoginResult
	Token           string
	IsAuthenticated bool
	HasOnboarded    bool
}

// Persisted is the subset of the session that survives a restart.
// token and isAuthenticated are derived from User on rehydration.
type Persisted struct {
	User         *models.LoginResult
	HasOnboarded bool
}

// Persister loads and saves the persisted subset.
type Persister interface {
	Load(ctx context.Context) (Persisted, error)
	Save(ctx context.Context, p Persisted) error
}

// Store is the single source of truth for who is logged in.
type Store struct {
	mu            sync.RWMutex
	user          *models.LoginResult
	token         string
	authenticated bool
	onboarded     bool

	persister Persister
	log       logging.Logger
}

var _ Reader = (*Store)(nil)

// NewStore returns an empty, logged-out store. Call Rehydrate before use.
func NewStore(p Persister, log logging.Logger) *Store {
	return &Store{persister: p, log: log}
}

// Rehydrate replaces the in-memory state with the persisted subset and
// derives token and isAuthenticated from the restored user. The token is not
// checked against the server or its expiration.
//
// A load error leaves the store logged out and not onboarded.
func (s *Store) Rehydrate(ctx context.Context) error {
	p, err := s.persister.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.user, s.token, s.authenticated, s.onboarded = nil, "", false, false
		return err
	}

	s.onboarded = p.HasOnboarded
	s.applyUser(p.User)

	s.log.Debug(ctx, "session rehydrated", "authenticated", s.authenticated, "has_onboarded", s.onboarded)
	return nil
}

// SetCredentials stores a successful login result. Fields are not
// validated; a result without a token leaves the session unauthenticated
// so that isAuthenticated always implies a non-empty token.
// hasOnboarded becomes true and stays true.
func (s *Store) SetCredentials(ctx context.Context, result models.LoginResult) {
	s.mu.Lock()
	s.onboarded = true
	s.applyUser(&result)
	p := s.persistedLocked()
	s.mu.Unlock()

	if result.Token == "" {
		s.log.Warn(ctx, "login result carries no token", "user_id", result.UserID)
	}
	s.save(ctx, p)
}

// Logout clears user, token and isAuthenticated. hasOnboarded is kept.
// Calling it on a logged-out store is a no-op apart from the save.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.user, s.token, s.authenticated = nil, "", false
	p := s.persistedLocked()
	s.mu.Unlock()

	s.save(ctx, p)
}

func (s *Store) User() *models.LoginResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyUser(s.user)
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

func (s *Store) HasOnboarded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.onboarded
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		User:            copyUser(s.user),
		Token:           s.token,
		IsAuthenticated: s.authenticated,
		HasOnboarded:    s.onboarded,
	}
}

// applyUser sets user and the fields derived from it. Callers hold mu.
func (s *Store) applyUser(u *models.LoginResult) {
	s.user = copyUser(u)
	s.token = ""
	if s.user != nil {
		s.token = s.user.Token
	}
	s.authenticated = s.user != nil && s.token != ""
}

func (s *Store) persistedLocked() Persisted {
	return Persisted{User: copyUser(s.user), HasOnboarded: s.onboarded}
}

// save writes through to the persister. The in-memory state is already
// updated, so a failed write only costs the next restart.
func (s *Store) save(ctx context.Context, p Persisted) {
	if s.persister == nil {
		return
	}
	if err := s.persister.Save(ctx, p); err != nil {
		s.log.Error(ctx, "session save failed", "error", err)
	}
}

func copyUser(u *models.LoginResult) *models.LoginResult {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
