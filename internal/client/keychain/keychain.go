// Package keychain keeps the last username/password pair that logged in
// successfully, so that a biometric check can replay it later.
//
// The pair is sealed with AES-GCM under a key derived from a random
// per-device secret and stored in the local database under the configured
// keychain service name.
package keychain

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/madrasati/internal/client/models"
	"github.com/dmitrijs2005/madrasati/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/madrasati/internal/common"
	"github.com/dmitrijs2005/madrasati/internal/cryptox"
	"github.com/dmitrijs2005/madrasati/internal/logging"
)

// DefaultService is the keychain service name used when none is configured.
const DefaultService = "madrasati-wali-credentials"

const keyCredentials = "credentials"

// ErrIncomplete is returned by Save when the username or password is empty.
var ErrIncomplete = errors.New("keychain: username and password are required")

// LoadStatus tells apart the three outcomes of Load.
type LoadStatus int

const (
	NotFound LoadStatus = iota
	Found
	Corrupt
)

func (s LoadStatus) String() string {
	switch s {
	case Found:
		return "found"
	case Corrupt:
		return "corrupt"
	default:
		return "not_found"
	}
}

// LoadResult is returned by Load. Credentials is set only when Status is Found.
type LoadResult struct {
	Status      LoadStatus
	Credentials models.Credentials
}

type Keychain struct {
	db      *sql.DB
	service string
	log     logging.Logger

	mu  sync.Mutex
	key []byte
}

// New returns a Keychain storing its entry under service. An empty service
// falls back to DefaultService.
func New(db *sql.DB, service string, log logging.Logger) *Keychain {
	if service == "" {
		service = DefaultService
	}
	return &Keychain{db: db, service: service, log: log.With("keychain", service)}
}

func (k *Keychain) repo() metadata.Repository {
	return metadata.NewSQLiteRepository(k.db, k.service)
}

// Save overwrites the stored pair. An incomplete pair is refused and the
// previous entry is left in place.
func (k *Keychain) Save(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return ErrIncomplete
	}

	key, err := k.deviceKey(ctx)
	if err != nil {
		return err
	}

	blob, err := cryptox.Seal(models.Credentials{Username: username, Password: password}, key)
	if err != nil {
		return fmt.Errorf("seal credentials: %w", err)
	}
	return k.repo().Set(ctx, keyCredentials, blob)
}

// Load never fails outright: a missing entry is NotFound, and anything
// that cannot be read back into a complete pair is Corrupt.
func (k *Keychain) Load(ctx context.Context) LoadResult {
	blob, err := k.repo().Get(ctx, keyCredentials)
	if errors.Is(err, common.ErrorNotFound) {
		return LoadResult{Status: NotFound}
	}
	if err != nil {
		k.log.Error(ctx, "read credentials", "error", err)
		return LoadResult{Status: Corrupt}
	}

	key, err := k.deviceKey(ctx)
	if err != nil {
		k.log.Error(ctx, "device key unavailable", "error", err)
		return LoadResult{Status: Corrupt}
	}

	var c models.Credentials
	if err := cryptox.Open(blob, key, &c); err != nil {
		k.log.Warn(ctx, "stored credentials do not unseal", "error", err)
		return LoadResult{Status: Corrupt}
	}
	if c.Username == "" || c.Password == "" {
		k.log.Warn(ctx, "stored credentials are incomplete")
		return LoadResult{Status: Corrupt}
	}
	return LoadResult{Status: Found, Credentials: c}
}

// Clear removes the stored pair. Clearing an empty keychain is not an error.
func (k *Keychain) Clear(ctx context.Context) error {
	return k.repo().Delete(ctx, keyCredentials)
}
