package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/madrasati/internal/client/models"
	"github.com/dmitrijs2005/madrasati/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/madrasati/internal/common"
	"github.com/dmitrijs2005/madrasati/internal/dbx"
)

// Namespace is the metadata namespace holding the persisted session.
const Namespace = "session"

const (
	keyUser         = "user"
	keyHasOnboarded = "hasOnboarded"
)

// SQLPersister keeps exactly two keys, user and hasOnboarded, in the
// local database.
type SQLPersister struct {
	db *sql.DB
}

func NewSQLPersister(db *sql.DB) *SQLPersister {
	return &SQLPersister{db: db}
}

// Load returns the persisted subset. A stored user that no longer decodes
// is dropped (the parent logs in again) but hasOnboarded is still honoured.
func (p *SQLPersister) Load(ctx context.Context) (Persisted, error) {
	repo := metadata.NewSQLiteRepository(p.db, Namespace)
	var out Persisted

	raw, err := repo.Get(ctx, keyHasOnboarded)
	switch {
	case errors.Is(err, common.ErrorNotFound):
	case err != nil:
		return Persisted{}, err
	default:
		out.HasOnboarded, _ = strconv.ParseBool(string(raw))
	}

	raw, err = repo.Get(ctx, keyUser)
	switch {
	case errors.Is(err, common.ErrorNotFound):
	case err != nil:
		return Persisted{}, err
	default:
		var u models.LoginResult
		if json.Unmarshal(raw, &u) == nil {
			out.User = &u
		}
	}
	return out, nil
}

// Save writes both keys in one transaction; a nil user removes the key.
func (p *SQLPersister) Save(ctx context.Context, s Persisted) error {
	return dbx.WithTx(ctx, p.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx, Namespace)

		if err := repo.Set(ctx, keyHasOnboarded, []byte(strconv.FormatBool(s.HasOnboarded))); err != nil {
			return err
		}
		if s.User == nil {
			return repo.Delete(ctx, keyUser)
		}
		raw, err := json.Marshal(s.User)
		if err != nil {
			return fmt.Errorf("marshal session user: %w", err)
		}
		return repo.Set(ctx, keyUser, raw)
	})
}
