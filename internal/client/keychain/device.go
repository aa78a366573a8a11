package keychain

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/madrasati/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/madrasati/internal/common"
	"github.com/dmitrijs2005/madrasati/internal/cryptox"
	"github.com/dmitrijs2005/madrasati/internal/dbx"
	"github.com/google/uuid"
)

// DeviceNamespace holds values bound to this installation rather than to
// a user: the keychain secret and the device PIN verifier.
const DeviceNamespace = "device"

const (
	keySecret = "keychain_secret"
	keySalt   = "keychain_salt"
)

const secretSize = 32

// deviceKey returns the sealing key, creating the device secret on first
// use. The derived key is cached for the life of the Keychain.
func (k *Keychain) deviceKey(ctx context.Context) ([]byte, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.key != nil {
		return k.key, nil
	}

	var secret, salt []byte
	err := dbx.WithTx(ctx, k.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx, DeviceNamespace)

		var err error
		secret, err = repo.Get(ctx, keySecret)
		if errors.Is(err, common.ErrorNotFound) {
			secret = common.GenerateRandByteArray(secretSize)
			salt = []byte(uuid.NewString())
			if err := repo.Set(ctx, keySecret, secret); err != nil {
				return err
			}
			return repo.Set(ctx, keySalt, salt)
		}
		if err != nil {
			return err
		}

		salt, err = repo.Get(ctx, keySalt)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("load device secret: %w", err)
	}
	if len(secret) != secretSize {
		return nil, fmt.Errorf("device secret: %w", common.ErrorCorrupted)
	}

	k.key = cryptox.DeriveKey(secret, salt)
	common.WipeByteArray(secret)
	return k.key, nil
}
