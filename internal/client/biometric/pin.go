package biometric

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/madrasati/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/madrasati/internal/common"
	"github.com/dmitrijs2005/madrasati/internal/cryptox"
	"github.com/dmitrijs2005/madrasati/internal/dbx"
)

const (
	deviceNamespace = "device"
	keyPINSalt      = "pin_salt"
	keyPINVerifier  = "pin_verifier"
)

// FallbackInput is what the parent types at the PIN prompt to switch to
// the password form instead.
const FallbackInput = "p"

// MaxAttempts consecutive mismatches lock the device until re-enrolment
// or restart.
const MaxAttempts = 5

// MinPINLength is the shortest PIN Enroll accepts.
const MinPINLength = 4

var ErrWeakPIN = fmt.Errorf("PIN must have at least %d characters", MinPINLength)

// ReadFunc shows label and reads one line of secret input. The REPL
// supplies one that reads from the terminal without echo.
type ReadFunc func(label string) (string, error)

// PINDevice is a terminal stand-in for a platform authenticator: the
// "biometric" is a device PIN whose argon2 verifier lives in the local
// database. The hardware is always present; the device is enrolled once a
// PIN has been set.
type PINDevice struct {
	db    *sql.DB
	kinds []Kind
	read  ReadFunc

	mu       sync.Mutex
	failures int
}

// NewPINDevice returns a device that reports kind as its modality and reads
// the PIN with read.
func NewPINDevice(db *sql.DB, kind Kind, read ReadFunc) *PINDevice {
	kinds := []Kind{}
	if kind != KindNone && kind != "" {
		kinds = append(kinds, kind)
	}
	return &PINDevice{db: db, kinds: kinds, read: read}
}

func (d *PINDevice) repo(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db, deviceNamespace)
}

func (d *PINDevice) HasHardware(context.Context) (bool, error) {
	return true, nil
}

func (d *PINDevice) IsEnrolled(ctx context.Context) (bool, error) {
	_, err := d.repo(d.db).Get(ctx, keyPINVerifier)
	if errors.Is(err, common.ErrorNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (d *PINDevice) SupportedTypes(context.Context) ([]Kind, error) {
	return append([]Kind(nil), d.kinds...), nil
}

// Enroll replaces the PIN and clears any lockout.
func (d *PINDevice) Enroll(ctx context.Context, pin string) error {
	if len(pin) < MinPINLength {
		return ErrWeakPIN
	}

	salt := common.GenerateRandByteArray(16)
	verifier := cryptox.MakeVerifier(cryptox.DeriveKey([]byte(pin), salt))

	err := dbx.WithTx(ctx, d.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := d.repo(tx)
		if err := repo.Set(ctx, keyPINSalt, salt); err != nil {
			return err
		}
		return repo.Set(ctx, keyPINVerifier, verifier)
	})
	if err != nil {
		return fmt.Errorf("enroll PIN: %w", err)
	}

	d.mu.Lock()
	d.failures = 0
	d.mu.Unlock()
	return nil
}

// Unenroll removes the PIN; the device becomes unavailable.
func (d *PINDevice) Unenroll(ctx context.Context) error {
	return dbx.WithTx(ctx, d.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := d.repo(tx)
		if err := repo.Delete(ctx, keyPINVerifier); err != nil {
			return err
		}
		return repo.Delete(ctx, keyPINSalt)
	})
}

// Authenticate prompts once. Empty input cancels, FallbackInput asks for the
// password form, anything else is checked against the enrolled PIN.
func (d *PINDevice) Authenticate(ctx context.Context, p Prompt) (Result, error) {
	d.mu.Lock()
	locked := d.failures >= MaxAttempts
	d.mu.Unlock()
	if locked {
		return Result{Reason: ReasonLockout}, nil
	}

	repo := d.repo(d.db)
	salt, err := repo.Get(ctx, keyPINSalt)
	if err != nil {
		return Result{}, fmt.Errorf("read PIN salt: %w", err)
	}
	saved, err := repo.Get(ctx, keyPINVerifier)
	if err != nil {
		return Result{}, fmt.Errorf("read PIN verifier: %w", err)
	}

	label := fmt.Sprintf("%s\n[%s] %s  [Enter] %s\nPIN: ", p.Message, FallbackInput, p.Fallback, p.Cancel)
	input, err := d.read(label)
	if err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	switch strings.TrimSpace(input) {
	case "":
		return Result{Reason: ReasonUserCancel}, nil
	case FallbackInput:
		return Result{Reason: ReasonFallback}, nil
	}

	candidate := cryptox.MakeVerifier(cryptox.DeriveKey([]byte(input), salt))

	d.mu.Lock()
	defer d.mu.Unlock()
	if cryptox.VerifierMatches(saved, candidate) {
		d.failures = 0
		return Result{Success: true}, nil
	}
	d.failures++
	if d.failures >= MaxAttempts {
		return Result{Reason: ReasonLockout}, nil
	}
	return Result{Reason: ReasonMismatch}, nil
}
