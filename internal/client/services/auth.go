// Package services contains the application services of the Madrasati
// client. This file defines the auth orchestrator: it decides which login
// screen the parent sees and runs the password and biometric login flows
// over the session, the keychain, the biometric gate and the API client.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/madrasati/internal/client/biometric"
	"github.com/dmitrijs2005/madrasati/internal/client/client"
	"github.com/dmitrijs2005/madrasati/internal/client/i18n"
	"github.com/dmitrijs2005/madrasati/internal/client/keychain"
	"github.com/dmitrijs2005/madrasati/internal/client/models"
	"github.com/dmitrijs2005/madrasati/internal/client/session"
	"github.com/dmitrijs2005/madrasati/internal/logging"
)

// State is the login screen currently shown.
type State int

const (
	StateOnboarding State = iota
	StatePasswordLogin
	StateBiometricPrompt
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateOnboarding:
		return "onboarding"
	case StatePasswordLogin:
		return "password"
	case StateBiometricPrompt:
		return "biometric"
	case StateAuthenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// SessionStore is the read/write view of the session the orchestrator needs.
type SessionStore interface {
	session.Reader
	SetCredentials(ctx context.Context, result models.LoginResult)
	Logout(ctx context.Context)
}

// CredentialStore keeps the pair replayed by a biometric login.
type CredentialStore interface {
	Save(ctx context.Context, username, password string) error
	Load(ctx context.Context) keychain.LoadResult
}

// BiometricGate checks the parent before a credential replay.
type BiometricGate interface {
	CheckAvailability(ctx context.Context) biometric.Capability
	Authenticate(ctx context.Context, prompt, fallback, cancel string) (biometric.Result, error)
}

// AuthService drives the login state machine.
//
// Contract:
//   - Resolve: recompute biometric capability and the login screen to show.
//   - TogglePasswordMode: switch a returning parent between biometric and password.
//   - PasswordLogin / BiometricLogin: run a login flow; failures are notified and returned.
//   - Logout: end the session and go back to a login screen.
//   - CompleteOnboarding: leave the onboarding screen for the password form.
//   - SavedUsername: the username kept for biometric replay, if any.
type AuthService interface {
	State() State
	Capability() biometric.Capability
	Resolve(ctx context.Context) State
	TogglePasswordMode(ctx context.Context) (State, error)
	PasswordLogin(ctx context.Context, username, password string) error
	BiometricLogin(ctx context.Context) error
	Logout(ctx context.Context) State
	CompleteOnboarding() State
	SavedUsername(ctx context.Context) string
}

// AuthDeps are the collaborators of the orchestrator.
type AuthDeps struct {
	Session     SessionStore
	Credentials CredentialStore
	Gate        BiometricGate
	API         client.AuthAPI
	Notifier    Notifier
	Translator  i18n.Translator
	Log         logging.Logger
}

type authService struct {
	AuthDeps

	mu             sync.Mutex
	state          State
	capability     biometric.Capability
	passwordMode   bool
	leftOnboarding bool
}

// NewAuthService returns an orchestrator in its initial state. Call
// Resolve once the session has been rehydrated.
func NewAuthService(d AuthDeps) AuthService {
	return &authService{AuthDeps: d, capability: biometric.Capability{Kind: biometric.KindNone}}
}

func (a *authService) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *authService) Capability() biometric.Capability {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.capability
}

func (a *authService) Resolve(ctx context.Context) State {
	capability := a.Gate.CheckAvailability(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.capability = capability
	a.state = a.resolveLocked()
	return a.state
}

// resolveLocked applies the initial-screen rules. Callers hold mu.
func (a *authService) resolveLocked() State {
	switch {
	case a.Session.IsAuthenticated():
		return StateAuthenticated
	case !a.Session.HasOnboarded() && !a.leftOnboarding:
		return StateOnboarding
	case !a.Session.HasOnboarded():
		return StatePasswordLogin
	case a.capability.Available && !a.passwordMode:
		return StateBiometricPrompt
	default:
		return StatePasswordLogin
	}
}

// TogglePasswordMode flips a returning parent between the biometric prompt
// and the password form. Switching to biometric re-checks the device and
// fails with ErrBiometricUnavailable when it cannot be used. Other states
// are left as they are. hasOnboarded is never touched.
func (a *authService) TogglePasswordMode(ctx context.Context) (State, error) {
	switch a.State() {
	case StateBiometricPrompt:
		a.mu.Lock()
		a.passwordMode = true
		a.state = StatePasswordLogin
		a.mu.Unlock()
		return StatePasswordLogin, nil

	case StatePasswordLogin:
		if !a.Session.HasOnboarded() {
			return StatePasswordLogin, ErrBiometricUnavailable
		}
		capability := a.Gate.CheckAvailability(ctx)
		a.mu.Lock()
		defer a.mu.Unlock()
		a.capability = capability
		if !capability.Available {
			return a.state, ErrBiometricUnavailable
		}
		a.passwordMode = false
		a.state = StateBiometricPrompt
		return a.state, nil

	default:
		return a.State(), nil
	}
}

func (a *authService) CompleteOnboarding() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == StateOnboarding {
		a.leftOnboarding = true
		a.state = StatePasswordLogin
	}
	return a.state
}

// PasswordLogin validates the form, logs in, stores the session and then
// keeps the pair for later biometric logins. Empty fields never reach the
// network.
func (a *authService) PasswordLogin(ctx context.Context, username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		a.warn(ctx, "login.fillAllFields")
		return ErrValidation
	}

	res, err := a.login(ctx, username, password, "password")
	if err != nil {
		return err
	}

	a.Session.SetCredentials(ctx, res)
	if err := a.Credentials.Save(ctx, username, password); err != nil {
		a.Log.Error(ctx, "saving credentials failed", "error", err)
	}
	a.authenticated(ctx, res)
	return nil
}

// BiometricLogin checks the parent with the gate and replays the saved
// pair. The pair is not saved again and is kept even when the backend
// rejects it.
func (a *authService) BiometricLogin(ctx context.Context) error {
	res, err := a.Gate.Authenticate(ctx, a.Translator.T("login.biometricPrompt"), a.Translator.T("login.usePassword"), a.Translator.T("cancel"))
	switch {
	case errors.Is(err, biometric.ErrUnavailable):
		a.danger(ctx, "login.biometricUnavailable")
		a.Resolve(ctx)
		return ErrBiometricUnavailable
	case err != nil:
		a.Log.Warn(ctx, "biometric check error", "error", err)
		a.danger(ctx, "login.biometricFailed")
		return fmt.Errorf("%w: %w", ErrBiometricFailed, err)
	case !res.Success && res.Reason == biometric.ReasonFallback:
		a.mu.Lock()
		a.passwordMode = true
		a.state = StatePasswordLogin
		a.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrBiometricFailed, res.Reason)
	case !res.Success:
		a.danger(ctx, "login.biometricFailed")
		return fmt.Errorf("%w: %s", ErrBiometricFailed, res.Reason)
	}

	saved := a.Credentials.Load(ctx)
	switch saved.Status {
	case keychain.NotFound:
		a.danger(ctx, "login.noSavedCredentials")
		return ErrNoSavedCredentials
	case keychain.Corrupt:
		a.danger(ctx, "login.corruptCredentials")
		return ErrCorruptCredentials
	}

	result, err := a.login(ctx, saved.Credentials.Username, saved.Credentials.Password, "biometric")
	if err != nil {
		return err
	}
	a.Session.SetCredentials(ctx, result)
	a.authenticated(ctx, result)
	return nil
}

// Logout ends the session. The saved pair stays, so a returning parent can
// still use the biometric prompt.
func (a *authService) Logout(ctx context.Context) State {
	a.Session.Logout(ctx)
	a.mu.Lock()
	a.passwordMode = false
	a.mu.Unlock()
	return a.Resolve(ctx)
}

func (a *authService) SavedUsername(ctx context.Context) string {
	res := a.Credentials.Load(ctx)
	if res.Status != keychain.Found {
		return ""
	}
	return res.Credentials.Username
}

// login calls the API. Rejections and transport failures look the same to
// the parent. A result without a token is treated as a rejection so that
// the session never claims to be authenticated without one.
func (a *authService) login(ctx context.Context, username, password, method string) (models.LoginResult, error) {
	res, err := a.API.Login(ctx, username, password)
	if err == nil && (res == nil || res.Token == "") {
		err = client.ErrBadResponse
	}
	if err != nil {
		a.Log.Warn(ctx, "login failed", "method", method, "error", err)
		a.danger(ctx, "login.invalidCredentials")
		return models.LoginResult{}, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}
	a.Log.Info(ctx, "login succeeded", "method", method, "user_id", res.UserID)
	return *res, nil
}

func (a *authService) authenticated(ctx context.Context, res models.LoginResult) {
	a.mu.Lock()
	a.passwordMode = false
	a.state = StateAuthenticated
	a.mu.Unlock()

	a.Notifier.Notify(ctx, Notification{
		Level:       LevelSuccess,
		Title:       a.Translator.T("success"),
		Description: a.Translator.T("login.successMessage", res.Username),
	})
}

func (a *authService) warn(ctx context.Context, key string) {
	a.Notifier.Notify(ctx, Notification{Level: LevelWarning, Title: a.Translator.T("warn"), Description: a.Translator.T(key)})
}

func (a *authService) danger(ctx context.Context, key string) {
	a.Notifier.Notify(ctx, Notification{Level: LevelDanger, Title: a.Translator.T("error"), Description: a.Translator.T(key)})
}
