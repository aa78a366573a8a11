package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dmitrijs2005/madrasati/internal/client/biometric"
	"github.com/dmitrijs2005/madrasati/internal/client/client"
	"github.com/dmitrijs2005/madrasati/internal/client/keychain"
	"github.com/dmitrijs2005/madrasati/internal/client/models"
	"github.com/dmitrijs2005/madrasati/internal/client/session"
	"github.com/dmitrijs2005/madrasati/internal/client/storage"
	"github.com/dmitrijs2005/madrasati/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fakes ----

type fakeAPI struct {
	calls  []models.Credentials
	result *models.LoginResult
	err    error
}

func (f *fakeAPI) Login(_ context.Context, username, password string) (*models.LoginResult, error) {
	f.calls = append(f.calls, models.Credentials{Username: username, Password: password})
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &models.LoginResult{Token: "tok-" + username, UserID: "p-1", Username: username, Role: "PARENT"}, nil
}

type fakeGate struct {
	capability biometric.Capability
	result     biometric.Result
	err        error
	prompts    [][3]string
}

func (f *fakeGate) CheckAvailability(context.Context) biometric.Capability { return f.capability }

func (f *fakeGate) Authenticate(_ context.Context, prompt, fallback, cancel string) (biometric.Result, error) {
	f.prompts = append(f.prompts, [3]string{prompt, fallback, cancel})
	if f.err != nil {
		return biometric.Result{}, f.err
	}
	return f.result, nil
}

type fakeCredentials struct {
	saved   keychain.LoadResult
	saves   int
	saveErr error
}

func (f *fakeCredentials) Save(_ context.Context, u, p string) error {
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = keychain.LoadResult{Status: keychain.Found, Credentials: models.Credentials{Username: u, Password: p}}
	return nil
}

func (f *fakeCredentials) Load(context.Context) keychain.LoadResult { return f.saved }

type recorder struct {
	got []Notification
}

func (r *recorder) Notify(_ context.Context, n Notification) { r.got = append(r.got, n) }

func (r *recorder) last() Notification {
	if len(r.got) == 0 {
		return Notification{}
	}
	return r.got[len(r.got)-1]
}

type keyTranslator struct{}

func (keyTranslator) T(key string, args ...any) string {
	parts := []string{key}
	for _, a := range args {
		parts = append(parts, fmt.Sprint(a))
	}
	return strings.Join(parts, "|")
}

type fixture struct {
	svc   AuthService
	store *session.Store
	creds *fakeCredentials
	gate  *fakeGate
	api   *fakeAPI
	notes *recorder
}

var available = biometric.Capability{Available: true, Kind: biometric.KindFingerprint}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: session.NewStore(nil, logging.Nop()),
		creds: &fakeCredentials{},
		gate:  &fakeGate{capability: biometric.Capability{Kind: biometric.KindNone}},
		api:   &fakeAPI{},
		notes: &recorder{},
	}
	f.svc = NewAuthService(AuthDeps{
		Session:     f.store,
		Credentials: f.creds,
		Gate:        f.gate,
		API:         f.api,
		Notifier:    f.notes,
		Translator:  keyTranslator{},
		Log:         logging.Nop(),
	})
	return f
}

// returning puts the fixture in the state of a parent who logged in on
// this device before and has since logged out.
func (f *fixture) returning(t *testing.T) {
	t.Helper()
	f.store.SetCredentials(context.Background(), models.LoginResult{Token: "old", Username: "AD108565"})
	f.store.Logout(context.Background())
	f.creds.saved = keychain.LoadResult{Status: keychain.Found, Credentials: models.Credentials{Username: "AD108565", Password: "AD108565"}}
}

// ---- initial state ----

func TestResolve_NeverOnboardedIsOnboarding(t *testing.T) {
	for _, capability := range []biometric.Capability{available, {Kind: biometric.KindNone}} {
		f := newFixture(t)
		f.gate.capability = capability
		assert.Equal(t, StateOnboarding, f.svc.Resolve(context.Background()))
	}
}

func TestResolve_ReturningWithoutBiometricsIsPasswordLogin(t *testing.T) {
	f := newFixture(t)
	f.returning(t)
	assert.Equal(t, StatePasswordLogin, f.svc.Resolve(context.Background()))
}

func TestResolve_ReturningWithBiometricsIsBiometricPrompt(t *testing.T) {
	f := newFixture(t)
	f.returning(t)
	f.gate.capability = available
	assert.Equal(t, StateBiometricPrompt, f.svc.Resolve(context.Background()))
	assert.Equal(t, available, f.svc.Capability())
}

func TestResolve_RestoredSessionIsAuthenticated(t *testing.T) {
	f := newFixture(t)
	f.store.SetCredentials(context.Background(), models.LoginResult{Token: "t", Username: "u"})
	assert.Equal(t, StateAuthenticated, f.svc.Resolve(context.Background()))
}

func TestResolve_RecomputesCapability(t *testing.T) {
	f := newFixture(t)
	f.returning(t)
	f.gate.capability = available
	require.Equal(t, StateBiometricPrompt, f.svc.Resolve(context.Background()))

	f.gate.capability = biometric.Capability{Kind: biometric.KindNone}
	assert.Equal(t, StatePasswordLogin, f.svc.Resolve(context.Background()))
}

func TestCompleteOnboarding(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.Equal(t, StateOnboarding, f.svc.Resolve(ctx))

	assert.Equal(t, StatePasswordLogin, f.svc.CompleteOnboarding())
	assert.False(t, f.store.HasOnboarded())
	assert.Equal(t, StatePasswordLogin, f.svc.Resolve(ctx), "stays on the form until a login succeeds")
}

// ---- toggle ----

func TestTogglePasswordMode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.returning(t)
	f.gate.capability = available
	require.Equal(t, StateBiometricPrompt, f.svc.Resolve(ctx))

	st, err := f.svc.TogglePasswordMode(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatePasswordLogin, st)
	assert.Equal(t, StatePasswordLogin, f.svc.Resolve(ctx), "explicit password mode survives a resolve")

	st, err = f.svc.TogglePasswordMode(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateBiometricPrompt, st)
	assert.True(t, f.store.HasOnboarded())
}

func TestTogglePasswordMode_NoBiometrics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.returning(t)
	require.Equal(t, StatePasswordLogin, f.svc.Resolve(ctx))

	st, err := f.svc.TogglePasswordMode(ctx)
	assert.ErrorIs(t, err, ErrBiometricUnavailable)
	assert.Equal(t, StatePasswordLogin, st)
}

func TestTogglePasswordMode_IgnoredWhileOnboarding(t *testing.T) {
	f := newFixture(t)
	f.gate.capability = available
	require.Equal(t, StateOnboarding, f.svc.Resolve(context.Background()))

	st, err := f.svc.TogglePasswordMode(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateOnboarding, st)
}

// ---- password login ----

func TestPasswordLogin_EmptyFieldBlocksSubmission(t *testing.T) {
	for _, tc := range []struct{ u, p string }{{"", "secret"}, {"   ", "secret"}, {"AD108565", ""}} {
		f := newFixture(t)
		f.svc.Resolve(context.Background())

		err := f.svc.PasswordLogin(context.Background(), tc.u, tc.p)

		assert.ErrorIs(t, err, ErrValidation)
		assert.Empty(t, f.api.calls, "no network call")
		assert.Equal(t, Notification{Level: LevelWarning, Title: "warn", Description: "login.fillAllFields"}, f.notes.last())
		assert.False(t, f.store.IsAuthenticated())
	}
}

func TestPasswordLogin_Success(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.svc.Resolve(ctx)
	f.svc.CompleteOnboarding()

	require.NoError(t, f.svc.PasswordLogin(ctx, "AD108565", "AD108565"))

	assert.Equal(t, StateAuthenticated, f.svc.State())
	assert.True(t, f.store.IsAuthenticated())
	assert.True(t, f.store.HasOnboarded())
	assert.Equal(t, "AD108565", f.store.User().Username)
	assert.Equal(t, keychain.LoadResult{Status: keychain.Found, Credentials: models.Credentials{Username: "AD108565", Password: "AD108565"}}, f.creds.Load(ctx))
	assert.Equal(t, Notification{Level: LevelSuccess, Title: "success", Description: "login.successMessage|AD108565"}, f.notes.last())
}

func TestPasswordLogin_FromAnyPriorState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.returning(t)
	f.gate.capability = available
	require.Equal(t, StateBiometricPrompt, f.svc.Resolve(ctx))

	require.NoError(t, f.svc.PasswordLogin(ctx, "other", "pw"))
	assert.True(t, f.store.IsAuthenticated())
	assert.Equal(t, "other", f.store.User().Username)
}

func TestPasswordLogin_RejectedAndUnreachableLookTheSame(t *testing.T) {
	for _, apiErr := range []error{client.ErrUnauthorized, client.ErrUnavailable} {
		f := newFixture(t)
		ctx := context.Background()
		f.api.err = apiErr
		f.svc.Resolve(ctx)

		err := f.svc.PasswordLogin(ctx, "AD108565", "wrong")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.ErrorIs(t, err, apiErr)
		assert.Equal(t, Notification{Level: LevelDanger, Title: "error", Description: "login.invalidCredentials"}, f.notes.last())
		assert.False(t, f.store.IsAuthenticated())
		assert.False(t, f.store.HasOnboarded())
		assert.Zero(t, f.creds.saves)
		assert.Equal(t, StateOnboarding, f.svc.State())
	}
}

func TestPasswordLogin_ResultWithoutTokenIsRejected(t *testing.T) {
	f := newFixture(t)
	f.api.result = &models.LoginResult{Username: "u"}

	err := f.svc.PasswordLogin(context.Background(), "u", "p")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.ErrorIs(t, err, client.ErrBadResponse)
	assert.False(t, f.store.IsAuthenticated())
	assert.Zero(t, f.creds.saves)
}

func TestPasswordLogin_CredentialSaveFailureIsNotSurfaced(t *testing.T) {
	f := newFixture(t)
	f.creds.saveErr = errors.New("keychain locked")

	require.NoError(t, f.svc.PasswordLogin(context.Background(), "u", "p"))
	assert.Equal(t, StateAuthenticated, f.svc.State())
	assert.Equal(t, LevelSuccess, f.notes.last().Level)
}

// ---- biometric login ----

func TestBiometricLogin_Success(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.returning(t)
	f.gate.capability = available
	f.gate.result = biometric.Result{Success: true}
	f.svc.Resolve(ctx)

	require.NoError(t, f.svc.BiometricLogin(ctx))

	assert.Equal(t, [][3]string{{"login.biometricPrompt", "login.usePassword", "cancel"}}, f.gate.prompts)
	assert.Equal(t, []models.Credentials{{Username: "AD108565", Password: "AD108565"}}, f.api.calls)
	assert.Equal(t, StateAuthenticated, f.svc.State())
	assert.True(t, f.store.IsAuthenticated())
	assert.Zero(t, f.creds.saves, "credentials are not saved again")
}

func TestBiometricLogin_NoSavedCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.returning(t)
	f.creds.saved = keychain.LoadResult{Status: keychain.NotFound}
	f.gate.capability = available
	f.gate.result = biometric.Result{Success: true}
	require.Equal(t, StateBiometricPrompt, f.svc.Resolve(ctx))
	before := f.store.Snapshot()

	err := f.svc.BiometricLogin(ctx)

	assert.ErrorIs(t, err, ErrNoSavedCredentials)
	assert.Equal(t, "login.noSavedCredentials", f.notes.last().Description)
	assert.Equal(t, LevelDanger, f.notes.last().Level)
	assert.Equal(t, StateBiometricPrompt, f.svc.State())
	assert.Equal(t, before, f.store.Snapshot())
	assert.Empty(t, f.api.calls)
}

func TestBiometricLogin_CorruptCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.returning(t)
	f.creds.saved = keychain.LoadResult{Status: keychain.Corrupt}
	f.gate.capability = available
	f.gate.result = biometric.Result{Success: true}
	f.svc.Resolve(ctx)

	err := f.svc.BiometricLogin(ctx)

	assert.ErrorIs(t, err, ErrCorruptCredentials)
	assert.Equal(t, "login.corruptCredentials", f.notes.last().Description)
	assert.Empty(t, f.api.calls)
}

func TestBiometricLogin_RejectedKeepsStaleCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.returning(t)
	f.gate.capability = available
	f.gate.result = biometric.Result{Success: true}
	f.api.err = client.ErrUnauthorized
	f.svc.Resolve(ctx)
	stored := f.creds.saved

	err := f.svc.BiometricLogin(ctx)

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, Notification{Level: LevelDanger, Title: "error", Description: "login.invalidCredentials"}, f.notes.last())
	assert.False(t, f.store.IsAuthenticated())
	assert.Equal(t, stored, f.creds.saved)
	assert.Equal(t, StateBiometricPrompt, f.svc.State())
}

func TestBiometricLogin_CheckFailures(t *testing.T) {
	for _, reason := range []biometric.Reason{biometric.ReasonUserCancel, biometric.ReasonMismatch, biometric.ReasonLockout} {
		t.Run(string(reason), func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			f.returning(t)
			f.gate.capability = available
			f.gate.result = biometric.Result{Reason: reason}
			f.svc.Resolve(ctx)

			err := f.svc.BiometricLogin(ctx)

			assert.ErrorIs(t, err, ErrBiometricFailed)
			assert.Equal(t, Notification{Level: LevelDanger, Title: "error", Description: "login.biometricFailed"}, f.notes.last())
			assert.Empty(t, f.api.calls)
			assert.Equal(t, StateBiometricPrompt, f.svc.State())
		})
	}
}

func TestBiometricLogin_FallbackSwitchesToPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.returning(t)
	f.gate.capability = available
	f.gate.result = biometric.Result{Reason: biometric.ReasonFallback}
	f.svc.Resolve(ctx)

	err := f.svc.BiometricLogin(ctx)

	assert.ErrorIs(t, err, ErrBiometricFailed)
	assert.Empty(t, f.notes.got)
	assert.Equal(t, StatePasswordLogin, f.svc.State())
}

func TestBiometricLogin_DeviceError(t *testing.T) {
	f := newFixture(t)
	f.returning(t)
	f.gate.err = errors.New("tty closed")

	err := f.svc.BiometricLogin(context.Background())
	assert.ErrorIs(t, err, ErrBiometricFailed)
	assert.Equal(t, "login.biometricFailed", f.notes.last().Description)
}

func TestBiometricLogin_Unavailable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.returning(t)
	f.gate.err = biometric.ErrUnavailable

	err := f.svc.BiometricLogin(ctx)
	assert.ErrorIs(t, err, ErrBiometricUnavailable)
	assert.Equal(t, "login.biometricUnavailable", f.notes.last().Description)
	assert.Equal(t, StatePasswordLogin, f.svc.State())
}

// ---- logout ----

func TestLogout_ReturnsToLoginScreen(t *testing.T) {
	ctx := context.Background()

	f := newFixture(t)
	require.NoError(t, f.svc.PasswordLogin(ctx, "u", "p"))
	assert.Equal(t, StatePasswordLogin, f.svc.Logout(ctx))
	assert.False(t, f.store.IsAuthenticated())
	assert.True(t, f.store.HasOnboarded())

	f = newFixture(t)
	f.gate.capability = available
	require.NoError(t, f.svc.PasswordLogin(ctx, "u", "p"))
	assert.Equal(t, StateBiometricPrompt, f.svc.Logout(ctx))
}

func TestLogout_TwiceEqualsOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.svc.PasswordLogin(ctx, "u", "p"))

	first := f.svc.Logout(ctx)
	snap := f.store.Snapshot()
	second := f.svc.Logout(ctx)

	assert.Equal(t, first, second)
	assert.Equal(t, snap, f.store.Snapshot())
}

func TestLogout_KeepsSavedCredentials(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.svc.PasswordLogin(ctx, "u", "p"))

	f.svc.Logout(ctx)
	assert.Equal(t, "u", f.svc.SavedUsername(ctx))
}

func TestSavedUsername_Absent(t *testing.T) {
	f := newFixture(t)
	assert.Empty(t, f.svc.SavedUsername(context.Background()))
	f.creds.saved = keychain.LoadResult{Status: keychain.Corrupt}
	assert.Empty(t, f.svc.SavedUsername(context.Background()))
}

// ---- end to end with the real keychain ----

func TestScenario_PasswordThenBiometric(t *testing.T) {
	ctx := context.Background()
	db, err := storage.OpenDSN(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := session.NewStore(session.NewSQLPersister(db), logging.Nop())
	require.NoError(t, store.Rehydrate(ctx))
	kc := keychain.New(db, "", logging.Nop())
	gate := &fakeGate{capability: available, result: biometric.Result{Success: true}}
	api := &fakeAPI{}
	notes := &recorder{}

	svc := NewAuthService(AuthDeps{
		Session: store, Credentials: kc, Gate: gate, API: api,
		Notifier: notes, Translator: keyTranslator{}, Log: logging.Nop(),
	})
	require.Equal(t, StateOnboarding, svc.Resolve(ctx))
	svc.CompleteOnboarding()

	require.NoError(t, svc.PasswordLogin(ctx, "AD108565", "AD108565"))
	assert.True(t, store.IsAuthenticated())
	assert.Equal(t, "AD108565", store.User().Username)
	assert.Equal(t, keychain.LoadResult{Status: keychain.Found, Credentials: models.Credentials{Username: "AD108565", Password: "AD108565"}}, kc.Load(ctx))

	require.Equal(t, StateBiometricPrompt, svc.Logout(ctx))

	// a restart: fresh store and orchestrator over the same database
	restarted := session.NewStore(session.NewSQLPersister(db), logging.Nop())
	require.NoError(t, restarted.Rehydrate(ctx))
	svc = NewAuthService(AuthDeps{
		Session: restarted, Credentials: keychain.New(db, "", logging.Nop()), Gate: gate, API: api,
		Notifier: notes, Translator: keyTranslator{}, Log: logging.Nop(),
	})
	require.Equal(t, StateBiometricPrompt, svc.Resolve(ctx))

	require.NoError(t, svc.BiometricLogin(ctx))
	assert.True(t, restarted.IsAuthenticated())
	assert.Len(t, api.calls, 2)
}
