package cli

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/madrasati/internal/client/biometric"
	"github.com/dmitrijs2005/madrasati/internal/client/services"
	"github.com/dmitrijs2005/madrasati/internal/client/session"
)

// getSimpleText and getSecret are indirections used to facilitate testing.
var (
	getSimpleText = GetSimpleText
	getSecret     = GetSecret
)

// Continue leaves the onboarding screen for the password form.
func (a *App) Continue(ctx context.Context) error {
	if a.state() != services.StateOnboarding {
		return nil
	}
	a.auth.CompleteOnboarding()
	a.showScreen(ctx)
	return nil
}

// Login asks for username and password and runs the password flow.
// From the biometric prompt it switches to the password form first.
func (a *App) Login(ctx context.Context) error {
	switch a.state() {
	case services.StateAuthenticated:
		a.println(a.lang.T("home.greeting", a.session.User().Username))
		return nil
	case services.StateOnboarding:
		a.auth.CompleteOnboarding()
	case services.StateBiometricPrompt:
		if _, err := a.auth.TogglePasswordMode(ctx); err != nil {
			return err
		}
	}

	username, err := getSimpleText(a.reader, a.lang.T("login.username"), a.out)
	if err != nil {
		return err
	}
	password, err := getSecret(a.reader, a.lang.T("login.password")+": ", a.out)
	if err != nil {
		return err
	}
	return a.auth.PasswordLogin(ctx, username, password)
}

// Biometric runs the biometric flow from the biometric prompt.
func (a *App) Biometric(ctx context.Context) error {
	if a.state() != services.StateBiometricPrompt {
		a.println(a.lang.T("login.biometricUnavailable"))
		return services.ErrBiometricUnavailable
	}
	err := a.auth.BiometricLogin(ctx)
	if err != nil && a.state() != services.StateBiometricPrompt {
		a.showScreen(ctx)
	}
	return err
}

// ToggleMode switches a returning parent between the biometric prompt and
// the password form.
func (a *App) ToggleMode(ctx context.Context) error {
	_, err := a.auth.TogglePasswordMode(ctx)
	if errors.Is(err, services.ErrBiometricUnavailable) {
		a.println(a.lang.T("login.biometricUnavailable"))
		return err
	}
	a.showScreen(ctx)
	return err
}

func (a *App) Logout(ctx context.Context) error {
	if a.state() != services.StateAuthenticated {
		a.println(a.lang.T("login.notAuthenticated"))
		return services.ErrNotAuthenticated
	}
	a.auth.Logout(ctx)
	a.println(a.lang.T("login.loggedOut"))
	a.showScreen(ctx)
	return nil
}

// WhoAmI prints the session user. The expiry is informational only.
func (a *App) WhoAmI(ctx context.Context) error {
	snap := a.session.Snapshot()
	if !snap.IsAuthenticated || snap.User == nil {
		a.println(a.lang.T("login.notAuthenticated"))
		return services.ErrNotAuthenticated
	}

	u := snap.User
	a.printf("%s: %s\n", a.lang.T("login.username"), u.Username)
	if u.Email != "" {
		a.printf("email: %s\n", u.Email)
	}
	a.printf("role: %s\nuser_id: %s\n", u.Role, u.UserID)
	if exp, ok := session.ExpiresAt(snap); ok {
		left := exp.Sub(a.now()).Round(time.Minute)
		a.printf("expires: %s (%s)\n", exp.Local().Format(time.DateTime), left)
	}
	a.printf("%s: %s\n", a.lang.T("language"), a.lang.Language())
	if c := a.auth.Capability(); c.Available {
		a.printf("biometric: %s\n", c.Kind)
	}
	return nil
}

// Enroll sets the device PIN that stands in for biometrics.
func (a *App) Enroll(ctx context.Context) error {
	pin, err := getSecret(a.reader, a.lang.T("login.newPin")+": ", a.out)
	if err != nil {
		return err
	}
	confirm, err := getSecret(a.reader, a.lang.T("login.confirmPin")+": ", a.out)
	if err != nil {
		return err
	}
	if pin != confirm {
		a.println(a.lang.T("login.pinMismatch"))
		return errors.New("enroll: PINs differ")
	}

	if err := a.pin.Enroll(ctx, pin); err != nil {
		if errors.Is(err, biometric.ErrWeakPIN) {
			a.println(a.lang.T("login.pinTooShort", biometric.MinPINLength))
		} else {
			a.report(ctx, err)
		}
		return err
	}
	a.println(a.lang.T("login.pinEnrolled"))
	a.refreshScreen(ctx)
	return nil
}

func (a *App) Unenroll(ctx context.Context) error {
	if err := a.pin.Unenroll(ctx); err != nil {
		a.report(ctx, err)
		return err
	}
	a.println(a.lang.T("login.pinRemoved"))
	a.refreshScreen(ctx)
	return nil
}

// Forget removes the credentials kept for biometric login.
func (a *App) Forget(ctx context.Context) error {
	if err := a.vault.Clear(ctx); err != nil {
		a.report(ctx, err)
		return err
	}
	a.println(a.lang.T("login.credentialsForgotten"))
	return nil
}

// Language prints the active language, or switches to args[0].
func (a *App) Language(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.printf("%s: %s\n", a.lang.T("language"), a.lang.Language())
		return nil
	}
	if err := a.lang.ChangeLanguage(ctx, args[0]); err != nil {
		a.println(a.lang.T("settings.unsupportedLanguage"))
		return err
	}
	a.println(a.lang.T("settings.languageChanged"))
	return nil
}

// refreshScreen re-resolves the login screen after the device changed.
// An authenticated session is left alone.
func (a *App) refreshScreen(ctx context.Context) {
	if a.state() == services.StateAuthenticated {
		return
	}
	before := a.state()
	if a.auth.Resolve(ctx) != before {
		a.showScreen(ctx)
	}
}
