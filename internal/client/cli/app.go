package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/madrasati/internal/client/biometric"
	"github.com/dmitrijs2005/madrasati/internal/client/client"
	"github.com/dmitrijs2005/madrasati/internal/client/config"
	"github.com/dmitrijs2005/madrasati/internal/client/i18n"
	"github.com/dmitrijs2005/madrasati/internal/client/keychain"
	"github.com/dmitrijs2005/madrasati/internal/client/notifications"
	"github.com/dmitrijs2005/madrasati/internal/client/repositories/metadata"
	notifrepo "github.com/dmitrijs2005/madrasati/internal/client/repositories/notifications"
	"github.com/dmitrijs2005/madrasati/internal/client/services"
	"github.com/dmitrijs2005/madrasati/internal/client/session"
	"github.com/dmitrijs2005/madrasati/internal/client/storage"
	"github.com/dmitrijs2005/madrasati/internal/filex"
	"github.com/dmitrijs2005/madrasati/internal/logging"
	"golang.org/x/text/language"
)

// languageBundle is the part of i18n.Bundle the REPL uses.
type languageBundle interface {
	i18n.Translator
	ChangeLanguage(ctx context.Context, code string) error
	Language() language.Tag
}

type credentialVault interface {
	Clear(ctx context.Context) error
}

type pinEnroller interface {
	Enroll(ctx context.Context, pin string) error
	Unenroll(ctx context.Context) error
}

type App struct {
	config  *config.Config
	log     logging.Logger
	db      *sql.DB
	session session.Reader
	auth    services.AuthService
	parent  services.ParentService
	inbox   *notifications.Inbox
	lang    languageBundle
	vault   credentialVault
	pin     pinEnroller

	reader *bufio.Reader
	out    io.Writer
	outMu  sync.Mutex
	now    func() time.Time
}

// NewApp opens the local database in c.DataDir and wires every service the
// REPL needs. The session is rehydrated and the login screen resolved
// before it returns.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	dir, err := filex.EnsureDataDir(c.DataDir)
	if err != nil {
		return nil, err
	}

	db, err := storage.Open(ctx, dir)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	store := session.NewStore(session.NewSQLPersister(db), log.With("component", "session"))
	if err := store.Rehydrate(ctx); err != nil {
		log.Warn(ctx, "session rehydration failed", "error", err)
	}

	catalogs, err := i18n.LoadEmbedded()
	if err != nil {
		db.Close()
		return nil, err
	}
	bundle := i18n.NewBundle(catalogs, metadata.NewSQLiteRepository(db, i18n.SettingsNamespace), log)
	bundle.Init(ctx, c.Language, i18n.DeviceLanguage())

	a := &App{
		config:  c,
		log:     log,
		db:      db,
		session: store,
		inbox:   notifications.NewInbox(notifrepo.NewSQLiteRepository(db)),
		lang:    bundle,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		now:     time.Now,
	}

	api := client.NewHTTPClient(c.ServerBaseURL, c.RequestTimeout, store, log.With("component", "api"))
	vault := keychain.New(db, c.KeychainService, log)
	pin := biometric.NewPINDevice(db, biometric.ParseKind(c.BiometricKind), a.readPIN)

	a.vault, a.pin = vault, pin
	a.parent = services.NewParentService(api, store, log)
	a.auth = services.NewAuthService(services.AuthDeps{
		Session:     store,
		Credentials: vault,
		Gate:        biometric.NewGate(pin, log.With("component", "biometric")),
		API:         api,
		Notifier:    services.NotifierFunc(a.notify),
		Translator:  bundle,
		Log:         log.With("component", "auth"),
	})
	a.auth.Resolve(ctx)
	return a, nil
}

// Run starts the background watcher and blocks in the REPL until the user
// leaves. The database is closed on return.
func (a *App) Run(ctx context.Context) {
	defer a.db.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.StartWatcher(ctx, a.config.WatchInterval)
	a.Root(ctx)
}

// Root greets the parent, shows the current login screen and runs the REPL.
func (a *App) Root(ctx context.Context) {
	a.println("Welcome to Madrasati CLI (type 'help' for commands)")
	a.showScreen(ctx)
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) state() services.State {
	return a.auth.State()
}

func (a *App) getStatus() string {
	s := a.state().String()
	if u := a.session.User(); u != nil && u.Username != "" && a.session.IsAuthenticated() {
		s = u.Username + " " + s
	}
	return fmt.Sprintf("(%s)", s)
}

// showScreen prints what the current login screen would show.
func (a *App) showScreen(ctx context.Context) {
	switch a.state() {
	case services.StateOnboarding:
		a.println(a.lang.T("onboarding.welcome"))
		a.println(a.lang.T("onboarding.followUrChildren"))
		a.println(fmt.Sprintf("%s: lang ar | lang fr", a.lang.T("onboarding.selectLanguage")))
		a.println(fmt.Sprintf("[continue] %s", a.lang.T("onboarding.continue")))

	case services.StatePasswordLogin:
		a.println(a.lang.T("login.title"))
		a.println(a.lang.T("login.signInToContinue"))
		a.println(fmt.Sprintf("[login] %s", a.lang.T("login.signIn")))
		if a.auth.Capability().Available {
			a.println(fmt.Sprintf("[mode] %s", a.biometricLabel()))
		}

	case services.StateBiometricPrompt:
		a.println(a.lang.T("login.welcome"))
		if name := a.auth.SavedUsername(ctx); name != "" {
			a.println(name)
		}
		a.println(fmt.Sprintf("[bio] %s", a.biometricLabel()))
		a.println(fmt.Sprintf("[mode] %s", a.lang.T("login.usePassword")))

	case services.StateAuthenticated:
		if u := a.session.User(); u != nil {
			a.println(a.lang.T("home.greeting", u.Username))
		}
	}
}

func (a *App) biometricLabel() string {
	switch a.auth.Capability().Kind {
	case biometric.KindFace:
		return a.lang.T("login.useFaceId")
	case biometric.KindFingerprint:
		return a.lang.T("login.useFingerprint")
	case biometric.KindIris:
		return a.lang.T("login.useIris")
	default:
		return a.lang.T("login.useBiometric")
	}
}

// notify prints an orchestrator notification.
func (a *App) notify(_ context.Context, n services.Notification) {
	a.println(fmt.Sprintf("[%s] %s: %s", n.Level, n.Title, n.Description))
}

func (a *App) println(s string) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintln(a.out, s)
}

func (a *App) printf(format string, args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintf(a.out, format, args...)
}

// readPIN is the biometric.ReadFunc of the PIN device.
func (a *App) readPIN(label string) (string, error) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	return GetSecret(a.reader, label, a.out)
}
