package i18n

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/dmitrijs2005/madrasati/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/madrasati/internal/common"
	"github.com/dmitrijs2005/madrasati/internal/logging"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// SettingsNamespace holds per-installation preferences.
const SettingsNamespace = "settings"

const keyLanguage = "userLanguage"

var ErrUnsupported = errors.New("unsupported language")

// Translator renders a message key with printf-style arguments.
type Translator interface {
	T(key string, args ...any) string
}

// Bundle is the active language plus the catalogs to render it.
type Bundle struct {
	catalogs *Catalogs
	settings metadata.Repository
	log      logging.Logger

	mu      sync.RWMutex
	tag     language.Tag
	printer *message.Printer
}

var _ Translator = (*Bundle)(nil)

// NewBundle starts in Default; call Init to apply the stored preference.
func NewBundle(c *Catalogs, settings metadata.Repository, log logging.Logger) *Bundle {
	b := &Bundle{catalogs: c, settings: settings, log: log}
	b.set(Default)
	return b
}

// Init picks the starting language: the saved preference, then configured,
// then device, then Default. Unsupported values are skipped.
func (b *Bundle) Init(ctx context.Context, configured, device string) language.Tag {
	candidates := []string{}

	saved, err := b.settings.Get(ctx, keyLanguage)
	switch {
	case err == nil:
		candidates = append(candidates, string(saved))
	case !errors.Is(err, common.ErrorNotFound):
		b.log.Warn(ctx, "read language preference", "error", err)
	}
	candidates = append(candidates, configured, device)

	tag := Default
	for _, c := range candidates {
		if t, ok := Match(c); ok {
			tag = t
			break
		}
	}
	b.set(tag)
	b.log.Debug(ctx, "language selected", "lang", tag.String())
	return tag
}

// ChangeLanguage switches and persists the preference. Unsupported codes
// are rejected and change nothing.
func (b *Bundle) ChangeLanguage(ctx context.Context, code string) error {
	tag, ok := Match(code)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupported, code)
	}
	if err := b.settings.Set(ctx, keyLanguage, []byte(tag.String())); err != nil {
		return err
	}
	b.set(tag)
	return nil
}

func (b *Bundle) Language() language.Tag {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tag
}

func (b *Bundle) T(key string, args ...any) string {
	b.mu.RLock()
	p := b.printer
	b.mu.RUnlock()
	return p.Sprintf(key, args...)
}

func (b *Bundle) set(tag language.Tag) {
	p := message.NewPrinter(tag, message.Catalog(b.catalogs.builder))
	b.mu.Lock()
	b.tag, b.printer = tag, p
	b.mu.Unlock()
}

// DeviceLanguage reads the locale the way the C library does:
// LC_ALL, then LC_MESSAGES, then LANG.
func DeviceLanguage() string {
	for _, k := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
