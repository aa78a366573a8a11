package i18n

import (
	"context"
	"database/sql"
	"testing"
	"testing/fstest"

	"github.com/dmitrijs2005/madrasati/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/madrasati/internal/client/storage"
	"github.com/dmitrijs2005/madrasati/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := storage.OpenDSN(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newBundle(t *testing.T, db *sql.DB) *Bundle {
	t.Helper()
	c, err := LoadEmbedded()
	require.NoError(t, err)
	return NewBundle(c, metadata.NewSQLiteRepository(db, SettingsNamespace), logging.Nop())
}

func TestLoadEmbedded_CatalogsHaveSameKeys(t *testing.T) {
	c, err := LoadEmbedded()
	require.NoError(t, err)

	ar := c.Keys(language.Arabic)
	require.NotEmpty(t, ar)
	assert.Equal(t, ar, c.Keys(language.French))
	assert.Contains(t, ar, "login.biometricPrompt")
	assert.Contains(t, ar, "login.noSavedCredentials")
}

func TestLoadFromFS_Errors(t *testing.T) {
	_, err := LoadFromFS(fstest.MapFS{
		"locales/fr.yaml": {Data: []byte("a: b\n")},
	})
	assert.ErrorContains(t, err, "default locale")

	_, err = LoadFromFS(fstest.MapFS{
		"locales/ar.yaml": {Data: []byte("a: [1, 2]\n")},
	})
	assert.ErrorContains(t, err, "unsupported value")

	_, err = LoadFromFS(fstest.MapFS{
		"locales/ar.yaml": {Data: []byte("a: b: c\n")},
	})
	assert.Error(t, err)
}

func TestMatch(t *testing.T) {
	tests := []struct {
		in   string
		want language.Tag
		ok   bool
	}{
		{"ar", language.Arabic, true},
		{"fr", language.French, true},
		{"fr-FR", language.French, true},
		{"fr_FR.UTF-8", language.French, true},
		{"ar_MA.UTF-8@calendar", language.Arabic, true},
		{"en_US.UTF-8", language.Und, false},
		{"C", language.Und, false},
		{"", language.Und, false},
		{"not a tag", language.Und, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := Match(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBundle_TranslatesWithFallbackToKey(t *testing.T) {
	b := newBundle(t, openDB(t))
	require.NoError(t, b.ChangeLanguage(context.Background(), "fr"))

	assert.Equal(t, "Bienvenue Amina", b.T("login.successMessage", "Amina"))
	assert.Equal(t, "Veuillez remplir tous les champs", b.T("login.fillAllFields"))
	assert.Equal(t, "no.such.key", b.T("no.such.key"))
}

func TestBundle_IndexedArguments(t *testing.T) {
	b := newBundle(t, openDB(t))
	require.NoError(t, b.ChangeLanguage(context.Background(), "fr"))

	got := b.T("payments.reminderDue", "P-7", "450", "2025-10-05")
	assert.Equal(t, "Le paiement P-7 de 450 DH est dû le 2025-10-05", got)
}

func TestBundle_InitOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing known", func(t *testing.T) {
		b := newBundle(t, openDB(t))
		assert.Equal(t, language.Arabic, b.Init(ctx, "", "en_US.UTF-8"))
	})

	t.Run("device", func(t *testing.T) {
		b := newBundle(t, openDB(t))
		assert.Equal(t, language.French, b.Init(ctx, "", "fr_FR.UTF-8"))
	})

	t.Run("configured beats device", func(t *testing.T) {
		b := newBundle(t, openDB(t))
		assert.Equal(t, language.Arabic, b.Init(ctx, "ar", "fr_FR.UTF-8"))
	})

	t.Run("saved beats configured", func(t *testing.T) {
		db := openDB(t)
		require.NoError(t, newBundle(t, db).ChangeLanguage(ctx, "fr"))

		b := newBundle(t, db)
		assert.Equal(t, language.French, b.Init(ctx, "ar", "ar"))
		assert.Equal(t, language.French, b.Language())
	})

	t.Run("unsupported saved value is skipped", func(t *testing.T) {
		db := openDB(t)
		repo := metadata.NewSQLiteRepository(db, SettingsNamespace)
		require.NoError(t, repo.Set(ctx, keyLanguage, []byte("de")))

		assert.Equal(t, language.French, newBundle(t, db).Init(ctx, "fr", ""))
	})
}

func TestBundle_ChangeLanguageRejectsUnsupported(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	b := newBundle(t, db)
	require.NoError(t, b.ChangeLanguage(ctx, "fr"))

	err := b.ChangeLanguage(ctx, "en")
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.Equal(t, language.French, b.Language())

	saved, err := metadata.NewSQLiteRepository(db, SettingsNamespace).Get(ctx, keyLanguage)
	require.NoError(t, err)
	assert.Equal(t, "fr", string(saved))
}

func TestDeviceLanguage(t *testing.T) {
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "fr_FR.UTF-8")
	assert.Equal(t, "fr_FR.UTF-8", DeviceLanguage())

	t.Setenv("LC_ALL", "ar_MA.UTF-8")
	assert.Equal(t, "ar_MA.UTF-8", DeviceLanguage())
}
