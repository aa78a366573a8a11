// Package i18n loads the Arabic and French message catalogs and tracks the
// parent's language preference.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localesFS embed.FS

// Default is used whenever nothing better is known, and for keys missing
// from the active catalog.
var Default = language.Arabic

var supported = []language.Tag{language.Arabic, language.French}

var matcher = language.NewMatcher(supported)

// Supported lists the languages that have a catalog.
func Supported() []language.Tag {
	return append([]language.Tag(nil), supported...)
}

// Catalogs holds the flattened messages of every locale file.
type Catalogs struct {
	builder  *catalog.Builder
	messages map[language.Tag]map[string]string
}

// LoadEmbedded parses the catalogs compiled into the binary.
func LoadEmbedded() (*Catalogs, error) {
	return LoadFromFS(localesFS)
}

// LoadFromFS parses locales/<lang>.yaml files. Nested keys are joined with
// dots, so login: {title: ...} becomes "login.title".
func LoadFromFS(fsys fs.FS) (*Catalogs, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	sort.Strings(paths)

	c := &Catalogs{
		builder:  catalog.NewBuilder(catalog.Fallback(Default)),
		messages: map[language.Tag]map[string]string{},
	}
	for _, p := range paths {
		code := strings.TrimSuffix(path.Base(p), path.Ext(p))
		tag, err := language.Parse(code)
		if err != nil {
			return nil, fmt.Errorf("catalog %s: %w", p, err)
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", p, err)
		}
		var tree map[string]any
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", p, err)
		}

		flat := map[string]string{}
		if err := flatten("", tree, flat); err != nil {
			return nil, fmt.Errorf("catalog %s: %w", p, err)
		}
		for key, msg := range flat {
			if err := c.builder.SetString(tag, key, msg); err != nil {
				return nil, fmt.Errorf("catalog %s: key %q: %w", p, key, err)
			}
		}
		c.messages[tag] = flat
	}

	if _, ok := c.messages[Default]; !ok {
		return nil, fmt.Errorf("default locale %s has no catalog", Default)
	}
	return c, nil
}

// Keys returns the sorted message keys defined for tag.
func (c *Catalogs) Keys(tag language.Tag) []string {
	out := make([]string, 0, len(c.messages[tag]))
	for k := range c.messages[tag] {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func flatten(prefix string, node map[string]any, out map[string]string) error {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case string:
			out[key] = val
		case map[string]any:
			if err := flatten(key, val, out); err != nil {
				return err
			}
		default:
			return fmt.Errorf("key %q: unsupported value %T", key, v)
		}
	}
	return nil
}

// Match maps a language name as found in settings, flags or the
// environment (ar, fr-FR, fr_FR.UTF-8) to a supported tag.
func Match(s string) (language.Tag, bool) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	s = strings.ReplaceAll(s, "_", "-")
	if s == "" || s == "C" || s == "POSIX" {
		return language.Und, false
	}

	tag, err := language.Parse(s)
	if err != nil {
		return language.Und, false
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return language.Und, false
	}
	return supported[idx], true
}
