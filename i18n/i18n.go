// Package i18n loads the string tables for every supported locale and picks
// the locale for a request.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

const (
	// BaseLocale is the locale every other table is checked against.
	BaseLocale = "en-US"
	// LangParam selects a locale from the query string.
	LangParam = "lang"
	// LangCookie remembers the selected locale.
	LangCookie = "lang"
)

// RequiredKeys must be present and non-empty in every locale.
var RequiredKeys = []string{
	"appTitle",
	"exercisesTitle",
	"noExercises",
	"addExercise",
	"addExerciseTitle",
	"addExerciseFailed",
	"name",
	"namePlaceholder",
	"submit",
	"workoutTitle",
	"logSet",
	"logSetFailed",
	"weight",
	"reps",
	"sets",
	"noSets",
	"setSummary",
	"tabExercises",
	"tabWorkout",
	"loginTitle",
	"login",
	"logout",
	"registerTitle",
	"register",
	"email",
	"password",
	"errGeneric",
}

type localeFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// Bundle holds the loaded string tables.
type Bundle struct {
	messages map[string]map[string]string
	tags     []language.Tag
	matcher  language.Matcher
	catalog  *catalog.Builder
}

//go:embed locales/*.yaml
var embedded embed.FS

var defaultBundle = mustLoad(embedded)

// Default returns the bundle built from the embedded locale files.
func Default() *Bundle {
	return defaultBundle
}

// Load reads every locales/*.yaml file in fsys.
func Load(fsys fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locales: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no locale files found")
	}
	sort.Strings(paths)

	b := &Bundle{messages: map[string]map[string]string{}}
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		var f localeFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}
		want := strings.TrimSuffix(path.Base(p), path.Ext(p))
		if f.Locale != want {
			return nil, fmt.Errorf("%s: locale %q must match file name %q", p, f.Locale, want)
		}
		if _, err := language.Parse(f.Locale); err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		b.messages[f.Locale] = f.Messages
	}

	base, ok := b.messages[BaseLocale]
	if !ok {
		return nil, fmt.Errorf("base locale %s is not defined", BaseLocale)
	}
	for _, key := range RequiredKeys {
		if strings.TrimSpace(base[key]) == "" {
			return nil, fmt.Errorf("%s: missing required key %q", BaseLocale, key)
		}
	}
	for locale, msgs := range b.messages {
		for key := range base {
			if strings.TrimSpace(msgs[key]) == "" {
				return nil, fmt.Errorf("%s: missing key %q", locale, key)
			}
		}
	}

	if err := b.build(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Bundle) build() error {
	baseTag := language.MustParse(BaseLocale)
	b.catalog = catalog.NewBuilder(catalog.Fallback(baseTag))
	b.tags = []language.Tag{baseTag}
	for _, locale := range b.Locales() {
		tag := language.MustParse(locale)
		if locale != BaseLocale {
			b.tags = append(b.tags, tag)
		}
		for key, msg := range b.messages[locale] {
			if err := b.catalog.SetString(tag, key, msg); err != nil {
				return fmt.Errorf("register %s %q: %w", locale, key, err)
			}
		}
	}
	b.matcher = language.NewMatcher(b.tags)
	return nil
}

func mustLoad(fsys fs.FS) *Bundle {
	b, err := Load(fsys)
	if err != nil {
		panic(err)
	}
	return b
}

// Locales returns the loaded locale names, sorted.
func (b *Bundle) Locales() []string {
	out := make([]string, 0, len(b.messages))
	for locale := range b.messages {
		out = append(out, locale)
	}
	sort.Strings(out)
	return out
}

// Supported returns the supported tags, base locale first.
func (b *Bundle) Supported() []language.Tag {
	return append([]language.Tag(nil), b.tags...)
}

// T returns the message for key in locale, falling back to the base locale
// and finally to the key itself.
func (b *Bundle) T(locale string, key string) string {
	if msg, ok := b.messages[locale][key]; ok {
		return msg
	}
	if msg, ok := b.messages[BaseLocale][key]; ok {
		return msg
	}
	return key
}

// Printer returns a printer that formats catalog messages for tag.
func (b *Bundle) Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(b.Match(tag), message.Catalog(b.catalog))
}

// Match returns the best supported tag for the wanted tags.
func (b *Bundle) Match(wanted ...language.Tag) language.Tag {
	_, index, conf := b.matcher.Match(wanted...)
	if conf == language.No {
		return b.tags[0]
	}
	return b.tags[index]
}

// Resolve picks the locale for r from the lang query parameter, the lang
// cookie or the Accept-Language header, in that order. The bool reports
// whether the choice came from the query and should be remembered.
func (b *Bundle) Resolve(r *http.Request, fallback language.Tag) (language.Tag, bool) {
	if v := strings.TrimSpace(r.URL.Query().Get(LangParam)); v != "" {
		if tag, err := language.Parse(v); err == nil {
			return b.Match(tag), true
		}
	}
	if c, err := r.Cookie(LangCookie); err == nil {
		if tag, err := language.Parse(c.Value); err == nil {
			return b.Match(tag), false
		}
	}
	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			return b.Match(tags...), false
		}
	}
	return b.Match(fallback), false
}

// SetCookie remembers tag on the client for a year.
func SetCookie(w http.ResponseWriter, tag language.Tag) {
	http.SetCookie(w, &http.Cookie{
		Name:     LangCookie,
		Value:    tag.String(),
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
}
