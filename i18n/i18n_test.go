package i18n

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestRequiredKeysNonEmptyInEveryLocale(t *testing.T) {
	b := Default()
	require.ElementsMatch(t, []string{"en-US", "es-ES"}, b.Locales())
	for _, locale := range b.Locales() {
		for _, key := range RequiredKeys {
			got := b.T(locale, key)
			require.NotEmpty(t, got, "%s/%s", locale, key)
			require.NotEqual(t, key, got, "%s/%s fell through to the key", locale, key)
		}
	}
}

func TestTranslate(t *testing.T) {
	b := Default()
	require.Equal(t, "New exercise", b.T("en-US", "addExerciseTitle"))
	require.Equal(t, "Nuevo ejercicio", b.T("es-ES", "addExerciseTitle"))
	require.Equal(t, "Submit", b.T("fr-FR", "submit"))
	require.Equal(t, "unknownKey", b.T("en-US", "unknownKey"))
}

func TestPrinter(t *testing.T) {
	p := Default().Printer(language.AmericanEnglish)
	require.Equal(t, "3 x 5 @ 100.0 kg", p.Sprintf("setSummary", 3, 5, 100.0))
	require.Equal(t, "Exercises", p.Sprintf("exercisesTitle"))
}

func TestMatch(t *testing.T) {
	b := Default()
	require.Equal(t, "en-US", b.Match(language.French).String())
	require.Equal(t, "es-ES", b.Match(language.Spanish).String())
	require.Equal(t, "en-US", b.Match(language.English).String())
}

func TestResolve(t *testing.T) {
	b := Default()
	fallback := language.MustParse("en-US")

	r := httptest.NewRequest(http.MethodGet, "/exercises?lang=es", nil)
	tag, remember := b.Resolve(r, fallback)
	require.Equal(t, "es-ES", tag.String())
	require.True(t, remember)

	r = httptest.NewRequest(http.MethodGet, "/exercises", nil)
	r.AddCookie(&http.Cookie{Name: LangCookie, Value: "es-ES"})
	r.Header.Set("Accept-Language", "en-US")
	tag, remember = b.Resolve(r, fallback)
	require.Equal(t, "es-ES", tag.String())
	require.False(t, remember)

	r = httptest.NewRequest(http.MethodGet, "/exercises", nil)
	r.Header.Set("Accept-Language", "de-DE;q=0.9, es;q=0.8")
	tag, _ = b.Resolve(r, fallback)
	require.Equal(t, "es-ES", tag.String())

	r = httptest.NewRequest(http.MethodGet, "/exercises", nil)
	tag, _ = b.Resolve(r, language.MustParse("es-ES"))
	require.Equal(t, "es-ES", tag.String())
}

func TestSetCookie(t *testing.T) {
	w := httptest.NewRecorder()
	SetCookie(w, language.MustParse("es-ES"))
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, LangCookie, cookies[0].Name)
	require.Equal(t, "es-ES", cookies[0].Value)
}

func TestLoadValidation(t *testing.T) {
	_, err := Load(fstest.MapFS{})
	require.ErrorContains(t, err, "no locale files")

	_, err = Load(fstest.MapFS{
		"locales/es-ES.yaml": {Data: []byte("locale: es-ES\nmessages:\n  submit: \"Enviar\"\n")},
	})
	require.ErrorContains(t, err, "base locale")

	_, err = Load(fstest.MapFS{
		"locales/en-US.yaml": {Data: []byte("locale: en-GB\nmessages:\n  submit: \"Submit\"\n")},
	})
	require.ErrorContains(t, err, "must match file name")

	_, err = Load(fstest.MapFS{
		"locales/en-US.yaml": {Data: []byte("locale: en-US\nmessages:\n  submit: \"Submit\"\n")},
	})
	require.ErrorContains(t, err, "missing required key")
}

func TestLoadRequiresEveryBaseKey(t *testing.T) {
	base, err := embedded.ReadFile("locales/en-US.yaml")
	require.NoError(t, err)

	_, err = Load(fstest.MapFS{
		"locales/en-US.yaml": {Data: base},
		"locales/es-ES.yaml": {Data: []byte("locale: es-ES\nmessages:\n  submit: \"Enviar\"\n")},
	})
	require.ErrorContains(t, err, "es-ES: missing key")
}
