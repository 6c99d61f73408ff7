// Package templates renders the fitlog screens as templ components.
//
//go:generate templ generate
package templates

import "net/url"

// Strings resolves message keys for the request's locale.
type Strings interface {
	T(key string) string
	Sprintf(key string, args ...any) string
	Lang() string
	// Languages lists the locales a user can switch to.
	Languages() []string
}

// Tab is one entry of the bottom tab bar.
type Tab struct {
	Key   string
	Icon  string
	Href  string
	Label string
}

// Tabs is the tab bar shown on every signed-in screen.
var Tabs = []Tab{
	{Key: "exercises", Icon: "exercises", Href: "/exercises", Label: "tabExercises"},
	{Key: "workout", Icon: "workout", Href: "/workout", Label: "tabWorkout"},
	{Key: "logout", Icon: "logout", Href: "/login?action=logout", Label: "logout"},
}

// WorkoutURL is where a screen goes to train the named exercise.
func WorkoutURL(exercise string) string {
	if exercise == "" {
		return "/workout"
	}
	return "/workout?" + url.Values{"exercise": {exercise}}.Encode()
}

func langURL(lang string) string {
	return "?" + url.Values{"lang": {lang}}.Encode()
}
