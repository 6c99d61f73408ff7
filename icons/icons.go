// Package icons maps the icon names used by screens to the emoji shown for them.
package icons

import "strings"

// Fallback is shown for icon names that have no emoji.
const Fallback = "•"

var emoji = map[string]string{
	"home":      "🏠",
	"dumbbell":  "🏋️",
	"exercises": "🏋️",
	"workout":   "🔥",
	"list":      "📋",
	"plus":      "➕",
	"add":       "➕",
	"timer":     "⏱️",
	"calendar":  "📅",
	"chart":     "📈",
	"progress":  "📈",
	"trophy":    "🏆",
	"person":    "👤",
	"profile":   "👤",
	"settings":  "⚙️",
	"logout":    "🚪",
	"run":       "🏃",
	"bike":      "🚴",
	"swim":      "🏊",
	"heart":     "❤️",
	"check":     "✅",
	"close":     "✖️",
}

// Lookup returns the emoji for name and whether the name is known.
// Names are matched case-insensitively.
func Lookup(name string) (string, bool) {
	e, ok := emoji[strings.ToLower(strings.TrimSpace(name))]
	return e, ok
}

// Emoji returns the emoji for name, or Fallback.
func Emoji(name string) string {
	if e, ok := Lookup(name); ok {
		return e
	}
	return Fallback
}
