package icons

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	e, ok := Lookup("dumbbell")
	require.True(t, ok)
	require.Equal(t, "🏋️", e)

	e, ok = Lookup("  Settings ")
	require.True(t, ok)
	require.Equal(t, "⚙️", e)

	_, ok = Lookup("unicorn")
	require.False(t, ok)
}

func TestEmojiFallback(t *testing.T) {
	require.Equal(t, "➕", Emoji("plus"))
	require.Equal(t, Fallback, Emoji("unicorn"))
	require.Equal(t, Fallback, Emoji(""))
}

func TestTabIconsResolve(t *testing.T) {
	for _, name := range []string{"exercises", "workout", "logout", "plus"} {
		_, ok := Lookup(name)
		require.True(t, ok, name)
	}
}
