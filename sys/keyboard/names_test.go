package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeyRoundTripsNames(t *testing.T) {
	for m := Modifier(1); m < modifierEnd; m++ {
		key, err := ParseKey(m.String())
		require.NoError(t, err)
		assert.Equal(t, ModifierKey(m), key)
	}
	for c := Control(1); c < controlEnd; c++ {
		key, err := ParseKey(c.String())
		require.NoError(t, err)
		assert.Equal(t, ControlKey(c), key)
	}
}

func TestParseKeyIgnoresCase(t *testing.T) {
	key, err := ParseKey(" leftshift ")
	require.NoError(t, err)
	assert.Equal(t, ModifierKey(LeftShift), key)
}

func TestParseKeyUnknown(t *testing.T) {
	_, err := ParseKey("Hyper")
	require.Error(t, err)
}

func TestEventString(t *testing.T) {
	assert.Equal(t, "down(LeftShift)", KeyDown(ModifierKey(LeftShift)).String())
	assert.Equal(t, "up(Enter)", KeyUp(ControlKey(Enter)).String())
	assert.Equal(t, "invalid(invalid)", Event{}.String())
}
