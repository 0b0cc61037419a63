package hook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Norgate-AV/hotpin/internal/keys"
	"github.com/Norgate-AV/hotpin/internal/logger"
)

func TestBuildRegistry_SplitsKeysAndButtons(t *testing.T) {
	t.Parallel()

	reg, dropped := BuildRegistry(map[string]string{
		"mute":    "Ctrl+Alt+M",
		"back":    "Shift+X1",
		"forward": "MouseSide2",
	}, logger.NewNoOpLogger())

	assert.Empty(t, dropped)
	assert.Equal(t, 1, reg.KeyCount())
	assert.Equal(t, 2, reg.ButtonCount())
	assert.False(t, reg.Empty())

	action, ok := reg.LookupKey(keys.ModCtrl|keys.ModAlt, keys.Code('M'))
	require.True(t, ok)
	assert.Equal(t, "mute", action)

	action, ok = reg.LookupButton(keys.ModShift, keys.ButtonX1)
	require.True(t, ok)
	assert.Equal(t, "back", action)

	action, ok = reg.LookupButton(0, keys.ButtonX2)
	require.True(t, ok)
	assert.Equal(t, "forward", action)
}

func TestBuildRegistry_ExactMaskOnly(t *testing.T) {
	t.Parallel()

	reg, _ := BuildRegistry(map[string]string{"mute": "Ctrl+M"}, logger.NewNoOpLogger())

	_, ok := reg.LookupKey(keys.ModCtrl|keys.ModShift, keys.Code('M'))
	assert.False(t, ok, "superset of modifiers must not match")

	_, ok = reg.LookupKey(0, keys.Code('M'))
	assert.False(t, ok)
}

func TestBuildRegistry_DropsInvalid(t *testing.T) {
	t.Parallel()

	reg, dropped := BuildRegistry(map[string]string{
		"good":  "F5",
		"bad":   "Ctrl+Banana",
		"empty": "",
	}, logger.NewNoOpLogger())

	assert.ElementsMatch(t, []string{"bad", "empty"}, dropped)
	assert.Equal(t, 1, reg.KeyCount())
	assert.Equal(t, map[string]string{"good": "F5"}, reg.Combos())
}

func TestBuildRegistry_DuplicateChordFirstActionWins(t *testing.T) {
	t.Parallel()

	for i := 0; i < 10; i++ {
		reg, dropped := BuildRegistry(map[string]string{
			"zeta":  "Ctrl+Shift+A",
			"alpha": "Shift+Ctrl+A",
		}, logger.NewNoOpLogger())

		action, ok := reg.LookupKey(keys.ModCtrl|keys.ModShift, keys.Code('A'))
		require.True(t, ok)
		assert.Equal(t, "alpha", action)
		assert.Equal(t, []string{"zeta"}, dropped)
	}
}

func TestBuildRegistry_EmptyMap(t *testing.T) {
	t.Parallel()

	reg, dropped := BuildRegistry(map[string]string{}, logger.NewNoOpLogger())

	assert.True(t, reg.Empty())
	assert.Empty(t, dropped)
	assert.Empty(t, reg.KeyBindings())
}

func TestRegistry_KeyBindingsSorted(t *testing.T) {
	t.Parallel()

	reg, _ := BuildRegistry(map[string]string{
		"playPause": "Space",
		"forward":   "Right",
		"rewind":    "Left",
		"back":      "X1",
	}, logger.NewNoOpLogger())

	got := reg.KeyBindings()
	require.Len(t, got, 3)
	assert.Equal(t, "forward", got[0].Action)
	assert.Equal(t, "playPause", got[1].Action)
	assert.Equal(t, "rewind", got[2].Action)
	assert.Equal(t, keys.VKSpace, got[1].Key)
	assert.Equal(t, keys.Modifier(0), got[1].Mods)
}
