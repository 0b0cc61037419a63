package hook

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Norgate-AV/hotpin/internal/keys"
	"github.com/Norgate-AV/hotpin/internal/logger"
)

// newTestSession builds a session whose dispatcher posts into a buffered channel
func newTestSession(t *testing.T, bindings map[string]string) (*Session, chan string) {
	t.Helper()

	out := make(chan string, 32)
	reg, invalid := BuildRegistry(bindings, logger.NewNoOpLogger())
	d := NewDispatcher(32, func(a string) { out <- a }, logger.NewNoOpLogger())
	s := newSession(reg, d, invalid)

	t.Cleanup(s.release)
	return s, out
}

func key(vk keys.Code, down bool) KeyEvent { return KeyEvent{VK: vk, Down: down} }

func TestKeyboardInterceptor_MatchConsumes(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t, map[string]string{"mute": "Ctrl+M"})

	assert.Equal(t, Pass, s.HandleKey(key(keys.VKLControl, true)))
	assert.Equal(t, Consume, s.HandleKey(key(keys.Code('M'), true)))
	assert.Equal(t, Consume, s.HandleKey(key(keys.Code('M'), false)), "release of a consumed press is consumed")
	assert.Equal(t, Pass, s.HandleKey(key(keys.Code('M'), false)))
	assert.Equal(t, Pass, s.HandleKey(key(keys.VKLControl, false)))
	assert.Equal(t, Pass, s.HandleKey(key(keys.Code('M'), true)))
	assert.Equal(t, Pass, s.HandleKey(key(keys.Code('M'), false)), "release of a passed press is passed")
}

func TestKeyboardInterceptor_ModifierReleasePasses(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t, map[string]string{"mute": "Ctrl+M"})

	s.HandleKey(key(keys.VKLControl, true))
	assert.Equal(t, Consume, s.HandleKey(key(keys.Code('M'), true)))

	// releasing the modifier first still reaches the OS and clears the state
	assert.Equal(t, Pass, s.HandleKey(key(keys.VKLControl, false)))
	assert.Equal(t, keys.Modifier(0), s.tracker.CurrentMask())
	assert.Equal(t, Consume, s.HandleKey(key(keys.Code('M'), false)))
}

func TestKeyboardInterceptor_InjectedIgnored(t *testing.T) {
	t.Parallel()

	s, out := newTestSession(t, map[string]string{"mute": "Ctrl+M"})

	assert.Equal(t, Pass, s.HandleKey(KeyEvent{VK: keys.VKLControl, Down: true, Injected: true}))
	assert.Equal(t, keys.Modifier(0), s.tracker.CurrentMask(), "injected modifiers must not change state")

	s.HandleKey(key(keys.VKLControl, true))
	assert.Equal(t, Pass, s.HandleKey(KeyEvent{VK: keys.Code('M'), Down: true, Injected: true}))

	select {
	case a := <-out:
		t.Fatalf("injected event dispatched %q", a)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestMouseInterceptor_SideButtons(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t, map[string]string{"back": "Ctrl+X1"})

	assert.Equal(t, Pass, s.HandleMouse(MouseEvent{Button: keys.ButtonX1, Down: true}), "modifier not held")
	assert.Equal(t, Pass, s.HandleMouse(MouseEvent{Button: keys.ButtonX1, Down: false}))

	s.HandleKey(key(keys.VKRControl, true))

	assert.Equal(t, Consume, s.HandleMouse(MouseEvent{Button: keys.ButtonX1, Down: true}))
	assert.Equal(t, Pass, s.HandleMouse(MouseEvent{Button: keys.ButtonX2, Down: true}))
	assert.Equal(t, Pass, s.HandleMouse(MouseEvent{Button: keys.ButtonX2, Down: false}))
	assert.Equal(t, Consume, s.HandleMouse(MouseEvent{Button: keys.ButtonX1, Down: false}), "release of a consumed press is consumed")
	assert.Equal(t, Pass, s.HandleMouse(MouseEvent{Button: keys.ButtonX1, Down: false}))
}

func TestMouseInterceptor_IgnoresOtherButtonsAndInjected(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t, map[string]string{"back": "X1"})

	assert.Equal(t, Pass, s.HandleMouse(MouseEvent{Button: keys.ButtonNone, Down: true}))
	assert.Equal(t, Pass, s.HandleMouse(MouseEvent{Button: keys.ButtonX1, Down: true, Injected: true}))
	assert.Equal(t, Consume, s.HandleMouse(MouseEvent{Button: keys.ButtonX1, Down: true}))
}

func TestSession_ReleaseResetsTracker(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t, map[string]string{"mute": "Ctrl+M"})
	s.HandleKey(key(keys.VKLControl, true))

	s.release()

	assert.Equal(t, keys.Modifier(0), s.tracker.CurrentMask())
	assert.False(t, s.dispatcher.Post(SourceKeyboard, "late"))
}

func TestVerdict_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "pass", Pass.String())
	assert.Equal(t, "consume", Consume.String())
}
