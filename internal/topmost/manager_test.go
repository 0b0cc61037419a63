package topmost_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Norgate-AV/hotpin/internal/logger"
	"github.com/Norgate-AV/hotpin/internal/testutil"
	"github.com/Norgate-AV/hotpin/internal/timeouts"
	"github.com/Norgate-AV/hotpin/internal/topmost"
)

const (
	target uintptr = 1
	tick           = 5 * time.Millisecond
)

// desktop returns a window manager with "Target" above 12 other windows
func desktop() *testutil.MockWindowManager {
	wm := testutil.NewMockWindowManager().WithWindow(target, "Target - Player")
	for i := 0; i < 12; i++ {
		wm.AddWindow(uintptr(100+i), fmt.Sprintf("Other %d", i))
	}

	return wm
}

// bury raises every other window above target
func bury(wm *testutil.MockWindowManager) {
	for i := 0; i < 12; i++ {
		wm.BringToTop(uintptr(100 + i))
	}
}

func fastManager(wm *testutil.MockWindowManager) *topmost.Manager {
	return topmost.NewManager(wm, logger.NewNoOpLogger(),
		topmost.WithPollInterval(20*time.Millisecond),
		topmost.WithRetries(3, time.Millisecond),
	)
}

func TestStartMonitoring_RestoresWithinOnePoll(t *testing.T) {
	t.Parallel()

	wm := desktop()
	m := topmost.NewManager(wm, logger.NewNoOpLogger())
	t.Cleanup(m.Close)

	wm.BringToTop(100)
	require.NoError(t, m.StartMonitoring("Target"))
	assert.Equal(t, 0, wm.ZIndex(target))
	assert.True(t, wm.IsTopmost(target))

	bury(wm)
	require.Equal(t, 12, wm.ZIndex(target))

	limit := timeouts.MonitorPollInterval + timeouts.TopmostRetryCount*timeouts.TopmostRetryDelay + 300*time.Millisecond
	require.Eventually(t, func() bool { return wm.ZIndex(target) == 0 }, limit, tick)
}

func TestStartMonitoring_RetriesPlacement(t *testing.T) {
	t.Parallel()

	wm := desktop()
	m := fastManager(wm)
	t.Cleanup(m.Close)

	require.NoError(t, m.StartMonitoring("Target"))

	assert.Equal(t, []testutil.TopmostCall{{Hwnd: target, On: true}}, wm.SetTopmostCalls())
	assert.Equal(t, []uintptr{target, target, target}, wm.RaiseTopmostCalls())
}

func TestStartMonitoring_WithinDepthLeftAlone(t *testing.T) {
	t.Parallel()

	wm := desktop()
	m := fastManager(wm)
	t.Cleanup(m.Close)

	require.NoError(t, m.StartMonitoring("Target"))
	wm.BringToTop(100)

	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, 1, wm.ZIndex(target), "one window above is still within the top of the z-order")
	assert.Len(t, wm.SetTopmostCalls(), 1)
}

func TestStartMonitoring_NotFound(t *testing.T) {
	t.Parallel()

	wm := desktop()
	m := fastManager(wm)
	t.Cleanup(m.Close)

	err := m.StartMonitoring("NoSuchWindow-xyz")

	require.ErrorIs(t, err, topmost.ErrWindowNotFound)
	assert.Empty(t, m.Watched())
	assert.Empty(t, wm.SetTopmostCalls())
}

func TestStartMonitoring_EmptyTitle(t *testing.T) {
	t.Parallel()

	m := fastManager(desktop())
	assert.ErrorIs(t, m.StartMonitoring(""), topmost.ErrEmptyTitle)
}

func TestStartMonitoring_WindowClosedEndsMonitor(t *testing.T) {
	t.Parallel()

	wm := desktop()
	m := fastManager(wm)
	t.Cleanup(m.Close)

	require.NoError(t, m.StartMonitoring("Target"))
	require.Equal(t, []string{"Target"}, m.Watched())

	wm.CloseWindow(target)

	require.Eventually(t, func() bool { return len(m.Watched()) == 0 }, time.Second, tick)
}

func TestStartMonitoring_TwiceKeepsOneMonitor(t *testing.T) {
	t.Parallel()

	wm := desktop()
	m := fastManager(wm)
	t.Cleanup(m.Close)

	require.NoError(t, m.StartMonitoring("Target"))
	require.NoError(t, m.StartMonitoring("Target"))

	assert.Equal(t, []string{"Target"}, m.Watched())
}

func TestStartMonitoring_AmbiguousTitlePinsFirstMatch(t *testing.T) {
	t.Parallel()

	wm := desktop().WithWindow(2, "Target - Settings")
	m := fastManager(wm)
	t.Cleanup(m.Close)

	wm.BringToTop(2)
	require.NoError(t, m.StartMonitoring("Target"))

	assert.True(t, wm.IsTopmost(2))
	assert.False(t, wm.IsTopmost(target))
}

func TestStartMonitoring_IndependentWindows(t *testing.T) {
	t.Parallel()

	wm := desktop().WithWindow(2, "Chat")
	m := fastManager(wm)
	t.Cleanup(m.Close)

	require.NoError(t, m.StartMonitoring("Target"))
	require.NoError(t, m.StartMonitoring("Chat"))
	assert.Equal(t, []string{"Chat", "Target"}, m.Watched())

	assert.True(t, m.StopMonitoring("Chat"))
	assert.Equal(t, []string{"Target"}, m.Watched())
	assert.True(t, wm.IsTopmost(target))
	assert.False(t, wm.IsTopmost(2))
}

func TestStopMonitoring_RemovesTopmost(t *testing.T) {
	t.Parallel()

	wm := desktop()
	m := fastManager(wm)
	t.Cleanup(m.Close)

	require.NoError(t, m.StartMonitoring("Target"))
	require.True(t, m.StopMonitoring("Target"))

	calls := wm.SetTopmostCalls()
	require.NotEmpty(t, calls)
	assert.Equal(t, testutil.TopmostCall{Hwnd: target, On: false}, calls[len(calls)-1])
	assert.False(t, wm.IsTopmost(target))
	assert.Empty(t, m.Watched())

	// no monitor is left to re-pin it
	bury(wm)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 12, wm.ZIndex(target))
}

func TestStopMonitoring_UnwatchedTitle(t *testing.T) {
	t.Parallel()

	wm := desktop()
	m := fastManager(wm)

	assert.True(t, m.StopMonitoring("Target"), "an existing window is still un-pinned")
	assert.False(t, m.StopMonitoring("NoSuchWindow"))
}

func TestStopMonitoring_AllLeavesWindows(t *testing.T) {
	t.Parallel()

	wm := desktop().WithWindow(2, "Chat")
	m := fastManager(wm)

	require.NoError(t, m.StartMonitoring("Target"))
	require.NoError(t, m.StartMonitoring("Chat"))

	assert.True(t, m.StopMonitoring(""))
	assert.Empty(t, m.Watched())
	assert.True(t, wm.IsTopmost(target))
}

func TestPinWhenAvailable_WaitsForWindow(t *testing.T) {
	t.Parallel()

	wm := desktop()
	m := fastManager(wm)
	t.Cleanup(m.Close)

	require.NoError(t, m.PinWhenAvailable("My Game"))

	watches := m.Watches()
	require.Len(t, watches, 1)
	assert.True(t, watches[0].Waiting())
	assert.True(t, watches[0].Persistent)

	wm.AddWindow(7, "My Game (DX12)")
	require.Eventually(t, func() bool { return wm.IsTopmost(7) }, time.Second, tick)
	assert.Equal(t, 0, wm.ZIndex(7))

	// closing the window keeps the watch, and a new window is pinned again
	wm.CloseWindow(7)
	require.Eventually(t, func() bool { return m.Watches()[0].Waiting() }, time.Second, tick)

	wm.AddWindow(8, "My Game (DX12)")
	require.Eventually(t, func() bool { return wm.IsTopmost(8) }, time.Second, tick)
	assert.Equal(t, []string{"My Game"}, m.Watched())
}

func TestStartMonitoring_KeepsPersistentWatch(t *testing.T) {
	t.Parallel()

	wm := desktop()
	m := fastManager(wm)
	t.Cleanup(m.Close)

	require.NoError(t, m.PinWhenAvailable("My Game"))
	wm.AddWindow(7, "My Game (DX12)")
	require.Eventually(t, func() bool { return wm.IsTopmost(7) }, time.Second, tick)

	// pinning the same title by hand must not downgrade the configured watch
	require.NoError(t, m.StartMonitoring("My Game"))
	watches := m.Watches()
	require.Len(t, watches, 1)
	assert.True(t, watches[0].Persistent)

	wm.CloseWindow(7)
	require.Eventually(t, func() bool {
		w := m.Watches()
		return len(w) == 1 && w[0].Waiting()
	}, time.Second, tick)

	wm.AddWindow(8, "My Game (DX12)")
	require.Eventually(t, func() bool { return wm.IsTopmost(8) }, time.Second, tick)
}

func TestReconcile(t *testing.T) {
	t.Parallel()

	wm := desktop().WithWindow(2, "Chat")
	m := fastManager(wm)
	t.Cleanup(m.Close)

	require.NoError(t, m.StartMonitoring("Chat"))

	m.Reconcile([]string{"Target", "Missing"})
	assert.Equal(t, []string{"Chat", "Missing", "Target"}, m.Watched())

	m.Reconcile([]string{"Missing"})
	assert.Equal(t, []string{"Chat", "Missing"}, m.Watched(), "explicit monitors are not reconciled away")
}

func TestSetTopmost(t *testing.T) {
	t.Parallel()

	wm := desktop()
	m := fastManager(wm)

	bury(wm)
	require.NoError(t, m.SetTopmost("Target", true))
	assert.Equal(t, 0, wm.ZIndex(target))
	assert.Len(t, wm.RaiseTopmostCalls(), 3)
	assert.Empty(t, m.Watched(), "one-shot change starts no monitor")

	require.NoError(t, m.SetTopmost("Target", false))
	assert.False(t, wm.IsTopmost(target))

	assert.ErrorIs(t, m.SetTopmost("Nope", true), topmost.ErrWindowNotFound)
}

func TestSetTopmost_Failure(t *testing.T) {
	t.Parallel()

	wm := desktop().WithSetTopmostResult(false)
	m := fastManager(wm)

	assert.ErrorIs(t, m.SetTopmost("Target", true), topmost.ErrOperationFailed)
}

func TestBringToForeground(t *testing.T) {
	t.Parallel()

	wm := desktop()
	m := fastManager(wm)

	require.NoError(t, m.BringToForeground("Other 3"))
	assert.Equal(t, []uintptr{103}, wm.SetForegroundCalls())

	assert.ErrorIs(t, m.BringToForeground("missing"), topmost.ErrWindowNotFound)

	wm.WithSetForegroundResult(false)
	assert.ErrorIs(t, m.BringToForeground("Target"), topmost.ErrOperationFailed)
}

func TestListVisibleWindows(t *testing.T) {
	t.Parallel()

	wm := desktop()
	m := fastManager(wm)

	windows := m.ListVisibleWindows()
	require.Len(t, windows, 13)
	assert.Equal(t, "Target - Player", windows[0].Title)
}
