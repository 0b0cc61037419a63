//go:build integration && windows
// +build integration,windows

package integration

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Norgate-AV/hotpin/internal/control"
	"github.com/Norgate-AV/hotpin/internal/hook"
	"github.com/Norgate-AV/hotpin/internal/logger"
	"github.com/Norgate-AV/hotpin/internal/testutil"
	"github.com/Norgate-AV/hotpin/internal/windows"
)

// TestIntegration_InstanceLock checks that the named mutex admits one holder
func TestIntegration_InstanceLock(t *testing.T) {
	name := `Local\hotpin-test-` + uuid.NewString()

	first, err := windows.AcquireInstanceLock(name)
	require.NoError(t, err)

	_, err = windows.AcquireInstanceLock(name)
	assert.ErrorIs(t, err, windows.ErrAlreadyRunning)

	require.NoError(t, first.Release())
	require.NoError(t, first.Release(), "Release should be idempotent")

	again, err := windows.AcquireInstanceLock(name)
	require.NoError(t, err, "Lock should be free after release")
	_ = again.Release()
}

// TestIntegration_ControlPipe runs a request over a real named pipe
func TestIntegration_ControlPipe(t *testing.T) {
	pipeName := `\\.\pipe\hotpin-test-` + uuid.NewString()

	l, err := control.Listen(pipeName)
	require.NoError(t, err)

	srv := control.NewServer(control.HandlerFunc(func(req control.Request) control.Response {
		return control.Response{OK: req.Command == control.CmdPing}
	}), logger.NewNoOpLogger())
	require.NoError(t, srv.Serve(l))
	defer srv.Stop()

	client := control.NewClient(pipeName)
	assert.NoError(t, client.Ping())

	srv.Stop()
	assert.ErrorIs(t, client.Ping(), control.ErrDaemonUnavailable)
}

// TestIntegration_DialMissingPipe checks the error a CLI sees with no daemon
func TestIntegration_DialMissingPipe(t *testing.T) {
	client := control.NewClientWithDialer(func() (net.Conn, error) {
		return control.Dial(`\\.\pipe\hotpin-missing-`+uuid.NewString(), 200*time.Millisecond)
	})

	err := client.Ping()
	assert.True(t, errors.Is(err, control.ErrDaemonUnavailable), "got %v", err)
}

// TestIntegration_InputHooksInstall installs and releases the real hooks
func TestIntegration_InputHooksInstall(t *testing.T) {
	log := logger.NewNoOpLogger()
	engine := hook.NewEngine(hook.NewPlatform(log), log)
	rec := &testutil.ActionRecorder{}

	// F24 chords are absent from real keyboards, so nothing fires by accident
	require.NoError(t, engine.Start(map[string]string{"probe": "Ctrl+Alt+F24", "side": "X2"}, rec.Record))

	st := engine.Status()
	require.True(t, st.Active)
	assert.Equal(t, hook.StrategyHook, st.Strategy)
	assert.True(t, st.KeyboardHook, "keyboard hook should install in an interactive session")
	assert.True(t, st.MouseHook, "mouse hook should install for a side-button binding")

	engine.Stop()
	engine.Stop()
	assert.False(t, engine.Status().Active)
	assert.Zero(t, rec.Count())
}

// TestIntegration_EnumerateWindows sanity-checks the desktop snapshot
func TestIntegration_EnumerateWindows(t *testing.T) {
	api := windows.NewWindowsAPI(logger.NewNoOpLogger())

	for _, w := range api.EnumerateWindows() {
		assert.NotZero(t, w.Hwnd)
		assert.NotEmpty(t, w.Title, "only titled windows are listed")
		assert.True(t, api.IsWindow(w.Hwnd))
	}
}
