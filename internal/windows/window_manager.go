//go:build windows

package windows

import (
	"log/slog"
	"time"

	"github.com/Norgate-AV/hotpin/internal/logger"
	"github.com/Norgate-AV/hotpin/internal/timeouts"
)

// windowManager implements the window half of interfaces.WindowManager
type windowManager struct {
	log logger.LoggerInterface
}

// newWindowManager creates a new window manager
func newWindowManager(log logger.LoggerInterface) *windowManager {
	return &windowManager{log: log}
}

// SetTopmost pins or unpins a window. Pinning also sets WS_EX_TOPMOST.
func (w *windowManager) SetTopmost(hwnd uintptr, on bool) bool {
	if !IsWindow(hwnd) {
		return false
	}

	insertAfter := HWND_NOTOPMOST
	if on {
		insertAfter = HWND_TOPMOST
	}

	if !setWindowPos(hwnd, insertAfter) {
		w.log.Debug("SetWindowPos failed",
			slog.Uint64("hwnd", uint64(hwnd)),
			slog.Bool("topmost", on),
		)

		return false
	}

	if !on {
		return true
	}

	exStyle, _, _ := procGetWindowLongW.Call(hwnd, GWL_EXSTYLE)
	_, _, _ = procSetWindowLongW.Call(hwnd, GWL_EXSTYLE, exStyle|WS_EX_TOPMOST)

	return true
}

// SetForeground brings a window to the foreground using AttachThreadInput technique
func (w *windowManager) SetForeground(hwnd uintptr) bool {
	// Restore window if minimized
	if ret, _, _ := procIsIconic.Call(hwnd); ret != 0 {
		_, _, _ = procShowWindow.Call(hwnd, uintptr(SW_RESTORE))
	}

	// Try standard SetForegroundWindow first
	ret, _, _ := procSetForegroundWindow.Call(hwnd)
	if ret != 0 {
		w.log.Debug("SetForegroundWindow succeeded (standard)")
		return w.verifyForeground(hwnd)
	}

	w.log.Debug("Standard SetForegroundWindow failed, trying AttachThreadInput technique")

	// Get current foreground window and its thread
	fgHwnd, _, _ := procGetForegroundWindow.Call()
	if fgHwnd == hwnd {
		return true
	}

	fgThreadID, _, _ := procGetWindowThreadProcessId.Call(fgHwnd, 0)
	targetThreadID, _, _ := procGetWindowThreadProcessId.Call(hwnd, 0)

	if fgHwnd == 0 || fgThreadID == 0 || targetThreadID == 0 {
		w.log.Warn("Could not get thread IDs",
			slog.Uint64("fgThreadID", uint64(fgThreadID)),
			slog.Uint64("targetThreadID", uint64(targetThreadID)))
		return false
	}

	ret, _, _ = procAttachThreadInput.Call(targetThreadID, fgThreadID, 1)
	if ret == 0 {
		w.log.Warn("AttachThreadInput failed")
		return false
	}

	ret, _, _ = procSetForegroundWindow.Call(hwnd)
	_, _, _ = procBringWindowToTop.Call(hwnd)
	success := ret != 0

	ret, _, _ = procAttachThreadInput.Call(targetThreadID, fgThreadID, 0)
	if ret == 0 {
		w.log.Warn("Failed to detach threads")
	}

	_, _, _ = procShowWindow.Call(hwnd, uintptr(SW_SHOW))

	if success {
		w.log.Debug("SetForegroundWindow succeeded (with AttachThreadInput)")
		return w.verifyForeground(hwnd)
	}

	w.log.Warn("SetForegroundWindow still failed after AttachThreadInput")
	return false
}

// verifyForeground checks if the window is now in foreground
func (w *windowManager) verifyForeground(hwnd uintptr) bool {
	time.Sleep(timeouts.WindowMessageDelay)

	fgHwnd, _, _ := procGetForegroundWindow.Call()
	if fgHwnd == hwnd {
		return true
	}

	w.log.Warn("Different window in foreground",
		slog.Uint64("expected", uint64(hwnd)),
		slog.Uint64("got", uint64(fgHwnd)))

	return false
}
