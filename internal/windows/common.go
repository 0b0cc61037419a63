// Package windows wraps the user32, kernel32 and shell32 calls hotpin needs.
// On other platforms every OS operation reports ErrUnsupported.
package windows

import (
	"errors"
	"strings"
)

var (
	// ErrUnsupported is returned by OS operations on non-Windows platforms
	ErrUnsupported = errors.New("unsupported platform: hotpin requires Windows")

	// ErrAlreadyRunning is returned by AcquireInstanceLock when another daemon holds the lock
	ErrAlreadyRunning = errors.New("another hotpin daemon is already running")
)

// InputHandler receives low-level events on the hook thread. Returning true
// swallows the event. Implementations must return quickly and never block.
type InputHandler interface {
	OnKey(vk uint32, down, injected bool) bool
	OnMouse(button uint32, down, injected bool) bool
}

// Hotkey is one RegisterHotKey registration
type Hotkey struct {
	ID   int32
	Mods uint32
	VK   uint32
}

// ConsoleCtrlHandler is a callback function for console control events.
// Returning true marks the event as handled.
type ConsoleCtrlHandler func(ctrlType uint32) bool

// Console control event types
const (
	CTRL_C_EVENT        = 0
	CTRL_BREAK_EVENT    = 1
	CTRL_CLOSE_EVENT    = 2
	CTRL_LOGOFF_EVENT   = 5
	CTRL_SHUTDOWN_EVENT = 6
)

// GetCtrlTypeName returns a human-readable name for a control event type
func GetCtrlTypeName(ctrlType uint32) string {
	switch ctrlType {
	case CTRL_C_EVENT:
		return "CTRL_C"
	case CTRL_BREAK_EVENT:
		return "CTRL_BREAK"
	case CTRL_CLOSE_EVENT:
		return "CTRL_CLOSE"
	case CTRL_LOGOFF_EVENT:
		return "CTRL_LOGOFF"
	case CTRL_SHUTDOWN_EVENT:
		return "CTRL_SHUTDOWN"
	default:
		return "UNKNOWN"
	}
}

// SanitizeName makes s safe for use in kernel object and pipe names
func SanitizeName(s string) string {
	var b strings.Builder

	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	if b.Len() == 0 {
		return "default"
	}

	return b.String()
}
