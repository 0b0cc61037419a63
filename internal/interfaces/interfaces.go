// Package interfaces defines core interfaces for dependency injection and testing.
package interfaces

import "github.com/Norgate-AV/hotpin/internal/keys"

// WindowInfo describes a visible top-level window
type WindowInfo struct {
	Hwnd  uintptr `json:"hwnd"`
	Title string  `json:"title"`
	Pid   uint32  `json:"pid"`
}

// WindowManager handles window operations
type WindowManager interface {
	// EnumerateWindows lists visible top-level windows in z-order, topmost first.
	EnumerateWindows() []WindowInfo
	IsWindow(hwnd uintptr) bool
	// IsInTopZOrder reports whether hwnd is among the first depth windows of the desktop z-order.
	IsInTopZOrder(hwnd uintptr, depth int) bool
	SetTopmost(hwnd uintptr, on bool) bool
	RaiseTopmost(hwnd uintptr) bool
	SetForeground(hwnd uintptr) bool
}

// KeyboardInjector synthesizes keyboard input
type KeyboardInjector interface {
	SendCombo(combo keys.Combo) bool
}

// Launcher starts external programs
type Launcher interface {
	Launch(file, args, dir string) error
}
