//go:build !windows

package windows

import (
	"github.com/Norgate-AV/hotpin/internal/interfaces"
	"github.com/Norgate-AV/hotpin/internal/keys"
	"github.com/Norgate-AV/hotpin/internal/logger"
)

// WindowsAPI reports failure for every operation on this platform
type WindowsAPI struct{}

func NewWindowsAPI(_ logger.LoggerInterface) *WindowsAPI { return &WindowsAPI{} }

func (w *WindowsAPI) EnumerateWindows() []interfaces.WindowInfo { return nil }
func (w *WindowsAPI) IsWindow(_ uintptr) bool                   { return false }
func (w *WindowsAPI) IsInTopZOrder(_ uintptr, _ int) bool       { return false }
func (w *WindowsAPI) SetTopmost(_ uintptr, _ bool) bool         { return false }
func (w *WindowsAPI) RaiseTopmost(_ uintptr) bool               { return false }
func (w *WindowsAPI) SetForeground(_ uintptr) bool              { return false }
func (w *WindowsAPI) SendCombo(_ keys.Combo) bool               { return false }
func (w *WindowsAPI) Launch(_, _, _ string) error               { return ErrUnsupported }
func IsElevated() bool                                          { return false }
func RelaunchAsAdmin() error                                    { return ErrUnsupported }
func SetConsoleCtrlHandler(_ ConsoleCtrlHandler) error          { return ErrUnsupported }
func InstanceMutexName() string                                 { return "" }

// InputPump is never started on this platform
type InputPump struct{}

func StartInputHooks(_ InputHandler, _, _ bool, _ logger.LoggerInterface) (*InputPump, error) {
	return nil, ErrUnsupported
}

func (p *InputPump) KeyboardInstalled() bool { return false }
func (p *InputPump) MouseInstalled() bool    { return false }
func (p *InputPump) Stop()                   {}

// HotkeyLoop is never started on this platform
type HotkeyLoop struct{}

func StartHotkeyLoop(_ []Hotkey, _ func(id int32), _ logger.LoggerInterface) (*HotkeyLoop, error) {
	return nil, ErrUnsupported
}

func (l *HotkeyLoop) Registered() int { return 0 }
func (l *HotkeyLoop) Stop()           {}

// InstanceLock is a no-op on this platform
type InstanceLock struct{}

func AcquireInstanceLock(_ string) (*InstanceLock, error) { return &InstanceLock{}, nil }
func (l *InstanceLock) Release() error                    { return nil }
