//go:build windows

package windows

import (
	sysw "golang.org/x/sys/windows"

	"github.com/Norgate-AV/hotpin/internal/interfaces"
	"github.com/Norgate-AV/hotpin/internal/keys"
	"github.com/Norgate-AV/hotpin/internal/logger"
)

var (
	shell32          = sysw.NewLazySystemDLL("shell32.dll")
	procShellExecute = shell32.NewProc("ShellExecuteW")

	kernel32                  = sysw.NewLazySystemDLL("kernel32.dll")
	procGetModuleHandleW      = kernel32.NewProc("GetModuleHandleW")
	procSetConsoleCtrlHandler = kernel32.NewProc("SetConsoleCtrlHandler")

	user32                       = sysw.NewLazySystemDLL("user32.dll")
	procEnumWindows              = user32.NewProc("EnumWindows")
	procGetWindowTextW           = user32.NewProc("GetWindowTextW")
	procGetWindowTextLengthW     = user32.NewProc("GetWindowTextLengthW")
	procGetWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
	procAttachThreadInput        = user32.NewProc("AttachThreadInput")
	procIsWindow                 = user32.NewProc("IsWindow")
	procIsWindowVisible          = user32.NewProc("IsWindowVisible")
	procIsIconic                 = user32.NewProc("IsIconic")
	procSetForegroundWindow      = user32.NewProc("SetForegroundWindow")
	procGetForegroundWindow      = user32.NewProc("GetForegroundWindow")
	procBringWindowToTop         = user32.NewProc("BringWindowToTop")
	procShowWindow               = user32.NewProc("ShowWindow")
	procSendInput                = user32.NewProc("SendInput")
	procMapVirtualKeyW           = user32.NewProc("MapVirtualKeyW")
	procSetWindowPos             = user32.NewProc("SetWindowPos")
	procGetWindowLongW           = user32.NewProc("GetWindowLongW")
	procSetWindowLongW           = user32.NewProc("SetWindowLongW")
	procGetTopWindow             = user32.NewProc("GetTopWindow")
	procGetWindow                = user32.NewProc("GetWindow")
	procGetDesktopWindow         = user32.NewProc("GetDesktopWindow")
	procSetWindowsHookExW        = user32.NewProc("SetWindowsHookExW")
	procCallNextHookEx           = user32.NewProc("CallNextHookEx")
	procUnhookWindowsHookEx      = user32.NewProc("UnhookWindowsHookEx")
	procGetMessageW              = user32.NewProc("GetMessageW")
	procPeekMessageW             = user32.NewProc("PeekMessageW")
	procTranslateMessage         = user32.NewProc("TranslateMessage")
	procDispatchMessageW         = user32.NewProc("DispatchMessageW")
	procPostThreadMessageW       = user32.NewProc("PostThreadMessageW")
	procRegisterHotKey           = user32.NewProc("RegisterHotKey")
	procUnregisterHotKey         = user32.NewProc("UnregisterHotKey")
)

const (
	WM_QUIT        = 0x0012
	WM_HOTKEY      = 0x0312
	WM_KEYDOWN     = 0x0100
	WM_KEYUP       = 0x0101
	WM_SYSKEYDOWN  = 0x0104
	WM_SYSKEYUP    = 0x0105
	WM_XBUTTONDOWN = 0x020B
	WM_XBUTTONUP   = 0x020C
	PM_NOREMOVE    = 0x0000

	WH_KEYBOARD_LL = 13
	WH_MOUSE_LL    = 14
	HC_ACTION      = 0

	LLKHF_LOWER_IL_INJECTED = 0x02
	LLKHF_INJECTED          = 0x10
	LLMHF_INJECTED          = 0x01

	INPUT_KEYBOARD        = 1
	KEYEVENTF_EXTENDEDKEY = 0x0001
	KEYEVENTF_KEYUP       = 0x0002
	MAPVK_VK_TO_VSC       = 0

	HWND_TOPMOST   = ^uintptr(0)     // (HWND)-1
	HWND_NOTOPMOST = ^uintptr(0) - 1 // (HWND)-2
	SWP_NOSIZE     = 0x0001
	SWP_NOMOVE     = 0x0002
	SWP_NOACTIVATE = 0x0010
	GWL_EXSTYLE    = ^uintptr(19) // -20
	WS_EX_TOPMOST  = 0x00000008
	GW_HWNDNEXT    = 2

	SW_SHOW    = 5
	SW_RESTORE = 9

	SW_SHOWNORMAL = 1
)

// WindowsAPI is a concrete implementation of all Windows-related interfaces
// It wraps a Client to provide the required functionality
type WindowsAPI struct {
	client *Client
}

var (
	_ interfaces.WindowManager    = (*WindowsAPI)(nil)
	_ interfaces.KeyboardInjector = (*WindowsAPI)(nil)
	_ interfaces.Launcher         = (*WindowsAPI)(nil)
)

// NewWindowsAPI creates a new WindowsAPI with the provided logger
func NewWindowsAPI(log logger.LoggerInterface) *WindowsAPI {
	return &WindowsAPI{
		client: NewClient(log),
	}
}

// WindowManager interface implementation
func (w *WindowsAPI) EnumerateWindows() []interfaces.WindowInfo { return EnumerateWindows() }
func (w *WindowsAPI) IsWindow(hwnd uintptr) bool                { return IsWindow(hwnd) }
func (w *WindowsAPI) IsInTopZOrder(hwnd uintptr, depth int) bool {
	return IsInTopZOrder(hwnd, depth)
}

func (w *WindowsAPI) SetTopmost(hwnd uintptr, on bool) bool {
	return w.client.Window.SetTopmost(hwnd, on)
}
func (w *WindowsAPI) RaiseTopmost(hwnd uintptr) bool  { return RaiseTopmost(hwnd) }
func (w *WindowsAPI) SetForeground(hwnd uintptr) bool { return w.client.Window.SetForeground(hwnd) }

// KeyboardInjector interface implementation
func (w *WindowsAPI) SendCombo(combo keys.Combo) bool { return w.client.Keyboard.SendCombo(combo) }

// Launcher interface implementation
func (w *WindowsAPI) Launch(file, args, dir string) error {
	return ShellExecute(0, "open", file, args, dir, SW_SHOWNORMAL)
}
