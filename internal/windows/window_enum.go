//go:build windows

package windows

import (
	"sync"

	sysw "golang.org/x/sys/windows"

	"github.com/Norgate-AV/hotpin/internal/interfaces"
)

var (
	foundWindows []interfaces.WindowInfo
	windowsMu    sync.Mutex

	// created once; each NewCallback consumes a slot that is never freed
	enumWindowsProc = sysw.NewCallback(enumWindowsCallback)
)

func enumWindowsCallback(hwnd uintptr, _ uintptr) uintptr {
	if IsWindowVisible(hwnd) {
		if title := GetWindowText(hwnd); title != "" {
			foundWindows = append(foundWindows, interfaces.WindowInfo{
				Hwnd:  hwnd,
				Title: title,
				Pid:   GetWindowPid(hwnd),
			})
		}
	}

	return 1 // Continue enumeration
}

// EnumerateWindows performs a thread-safe enumeration of visible, titled
// top-level windows. EnumWindows reports them in z-order, topmost first.
func EnumerateWindows() []interfaces.WindowInfo {
	windowsMu.Lock()
	defer windowsMu.Unlock()

	foundWindows = nil
	ret, _, _ := procEnumWindows.Call(enumWindowsProc, 0)
	if ret == 0 {
		return nil
	}

	// Make a copy to avoid races with subsequent enumerations
	windows := make([]interfaces.WindowInfo, len(foundWindows))
	copy(windows, foundWindows)

	return windows
}
