//go:build windows

package windows

func setWindowPos(hwnd, insertAfter uintptr) bool {
	ret, _, _ := procSetWindowPos.Call(hwnd, insertAfter, 0, 0, 0, 0, SWP_NOMOVE|SWP_NOSIZE|SWP_NOACTIVATE)
	return ret != 0
}

// RaiseTopmost repeats a single HWND_TOPMOST z-order change without touching styles
func RaiseTopmost(hwnd uintptr) bool {
	return setWindowPos(hwnd, HWND_TOPMOST)
}

// IsInTopZOrder walks the desktop's child windows from the top and reports
// whether hwnd is among the first depth of them
func IsInTopZOrder(hwnd uintptr, depth int) bool {
	desktop, _, _ := procGetDesktopWindow.Call()
	current, _, _ := procGetTopWindow.Call(desktop)

	for i := 0; i < depth && current != 0; i++ {
		if current == hwnd {
			return true
		}

		current, _, _ = procGetWindow.Call(current, GW_HWNDNEXT)
	}

	return false
}
