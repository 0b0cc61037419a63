//go:build windows

package windows

import (
	"fmt"
	"unsafe"

	sysw "golang.org/x/sys/windows"
)

// utf16PtrOrNil converts s, returning nil for the empty string so optional
// ShellExecute arguments stay NULL
func utf16PtrOrNil(s string) (*uint16, error) {
	if s == "" {
		return nil, nil
	}

	return sysw.UTF16PtrFromString(s)
}

// ShellExecute executes a file using the Windows shell
func ShellExecute(hwnd uintptr, verb, file, args, cwd string, showCmd int) error {
	verbPtr, err := utf16PtrOrNil(verb)
	if err != nil {
		return err
	}

	filePtr, err := sysw.UTF16PtrFromString(file)
	if err != nil {
		return err
	}

	argsPtr, err := utf16PtrOrNil(args)
	if err != nil {
		return err
	}

	cwdPtr, err := utf16PtrOrNil(cwd)
	if err != nil {
		return err
	}

	ret, _, _ := procShellExecute.Call(
		hwnd,
		uintptr(unsafe.Pointer(verbPtr)),
		uintptr(unsafe.Pointer(filePtr)),
		uintptr(unsafe.Pointer(argsPtr)),
		uintptr(unsafe.Pointer(cwdPtr)),
		uintptr(showCmd),
	)

	// ShellExecute returns a value > 32 on success
	if ret <= 32 {
		return fmt.Errorf("shell execute %q failed with error code: %d", file, ret)
	}

	return nil
}

// GetWindowText retrieves the title of a window
func GetWindowText(hwnd uintptr) string {
	n, _, _ := procGetWindowTextLengthW.Call(hwnd)
	if n == 0 {
		return ""
	}

	buf := make([]uint16, n+1)

	ret, _, _ := procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if ret == 0 {
		return ""
	}

	return sysw.UTF16ToString(buf)
}

// IsWindow checks if a window handle is valid
func IsWindow(hwnd uintptr) bool {
	ret, _, _ := procIsWindow.Call(hwnd)
	return ret != 0
}

// IsWindowVisible checks if a window is visible
func IsWindowVisible(hwnd uintptr) bool {
	ret, _, _ := procIsWindowVisible.Call(hwnd)
	return ret != 0
}

// GetWindowPid retrieves the process ID of a window
func GetWindowPid(hwnd uintptr) uint32 {
	var pid uint32

	ret, _, _ := procGetWindowThreadProcessId.Call(hwnd, uintptr(unsafe.Pointer(&pid)))
	if ret == 0 {
		return 0
	}

	return pid
}
