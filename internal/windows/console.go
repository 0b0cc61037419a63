//go:build windows

package windows

import (
	"sync"

	sysw "golang.org/x/sys/windows"
)

var (
	ctrlHandlerMu   sync.Mutex
	ctrlHandler     ConsoleCtrlHandler
	ctrlHandlerOnce sync.Once
)

// SetConsoleCtrlHandler sets up a Windows console control handler
// This catches Ctrl+C, window close, logoff, and shutdown events.
// Later calls replace the handler; the OS registration happens once.
func SetConsoleCtrlHandler(handler ConsoleCtrlHandler) error {
	ctrlHandlerMu.Lock()
	ctrlHandler = handler
	ctrlHandlerMu.Unlock()

	var err error

	ctrlHandlerOnce.Do(func() {
		ret, _, callErr := procSetConsoleCtrlHandler.Call(
			sysw.NewCallback(consoleCtrlHandlerCallback),
			1, // TRUE - add handler
		)

		if ret == 0 {
			err = callErr
		}
	})

	return err
}

// consoleCtrlHandlerCallback runs on a thread the OS creates for the event
func consoleCtrlHandlerCallback(ctrlType uint32) uintptr {
	ctrlHandlerMu.Lock()
	h := ctrlHandler
	ctrlHandlerMu.Unlock()

	if h != nil && h(ctrlType) {
		return 1
	}

	return 0 // FALSE - let default handler process it
}
