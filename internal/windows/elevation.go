//go:build windows

package windows

import (
	"fmt"
	"os"
	"strings"

	sysw "golang.org/x/sys/windows"
)

// IsElevated reports whether the process token is elevated. Low-level hooks
// do not see input aimed at elevated windows unless hotpin is elevated too.
func IsElevated() bool {
	return sysw.GetCurrentProcessToken().IsElevated()
}

// RelaunchAsAdmin starts this executable again through the "runas" verb with
// the same arguments minus --elevate
func RelaunchAsAdmin() error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}

	// Check if running via 'go run' (exe will be in temp dir)
	if strings.Contains(exe, "go-build") {
		return fmt.Errorf("cannot relaunch when run via 'go run', please build the executable first with: go build -o hotpin.exe")
	}

	args := make([]string, 0, len(os.Args))
	for _, a := range os.Args[1:] {
		if a == "--elevate" {
			continue
		}

		args = append(args, sysw.EscapeArg(a))
	}

	return ShellExecute(0, "runas", exe, strings.Join(args, " "), "", SW_SHOWNORMAL)
}
