//go:build windows

package windows

import (
	"fmt"
	"os"
	"os/user"
	"strings"

	sysw "golang.org/x/sys/windows"
)

// InstanceLock holds the named mutex that marks a running daemon. The
// kernel releases it when the owning process terminates.
type InstanceLock struct {
	handle sysw.Handle
}

// InstanceMutexName returns the per-user mutex name
func InstanceMutexName() string {
	username := strings.TrimSpace(os.Getenv("USERNAME"))
	if username == "" {
		if current, err := user.Current(); err == nil {
			username = current.Username
		}
	}

	return `Local\hotpin-` + SanitizeName(username)
}

// AcquireInstanceLock returns ErrAlreadyRunning when another process holds name
func AcquireInstanceLock(name string) (*InstanceLock, error) {
	namePtr, err := sysw.UTF16PtrFromString(name)
	if err != nil {
		return nil, fmt.Errorf("invalid mutex name %q: %w", name, err)
	}

	h, err := sysw.CreateMutex(nil, true, namePtr)
	if err == sysw.ERROR_ALREADY_EXISTS {
		if h != 0 {
			_ = sysw.CloseHandle(h)
		}

		return nil, ErrAlreadyRunning
	}

	if err != nil {
		if h != 0 {
			_ = sysw.CloseHandle(h)
		}

		return nil, fmt.Errorf("CreateMutex %q: %w", name, err)
	}

	return &InstanceLock{handle: h}, nil
}

// Release closes the mutex handle. Safe to call on nil receiver and idempotent.
func (l *InstanceLock) Release() error {
	if l == nil || l.handle == 0 {
		return nil
	}

	err := sysw.CloseHandle(l.handle)
	l.handle = 0

	return err
}
