// Package timeouts defines timeout, delay and sizing constants for hotpin.
package timeouts

import "time"

const (
	// Topmost Enforcement

	// MonitorPollInterval is the delay between z-order checks for each
	// monitored window. A window pushed out of the top of the z-order is
	// restored within one interval.
	MonitorPollInterval = 500 * time.Millisecond

	// TopmostRetryDelay separates the extra SetWindowPos calls made after a
	// window is re-pinned, giving the shell time to settle between attempts.
	TopmostRetryDelay = 10 * time.Millisecond

	// TopmostRetryCount is the number of extra SetWindowPos calls made after
	// the initial re-pin.
	TopmostRetryCount = 3

	// ZOrderDepth is how many windows from the top of the desktop z-order a
	// monitored window may sit at before it is considered displaced.
	ZOrderDepth = 10

	// Input Hooks

	// DispatchQueueSize bounds the queue between the hook thread and the
	// action consumer. Posts beyond this are dropped, never blocked on.
	DispatchQueueSize = 64

	// PumpStartTimeout is the maximum time to wait for a hook or hotkey
	// thread to report that its resources are installed.
	PumpStartTimeout = 5 * time.Second

	// PumpStopTimeout is the maximum time to wait for a hook or hotkey
	// thread to exit after WM_QUIT is posted.
	PumpStopTimeout = 2 * time.Second

	// Windows API Interaction Delays

	// WindowMessageDelay allows a window to process activation before the
	// foreground is verified.
	WindowMessageDelay = 100 * time.Millisecond

	// KeystrokeDelay is the delay between the press and release halves of a
	// synthesized combination.
	KeystrokeDelay = 20 * time.Millisecond

	// Configuration

	// ConfigReloadDebounce collapses the burst of file events editors emit
	// on save into a single reload.
	ConfigReloadDebounce = 250 * time.Millisecond

	// Control Pipe

	// PipeDialTimeout is how long a CLI invocation waits to connect to a
	// running daemon before falling back to local execution.
	PipeDialTimeout = 2 * time.Second

	// PipeIOTimeout bounds a single request/response exchange.
	PipeIOTimeout = 10 * time.Second

	// Shutdown

	// ShutdownTimeout is how long a console close or logoff event waits for
	// hooks and monitors to be released before the process is terminated.
	ShutdownTimeout = 5 * time.Second
)
