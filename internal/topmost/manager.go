// Package topmost keeps chosen windows above everything else, re-pinning
// them whenever another process pushes them down the z-order.
package topmost

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Norgate-AV/hotpin/internal/interfaces"
	"github.com/Norgate-AV/hotpin/internal/logger"
	"github.com/Norgate-AV/hotpin/internal/timeouts"
)

var (
	ErrEmptyTitle      = errors.New("window title is empty")
	ErrWindowNotFound  = errors.New("window not found")
	ErrOperationFailed = errors.New("window operation failed")
)

// WatchStatus describes one monitored title
type WatchStatus struct {
	Title      string  `json:"title"`
	Hwnd       uintptr `json:"hwnd"`
	Persistent bool    `json:"persistent"` // survives the window closing
}

// Waiting reports whether no window currently matches the watch
func (w WatchStatus) Waiting() bool { return w.Hwnd == 0 }

type watch struct {
	title      string
	persistent bool
	cancel     context.CancelFunc
	done       chan struct{}

	mu   sync.Mutex
	hwnd uintptr
}

func (w *watch) handle() uintptr {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.hwnd
}

func (w *watch) setHandle(hwnd uintptr) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.hwnd = hwnd
}

func (w *watch) stop() {
	w.cancel()
	<-w.done
}

// Manager owns one monitor goroutine per watched title
type Manager struct {
	*Locator

	wm         interfaces.WindowManager
	log        logger.LoggerInterface
	interval   time.Duration
	depth      int
	retries    int
	retryDelay time.Duration

	// ops serialises Start/Stop so a title never has two monitors
	ops     sync.Mutex
	mu      sync.Mutex
	watches map[string]*watch
}

// Option configures a Manager
type Option func(*Manager)

// WithPollInterval overrides the delay between z-order checks
func WithPollInterval(d time.Duration) Option {
	return func(m *Manager) { m.interval = d }
}

// WithZOrderDepth sets how far down the z-order a window may sit before it is re-pinned
func WithZOrderDepth(n int) Option {
	return func(m *Manager) { m.depth = n }
}

// WithRetries sets the extra placement requests made after each re-pin
func WithRetries(count int, delay time.Duration) Option {
	return func(m *Manager) {
		m.retries = count
		m.retryDelay = delay
	}
}

func NewManager(wm interfaces.WindowManager, log logger.LoggerInterface, opts ...Option) *Manager {
	m := &Manager{
		Locator:    NewLocator(wm),
		wm:         wm,
		log:        logger.WithComponent(log, "topmost"),
		interval:   timeouts.MonitorPollInterval,
		depth:      timeouts.ZOrderDepth,
		retries:    timeouts.TopmostRetryCount,
		retryDelay: timeouts.TopmostRetryDelay,
		watches:    make(map[string]*watch),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// pin places hwnd at the top of the topmost band and repeats the request,
// since a fullscreen application may immediately reclaim the top
func (m *Manager) pin(hwnd uintptr) bool {
	ok := m.wm.SetTopmost(hwnd, true)

	for i := 0; i < m.retries; i++ {
		time.Sleep(m.retryDelay)
		m.wm.RaiseTopmost(hwnd)
	}

	return ok
}

// StartMonitoring pins the first window whose title contains title and keeps
// it pinned until StopMonitoring is called or the window closes. It returns
// ErrWindowNotFound, and starts nothing, when no window matches. A title
// already watched by PinWhenAvailable stays persistent.
func (m *Manager) StartMonitoring(title string) error {
	if title == "" {
		return ErrEmptyTitle
	}

	matches := m.FindAll(title)
	if len(matches) == 0 {
		return fmt.Errorf("%w: %q", ErrWindowNotFound, title)
	}

	info := matches[0]
	if len(matches) > 1 {
		m.log.Warn("Title matches more than one window, pinning the topmost match",
			slog.String("title", title),
			slog.Int("matches", len(matches)),
			slog.String("window", info.Title),
		)
	}

	m.ops.Lock()
	defer m.ops.Unlock()

	m.mu.Lock()
	existing := m.watches[title]
	m.mu.Unlock()

	m.startLocked(title, info.Hwnd, existing != nil && existing.persistent)

	m.log.Info("Monitoring window",
		slog.String("title", info.Title),
		slog.Uint64("hwnd", uint64(info.Hwnd)),
	)

	return nil
}

// PinWhenAvailable is StartMonitoring for a window that may not exist yet.
// The title is polled until a window appears and is re-pinned each time it
// reappears after closing.
func (m *Manager) PinWhenAvailable(title string) error {
	if title == "" {
		return ErrEmptyTitle
	}

	m.ops.Lock()
	defer m.ops.Unlock()

	m.mu.Lock()
	existing := m.watches[title]
	m.mu.Unlock()

	if existing != nil && existing.persistent {
		return nil
	}

	var hwnd uintptr
	if info, ok := m.Find(title); ok {
		hwnd = info.Hwnd
	}

	m.startLocked(title, hwnd, true)

	if hwnd == 0 {
		m.log.Info("Waiting for window to appear", slog.String("title", title))
	} else {
		m.log.Info("Monitoring window", slog.String("title", title), slog.Uint64("hwnd", uint64(hwnd)))
	}

	return nil
}

func (m *Manager) startLocked(title string, hwnd uintptr, persistent bool) {
	m.mu.Lock()
	old := m.watches[title]
	delete(m.watches, title)
	m.mu.Unlock()

	if old != nil {
		old.stop()
	}

	if hwnd != 0 {
		m.pin(hwnd)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &watch{
		title:      title,
		persistent: persistent,
		cancel:     cancel,
		done:       make(chan struct{}),
		hwnd:       hwnd,
	}

	m.mu.Lock()
	m.watches[title] = w
	m.mu.Unlock()

	go m.monitor(ctx, w)
}

// monitor re-pins w each poll until cancelled. A non-persistent watch ends
// when its window closes.
func (m *Manager) monitor(ctx context.Context, w *watch) {
	defer close(w.done)
	defer m.forget(w)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		hwnd := w.handle()

		switch {
		case hwnd == 0:
			info, ok := m.Find(w.title)
			if !ok {
				continue
			}

			w.setHandle(info.Hwnd)
			m.pin(info.Hwnd)

			m.log.Info("Window appeared, pinned",
				slog.String("title", info.Title),
				slog.Uint64("hwnd", uint64(info.Hwnd)),
			)

		case !m.wm.IsWindow(hwnd):
			if !w.persistent {
				m.log.Info("Monitored window closed", slog.String("title", w.title))
				return
			}

			w.setHandle(0)
			m.log.Info("Monitored window closed, waiting for it to reappear", slog.String("title", w.title))

		case !m.wm.IsInTopZOrder(hwnd, m.depth):
			m.log.Debug("Window lost top z-order, re-pinning",
				slog.String("title", w.title),
				slog.Uint64("hwnd", uint64(hwnd)),
			)

			m.pin(hwnd)
		}
	}
}

func (m *Manager) forget(w *watch) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.watches[w.title] == w {
		delete(m.watches, w.title)
	}
}

// StopMonitoring stops the monitor for title and removes topmost from its
// window. An empty title stops every monitor and leaves windows as they are.
// It reports whether a monitor was stopped or a window was un-pinned.
func (m *Manager) StopMonitoring(title string) bool {
	m.ops.Lock()
	defer m.ops.Unlock()

	if title == "" {
		m.mu.Lock()
		all := make([]*watch, 0, len(m.watches))
		for _, w := range m.watches {
			all = append(all, w)
		}
		m.watches = make(map[string]*watch)
		m.mu.Unlock()

		for _, w := range all {
			w.stop()
		}

		if len(all) > 0 {
			m.log.Info("Stopped all window monitors", slog.Int("count", len(all)))
		}

		return true
	}

	m.mu.Lock()
	w := m.watches[title]
	delete(m.watches, title)
	m.mu.Unlock()

	var hwnd uintptr
	if w != nil {
		w.stop()
		hwnd = w.handle()
	}

	if hwnd == 0 || !m.wm.IsWindow(hwnd) {
		hwnd = 0
		if info, ok := m.Find(title); ok {
			hwnd = info.Hwnd
		}
	}

	if hwnd != 0 {
		m.wm.SetTopmost(hwnd, false)
	}

	m.log.Info("Stopped monitoring window",
		slog.String("title", title),
		slog.Bool("monitored", w != nil),
		slog.Uint64("hwnd", uint64(hwnd)),
	)

	return w != nil || hwnd != 0
}

// SetTopmost pins or un-pins the window matching title once, without monitoring
func (m *Manager) SetTopmost(title string, on bool) error {
	info, err := m.resolve(title)
	if err != nil {
		return err
	}

	var ok bool
	if on {
		ok = m.pin(info.Hwnd)
	} else {
		ok = m.wm.SetTopmost(info.Hwnd, false)
	}

	if !ok {
		return fmt.Errorf("%w: set topmost=%t on %q", ErrOperationFailed, on, info.Title)
	}

	return nil
}

// BringToForeground activates the window matching title
func (m *Manager) BringToForeground(title string) error {
	info, err := m.resolve(title)
	if err != nil {
		return err
	}

	if !m.wm.SetForeground(info.Hwnd) {
		return fmt.Errorf("%w: foreground %q", ErrOperationFailed, info.Title)
	}

	return nil
}

func (m *Manager) resolve(title string) (interfaces.WindowInfo, error) {
	if title == "" {
		return interfaces.WindowInfo{}, ErrEmptyTitle
	}

	info, ok := m.Find(title)
	if !ok {
		return interfaces.WindowInfo{}, fmt.Errorf("%w: %q", ErrWindowNotFound, title)
	}

	return info, nil
}

// ListVisibleWindows returns a snapshot of visible titled windows, topmost first
func (m *Manager) ListVisibleWindows() []interfaces.WindowInfo {
	return m.wm.EnumerateWindows()
}

// Watched returns the monitored titles in sorted order
func (m *Manager) Watched() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.watches))
	for title := range m.watches {
		out = append(out, title)
	}

	sort.Strings(out)
	return out
}

// Watches describes every monitored title, sorted by title
func (m *Manager) Watches() []WatchStatus {
	m.mu.Lock()
	all := make([]*watch, 0, len(m.watches))
	for _, w := range m.watches {
		all = append(all, w)
	}
	m.mu.Unlock()

	out := make([]WatchStatus, 0, len(all))
	for _, w := range all {
		out = append(out, WatchStatus{Title: w.title, Hwnd: w.handle(), Persistent: w.persistent})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out
}

// Reconcile makes the persistent watches equal titles. Titles no longer listed
// are stopped without touching their windows; monitors started with
// StartMonitoring are left alone.
func (m *Manager) Reconcile(titles []string) {
	want := make(map[string]bool, len(titles))
	for _, t := range titles {
		if t != "" {
			want[t] = true
		}
	}

	m.ops.Lock()
	m.mu.Lock()
	var stale []*watch
	for title, w := range m.watches {
		if w.persistent && !want[title] {
			stale = append(stale, w)
			delete(m.watches, title)
		}
	}
	m.mu.Unlock()

	for _, w := range stale {
		w.stop()
		m.log.Info("No longer pinning window", slog.String("title", w.title))
	}
	m.ops.Unlock()

	for title := range want {
		_ = m.PinWhenAvailable(title)
	}
}

// Close stops every monitor
func (m *Manager) Close() {
	m.StopMonitoring("")
}
