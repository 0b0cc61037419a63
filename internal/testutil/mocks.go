package testutil

import (
	"sync"

	"github.com/Norgate-AV/hotpin/internal/interfaces"
	"github.com/Norgate-AV/hotpin/internal/keys"
)

// MockWindowManager simulates a desktop z-order and records all calls for
// verification. It is safe for use from monitor goroutines.
type MockWindowManager struct {
	mu                  sync.Mutex
	windows             map[uintptr]interfaces.WindowInfo
	zorder              []uintptr // topmost first
	topmost             map[uintptr]bool
	setTopmostCalls     []TopmostCall
	raiseCalls          []uintptr
	setForegroundCalls  []uintptr
	setTopmostResult    bool
	setForegroundResult bool
}

// TopmostCall is one recorded SetTopmost call
type TopmostCall struct {
	Hwnd uintptr
	On   bool
}

func NewMockWindowManager() *MockWindowManager {
	return &MockWindowManager{
		windows:             make(map[uintptr]interfaces.WindowInfo),
		topmost:             make(map[uintptr]bool),
		setTopmostResult:    true,
		setForegroundResult: true,
	}
}

func (m *MockWindowManager) EnumerateWindows() []interfaces.WindowInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]interfaces.WindowInfo, 0, len(m.zorder))
	for _, hwnd := range m.zorder {
		out = append(out, m.windows[hwnd])
	}

	return out
}

func (m *MockWindowManager) IsWindow(hwnd uintptr) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.windows[hwnd]
	return ok
}

func (m *MockWindowManager) IsInTopZOrder(hwnd uintptr, depth int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexLocked(hwnd)
	return i >= 0 && i < depth
}

func (m *MockWindowManager) SetTopmost(hwnd uintptr, on bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.setTopmostCalls = append(m.setTopmostCalls, TopmostCall{Hwnd: hwnd, On: on})
	if !m.setTopmostResult {
		return false
	}

	if _, ok := m.windows[hwnd]; !ok {
		return false
	}

	m.topmost[hwnd] = on
	if on {
		m.moveToTopLocked(hwnd)
	}

	return true
}

func (m *MockWindowManager) RaiseTopmost(hwnd uintptr) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.raiseCalls = append(m.raiseCalls, hwnd)
	if !m.setTopmostResult {
		return false
	}

	if _, ok := m.windows[hwnd]; !ok {
		return false
	}

	m.moveToTopLocked(hwnd)
	return true
}

func (m *MockWindowManager) SetForeground(hwnd uintptr) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.setForegroundCalls = append(m.setForegroundCalls, hwnd)
	return m.setForegroundResult
}

func (m *MockWindowManager) indexLocked(hwnd uintptr) int {
	for i, h := range m.zorder {
		if h == hwnd {
			return i
		}
	}

	return -1
}

func (m *MockWindowManager) moveToTopLocked(hwnd uintptr) {
	i := m.indexLocked(hwnd)
	if i < 0 {
		return
	}

	copy(m.zorder[1:i+1], m.zorder[:i])
	m.zorder[0] = hwnd
}

// Helper methods for fluent configuration

// WithWindow adds a window below every existing window
func (m *MockWindowManager) WithWindow(hwnd uintptr, title string) *MockWindowManager {
	m.AddWindow(hwnd, title)
	return m
}

func (m *MockWindowManager) WithSetTopmostResult(result bool) *MockWindowManager {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.setTopmostResult = result
	return m
}

func (m *MockWindowManager) WithSetForegroundResult(result bool) *MockWindowManager {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.setForegroundResult = result
	return m
}

// AddWindow adds a window at the bottom of the z-order, simulating a window appearing
func (m *MockWindowManager) AddWindow(hwnd uintptr, title string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.windows[hwnd]; !ok {
		m.zorder = append(m.zorder, hwnd)
	}

	m.windows[hwnd] = interfaces.WindowInfo{Hwnd: hwnd, Title: title, Pid: uint32(hwnd)}
}

// CloseWindow removes a window, simulating its owner closing it
func (m *MockWindowManager) CloseWindow(hwnd uintptr) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i := m.indexLocked(hwnd); i >= 0 {
		m.zorder = append(m.zorder[:i], m.zorder[i+1:]...)
	}

	delete(m.windows, hwnd)
	delete(m.topmost, hwnd)
}

// BringToTop simulates another process raising hwnd above everything else
func (m *MockWindowManager) BringToTop(hwnd uintptr) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.moveToTopLocked(hwnd)
}

// ZIndex returns the position of hwnd in the z-order, or -1
func (m *MockWindowManager) ZIndex(hwnd uintptr) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.indexLocked(hwnd)
}

// IsTopmost reports whether hwnd currently carries the topmost style
func (m *MockWindowManager) IsTopmost(hwnd uintptr) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.topmost[hwnd]
}

func (m *MockWindowManager) SetTopmostCalls() []TopmostCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]TopmostCall(nil), m.setTopmostCalls...)
}

func (m *MockWindowManager) RaiseTopmostCalls() []uintptr {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]uintptr(nil), m.raiseCalls...)
}

func (m *MockWindowManager) SetForegroundCalls() []uintptr {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]uintptr(nil), m.setForegroundCalls...)
}

// MockKeyboardInjector records every synthesized combination
type MockKeyboardInjector struct {
	mu         sync.Mutex
	sent       []keys.Combo
	sendResult bool
}

func NewMockKeyboardInjector() *MockKeyboardInjector {
	return &MockKeyboardInjector{
		sendResult: true, // Default to success
	}
}

func (m *MockKeyboardInjector) SendCombo(combo keys.Combo) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sent = append(m.sent, combo)
	return m.sendResult
}

func (m *MockKeyboardInjector) WithSendResult(result bool) *MockKeyboardInjector {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sendResult = result
	return m
}

func (m *MockKeyboardInjector) Sent() []keys.Combo {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]keys.Combo(nil), m.sent...)
}

// MockLauncher records launched programs
type MockLauncher struct {
	mu       sync.Mutex
	launches []LaunchCall
	err      error
}

type LaunchCall struct {
	File string
	Args string
	Dir  string
}

func NewMockLauncher() *MockLauncher {
	return &MockLauncher{}
}

func (m *MockLauncher) Launch(file, args, dir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.launches = append(m.launches, LaunchCall{File: file, Args: args, Dir: dir})
	return m.err
}

func (m *MockLauncher) WithError(err error) *MockLauncher {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.err = err
	return m
}

func (m *MockLauncher) Launches() []LaunchCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]LaunchCall(nil), m.launches...)
}

var (
	_ interfaces.WindowManager    = (*MockWindowManager)(nil)
	_ interfaces.KeyboardInjector = (*MockKeyboardInjector)(nil)
	_ interfaces.Launcher         = (*MockLauncher)(nil)
)
