package testutil

import (
	"sync"

	"github.com/Norgate-AV/hotpin/internal/hook"
	"github.com/Norgate-AV/hotpin/internal/keys"
)

// FakePlatform implements hook.Platform without touching the OS. It counts
// live resources so tests can assert nothing leaks across Start/Stop.
type FakePlatform struct {
	mu sync.Mutex

	// KeyboardFails makes the keyboard hook fail to install
	KeyboardFails bool
	// MouseFails makes the mouse hook fail to install
	MouseFails bool
	// HooksErr is returned by StartHooks
	HooksErr error
	// FallbackErr is returned by StartFallback
	FallbackErr error

	pumps     []*fakePump
	fallbacks []*fakeFallback

	hookStarts     int
	fallbackStarts int
}

func NewFakePlatform() *FakePlatform {
	return &FakePlatform{}
}

type fakePump struct {
	platform *FakePlatform
	handler  hook.Handler
	keyboard bool
	mouse    bool
	stopped  bool
}

func (p *fakePump) KeyboardInstalled() bool { return p.keyboard }
func (p *fakePump) MouseInstalled() bool    { return p.mouse }

func (p *fakePump) Stop() {
	p.platform.mu.Lock()
	defer p.platform.mu.Unlock()

	p.stopped = true
}

type fakeFallback struct {
	platform *FakePlatform
	bindings []hook.KeyBinding
	post     func(string)
	stopped  bool
}

func (f *fakeFallback) Registered() int { return len(f.bindings) }

func (f *fakeFallback) Stop() {
	f.platform.mu.Lock()
	defer f.platform.mu.Unlock()

	f.stopped = true
}

func (p *FakePlatform) StartHooks(h hook.Handler, keyboard, mouse bool) (hook.HookPump, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.hookStarts++
	if p.HooksErr != nil {
		return nil, p.HooksErr
	}

	pump := &fakePump{
		platform: p,
		handler:  h,
		keyboard: keyboard && !p.KeyboardFails,
		mouse:    mouse && !p.MouseFails,
	}

	p.pumps = append(p.pumps, pump)
	return pump, nil
}

func (p *FakePlatform) StartFallback(bindings []hook.KeyBinding, post func(string)) (hook.FallbackLoop, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.fallbackStarts++
	if p.FallbackErr != nil {
		return nil, p.FallbackErr
	}

	f := &fakeFallback{platform: p, bindings: bindings, post: post}
	p.fallbacks = append(p.fallbacks, f)

	return f, nil
}

// livePump returns the running pump, if any
func (p *FakePlatform) livePump() *fakePump {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, pump := range p.pumps {
		if !pump.stopped {
			return pump
		}
	}

	return nil
}

// Key delivers a physical keyboard transition to the live pump
func (p *FakePlatform) Key(vk keys.Code, down bool) hook.Verdict {
	return p.key(vk, down, false)
}

// InjectedKey delivers a synthesized keyboard transition to the live pump
func (p *FakePlatform) InjectedKey(vk keys.Code, down bool) hook.Verdict {
	return p.key(vk, down, true)
}

func (p *FakePlatform) key(vk keys.Code, down, injected bool) hook.Verdict {
	pump := p.livePump()
	if pump == nil || !pump.keyboard {
		return hook.Pass
	}

	return pump.handler.HandleKey(hook.KeyEvent{VK: vk, Down: down, Injected: injected})
}

// Press delivers a down then up transition and returns the down verdict
func (p *FakePlatform) Press(vk keys.Code) hook.Verdict {
	v := p.Key(vk, true)
	p.Key(vk, false)

	return v
}

// Mouse delivers a side-button transition to the live pump
func (p *FakePlatform) Mouse(button keys.Button, down bool) hook.Verdict {
	pump := p.livePump()
	if pump == nil || !pump.mouse {
		return hook.Pass
	}

	return pump.handler.HandleMouse(hook.MouseEvent{Button: button, Down: down})
}

// FireHotkey simulates WM_HOTKEY for the action on the live fallback loop.
// It reports whether a live loop had the action registered.
func (p *FakePlatform) FireHotkey(action string) bool {
	p.mu.Lock()
	var live *fakeFallback
	for _, f := range p.fallbacks {
		if !f.stopped {
			live = f
			break
		}
	}
	p.mu.Unlock()

	if live == nil {
		return false
	}

	for _, b := range live.bindings {
		if b.Action == action {
			live.post(action)
			return true
		}
	}

	return false
}

// LiveHooks counts installed hooks whose pump has not been stopped
func (p *FakePlatform) LiveHooks() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, pump := range p.pumps {
		if pump.stopped {
			continue
		}

		if pump.keyboard {
			n++
		}

		if pump.mouse {
			n++
		}
	}

	return n
}

// LivePumps counts pump threads that have not been stopped
func (p *FakePlatform) LivePumps() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, pump := range p.pumps {
		if !pump.stopped {
			n++
		}
	}

	return n
}

// LiveFallbacks counts fallback loops that have not been stopped
func (p *FakePlatform) LiveFallbacks() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, f := range p.fallbacks {
		if !f.stopped {
			n++
		}
	}

	return n
}

func (p *FakePlatform) HookStarts() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.hookStarts
}

func (p *FakePlatform) FallbackStarts() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.fallbackStarts
}

var _ hook.Platform = (*FakePlatform)(nil)
