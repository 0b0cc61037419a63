package hook

import (
	"github.com/google/uuid"
)

// Strategy is how keyboard shortcuts are being detected for a session.
type Strategy string

const (
	StrategyNone     Strategy = "none"
	StrategyHook     Strategy = "hook"
	StrategyFallback Strategy = "fallback"
)

// Handler receives low-level events on the hook pump thread.
type Handler interface {
	HandleKey(ev KeyEvent) Verdict
	HandleMouse(ev MouseEvent) Verdict
}

// HookPump is a running OS thread that owns the low-level hooks.
type HookPump interface {
	KeyboardInstalled() bool
	MouseInstalled() bool
	// Stop uninstalls the hooks and returns once the pump thread has exited.
	Stop()
}

// FallbackLoop is a running RegisterHotKey message loop.
type FallbackLoop interface {
	Registered() int
	Stop()
}

// Platform installs OS input resources. A pump with neither hook installed
// may be returned together with a nil error; the engine stops it itself.
type Platform interface {
	StartHooks(h Handler, keyboard, mouse bool) (HookPump, error)
	StartFallback(bindings []KeyBinding, post func(action string)) (FallbackLoop, error)
}

// Session owns every resource of one Start call.
type Session struct {
	id         uuid.UUID
	registry   *Registry
	tracker    *Tracker
	dispatcher *Dispatcher
	keyboard   *keyboardInterceptor
	mouse      *mouseInterceptor
	strategy   Strategy
	pump       HookPump
	fallback   FallbackLoop
	invalid    []string
}

func newSession(reg *Registry, d *Dispatcher, invalid []string) *Session {
	t := &Tracker{}

	return &Session{
		id:         uuid.New(),
		registry:   reg,
		tracker:    t,
		dispatcher: d,
		keyboard:   &keyboardInterceptor{tracker: t, registry: reg, dispatcher: d},
		mouse:      &mouseInterceptor{tracker: t, registry: reg, dispatcher: d},
		strategy:   StrategyNone,
		invalid:    invalid,
	}
}

func (s *Session) HandleKey(ev KeyEvent) Verdict     { return s.keyboard.handle(ev) }
func (s *Session) HandleMouse(ev MouseEvent) Verdict { return s.mouse.handle(ev) }

// ID returns the session identifier used in logs and status output
func (s *Session) ID() string { return s.id.String() }

// release tears resources down in dependency order: no callback can run once
// the pump has stopped, so the dispatcher can then be closed safely.
func (s *Session) release() {
	if s.pump != nil {
		s.pump.Stop()
		s.pump = nil
	}

	if s.fallback != nil {
		s.fallback.Stop()
		s.fallback = nil
	}

	s.dispatcher.Close()
	s.tracker.Reset()
}
