// Package hook intercepts global keyboard and mouse input, matches it against
// registered combinations and hands matches to host code without ever
// blocking the OS input pipeline.
package hook

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Norgate-AV/hotpin/internal/logger"
	"github.com/Norgate-AV/hotpin/internal/timeouts"
)

var (
	ErrNilBindings = errors.New("bindings map is nil")
	ErrNilCallback = errors.New("action callback is nil")
)

// Status describes the active session
type Status struct {
	Active         bool              `json:"active"`
	SessionID      string            `json:"sessionId,omitempty"`
	Strategy       Strategy          `json:"strategy"`
	KeyboardHook   bool              `json:"keyboardHook"`
	MouseHook      bool              `json:"mouseHook"`
	KeyBindings    int               `json:"keyBindings"`
	ButtonBindings int               `json:"buttonBindings"`
	Fallback       int               `json:"fallbackRegistered"`
	Dropped        uint64            `json:"droppedDispatches"`
	Invalid        []string          `json:"invalid,omitempty"`
	Shortcuts      map[string]string `json:"shortcuts,omitempty"`
}

// Engine owns at most one hook session. Start and Stop are serialised.
type Engine struct {
	mu        sync.Mutex
	platform  Platform
	log       logger.LoggerInterface
	queueSize int
	session   *Session
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithQueueSize overrides the dispatcher queue capacity
func WithQueueSize(n int) EngineOption {
	return func(e *Engine) { e.queueSize = n }
}

// NewEngine creates an idle engine
func NewEngine(platform Platform, log logger.LoggerInterface, opts ...EngineOption) *Engine {
	e := &Engine{
		platform:  platform,
		log:       log,
		queueSize: timeouts.DispatchQueueSize,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Start replaces any running session with one built from bindings, a map of
// action name to combination string. onAction is called on a single consumer
// goroutine and must not call Start or Stop itself.
func (e *Engine) Start(bindings map[string]string, onAction func(string)) error {
	if bindings == nil {
		return fmt.Errorf("cannot start shortcuts: %w", ErrNilBindings)
	}

	if onAction == nil {
		return fmt.Errorf("cannot start shortcuts: %w", ErrNilCallback)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopLocked()

	registry, invalid := BuildRegistry(bindings, e.log)
	if registry.Empty() {
		e.log.Warn("No valid shortcuts configured, input hooks not installed",
			slog.Int("configured", len(bindings)),
		)

		return nil
	}

	dispatcher := NewDispatcher(e.queueSize, onAction, e.log)
	s := newSession(registry, dispatcher, invalid)

	pump, err := e.platform.StartHooks(s, true, registry.ButtonCount() > 0)
	if err != nil {
		e.log.Warn("Input hook thread failed to start", slog.Any("error", err))
		pump = nil
	}

	keyboardOK := pump != nil && pump.KeyboardInstalled()
	mouseOK := pump != nil && pump.MouseInstalled()

	if pump != nil && !keyboardOK && !mouseOK {
		pump.Stop()
		pump = nil
	}

	s.pump = pump

	if registry.ButtonCount() > 0 && !mouseOK {
		e.log.Warn("Mouse hook unavailable, side-button shortcuts are inactive",
			slog.Int("buttons", registry.ButtonCount()),
		)
	}

	switch {
	case keyboardOK:
		s.strategy = StrategyHook
	case registry.KeyCount() > 0:
		e.log.Warn("Keyboard hook unavailable, falling back to registered hotkeys")

		post := func(action string) { dispatcher.Post(SourceHotkey, action) }

		loop, err := e.platform.StartFallback(registry.KeyBindings(), post)
		if err != nil {
			e.log.Error("Hotkey fallback failed, keyboard shortcuts are inactive", slog.Any("error", err))
		} else {
			s.fallback = loop
			s.strategy = StrategyFallback
		}
	}

	e.session = s

	e.log.Info("Shortcuts active",
		slog.String("session", s.ID()),
		slog.String("strategy", string(s.strategy)),
		slog.Int("keys", registry.KeyCount()),
		slog.Int("buttons", registry.ButtonCount()),
	)

	return nil
}

// Stop releases the active session. Calling it with no session is a no-op.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopLocked()
}

func (e *Engine) stopLocked() {
	if e.session == nil {
		return
	}

	s := e.session
	e.session = nil

	s.release()

	e.log.Debug("Shortcut session stopped",
		slog.String("session", s.ID()),
		slog.Uint64("dropped", s.dispatcher.Dropped()),
	)
}

// Status reports on the active session
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.session
	if s == nil {
		return Status{Strategy: StrategyNone}
	}

	st := Status{
		Active:         true,
		SessionID:      s.ID(),
		Strategy:       s.strategy,
		KeyBindings:    s.registry.KeyCount(),
		ButtonBindings: s.registry.ButtonCount(),
		Dropped:        s.dispatcher.Dropped(),
		Invalid:        s.invalid,
		Shortcuts:      s.registry.Combos(),
	}

	if s.pump != nil {
		st.KeyboardHook = s.pump.KeyboardInstalled()
		st.MouseHook = s.pump.MouseInstalled()
	}

	if s.fallback != nil {
		st.Fallback = s.fallback.Registered()
	}

	return st
}
