// Package actions runs the host behaviour configured for each shortcut.
package actions

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/Norgate-AV/hotpin/internal/config"
	"github.com/Norgate-AV/hotpin/internal/interfaces"
	"github.com/Norgate-AV/hotpin/internal/keys"
	"github.com/Norgate-AV/hotpin/internal/logger"
)

var (
	ErrUnknownAction = errors.New("no action configured")
	ErrSendFailed    = errors.New("key combination could not be sent")
)

// WindowController is the subset of topmost.Manager actions need
type WindowController interface {
	StartMonitoring(title string) error
	StopMonitoring(title string) bool
	SetTopmost(title string, on bool) error
	BringToForeground(title string) error
	Watched() []string
}

// Executor maps action names to behaviour. The table can be swapped while
// shortcuts are firing.
type Executor struct {
	mu       sync.RWMutex
	actions  map[string]config.Action
	windows  WindowController
	injector interfaces.KeyboardInjector
	launcher interfaces.Launcher
	log      logger.LoggerInterface
}

func NewExecutor(
	windows WindowController,
	injector interfaces.KeyboardInjector,
	launcher interfaces.Launcher,
	log logger.LoggerInterface,
) *Executor {
	return &Executor{
		actions:  make(map[string]config.Action),
		windows:  windows,
		injector: injector,
		launcher: launcher,
		log:      logger.WithComponent(log, "actions"),
	}
}

// SetActions replaces the action table
func (e *Executor) SetActions(actions map[string]config.Action) {
	table := make(map[string]config.Action, len(actions))
	for name, a := range actions {
		table[name] = a
	}

	e.mu.Lock()
	e.actions = table
	e.mu.Unlock()
}

// Execute runs the named action and logs the outcome. It is the callback
// handed to the hook engine.
func (e *Executor) Execute(name string) {
	if err := e.Run(name); err != nil {
		if errors.Is(err, ErrUnknownAction) {
			e.log.Warn("Shortcut fired but has no action", slog.String("action", name))
			return
		}

		e.log.Error("Action failed", slog.String("action", name), slog.Any("error", err))
		return
	}

	e.log.Debug("Action completed", slog.String("action", name))
}

// Run executes the named action and returns its error
func (e *Executor) Run(name string) error {
	e.mu.RLock()
	a, ok := e.actions[name]
	e.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}

	switch a.Type {
	case config.ActionRun:
		return e.launcher.Launch(a.Target, a.Args, a.Dir)

	case config.ActionSend:
		combo, ok := keys.Parse(a.Target)
		if !ok || combo.IsMouse() {
			return fmt.Errorf("%w: %q", ErrSendFailed, a.Target)
		}

		if !e.injector.SendCombo(combo) {
			return fmt.Errorf("%w: %s", ErrSendFailed, combo)
		}

		return nil

	case config.ActionPin:
		return e.windows.StartMonitoring(a.Target)

	case config.ActionUnpin:
		e.windows.StopMonitoring(a.Target)
		return nil

	case config.ActionTogglePin:
		if slices.Contains(e.windows.Watched(), a.Target) {
			e.windows.StopMonitoring(a.Target)
			e.log.Info("Unpinned window", slog.String("title", a.Target))
			return nil
		}

		if err := e.windows.StartMonitoring(a.Target); err != nil {
			return err
		}

		e.log.Info("Pinned window", slog.String("title", a.Target))
		return nil

	case config.ActionTopmost:
		return e.windows.SetTopmost(a.Target, true)

	case config.ActionNoTopmost:
		return e.windows.SetTopmost(a.Target, false)

	case config.ActionFocus:
		return e.windows.BringToForeground(a.Target)

	case config.ActionLog:
		e.log.Info("Shortcut fired", slog.String("action", name))
		return nil

	default:
		return fmt.Errorf("action %q: unknown type %q", name, a.Type)
	}
}
