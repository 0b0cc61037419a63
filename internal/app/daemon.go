// Package app runs the hotpin daemon: it owns the shortcut engine, the
// topmost manager and the action executor, and keeps them in step with the
// config file.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/Norgate-AV/hotpin/internal/actions"
	"github.com/Norgate-AV/hotpin/internal/config"
	"github.com/Norgate-AV/hotpin/internal/control"
	"github.com/Norgate-AV/hotpin/internal/hook"
	"github.com/Norgate-AV/hotpin/internal/interfaces"
	"github.com/Norgate-AV/hotpin/internal/logger"
	"github.com/Norgate-AV/hotpin/internal/timeouts"
	"github.com/Norgate-AV/hotpin/internal/topmost"
	"github.com/Norgate-AV/hotpin/internal/version"
)

var ErrStopped = errors.New("daemon stopped")

// Deps are the OS-facing pieces a Daemon drives
type Deps struct {
	Platform hook.Platform
	Windows  interfaces.WindowManager
	Injector interfaces.KeyboardInjector
	Launcher interfaces.Launcher
	Elevated bool
	Log      logger.LoggerInterface

	TopmostOptions []topmost.Option
	ReloadDebounce time.Duration
}

type Daemon struct {
	cfgPath  string
	elevated bool
	debounce time.Duration
	log      logger.LoggerInterface

	engine   *hook.Engine
	windows  *topmost.Manager
	executor *actions.Executor

	// mu serialises config application
	mu      sync.Mutex
	cfg     config.Config
	stopped bool
}

func New(cfgPath string, deps Deps) *Daemon {
	log := deps.Log
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	debounce := deps.ReloadDebounce
	if debounce <= 0 {
		debounce = timeouts.ConfigReloadDebounce
	}

	windows := topmost.NewManager(deps.Windows, log, deps.TopmostOptions...)

	return &Daemon{
		cfgPath:  cfgPath,
		elevated: deps.Elevated,
		debounce: debounce,
		log:      logger.WithComponent(log, "daemon"),
		engine:   hook.NewEngine(deps.Platform, logger.WithComponent(log, "hook")),
		windows:  windows,
		executor: actions.NewExecutor(windows, deps.Injector, deps.Launcher, log),
	}
}

// Start loads the config file, writing the defaults first if it is missing,
// and applies it.
func (d *Daemon) Start() error {
	cfg, err := config.EnsureFile(d.cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return ErrStopped
	}

	if err := d.applyLocked(cfg); err != nil {
		return err
	}

	d.log.Info("hotpin started",
		slog.String("config", d.cfgPath),
		slog.Int("shortcuts", len(cfg.Shortcuts)),
		slog.Int("pins", len(cfg.Pin)),
	)

	return nil
}

// Reload re-reads the config file. An unreadable or invalid file leaves the
// running configuration untouched.
func (d *Daemon) Reload() error {
	cfg, err := config.Load(d.cfgPath)
	if err != nil {
		d.log.Error("Config reload failed, keeping previous configuration", slog.Any("error", err))
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return ErrStopped
	}

	if err := d.applyLocked(cfg); err != nil {
		return err
	}

	d.log.Info("Configuration reloaded",
		slog.Int("shortcuts", len(cfg.Shortcuts)),
		slog.Int("pins", len(cfg.Pin)),
	)

	return nil
}

func (d *Daemon) applyLocked(cfg config.Config) error {
	d.executor.SetActions(cfg.Actions)

	if err := d.engine.Start(cfg.Shortcuts, d.executor.Execute); err != nil {
		return fmt.Errorf("start shortcuts: %w", err)
	}

	d.windows.Reconcile(cfg.Pin)
	d.cfg = cfg

	return nil
}

// Stop releases hooks and monitors. Later Start and Reload calls fail.
func (d *Daemon) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.stopped = true
	d.engine.Stop()
	d.windows.Close()

	d.log.Debug("Daemon stopped")
}

// Config returns the configuration currently applied
func (d *Daemon) Config() config.Config {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.cfg
}

func (d *Daemon) Status() control.DaemonStatus {
	return control.DaemonStatus{
		Version:    version.GetVersion(),
		Pid:        os.Getpid(),
		ConfigPath: d.cfgPath,
		Elevated:   d.elevated,
		Hooks:      d.engine.Status(),
		Watches:    d.windows.Watches(),
	}
}

// Run starts the daemon, serves control requests on l when it is not nil and
// reloads on config changes until ctx is done.
func (d *Daemon) Run(ctx context.Context, l net.Listener) error {
	if err := d.Start(); err != nil {
		if l != nil {
			_ = l.Close()
		}

		return err
	}
	defer d.Stop()

	watcher, err := WatchConfig(d.cfgPath, d.debounce, d.reloadFromWatcher, d.log)
	if err != nil {
		d.log.Warn("Config hot reload unavailable", slog.Any("error", err))
	} else {
		defer watcher.Close()
	}

	if l != nil {
		srv := control.NewServer(d, d.log)
		if err := srv.Serve(l); err != nil {
			_ = l.Close()
			return fmt.Errorf("control server: %w", err)
		}
		defer srv.Stop()
	}

	<-ctx.Done()
	d.log.Info("Shutting down", slog.Any("reason", context.Cause(ctx)))

	return nil
}

func (d *Daemon) reloadFromWatcher() {
	if err := d.Reload(); err != nil && !errors.Is(err, ErrStopped) {
		d.log.Warn("Fix the config file to apply changes", slog.String("path", d.cfgPath))
	}
}
