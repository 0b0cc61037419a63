package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Norgate-AV/hotpin/internal/app"
	"github.com/Norgate-AV/hotpin/internal/config"
	"github.com/Norgate-AV/hotpin/internal/control"
	"github.com/Norgate-AV/hotpin/internal/hook"
	"github.com/Norgate-AV/hotpin/internal/logger"
	"github.com/Norgate-AV/hotpin/internal/timeouts"
	"github.com/Norgate-AV/hotpin/internal/version"
	"github.com/Norgate-AV/hotpin/internal/windows"
)

// ExecutionContext holds state needed by the signal handlers to shut the
// daemon down.
type ExecutionContext struct {
	log      logger.LoggerInterface
	cancel   context.CancelCauseFunc
	stopped  chan struct{}
	exitFunc func(int) // Injectable for testing; defaults to os.Exit
}

// RootCmd runs the hotpin daemon. Its subcommands talk to a running daemon.
var RootCmd = &cobra.Command{
	Use:   "hotpin",
	Short: "hotpin - Global shortcuts and always-on-top windows",
	Long: `hotpin runs in the background, turning global keyboard shortcuts and mouse
side buttons into actions and keeping chosen windows on top of the desktop.

Run without a subcommand to start the daemon. The other commands control a
running daemon, or act directly on the desktop when none is running.`,
	Version:      version.GetVersion(),
	Args:         cobra.NoArgs,
	RunE:         Execute,
	SilenceUsage: true, // Don't show usage on runtime errors
}

func init() {
	// Set custom version template to show full version info
	RootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	RootCmd.PersistentFlags().BoolP("verbose", "V", false, "enable verbose output")
	RootCmd.PersistentFlags().BoolP("logs", "l", false, "print the current log file to stdout and exit")
	RootCmd.PersistentFlags().StringP("config", "c", "", "config file (default %APPDATA%\\hotpin\\config.yaml, or $"+config.EnvConfigPath+")")
	RootCmd.Flags().Bool("elevate", false, "relaunch as administrator so shortcuts also reach elevated windows")
}

// handleLogsFlag processes the --logs flag and exits if needed
func handleLogsFlag(cfg *Config, exitFunc func(int)) error {
	if !cfg.ShowLogs {
		return nil
	}

	if err := logger.PrintLogFile(nil, logger.LoggerOptions{}); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logPath := logger.GetLogPath(logger.LoggerOptions{})
			fmt.Fprintf(os.Stderr, "Log file does not exist: %s\n", logPath)
			exitFunc(1)
		}

		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		exitFunc(1)
	}

	exitFunc(0)
	return nil // Won't actually reach here due to exitFunc
}

// initializeLogger creates a logger from the flags and the config file's log section
func initializeLogger(cfg *Config, logCfg config.LogConfig) (logger.LoggerInterface, error) {
	log, err := logger.NewLogger(logger.LoggerOptions{
		Verbose:    cfg.Verbose || logCfg.Verbose,
		MaxSize:    logCfg.MaxSizeMB,
		MaxBackups: logCfg.MaxBackups,
		MaxAge:     logCfg.MaxAgeDays,
		Compress:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return log, nil
}

// checkElevation warns when running without administrator privileges, or
// relaunches elevated when --elevate was given
func checkElevation(cfg *Config, log logger.LoggerInterface) error {
	return ensureElevatedWithDeps(log, cfg.Elevate, windows.IsElevated, windows.RelaunchAsAdmin, os.Exit)
}

// ensureElevatedWithDeps is the testable version with injected dependencies
func ensureElevatedWithDeps(
	log logger.LoggerInterface,
	elevate bool,
	isElevated func() bool,
	relaunchAsAdmin func() error,
	exitFunc func(int),
) error {
	log.Debug("Checking elevation status")
	if isElevated() {
		log.Debug("Running with administrator privileges")
		return nil
	}

	if !elevate {
		log.Warn("Not running as administrator: shortcuts are ignored while an elevated window has focus and elevated windows cannot be pinned (use --elevate)")
		return nil
	}

	log.Info("Relaunching as administrator")

	if err := relaunchAsAdmin(); err != nil {
		log.Error("RelaunchAsAdmin failed", slog.Any("error", err))
		return fmt.Errorf("error relaunching as admin: %w", err)
	}

	// Exit this instance, the elevated one will continue
	log.Debug("Relaunched successfully, exiting non-elevated instance")
	log.Close()
	exitFunc(0)

	return nil
}

// setupSignalHandlers cancels the daemon on console close, logoff, shutdown,
// Ctrl+C and SIGTERM. A second interrupt exits immediately.
func setupSignalHandlers(ctx *ExecutionContext) {
	// The process is terminated as soon as this handler returns, so it waits
	// for the daemon to release its hooks first.
	err := windows.SetConsoleCtrlHandler(func(ctrlType uint32) bool {
		name := windows.GetCtrlTypeName(ctrlType)
		ctx.log.Debug("Received console control event",
			slog.String("type", name),
			slog.Uint64("code", uint64(ctrlType)),
		)

		ctx.cancel(fmt.Errorf("console event %s", name))

		select {
		case <-ctx.stopped:
			ctx.log.Debug("Cleanup completed")
		case <-time.After(timeouts.ShutdownTimeout):
			ctx.log.Warn("Timed out waiting for cleanup")
		}

		return true
	})
	if err != nil && !errors.Is(err, windows.ErrUnsupported) {
		ctx.log.Debug("Console control handler not installed", slog.Any("error", err))
	}

	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		ctx.log.Debug("Received signal", slog.Any("signal", sig))
		ctx.log.Info("Interrupt signal received, shutting down")
		ctx.cancel(fmt.Errorf("signal %v", sig))

		select {
		case <-ctx.stopped:
		case <-sigChan:
			ctx.log.Warn("Second interrupt, exiting without cleanup")
			ctx.exitFunc(130)
		}
	}()
}

// newDaemon wires the daemon to the real desktop
func newDaemon(path string, log logger.LoggerInterface) *app.Daemon {
	api := windows.NewWindowsAPI(log)

	return app.New(path, app.Deps{
		Platform: hook.NewPlatform(log),
		Windows:  api,
		Injector: api,
		Launcher: api,
		Elevated: windows.IsElevated(),
		Log:      log,
	})
}

// Execute runs the daemon until it is interrupted
func Execute(cmd *cobra.Command, args []string) error {
	cfg := NewConfigFromFlags(cmd)

	if err := handleLogsFlag(cfg, os.Exit); err != nil {
		return err
	}

	path := cfg.ResolvedConfigPath()

	// Only the log section matters here; config errors surface when the daemon loads it
	fileCfg, _ := config.Load(path)

	log, err := initializeLogger(cfg, fileCfg.Log)
	if err != nil {
		return err
	}

	defer log.Close()

	log.Debug("Starting hotpin",
		slog.String("version", version.GetFullVersion()),
		slog.String("config", path),
	)
	log.Debug("Flags set",
		slog.Bool("verbose", cfg.Verbose),
		slog.Bool("elevate", cfg.Elevate),
	)

	// Recover from panics and log them
	defer func() {
		if r := recover(); r != nil {
			log.Error("PANIC RECOVERED",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)

			fmt.Fprintf(os.Stderr, "\n*** PANIC: %v ***\n", r)
			fmt.Fprintf(os.Stderr, "Check log file for details\n")
		}
	}()

	if err := checkElevation(cfg, log); err != nil {
		return err
	}

	lock, err := windows.AcquireInstanceLock(windows.InstanceMutexName())
	if errors.Is(err, windows.ErrAlreadyRunning) {
		return fmt.Errorf("%w, use 'hotpin status' to inspect it", err)
	}

	if err != nil {
		log.Warn("Single-instance lock unavailable", slog.Any("error", err))
	} else {
		defer func() { _ = lock.Release() }()
	}

	listener, err := control.Listen(control.DefaultPipeName())
	if err != nil {
		log.Warn("Control pipe unavailable, other hotpin commands will act locally", slog.Any("error", err))
		listener = nil
	}

	runCtx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)

	ectx := &ExecutionContext{
		log:      log,
		cancel:   cancel,
		stopped:  make(chan struct{}),
		exitFunc: os.Exit,
	}

	setupSignalHandlers(ectx)
	defer close(ectx.stopped)

	log.Info("hotpin is running, press Ctrl+C to exit")

	return newDaemon(path, log).Run(runCtx, listener)
}
