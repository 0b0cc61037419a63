package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Norgate-AV/hotpin/internal/control"
	"github.com/Norgate-AV/hotpin/internal/interfaces"
	"github.com/Norgate-AV/hotpin/internal/logger"
	"github.com/Norgate-AV/hotpin/internal/topmost"
	"github.com/Norgate-AV/hotpin/internal/version"
	"github.com/Norgate-AV/hotpin/internal/windows"
)

// daemonClient is the part of control.Client the subcommands use
type daemonClient interface {
	Status() (*control.DaemonStatus, error)
	Windows() ([]interfaces.WindowInfo, error)
	Pin(title string) error
	Unpin(title string) error
	Topmost(title string, on bool) error
	Focus(title string) error
	Reload() error
}

// localWindows acts on the desktop directly when no daemon answers
type localWindows interface {
	ListVisibleWindows() []interfaces.WindowInfo
	StartMonitoring(title string) error
	StopMonitoring(title string) bool
	SetTopmost(title string, on bool) error
	BringToForeground(title string) error
}

// commandEnv carries the output and backends of one subcommand invocation
type commandEnv struct {
	out    io.Writer
	client daemonClient
	local  func() (localWindows, func(), error)
}

func newCommandEnv(cmd *cobra.Command) *commandEnv {
	cfg := NewConfigFromFlags(cmd)

	return &commandEnv{
		out:    cmd.OutOrStdout(),
		client: control.NewClient(control.DefaultPipeName()),
		local: func() (localWindows, func(), error) {
			log, err := logger.NewLogger(logger.LoggerOptions{
				Verbose:  cfg.Verbose,
				Console:  cmd.ErrOrStderr(),
				Compress: true,
			})
			if err != nil {
				return nil, nil, fmt.Errorf("failed to create logger: %w", err)
			}

			m := topmost.NewManager(windows.NewWindowsAPI(log), log)
			return m, func() { m.Close(); log.Close() }, nil
		},
	}
}

// withLocal runs fn against an in-process window manager
func (e *commandEnv) withLocal(fn func(localWindows) error) error {
	w, cleanup, err := e.local()
	if err != nil {
		return err
	}
	defer cleanup()

	return fn(w)
}

func init() {
	RootCmd.AddCommand(
		windowsCmd,
		pinCmd,
		unpinCmd,
		topmostCmd,
		focusCmd,
		statusCmd,
		reloadCmd,
		versionCmd,
	)

	topmostCmd.Flags().Bool("off", false, "remove the always-on-top flag instead")
}

var windowsCmd = &cobra.Command{
	Use:   "windows",
	Short: "List visible windows, topmost first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runWindows(newCommandEnv(cmd))
	},
}

var pinCmd = &cobra.Command{
	Use:   "pin <title>",
	Short: "Keep the window whose title contains <title> on top",
	Long: `Keep the window whose title contains <title> on top, restoring it whenever
another window covers it. Without a running daemon the window is pinned until
this command is interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runPin(ctx, newCommandEnv(cmd), args[0])
	},
}

var unpinCmd = &cobra.Command{
	Use:   "unpin [title]",
	Short: "Stop keeping a window on top (all windows when no title is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := ""
		if len(args) == 1 {
			title = args[0]
		}

		return runUnpin(newCommandEnv(cmd), title)
	},
}

var topmostCmd = &cobra.Command{
	Use:   "topmost <title>",
	Short: "Set the always-on-top flag once, without monitoring",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		off, _ := cmd.Flags().GetBool("off")
		return runTopmost(newCommandEnv(cmd), args[0], !off)
	},
}

var focusCmd = &cobra.Command{
	Use:   "focus <title>",
	Short: "Bring the window whose title contains <title> to the foreground",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFocus(newCommandEnv(cmd), args[0])
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the running daemon's shortcuts and pinned windows",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runStatus(newCommandEnv(cmd))
	},
}

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Make the running daemon re-read its config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runReload(newCommandEnv(cmd))
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version, commit and build date",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "hotpin "+version.GetFullVersion())
	},
}

func runWindows(env *commandEnv) error {
	list, err := env.client.Windows()
	pinned := make(map[uintptr]bool)

	switch {
	case errors.Is(err, control.ErrDaemonUnavailable):
		err = env.withLocal(func(w localWindows) error {
			list = w.ListVisibleWindows()
			return nil
		})
		if err != nil {
			return err
		}

	case err != nil:
		return err

	default:
		if st, err := env.client.Status(); err == nil && st != nil {
			for _, w := range st.Watches {
				if w.Hwnd != 0 {
					pinned[w.Hwnd] = true
				}
			}
		}
	}

	printWindows(env.out, list, pinned)
	return nil
}

func printWindows(out io.Writer, list []interfaces.WindowInfo, pinned map[uintptr]bool) {
	if len(list) == 0 {
		fmt.Fprintln(out, "No visible windows")
		return
	}

	fmt.Fprintf(out, "  %-12s %-8s %s\n", "HWND", "PID", "TITLE")

	highlight := color.New(color.FgGreen, color.Bold)
	for _, w := range list {
		line := fmt.Sprintf("%-12s %-8d %s", fmt.Sprintf("0x%X", w.Hwnd), w.Pid, w.Title)
		if pinned[w.Hwnd] {
			_, _ = highlight.Fprintf(out, "* %s\n", line)
			continue
		}

		fmt.Fprintf(out, "  %s\n", line)
	}
}

func runPin(ctx context.Context, env *commandEnv, title string) error {
	err := env.client.Pin(title)
	if err == nil {
		fmt.Fprintf(env.out, "Pinned %q\n", title)
		return nil
	}

	if !errors.Is(err, control.ErrDaemonUnavailable) {
		return err
	}

	return env.withLocal(func(w localWindows) error {
		if err := w.StartMonitoring(title); err != nil {
			return err
		}

		fmt.Fprintf(env.out, "No hotpin daemon running, keeping %q on top until interrupted\n", title)
		<-ctx.Done()

		w.StopMonitoring(title)
		return nil
	})
}

func runUnpin(env *commandEnv, title string) error {
	err := env.client.Unpin(title)
	if err == nil {
		if title == "" {
			fmt.Fprintln(env.out, "Unpinned all windows")
		} else {
			fmt.Fprintf(env.out, "Unpinned %q\n", title)
		}

		return nil
	}

	if !errors.Is(err, control.ErrDaemonUnavailable) || title == "" {
		return err
	}

	return env.withLocal(func(w localWindows) error {
		if err := w.SetTopmost(title, false); err != nil {
			return err
		}

		fmt.Fprintf(env.out, "Removed always-on-top from %q\n", title)
		return nil
	})
}

func runTopmost(env *commandEnv, title string, on bool) error {
	err := env.client.Topmost(title, on)
	if errors.Is(err, control.ErrDaemonUnavailable) {
		err = env.withLocal(func(w localWindows) error { return w.SetTopmost(title, on) })
	}

	if err != nil {
		return err
	}

	state := "on"
	if !on {
		state = "off"
	}

	fmt.Fprintf(env.out, "Always-on-top %s for %q\n", state, title)
	return nil
}

func runFocus(env *commandEnv, title string) error {
	err := env.client.Focus(title)
	if errors.Is(err, control.ErrDaemonUnavailable) {
		err = env.withLocal(func(w localWindows) error { return w.BringToForeground(title) })
	}

	return err
}

func runStatus(env *commandEnv) error {
	st, err := env.client.Status()
	if err != nil {
		return err
	}

	printStatus(env.out, st)
	return nil
}

func printStatus(out io.Writer, st *control.DaemonStatus) {
	yes := func(b bool) string {
		if b {
			return "yes"
		}

		return "no"
	}

	bold := color.New(color.Bold)
	warn := color.New(color.FgYellow)

	_, _ = bold.Fprintf(out, "hotpin %s", st.Version)
	fmt.Fprintf(out, " (pid %d)\n", st.Pid)
	fmt.Fprintf(out, "Config:    %s\n", st.ConfigPath)
	fmt.Fprintf(out, "Elevated:  %s\n", yes(st.Elevated))

	h := st.Hooks
	if !h.Active {
		_, _ = warn.Fprintln(out, "Shortcuts: inactive")
	} else {
		fmt.Fprintf(out, "Shortcuts: %s (keyboard hook: %s, mouse hook: %s, session %s)\n",
			h.Strategy, yes(h.KeyboardHook), yes(h.MouseHook), h.SessionID)
	}

	names := make([]string, 0, len(h.Shortcuts))
	for name := range h.Shortcuts {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(out, "  %-20s %s\n", name, h.Shortcuts[name])
	}

	if len(h.Invalid) > 0 {
		_, _ = warn.Fprintf(out, "Ignored:   %s\n", strings.Join(h.Invalid, ", "))
	}

	if h.Dropped > 0 {
		_, _ = warn.Fprintf(out, "Dropped:   %d shortcut(s) while busy\n", h.Dropped)
	}

	if len(st.Watches) == 0 {
		fmt.Fprintln(out, "Pinned:    none")
		return
	}

	fmt.Fprintln(out, "Pinned:")
	for _, w := range st.Watches {
		switch {
		case w.Waiting():
			fmt.Fprintf(out, "  %-20s waiting for window\n", w.Title)
		default:
			fmt.Fprintf(out, "  %-20s 0x%X\n", w.Title, w.Hwnd)
		}
	}
}

func runReload(env *commandEnv) error {
	if err := env.client.Reload(); err != nil {
		return err
	}

	fmt.Fprintln(env.out, "Configuration reloaded")
	return nil
}
