package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Norgate-AV/hotpin/internal/config"
	"github.com/Norgate-AV/hotpin/internal/logger"
	"github.com/Norgate-AV/hotpin/internal/version"
)

// resetFlags resets all flags to their default values between tests
func resetFlags() {
	_ = RootCmd.PersistentFlags().Set("verbose", "false")
	_ = RootCmd.PersistentFlags().Set("logs", "false")
	_ = RootCmd.PersistentFlags().Set("config", "")
	_ = RootCmd.Flags().Set("elevate", "false")
	_ = RootCmd.Flags().Set("help", "false")
}

// TestHandleLogsFlag tests the --logs flag functionality
func TestHandleLogsFlag(t *testing.T) {
	resetFlags()
	defer resetFlags()

	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "hotpin", "hotpin.log")
	t.Setenv("LOCALAPPDATA", tmpDir)

	testContent := "Test log content\nLine 2\nLine 3"
	require.NoError(t, os.MkdirAll(filepath.Dir(logPath), 0o755))
	require.NoError(t, os.WriteFile(logPath, []byte(testContent), 0o644))

	// Capture stdout
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	exitCalled := false
	var exitCode int
	mockExit := func(code int) {
		exitCalled = true
		exitCode = code
	}

	err := handleLogsFlag(&Config{ShowLogs: true}, mockExit)
	assert.NoError(t, err)

	// Restore stdout
	w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)

	assert.True(t, exitCalled, "Should call exit function for --logs flag")
	assert.Equal(t, 0, exitCode, "Should exit with code 0 for --logs")
	assert.Contains(t, buf.String(), testContent, "Should print log file content to stdout")
}

func TestHandleLogsFlag_NotSet(t *testing.T) {
	t.Parallel()

	exitCalled := false
	err := handleLogsFlag(&Config{}, func(int) { exitCalled = true })

	assert.NoError(t, err)
	assert.False(t, exitCalled)
}

// TestRootCmd_Version tests --version flag
func TestRootCmd_Version(t *testing.T) {
	resetFlags()

	output := captureCommandOutput(t, []string{"--version"})
	assert.Contains(t, output, version.GetVersion(), "Should print version information")
}

func TestVersionCmd(t *testing.T) {
	resetFlags()

	output := captureCommandOutput(t, []string{"version"})
	assert.Contains(t, output, "hotpin "+version.GetFullVersion())
}

// TestRootCmd_Help tests --help flag
func TestRootCmd_Help(t *testing.T) {
	resetFlags()

	output := captureCommandOutput(t, []string{"--help"})

	assert.Contains(t, output, "hotpin", "Should show usage")
	assert.Contains(t, output, "global keyboard shortcuts", "Should show description")
	assert.Contains(t, output, "--verbose", "Should list verbose flag")
	assert.Contains(t, output, "--config", "Should list config flag")
	assert.Contains(t, output, "--elevate", "Should list elevate flag")
	assert.Contains(t, output, "--logs", "Should list logs flag")

	for _, sub := range []string{"windows", "pin", "unpin", "topmost", "focus", "status", "reload", "version"} {
		assert.Contains(t, output, sub, "Should list %s subcommand", sub)
	}
}

// TestRootCmd_Flags tests flag parsing
func TestRootCmd_Flags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		args            []string
		expectedVerbose bool
		expectedLogs    bool
		expectedElevate bool
		expectedConfig  string
	}{
		{name: "no flags", args: []string{}},
		{name: "verbose flag short", args: []string{"-V"}, expectedVerbose: true},
		{name: "verbose flag long", args: []string{"--verbose"}, expectedVerbose: true},
		{name: "logs flag short", args: []string{"-l"}, expectedLogs: true},
		{name: "logs flag long", args: []string{"--logs"}, expectedLogs: true},
		{name: "elevate", args: []string{"--elevate"}, expectedElevate: true},
		{name: "config short", args: []string{"-c", `C:\hotpin.yaml`}, expectedConfig: `C:\hotpin.yaml`},
		{
			name:            "all flags",
			args:            []string{"--verbose", "--logs", "--elevate", "--config", "x.yaml"},
			expectedVerbose: true,
			expectedLogs:    true,
			expectedElevate: true,
			expectedConfig:  "x.yaml",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// A fresh command instance avoids sharing RootCmd's flag state
			cmd := &cobra.Command{Use: "test"}
			cmd.PersistentFlags().BoolP("verbose", "V", false, "enable verbose output")
			cmd.PersistentFlags().BoolP("logs", "l", false, "print log file")
			cmd.PersistentFlags().StringP("config", "c", "", "config file")
			cmd.Flags().Bool("elevate", false, "relaunch as administrator")

			err := cmd.ParseFlags(tt.args)
			require.NoError(t, err, "Flag parsing should not error")

			cfg := NewConfigFromFlags(cmd)
			assert.Equal(t, tt.expectedVerbose, cfg.Verbose, "Verbose flag mismatch")
			assert.Equal(t, tt.expectedLogs, cfg.ShowLogs, "Logs flag mismatch")
			assert.Equal(t, tt.expectedElevate, cfg.Elevate, "Elevate flag mismatch")
			assert.Equal(t, tt.expectedConfig, cfg.ConfigPath, "Config flag mismatch")
		})
	}
}

func TestConfig_ResolvedConfigPath(t *testing.T) {
	t.Setenv(config.EnvConfigPath, filepath.Join("env", "config.yaml"))

	assert.Equal(t, "mine.yaml", (&Config{ConfigPath: "mine.yaml"}).ResolvedConfigPath())
	assert.Equal(t, filepath.Join("env", "config.yaml"), (&Config{}).ResolvedConfigPath())
}

// TestRootCmd_InvalidFlag tests behavior with unknown flags
func TestRootCmd_InvalidFlag(t *testing.T) {
	resetFlags()

	var stderr bytes.Buffer
	RootCmd.SetErr(&stderr)
	defer RootCmd.SetErr(nil)

	RootCmd.SetArgs([]string{"--invalid-flag"})
	err := RootCmd.Execute()

	assert.Error(t, err, "Should return error for invalid flag")
	assert.Contains(t, stderr.String(), "unknown flag", "Error message should mention unknown flag")
}

func TestRootCmd_RejectsArguments(t *testing.T) {
	resetFlags()

	// --help left set by an earlier Execute would print usage and return nil
	_ = captureCommandOutput(t, []string{"--help"})
	resetFlags()

	var stderr bytes.Buffer
	RootCmd.SetErr(&stderr)
	defer RootCmd.SetErr(nil)

	RootCmd.SetArgs([]string{"stray"})
	assert.Error(t, RootCmd.Execute())
}

func TestEnsureElevated(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		elevated     bool
		elevate      bool
		relaunchErr  error
		wantRelaunch bool
		wantExit     bool
		wantErr      bool
	}{
		{name: "already elevated", elevated: true, elevate: true},
		{name: "not elevated, warning only", elevated: false, elevate: false},
		{name: "relaunch requested", elevated: false, elevate: true, wantRelaunch: true, wantExit: true},
		{name: "relaunch fails", elevated: false, elevate: true, relaunchErr: errors.New("cancelled"), wantRelaunch: true, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			relaunched := false
			exitCode := -1

			err := ensureElevatedWithDeps(
				logger.NewNoOpLogger(),
				tt.elevate,
				func() bool { return tt.elevated },
				func() error { relaunched = true; return tt.relaunchErr },
				func(code int) { exitCode = code },
			)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			assert.Equal(t, tt.wantRelaunch, relaunched)
			if tt.wantExit {
				assert.Equal(t, 0, exitCode)
			} else {
				assert.Equal(t, -1, exitCode)
			}
		})
	}
}

// TestExecutionContext_ExitFuncInjectable tests that exitFunc is injectable for testing
func TestExecutionContext_ExitFuncInjectable(t *testing.T) {
	t.Parallel()

	exitCalled := false
	var exitCode int

	ctx := &ExecutionContext{
		exitFunc: func(code int) {
			exitCalled = true
			exitCode = code
		},
	}

	ctx.exitFunc(130)

	assert.True(t, exitCalled, "Exit function should have been called")
	assert.Equal(t, 130, exitCode, "Exit code should be 130")
}

// Helper function to capture command output
func captureCommandOutput(_ *testing.T, args []string) string {
	var buf bytes.Buffer
	RootCmd.SetOut(&buf)
	defer RootCmd.SetOut(nil)

	RootCmd.SetArgs(args)
	_ = RootCmd.Execute()

	return buf.String()
}
