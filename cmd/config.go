// Package cmd implements the command-line interface for hotpin.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Norgate-AV/hotpin/internal/config"
)

// Config holds all application configuration
type Config struct {
	Verbose    bool
	ShowLogs   bool
	Elevate    bool
	ConfigPath string
}

// NewConfigFromFlags creates a Config from parsed command flags
func NewConfigFromFlags(cmd *cobra.Command) *Config {
	return &Config{
		Verbose:    getBoolFlag(cmd, "verbose"),
		ShowLogs:   getBoolFlag(cmd, "logs"),
		Elevate:    getBoolFlag(cmd, "elevate"),
		ConfigPath: getStringFlag(cmd, "config"),
	}
}

// ResolvedConfigPath returns the --config value or the default location
func (c *Config) ResolvedConfigPath() string {
	if c.ConfigPath != "" {
		return c.ConfigPath
	}

	return config.DefaultPath()
}

// getBoolFlag retrieves a boolean flag, checking both local and persistent flags
func getBoolFlag(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		// Try persistent flags if not found in local flags
		val, _ = cmd.PersistentFlags().GetBool(name)
	}

	return val
}

func getStringFlag(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		val, _ = cmd.PersistentFlags().GetString(name)
	}

	return val
}
