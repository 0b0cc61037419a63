// Package config loads the hotpin YAML configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/Norgate-AV/hotpin/internal/keys"
)

const (
	// EnvConfigPath overrides the default config file location
	EnvConfigPath = "HOTPIN_CONFIG"

	maxConfigFileBytes = 1 << 20
)

// ActionType selects what an action does when its shortcut fires
type ActionType string

const (
	ActionRun       ActionType = "run"       // launch Target with Args in Dir
	ActionSend      ActionType = "send"      // synthesize the key combination in Target
	ActionPin       ActionType = "pin"       // keep the window titled Target on top
	ActionUnpin     ActionType = "unpin"     // stop keeping Target on top
	ActionTogglePin ActionType = "togglePin" // pin or unpin depending on current state
	ActionTopmost   ActionType = "topmost"   // one-shot topmost, no monitor
	ActionNoTopmost ActionType = "notopmost" // one-shot removal of topmost
	ActionFocus     ActionType = "focus"     // bring Target to the foreground
	ActionLog       ActionType = "log"       // only log that the shortcut fired
)

var actionTypes = map[ActionType]bool{
	ActionRun: true, ActionSend: true, ActionPin: true, ActionUnpin: true,
	ActionTogglePin: true, ActionTopmost: true, ActionNoTopmost: true,
	ActionFocus: true, ActionLog: true,
}

// Action is the host behaviour bound to a shortcut of the same name
type Action struct {
	Type   ActionType `yaml:"type"`
	Target string     `yaml:"target,omitempty"`
	Args   string     `yaml:"args,omitempty"`
	Dir    string     `yaml:"dir,omitempty"`
}

// LogConfig mirrors logger.LoggerOptions
type LogConfig struct {
	Verbose    bool `yaml:"verbose,omitempty"`
	MaxSizeMB  int  `yaml:"max_size_mb,omitempty"`
	MaxBackups int  `yaml:"max_backups,omitempty"`
	MaxAgeDays int  `yaml:"max_age_days,omitempty"`
	Compress   bool `yaml:"compress,omitempty"`
}

// Config is the whole configuration file
type Config struct {
	// Shortcuts maps an action name to a key combination such as "Ctrl+Alt+M"
	Shortcuts map[string]string `yaml:"shortcuts"`
	Actions   map[string]Action `yaml:"actions,omitempty"`
	// Pin lists window titles kept on top whenever such a window exists
	Pin []string  `yaml:"pin,omitempty"`
	Log LogConfig `yaml:"log,omitempty"`
}

// DefaultShortcuts returns the built-in shortcut table
func DefaultShortcuts() map[string]string {
	return map[string]string{
		"toggleBrowser":   "Insert",
		"playPause":       "Space",
		"rewind":          "Left",
		"forward":         "Right",
		"increaseOpacity": "Control+Up",
		"decreaseOpacity": "Control+Down",
	}
}

// DefaultActions returns the actions bound to DefaultShortcuts
func DefaultActions() map[string]Action {
	return map[string]Action{
		"toggleBrowser":   {Type: ActionTogglePin, Target: "Picture-in-Picture"},
		"playPause":       {Type: ActionSend, Target: "MediaPlayPause"},
		"rewind":          {Type: ActionSend, Target: "MediaPrev"},
		"forward":         {Type: ActionSend, Target: "MediaNext"},
		"increaseOpacity": {Type: ActionLog},
		"decreaseOpacity": {Type: ActionLog},
	}
}

// DefaultConfig returns the configuration used when no file exists
func DefaultConfig() Config {
	return Config{
		Shortcuts: DefaultShortcuts(),
		Actions:   DefaultActions(),
	}
}

// DefaultPath returns the config file location. HOTPIN_CONFIG wins, then
// %APPDATA%\hotpin\config.yaml.
func DefaultPath() string {
	if envPath := strings.TrimSpace(os.Getenv(EnvConfigPath)); envPath != "" {
		return envPath
	}

	base := strings.TrimSpace(os.Getenv("APPDATA"))
	if base == "" {
		base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
	}

	return filepath.Join(base, "hotpin", "config.yaml")
}

// Load reads the file at path. A missing or empty file yields DefaultConfig.
// Omitting the shortcuts key keeps the default shortcuts and actions; an
// explicit empty map disables every shortcut.
func Load(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), errors.New("config path required")
	}

	raw, err := readLimitedFile(path, maxConfigFileBytes)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}

		return DefaultConfig(), fmt.Errorf("read config %s: %w", path, err)
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return DefaultConfig(), nil
	}

	cfg, err := Parse(raw)
	if err != nil {
		return DefaultConfig(), fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

// Parse decodes and validates YAML. Unknown keys are rejected.
func Parse(raw []byte) (Config, error) {
	var cfg Config

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse: %w", err)
	}

	if cfg.Shortcuts == nil {
		cfg.Shortcuts = DefaultShortcuts()
		if cfg.Actions == nil {
			cfg.Actions = DefaultActions()
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate reports every problem with the actions table. Shortcut combos are
// not validated here: an unusable combo only drops that one shortcut.
func (c Config) Validate() error {
	var errs []error

	names := make([]string, 0, len(c.Actions))
	for name := range c.Actions {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		a := c.Actions[name]

		if !actionTypes[a.Type] {
			errs = append(errs, fmt.Errorf("action %q: unknown type %q", name, a.Type))
			continue
		}

		if a.Type != ActionLog && strings.TrimSpace(a.Target) == "" {
			errs = append(errs, fmt.Errorf("action %q: %s requires a target", name, a.Type))
			continue
		}

		if a.Type == ActionSend {
			combo, ok := keys.Parse(a.Target)
			if !ok {
				errs = append(errs, fmt.Errorf("action %q: cannot send %q", name, a.Target))
			} else if combo.IsMouse() {
				errs = append(errs, fmt.Errorf("action %q: cannot send mouse button %q", name, a.Target))
			}
		}
	}

	for i, title := range c.Pin {
		if strings.TrimSpace(title) == "" {
			errs = append(errs, fmt.Errorf("pin[%d]: empty window title", i))
		}
	}

	return errors.Join(errs...)
}

// EnsureFile writes DefaultConfig to path if nothing is there yet and returns
// the loaded configuration.
func EnsureFile(path string) (Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := Save(path, DefaultConfig()); err != nil {
			return DefaultConfig(), err
		}
	}

	return Load(path)
}

// Save validates cfg and writes it to path atomically
func Save(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("save config: marshal: %w", err)
	}

	return atomicWrite(path, raw)
}

// atomicWrite writes data to a temp file in the same directory and renames
// it over path, so a reader never observes a partial file.
func atomicWrite(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("save config: mkdir: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".config.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("save config: create temp: %w", err)
	}

	tmpPath := tmpFile.Name()

	defer func() {
		if tmpFile != nil {
			_ = tmpFile.Close()
		}

		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = tmpFile.Write(data); err != nil {
		return fmt.Errorf("save config: write: %w", err)
	}

	if err = tmpFile.Sync(); err != nil {
		return fmt.Errorf("save config: sync: %w", err)
	}

	err = tmpFile.Close()
	tmpFile = nil
	if err != nil {
		return fmt.Errorf("save config: close: %w", err)
	}

	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("save config: rename: %w", err)
	}

	return nil
}

func readLimitedFile(path string, maxBytes int64) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return nil, err
	}

	if int64(len(raw)) > maxBytes {
		return nil, fmt.Errorf("config file exceeds %d bytes", maxBytes)
	}

	return raw, nil
}
