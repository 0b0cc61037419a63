// Package keys parses human-readable key combinations into modifier masks,
// virtual-key codes and mouse side-button identifiers.
package keys

import "strings"

// Modifier is a bitmask of held modifier keys. The bit values match the
// Win32 MOD_* constants so a mask can be handed to RegisterHotKey unchanged.
type Modifier uint32

const (
	ModAlt   Modifier = 0x0001
	ModCtrl  Modifier = 0x0002
	ModShift Modifier = 0x0004
	ModWin   Modifier = 0x0008
)

// String renders the mask in canonical order, e.g. "Ctrl+Alt+Shift"
func (m Modifier) String() string {
	parts := make([]string, 0, 4)
	if m&ModCtrl != 0 {
		parts = append(parts, "Ctrl")
	}

	if m&ModAlt != 0 {
		parts = append(parts, "Alt")
	}

	if m&ModShift != 0 {
		parts = append(parts, "Shift")
	}

	if m&ModWin != 0 {
		parts = append(parts, "Win")
	}

	return strings.Join(parts, "+")
}

// Code is a Windows virtual-key code.
type Code uint32

// Button identifies a mouse side button.
type Button uint32

const (
	ButtonNone Button = 0
	ButtonX1   Button = 1
	ButtonX2   Button = 2
)

// Combo is a parsed key combination. Exactly one of Key or Button is non-zero.
type Combo struct {
	Mods   Modifier
	Key    Code
	Button Button
}

// IsMouse reports whether the combo targets a mouse side button
func (c Combo) IsMouse() bool {
	return c.Button != ButtonNone
}

// String returns the canonical form of the combo, e.g. "Ctrl+Alt+M".
func (c Combo) String() string {
	var primary string
	switch {
	case c.Button == ButtonX1:
		primary = "X1"
	case c.Button == ButtonX2:
		primary = "X2"
	default:
		primary = KeyName(c.Key)
	}

	if c.Mods == 0 {
		return primary
	}

	return c.Mods.String() + "+" + primary
}

// Parse converts a combination string such as "Ctrl+Shift+F1" into a Combo.
// All tokens but the last are modifiers; unknown modifier tokens are ignored.
// The last token must resolve to a key or side button, otherwise ok is false.
func Parse(s string) (combo Combo, ok bool) {
	raw := strings.Split(s, "+")
	parts := make([]string, 0, len(raw))

	for _, p := range raw {
		p = strings.Join(strings.Fields(p), "")
		if p != "" {
			parts = append(parts, strings.ToUpper(p))
		}
	}

	// "Ctrl++" leaves the plus key itself as the last token
	if strings.HasSuffix(strings.TrimSpace(s), "++") {
		parts = append(parts, "+")
	}

	if len(parts) == 0 {
		return Combo{}, false
	}

	for _, name := range parts[:len(parts)-1] {
		combo.Mods |= modifierNames[name]
	}

	primary := parts[len(parts)-1]
	if b, found := buttonNames[primary]; found {
		combo.Button = b
		return combo, true
	}

	code, found := lookupKey(primary)
	if !found {
		return Combo{}, false
	}

	combo.Key = code
	return combo, true
}

var modifierNames = map[string]Modifier{
	"SHIFT":   ModShift,
	"CTRL":    ModCtrl,
	"CONTROL": ModCtrl,
	"ALT":     ModAlt,
	"WIN":     ModWin,
	"WINDOWS": ModWin,
	"CMD":     ModWin,
}

var buttonNames = map[string]Button{
	"X1":         ButtonX1,
	"XBUTTON1":   ButtonX1,
	"MOUSESIDE1": ButtonX1,
	"X2":         ButtonX2,
	"XBUTTON2":   ButtonX2,
	"MOUSESIDE2": ButtonX2,
}
