package keys

import (
	"fmt"
	"strconv"
	"strings"
)

// Virtual-key codes used by the grammar and the modifier tracker
const (
	VKBack     Code = 0x08
	VKTab      Code = 0x09
	VKReturn   Code = 0x0D
	VKShift    Code = 0x10
	VKControl  Code = 0x11
	VKMenu     Code = 0x12
	VKPause    Code = 0x13
	VKCapital  Code = 0x14
	VKEscape   Code = 0x1B
	VKSpace    Code = 0x20
	VKPrior    Code = 0x21
	VKNext     Code = 0x22
	VKEnd      Code = 0x23
	VKHome     Code = 0x24
	VKLeft     Code = 0x25
	VKUp       Code = 0x26
	VKRight    Code = 0x27
	VKDown     Code = 0x28
	VKSnapshot Code = 0x2C
	VKInsert   Code = 0x2D
	VKDelete   Code = 0x2E
	VKLWin     Code = 0x5B
	VKRWin     Code = 0x5C
	VKApps     Code = 0x5D
	VKNumpad0  Code = 0x60
	VKMultiply Code = 0x6A
	VKAdd      Code = 0x6B
	VKSubtract Code = 0x6D
	VKDecimal  Code = 0x6E
	VKDivide   Code = 0x6F
	VKF1       Code = 0x70
	VKF24      Code = 0x87
	VKNumLock  Code = 0x90
	VKScroll   Code = 0x91
	VKLShift   Code = 0xA0
	VKRShift   Code = 0xA1
	VKLControl Code = 0xA2
	VKRControl Code = 0xA3
	VKLMenu    Code = 0xA4
	VKRMenu    Code = 0xA5

	VKVolumeMute     Code = 0xAD
	VKVolumeDown     Code = 0xAE
	VKVolumeUp       Code = 0xAF
	VKMediaNextTrack Code = 0xB0
	VKMediaPrevTrack Code = 0xB1
	VKMediaStop      Code = 0xB2
	VKMediaPlayPause Code = 0xB3

	VKOEM1      Code = 0xBA // ;:
	VKOEMPlus   Code = 0xBB // =+
	VKOEMComma  Code = 0xBC // ,<
	VKOEMMinus  Code = 0xBD // -_
	VKOEMPeriod Code = 0xBE // .>
	VKOEM2      Code = 0xBF // /?
	VKOEM3      Code = 0xC0 // `~
	VKOEM4      Code = 0xDB // [{
	VKOEM5      Code = 0xDC // \|
	VKOEM6      Code = 0xDD // ]}
	VKOEM7      Code = 0xDE // '"
)

// namedKeys maps upper-case key names (and their aliases) to codes.
var namedKeys = map[string]Code{
	"INSERT":      VKInsert,
	"DELETE":      VKDelete,
	"DEL":         VKDelete,
	"HOME":        VKHome,
	"END":         VKEnd,
	"PAGEUP":      VKPrior,
	"PGUP":        VKPrior,
	"PAGEDOWN":    VKNext,
	"PGDN":        VKNext,
	"UP":          VKUp,
	"UPARROW":     VKUp,
	"DOWN":        VKDown,
	"DOWNARROW":   VKDown,
	"LEFT":        VKLeft,
	"LEFTARROW":   VKLeft,
	"RIGHT":       VKRight,
	"RIGHTARROW":  VKRight,
	"SPACE":       VKSpace,
	"SPACEBAR":    VKSpace,
	"TAB":         VKTab,
	"ENTER":       VKReturn,
	"RETURN":      VKReturn,
	"ESCAPE":      VKEscape,
	"ESC":         VKEscape,
	"BACKSPACE":   VKBack,
	"BACK":        VKBack,
	"CAPSLOCK":    VKCapital,
	"CAPS":        VKCapital,
	"NUMLOCK":     VKNumLock,
	"SCROLLLOCK":  VKScroll,
	"PRINTSCREEN": VKSnapshot,
	"PRTSC":       VKSnapshot,
	"PAUSE":       VKPause,
	"APPS":        VKApps,
	"MENU":        VKApps,

	"MULTIPLY":       VKMultiply,
	"NUMPADMULTIPLY": VKMultiply,
	"ADD":            VKAdd,
	"NUMPADADD":      VKAdd,
	"SUBTRACT":       VKSubtract,
	"NUMPADSUBTRACT": VKSubtract,
	"DECIMAL":        VKDecimal,
	"NUMPADDECIMAL":  VKDecimal,
	"DIVIDE":         VKDivide,
	"NUMPADDIVIDE":   VKDivide,

	"VOLUMEUP":       VKVolumeUp,
	"VOLUMEDOWN":     VKVolumeDown,
	"VOLUMEMUTE":     VKVolumeMute,
	"MEDIANEXT":      VKMediaNextTrack,
	"MEDIAPREV":      VKMediaPrevTrack,
	"MEDIAPLAYPAUSE": VKMediaPlayPause,
	"MEDIASTOP":      VKMediaStop,
}

// symbolKeys maps both characters printed on an OEM key to its code.
var symbolKeys = map[byte]Code{
	'`': VKOEM3, '~': VKOEM3,
	'-': VKOEMMinus, '_': VKOEMMinus,
	'=': VKOEMPlus, '+': VKOEMPlus,
	'[': VKOEM4, '{': VKOEM4,
	']': VKOEM6, '}': VKOEM6,
	'\\': VKOEM5, '|': VKOEM5,
	';': VKOEM1, ':': VKOEM1,
	'\'': VKOEM7, '"': VKOEM7,
	',': VKOEMComma, '<': VKOEMComma,
	'.': VKOEMPeriod, '>': VKOEMPeriod,
	'/': VKOEM2, '?': VKOEM2,
}

// canonicalNames is used by KeyName for codes that have several aliases
var canonicalNames = map[Code]string{
	VKInsert: "Insert", VKDelete: "Delete", VKHome: "Home", VKEnd: "End",
	VKPrior: "PageUp", VKNext: "PageDown", VKUp: "Up", VKDown: "Down",
	VKLeft: "Left", VKRight: "Right", VKSpace: "Space", VKTab: "Tab",
	VKReturn: "Enter", VKEscape: "Escape", VKBack: "Backspace",
	VKCapital: "CapsLock", VKNumLock: "NumLock", VKScroll: "ScrollLock",
	VKSnapshot: "PrintScreen", VKPause: "Pause", VKApps: "Apps",
	VKMultiply: "Multiply", VKAdd: "Add", VKSubtract: "Subtract",
	VKDecimal: "Decimal", VKDivide: "Divide",
	VKVolumeUp: "VolumeUp", VKVolumeDown: "VolumeDown", VKVolumeMute: "VolumeMute",
	VKMediaNextTrack: "MediaNext", VKMediaPrevTrack: "MediaPrev",
	VKMediaPlayPause: "MediaPlayPause", VKMediaStop: "MediaStop",
	VKOEM3: "`", VKOEMMinus: "-", VKOEMPlus: "=", VKOEM4: "[", VKOEM6: "]",
	VKOEM5: "\\", VKOEM1: ";", VKOEM7: "'", VKOEMComma: ",", VKOEMPeriod: ".",
	VKOEM2: "/",
}

// lookupKey resolves an upper-cased primary key token
func lookupKey(name string) (Code, bool) {
	if len(name) == 1 {
		c := name[0]
		switch {
		case c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			return Code(c), true
		}

		code, ok := symbolKeys[c]
		return code, ok
	}

	if strings.HasPrefix(name, "NUMPAD") {
		if n, err := strconv.Atoi(name[len("NUMPAD"):]); err == nil && n >= 0 && n <= 9 {
			return VKNumpad0 + Code(n), true
		}
	}

	if name[0] == 'F' {
		if n, err := strconv.Atoi(name[1:]); err == nil {
			if n >= 1 && n <= 24 {
				return VKF1 + Code(n-1), true
			}

			return 0, false
		}
	}

	code, ok := namedKeys[name]
	return code, ok
}

// KeyName returns a display name for a virtual-key code
func KeyName(code Code) string {
	switch {
	case code >= 'A' && code <= 'Z', code >= '0' && code <= '9':
		return string(rune(code))
	case code >= VKF1 && code <= VKF24:
		return fmt.Sprintf("F%d", code-VKF1+1)
	case code >= VKNumpad0 && code <= VKNumpad0+9:
		return fmt.Sprintf("Numpad%d", code-VKNumpad0)
	}

	if name, ok := canonicalNames[code]; ok {
		return name
	}

	return fmt.Sprintf("VK_0x%02X", uint32(code))
}
