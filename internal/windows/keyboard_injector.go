//go:build windows

package windows

import (
	"log/slog"
	"time"
	"unsafe"

	"github.com/Norgate-AV/hotpin/internal/keys"
	"github.com/Norgate-AV/hotpin/internal/logger"
	"github.com/Norgate-AV/hotpin/internal/timeouts"
)

// keyboardInjector implements interfaces.KeyboardInjector with SendInput
type keyboardInjector struct {
	log logger.LoggerInterface
}

// newKeyboardInjector creates a new keyboard injector
func newKeyboardInjector(log logger.LoggerInterface) *keyboardInjector {
	return &keyboardInjector{log: log}
}

// modifierKeys is the press order for a combination's modifiers
var modifierKeys = []struct {
	mod keys.Modifier
	vk  keys.Code
}{
	{keys.ModCtrl, keys.VKLControl},
	{keys.ModAlt, keys.VKLMenu},
	{keys.ModShift, keys.VKLShift},
	{keys.ModWin, keys.VKLWin},
}

// extendedKeys need KEYEVENTF_EXTENDEDKEY or they arrive as their numpad twins
var extendedKeys = map[keys.Code]bool{
	keys.VKInsert: true, keys.VKDelete: true, keys.VKHome: true, keys.VKEnd: true,
	keys.VKPrior: true, keys.VKNext: true, keys.VKLeft: true, keys.VKRight: true,
	keys.VKUp: true, keys.VKDown: true, keys.VKDivide: true, keys.VKNumLock: true,
	keys.VKApps: true, keys.VKLWin: true, keys.VKRWin: true, keys.VKSnapshot: true,
	keys.VKRControl: true, keys.VKRMenu: true,
}

func keyInput(vk keys.Code, up bool) INPUT {
	var in INPUT
	in.Type = INPUT_KEYBOARD

	scan, _, _ := procMapVirtualKeyW.Call(uintptr(vk), MAPVK_VK_TO_VSC)

	kb := (*KEYBDINPUT)(unsafe.Pointer(&in.Data[0]))
	kb.WVk = uint16(vk)
	kb.WScan = uint16(scan)

	if extendedKeys[vk] {
		kb.DwFlags |= KEYEVENTF_EXTENDEDKEY
	}

	if up {
		kb.DwFlags |= KEYEVENTF_KEYUP
	}

	return in
}

func (k *keyboardInjector) send(inputs []INPUT) bool {
	ret, _, _ := procSendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		uintptr(unsafe.Sizeof(INPUT{})),
	)

	return ret == uintptr(len(inputs))
}

// SendCombo presses the combination's modifiers and key as one SendInput
// batch, then releases them in reverse order as a second batch
func (k *keyboardInjector) SendCombo(combo keys.Combo) bool {
	if combo.IsMouse() {
		k.log.Warn("Cannot synthesize a mouse button combination", slog.String("combo", combo.String()))
		return false
	}

	held := make([]keys.Code, 0, len(modifierKeys))
	for _, m := range modifierKeys {
		if combo.Mods&m.mod != 0 {
			held = append(held, m.vk)
		}
	}

	press := make([]INPUT, 0, len(held)+1)
	for _, vk := range held {
		press = append(press, keyInput(vk, false))
	}

	press = append(press, keyInput(combo.Key, false))

	release := make([]INPUT, 0, len(held)+1)
	release = append(release, keyInput(combo.Key, true))

	for i := len(held) - 1; i >= 0; i-- {
		release = append(release, keyInput(held[i], true))
	}

	pressed := k.send(press)

	time.Sleep(timeouts.KeystrokeDelay)

	// always release, even after a partial press, so no modifier is left stuck
	released := k.send(release)

	if !pressed || !released {
		k.log.Warn("SendInput failed",
			slog.String("combo", combo.String()),
			slog.Bool("pressed", pressed),
			slog.Bool("released", released),
		)
		return false
	}

	k.log.Debug("Combination sent", slog.String("combo", combo.String()))
	return true
}
