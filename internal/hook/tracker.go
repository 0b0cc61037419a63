package hook

import (
	"sync/atomic"

	"github.com/Norgate-AV/hotpin/internal/keys"
)

// side bits, one per physical modifier key
const (
	bitLShift uint32 = 1 << iota
	bitRShift
	bitLCtrl
	bitRCtrl
	bitLAlt
	bitRAlt
	bitLWin
	bitRWin
)

// Tracker records which modifier keys are held. It is written only from the
// keyboard interceptor but may be read from any goroutine.
type Tracker struct {
	state atomic.Uint32
}

// sideBit maps a virtual key to its side bit. Generic VKs count as the left key.
func sideBit(vk keys.Code) uint32 {
	switch vk {
	case keys.VKShift, keys.VKLShift:
		return bitLShift
	case keys.VKRShift:
		return bitRShift
	case keys.VKControl, keys.VKLControl:
		return bitLCtrl
	case keys.VKRControl:
		return bitRCtrl
	case keys.VKMenu, keys.VKLMenu:
		return bitLAlt
	case keys.VKRMenu:
		return bitRAlt
	case keys.VKLWin:
		return bitLWin
	case keys.VKRWin:
		return bitRWin
	default:
		return 0
	}
}

// OnKeyTransition updates the state for vk and reports whether vk is a modifier.
func (t *Tracker) OnKeyTransition(vk keys.Code, pressed bool) bool {
	bit := sideBit(vk)
	if bit == 0 {
		return false
	}

	for {
		old := t.state.Load()
		next := old &^ bit
		if pressed {
			next = old | bit
		}

		if old == next || t.state.CompareAndSwap(old, next) {
			return true
		}
	}
}

// CurrentMask returns the logical modifiers currently held
func (t *Tracker) CurrentMask() keys.Modifier {
	s := t.state.Load()

	var mask keys.Modifier
	if s&(bitLShift|bitRShift) != 0 {
		mask |= keys.ModShift
	}

	if s&(bitLCtrl|bitRCtrl) != 0 {
		mask |= keys.ModCtrl
	}

	if s&(bitLAlt|bitRAlt) != 0 {
		mask |= keys.ModAlt
	}

	if s&(bitLWin|bitRWin) != 0 {
		mask |= keys.ModWin
	}

	return mask
}

// Reset clears all held modifiers.
func (t *Tracker) Reset() {
	t.state.Store(0)
}
