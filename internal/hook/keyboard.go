package hook

import (
	"sync/atomic"

	"github.com/Norgate-AV/hotpin/internal/keys"
)

// Verdict tells the OS hook whether to forward an event to the next hook.
type Verdict int

const (
	Pass Verdict = iota
	Consume
)

func (v Verdict) String() string {
	if v == Consume {
		return "consume"
	}

	return "pass"
}

// KeyEvent is one low-level keyboard transition.
type KeyEvent struct {
	VK       keys.Code
	Down     bool
	Injected bool // LLKHF_INJECTED or LLKHF_LOWER_IL_INJECTED
}

// keyboardInterceptor runs on the hook pump thread and must never block.
type keyboardInterceptor struct {
	tracker    *Tracker
	registry   *Registry
	dispatcher *Dispatcher

	// keys whose press was consumed, indexed by virtual key
	swallowed [256]atomic.Bool
}

func (k *keyboardInterceptor) handle(ev KeyEvent) Verdict {
	// synthesized input, including our own "send" actions, is ignored entirely
	if ev.Injected {
		return Pass
	}

	if k.tracker.OnKeyTransition(ev.VK, ev.Down) || ev.VK >= keys.Code(len(k.swallowed)) {
		return Pass
	}

	if !ev.Down {
		// the release of a consumed press must not reach the focused window
		if k.swallowed[ev.VK].Swap(false) {
			return Consume
		}

		return Pass
	}

	action, ok := k.registry.LookupKey(k.tracker.CurrentMask(), ev.VK)
	if !ok {
		return Pass
	}

	k.dispatcher.Post(SourceKeyboard, action)
	k.swallowed[ev.VK].Store(true)

	return Consume
}
