package hook

import (
	"sync/atomic"

	"github.com/Norgate-AV/hotpin/internal/keys"
)

// MouseEvent is one side-button transition. Other mouse messages never reach
// the interceptor.
type MouseEvent struct {
	Button   keys.Button
	Down     bool
	Injected bool // LLMHF_INJECTED
}

type mouseInterceptor struct {
	tracker    *Tracker
	registry   *Registry
	dispatcher *Dispatcher

	// pressed side buttons that were consumed, indexed by keys.Button
	swallowed [3]atomic.Bool
}

func (m *mouseInterceptor) handle(ev MouseEvent) Verdict {
	if ev.Injected || (ev.Button != keys.ButtonX1 && ev.Button != keys.ButtonX2) {
		return Pass
	}

	if !ev.Down {
		// browsers navigate on release, so the release of a consumed press goes too
		if m.swallowed[ev.Button].Swap(false) {
			return Consume
		}

		return Pass
	}

	action, ok := m.registry.LookupButton(m.tracker.CurrentMask(), ev.Button)
	if !ok {
		return Pass
	}

	m.dispatcher.Post(SourceMouse, action)
	m.swallowed[ev.Button].Store(true)

	return Consume
}
