package windows

import "sync"

type gateState int

const (
	gatePending gateState = iota
	gateInstalling
	gatePublished
	gateAbandoned
)

// startGate orders a pump thread's start-up against its starter giving up.
// The thread calls enter before installing anything and publish once its
// result is ready; the starter calls abandon when it stops waiting. Whoever
// moves first decides: a thread that loses must release what it installed
// and exit without entering its message loop.
type startGate struct {
	mu    sync.Mutex
	state gateState
}

// enter reports whether the thread may install. False means the starter
// has already given up.
func (g *startGate) enter() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != gatePending {
		return false
	}

	g.state = gateInstalling
	return true
}

// publish reports whether the starter is still waiting for the result
func (g *startGate) publish() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == gateAbandoned {
		return false
	}

	g.state = gatePublished
	return true
}

// abandon marks the start as given up unless a result was already published,
// and returns the state it found. gatePublished means the result is waiting
// to be read; gateInstalling means the thread is mid-install and will unwind
// on its own once it tries to publish.
func (g *startGate) abandon() gateState {
	g.mu.Lock()
	defer g.mu.Unlock()

	prev := g.state
	if prev != gatePublished {
		g.state = gateAbandoned
	}

	return prev
}
