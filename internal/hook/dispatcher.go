package hook

import (
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/Norgate-AV/hotpin/internal/logger"
)

// Source says which interceptor produced a dispatch
type Source string

const (
	SourceKeyboard Source = "keyboard"
	SourceMouse    Source = "mouse"
	SourceHotkey   Source = "hotkey"
)

type dispatch struct {
	source Source
	action string
}

// Dispatcher hands matched actions from the OS input thread to host code.
// Post never blocks; the channel is never closed so a late Post from a hook
// callback cannot panic.
type Dispatcher struct {
	ch       chan dispatch
	stop     chan struct{}
	done     chan struct{}
	closed   atomic.Bool
	dropped  atomic.Uint64
	once     sync.Once
	onAction func(string)
	log      logger.LoggerInterface
}

// NewDispatcher starts the consumer goroutine. size is the queue capacity.
func NewDispatcher(size int, onAction func(string), log logger.LoggerInterface) *Dispatcher {
	if size < 1 {
		size = 1
	}

	d := &Dispatcher{
		ch:       make(chan dispatch, size),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		onAction: onAction,
		log:      log,
	}

	go d.run()

	return d
}

// Post queues an action. It returns false when the dispatch was dropped
// because the queue is full or the dispatcher is closed.
func (d *Dispatcher) Post(source Source, action string) bool {
	if d.closed.Load() {
		d.dropped.Add(1)
		return false
	}

	select {
	case d.ch <- dispatch{source: source, action: action}:
		return true
	default:
		d.dropped.Add(1)
		return false
	}
}

// Dropped returns how many dispatches were discarded
func (d *Dispatcher) Dropped() uint64 {
	return d.dropped.Load()
}

// Close stops the consumer and waits for it to exit. Queued dispatches are discarded.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		d.closed.Store(true)
		close(d.stop)
	})

	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)

	for {
		select {
		case <-d.stop:
			return
		case ev := <-d.ch:
			if d.closed.Load() {
				return
			}

			d.deliver(ev)
		}
	}
}

func (d *Dispatcher) deliver(ev dispatch) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("Action handler panicked",
				slog.String("action", ev.action),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
		}
	}()

	d.log.Debug("Dispatching action",
		slog.String("action", ev.action),
		slog.String("source", string(ev.source)),
	)

	d.onAction(ev.action)
}
