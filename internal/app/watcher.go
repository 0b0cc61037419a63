package app

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Norgate-AV/hotpin/internal/logger"
)

// ConfigWatcher calls onChange once a burst of writes to a file settles
type ConfigWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	delay    time.Duration
	onChange func()
	log      logger.LoggerInterface

	mu     sync.Mutex
	timer  *time.Timer
	closed bool

	done chan struct{}
	wg   sync.WaitGroup
}

// WatchConfig watches the directory holding path, since editors and atomic
// saves replace the file rather than write to it in place.
func WatchConfig(path string, delay time.Duration, onChange func(), log logger.LoggerInterface) (*ConfigWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	dir := filepath.Dir(abs)
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	w := &ConfigWatcher{
		path:     abs,
		watcher:  fsw,
		delay:    delay,
		onChange: onChange,
		log:      logger.WithComponent(log, "watcher"),
		done:     make(chan struct{}),
	}

	w.wg.Add(1)
	go w.loop()

	w.log.Debug("Watching config file", slog.String("path", abs))
	return w, nil
}

func (w *ConfigWatcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if !w.matches(ev.Name) {
				continue
			}

			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				w.log.Trace("Config file event", slog.String("op", ev.Op.String()))
				w.schedule()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}

			w.log.Warn("Config watcher error", slog.Any("error", err))
		}
	}
}

// file names are case-insensitive on Windows
func (w *ConfigWatcher) matches(name string) bool {
	return strings.EqualFold(filepath.Clean(name), w.path)
}

func (w *ConfigWatcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}

	if w.timer != nil {
		w.timer.Stop()
	}

	w.timer = time.AfterFunc(w.delay, w.onChange)
}

// Close stops watching. A pending change is discarded.
func (w *ConfigWatcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}

	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	close(w.done)
	err := w.watcher.Close()
	w.wg.Wait()

	return err
}
