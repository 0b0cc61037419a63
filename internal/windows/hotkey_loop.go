//go:build windows

package windows

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"syscall"
	"time"
	"unsafe"

	sysw "golang.org/x/sys/windows"

	"github.com/Norgate-AV/hotpin/internal/logger"
	"github.com/Norgate-AV/hotpin/internal/timeouts"
)

// HotkeyLoop owns a set of RegisterHotKey registrations and the thread
// message loop that receives their WM_HOTKEY messages.
type HotkeyLoop struct {
	log        logger.LoggerInterface
	threadID   uint32
	registered int
	done       chan struct{}
	closeOnce  sync.Once
	gate       startGate
}

type loopReady struct {
	threadID   uint32
	registered int
	err        error
}

// StartHotkeyLoop registers every hotkey on a dedicated thread. onHotkey is
// called on that thread with the ID of the pressed hotkey and must not block.
// It fails only when no hotkey at all could be registered.
func StartHotkeyLoop(hotkeys []Hotkey, onHotkey func(id int32), log logger.LoggerInterface) (*HotkeyLoop, error) {
	if onHotkey == nil {
		return nil, errors.New("onHotkey callback is required")
	}

	if err := user32.Load(); err != nil {
		return nil, fmt.Errorf("user32.dll is unavailable: %w", err)
	}

	readyCh := make(chan loopReady, 1)
	l := &HotkeyLoop{
		log:  logger.WithComponent(log, "hotkey"),
		done: make(chan struct{}),
	}

	go l.run(hotkeys, onHotkey, readyCh)

	timer := time.NewTimer(timeouts.PumpStartTimeout)
	defer timer.Stop()

	accept := func(ready loopReady) (*HotkeyLoop, error) {
		if ready.err != nil {
			<-l.done
			return nil, ready.err
		}

		l.threadID = ready.threadID
		l.registered = ready.registered

		return l, nil
	}

	select {
	case ready := <-readyCh:
		return accept(ready)
	case <-timer.C:
	}

	switch l.gate.abandon() {
	case gatePublished:
		return accept(<-readyCh)
	case gateInstalling:
		if !waitDone(l.done, timeouts.PumpStopTimeout) {
			l.log.Warn("Hotkey thread still registering after start timeout")
		}
	}

	return nil, fmt.Errorf("hotkey thread did not start within %s", timeouts.PumpStartTimeout)
}

func (l *HotkeyLoop) run(hotkeys []Hotkey, onHotkey func(id int32), readyCh chan<- loopReady) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(l.done)

	if !l.gate.enter() {
		return
	}

	threadID := sysw.GetCurrentThreadId()

	// PeekMessageW forces Windows to create the thread message queue so that
	// PostThreadMessageW in Stop() can deliver WM_QUIT
	var qmsg MSG
	_, _, _ = procPeekMessageW.Call(uintptr(unsafe.Pointer(&qmsg)), 0, 0, 0, PM_NOREMOVE)

	var registered []int32

	// registrations belong to this thread and must be released on it
	defer func() {
		for _, id := range registered {
			if err := unregisterHotKey(id); err != nil {
				l.log.Error("UnregisterHotKey on loop exit failed", slog.Int("id", int(id)), slog.Any("error", err))
			}
		}
	}()

	for _, hk := range hotkeys {
		if err := registerHotKey(hk); err != nil {
			l.log.Warn("RegisterHotKey failed, combination may be owned by another application",
				slog.Int("id", int(hk.ID)),
				slog.Uint64("vk", uint64(hk.VK)),
				slog.Any("error", err),
			)

			continue
		}

		registered = append(registered, hk.ID)
	}

	if !l.gate.publish() {
		return
	}

	if len(registered) == 0 {
		readyCh <- loopReady{err: fmt.Errorf("none of %d hotkeys could be registered", len(hotkeys))}
		return
	}

	readyCh <- loopReady{threadID: threadID, registered: len(registered)}

	for {
		var msg MSG
		ret, _, err := procGetMessageW.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0)

		switch int32(ret) {
		case -1:
			l.log.Warn("GetMessageW failed, hotkey loop exiting", slog.Any("error", err))
			return
		case 0:
			return
		}

		if msg.Message == WM_HOTKEY {
			onHotkey(int32(msg.WParam))
			continue
		}

		_, _, _ = procTranslateMessage.Call(uintptr(unsafe.Pointer(&msg)))
		_, _, _ = procDispatchMessageW.Call(uintptr(unsafe.Pointer(&msg)))
	}
}

// Registered returns how many hotkeys were accepted by the OS
func (l *HotkeyLoop) Registered() int { return l.registered }

// Stop posts WM_QUIT and waits for the loop to unregister and exit
func (l *HotkeyLoop) Stop() {
	l.closeOnce.Do(func() {
		if err := postQuit(l.threadID); err != nil {
			l.log.Warn("Could not post WM_QUIT to hotkey loop", slog.Any("error", err))
		}

		if !waitDone(l.done, timeouts.PumpStopTimeout) {
			l.log.Warn("Hotkey loop did not stop in time, thread may leak",
				slog.Uint64("thread", uint64(l.threadID)),
			)
		}
	})
}

func registerHotKey(hk Hotkey) error {
	const modNoRepeat = 0x4000

	ret, _, err := procRegisterHotKey.Call(0, uintptr(hk.ID), uintptr(hk.Mods|modNoRepeat), uintptr(hk.VK))
	if ret != 0 {
		return nil
	}

	if err == syscall.Errno(0) {
		return errors.New("RegisterHotKey failed")
	}

	return err
}

func unregisterHotKey(id int32) error {
	ret, _, err := procUnregisterHotKey.Call(0, uintptr(id))
	if ret != 0 {
		return nil
	}

	if err == syscall.Errno(0) {
		return errors.New("UnregisterHotKey failed")
	}

	return err
}
