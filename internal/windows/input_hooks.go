//go:build windows

package windows

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
	"unsafe"

	sysw "golang.org/x/sys/windows"

	"github.com/Norgate-AV/hotpin/internal/logger"
	"github.com/Norgate-AV/hotpin/internal/timeouts"
)

// hookTarget is what the process-wide hook procedures forward to. gen
// identifies the pump that installed it.
type hookTarget struct {
	gen     uint64
	handler InputHandler
}

var (
	activeTarget   atomic.Pointer[hookTarget]
	hookGeneration atomic.Uint64

	// created once; syscall callbacks are never released
	keyboardHookProc = sysw.NewCallback(lowLevelKeyboardProc)
	mouseHookProc    = sysw.NewCallback(lowLevelMouseProc)
)

func lowLevelKeyboardProc(nCode int, wParam uintptr, lParam uintptr) uintptr {
	if nCode == HC_ACTION {
		if t := activeTarget.Load(); t != nil {
			kb := (*KBDLLHOOKSTRUCT)(unsafe.Pointer(lParam))
			injected := kb.Flags&(LLKHF_INJECTED|LLKHF_LOWER_IL_INJECTED) != 0

			switch wParam {
			case WM_KEYDOWN, WM_SYSKEYDOWN:
				if t.handler.OnKey(kb.VkCode, true, injected) {
					return 1
				}
			case WM_KEYUP, WM_SYSKEYUP:
				if t.handler.OnKey(kb.VkCode, false, injected) {
					return 1
				}
			}
		}
	}

	ret, _, _ := procCallNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
	return ret
}

func lowLevelMouseProc(nCode int, wParam uintptr, lParam uintptr) uintptr {
	if nCode == HC_ACTION && (wParam == WM_XBUTTONDOWN || wParam == WM_XBUTTONUP) {
		if t := activeTarget.Load(); t != nil {
			ms := (*MSLLHOOKSTRUCT)(unsafe.Pointer(lParam))
			button := ms.MouseData >> 16
			injected := ms.Flags&LLMHF_INJECTED != 0

			if t.handler.OnMouse(button, wParam == WM_XBUTTONDOWN, injected) {
				return 1
			}
		}
	}

	ret, _, _ := procCallNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
	return ret
}

// InputPump is a locked OS thread that owns the low-level hooks and runs
// their message loop. Hook procedures only run inside this thread's
// GetMessageW, so once the thread has exited no callback is in flight.
type InputPump struct {
	log       logger.LoggerInterface
	threadID  uint32
	keyboard  bool
	mouse     bool
	done      chan struct{}
	closeOnce sync.Once
	gate      startGate
}

type pumpReady struct {
	threadID uint32
	keyboard bool
	mouse    bool
	err      error
}

// StartInputHooks starts the pump thread and installs the requested hooks.
// It returns once installation has been attempted. A pump whose hooks all
// failed has already exited; its Installed methods report false.
func StartInputHooks(h InputHandler, keyboard, mouse bool, log logger.LoggerInterface) (*InputPump, error) {
	if h == nil {
		return nil, errors.New("input handler is required")
	}

	if err := user32.Load(); err != nil {
		return nil, fmt.Errorf("user32.dll is unavailable: %w", err)
	}

	readyCh := make(chan pumpReady, 1)
	p := &InputPump{
		log:  logger.WithComponent(log, "pump"),
		done: make(chan struct{}),
	}

	go p.run(h, keyboard, mouse, readyCh)

	timer := time.NewTimer(timeouts.PumpStartTimeout)
	defer timer.Stop()

	accept := func(ready pumpReady) (*InputPump, error) {
		if ready.err != nil {
			<-p.done
			return nil, ready.err
		}

		p.threadID = ready.threadID
		p.keyboard = ready.keyboard
		p.mouse = ready.mouse

		return p, nil
	}

	select {
	case ready := <-readyCh:
		return accept(ready)
	case <-timer.C:
	}

	switch p.gate.abandon() {
	case gatePublished:
		return accept(<-readyCh)
	case gateInstalling:
		// hooks may be live; they must be gone before a caller falls back
		if !waitDone(p.done, timeouts.PumpStopTimeout) {
			p.log.Warn("Input hook thread still installing after start timeout")
		}
	}

	return nil, fmt.Errorf("input hook thread did not start within %s", timeouts.PumpStartTimeout)
}

func (p *InputPump) run(h InputHandler, keyboard, mouse bool, readyCh chan<- pumpReady) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(p.done)

	if !p.gate.enter() {
		return
	}

	threadID := sysw.GetCurrentThreadId()

	// forces the thread message queue into existence so WM_QUIT can be posted
	var qmsg MSG
	_, _, _ = procPeekMessageW.Call(uintptr(unsafe.Pointer(&qmsg)), 0, 0, 0, PM_NOREMOVE)

	target := &hookTarget{gen: hookGeneration.Add(1), handler: h}
	activeTarget.Store(target)

	// only clear the slot if a newer pump has not replaced it
	defer activeTarget.CompareAndSwap(target, nil)

	hMod, _, _ := procGetModuleHandleW.Call(0)

	var kbHook, msHook uintptr

	if keyboard {
		var err error
		kbHook, _, err = procSetWindowsHookExW.Call(WH_KEYBOARD_LL, keyboardHookProc, hMod, 0)
		if kbHook == 0 {
			p.log.Warn("SetWindowsHookEx(WH_KEYBOARD_LL) failed", slog.Any("error", err))
		}
	}

	if mouse {
		var err error
		msHook, _, err = procSetWindowsHookExW.Call(WH_MOUSE_LL, mouseHookProc, hMod, 0)
		if msHook == 0 {
			p.log.Warn("SetWindowsHookEx(WH_MOUSE_LL) failed", slog.Any("error", err))
		}
	}

	defer func() {
		for _, hk := range []uintptr{kbHook, msHook} {
			if hk == 0 {
				continue
			}

			if ret, _, err := procUnhookWindowsHookEx.Call(hk); ret == 0 {
				p.log.Error("UnhookWindowsHookEx failed", slog.Any("error", err))
			}
		}
	}()

	if !p.gate.publish() {
		return
	}

	readyCh <- pumpReady{threadID: threadID, keyboard: kbHook != 0, mouse: msHook != 0}

	if kbHook == 0 && msHook == 0 {
		return
	}

	p.log.Debug("Input hook pump running",
		slog.Uint64("thread", uint64(threadID)),
		slog.Uint64("generation", target.gen),
	)

	for {
		var msg MSG
		ret, _, err := procGetMessageW.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0)

		switch int32(ret) {
		case -1:
			p.log.Warn("GetMessageW failed, input hook pump exiting", slog.Any("error", err))
			return
		case 0:
			return
		}

		_, _, _ = procTranslateMessage.Call(uintptr(unsafe.Pointer(&msg)))
		_, _, _ = procDispatchMessageW.Call(uintptr(unsafe.Pointer(&msg)))
	}
}

func (p *InputPump) KeyboardInstalled() bool { return p.keyboard }
func (p *InputPump) MouseInstalled() bool    { return p.mouse }

// Stop posts WM_QUIT to the pump thread and waits for it to unhook and exit
func (p *InputPump) Stop() {
	p.closeOnce.Do(func() {
		select {
		case <-p.done:
			return
		default:
		}

		if err := postQuit(p.threadID); err != nil {
			p.log.Warn("Could not post WM_QUIT to input hook pump", slog.Any("error", err))
		}

		if !waitDone(p.done, timeouts.PumpStopTimeout) {
			p.log.Warn("Input hook pump did not stop in time, thread may leak",
				slog.Uint64("thread", uint64(p.threadID)),
			)
		}
	})
}

func postQuit(threadID uint32) error {
	if threadID == 0 {
		return errors.New("cannot post WM_QUIT: threadID is 0")
	}

	ret, _, err := procPostThreadMessageW.Call(uintptr(threadID), WM_QUIT, 0, 0)
	if ret != 0 {
		return nil
	}

	if err == syscall.Errno(0) {
		return errors.New("PostThreadMessageW failed")
	}

	return err
}

func waitDone(done <-chan struct{}, timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}
