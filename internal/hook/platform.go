package hook

import (
	"github.com/Norgate-AV/hotpin/internal/keys"
	"github.com/Norgate-AV/hotpin/internal/logger"
	"github.com/Norgate-AV/hotpin/internal/windows"
)

// osPlatform installs real hooks through internal/windows
type osPlatform struct {
	log logger.LoggerInterface
}

// NewPlatform returns the Platform backed by the operating system. On
// anything but Windows every Start call fails with windows.ErrUnsupported.
func NewPlatform(log logger.LoggerInterface) Platform {
	return &osPlatform{log: log}
}

// handlerAdapter converts raw hook arguments into interceptor events
type handlerAdapter struct {
	h Handler
}

func (a handlerAdapter) OnKey(vk uint32, down, injected bool) bool {
	return a.h.HandleKey(KeyEvent{VK: keys.Code(vk), Down: down, Injected: injected}) == Consume
}

func (a handlerAdapter) OnMouse(button uint32, down, injected bool) bool {
	return a.h.HandleMouse(MouseEvent{Button: keys.Button(button), Down: down, Injected: injected}) == Consume
}

func (p *osPlatform) StartHooks(h Handler, keyboard, mouse bool) (HookPump, error) {
	pump, err := windows.StartInputHooks(handlerAdapter{h: h}, keyboard, mouse, p.log)
	if err != nil {
		return nil, err
	}

	return pump, nil
}

func (p *osPlatform) StartFallback(bindings []KeyBinding, post func(action string)) (FallbackLoop, error) {
	hotkeys := make([]windows.Hotkey, len(bindings))
	actions := make(map[int32]string, len(bindings))

	for i, b := range bindings {
		id := int32(i + 1)
		hotkeys[i] = windows.Hotkey{ID: id, Mods: uint32(b.Mods), VK: uint32(b.Key)}
		actions[id] = b.Action
	}

	loop, err := windows.StartHotkeyLoop(hotkeys, func(id int32) {
		if action, ok := actions[id]; ok {
			post(action)
		}
	}, p.log)
	if err != nil {
		return nil, err
	}

	return loop, nil
}
