package hook

import (
	"log/slog"
	"sort"

	"github.com/Norgate-AV/hotpin/internal/keys"
	"github.com/Norgate-AV/hotpin/internal/logger"
)

// Chord is an exact modifier mask plus a key code or side button.
// A held superset of Mods does not match.
type Chord struct {
	Mods keys.Modifier
	Code uint32
}

// KeyBinding is a resolved keyboard binding, used to register legacy hotkeys.
type KeyBinding struct {
	Action string
	Mods   keys.Modifier
	Key    keys.Code
}

// Registry maps chords to action names. It is never mutated after BuildRegistry.
type Registry struct {
	keys    map[Chord]string
	buttons map[Chord]string
	combos  map[string]keys.Combo
}

// BuildRegistry parses every binding and returns the registry plus the names of
// actions whose combination could not be used. Actions are visited in sorted
// order so a chord claimed twice always resolves to the same action.
func BuildRegistry(bindings map[string]string, log logger.LoggerInterface) (*Registry, []string) {
	r := &Registry{
		keys:    make(map[Chord]string),
		buttons: make(map[Chord]string),
		combos:  make(map[string]keys.Combo),
	}

	actions := make([]string, 0, len(bindings))
	for action := range bindings {
		actions = append(actions, action)
	}

	sort.Strings(actions)

	var dropped []string

	for _, action := range actions {
		accel := bindings[action]

		combo, ok := keys.Parse(accel)
		if !ok {
			log.Warn("Ignoring shortcut with unrecognised key",
				slog.String("action", action),
				slog.String("combo", accel),
			)

			dropped = append(dropped, action)
			continue
		}

		table := r.keys
		chord := Chord{Mods: combo.Mods, Code: uint32(combo.Key)}
		if combo.IsMouse() {
			table = r.buttons
			chord.Code = uint32(combo.Button)
		}

		if owner, taken := table[chord]; taken {
			log.Warn("Ignoring duplicate shortcut",
				slog.String("action", action),
				slog.String("combo", combo.String()),
				slog.String("boundTo", owner),
			)

			dropped = append(dropped, action)
			continue
		}

		table[chord] = action
		r.combos[action] = combo
	}

	return r, dropped
}

// LookupKey finds the action bound to an exact modifier mask and key
func (r *Registry) LookupKey(mods keys.Modifier, vk keys.Code) (string, bool) {
	action, ok := r.keys[Chord{Mods: mods, Code: uint32(vk)}]
	return action, ok
}

// LookupButton finds the action bound to an exact modifier mask and side button
func (r *Registry) LookupButton(mods keys.Modifier, b keys.Button) (string, bool) {
	action, ok := r.buttons[Chord{Mods: mods, Code: uint32(b)}]
	return action, ok
}

func (r *Registry) KeyCount() int    { return len(r.keys) }
func (r *Registry) ButtonCount() int { return len(r.buttons) }
func (r *Registry) Empty() bool      { return len(r.keys) == 0 && len(r.buttons) == 0 }

// KeyBindings returns the keyboard bindings sorted by action name
func (r *Registry) KeyBindings() []KeyBinding {
	out := make([]KeyBinding, 0, len(r.keys))
	for chord, action := range r.keys {
		out = append(out, KeyBinding{Action: action, Mods: chord.Mods, Key: keys.Code(chord.Code)})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Action < out[j].Action })
	return out
}

// Combos returns the canonical combination string for every registered action.
func (r *Registry) Combos() map[string]string {
	out := make(map[string]string, len(r.combos))
	for action, combo := range r.combos {
		out[action] = combo.String()
	}

	return out
}
