package topmost

import (
	"strings"

	"github.com/Norgate-AV/hotpin/internal/interfaces"
)

// Locator resolves window titles to handles
type Locator struct {
	wm interfaces.WindowManager
}

func NewLocator(wm interfaces.WindowManager) *Locator {
	return &Locator{wm: wm}
}

// Find returns the first visible window, in z-order, whose title contains
// title. Matching is case-sensitive. An empty title never matches.
func (l *Locator) Find(title string) (interfaces.WindowInfo, bool) {
	if title == "" {
		return interfaces.WindowInfo{}, false
	}

	for _, w := range l.wm.EnumerateWindows() {
		if strings.Contains(w.Title, title) {
			return w, true
		}
	}

	return interfaces.WindowInfo{}, false
}

// FindAll returns every visible window whose title contains title, in
// z-order. An empty title matches nothing.
func (l *Locator) FindAll(title string) []interfaces.WindowInfo {
	if title == "" {
		return nil
	}

	var out []interfaces.WindowInfo
	for _, w := range l.wm.EnumerateWindows() {
		if strings.Contains(w.Title, title) {
			out = append(out, w)
		}
	}

	return out
}
