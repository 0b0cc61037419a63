package topmost_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Norgate-AV/hotpin/internal/testutil"
	"github.com/Norgate-AV/hotpin/internal/topmost"
)

func TestLocator_Find(t *testing.T) {
	t.Parallel()

	wm := testutil.NewMockWindowManager().
		WithWindow(1, "Notepad - a.txt").
		WithWindow(2, "Notepad - b.txt").
		WithWindow(3, "Browser")

	l := topmost.NewLocator(wm)

	tests := []struct {
		name  string
		title string
		hwnd  uintptr
		found bool
	}{
		{"first match in z-order", "Notepad", 1, true},
		{"substring", "b.txt", 2, true},
		{"case sensitive", "browser", 0, false},
		{"empty never matches", "", 0, false},
		{"missing", "Terminal", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, ok := l.Find(tt.title)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.hwnd, info.Hwnd)
		})
	}

	assert.Len(t, l.FindAll("Notepad"), 2)
	assert.Empty(t, l.FindAll(""))
}
