//go:build windows

package windows

import (
	"github.com/Norgate-AV/hotpin/internal/logger"
)

// Client provides methods for interacting with Windows APIs
// It composes specialized managers for different categories of functionality
type Client struct {
	log      logger.LoggerInterface
	Window   *windowManager
	Keyboard *keyboardInjector
}

// NewClient creates a new Windows API client
func NewClient(log logger.LoggerInterface) *Client {
	log = logger.WithComponent(log, "win32")

	return &Client{
		log:      log,
		Window:   newWindowManager(log),
		Keyboard: newKeyboardInjector(log),
	}
}
