//go:build !windows

package control

import (
	"net"
	"time"

	"github.com/Norgate-AV/hotpin/internal/windows"
)

func Listen(_ string) (net.Listener, error) { return nil, windows.ErrUnsupported }

func Dial(_ string, _ time.Duration) (net.Conn, error) { return nil, windows.ErrUnsupported }
