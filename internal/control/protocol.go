// Package control lets a hotpin CLI invocation drive the running daemon over
// a per-user named pipe. Each connection carries one newline-terminated JSON
// request and one newline-terminated JSON response.
package control

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/user"
	"strings"

	"github.com/Norgate-AV/hotpin/internal/hook"
	"github.com/Norgate-AV/hotpin/internal/interfaces"
	"github.com/Norgate-AV/hotpin/internal/topmost"
	"github.com/Norgate-AV/hotpin/internal/windows"
)

const (
	maxRequestBytes  = 16 * 1024
	maxResponseBytes = 1024 * 1024

	pipePrefix = `\\.\pipe\hotpin-`
)

// Commands understood by the daemon
const (
	CmdPing    = "ping"
	CmdStatus  = "status"
	CmdWindows = "windows"
	CmdPin     = "pin"
	CmdUnpin   = "unpin"
	CmdTopmost = "topmost"
	CmdFocus   = "focus"
	CmdReload  = "reload"
)

// Error codes carried in Response.Code
const (
	CodeNotFound   = "not_found"
	CodeBadRequest = "bad_request"
	CodeFailed     = "failed"
)

var (
	// ErrDaemonUnavailable means no daemon is listening on the pipe
	ErrDaemonUnavailable = errors.New("hotpin daemon is not running")
	// ErrRemote wraps an error reported by the daemon
	ErrRemote = errors.New("daemon error")
)

// Request is one control command
type Request struct {
	Command string `json:"command"`
	Title   string `json:"title,omitempty"`
	On      bool   `json:"on,omitempty"`
}

// Response answers a Request
type Response struct {
	OK      bool                    `json:"ok"`
	Error   string                  `json:"error,omitempty"`
	Code    string                  `json:"code,omitempty"`
	Windows []interfaces.WindowInfo `json:"windows,omitempty"`
	Status  *DaemonStatus           `json:"status,omitempty"`
}

// DaemonStatus is the payload of a status command
type DaemonStatus struct {
	Version    string                `json:"version"`
	Pid        int                   `json:"pid"`
	ConfigPath string                `json:"configPath"`
	Elevated   bool                  `json:"elevated"`
	Hooks      hook.Status           `json:"hooks"`
	Watches    []topmost.WatchStatus `json:"watches"`
}

// Handler executes requests inside the daemon
type Handler interface {
	Handle(req Request) Response
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(req Request) Response

func (f HandlerFunc) Handle(req Request) Response { return f(req) }

// Failure builds an error response, classifying well-known errors
func Failure(err error) Response {
	code := CodeFailed
	switch {
	case errors.Is(err, topmost.ErrWindowNotFound):
		code = CodeNotFound
	case errors.Is(err, topmost.ErrEmptyTitle):
		code = CodeBadRequest
	}

	return Response{Error: err.Error(), Code: code}
}

// Err converts a failed response back into an error. Not-found errors wrap
// topmost.ErrWindowNotFound so callers can test for them.
func (r Response) Err() error {
	if r.OK {
		return nil
	}

	switch r.Code {
	case CodeNotFound:
		return fmt.Errorf("%w: %w: %s", ErrRemote, topmost.ErrWindowNotFound, r.Error)
	case CodeBadRequest:
		return fmt.Errorf("%w: %w: %s", ErrRemote, topmost.ErrEmptyTitle, r.Error)
	default:
		return fmt.Errorf("%w: %s", ErrRemote, r.Error)
	}
}

// DefaultPipeName returns the per-user pipe path
func DefaultPipeName() string {
	username := strings.TrimSpace(os.Getenv("USERNAME"))
	if username == "" {
		if current, err := user.Current(); err == nil {
			username = current.Username
		}
	}

	return pipePrefix + windows.SanitizeName(username)
}

func writeFrame(w io.Writer, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}

	_, err = w.Write(append(raw, '\n'))
	return err
}

func readFrame(reader *bufio.Reader, maxBytes int) ([]byte, error) {
	raw, err := reader.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("frame exceeds %d bytes", maxBytes)
	}

	if errors.Is(err, io.EOF) {
		if len(raw) == 0 {
			return nil, io.EOF
		}

		return raw, nil
	}

	if err != nil {
		return nil, err
	}

	return raw, nil
}

func decodeRequest(raw []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return Request{}, err
	}

	if req.Command == "" {
		return Request{}, errors.New("missing command")
	}

	return req, nil
}
