package control

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/Norgate-AV/hotpin/internal/interfaces"
	"github.com/Norgate-AV/hotpin/internal/timeouts"
)

// Dialer opens a connection to the daemon
type Dialer func() (net.Conn, error)

// Client sends control requests to a running daemon
type Client struct {
	dial      Dialer
	ioTimeout time.Duration
}

// NewClient dials the named pipe
func NewClient(pipeName string) *Client {
	return NewClientWithDialer(func() (net.Conn, error) {
		return Dial(pipeName, timeouts.PipeDialTimeout)
	})
}

func NewClientWithDialer(dial Dialer) *Client {
	return &Client{dial: dial, ioTimeout: timeouts.PipeIOTimeout}
}

// Do sends req and returns the daemon's response. A dial failure is reported
// as ErrDaemonUnavailable.
func (c *Client) Do(req Request) (Response, error) {
	conn, err := c.dial()
	if err != nil {
		return Response{}, fmt.Errorf("%w: %w", ErrDaemonUnavailable, err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(c.ioTimeout)); err != nil {
		return Response{}, fmt.Errorf("set deadline: %w", err)
	}

	if err := writeFrame(conn, req); err != nil {
		return Response{}, fmt.Errorf("send %s: %w", req.Command, err)
	}

	raw, err := readFrame(bufio.NewReaderSize(conn, maxResponseBytes+1), maxResponseBytes)
	if err != nil {
		return Response{}, fmt.Errorf("read %s response: %w", req.Command, err)
	}

	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Response{}, fmt.Errorf("invalid response: %w", err)
	}

	return resp, nil
}

func (c *Client) call(req Request) (Response, error) {
	resp, err := c.Do(req)
	if err != nil {
		return Response{}, err
	}

	return resp, resp.Err()
}

// Ping reports whether a daemon answers
func (c *Client) Ping() error {
	_, err := c.call(Request{Command: CmdPing})
	return err
}

func (c *Client) Status() (*DaemonStatus, error) {
	resp, err := c.call(Request{Command: CmdStatus})
	if err != nil {
		return nil, err
	}

	return resp.Status, nil
}

func (c *Client) Windows() ([]interfaces.WindowInfo, error) {
	resp, err := c.call(Request{Command: CmdWindows})
	return resp.Windows, err
}

func (c *Client) Pin(title string) error {
	_, err := c.call(Request{Command: CmdPin, Title: title})
	return err
}

// Unpin stops monitoring title; an empty title stops every monitor
func (c *Client) Unpin(title string) error {
	_, err := c.call(Request{Command: CmdUnpin, Title: title})
	return err
}

func (c *Client) Topmost(title string, on bool) error {
	_, err := c.call(Request{Command: CmdTopmost, Title: title, On: on})
	return err
}

func (c *Client) Focus(title string) error {
	_, err := c.call(Request{Command: CmdFocus, Title: title})
	return err
}

func (c *Client) Reload() error {
	_, err := c.call(Request{Command: CmdReload})
	return err
}
