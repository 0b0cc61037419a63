package app

import (
	"fmt"
	"log/slog"

	"github.com/Norgate-AV/hotpin/internal/control"
	"github.com/Norgate-AV/hotpin/internal/topmost"
)

// Handle answers one control request
func (d *Daemon) Handle(req control.Request) control.Response {
	d.log.Debug("Handling control command", slog.String("command", req.Command))

	var err error

	switch req.Command {
	case control.CmdPing:
	case control.CmdStatus:
		st := d.Status()
		return control.Response{OK: true, Status: &st}

	case control.CmdWindows:
		return control.Response{OK: true, Windows: d.windows.ListVisibleWindows()}

	case control.CmdPin:
		err = d.windows.StartMonitoring(req.Title)

	case control.CmdUnpin:
		if !d.windows.StopMonitoring(req.Title) {
			err = fmt.Errorf("%w: %q", topmost.ErrWindowNotFound, req.Title)
		}

	case control.CmdTopmost:
		err = d.windows.SetTopmost(req.Title, req.On)

	case control.CmdFocus:
		err = d.windows.BringToForeground(req.Title)

	case control.CmdReload:
		err = d.Reload()

	default:
		return control.Response{Error: fmt.Sprintf("unknown command %q", req.Command), Code: control.CodeBadRequest}
	}

	if err != nil {
		return control.Failure(err)
	}

	return control.Response{OK: true}
}
