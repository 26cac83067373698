package api

import (
	"context"
	"errors"
	"fmt"

	"playerkit/internal/core"
)

// Control actions
const (
	ActionPlay     = "play"
	ActionPause    = "pause"
	ActionStop     = "stop"
	ActionSeek     = "seek"
	ActionNext     = "next"
	ActionPrevious = "previous"
	ActionLoad     = "load"
)

var (
	// ErrInvalidControl is returned for malformed control requests
	ErrInvalidControl = errors.New("invalid control request")

	// ErrNoPlayer is returned when no core is running
	ErrNoPlayer = errors.New("no player running")
)

// ControlRequest is the body of POST /api/control
type ControlRequest struct {
	Action   string  `json:"action"`
	Position float64 `json:"position,omitempty"`
	Source   string  `json:"source,omitempty"`
	MimeType string  `json:"mimeType,omitempty"`
}

// Validate checks the request without touching the player
func (r ControlRequest) Validate() error {
	switch r.Action {
	case ActionPlay, ActionPause, ActionStop, ActionNext, ActionPrevious:
		return nil
	case ActionSeek:
		if r.Position < 0 {
			return fmt.Errorf("%w: negative position %v", ErrInvalidControl, r.Position)
		}
		return nil
	case ActionLoad:
		if r.Source == "" {
			return fmt.Errorf("%w: load needs a source", ErrInvalidControl)
		}
		return nil
	case "":
		return fmt.Errorf("%w: missing action", ErrInvalidControl)
	default:
		return fmt.Errorf("%w: unknown action %q", ErrInvalidControl, r.Action)
	}
}

// Controller applies control requests to the player
type Controller interface {
	Control(ctx context.Context, req ControlRequest) error
}

// Caller runs a task on the control thread and waits for it
type Caller interface {
	Call(ctx context.Context, task func()) error
}

// CoreController applies requests to the current core on the control thread
type CoreController struct {
	caller  Caller
	current func() *core.Core
}

// NewCoreController creates a controller. current is only called on the
// control thread.
func NewCoreController(caller Caller, current func() *core.Core) *CoreController {
	return &CoreController{caller: caller, current: current}
}

// Control validates req and applies it
func (c *CoreController) Control(ctx context.Context, req ControlRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	var result error
	err := c.caller.Call(ctx, func() {
		result = apply(c.current(), req)
	})
	if err != nil {
		return fmt.Errorf("failed to reach player: %w", err)
	}
	return result
}

func apply(p *core.Core, req ControlRequest) error {
	if p == nil {
		return ErrNoPlayer
	}

	switch req.Action {
	case ActionNext:
		return p.Next()
	case ActionPrevious:
		return p.Previous()
	case ActionLoad:
		p.Load(req.Source, req.MimeType)
		return nil
	}

	active := p.ActiveContainer()
	if active == nil {
		return fmt.Errorf("%s: %w", req.Action, core.ErrNoContainer)
	}
	switch req.Action {
	case ActionPlay:
		active.Play()
	case ActionPause:
		active.Pause()
	case ActionStop:
		active.Stop()
	case ActionSeek:
		active.Seek(req.Position)
	}
	return nil
}
