package playback

import (
	"playerkit/internal/options"

	"go.uber.org/zap"
)

// NameNoOp is the name of the fallback playback
const NameNoOp = "noop"

// NoOp is returned when no registered playback can handle a source. It never
// plays, reports a zero duration and performs no I/O.
type NoOp struct {
	Base
}

// NewNoOp creates the fallback playback
func NewNoOp(opts *options.Options, logger *zap.Logger) *NoOp {
	return &NoOp{Base: NewBase(NameNoOp, opts, logger)}
}

func (n *NoOp) Render()           {}
func (n *NoOp) Play()             {}
func (n *NoOp) Pause()            {}
func (n *NoOp) Stop()             {}
func (n *NoOp) Seek(float64)      {}
func (n *NoOp) Position() float64 { return 0 }
func (n *NoOp) Duration() float64 { return 0 }

// Destroy detaches the surface and drops listeners
func (n *NoOp) Destroy() {
	n.teardown()
}

// IsNoOp reports whether p is the fallback playback
func IsNoOp(p Playback) bool {
	_, ok := p.(*NoOp)
	return ok
}
