// Package mediacontrol provides the container plugin that exposes play/pause
// and the current time of the container's playback.
package mediacontrol

import (
	"fmt"
	"math"

	"playerkit/internal/events"
	"playerkit/internal/loader"
	"playerkit/internal/surface"
	"playerkit/pkg/plugin"

	"go.uber.org/zap"
)

// Name is the registered plugin name
const Name = "media_control"

// MediaControl shows transport controls while the container allows it.
// It starts hidden and follows enableMediaControl/disableMediaControl.
type MediaControl struct {
	container plugin.ContainerContext
	logger    *zap.Logger
	view      *surface.View
	subs      []events.Subscription
	playing   bool
	position  float64
	duration  float64
}

// Register adds the media control to the loader's container plugins
func Register(l *loader.Loader) error {
	return l.RegisterContainerPlugin(plugin.PluginInfo[plugin.ContainerContext]{
		Name:        Name,
		Description: "Play/pause control and current time",
		Priority:    plugin.PriorityDefault,
		Order:       80,
		Factory: func(ctx plugin.ContainerContext) (plugin.Plugin, error) {
			return New(ctx), nil
		},
	})
}

// New creates a media control bound to a container
func New(ctx plugin.ContainerContext) *MediaControl {
	m := &MediaControl{
		container: ctx,
		logger:    ctx.Logger().Named("media_control"),
		view:      surface.NewView(Name),
		playing:   ctx.IsPlaying(),
	}
	m.view.SetHidden(!ctx.MediaControlEnabled())

	m.subs = []events.Subscription{
		ctx.On(events.EnableMediaControl, func(events.Payload) { m.Show() }),
		ctx.On(events.DisableMediaControl, func(events.Payload) { m.Hide() }),
		ctx.On(events.Playing, func(events.Payload) { m.playing = true }),
		ctx.On(events.Paused, func(events.Payload) { m.playing = false }),
		ctx.On(events.Stopped, func(events.Payload) {
			m.playing = false
			m.position = 0
		}),
		ctx.On(events.Ended, func(events.Payload) { m.playing = false }),
		ctx.On(events.Ready, func(payload events.Payload) {
			m.duration = payload.Float(events.KeyDuration)
		}),
		ctx.On(events.TimeUpdated, func(payload events.Payload) {
			m.position = payload.Float(events.KeyPosition)
			if d := payload.Float(events.KeyDuration); d > 0 {
				m.duration = d
			}
		}),
		ctx.On(events.DidChangePlayback, func(events.Payload) {
			m.playing = false
			m.position = 0
			m.duration = 0
		}),
	}
	return m
}

func (m *MediaControl) Name() string {
	return Name
}

func (m *MediaControl) View() *surface.View {
	return m.view
}

// Render has nothing to lay out; visibility follows the container events
func (m *MediaControl) Render() {}

// Destroy stops following the container
func (m *MediaControl) Destroy() {
	for _, sub := range m.subs {
		sub.Unsubscribe()
	}
	m.subs = nil
	m.view.RemoveFromParent()
}

// Show makes the controls visible
func (m *MediaControl) Show() {
	m.view.SetHidden(false)
}

// Hide hides the controls
func (m *MediaControl) Hide() {
	m.view.SetHidden(true)
}

// Visible reports whether the controls are shown
func (m *MediaControl) Visible() bool {
	return !m.view.Hidden()
}

// TogglePlay pauses a playing container and plays a paused one, then fires
// mediaControlPaused or mediaControlPlaying on the container.
func (m *MediaControl) TogglePlay() {
	if m.container.IsPlaying() {
		m.container.Pause()
		m.playing = false
		m.logger.Debug("Pause requested")
		m.container.Trigger(events.MediaControlPaused, nil)
		return
	}

	m.container.Play()
	m.playing = true
	m.logger.Debug("Play requested")
	m.container.Trigger(events.MediaControlPlaying, nil)
}

// Playing reports the state of the play/pause button
func (m *MediaControl) Playing() bool {
	return m.playing
}

// CurrentTime returns the position label
func (m *MediaControl) CurrentTime() string {
	return FormatTime(m.position)
}

// Duration returns the duration label
func (m *MediaControl) Duration() string {
	return FormatTime(m.duration)
}

// FormatTime renders seconds as mm:ss, or h:mm:ss from one hour on
func FormatTime(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		seconds = 0
	}
	total := int(seconds)
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
