// Package poster provides the container plugin that covers the playback
// with a still image until playback starts.
package poster

import (
	"playerkit/internal/events"
	"playerkit/internal/loader"
	"playerkit/internal/options"
	"playerkit/internal/surface"
	"playerkit/pkg/plugin"

	"go.uber.org/zap"
)

// Name is the registered plugin name
const Name = "poster"

// Poster is shown while the container is not playing and hidden once it
// plays. Sources that cannot play hide it for good.
type Poster struct {
	container plugin.ContainerContext
	logger    *zap.Logger
	view      *surface.View
	subs      []events.Subscription
}

// Register adds the poster to the loader's container plugins
func Register(l *loader.Loader) error {
	return l.RegisterContainerPlugin(plugin.PluginInfo[plugin.ContainerContext]{
		Name:        Name,
		Description: "Still image shown before playback",
		Priority:    plugin.PriorityDefault,
		Order:       20,
		Factory: func(ctx plugin.ContainerContext) (plugin.Plugin, error) {
			return New(ctx), nil
		},
	})
}

// New creates a poster bound to a container
func New(ctx plugin.ContainerContext) *Poster {
	p := &Poster{
		container: ctx,
		logger:    ctx.Logger().Named("poster"),
		view:      surface.NewView(Name),
	}

	p.subs = []events.Subscription{
		ctx.On(events.Playing, func(events.Payload) { p.hide() }),
		ctx.On(events.Stopped, func(events.Payload) { p.show() }),
		ctx.On(events.Ended, func(events.Payload) { p.show() }),
		ctx.On(events.DidLoadSource, func(events.Payload) { p.show() }),
		ctx.On(events.DidNotLoadSource, func(events.Payload) { p.hide() }),
	}
	return p
}

func (p *Poster) Name() string {
	return Name
}

func (p *Poster) View() *surface.View {
	return p.view
}

// Render hides the poster when the container is already playing
func (p *Poster) Render() {
	if p.container.IsPlaying() {
		p.hide()
	}
}

// Destroy stops following the container
func (p *Poster) Destroy() {
	for _, sub := range p.subs {
		sub.Unsubscribe()
	}
	p.subs = nil
	p.view.RemoveFromParent()
}

// URL returns the image configured with the poster option
func (p *Poster) URL() string {
	return p.container.Options().String(options.Poster)
}

// Visible reports whether the poster is shown
func (p *Poster) Visible() bool {
	return !p.view.Hidden()
}

func (p *Poster) show() {
	p.view.SetHidden(false)
}

func (p *Poster) hide() {
	if p.view.Hidden() {
		return
	}
	p.view.SetHidden(true)
	p.logger.Debug("Poster hidden", zap.String("poster", p.URL()))
	p.container.Trigger(events.PosterHidden, nil)
}
