// Package events provides the publish/subscribe bus shared by every entity of
// the player graph, together with the event vocabulary they exchange.
package events

import "sort"

// Container and core lifecycle events
const (
	WillLoadSource      = "willLoadSource"
	DidLoadSource       = "didLoadSource"
	DidNotLoadSource    = "didNotLoadSource"
	WillChangePlayback  = "willChangePlayback"
	DidChangePlayback   = "didChangePlayback"
	EnableMediaControl  = "enableMediaControl"
	DisableMediaControl = "disableMediaControl"

	WillChangeActiveContainer = "willChangeActiveContainer"
	DidChangeActiveContainer  = "didChangeActiveContainer"
	WillChangeActivePlayback  = "willChangeActivePlayback"
	DidChangeActivePlayback   = "didChangeActivePlayback"
)

// Events emitted by playbacks
const (
	Ready       = "ready"
	Playing     = "playing"
	Paused      = "paused"
	Stopped     = "stopped"
	Ended       = "ended"
	TimeUpdated = "timeUpdated"
	Buffering   = "buffering"
	BufferFull  = "bufferFull"
	Error       = "error"
)

// Events emitted by the media control plugin
const (
	MediaControlPlaying = "mediaControlPlaying"
	MediaControlPaused  = "mediaControlPaused"
)

// Internal events, never forwarded outside the process
const (
	ContainerDestroyed = "containerDestroyed"
	CoreDestroyed      = "coreDestroyed"
	PosterHidden       = "posterHidden"
)

// PlaybackEvents lists the events a playback emits, in the order a container
// subscribes to them.
var PlaybackEvents = []string{
	Ready,
	Playing,
	Paused,
	Stopped,
	Ended,
	TimeUpdated,
	Buffering,
	BufferFull,
	Error,
}

var public = map[string]struct{}{
	WillLoadSource:            {},
	DidLoadSource:             {},
	DidNotLoadSource:          {},
	WillChangePlayback:        {},
	DidChangePlayback:         {},
	EnableMediaControl:        {},
	DisableMediaControl:       {},
	WillChangeActiveContainer: {},
	DidChangeActiveContainer:  {},
	WillChangeActivePlayback:  {},
	DidChangeActivePlayback:   {},
	Ready:                     {},
	Playing:                   {},
	Paused:                    {},
	Stopped:                   {},
	Ended:                     {},
	TimeUpdated:               {},
	Buffering:                 {},
	BufferFull:                {},
	Error:                     {},
	MediaControlPlaying:       {},
	MediaControlPaused:        {},
}

// IsPublic reports whether an event belongs to the observable vocabulary
func IsPublic(event string) bool {
	_, ok := public[event]
	return ok
}

// PublicEvents returns the observable vocabulary, sorted by name
func PublicEvents() []string {
	names := make([]string, 0, len(public))
	for name := range public {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
