package eventstream

import (
	"sync"
	"time"
)

// ContainerState describes one container of the playlist
type ContainerState struct {
	Index    int     `json:"index"`
	Source   string  `json:"source"`
	Playback string  `json:"playback"`
	State    string  `json:"state"`
	Position float64 `json:"position"`
	Duration float64 `json:"duration"`
	Playing  bool    `json:"playing"`
}

// Snapshot is the observable state of a core at one point in time
type Snapshot struct {
	CoreID      string           `json:"coreId,omitempty"`
	ActiveIndex int              `json:"activeIndex"`
	Containers  []ContainerState `json:"containers"`
	LastEvent   string           `json:"lastEvent,omitempty"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// State holds the latest snapshot. It is written on the control thread and
// read from any goroutine.
type State struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// NewState creates an empty state
func NewState() *State {
	return &State{
		snapshot: Snapshot{
			ActiveIndex: -1,
			Containers:  []ContainerState{},
		},
	}
}

// Snapshot returns a copy of the current snapshot
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Containers = append([]ContainerState{}, s.snapshot.Containers...)
	return snap
}

func (s *State) set(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snap
}
