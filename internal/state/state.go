package state

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// State is the dashboard's runtime knobs: which venue's order book the push
// loop refreshes, how many ladder rows the UI shows, and whether the
// upstreams were reachable on the last cycle. Everything else in the system
// is stateless per render.
type State struct {
	activeMu sync.RWMutex
	venue    string
	pair     string

	depthRows atomic.Int64
	reachable atomic.Bool

	refreshMu   sync.Mutex
	lastRefresh time.Time
}

func New(defaultVenue, defaultPair string, depthRows int) *State {
	s := &State{}
	if depthRows < 1 {
		depthRows = 20
	}
	s.depthRows.Store(int64(depthRows))
	s.venue = strings.ToLower(strings.TrimSpace(defaultVenue))
	s.pair = strings.ToUpper(strings.TrimSpace(defaultPair))
	return s
}

// SetBook canonicalizes and stores the active venue/pair, returning what
// was stored. Empty arguments leave the corresponding field unchanged.
func (s *State) SetBook(venue, pair string) (string, string) {
	v := strings.ToLower(strings.TrimSpace(venue))
	p := strings.ToUpper(strings.TrimSpace(pair))
	s.activeMu.Lock()
	defer s.activeMu.Unlock()
	if v != "" {
		s.venue = v
	}
	if p != "" {
		s.pair = p
	}
	return s.venue, s.pair
}

// Book returns the active venue and pair.
func (s *State) Book() (string, string) {
	s.activeMu.RLock()
	defer s.activeMu.RUnlock()
	return s.venue, s.pair
}

func (s *State) DepthRows() int {
	return int(s.depthRows.Load())
}

func (s *State) SetDepthRows(n int) {
	if n < 1 {
		n = 1
	}
	s.depthRows.Store(int64(n))
}

func (s *State) SetReachable(v bool) { s.reachable.Store(v) }
func (s *State) Reachable() bool     { return s.reachable.Load() }

func (s *State) MarkRefreshed(t time.Time) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	s.lastRefresh = t
}

func (s *State) LastRefresh() time.Time {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	return s.lastRefresh
}
