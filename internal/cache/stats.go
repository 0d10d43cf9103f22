package cache

import (
	"sync"
	"time"
)

// Stats tracks counters for a single cache instance. It is safe for
// concurrent use.
type Stats struct {
	mu        sync.Mutex
	hits      uint64
	misses    uint64
	sets      uint64
	deletes   uint64
	evictions uint64
	startedAt time.Time
}

// NewStats returns a zeroed counter set with the uptime clock started.
func NewStats() *Stats {
	return &Stats{startedAt: time.Now()}
}

func (s *Stats) Hit() {
	s.mu.Lock()
	s.hits++
	s.mu.Unlock()
}

func (s *Stats) Miss() {
	s.mu.Lock()
	s.misses++
	s.mu.Unlock()
}

func (s *Stats) Set() {
	s.mu.Lock()
	s.sets++
	s.mu.Unlock()
}

func (s *Stats) Delete() {
	s.mu.Lock()
	s.deletes++
	s.mu.Unlock()
}

func (s *Stats) Eviction() {
	s.mu.Lock()
	s.evictions++
	s.mu.Unlock()
}

// Snapshot is a point-in-time copy of the counters plus derived values.
type Snapshot struct {
	Hits      uint64        `json:"hits"`
	Misses    uint64        `json:"misses"`
	Sets      uint64        `json:"sets"`
	Deletes   uint64        `json:"deletes"`
	Evictions uint64        `json:"evictions"`
	HitRate   float64       `json:"hit_rate"`
	Uptime    time.Duration `json:"uptime"`
}

// Snapshot returns a consistent copy of the counters. HitRate is 0 when
// no lookups have happened yet.
func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Hits:      s.hits,
		Misses:    s.misses,
		Sets:      s.sets,
		Deletes:   s.deletes,
		Evictions: s.evictions,
		Uptime:    time.Since(s.startedAt),
	}
	if total := s.hits + s.misses; total > 0 {
		snap.HitRate = float64(s.hits) / float64(total)
	}
	return snap
}
