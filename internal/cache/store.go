package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Role identifies which pipeline stage a cache instance serves.
type Role string

const (
	RoleEmbedding Role = "embedding"
	RoleAnswer    Role = "answer"
	RoleChunk     Role = "chunk"
)

// Store is a bounded TTL cache for one role. Entries expire after the
// instance TTL and the least recently used entry is evicted once the
// item limit is reached. A zero-value Store is not usable; construct
// with NewStore.
type Store struct {
	role    Role
	lru     *expirable.LRU[string, any]
	ttl     time.Duration
	maxSize int
	stats   *Stats
}

// NewStore creates a cache for the given role holding at most maxSize
// entries, each living for ttl. Evictions are counted on stats.
func NewStore(role Role, maxSize int, ttl time.Duration, stats *Stats) *Store {
	s := &Store{
		role:    role,
		ttl:     ttl,
		maxSize: maxSize,
		stats:   stats,
	}
	s.lru = expirable.NewLRU[string, any](maxSize, func(string, any) {
		stats.Eviction()
	}, ttl)
	return s
}

// Get returns the cached value for key, or (nil, false) on a miss or
// expired entry.
func (s *Store) Get(key string) (any, bool) {
	v, ok := s.lru.Get(key)
	if ok {
		s.stats.Hit()
		return v, true
	}
	s.stats.Miss()
	return nil, false
}

// Set stores value under key with the instance TTL. The ttl argument is
// accepted for call-site symmetry but entries always use the instance
// TTL; the backing cache does not support per-entry lifetimes.
func (s *Store) Set(key string, value any, _ time.Duration) {
	s.lru.Add(key, value)
	s.stats.Set()
}

// Delete removes key. Returns true when an entry was present.
func (s *Store) Delete(key string) bool {
	ok := s.lru.Remove(key)
	if ok {
		s.stats.Delete()
	}
	return ok
}

// Clear drops every entry.
func (s *Store) Clear() {
	s.lru.Purge()
}

// Size returns the current number of live entries.
func (s *Store) Size() int {
	return s.lru.Len()
}

// Keys returns the cached keys, least recently used first.
func (s *Store) Keys() []string {
	return s.lru.Keys()
}

// Role returns the role this instance serves.
func (s *Store) Role() Role {
	return s.role
}

// Info describes one cache instance for status reporting.
type Info struct {
	Role        Role    `json:"role"`
	Size        int     `json:"size"`
	MaxSize     int     `json:"max_size"`
	TTLSeconds  float64 `json:"ttl_seconds"`
	Utilization float64 `json:"utilization"`
}

// Info returns the instance description including utilization in [0, 1].
func (s *Store) Info() Info {
	info := Info{
		Role:       s.role,
		Size:       s.lru.Len(),
		MaxSize:    s.maxSize,
		TTLSeconds: s.ttl.Seconds(),
	}
	if s.maxSize > 0 {
		info.Utilization = float64(info.Size) / float64(s.maxSize)
	}
	return info
}
