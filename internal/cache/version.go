package cache

import (
	"sync"
	"sync/atomic"
)

// Versions counts invalidations per entity. A response may be cached only if
// the version captured before its request still matches when it arrives.
type Versions[K comparable] struct {
	mu     sync.Mutex
	values map[K]int64
}

// NewVersions constructs an empty counter set.
func NewVersions[K comparable]() *Versions[K] {
	return &Versions[K]{values: make(map[K]int64)}
}

// Next bumps the version of id and returns the new value.
func (v *Versions[K]) Next(id K) int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.values[id]++
	return v.values[id]
}

// Current returns the version of id; unseen ids are at 0.
func (v *Versions[K]) Current(id K) int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.values[id]
}

// Ticket identifies one interaction in a Sequence.
type Ticket uint64

// Sequence answers "is this still the most recent user intent". Every Begin
// supersedes all earlier tickets.
type Sequence struct {
	last atomic.Uint64
}

// Begin starts a new interaction.
func (s *Sequence) Begin() Ticket {
	return Ticket(s.last.Add(1))
}

// Current reports whether t is the latest ticket handed out.
func (s *Sequence) Current(t Ticket) bool {
	return uint64(t) == s.last.Load()
}

// Supersede invalidates every outstanding ticket without starting a new one.
func (s *Sequence) Supersede() {
	s.last.Add(1)
}
