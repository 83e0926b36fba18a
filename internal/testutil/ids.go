package testutil

import (
	"fmt"
	"sync"
)

// IDSequence hands out deterministic store IDs ("prefix-1", "prefix-2", ...)
// so log output and error messages are stable across runs.
//
// Thread-safety: All methods are safe for concurrent use.
type IDSequence struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewIDSequence creates a sequence. An empty prefix becomes "store".
func NewIDSequence(prefix string) *IDSequence {
	if prefix == "" {
		prefix = "store"
	}
	return &IDSequence{prefix: prefix}
}

// Next returns the next ID. The first call returns prefix-1.
func (s *IDSequence) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s-%d", s.prefix, s.n)
}

// Reset restarts the sequence at 1.
func (s *IDSequence) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n = 0
}
