// Package idgen supplies explicit identifier generators for batch
// processing. Trajectory and run ids are always produced by a generator
// the caller passes in; nothing in the library keeps hidden counter
// state.
package idgen

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Generator produces unique identifiers.
type Generator interface {
	Next() string
}

// UUID generates random UUID identifiers.
type UUID struct{}

// Next returns a fresh UUID string.
func (UUID) Next() string { return uuid.NewString() }

// Sequence generates deterministic prefixed identifiers. Safe for
// concurrent use.
type Sequence struct {
	prefix string

	mu sync.Mutex
	n  int
}

// NewSequence returns a generator producing prefix-1, prefix-2, ...
func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

// Next returns the next identifier in the sequence.
func (s *Sequence) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s-%d", s.prefix, s.n)
}
