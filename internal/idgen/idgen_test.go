package idgen

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequence(t *testing.T) {
	t.Parallel()

	gen := NewSequence("dyad")
	assert.Equal(t, "dyad-1", gen.Next())
	assert.Equal(t, "dyad-2", gen.Next())
}

func TestSequenceConcurrentUnique(t *testing.T) {
	t.Parallel()

	gen := NewSequence("t")
	const n = 100

	var mu sync.Mutex
	seen := make(map[string]struct{}, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := gen.Next()
			mu.Lock()
			seen[id] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, n)
}

func TestUUIDDistinct(t *testing.T) {
	t.Parallel()

	gen := UUID{}
	assert.NotEqual(t, gen.Next(), gen.Next())
}
