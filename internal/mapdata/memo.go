package mapdata

import (
	"sync"
	"time"
)

// memo is a single-slot cache. A zero ttl keeps the value until invalidate.
type memo[T any] struct {
	mu    sync.Mutex
	value T
	set   bool
	at    time.Time
	gen   uint64
	ttl   time.Duration
	now   func() time.Time
}

func (m *memo[T]) get() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	if !m.set {
		return zero, false
	}
	if m.ttl > 0 && m.now().Sub(m.at) > m.ttl {
		return zero, false
	}
	return m.value, true
}

// generation returns a token that store compares against to discard values
// fetched before an invalidate.
func (m *memo[T]) generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen
}

func (m *memo[T]) store(v T, gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return false
	}
	m.value, m.set, m.at = v, true, m.now()
	return true
}

func (m *memo[T]) invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	m.value, m.set = zero, false
	m.gen++
}
