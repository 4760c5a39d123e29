package mapdata

import "sync"

// Ticket identifies one viewport request.
type Ticket struct {
	Key string
	Seq uint64
}

// Viewport tracks the viewport a client currently shows and decides whether a
// completed request may still be applied. Requests for different keys may
// complete in any order; only a response whose key is still current, and
// which is newer than the last applied one, is accepted.
type Viewport[T any] struct {
	mu      sync.Mutex
	current string
	seq     uint64
	applied uint64
	value   T
	has     bool
}

// Begin records key as the current viewport and returns its ticket.
func (v *Viewport[T]) Begin(key string) Ticket {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.seq++
	v.current = key
	return Ticket{Key: key, Seq: v.seq}
}

// Commit applies value if t is still current. It reports whether value was
// applied; a false result means the response is stale and must be dropped.
func (v *Viewport[T]) Commit(t Ticket, value T) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if t.Key != v.current || t.Seq <= v.applied {
		return false
	}
	v.applied = t.Seq
	v.value, v.has = value, true
	return true
}

// Current returns the last applied value.
func (v *Viewport[T]) Current() (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.value, v.has
}

// Key returns the current viewport key.
func (v *Viewport[T]) Key() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}
