// Package guard serializes scheduler runs within a single process.
package guard

import "sync"

// Guard is a non-blocking re-entrancy gate. A tick that finds the gate
// held skips its run instead of queueing behind it.
type Guard struct {
	mu sync.Mutex
}

func New() *Guard {
	return &Guard{}
}

// TryAcquire reports whether the caller now holds the gate.
func (g *Guard) TryAcquire() bool {
	return g.mu.TryLock()
}

// Release frees the gate. Only the holder may call it.
func (g *Guard) Release() {
	g.mu.Unlock()
}
