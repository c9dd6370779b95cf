package vectorindex

import "sync"

// Holder publishes the current snapshot to concurrent readers.
// Readers never observe a partially built snapshot.
type Holder struct {
	mu      sync.RWMutex
	current *Snapshot
	version uint64
}

// NewHolder creates an empty holder.
func NewHolder() *Holder { return &Holder{} }

// Current returns the published snapshot, or nil when none is loaded.
func (h *Holder) Current() *Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Version returns a counter incremented on every Swap.
func (h *Holder) Version() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.version
}

// Swap publishes s and returns the previous snapshot.
func (h *Holder) Swap(s *Snapshot) *Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	prev := h.current
	h.current = s
	h.version++
	return prev
}
