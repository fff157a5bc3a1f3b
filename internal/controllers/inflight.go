package controllers

import "sync"

// inflightRegistry enforces at most one running cascade per candidate id.
// A second request for an id already held is rejected, never queued, which
// closes the re-sync/redelete race between overlapping delete requests.
type inflightRegistry struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func newInflightRegistry() *inflightRegistry {
	return &inflightRegistry{ids: make(map[string]struct{})}
}

// acquire claims a candidate id; false means a cascade already holds it
func (r *inflightRegistry) acquire(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, held := r.ids[id]; held {
		return false
	}
	r.ids[id] = struct{}{}
	return true
}

// release frees a candidate id once its cascade reached a terminal state
func (r *inflightRegistry) release(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ids, id)
}
