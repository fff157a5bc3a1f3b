package plex

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Session is a warm, verified connection to one Plex server.
type Session struct {
	BaseURL   string
	Token     string
	MachineID string
}

// SessionCache memoizes authenticated sessions per server identity so each
// candidate in a batch does not pay the handshake cost again. A per-key lock
// guarantees concurrent callers share a single handshake. The cache has no
// bearing on cascade correctness; eviction just forces a fresh handshake.
type SessionCache struct {
	cache *gocache.Cache

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewSessionCache creates a session cache with a 24h trust window
func NewSessionCache() *SessionCache {
	return &SessionCache{
		cache: gocache.New(24*time.Hour, time.Hour),
		locks: make(map[string]*sync.Mutex),
	}
}

// Get returns the cached session for a server, running connect under the
// server's lock when no warm session exists.
func (sc *SessionCache) Get(ctx context.Context, serverURL string, connect func(context.Context) (*Session, error)) (*Session, error) {
	lock := sc.lockFor(serverURL)
	lock.Lock()
	defer lock.Unlock()

	if cached, ok := sc.cache.Get(serverURL); ok {
		return cached.(*Session), nil
	}

	session, err := connect(ctx)
	if err != nil {
		return nil, err
	}

	sc.cache.Set(serverURL, session, gocache.DefaultExpiration)
	return session, nil
}

// Evict drops the cached session for a server, forcing re-authentication on
// the next Get. Called after an authenticated request fails.
func (sc *SessionCache) Evict(serverURL string) {
	sc.cache.Delete(serverURL)
}

func (sc *SessionCache) lockFor(serverURL string) *sync.Mutex {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	lock, ok := sc.locks[serverURL]
	if !ok {
		lock = &sync.Mutex{}
		sc.locks[serverURL] = lock
	}
	return lock
}
