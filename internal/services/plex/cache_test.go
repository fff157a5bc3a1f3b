package plex

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
)

func TestSessionCacheSharesOneHandshake(t *testing.T) {
	cache := NewSessionCache()

	var connects atomic.Int32
	connect := func(ctx context.Context) (*Session, error) {
		connects.Add(1)
		return &Session{BaseURL: "http://plex", Token: "tok", MachineID: "abc"}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			session, err := cache.Get(context.Background(), "http://plex", connect)
			if err != nil {
				t.Errorf("Get failed: %v", err)
				return
			}
			if session.MachineID != "abc" {
				t.Errorf("Unexpected session: %+v", session)
			}
		}()
	}
	wg.Wait()

	if got := connects.Load(); got != 1 {
		t.Errorf("Concurrent callers must share one handshake, got %d", got)
	}
}

func TestSessionCacheEvict(t *testing.T) {
	cache := NewSessionCache()

	var connects int
	connect := func(ctx context.Context) (*Session, error) {
		connects++
		return &Session{BaseURL: "http://plex"}, nil
	}

	if _, err := cache.Get(context.Background(), "http://plex", connect); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	cache.Evict("http://plex")
	if _, err := cache.Get(context.Background(), "http://plex", connect); err != nil {
		t.Fatalf("Get after evict failed: %v", err)
	}

	if connects != 2 {
		t.Errorf("Evict must force a fresh handshake, got %d connects", connects)
	}
}

func TestSessionCacheIsolatesServers(t *testing.T) {
	cache := NewSessionCache()

	connect := func(url string) func(context.Context) (*Session, error) {
		return func(ctx context.Context) (*Session, error) {
			return &Session{BaseURL: url}, nil
		}
	}

	a, err := cache.Get(context.Background(), "http://a", connect("http://a"))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	b, err := cache.Get(context.Background(), "http://b", connect("http://b"))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if a.BaseURL == b.BaseURL {
		t.Error("Sessions must be cached per server")
	}
}
