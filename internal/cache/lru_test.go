package cache

import (
	"context"
	"strings"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func newTestCache(size int, ttl time.Duration) (*LRUCache[string], *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](size, ttl)
	c.now = clock.now
	return c, clock
}

func TestGetSetAndExpiry(t *testing.T) {
	c, clock := newTestCache(4, time.Minute)

	c.Set("calendar", "snap-1")
	if v, ok := c.Get("calendar"); !ok || v != "snap-1" {
		t.Fatalf("got %q, %v", v, ok)
	}

	clock.t = clock.t.Add(2 * time.Minute)
	if _, ok := c.Get("calendar"); ok {
		t.Fatal("expired entry returned")
	}
	if c.Size() != 0 {
		t.Fatalf("expired entry not removed on read")
	}

	st := c.Stats()
	if st.Hits != 1 || st.Misses != 1 {
		t.Errorf("stats = %+v", st)
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestCache(2, time.Hour)

	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a")
	c.Set("c", "3")

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a was recently used and must survive")
	}
}

func TestDeleteFuncAndCleanExpired(t *testing.T) {
	c, clock := newTestCache(10, time.Minute)
	c.Set("ledger", "x")
	c.Set("report", "y")
	c.Set("calendar", "z")

	if n := c.DeleteFunc(func(k string) bool { return strings.HasPrefix(k, "l") }); n != 1 {
		t.Fatalf("removed %d, want 1", n)
	}

	clock.t = clock.t.Add(30 * time.Second)
	c.Set("calendar", "z2")
	clock.t = clock.t.Add(45 * time.Second)

	if n := c.CleanExpired(); n != 1 {
		t.Fatalf("cleaned %d, want 1", n)
	}
	if v, ok := c.Get("calendar"); !ok || v != "z2" {
		t.Fatalf("refreshed entry lost: %q %v", v, ok)
	}
}

func TestManagerStopsOnCancel(t *testing.T) {
	c, clock := newTestCache(10, time.Millisecond)
	c.Set("k", "v")
	clock.t = clock.t.Add(time.Second)

	m := NewManager(nil)
	m.Register(c)
	if n := m.CleanAll(); n != 1 {
		t.Fatalf("CleanAll removed %d", n)
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx, time.Millisecond)
	cancel()

	done := make(chan struct{})
	go func() {
		m.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("manager did not stop")
	}
}
