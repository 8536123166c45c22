package cache

import (
	"strconv"
	"sync"
	"testing"
	"time"
)

func TestCache_GetSet(t *testing.T) {
	c := New(5*time.Second, 100)

	key := Key(1, "transactions", "")
	c.Set(key, []byte(`[{"transaction_id":1}]`))

	got, ok := c.Get(key)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if string(got) != `[{"transaction_id":1}]` {
		t.Errorf("unexpected payload: %s", got)
	}
}

func TestCache_Miss(t *testing.T) {
	c := New(5*time.Second, 100)

	if _, ok := c.Get("nonexistent"); ok {
		t.Error("expected cache miss for nonexistent key")
	}
}

func TestCache_TTLExpiration(t *testing.T) {
	c := New(50*time.Millisecond, 100)

	key := Key(1, "securities", "")
	c.Set(key, []byte("data"))

	if _, ok := c.Get(key); !ok {
		t.Fatal("expected cache hit before expiry")
	}

	time.Sleep(60 * time.Millisecond)

	if _, ok := c.Get(key); ok {
		t.Error("expected cache miss after TTL expiration")
	}
}

func TestCache_Invalidate(t *testing.T) {
	c := New(5*time.Second, 100)

	c.Set(Key(1, "transactions", ""), []byte("data"))
	c.Set(Key(2, "transactions", "ticker=VOO"), []byte("data"))
	c.Set(Key(1, "securities", ""), []byte("data"))

	c.Invalidate("transactions")

	// Transactions entries are gone for every user and query.
	if _, ok := c.Get(Key(1, "transactions", "")); ok {
		t.Error("expected user 1 transactions to be invalidated")
	}
	if _, ok := c.Get(Key(2, "transactions", "ticker=VOO")); ok {
		t.Error("expected user 2 transactions to be invalidated")
	}

	// Other resources remain.
	if _, ok := c.Get(Key(1, "securities", "")); !ok {
		t.Error("expected securities to remain in cache")
	}
}

func TestCache_MaxEntries(t *testing.T) {
	c := New(5*time.Second, 3)

	c.Set("key1", []byte("data"))
	c.Set("key2", []byte("data"))
	c.Set("key3", []byte("data"))

	for _, k := range []string{"key1", "key2", "key3"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("expected %s to be in cache", k)
		}
	}

	// Adding a 4th evicts the oldest (key1).
	c.Set("key4", []byte("data"))

	if _, ok := c.Get("key1"); ok {
		t.Error("expected key1 to be evicted (oldest entry)")
	}
	if _, ok := c.Get("key4"); !ok {
		t.Error("expected key4 to be in cache")
	}
}

func TestCache_ThreadSafety(t *testing.T) {
	c := New(5*time.Second, 1000)

	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			c.Set(Key(n%5, "holdings", strconv.Itoa(n%26)), []byte("data"))
		}(i)
	}

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			c.Get(Key(n%5, "holdings", strconv.Itoa(n%26)))
		}(i)
	}

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Invalidate("holdings")
		}()
	}

	wg.Wait()
	// If we get here without a race detector report, the test passes.
}

func TestKey(t *testing.T) {
	key := Key(123, "transactions", "from_date=2024-01-01")
	expected := "123:transactions:from_date=2024-01-01"
	if key != expected {
		t.Errorf("expected key %q, got %q", expected, key)
	}
}

func TestCache_OverwriteExistingKey(t *testing.T) {
	c := New(5*time.Second, 100)

	c.Set("key", []byte("v1"))
	c.Set("key", []byte("v2"))

	got, ok := c.Get("key")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if string(got) != "v2" {
		t.Errorf("expected updated payload v2, got %s", got)
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 entry after overwrite, got %d", c.Len())
	}
}

func TestCache_EmptyCache(t *testing.T) {
	c := New(5*time.Second, 100)

	// Invalidate on an empty cache must not panic.
	c.Invalidate("transactions")

	if _, ok := c.Get("anything"); ok {
		t.Error("expected miss on empty cache")
	}
}
