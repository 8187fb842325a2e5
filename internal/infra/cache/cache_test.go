package cache_test

import (
	"testing"
	"time"

	"github.com/boddenberg/pix-gateway-proxy/internal/infra/cache"
)

func TestCache_SetAndGet(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	c.Set("key1", "value1")
	val, ok := c.Get("key1")
	if !ok {
		t.Fatal("expected key to exist")
	}
	if val != "value1" {
		t.Errorf("expected 'value1', got '%s'", val)
	}
}

func TestCache_GetMiss(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	if _, ok := c.Get("nonexistent"); ok {
		t.Fatal("expected cache miss for nonexistent key")
	}
}

func TestCache_Expiration(t *testing.T) {
	c := cache.New[string](50 * time.Millisecond)

	c.Set("key1", "value1")
	time.Sleep(100 * time.Millisecond)

	if _, ok := c.Get("key1"); ok {
		t.Fatal("expected cache entry to be expired")
	}
}

func TestCache_Delete(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	c.Set("key1", "value1")
	c.Delete("key1")

	if _, ok := c.Get("key1"); ok {
		t.Fatal("expected key to be deleted")
	}
}

func TestCache_GetOrSet(t *testing.T) {
	c := cache.New[*int](5 * time.Minute)

	created := 0
	create := func() *int {
		created++
		v := created
		return &v
	}

	first := c.GetOrSet("ip:10.0.0.1", create)
	second := c.GetOrSet("ip:10.0.0.1", create)
	other := c.GetOrSet("ip:10.0.0.2", create)

	if first != second {
		t.Error("expected the same value for the same key")
	}
	if first == other {
		t.Error("expected distinct values for distinct keys")
	}
	if created != 2 {
		t.Errorf("expected 2 creations, got %d", created)
	}
	if c.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", c.Len())
	}
}

func TestCache_GetOrSetRecreatesExpired(t *testing.T) {
	c := cache.New[string](50 * time.Millisecond)

	c.GetOrSet("k", func() string { return "old" })
	time.Sleep(100 * time.Millisecond)

	if got := c.GetOrSet("k", func() string { return "new" }); got != "new" {
		t.Errorf("expected 'new', got '%s'", got)
	}
}
