package cache

import (
	"context"
	"strconv"
	"testing"
	"time"
)

func TestMemoryExpiresEntries(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)

	base := time.Now()
	c.now = func() time.Time { return base }

	if err := c.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if got, ok, _ := c.Get(ctx, "k"); !ok || string(got) != "v" {
		t.Fatalf("Get = %q, %v", got, ok)
	}

	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Fatal("expected entry to expire")
	}
}

func TestMemorySetCopiesValue(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)

	buf := []byte("abc")
	_ = c.Set(ctx, "k", buf)
	buf[0] = 'z'

	got, _, _ := c.Get(ctx, "k")
	if string(got) != "abc" {
		t.Fatalf("cached value aliased caller buffer: %q", got)
	}
}

func TestMemoryIncrNeverExpires(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Second)

	base := time.Now()
	c.now = func() time.Time { return base }

	for want := int64(1); want <= 3; want++ {
		n, err := c.Incr(ctx, "gen")
		if err != nil || n != want {
			t.Fatalf("Incr = %d, %v; want %d", n, err, want)
		}
	}

	c.now = func() time.Time { return base.Add(time.Hour) }
	got, ok, _ := c.Get(ctx, "gen")
	if !ok || string(got) != "3" {
		t.Fatalf("counter = %q, %v; want 3", got, ok)
	}
}

func TestMemoryDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)

	_ = c.Set(ctx, "a", []byte("1"))
	_ = c.Set(ctx, "b", []byte("2"))
	_ = c.Delete(ctx, "a", "b", "missing")

	if _, ok, _ := c.Get(ctx, "a"); ok {
		t.Fatal("a should be gone")
	}
	if _, ok, _ := c.Get(ctx, "b"); ok {
		t.Fatal("b should be gone")
	}
}

func TestMemorySweepsExpiredEntriesOnWrite(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)

	base := time.Now()
	c.now = func() time.Time { return base }

	for _, k := range []string{"a", "b", "c"} {
		_ = c.Set(ctx, k, []byte(k))
	}
	_, _ = c.Incr(ctx, "gen")

	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	_ = c.Set(ctx, "fresh", []byte("x"))

	// expired a, b, c are gone without being read; the counter stays
	if got := c.Len(); got != 2 {
		t.Fatalf("Len = %d, want 2", got)
	}
}

func TestMemoryCapsEntries(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Hour)
	c.maxEntries = 10

	_, _ = c.Incr(ctx, "gen")
	for i := 0; i < 100; i++ {
		_ = c.Set(ctx, "q="+strconv.Itoa(i), []byte("v"))
	}

	if got := c.Len(); got > 10 {
		t.Fatalf("Len = %d, want at most 10", got)
	}
	if got, ok, _ := c.Get(ctx, "gen"); !ok || string(got) != "1" {
		t.Fatalf("counter evicted: %q, %v", got, ok)
	}
	if _, ok, _ := c.Get(ctx, "q=99"); !ok {
		t.Fatal("latest entry should be stored")
	}
}

func TestMemoryDeletePrefix(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)

	_ = c.Set(ctx, "lists:1:a", []byte("1"))
	_ = c.Set(ctx, "lists:2:b", []byte("2"))
	_ = c.Set(ctx, "course:x", []byte("3"))

	_ = c.DeletePrefix(ctx, "lists:")

	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}
	if _, ok, _ := c.Get(ctx, "course:x"); !ok {
		t.Fatal("course:x should remain")
	}
}

func TestMemoryExpiryKeepsConcurrentlyRefreshedEntry(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)

	base := time.Now()
	c.now = func() time.Time { return base }
	_ = c.Set(ctx, "k", []byte("old"))

	// a reader saw "old" as expired at base+2m, then a writer refreshed it
	// before the reader took the write lock
	late := base.Add(2 * time.Minute)
	c.now = func() time.Time { return late }
	_ = c.Set(ctx, "k", []byte("new"))

	c.dropIfExpired("k", late)

	if got, ok, _ := c.Get(ctx, "k"); !ok || string(got) != "new" {
		t.Fatalf("Get = %q, %v; want refreshed value", got, ok)
	}
}
