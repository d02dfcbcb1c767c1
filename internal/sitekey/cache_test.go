// internal/sitekey/cache_test.go
//
// Unit-tests for the key-resolution cache.
//
// fakeSource counts Resolve calls so the tests can assert memoization,
// TTL expiry, and error pass-through without a database.

package sitekey

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeSource struct {
	calls int
	res   *Resolution
	err   error
}

func (f *fakeSource) Resolve(ctx context.Context, language, publicKey string) (*Resolution, error) {
	f.calls++
	return f.res, f.err
}

func TestCache_ServesFromMemory(t *testing.T) {
	src := &fakeSource{res: &Resolution{SiteID: 10, CanonicalKey: "hellolocal"}}
	c := NewCache(src, time.Minute)

	for i := 0; i < 3; i++ {
		res, err := c.Get(context.Background(), "hu", "hellolocal")
		if err != nil {
			t.Fatalf("Get error: %v", err)
		}
		if res.SiteID != 10 {
			t.Fatalf("unexpected resolution: %+v", res)
		}
	}
	if src.calls != 1 {
		t.Fatalf("source calls = %d, want 1", src.calls)
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	src := &fakeSource{res: &Resolution{SiteID: 10}}
	c := NewCache(src, time.Nanosecond)

	c.Get(context.Background(), "hu", "hellolocal")
	time.Sleep(time.Millisecond)
	c.Get(context.Background(), "hu", "hellolocal")

	if src.calls != 2 {
		t.Fatalf("source calls = %d, want 2 after TTL expiry", src.calls)
	}
}

func TestCache_ErrorsNotCached(t *testing.T) {
	src := &fakeSource{err: ErrNotFound}
	c := NewCache(src, time.Minute)

	if _, err := c.Get(context.Background(), "hu", "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	// The key comes online; the next lookup must reach the source again.
	src.err = nil
	src.res = &Resolution{SiteID: 4, CanonicalKey: "ghost"}
	res, err := c.Get(context.Background(), "hu", "ghost")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if res.SiteID != 4 {
		t.Fatalf("unexpected resolution: %+v", res)
	}
	if src.calls != 2 {
		t.Fatalf("source calls = %d, want 2", src.calls)
	}
}

func TestCache_Invalidate(t *testing.T) {
	src := &fakeSource{res: &Resolution{SiteID: 10}}
	c := NewCache(src, time.Hour)

	c.Get(context.Background(), "hu", "hellolocal")
	c.Invalidate("hu", "hellolocal")
	c.Get(context.Background(), "hu", "hellolocal")

	if src.calls != 2 {
		t.Fatalf("source calls = %d, want 2 after Invalidate", src.calls)
	}
}
