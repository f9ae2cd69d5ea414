package transcript

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"aititle/internal/domain"
	"aititle/internal/infra"
)

type memoryCache struct {
	mu      sync.Mutex
	items   map[string]string
	getErr  error
	setErr  error
	lastTTL time.Duration
}

func (m *memoryCache) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", m.getErr
	}
	v, ok := m.items[key]
	if !ok {
		return "", ErrCacheMiss
	}
	return v, nil
}

func (m *memoryCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	if m.items == nil {
		m.items = map[string]string{}
	}
	m.items[key] = value
	m.lastTTL = ttl
	return nil
}

type countingProvider struct {
	text  string
	err   error
	calls int
}

func (c *countingProvider) FetchTranscript(ctx context.Context, videoID string) (string, error) {
	c.calls++
	return c.text, c.err
}

func TestCachedProviderReadThrough(t *testing.T) {
	inner := &countingProvider{text: "hello world"}
	cache := &memoryCache{}
	p := NewCachedProvider(inner, cache, time.Hour, infra.NopLogger())

	for i := 0; i < 3; i++ {
		got, err := p.FetchTranscript(context.Background(), "abc")
		if err != nil {
			t.Fatalf("FetchTranscript error: %v", err)
		}
		if got != "hello world" {
			t.Fatalf("FetchTranscript = %q", got)
		}
	}
	if inner.calls != 1 {
		t.Fatalf("inner calls = %d, want 1", inner.calls)
	}
	if cache.items["transcript:abc"] != "hello world" || cache.lastTTL != time.Hour {
		t.Fatalf("cache state = %#v ttl=%s", cache.items, cache.lastTTL)
	}
}

func TestCachedProviderDoesNotCacheFailures(t *testing.T) {
	inner := &countingProvider{err: domain.ErrTranscriptUnavailable}
	cache := &memoryCache{}
	p := NewCachedProvider(inner, cache, time.Hour, infra.NopLogger())

	for i := 0; i < 2; i++ {
		if _, err := p.FetchTranscript(context.Background(), "abc"); !errors.Is(err, domain.ErrTranscriptUnavailable) {
			t.Fatalf("err = %v, want ErrTranscriptUnavailable", err)
		}
	}
	if inner.calls != 2 {
		t.Fatalf("inner calls = %d, want 2", inner.calls)
	}
	if len(cache.items) != 0 {
		t.Fatalf("failure was cached: %#v", cache.items)
	}
}

func TestCachedProviderSurvivesCacheFaults(t *testing.T) {
	inner := &countingProvider{text: "hello"}
	cache := &memoryCache{getErr: errors.New("redis down"), setErr: errors.New("redis down")}
	p := NewCachedProvider(inner, cache, time.Minute, infra.NopLogger())

	got, err := p.FetchTranscript(context.Background(), "abc")
	if err != nil {
		t.Fatalf("FetchTranscript error: %v", err)
	}
	if got != "hello" {
		t.Fatalf("FetchTranscript = %q", got)
	}
}
