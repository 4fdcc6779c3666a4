package api

import (
	"encoding/json"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheRoundTrip(t *testing.T) {
	c := NewCache(time.Minute)

	params := url.Values{}
	params.Set("vs_currency", "usd")

	_, ok := c.Get("coins/markets", params)
	assert.False(t, ok, "empty cache should miss")

	payload := json.RawMessage(`[{"id":"bitcoin"}]`)
	c.Set("coins/markets", params, payload)

	got, ok := c.Get("coins/markets", params)
	require.True(t, ok)
	assert.Equal(t, payload, got)

	stats := c.Stats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, 1, stats.Hits)
	assert.Equal(t, 1, stats.Misses)
}

func TestCacheKeyIgnoresParamOrder(t *testing.T) {
	a := url.Values{}
	a.Set("ids", "bitcoin")
	a.Set("vs_currencies", "usd")

	b := url.Values{}
	b.Set("vs_currencies", "usd")
	b.Set("ids", "bitcoin")

	assert.Equal(t, cacheKey("simple/price", a), cacheKey("simple/price", b))
	assert.NotEqual(t, cacheKey("simple/price", a), cacheKey("ping", a))
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache(time.Minute)

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }

	params := url.Values{}
	c.Set("global", params, json.RawMessage(`{}`))

	current = current.Add(59 * time.Second)
	_, ok := c.Get("global", params)
	assert.True(t, ok, "entry inside TTL should hit")

	current = current.Add(2 * time.Second)
	_, ok = c.Get("global", params)
	assert.False(t, ok, "entry past TTL should miss")

	stats := c.Stats()
	assert.Equal(t, 1, stats.Evictions)
	assert.Equal(t, 0, stats.Entries)
}

func TestCacheClear(t *testing.T) {
	c := NewCache(time.Minute)
	c.Set("ping", url.Values{}, json.RawMessage(`{}`))

	c.Clear()

	_, ok := c.Get("ping", url.Values{})
	assert.False(t, ok)
	assert.Equal(t, 0, c.Stats().Entries)
}
