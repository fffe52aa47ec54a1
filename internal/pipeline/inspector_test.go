package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fenix-Okami/language-learning-anki-generator/internal/cache"
)

var decideNow = time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

func rec(path string, age time.Duration) cache.Record {
	return cache.Record{Path: path, CreatedAt: decideNow.Add(-age)}
}

func TestDecideCacheForceRefreshWinsOverFreshCache(t *testing.T) {
	params := Params{UseCache: true, MaxCacheAge: 30 * 24 * time.Hour, ForceRefresh: true}
	d := DecideCache(params, []cache.Record{rec("a.json", time.Hour)}, decideNow)
	assert.False(t, d.Reuse)
	assert.Contains(t, d.Reason, "force_refresh")
}

func TestDecideCacheDisabled(t *testing.T) {
	params := Params{UseCache: false, MaxCacheAge: 30 * 24 * time.Hour}
	d := DecideCache(params, []cache.Record{rec("a.json", time.Hour)}, decideNow)
	assert.False(t, d.Reuse)
}

func TestDecideCacheNoRecords(t *testing.T) {
	d := DecideCache(DefaultParams(), nil, decideNow)
	assert.False(t, d.Reuse)
	assert.Contains(t, d.Reason, "no cached payloads")
}

func TestDecideCachePicksNewestRecord(t *testing.T) {
	records := []cache.Record{
		rec("old.json", 72*time.Hour),
		rec("newest.json", 2*time.Hour),
		rec("mid.json", 24*time.Hour),
	}
	d := DecideCache(CachedParams(7*24*time.Hour), records, decideNow)
	require.True(t, d.Reuse)
	assert.Equal(t, "newest.json", d.Record.Path)
}

func TestDecideCacheStale(t *testing.T) {
	d := DecideCache(CachedParams(24*time.Hour), []cache.Record{rec("a.json", 25 * time.Hour)}, decideNow)
	assert.False(t, d.Reuse)
	assert.Contains(t, d.Reason, "stale")
}

func TestDecideCacheAgeEqualToLimitIsFresh(t *testing.T) {
	d := DecideCache(CachedParams(24*time.Hour), []cache.Record{rec("a.json", 24 * time.Hour)}, decideNow)
	assert.True(t, d.Reuse)
}

func TestDecideCacheZeroAgeLimit(t *testing.T) {
	d := DecideCache(CachedParams(0), []cache.Record{rec("now.json", 0)}, decideNow)
	assert.True(t, d.Reuse)

	d = DecideCache(CachedParams(0), []cache.Record{rec("old.json", time.Second)}, decideNow)
	assert.False(t, d.Reuse)
}

func TestDecideCacheSkipsMalformedTimestamps(t *testing.T) {
	records := []cache.Record{
		{Path: "broken.json"}, // zero CreatedAt
		rec("good.json", time.Hour),
	}
	d := DecideCache(CachedParams(24*time.Hour), records, decideNow)
	require.True(t, d.Reuse)
	assert.Equal(t, "good.json", d.Record.Path)
}

func TestDecideCacheAllTimestampsMalformed(t *testing.T) {
	records := []cache.Record{{Path: "a.json"}, {Path: "b.json"}}
	d := DecideCache(CachedParams(24*time.Hour), records, decideNow)
	assert.False(t, d.Reuse)
	assert.Contains(t, d.Reason, "valid timestamps")
}

func TestDecideCacheIsPure(t *testing.T) {
	records := []cache.Record{rec("a.json", time.Hour)}
	first := DecideCache(DefaultParams(), records, decideNow)
	second := DecideCache(DefaultParams(), records, decideNow)
	assert.Equal(t, first, second)
}
