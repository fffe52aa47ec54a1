package pipeline

import (
	"fmt"
	"time"

	"github.com/Fenix-Okami/language-learning-anki-generator/internal/cache"
)

// CacheDecision says whether the fetch stage can be skipped in favor of a
// cached payload, and why.
type CacheDecision struct {
	Reuse  bool
	Record cache.Record // set when Reuse
	Reason string
}

// DecideCache is the cache inspector: a pure decision over the run
// parameters and the visible cache records. It does no I/O and never
// errors; anything it cannot trust counts as "no usable cache".
//
// force_refresh beats everything. Otherwise reuse requires use_cache, at
// least one record with a real timestamp, and the newest such record being
// no older than MaxCacheAge (equality is still fresh).
func DecideCache(params Params, records []cache.Record, now time.Time) CacheDecision {
	if params.ForceRefresh {
		return CacheDecision{Reason: "force_refresh set"}
	}
	if !params.UseCache {
		return CacheDecision{Reason: "cache disabled"}
	}
	if len(records) == 0 {
		return CacheDecision{Reason: "no cached payloads"}
	}

	var newest cache.Record
	for _, r := range records {
		if r.CreatedAt.IsZero() {
			// Malformed timestamp; the record cannot prove freshness.
			continue
		}
		if newest.CreatedAt.IsZero() || r.CreatedAt.After(newest.CreatedAt) {
			newest = r
		}
	}
	if newest.CreatedAt.IsZero() {
		return CacheDecision{Reason: "no cache records with valid timestamps"}
	}

	age := now.Sub(newest.CreatedAt)
	if age <= params.MaxCacheAge {
		return CacheDecision{
			Reuse:  true,
			Record: newest,
			Reason: fmt.Sprintf("cache fresh (age %s, limit %s)", age.Round(time.Second), params.MaxCacheAge),
		}
	}
	return CacheDecision{
		Reason: fmt.Sprintf("cache stale (age %s, limit %s)", age.Round(time.Second), params.MaxCacheAge),
	}
}
