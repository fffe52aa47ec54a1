// Package pipeline orchestrates the four-stage run: fetch subjects from
// WaniKani (or reuse a cached payload), normalize them, replace the database
// contents, and render the Anki deck files. Stages run strictly in order;
// the first stage that exhausts its retry budget fails the run.
package pipeline

import (
	"time"

	"github.com/Fenix-Okami/language-learning-anki-generator/internal/common"
)

// Params are the resolved knobs for one run.
type Params struct {
	// UseCache allows reusing a cached payload instead of calling the API.
	UseCache bool
	// MaxCacheAge is how old a cached payload may be and still count as
	// fresh. Zero means only a payload from this very instant qualifies.
	MaxCacheAge time.Duration
	// ForceRefresh always re-fetches, regardless of the other two knobs.
	ForceRefresh bool
}

// DefaultParams prefers the cache for up to the default age.
func DefaultParams() Params {
	return Params{
		UseCache:    true,
		MaxCacheAge: time.Duration(common.DefaultMaxCacheAgeDays) * 24 * time.Hour,
	}
}

// FreshParams always hits the API.
func FreshParams() Params {
	p := DefaultParams()
	p.ForceRefresh = true
	return p
}

// CachedParams reuses any cached payload not older than maxAge.
func CachedParams(maxAge time.Duration) Params {
	p := DefaultParams()
	p.MaxCacheAge = maxAge
	return p
}

// RawParams is the unvalidated parameter bag the controller receives from
// configuration and flags. Nil means "not specified, use the default".
type RawParams struct {
	UseCache        *bool
	MaxCacheAgeDays *int
	ForceRefresh    *bool
}

// Resolve applies defaults and validates. A negative cache age is a
// configuration error; there is no sensible reading of it.
func (r RawParams) Resolve() (Params, error) {
	p := DefaultParams()
	if r.UseCache != nil {
		p.UseCache = *r.UseCache
	}
	if r.MaxCacheAgeDays != nil {
		days := *r.MaxCacheAgeDays
		if days < 0 {
			return Params{}, common.NewError(common.KindConfig,
				"max_cache_age_days must not be negative, got %d", days)
		}
		p.MaxCacheAge = time.Duration(days) * 24 * time.Hour
	}
	if r.ForceRefresh != nil {
		p.ForceRefresh = *r.ForceRefresh
	}
	return p, nil
}
