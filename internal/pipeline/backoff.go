package pipeline

import (
	"time"

	"github.com/Fenix-Okami/language-learning-anki-generator/internal/common"
)

// Backoff computes the pause before a retry. Fixed repeats the same delay;
// exponential doubles from Initial and clamps at Cap.
type Backoff struct {
	Initial     time.Duration
	Cap         time.Duration
	Exponential bool
}

func FixedBackoff(d time.Duration) Backoff {
	return Backoff{Initial: d}
}

func ExponentialBackoff(initial, cap time.Duration) Backoff {
	return Backoff{Initial: initial, Cap: cap, Exponential: true}
}

// Delay returns the pause after the given failure count (1 for the first
// failed attempt). The progression never decreases and never exceeds Cap.
func (b Backoff) Delay(failures int) time.Duration {
	if b.Initial <= 0 {
		return 0
	}
	if !b.Exponential {
		return b.Initial
	}
	d := b.Initial
	for i := 1; i < failures; i++ {
		d *= 2
		if b.Cap > 0 && d >= b.Cap {
			return b.Cap
		}
		if d <= 0 { // overflow
			return b.Cap
		}
	}
	if b.Cap > 0 && d > b.Cap {
		return b.Cap
	}
	return d
}

// RetryPolicy is a stage's retry budget.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     Backoff
	// AttemptTimeout bounds each attempt; zero means unbounded.
	AttemptTimeout time.Duration
}

// PolicyFrom maps a configured retry spec onto a policy.
func PolicyFrom(spec common.RetrySpec) RetryPolicy {
	b := FixedBackoff(time.Duration(spec.DelaySeconds) * time.Second)
	if spec.Backoff == "exponential" {
		b = ExponentialBackoff(
			time.Duration(spec.DelaySeconds)*time.Second,
			time.Duration(spec.CapSeconds)*time.Second)
	}
	return RetryPolicy{
		MaxAttempts:    spec.MaxAttempts,
		Backoff:        b,
		AttemptTimeout: time.Duration(spec.AttemptTimeoutSeconds) * time.Second,
	}
}
