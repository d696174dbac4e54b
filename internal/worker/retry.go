package worker

import (
	"time"

	"reserveease/internal/config"
)

// RetryPolicy controls how the outbox worker re-attempts delivery of a
// failed notification: exponential backoff clamped to MaxDelay.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// PolicyFromConfig builds a policy from the notifications config section,
// falling back to the worker defaults for unset fields.
func PolicyFromConfig(cfg config.NotificationsConfig) RetryPolicy {
	p := RetryPolicy{
		MaxRetries:    cfg.MaxRetries,
		InitialDelay:  time.Duration(cfg.InitialDelay) * time.Second,
		MaxDelay:      time.Duration(cfg.MaxDelay) * time.Second,
		BackoffFactor: cfg.BackoffFactor,
	}
	p.normalize()
	return p
}

func (r *RetryPolicy) normalize() {
	if r.MaxRetries <= 0 {
		r.MaxRetries = 5
	}
	if r.InitialDelay <= 0 {
		r.InitialDelay = 2 * time.Second
	}
	if r.MaxDelay <= 0 {
		r.MaxDelay = time.Minute
	}
	if r.BackoffFactor <= 0 {
		r.BackoffFactor = 2
	}
}

// NextDelay returns the pause before the given attempt (1-based).
func (r RetryPolicy) NextDelay(attempt int) time.Duration {
	r.normalize()

	delay := float64(r.InitialDelay)
	for i := 1; i < attempt; i++ {
		delay *= r.BackoffFactor
		if time.Duration(delay) >= r.MaxDelay {
			return r.MaxDelay
		}
	}
	return time.Duration(delay)
}
