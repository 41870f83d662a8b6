// Package retrylimit couples an adaptive rate limiter with bounded retries
// for outbound HTTP clients. The limiter speeds up after successes and backs
// off when the remote side reports overload.
package retrylimit

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// AdaptiveLimiter is a rate.Limiter whose rate moves between min and max.
type AdaptiveLimiter struct {
	mu        sync.Mutex
	limiter   *rate.Limiter
	min, max  rate.Limit
	stepUp    rate.Limit
	stepDown  float64
	calm      time.Duration
	lastError time.Time
}

// NewAdaptiveLimiter starts at initial requests per second. Each success
// adds stepUp; each overload multiplies the rate by stepDown.
func NewAdaptiveLimiter(initial, min, max, stepUp rate.Limit, stepDown float64) *AdaptiveLimiter {
	if min <= 0 {
		min = 0.1
	}
	if initial < min {
		initial = min
	}
	return &AdaptiveLimiter{
		limiter:  rate.NewLimiter(initial, burstFor(initial)),
		min:      min,
		max:      max,
		stepUp:   stepUp,
		stepDown: stepDown,
		calm:     10 * time.Second,
	}
}

func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// Success raises the rate unless an overload was seen recently.
func (a *AdaptiveLimiter) Success() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if time.Since(a.lastError) > a.calm {
		a.set(a.limiter.Limit() + a.stepUp)
	}
}

// Overloaded lowers the rate.
func (a *AdaptiveLimiter) Overloaded() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastError = time.Now()
	a.set(rate.Limit(float64(a.limiter.Limit()) * a.stepDown))
}

// Limit returns the current requests per second.
func (a *AdaptiveLimiter) Limit() float64 {
	return float64(a.limiter.Limit())
}

func (a *AdaptiveLimiter) set(l rate.Limit) {
	l = max(a.min, min(a.max, l))
	if l != a.limiter.Limit() {
		a.limiter.SetLimit(l)
		a.limiter.SetBurst(burstFor(l))
	}
}

func burstFor(l rate.Limit) int { return max(1, int(l)) }

// StatusError is a non-2xx HTTP response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Code, e.Body)
}

// Permanent marks an error that must not be retried.
type Permanent struct{ Err error }

func (p *Permanent) Error() string { return p.Err.Error() }
func (p *Permanent) Unwrap() error { return p.Err }

// Config bounds a retry loop.
type Config struct {
	Attempts     int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

func DefaultConfig() Config {
	return Config{
		Attempts:     3,
		InitialDelay: 300 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2,
	}
}

// Do runs fn until it succeeds, returns a Permanent error, the attempts run
// out, or ctx ends. lim may be nil.
func Do(ctx context.Context, lim *AdaptiveLimiter, cfg Config, fn func(ctx context.Context) error) error {
	if cfg.Attempts <= 0 {
		cfg.Attempts = 1
	}
	log := zerolog.Ctx(ctx)
	delay := cfg.InitialDelay

	var err error
	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		if lim != nil {
			if werr := lim.Wait(ctx); werr != nil {
				return werr
			}
		}

		if err = fn(ctx); err == nil {
			if lim != nil {
				lim.Success()
			}
			return nil
		}

		var perm *Permanent
		if errors.As(err, &perm) {
			return perm.Err
		}
		if Overload(err) && lim != nil {
			lim.Overloaded()
		}
		if attempt == cfg.Attempts {
			break
		}

		log.Debug().Err(err).Int("attempt", attempt).Dur("sleep", delay).Msg("retrying request")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(jitter(delay)):
		}
		delay = min(cfg.MaxDelay, time.Duration(float64(delay)*cfg.Multiplier))
	}
	return fmt.Errorf("after %d attempts: %w", cfg.Attempts, err)
}

// Overload reports whether err is a 429 or 5xx response.
func Overload(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	return se.Code == http.StatusTooManyRequests || se.Code >= 500
}

func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return d
	}
	return d + time.Duration(rand.Int63n(int64(d/4+1)))
}
