package util

import (
	"context"
	"time"

	"github.com/cenkalti/backoff"
)

// Retrier retries a function with exponential backoff, wrapping
// "github.com/cenkalti/backoff".ExponentialBackOff.
type Retrier struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	MaxElapsedTime  time.Duration
	MaxTries        int
	// ShouldRetry reports whether an error is worth retrying.
	// A nil ShouldRetry retries every error.
	ShouldRetry func(err error) bool
	// Notify is called after each failed attempt with the error
	// and the delay before the next attempt.
	Notify func(err error, d time.Duration)
}

// NewRetrier creates a new Retrier instance using default values.
func NewRetrier() *Retrier {
	return &Retrier{
		InitialInterval: time.Millisecond * 500,
		MaxInterval:     time.Second * 10,
		Multiplier:      2.0,
		MaxElapsedTime:  time.Minute,
		MaxTries:        3,
	}
}

// Retry calls the function f until it succeeds, the backoff gives up,
// or the context is canceled.
func (r *Retrier) Retry(ctx context.Context, f func() error) error {
	eb := &backoff.ExponentialBackOff{
		InitialInterval:     r.InitialInterval,
		MaxInterval:         r.MaxInterval,
		Multiplier:          r.Multiplier,
		RandomizationFactor: 0.5,
		MaxElapsedTime:      r.MaxElapsedTime,
		Clock:               backoff.SystemClock,
	}

	tries := r.MaxTries - 1
	if tries < 0 {
		tries = 0
	}
	b := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(tries)), ctx)

	return backoff.RetryNotify(func() error { return r.checkErr(f()) }, b, r.notify)
}

func (r *Retrier) notify(err error, d time.Duration) {
	if r.Notify != nil {
		r.Notify(err, d)
	}
}

func (r *Retrier) checkErr(err error) error {
	if err != nil && r.ShouldRetry != nil && !r.ShouldRetry(err) {
		return &backoff.PermanentError{Err: err}
	}
	return err
}
