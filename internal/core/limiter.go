package core

// limiter.go bounds how many files are decoded at once.
//
// Spreadsheet decoding holds the whole workbook in memory, so the number
// of concurrent decodes across all sessions is capped with a semaphore.
// Requests that cannot get a slot within maxWait fail with
// ErrTooManyDecodes.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyDecodes is returned when every decode slot stays busy for the
// whole wait window. Clients should retry after a short delay.
var ErrTooManyDecodes = errors.New("too many files being read, please try again later")

const (
	DefaultMaxConcurrentDecodes = 4
	DefaultDecodeWait           = 10 * time.Second
)

// DecodeLimiter restricts concurrent file decoding using a semaphore.
type DecodeLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.RWMutex
	active int
}

// NewDecodeLimiter creates a limiter allowing maxConcurrent decodes at once.
func NewDecodeLimiter(maxConcurrent int, maxWait time.Duration) *DecodeLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentDecodes
	}
	if maxWait <= 0 {
		maxWait = DefaultDecodeWait
	}
	return &DecodeLimiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// Acquire waits for a slot. The caller must Release it (use defer).
func (l *DecodeLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil
	case <-waitCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyDecodes
	}
}

// Release frees a slot taken by Acquire.
func (l *DecodeLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()
	<-l.semaphore
}

// ActiveCount returns the number of decodes in progress.
func (l *DecodeLimiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// Available returns the number of free slots.
func (l *DecodeLimiter) Available() int {
	return cap(l.semaphore) - len(l.semaphore)
}

// DecodeLimiterStatus is a snapshot of the limiter for monitoring.
type DecodeLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state.
func (l *DecodeLimiter) Status() DecodeLimiterStatus {
	return DecodeLimiterStatus{
		Active:        l.ActiveCount(),
		Available:     l.Available(),
		MaxConcurrent: cap(l.semaphore),
	}
}
