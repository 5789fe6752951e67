// Package ratelimit counts events per key in fixed windows stored in redis.
package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrLimited is returned by Allow when the key has used up its window.
	ErrLimited = errors.New("rate limit exceeded")
	// ErrInvalidWindow is returned by NewWindow for a non-positive limit or period.
	ErrInvalidWindow = errors.New("rate limit needs a positive max events and period")
)

// Limiter decides whether one more event for key is allowed.
type Limiter interface {
	// Allow records an event for key. It returns ErrLimited, and the time
	// until the window resets, once the window is full.
	Allow(ctx context.Context, key string) (retryAfter time.Duration, err error)
}

// txPipeliner is the part of *redis.Client used by Window.
type txPipeliner interface {
	TxPipelined(ctx context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error)
}

var _ txPipeliner = (*redis.Client)(nil)

// Window allows at most Max events per key within Period.
type Window struct {
	client txPipeliner
	prefix string
	max    int64
	period time.Duration
}

// NewWindow returns a fixed-window limiter. Keys are namespaced with prefix.
// A zero limit would reject every event, so it is refused like a zero period.
func NewWindow(client txPipeliner, prefix string, maxEvents int, period time.Duration) (*Window, error) {
	if maxEvents <= 0 || period <= 0 {
		return nil, ErrInvalidWindow
	}

	return &Window{
		client: client,
		prefix: prefix,
		max:    int64(maxEvents),
		period: period,
	}, nil
}

// Allow increments the counter for key and arms its expiry on first use.
func (w *Window) Allow(ctx context.Context, key string) (time.Duration, error) {
	fk := w.prefix + key

	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)

	_, err := w.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, fk)
		pipe.ExpireNX(ctx, fk, w.period)
		ttl = pipe.TTL(ctx, fk)
		return nil
	})
	if err != nil {
		return 0, err
	}

	if incr.Val() > w.max {
		retry := ttl.Val()
		if retry < 0 {
			retry = w.period
		}
		return retry, ErrLimited
	}

	return 0, nil
}

// Noop allows every event.
type Noop struct{}

// Allow always succeeds.
func (Noop) Allow(context.Context, string) (time.Duration, error) {
	return 0, nil
}
