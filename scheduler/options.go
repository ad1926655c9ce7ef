package scheduler

import (
	"time"

	"github.com/joeycumines/logiface"
)

type options struct {
	now           func() time.Time
	frameInterval time.Duration
	shouldYield   func() bool
	logger        *logiface.Logger[logiface.Event]
}

// Option configures a Scheduler.
type Option func(*options)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithFrameInterval sets the length of a slice before ShouldYield reports
// true. Defaults to 5ms.
func WithFrameInterval(d time.Duration) Option {
	return func(o *options) {
		o.frameInterval = d
	}
}

// WithYield overrides the time based yield signal entirely.
func WithYield(fn func() bool) Option {
	return func(o *options) {
		o.shouldYield = fn
	}
}

func WithLogger(l *logiface.Logger[logiface.Event]) Option {
	return func(o *options) {
		o.logger = l
	}
}

func resolveOptions(opts []Option) *options {
	cfg := &options{
		now:           time.Now,
		frameInterval: 5 * time.Millisecond,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(cfg)
	}
	return cfg
}
