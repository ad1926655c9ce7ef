package reconciler

import "github.com/joeycumines/logiface"

type options struct {
	logger      *logiface.Logger[logiface.Event]
	defaultLane Lane
	onError     func(error)
}

// Option configures a Root.
type Option func(*options)

// WithLogger sets the logger. A nil logger discards everything.
func WithLogger(l *logiface.Logger[logiface.Event]) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithDefaultLane sets the lane used by Render and by state updates outside
// RunWithLane and transitions. Defaults to SyncLane.
func WithDefaultLane(lane Lane) Option {
	return func(o *options) {
		if lane != NoLane {
			o.defaultLane = HighestPriorityLane(lane)
		}
	}
}

// WithErrorHandler is called with every render failure.
func WithErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.onError = fn
	}
}

func resolveOptions(opts []Option) *options {
	cfg := &options{defaultLane: SyncLane}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(cfg)
	}
	return cfg
}
