package kdtree

import "log/slog"

// DefaultCapacity is the number of points a tree holds before its arena grows.
const DefaultCapacity = 64

type options struct {
	capacity int
	logger   *slog.Logger
}

// Option configures a Tree.
type Option func(*options)

// WithCapacity sizes the arena for n points. Negative values are ignored.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.capacity = n
		}
	}
}

// WithLogger sets the logger used for arena growth and invariant breaches.
// A nil logger discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func applyOptions(optFns []Option) options {
	o := options{capacity: DefaultCapacity}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return o
}
