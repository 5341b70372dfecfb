package kd

import "log/slog"

type options struct {
	capacity int
	logger   *slog.Logger
}

// Option configures an Index.
type Option func(*options)

// WithCapacity reserves arena room for at least n points regardless of the
// size of the build.
func WithCapacity(n int) Option {
	return func(o *options) { o.capacity = n }
}

// WithLogger sets the logger handed to the underlying tree.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}
