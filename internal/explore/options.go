package explore

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Option configures an exploration.
type Option func(*options)

type options struct {
	maxPasses int
	flat      bool
	log       *logrus.Logger
	packages  []string
}

// WithMaxPasses bounds the number of passes. A body whose control flow is not
// deterministic across passes may otherwise never terminate.
//
// Default: 0 (no limit).
func WithMaxPasses(n int) Option {
	return func(o *options) {
		o.maxPasses = n
	}
}

// WithFlatPaths records only the finished block itself instead of the full
// chain of enclosing blocks.
func WithFlatPaths(flat bool) Option {
	return func(o *options) {
		o.flat = flat
	}
}

// WithLogger sets the logger used for pass tracing at debug level.
func WithLogger(log *logrus.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithInternalPackages registers packages whose frames are never taken as a
// block's identity. Wrappers around T register themselves here.
func WithInternalPackages(packages ...string) Option {
	return func(o *options) {
		o.packages = append(o.packages, packages...)
	}
}

func defaultOptions() options {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return options{log: log}
}
