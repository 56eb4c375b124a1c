// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package simcir

import "github.com/go-logr/logr"

// An Option configures a Circuit.
//
type Option func(*options)

type options struct {
	reg      *Registry
	log      logr.Logger
	clock    Clock
	metrics  *Metrics
	maxSteps int
	strict   bool
}

func newOptions(opts []Option) *options {
	o := &options{
		reg:      DefaultRegistry,
		log:      logr.Discard(),
		clock:    SystemClock,
		maxSteps: DefaultMaxSteps,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithRegistry sets the device registry used to build devices.
//
func WithRegistry(r *Registry) Option {
	return func(o *options) { o.reg = r }
}

// WithLogger sets the circuit logger.
//
func WithLogger(l logr.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithClock sets the clock used by timer driven devices.
//
func WithClock(c Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithMetrics enables metrics collection.
//
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithMaxSteps sets the number of device evaluations after which a cascade is
// considered to be a combinational loop. Values <= 0 select DefaultMaxSteps.
//
func WithMaxSteps(n int) Option {
	return func(o *options) {
		if n <= 0 {
			n = DefaultMaxSteps
		}
		o.maxSteps = n
	}
}

// StrictConnectors makes Build fail on connectors that cannot be resolved
// instead of dropping them.
//
func StrictConnectors(strict bool) Option {
	return func(o *options) { o.strict = strict }
}
