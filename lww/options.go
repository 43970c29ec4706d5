package lww

type options struct {
	clock Clock
	tie   TiePolicy
}

type Option func(*options)

// WithClock replaces the default wall clock.
func WithClock(c Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithTiePolicy picks what happens when add and remove timestamps are equal.
// Every replica of a set has to agree on it.
func WithTiePolicy(p TiePolicy) Option {
	return func(o *options) { o.tie = p }
}

func buildOptions(opts []Option) options {
	o := options{tie: RemoveWins}
	for _, opt := range opts {
		opt(&o)
	}
	if o.clock == nil {
		o.clock = NewWallClock()
	}
	return o
}
