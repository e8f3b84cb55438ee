package selection

// Option configures an Engine.
type Option func(*Engine)

// WithRNG swaps the randomness source. Nil is ignored.
func WithRNG(r RNG) Option {
	return func(e *Engine) {
		if r != nil {
			e.rng = r
		}
	}
}

// WithRevolutions sets the inclusive range of full turns added per spin.
// Values below the minimum of 3, or an inverted range, are ignored.
func WithRevolutions(lo, hi int) Option {
	return func(e *Engine) {
		if lo >= MinRevolutions && hi >= lo {
			e.minRev = lo
			e.maxRev = hi
		}
	}
}
