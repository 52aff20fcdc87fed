package transport

import (
	"log"
	"os"
)

// DefaultEpsilon is the tolerance below which an allocation entry counts as
// zero and a reduced cost counts as non-negative.
const DefaultEpsilon = 1e-9

// Options configures Optimize and Solve.
//   - Epsilon: entries <= Epsilon are non-basic (default DefaultEpsilon).
//   - MaxIterations: improvement cap, 0 selects DefaultMaxIterations.
//   - Verbose: log every improvement step to Logger.
//   - Logger: destination for Verbose output (default stderr).
type Options struct {
	Epsilon       float64
	MaxIterations int
	Verbose       bool
	Logger        *log.Logger
}

// DefaultOptions returns Options with every field at its default.
func DefaultOptions() Options {
	return Options{
		Epsilon: DefaultEpsilon,
		Logger:  newLogger(),
	}
}

// DefaultMaxIterations is the iteration cap used for an m x n problem when
// Options.MaxIterations is zero.
func DefaultMaxIterations(m, n int) int {
	return max(1000, 10*m*n*(m+n))
}

func (o *Options) normalize() {
	if o.Epsilon <= 0 {
		o.Epsilon = DefaultEpsilon
	}
	if o.MaxIterations < 0 {
		o.MaxIterations = 0
	}
	if o.Logger == nil {
		o.Logger = newLogger()
	}
}

func newLogger() *log.Logger {
	return log.New(os.Stderr, "transport: ", log.LstdFlags)
}
