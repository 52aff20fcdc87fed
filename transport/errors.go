package transport

import "github.com/pkg/errors"

var (
	// ErrBasisInconsistent is returned when the basic cells of an allocation
	// do not form a basis: no closed loop runs through the entering cell, or
	// there are more than m+n-1 basic cells.
	ErrBasisInconsistent = errors.New("transport: allocation is not a basic solution")

	// ErrNotConverged is returned when the iteration cap is reached before
	// every reduced cost is non-negative.
	ErrNotConverged = errors.New("transport: iteration limit reached")

	// ErrNotOptimal is returned by CheckOptimality for a negative reduced cost.
	ErrNotOptimal = errors.New("transport: allocation is not optimal")
)
