package deadtime

import "math"

const (
	invertMaxIter = 200
	invertRelTol  = 1e-12
)

// ParalyzableInverse returns the true rate x such that x·e^(−x·tau) ≈ measured.
//
// The root is taken on the lower, monotone branch x ∈ [measured, 1/tau]. Measured rates above
// the model maximum 1/(tau·e) have no solution and yield NaN, as do negative or non-finite inputs.
func ParalyzableInverse(measured, tau float64) float64 {
	switch {
	case math.IsNaN(measured) || math.IsInf(measured, 0) || math.IsNaN(tau) || math.IsInf(tau, 0):
		return math.NaN()
	case measured < 0 || tau < 0:
		return math.NaN()
	case measured == 0:
		return 0
	case tau == 0:
		return measured
	}

	hi := 1 / tau
	if measured > hi/math.E {
		return math.NaN()
	}
	lo := measured

	f := func(x float64) float64 { return x*math.Exp(-x*tau) - measured }

	// Newton steps guarded by a bisection bracket; f is increasing on [lo, hi].
	x := measured
	for i := 0; i < invertMaxIter; i++ {
		fx := f(x)
		if fx == 0 {
			return x
		}
		if fx < 0 {
			lo = x
		} else {
			hi = x
		}

		next := x
		if d := math.Exp(-x*tau) * (1 - x*tau); d > 0 {
			next = x - fx/d
		}
		if next <= lo || next >= hi {
			next = lo + (hi-lo)/2
		}

		if math.Abs(next-x) <= invertRelTol*math.Max(1, math.Abs(x)) {
			return next
		}
		x = next
	}

	return x
}
