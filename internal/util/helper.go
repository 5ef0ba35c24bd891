package util

// CloneSlice clones slice with cloneSize.
// This function will use src length as the clone size if cloneSize is 0.
func CloneSlice[T any](src []T, cloneSize int) []T {
	if cloneSize == 0 {
		cloneSize = len(src)
	}
	clone := make([]T, cloneSize)
	copy(clone, src)

	return clone
}

// Float64Slice converts integer counts to float64 values.
func Float64Slice[T ~int | ~int32 | ~int64 | ~uint | ~uint32 | ~uint64](values []T) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}

	return out
}

// Product returns the product of dims, or 0 if dims is empty.
func Product(dims []int) int {
	if len(dims) == 0 {
		return 0
	}
	p := 1
	for _, d := range dims {
		p *= d
	}

	return p
}
