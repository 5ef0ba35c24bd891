package frame

import (
	"fmt"
	"strconv"
	"strings"
)

// Shape lists the dimensions of a block, outermost first.
type Shape []int

// Size returns the number of elements described by s.
func (s Shape) Size() int {
	if len(s) == 0 {
		return 0
	}
	n := 1
	for _, d := range s {
		n *= d
	}

	return n
}

// Validate checks that every dimension is positive.
func (s Shape) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("%w: empty shape", ErrInvalidShape)
	}
	for i, d := range s {
		if d <= 0 {
			return fmt.Errorf("%w: dimension %d is %d", ErrInvalidShape, i, d)
		}
	}

	return nil
}

func (s Shape) String() string {
	var sb strings.Builder
	for _, d := range s {
		sb.WriteByte('[')
		sb.WriteString(strconv.Itoa(d))
		sb.WriteByte(']')
	}

	return sb.String()
}

// checkLength validates shape s against a flat block of n words.
func (s Shape) checkLength(n int) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if n != s.Size() {
		return fmt.Errorf("%w: got %d words, shape %s needs %d", ErrShapeMismatch, n, s, s.Size())
	}

	return nil
}

// Counters converts a flat wire block into counters.
func Counters(flat []int32) []Counter {
	out := make([]Counter, len(flat))
	for i, w := range flat {
		out[i] = CounterFromWire(w)
	}

	return out
}

// Reshape2 splits flat into rows of width cols.
// The rows share the backing array of flat.
func Reshape2[T any](flat []T, rows, cols int) ([][]T, error) {
	if err := (Shape{rows, cols}).checkLength(len(flat)); err != nil {
		return nil, err
	}

	out := make([][]T, rows)
	for r := range out {
		out[r] = flat[r*cols : (r+1)*cols : (r+1)*cols]
	}

	return out, nil
}

// Reshape4 builds the nested d0 × d1 × d2 × d3 view of flat in row-major order.
func Reshape4[T any](flat []T, d0, d1, d2, d3 int) ([][][][]T, error) {
	if err := (Shape{d0, d1, d2, d3}).checkLength(len(flat)); err != nil {
		return nil, err
	}

	out := make([][][][]T, d0)
	pos := 0
	for i := range out {
		out[i] = make([][][]T, d1)
		for j := range out[i] {
			out[i][j] = make([][]T, d2)
			for k := range out[i][j] {
				out[i][j][k] = flat[pos : pos+d3 : pos+d3]
				pos += d3
			}
		}
	}

	return out, nil
}

// Flatten2 concatenates rows back into a flat block.
func Flatten2[T any](rows [][]T) []T {
	n := 0
	for _, r := range rows {
		n += len(r)
	}
	out := make([]T, 0, n)
	for _, r := range rows {
		out = append(out, r...)
	}

	return out
}

// Flatten4 concatenates a nested 4-D view back into a flat block in row-major order.
func Flatten4[T any](nested [][][][]T) []T {
	var out []T
	for _, a := range nested {
		for _, b := range a {
			for _, c := range b {
				out = append(out, c...)
			}
		}
	}

	return out
}
