package frame

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterFromWire(t *testing.T) {
	tests := []struct {
		name string
		wire int32
		want Counter
	}{
		{name: "zero", wire: 0, want: 0},
		{name: "positive", wire: 8_000_000, want: 8_000_000},
		{name: "max positive", wire: math.MaxInt32, want: math.MaxInt32},
		{name: "minus one is max uint32", wire: -1, want: math.MaxUint32},
		{name: "min int32", wire: math.MinInt32, want: 1 << 31},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := CounterFromWire(tt.wire)
			assert.Equal(t, tt.want, c)
			assert.Equal(t, tt.wire, c.Wire())
			assert.GreaterOrEqual(t, c.Float(), 0.0)
		})
	}
}

func TestShape(t *testing.T) {
	assert.Equal(t, 0, Shape{}.Size())
	assert.Equal(t, 24, Shape{2, 3, 4}.Size())
	assert.Equal(t, "[1][8]", Shape{1, 8}.String())

	require.NoError(t, Shape{1, 1}.Validate())
	assert.ErrorIs(t, Shape{}.Validate(), ErrInvalidShape)
	assert.ErrorIs(t, Shape{2, 0}.Validate(), ErrInvalidShape)
	assert.ErrorIs(t, Shape{-1}.Validate(), ErrInvalidShape)
}

func TestDecodeScalers(t *testing.T) {
	require := require.New(t)

	flat := []int32{100, 0, 80, 8000000, 200, 0, 150, 8000000}
	block, err := DecodeScalers(flat, 0, 1, 2)
	require.NoError(err)

	assert.Equal(t, Shape{1, 8}, block.Shape())
	assert.Equal(t, 1, block.Frames())
	assert.Equal(t, ScalerQuad{AllEvents: 100, Resets: 0, Windowed: 80, ClockTicks: 8000000}, block.Quad(0, 0))
	assert.Equal(t, ScalerQuad{AllEvents: 200, Resets: 0, Windowed: 150, ClockTicks: 8000000}, block.Quad(0, 1))
	assert.Len(t, block.Quads(0), 2)
	assert.Equal(t, flat, block.Wire())
}

func TestDecodeScalers_Unsigned(t *testing.T) {
	block, err := DecodeScalers([]int32{-1, 0, -2, 10}, 5, 1, 1)
	require.NoError(t, err)

	q := block.Quad(0, 0)
	assert.Equal(t, Counter(math.MaxUint32), q.AllEvents)
	assert.Equal(t, Counter(math.MaxUint32-1), q.Windowed)
	assert.Equal(t, 5, block.First)
}

func TestDecodeScalers_ShapeMismatch(t *testing.T) {
	tests := []struct {
		name     string
		flat     []int32
		frames   int
		channels int
		wantErr  error
	}{
		{name: "too short", flat: make([]int32, 7), frames: 1, channels: 2, wantErr: ErrShapeMismatch},
		{name: "too long", flat: make([]int32, 9), frames: 1, channels: 2, wantErr: ErrShapeMismatch},
		{name: "zero frames", flat: nil, frames: 0, channels: 2, wantErr: ErrInvalidShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeScalers(tt.flat, 0, tt.frames, tt.channels)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDecodeSpectra(t *testing.T) {
	require := require.New(t)

	// 2 frames × 2 channels × 2 grades × 3 bins
	flat := make([]int32, 24)
	for i := range flat {
		flat[i] = int32(i)
	}

	block, err := DecodeSpectra(flat, 10, 2, 2, 2, 3)
	require.NoError(err)
	assert.Equal(t, Shape{2, 2, 2, 3}, block.Shape())
	assert.Equal(t, 10, block.First)

	// row-major frame→channel→grade→bin
	assert.Equal(t, []Counter{0, 1, 2}, block.Element(0, 0)[0])
	assert.Equal(t, []Counter{3, 4, 5}, block.Element(0, 0)[1])
	assert.Equal(t, []Counter{6, 7, 8}, block.Element(0, 1)[0])
	assert.Equal(t, []Counter{21, 22, 23}, block.Element(1, 1)[1])

	_, err = DecodeSpectra(flat[:23], 0, 2, 2, 2, 3)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestReshapeRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42)) //nolint:gosec

	for iter := 0; iter < 50; iter++ {
		d := [4]int{1 + rng.Intn(3), 1 + rng.Intn(4), 1 + rng.Intn(16), 1 + rng.Intn(20)}
		flat := make([]int32, d[0]*d[1]*d[2]*d[3])
		for i := range flat {
			flat[i] = rng.Int31() - rng.Int31()
		}

		spectra, err := DecodeSpectra(flat, 0, d[0], d[1], d[2], d[3])
		require.NoError(t, err)
		assert.Equal(t, flat, spectra.Wire())

		nested, err := Reshape4(flat, d[0], d[1], d[2], d[3])
		require.NoError(t, err)
		assert.Equal(t, flat, Flatten4(nested))

		rows, err := Reshape2(flat, d[0]*d[1], d[2]*d[3])
		require.NoError(t, err)
		assert.Equal(t, flat, Flatten2(rows))
	}
}

func TestReshape2_RowsDoNotOverlap(t *testing.T) {
	rows, err := Reshape2([]int{1, 2, 3, 4}, 2, 2)
	require.NoError(t, err)

	rows[0] = append(rows[0], 99)
	assert.Equal(t, []int{3, 4}, rows[1], "appending to a row must not clobber the next row")
}
