package frame

// ScalerBlock is a decoded scaler read covering consecutive frames.
type ScalerBlock struct {
	// First is the hardware index of the first frame in the block.
	First int
	// Channels is the number of detector channels per frame.
	Channels int
	// Raw holds one row of channels×4 counters per frame.
	Raw [][]Counter
}

// DecodeScalers decodes a frames × channels × 4 scaler block.
func DecodeScalers(flat []int32, first, frames, channels int) (*ScalerBlock, error) {
	if err := (Shape{frames, channels, ScalersPerChannel}).checkLength(len(flat)); err != nil {
		return nil, err
	}

	raw, err := Reshape2(Counters(flat), frames, channels*ScalersPerChannel)
	if err != nil {
		return nil, err
	}

	return &ScalerBlock{First: first, Channels: channels, Raw: raw}, nil
}

// Frames returns the number of frames in the block.
func (b *ScalerBlock) Frames() int { return len(b.Raw) }

// Shape returns the block shape as frames × (channels×4).
func (b *ScalerBlock) Shape() Shape {
	return Shape{len(b.Raw), b.Channels * ScalersPerChannel}
}

// Quad returns the scalers of channel ch in the i-th frame of the block.
func (b *ScalerBlock) Quad(i, ch int) ScalerQuad {
	off := ch * ScalersPerChannel
	return quadFrom(b.Raw[i][off : off+ScalersPerChannel])
}

// Quads returns the scalers of every channel in the i-th frame of the block.
func (b *ScalerBlock) Quads(i int) []ScalerQuad {
	out := make([]ScalerQuad, b.Channels)
	for ch := range out {
		out[ch] = b.Quad(i, ch)
	}

	return out
}

// Wire re-encodes the block into its flat wire representation.
func (b *ScalerBlock) Wire() []int32 {
	flat := Flatten2(b.Raw)
	out := make([]int32, len(flat))
	for i, c := range flat {
		out[i] = c.Wire()
	}

	return out
}

// SpectrumBlock is a decoded MCA read covering consecutive frames.
type SpectrumBlock struct {
	First    int
	Channels int
	Grades   int
	Bins     int
	// Data is indexed [frame][channel][grade][bin].
	Data [][][][]Counter
}

// DecodeSpectra decodes a frames × channels × grades × bins spectrum block.
func DecodeSpectra(flat []int32, first, frames, channels, grades, bins int) (*SpectrumBlock, error) {
	data, err := Reshape4(Counters(flat), frames, channels, grades, bins)
	if err != nil {
		return nil, err
	}

	return &SpectrumBlock{
		First:    first,
		Channels: channels,
		Grades:   grades,
		Bins:     bins,
		Data:     data,
	}, nil
}

// Frames returns the number of frames in the block.
func (b *SpectrumBlock) Frames() int { return len(b.Data) }

// Shape returns frames × channels × grades × bins.
func (b *SpectrumBlock) Shape() Shape {
	return Shape{len(b.Data), b.Channels, b.Grades, b.Bins}
}

// Element returns the [grade][bin] spectrum of channel ch in the i-th frame of the block.
func (b *SpectrumBlock) Element(i, ch int) [][]Counter {
	return b.Data[i][ch]
}

// Wire re-encodes the block into its flat wire representation.
func (b *SpectrumBlock) Wire() []int32 {
	flat := Flatten4(b.Data)
	out := make([]int32, len(flat))
	for i, c := range flat {
		out[i] = c.Wire()
	}

	return out
}
