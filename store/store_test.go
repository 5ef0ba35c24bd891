package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-xspress/deadtime"
	"github.com/arloliu/go-xspress/detector"
)

const roiDoc = `
mode = "roi"
grade_mode = "threshold"
spectrum_length = 1024
summed_spectrum = true

[[element]]
id = 0
window_lo = 10
window_hi = 1000

  [element.deadtime]
  all_event_offset = 3.4e-7
  in_window_offset = 1.2e-7

  [[element.region]]
  name = "FeKa"
  kind = "scalar"
  start = 100
  end = 120

  [[element.region]]
  name = "CuKa"
  kind = "spectrum"
  start = 200
  end = 203

[[element]]
id = 1
window_lo = 10
window_hi = 1000
excluded = true

  [[element.region]]
  name = "FeKa"
  kind = "scalar"
  start = 101
  end = 121

  [[element.region]]
  name = "CuKa"
  kind = "spectrum"
  start = 210
  end = 213
`

func writeFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "detector.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestFileStore_Load(t *testing.T) {
	s := NewFileStore(writeFile(t, roiDoc))

	cfg, err := s.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, detector.RegionsOfInterest, cfg.Mode())
	assert.Equal(t, detector.GradeThreshold, cfg.GradeMode())
	assert.Equal(t, 1024, cfg.SpectrumLength())
	assert.True(t, cfg.SummedSpectrum())
	require.Equal(t, 2, cfg.NumElements())

	el := cfg.Element(0)
	assert.Equal(t, detector.Window{Lo: 10, Hi: 1000}, el.Window)
	assert.InDelta(t, 3.4e-7, el.DeadTime.AllEventOffset, 1e-15)
	require.Len(t, el.Regions, 2)
	assert.Equal(t, detector.PartialSpectrum, el.Regions[1].Kind)
	assert.Equal(t, "CuKa", el.Regions[1].Name)
	assert.True(t, cfg.Element(1).Excluded)
}

func TestFileStore_LoadDefaults(t *testing.T) {
	doc := `
[[element]]
id = 3
window_lo = 0
window_hi = 4095
`
	cfg, err := NewFileStore(writeFile(t, doc)).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, detector.ScalerOnly, cfg.Mode())
	assert.Equal(t, detector.GradeNone, cfg.GradeMode())
	assert.Equal(t, detector.DefaultSpectrumLength, cfg.SpectrumLength())
	assert.Equal(t, deadtime.Calibration{}, cfg.Element(0).DeadTime)
}

func TestFileStore_LoadErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		err  error
	}{
		{
			name: "unknown key",
			doc:  "colour = \"red\"\n[[element]]\nid = 0\nwindow_hi = 10\n",
			err:  ErrUnknownKey,
		},
		{
			name: "unknown mode",
			doc:  "mode = \"fast\"\n[[element]]\nid = 0\nwindow_hi = 10\n",
			err:  detector.ErrUnknownMode,
		},
		{
			name: "unknown region kind",
			doc:  "[[element]]\nid = 0\nwindow_hi = 10\n[[element.region]]\nname = \"a\"\nkind = \"blob\"\nstart = 1\nend = 2\n",
			err:  detector.ErrUnknownRegionKind,
		},
		{
			name: "no elements",
			doc:  "mode = \"scalers\"\n",
			err:  detector.ErrInvalidConfig,
		},
		{
			name: "window outside spectrum",
			doc:  "spectrum_length = 16\n[[element]]\nid = 0\nwindow_hi = 16\n",
			err:  detector.ErrInvalidWindow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFileStore(writeFile(t, tt.doc)).Load(context.Background())
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestFileStore_LoadMissing(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "missing.toml"))

	_, err := s.Load(context.Background())
	require.ErrorIs(t, err, ErrConfigNotFound)
}

func TestFileStore_LoadMalformed(t *testing.T) {
	_, err := NewFileStore(writeFile(t, "mode = ")).Load(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrConfigNotFound)
}

func TestFileStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	cfg, err := Decode(strings.NewReader(roiDoc))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "saved.toml")
	s := NewFileStore(path)
	require.NoError(t, s.Save(ctx, cfg))
	assert.Equal(t, path, s.Path())

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, cfg.Mode(), loaded.Mode())
	assert.Equal(t, cfg.GradeMode(), loaded.GradeMode())
	assert.Equal(t, cfg.SpectrumLength(), loaded.SpectrumLength())
	assert.Equal(t, cfg.Elements(), loaded.Elements())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewFileStore(writeFile(t, roiDoc))
	_, err := s.Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
