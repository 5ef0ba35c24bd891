// Package store persists detector configurations as TOML documents.
//
// A document looks like:
//
//	mode = "roi"
//	grade_mode = "threshold"
//	spectrum_length = 4096
//	summed_spectrum = false
//
//	[[element]]
//	id = 0
//	window_lo = 10
//	window_hi = 4000
//	excluded = false
//
//	  [element.deadtime]
//	  all_event_offset = 3.4e-7
//	  in_window_offset = 1.2e-7
//
//	  [[element.region]]
//	  name = "FeKa"
//	  kind = "scalar"
//	  start = 630
//	  end = 660
//
// Loading fails fast: a missing file, an unknown key, or an invalid configuration is returned as
// an error and never replaced by defaults.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/arloliu/go-xspress/deadtime"
	"github.com/arloliu/go-xspress/detector"
)

var (
	// ErrConfigNotFound indicates a configuration file that does not exist.
	ErrConfigNotFound = errors.New("detector configuration not found")

	// ErrUnknownKey indicates a document carrying keys the store does not understand.
	ErrUnknownKey = errors.New("unknown configuration key")
)

// Store loads and saves detector configurations.
type Store interface {
	Load(ctx context.Context) (*detector.Configuration, error)
	Save(ctx context.Context, cfg *detector.Configuration) error
}

type document struct {
	Mode           string       `toml:"mode"`
	GradeMode      string       `toml:"grade_mode"`
	SpectrumLength int          `toml:"spectrum_length"`
	SummedSpectrum bool         `toml:"summed_spectrum"`
	Elements       []elementDoc `toml:"element"`
}

type elementDoc struct {
	ID       int                  `toml:"id"`
	WindowLo int                  `toml:"window_lo"`
	WindowHi int                  `toml:"window_hi"`
	Excluded bool                 `toml:"excluded"`
	DeadTime deadtime.Calibration `toml:"deadtime"`
	Regions  []regionDoc          `toml:"region,omitempty"`
}

type regionDoc struct {
	Name  string `toml:"name"`
	Kind  string `toml:"kind"`
	Start int    `toml:"start"`
	End   int    `toml:"end"`
}

// Decode reads a configuration document from r.
func Decode(r io.Reader) (*detector.Configuration, error) {
	var doc document
	meta, err := toml.NewDecoder(r).Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("decode detector config: %w", err)
	}

	return build(meta, &doc)
}

// Encode writes cfg to w as a configuration document.
func Encode(w io.Writer, cfg *detector.Configuration) error {
	if err := toml.NewEncoder(w).Encode(toDocument(cfg)); err != nil {
		return fmt.Errorf("encode detector config: %w", err)
	}

	return nil
}

func build(meta toml.MetaData, doc *document) (*detector.Configuration, error) {
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}

		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, strings.Join(keys, ", "))
	}

	var opts []detector.Option
	if meta.IsDefined("mode") {
		m, err := detector.ParseMode(strings.TrimSpace(doc.Mode))
		if err != nil {
			return nil, err
		}
		opts = append(opts, detector.WithMode(m))
	}
	if meta.IsDefined("grade_mode") {
		m, err := detector.ParseGradeMode(strings.TrimSpace(doc.GradeMode))
		if err != nil {
			return nil, err
		}
		opts = append(opts, detector.WithGradeMode(m))
	}
	if meta.IsDefined("spectrum_length") {
		opts = append(opts, detector.WithSpectrumLength(doc.SpectrumLength))
	}
	if meta.IsDefined("summed_spectrum") {
		opts = append(opts, detector.WithSummedSpectrum(doc.SummedSpectrum))
	}

	elements := make([]detector.Element, 0, len(doc.Elements))
	for _, ed := range doc.Elements {
		el := detector.Element{
			ID:       ed.ID,
			Window:   detector.Window{Lo: ed.WindowLo, Hi: ed.WindowHi},
			Excluded: ed.Excluded,
			DeadTime: ed.DeadTime,
		}
		for _, rd := range ed.Regions {
			kind, err := detector.ParseRegionKind(strings.TrimSpace(rd.Kind))
			if err != nil {
				return nil, fmt.Errorf("element %d region %q: %w", ed.ID, rd.Name, err)
			}
			el.Regions = append(el.Regions, detector.Region{
				Kind:  kind,
				Start: rd.Start,
				End:   rd.End,
				Name:  strings.TrimSpace(rd.Name),
			})
		}
		elements = append(elements, el)
	}

	return detector.NewConfiguration(elements, opts...)
}

func toDocument(cfg *detector.Configuration) document {
	doc := document{
		Mode:           cfg.Mode().String(),
		GradeMode:      cfg.GradeMode().String(),
		SpectrumLength: cfg.SpectrumLength(),
		SummedSpectrum: cfg.SummedSpectrum(),
		Elements:       make([]elementDoc, 0, cfg.NumElements()),
	}
	for _, el := range cfg.Elements() {
		ed := elementDoc{
			ID:       el.ID,
			WindowLo: el.Window.Lo,
			WindowHi: el.Window.Hi,
			Excluded: el.Excluded,
			DeadTime: el.DeadTime,
		}
		for _, r := range el.Regions {
			ed.Regions = append(ed.Regions, regionDoc{Name: r.Name, Kind: r.Kind.String(), Start: r.Start, End: r.End})
		}
		doc.Elements = append(doc.Elements, ed)
	}

	return doc
}

// FileStore is a Store backed by a single TOML file.
type FileStore struct {
	path string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a store for the file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the file path of the store.
func (s *FileStore) Path() string { return s.path }

// Load reads and validates the configuration file.
func (s *FileStore) Load(ctx context.Context) (*detector.Configuration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var doc document
	meta, err := toml.DecodeFile(s.path, &doc)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, s.path)
		}

		return nil, fmt.Errorf("load detector config %s: %w", s.path, err)
	}

	cfg, err := build(meta, &doc)
	if err != nil {
		return nil, fmt.Errorf("load detector config %s: %w", s.path, err)
	}

	return cfg, nil
}

// Save writes cfg to the file, replacing it atomically.
func (s *FileStore) Save(ctx context.Context, cfg *detector.Configuration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("save detector config %s: %w", s.path, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if err := Encode(tmp, cfg); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save detector config %s: %w", s.path, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("save detector config %s: %w", s.path, err)
	}

	return nil
}
