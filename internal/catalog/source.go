package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/litescript/ls-stellar/internal/astro"
	"github.com/litescript/ls-stellar/internal/logging"
)

// ErrNoStars is returned when a source holds no usable star.
var ErrNoStars = errors.New("no stars in dataset")

// Source produces a star dataset.
type Source interface {
	Load(ctx context.Context) ([]astro.Star, error)
}

// Builtin serves the bundled bright-star catalog.
type Builtin struct{}

// Load returns the bundled catalog.
func (Builtin) Load(context.Context) ([]astro.Star, error) {
	return astro.DefaultStarCatalog().Stars, nil
}

func (Builtin) String() string {
	return "built-in"
}

// FileSource reads a single .ndjson or .ndjson.gz file.
type FileSource struct {
	Path   string
	Logger *logging.Logger
}

// Load decodes the file.
func (f FileSource) Load(ctx context.Context) ([]astro.Star, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stars, stats, err := decodeFile(f.Path)
	if err != nil {
		return nil, err
	}
	report(f.Logger, f.Path, stats)
	if len(stars) == 0 {
		return nil, fmt.Errorf("%s: %w", f.Path, ErrNoStars)
	}
	return stars, nil
}

func (f FileSource) String() string {
	return f.Path
}

// DirSource reads a tile directory written by WriteTiles. When the
// directory has a manifest only the listed tiles are read, preferring the
// gzip copy; otherwise every .ndjson file is read, falling back to
// .ndjson.gz files when there are none.
type DirSource struct {
	Dir    string
	Logger *logging.Logger
}

// Load decodes every tile in the directory.
func (d DirSource) Load(ctx context.Context) ([]astro.Star, error) {
	paths, err := d.tilePaths()
	if err != nil {
		return nil, err
	}

	var (
		stars []astro.Star
		total DecodeStats
	)
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s, stats, err := decodeFile(p)
		if err != nil {
			return nil, err
		}
		stars = append(stars, s...)
		total.Add(stats)
	}

	report(d.Logger, d.Dir, total)
	if len(stars) == 0 {
		return nil, fmt.Errorf("%s: %w", d.Dir, ErrNoStars)
	}
	return stars, nil
}

func (d DirSource) String() string {
	return d.Dir
}

func (d DirSource) tilePaths() ([]string, error) {
	data, err := os.ReadFile(filepath.Join(d.Dir, ManifestName))
	switch {
	case err == nil:
		var m Manifest
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse manifest: %w", err)
		}
		paths := make([]string, 0, len(m.Tiles))
		for _, key := range m.Tiles {
			gz := filepath.Join(d.Dir, key+".ndjson.gz")
			if _, err := os.Stat(gz); err == nil {
				paths = append(paths, gz)
			} else {
				paths = append(paths, filepath.Join(d.Dir, key+".ndjson"))
			}
		}
		return paths, nil
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	paths, err := filepath.Glob(filepath.Join(d.Dir, "*.ndjson"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		paths, err = filepath.Glob(filepath.Join(d.Dir, "*.ndjson.gz"))
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// NewSource picks a source for a location: an http(s) URL, a directory, or
// a file. An empty location selects the built-in catalog.
func NewSource(location string, logger *logging.Logger, opts ...HTTPOption) (Source, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	switch {
	case location == "":
		return Builtin{}, nil
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return NewHTTPSource(location, append([]HTTPOption{WithHTTPLogger(logger)}, opts...)...), nil
	}

	info, err := os.Stat(location)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", location, err)
	}
	if info.IsDir() {
		return DirSource{Dir: location, Logger: logger}, nil
	}
	return FileSource{Path: location, Logger: logger}, nil
}

func decodeFile(path string) ([]astro.Star, DecodeStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, DecodeStats{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	stars, stats, err := Decode(f)
	if err != nil {
		return nil, stats, fmt.Errorf("%s: %w", path, err)
	}
	return stars, stats, nil
}

func report(l *logging.Logger, name string, stats DecodeStats) {
	if l == nil {
		return
	}
	if stats.Bad > 0 {
		l.Warn("%s: skipped %d of %d lines", name, stats.Bad, stats.Lines)
	}
	l.Info("%s: loaded %d stars", name, stats.Lines-stats.Bad)
}
