package catalog

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"

	"github.com/litescript/ls-stellar/internal/astro"
)

const (
	// DefaultTileDeg is the sky tile edge in degrees.
	DefaultTileDeg = 4.0

	// ManifestName is the tile directory index file.
	ManifestName = "index.json"
)

// Manifest lists the tiles in a tile directory.
type Manifest struct {
	TileDeg float64  `json:"tile_deg"`
	Tiles   []string `json:"tiles"`
	Stars   int      `json:"stars"`
}

// TileKey returns the "tx_ty" key of the tile containing ra/dec, where tx
// counts tiles eastward from RA 0 and ty northward from Dec −90.
func TileKey(raDeg, decDeg, tileDeg float64) string {
	ra := math.Mod(math.Mod(raDeg, 360)+360, 360)
	tx := int(math.Floor(ra / tileDeg))
	ty := int(math.Floor((decDeg + 90) / tileDeg))
	return fmt.Sprintf("%d_%d", tx, ty)
}

// Tile groups stars by TileKey, preserving input order within a tile.
func Tile(stars []astro.Star, tileDeg float64) map[string][]astro.Star {
	tiles := make(map[string][]astro.Star)
	for _, s := range stars {
		key := TileKey(s.RAdeg, s.DecDeg, tileDeg)
		tiles[key] = append(tiles[key], s)
	}
	return tiles
}

// WriteTiles writes every tile as both key.ndjson and key.ndjson.gz into
// dir, plus a manifest.
func WriteTiles(dir string, stars []astro.Star, tileDeg float64) (Manifest, error) {
	if !(tileDeg > 0) || tileDeg > 180 {
		return Manifest{}, fmt.Errorf("invalid tile size %v", tileDeg)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Manifest{}, fmt.Errorf("create tile dir: %w", err)
	}

	tiles := Tile(stars, tileDeg)
	m := Manifest{TileDeg: tileDeg, Stars: len(stars)}

	for key, group := range tiles {
		var plain bytes.Buffer
		if err := Encode(&plain, group); err != nil {
			return Manifest{}, fmt.Errorf("tile %s: %w", key, err)
		}

		path := filepath.Join(dir, key+".ndjson")
		if err := os.WriteFile(path, plain.Bytes(), 0644); err != nil {
			return Manifest{}, fmt.Errorf("write tile %s: %w", key, err)
		}
		if err := writeGzip(path+".gz", plain.Bytes()); err != nil {
			return Manifest{}, fmt.Errorf("write tile %s: %w", key, err)
		}
		m.Tiles = append(m.Tiles, key)
	}
	sort.Strings(m.Tiles)

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return Manifest{}, fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestName), data, 0644); err != nil {
		return Manifest{}, fmt.Errorf("write manifest: %w", err)
	}
	return m, nil
}

func writeGzip(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	zw := gzip.NewWriter(f)
	if _, err := zw.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
