package catalog

import (
	"bytes"
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/litescript/ls-stellar/internal/astro"
)

const sampleNDJSON = `{"hip": 32349, "ra": 101.287, "dec": -16.716, "dist_pc": null, "vmag": -1.46, "plx": 379.21, "bv": 0.009, "sp_type": "A1V", "absmag": null, "temp_k": null}
{"hip": 91262, "ra": 279.235, "dec": 38.784, "dist_pc": 7.68, "vmag": 0.03, "plx": 130.23, "bv": -0.001, "sp_type": "A0V", "absmag": 0.6, "temp_k": 9600, "name": "Vega"}

not json at all
{"hip": 7, "dec": 10.0, "vmag": 5}
{"hip": 8, "ra": 10.0, "dec": 95.0}
{"hip": 9, "ra": 359.9, "dec": -89.9, "sp_type": null}
`

func TestDecode(t *testing.T) {
	stars, stats, err := Decode(strings.NewReader(sampleNDJSON))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if stats.Lines != 6 || stats.Bad != 3 {
		t.Errorf("stats = %+v, want 6 lines, 3 bad", stats)
	}
	if len(stars) != 3 {
		t.Fatalf("decoded %d stars, want 3", len(stars))
	}

	sirius := stars[0]
	if hip, _ := sirius.ID(); hip != 32349 {
		t.Errorf("hip = %d", hip)
	}
	d, ok := sirius.Distance()
	if !ok || math.Abs(d-2.637) > 0.001 {
		t.Errorf("distance not derived from parallax: %v, %v", d, ok)
	}
	if _, ok := sirius.Temperature(); !ok {
		t.Error("temperature not derived from B−V")
	}

	vega := stars[1]
	if vega.Name != "Vega" || *vega.TempK != 9600 || *vega.AbsMag != 0.6 {
		t.Errorf("recorded values changed: %+v", vega)
	}

	if stars[2].SpType != "" {
		t.Errorf("null sp_type = %q", stars[2].SpType)
	}
}

func TestDecodeGzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write([]byte(sampleNDJSON))
	zw.Close()

	stars, stats, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode gzip: %v", err)
	}
	if len(stars) != 3 || stats.Bad != 3 {
		t.Errorf("gzip decode: %d stars, %+v", len(stars), stats)
	}
}

func TestEncodeDecode(t *testing.T) {
	in := astro.DefaultStarCatalog().Stars

	var buf bytes.Buffer
	if err := Encode(&buf, in); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, stats, err := Decode(&buf)
	if err != nil || stats.Bad != 0 {
		t.Fatalf("Decode: %v (%+v)", err, stats)
	}
	if len(out) != len(in) {
		t.Fatalf("got %d stars, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i].Label() != in[i].Label() || out[i].RAdeg != in[i].RAdeg {
			t.Errorf("star %d: %s != %s", i, out[i].Label(), in[i].Label())
		}
	}
}

func TestTileKey(t *testing.T) {
	tests := []struct {
		ra, dec float64
		want    string
	}{
		{0, -90, "0_0"},
		{3.99, -86.01, "0_0"},
		{4, -86, "1_1"},
		{359.9, 0, "89_22"},
		{-1, 0, "89_22"},
		{361, 89.9, "0_44"},
		{101.287, -16.716, "25_18"},
	}

	for _, tt := range tests {
		if got := TileKey(tt.ra, tt.dec, DefaultTileDeg); got != tt.want {
			t.Errorf("TileKey(%v, %v) = %s, want %s", tt.ra, tt.dec, got, tt.want)
		}
	}
}

func TestWriteTilesAndDirSource(t *testing.T) {
	dir := t.TempDir()
	stars := astro.DefaultStarCatalog().Stars

	m, err := WriteTiles(dir, stars, DefaultTileDeg)
	if err != nil {
		t.Fatalf("WriteTiles: %v", err)
	}
	if m.Stars != len(stars) || len(m.Tiles) == 0 {
		t.Errorf("manifest = %+v", m)
	}
	for _, key := range m.Tiles {
		for _, suffix := range []string{".ndjson", ".ndjson.gz"} {
			if _, err := os.Stat(filepath.Join(dir, key+suffix)); err != nil {
				t.Errorf("missing %s%s", key, suffix)
			}
		}
	}

	loaded, err := DirSource{Dir: dir}.Load(context.Background())
	if err != nil {
		t.Fatalf("DirSource.Load: %v", err)
	}
	if len(loaded) != len(stars) {
		t.Errorf("loaded %d stars, want %d (tiles counted twice?)", len(loaded), len(stars))
	}

	// Without a manifest the plain tiles are read once.
	os.Remove(filepath.Join(dir, ManifestName))
	loaded, err = DirSource{Dir: dir}.Load(context.Background())
	if err != nil || len(loaded) != len(stars) {
		t.Errorf("manifest-less load: %d stars, %v", len(loaded), err)
	}
}

func TestWriteTilesRejectsBadSize(t *testing.T) {
	if _, err := WriteTiles(t.TempDir(), nil, 0); err == nil {
		t.Error("tile size 0 accepted")
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "stars.ndjson")
	os.WriteFile(good, []byte(sampleNDJSON), 0644)
	empty := filepath.Join(dir, "empty.ndjson")
	os.WriteFile(empty, []byte("garbage\n"), 0644)

	stars, err := FileSource{Path: good}.Load(context.Background())
	if err != nil || len(stars) != 3 {
		t.Errorf("Load = %d stars, %v", len(stars), err)
	}
	if _, err := (FileSource{Path: empty}).Load(context.Background()); !errors.Is(err, ErrNoStars) {
		t.Errorf("empty file err = %v, want ErrNoStars", err)
	}
	if _, err := (FileSource{Path: filepath.Join(dir, "missing")}).Load(context.Background()); err == nil {
		t.Error("missing file loaded")
	}
}

func TestNewSource(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "s.ndjson")
	os.WriteFile(file, []byte(sampleNDJSON), 0644)

	tests := []struct {
		loc  string
		want string
	}{
		{"", "catalog.Builtin"},
		{dir, "catalog.DirSource"},
		{file, "catalog.FileSource"},
		{"https://example.org/tiles", "*catalog.HTTPSource"},
	}
	for _, tt := range tests {
		src, err := NewSource(tt.loc, nil)
		if err != nil {
			t.Errorf("NewSource(%q): %v", tt.loc, err)
			continue
		}
		if got := typeName(src); got != tt.want {
			t.Errorf("NewSource(%q) = %s, want %s", tt.loc, got, tt.want)
		}
	}

	if _, err := NewSource(filepath.Join(dir, "nope"), nil); err == nil {
		t.Error("missing path accepted")
	}
}

func typeName(v interface{}) string {
	switch v.(type) {
	case Builtin:
		return "catalog.Builtin"
	case DirSource:
		return "catalog.DirSource"
	case FileSource:
		return "catalog.FileSource"
	case *HTTPSource:
		return "*catalog.HTTPSource"
	default:
		return "unknown"
	}
}

func TestHTTPSourceTiles(t *testing.T) {
	dir := t.TempDir()
	stars := astro.DefaultStarCatalog().Stars
	m, err := WriteTiles(dir, stars, DefaultTileDeg)
	if err != nil {
		t.Fatalf("WriteTiles: %v", err)
	}

	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if ua := r.Header.Get("User-Agent"); !strings.HasPrefix(ua, "ls-stellar/") {
			t.Errorf("User-Agent = %q", ua)
		}
		http.ServeFile(w, r, filepath.Join(dir, filepath.Base(r.URL.Path)))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL+"/", WithRateLimit(0))
	loaded, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != len(stars) {
		t.Errorf("loaded %d stars, want %d", len(loaded), len(stars))
	}
	if requests != len(m.Tiles)+1 {
		t.Errorf("requests = %d, want manifest + %d tiles", requests, len(m.Tiles))
	}
}

func TestHTTPSourceSingleFileAndErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/stars.ndjson":
			w.Write([]byte(sampleNDJSON))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	stars, err := NewHTTPSource(srv.URL + "/stars.ndjson").Load(context.Background())
	if err != nil || len(stars) != 3 {
		t.Errorf("single file: %d stars, %v", len(stars), err)
	}

	if _, err := NewHTTPSource(srv.URL + "/missing").Load(context.Background()); err == nil {
		t.Error("missing manifest should fail")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewHTTPSource(srv.URL + "/stars.ndjson").Load(ctx); err == nil {
		t.Error("cancelled context should fail")
	}
}

func TestHTTPSourceBodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleNDJSON))
	}))
	defer srv.Close()

	limit := int64(len(sampleNDJSON))
	if _, err := NewHTTPSource(srv.URL+"/stars.ndjson", WithMaxBodyBytes(limit)).Load(context.Background()); err != nil {
		t.Errorf("body at the limit rejected: %v", err)
	}

	_, err := NewHTTPSource(srv.URL+"/stars.ndjson", WithMaxBodyBytes(limit-1)).Load(context.Background())
	if err == nil || !strings.Contains(err.Error(), "exceeds") {
		t.Errorf("oversized body err = %v", err)
	}
}
