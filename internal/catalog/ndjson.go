// Package catalog loads and writes star datasets in NDJSON form, either as
// single files, tile directories, or tiles served over HTTP.
package catalog

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"

	"github.com/litescript/ls-stellar/internal/astro"
)

// maxLineBytes bounds a single NDJSON record.
const maxLineBytes = 1 << 20

// record is the wire form of a star. Unlike astro.Star it keeps ra/dec
// optional so that a missing coordinate is distinguishable from zero.
type record struct {
	HIP      *int     `json:"hip"`
	RA       *float64 `json:"ra"`
	Dec      *float64 `json:"dec"`
	Vmag     *float64 `json:"vmag"`
	Parallax *float64 `json:"plx"`
	BV       *float64 `json:"bv"`
	SpType   *string  `json:"sp_type"`
	DistPC   *float64 `json:"dist_pc"`
	AbsMag   *float64 `json:"absmag"`
	TempK    *float64 `json:"temp_k"`
	Name     *string  `json:"name"`
}

func (r record) star() astro.Star {
	s := astro.Star{
		HIP:      r.HIP,
		RAdeg:    *r.RA,
		DecDeg:   *r.Dec,
		Vmag:     r.Vmag,
		Parallax: r.Parallax,
		BV:       r.BV,
		DistPC:   r.DistPC,
		AbsMag:   r.AbsMag,
		TempK:    r.TempK,
	}
	if r.SpType != nil {
		s.SpType = *r.SpType
	}
	if r.Name != nil {
		s.Name = *r.Name
	}
	return s
}

// DecodeStats counts what a decode saw.
type DecodeStats struct {
	Lines int // Non-blank lines
	Bad   int // Lines that were not a usable star
}

// Add accumulates o into s.
func (s *DecodeStats) Add(o DecodeStats) {
	s.Lines += o.Lines
	s.Bad += o.Bad
}

// Decode reads NDJSON star records from r, transparently gunzipping when
// the stream starts with the gzip magic. Malformed lines and records without
// a valid position are skipped and counted. Derived attributes are filled
// before a star is returned.
func Decode(r io.Reader) ([]astro.Star, DecodeStats, error) {
	var stats DecodeStats

	br := bufio.NewReader(r)
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, stats, fmt.Errorf("open gzip stream: %w", err)
		}
		defer zr.Close()
		br = bufio.NewReader(zr)
	}

	sc := bufio.NewScanner(br)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	var stars []astro.Star
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		stats.Lines++

		s, ok := decodeLine(line)
		if !ok {
			stats.Bad++
			continue
		}
		stars = append(stars, s)
	}
	if err := sc.Err(); err != nil {
		return stars, stats, fmt.Errorf("read ndjson: %w", err)
	}
	return stars, stats, nil
}

func decodeLine(line []byte) (astro.Star, bool) {
	var rec record
	if err := json.Unmarshal(line, &rec); err != nil {
		return astro.Star{}, false
	}
	if rec.RA == nil || rec.Dec == nil {
		return astro.Star{}, false
	}
	s := rec.star()
	if !s.Valid() {
		return astro.Star{}, false
	}
	return s.Derive(), true
}

// Encode writes stars to w, one JSON object per line.
func Encode(w io.Writer, stars []astro.Star) error {
	bw := bufio.NewWriter(w)
	for i, s := range stars {
		b, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("encode star %d: %w", i, err)
		}
		bw.Write(b)
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write ndjson: %w", err)
	}
	return nil
}
