// Package search finds stars by common name or Hipparcos number.
package search

import (
	"sort"
	"strconv"
	"strings"

	"github.com/litescript/ls-stellar/internal/astro"
)

// Match quality, best first.
type Rank int

const (
	RankExact Rank = iota
	RankIdentifier
	RankPrefix
	RankSubstring
)

func (r Rank) String() string {
	switch r {
	case RankExact:
		return "exact"
	case RankIdentifier:
		return "hip"
	case RankPrefix:
		return "prefix"
	default:
		return "substring"
	}
}

// Result is one search hit.
type Result struct {
	Star  astro.Star
	Index int // Position in the indexed slice
	Rank  Rank
}

type entry struct {
	name  string // lower-cased
	index int
}

// Index is an immutable lookup structure over a star slice.
type Index struct {
	stars  []astro.Star
	names  []entry
	byHIP  map[int]int
	byName map[string]int
}

// NewIndex indexes stars. Later duplicates of a name or HIP number lose to
// earlier ones.
func NewIndex(stars []astro.Star) *Index {
	idx := &Index{
		stars:  stars,
		byHIP:  make(map[int]int),
		byName: make(map[string]int),
	}
	for i, s := range stars {
		if hip, ok := s.ID(); ok {
			if _, dup := idx.byHIP[hip]; !dup {
				idx.byHIP[hip] = i
			}
		}
		if s.Named() {
			name := strings.ToLower(strings.TrimSpace(s.Name))
			idx.names = append(idx.names, entry{name: name, index: i})
			if _, dup := idx.byName[name]; !dup {
				idx.byName[name] = i
			}
		}
	}
	return idx
}

// Len returns the number of indexed stars.
func (x *Index) Len() int {
	return len(x.stars)
}

// Lookup returns the star with exactly this name (case-insensitive).
func (x *Index) Lookup(name string) (astro.Star, bool) {
	i, ok := x.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return astro.Star{}, false
	}
	return x.stars[i], true
}

// ByHIP returns the star with the given Hipparcos number.
func (x *Index) ByHIP(hip int) (astro.Star, bool) {
	i, ok := x.byHIP[hip]
	if !ok {
		return astro.Star{}, false
	}
	return x.stars[i], true
}

// Search returns up to limit matches for query. Name matches rank exact,
// then prefix, then substring; ties go to the brighter star. A query of
// the form "HIP 1234" or "1234" also matches the Hipparcos number.
// limit <= 0 means no limit.
func (x *Index) Search(query string, limit int) []Result {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var results []Result
	seen := make(map[int]bool)

	if hip, ok := parseHIP(q); ok {
		if i, ok := x.byHIP[hip]; ok {
			results = append(results, Result{Star: x.stars[i], Index: i, Rank: RankIdentifier})
			seen[i] = true
		}
	}

	for _, e := range x.names {
		if seen[e.index] {
			continue
		}
		var rank Rank
		switch {
		case e.name == q:
			rank = RankExact
		case strings.HasPrefix(e.name, q):
			rank = RankPrefix
		case strings.Contains(e.name, q):
			rank = RankSubstring
		default:
			continue
		}
		seen[e.index] = true
		results = append(results, Result{Star: x.stars[e.index], Index: e.index, Rank: rank})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Rank != results[j].Rank {
			return results[i].Rank < results[j].Rank
		}
		return magnitude(results[i].Star) < magnitude(results[j].Star)
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

func parseHIP(q string) (int, bool) {
	q = strings.TrimSpace(strings.TrimPrefix(q, "hip"))
	n, err := strconv.Atoi(q)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func magnitude(s astro.Star) float64 {
	if m, ok := s.Mag(); ok {
		return m
	}
	return 99
}
