package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/litescript/ls-stellar/internal/astro"
	"github.com/litescript/ls-stellar/internal/catalog"
	"github.com/litescript/ls-stellar/internal/logging"
)

// StarRepository handles database operations for catalogue stars.
// It satisfies catalog.Source so a database can feed the viewer directly.
type StarRepository struct {
	db      *DB
	tileDeg float64
	limit   int
	logger  *logging.Logger
}

// RepositoryOption configures a StarRepository.
type RepositoryOption func(*StarRepository)

// WithTileDeg sets the tile size recorded with each upserted star.
func WithTileDeg(deg float64) RepositoryOption {
	return func(r *StarRepository) {
		if deg > 0 {
			r.tileDeg = deg
		}
	}
}

// WithLimit caps the number of rows Load returns, brightest first.
// Zero means no limit.
func WithLimit(n int) RepositoryOption {
	return func(r *StarRepository) {
		r.limit = n
	}
}

// WithRepositoryLogger sets the repository logger.
func WithRepositoryLogger(l *logging.Logger) RepositoryOption {
	return func(r *StarRepository) {
		r.logger = l
	}
}

// NewStarRepository creates a new star repository.
func NewStarRepository(db *DB, opts ...RepositoryOption) *StarRepository {
	r := &StarRepository{
		db:      db,
		tileDeg: catalog.DefaultTileDeg,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *StarRepository) String() string {
	return "postgres:" + r.db.config.Database
}

// Load returns every stored star, brightest first.
func (r *StarRepository) Load(ctx context.Context) ([]astro.Star, error) {
	stars, err := r.LoadStars(ctx, r.limit)
	if err != nil {
		return nil, err
	}
	if len(stars) == 0 {
		return nil, fmt.Errorf("%s: %w", r, catalog.ErrNoStars)
	}
	r.logger.Info("loaded %d stars from %s", len(stars), r)
	return stars, nil
}

// LoadStars queries up to limit stars ordered by magnitude. Rows without a
// magnitude sort last. A non-positive limit returns all rows.
func (r *StarRepository) LoadStars(ctx context.Context, limit int) ([]astro.Star, error) {
	query := selectStars + ` ORDER BY vmag ASC NULLS LAST, hip ASC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query stars: %w", err)
	}
	defer rows.Close()

	var stars []astro.Star
	for rows.Next() {
		s, err := scanStar(rows)
		if err != nil {
			return nil, err
		}
		stars = append(stars, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stars: %w", err)
	}
	return stars, nil
}

// LoadTile returns the stars stored under a tile key.
func (r *StarRepository) LoadTile(ctx context.Context, key string) ([]astro.Star, error) {
	rows, err := r.db.QueryContext(ctx, selectStars+` WHERE tile = $1 ORDER BY hip`, key)
	if err != nil {
		return nil, fmt.Errorf("failed to query tile %s: %w", key, err)
	}
	defer rows.Close()

	var stars []astro.Star
	for rows.Next() {
		s, err := scanStar(rows)
		if err != nil {
			return nil, err
		}
		stars = append(stars, s)
	}
	return stars, rows.Err()
}

// UpsertStars inserts or updates stars keyed by Hipparcos number inside a
// single transaction. Stars without a HIP number cannot be keyed and are
// skipped. It returns the number of rows written.
func (r *StarRepository) UpsertStars(ctx context.Context, stars []astro.Star) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertStar)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	written, skipped := 0, 0
	for _, s := range stars {
		if s.HIP == nil || !s.Valid() {
			skipped++
			continue
		}
		_, err := stmt.ExecContext(ctx,
			*s.HIP, s.RAdeg, s.DecDeg,
			nullFloat(s.Vmag), nullFloat(s.Parallax), nullFloat(s.BV),
			s.SpType, nullFloat(s.DistPC), nullFloat(s.AbsMag), nullFloat(s.TempK),
			s.Name, catalog.TileKey(s.RAdeg, s.DecDeg, r.tileDeg),
		)
		if err != nil {
			return written, fmt.Errorf("failed to upsert HIP %d: %w", *s.HIP, err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit stars: %w", err)
	}
	if skipped > 0 {
		r.logger.Warn("skipped %d stars without a HIP number", skipped)
	}
	return written, nil
}

const selectStars = `SELECT hip, ra_deg, dec_deg, vmag, parallax, bv, sp_type,
		dist_pc, abs_mag, temp_k, name
	 FROM stars`

const upsertStar = `INSERT INTO stars (
		hip, ra_deg, dec_deg, vmag, parallax, bv, sp_type,
		dist_pc, abs_mag, temp_k, name, tile, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
	ON CONFLICT (hip) DO UPDATE SET
		ra_deg = EXCLUDED.ra_deg,
		dec_deg = EXCLUDED.dec_deg,
		vmag = EXCLUDED.vmag,
		parallax = EXCLUDED.parallax,
		bv = EXCLUDED.bv,
		sp_type = EXCLUDED.sp_type,
		dist_pc = EXCLUDED.dist_pc,
		abs_mag = EXCLUDED.abs_mag,
		temp_k = EXCLUDED.temp_k,
		name = COALESCE(NULLIF(EXCLUDED.name, ''), stars.name),
		tile = EXCLUDED.tile,
		updated_at = NOW()`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanStar(row scanner) (astro.Star, error) {
	var (
		hip                           int
		s                             astro.Star
		vmag, plx, bv, dist, abs, tmp sql.NullFloat64
	)
	err := row.Scan(&hip, &s.RAdeg, &s.DecDeg, &vmag, &plx, &bv, &s.SpType,
		&dist, &abs, &tmp, &s.Name)
	if err != nil {
		return astro.Star{}, fmt.Errorf("failed to scan star: %w", err)
	}
	s.HIP = &hip
	s.Vmag = floatPtr(vmag)
	s.Parallax = floatPtr(plx)
	s.BV = floatPtr(bv)
	s.DistPC = floatPtr(dist)
	s.AbsMag = floatPtr(abs)
	s.TempK = floatPtr(tmp)
	return s, nil
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}
