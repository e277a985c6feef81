// Package config loads the JSON configuration file and converts it into the
// scene, camera, and tour settings used by the rest of the program.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/litescript/ls-stellar/internal/astro"
	"github.com/litescript/ls-stellar/internal/camera"
	"github.com/litescript/ls-stellar/internal/starfield"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid configuration")

// Config represents the complete application configuration.
type Config struct {
	Scene    SceneConfig    `json:"scene"`
	Camera   CameraConfig   `json:"camera"`
	Quality  string         `json:"quality"`
	LogLevel string         `json:"log_level"`
	Catalog  CatalogConfig  `json:"catalog"`
	Database DatabaseConfig `json:"database"`
	Metrics  MetricsConfig  `json:"metrics"`
	Tour     TourConfig     `json:"tour"`
}

// SceneConfig holds render pipeline parameters.
type SceneConfig struct {
	// Scale is scene units per parsec, shared by every component that
	// places stars.
	Scale            float64 `json:"scale"`
	MagnitudeCeiling float64 `json:"magnitude_ceiling"`
	BrightnessBoost  float64 `json:"brightness_boost"`
	NamedBoost       float64 `json:"named_boost"`
	VeryBrightBoost  float64 `json:"very_bright_boost"`
	SizeMin          float64 `json:"size_min"`
	SizeMax          float64 `json:"size_max"`
}

// CameraConfig holds camera and flight parameters.
type CameraConfig struct {
	MinDistance     float64 `json:"min_distance"`
	MaxDistance     float64 `json:"max_distance"`
	DurationSeconds float64 `json:"duration_seconds"` // Default flight duration
	FOV             float64 `json:"fov"`              // Vertical, degrees
	StartRadius     float64 `json:"start_radius"`     // Initial orbit radius
}

// CatalogConfig selects and paces the dataset source.
type CatalogConfig struct {
	// Source is a file, tile directory, http(s) URL, or postgres:// URL.
	// Empty selects the built-in bright-star list.
	Source            string  `json:"source"`
	TileDeg           float64 `json:"tile_deg"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	TimeoutSeconds    int     `json:"timeout_seconds"`
}

// DatabaseConfig contains PostgreSQL connection settings.
type DatabaseConfig struct {
	// URL, when set, is used verbatim and overrides the fields below.
	URL          string `json:"url,omitempty"`
	Host         string `json:"host"`
	Port         int    `json:"port"`
	Database     string `json:"database"`
	Username     string `json:"username"`
	Password     string `json:"password"` // Prefer LS_STELLAR_DB_PASSWORD
	SSLMode      string `json:"ssl_mode"`
	MaxOpenConns int    `json:"max_open_conns"`
	MaxIdleConns int    `json:"max_idle_conns"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Address string `json:"address"` // Empty disables the endpoint
}

// TourConfig configures the scripted tour.
type TourConfig struct {
	IntervalSeconds float64  `json:"interval_seconds"`
	Playlist        []string `json:"playlist,omitempty"` // Empty means the built-in tour
	Loop            bool     `json:"loop"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	scene := starfield.DefaultConfig()
	cam := camera.DefaultConfig()
	return &Config{
		Scene: SceneConfig{
			Scale:            scene.Transform.Scale,
			MagnitudeCeiling: scene.MagnitudeCeiling,
			BrightnessBoost:  scene.BrightnessBoost,
			NamedBoost:       scene.NamedBoost,
			VeryBrightBoost:  scene.VeryBrightBoost,
			SizeMin:          scene.SizeMin,
			SizeMax:          scene.SizeMax,
		},
		Camera: CameraConfig{
			MinDistance:     cam.MinDistance,
			MaxDistance:     cam.MaxDistance,
			DurationSeconds: cam.DefaultDuration.Seconds(),
			FOV:             60,
			StartRadius:     150,
		},
		Quality:  starfield.TierMedium.Name,
		LogLevel: "info",
		Catalog: CatalogConfig{
			TileDeg:           4,
			RequestsPerSecond: 8,
			TimeoutSeconds:    30,
		},
		Database: DatabaseConfig{
			Host:         "localhost",
			Port:         5432,
			Database:     "stellar",
			Username:     "stellar",
			SSLMode:      "disable",
			MaxOpenConns: 10,
			MaxIdleConns: 2,
		},
		Tour: TourConfig{
			IntervalSeconds: 8,
		},
	}
}

// Load reads the configuration file at path. A missing file yields the
// defaults. Fields absent from the file keep their default values.
// Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// defaults
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnvironmentOverrides()
	return cfg, nil
}

// Save writes the configuration to a JSON file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnvironmentOverrides() {
	if src := os.Getenv("LS_STELLAR_CATALOG"); src != "" {
		c.Catalog.Source = src
	}
	if q := os.Getenv("LS_STELLAR_QUALITY"); q != "" {
		c.Quality = q
	}
	if pw := os.Getenv("LS_STELLAR_DB_PASSWORD"); pw != "" {
		c.Database.Password = pw
	}
	if addr := os.Getenv("LS_STELLAR_METRICS_ADDR"); addr != "" {
		c.Metrics.Address = addr
	}
}

// Validate reports every out-of-range setting.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	s := c.Scene
	if !positive(s.Scale) {
		bad("scene.scale must be positive, got %v", s.Scale)
	}
	if !finite(s.MagnitudeCeiling) {
		bad("scene.magnitude_ceiling must be finite")
	}
	for name, v := range map[string]float64{
		"scene.brightness_boost":  s.BrightnessBoost,
		"scene.named_boost":       s.NamedBoost,
		"scene.very_bright_boost": s.VeryBrightBoost,
	} {
		if !positive(v) {
			bad("%s must be positive, got %v", name, v)
		}
	}
	if !positive(s.SizeMin) || !(s.SizeMax >= s.SizeMin) {
		bad("scene size bounds [%v, %v] invalid", s.SizeMin, s.SizeMax)
	}

	cam := c.Camera
	if !positive(cam.MinDistance) || !(cam.MaxDistance > cam.MinDistance) {
		bad("camera distance bounds [%v, %v] invalid", cam.MinDistance, cam.MaxDistance)
	}
	if !positive(cam.DurationSeconds) || cam.DurationSeconds >= camera.MaxDuration.Seconds() {
		bad("camera.duration_seconds must be in (0, %v), got %v", camera.MaxDuration.Seconds(), cam.DurationSeconds)
	}
	if !(cam.FOV > 1 && cam.FOV < 179) {
		bad("camera.fov must be in (1, 179), got %v", cam.FOV)
	}
	if !positive(cam.StartRadius) {
		bad("camera.start_radius must be positive, got %v", cam.StartRadius)
	}

	if _, err := starfield.ParseTier(c.Quality); err != nil {
		errs = append(errs, err)
	}
	if !positive(c.Catalog.TileDeg) || c.Catalog.TileDeg > 180 {
		bad("catalog.tile_deg must be in (0, 180], got %v", c.Catalog.TileDeg)
	}
	if c.Catalog.RequestsPerSecond < 0 {
		bad("catalog.requests_per_second must not be negative")
	}
	if c.Tour.IntervalSeconds <= 0 {
		bad("tour.interval_seconds must be positive, got %v", c.Tour.IntervalSeconds)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// StarfieldConfig returns the render pipeline configuration. Its Transform
// is the single authoritative transform for the session.
func (c *Config) StarfieldConfig() starfield.Config {
	return starfield.Config{
		Transform:        astro.Transform{Scale: c.Scene.Scale},
		MagnitudeCeiling: c.Scene.MagnitudeCeiling,
		BrightnessBoost:  c.Scene.BrightnessBoost,
		NamedBoost:       c.Scene.NamedBoost,
		VeryBrightBoost:  c.Scene.VeryBrightBoost,
		SizeMin:          c.Scene.SizeMin,
		SizeMax:          c.Scene.SizeMax,
	}
}

// FlightConfig returns the flight bounds.
func (c *Config) FlightConfig() camera.Config {
	return camera.Config{
		MinDistance:     c.Camera.MinDistance,
		MaxDistance:     c.Camera.MaxDistance,
		DefaultDuration: seconds(c.Camera.DurationSeconds),
	}
}

// Tier returns the configured quality tier.
func (c *Config) Tier() (starfield.Tier, error) {
	return starfield.ParseTier(c.Quality)
}

// TourInterval returns the time between tour stops.
func (c *Config) TourInterval() time.Duration {
	return seconds(c.Tour.IntervalSeconds)
}

// CatalogTimeout returns the per-request timeout for remote catalogs.
func (c *Config) CatalogTimeout() time.Duration {
	return time.Duration(c.Catalog.TimeoutSeconds) * time.Second
}

// ConnString returns the lib/pq connection string.
func (d DatabaseConfig) ConnString() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.Username, d.Password, d.Database, d.SSLMode,
	)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
