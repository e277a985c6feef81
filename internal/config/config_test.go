package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/litescript/ls-stellar/internal/starfield"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}

	if cfg.Scene.Scale != 1.2 {
		t.Errorf("Expected scale 1.2, got %v", cfg.Scene.Scale)
	}
	if cfg.Quality != "medium" {
		t.Errorf("Expected medium quality, got %s", cfg.Quality)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("Expected default postgres port 5432, got %d", cfg.Database.Port)
	}
	if cfg.Metrics.Address != "" {
		t.Error("Expected metrics disabled by default")
	}
	if cfg.TourInterval() != 8*time.Second {
		t.Errorf("Expected 8s tour interval, got %v", cfg.TourInterval())
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.json")
	if err != nil {
		t.Fatalf("Expected no error for non-existent file, got: %v", err)
	}
	if cfg.Scene.Scale != DefaultConfig().Scene.Scale {
		t.Error("Expected default config")
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte(`{"quality": "high", "camera": {"max_distance": 5000}}`), 0644)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Quality != "high" || cfg.Camera.MaxDistance != 5000 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Camera.MinDistance != DefaultConfig().Camera.MinDistance {
		t.Errorf("unset field lost its default: %v", cfg.Camera.MinDistance)
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte(`{"quality": `), 0644)
	if _, err := Load(path); err == nil {
		t.Error("Expected parse error")
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := DefaultConfig()
	cfg.Tour.Playlist = []string{"Vega", "Deneb"}
	cfg.Tour.Loop = true

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.Tour.Playlist) != 2 || !loaded.Tour.Loop {
		t.Errorf("tour not preserved: %+v", loaded.Tour)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("LS_STELLAR_CATALOG", "/data/tiles")
	t.Setenv("LS_STELLAR_QUALITY", "low")
	t.Setenv("LS_STELLAR_DB_PASSWORD", "s3cret")
	t.Setenv("LS_STELLAR_METRICS_ADDR", ":9100")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Catalog.Source != "/data/tiles" || cfg.Quality != "low" ||
		cfg.Database.Password != "s3cret" || cfg.Metrics.Address != ":9100" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero scale", func(c *Config) { c.Scene.Scale = 0 }},
		{"inverted sizes", func(c *Config) { c.Scene.SizeMin, c.Scene.SizeMax = 5, 1 }},
		{"max below min distance", func(c *Config) { c.Camera.MaxDistance = 0.1 }},
		{"duration too long", func(c *Config) { c.Camera.DurationSeconds = 30 }},
		{"bad fov", func(c *Config) { c.Camera.FOV = 180 }},
		{"unknown quality", func(c *Config) { c.Quality = "ultra" }},
		{"zero tile", func(c *Config) { c.Catalog.TileDeg = 0 }},
		{"negative boost", func(c *Config) { c.Scene.NamedBoost = -1 }},
		{"zero tour interval", func(c *Config) { c.Tour.IntervalSeconds = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestConversions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scene.Scale = 0.4
	cfg.Camera.DurationSeconds = 1.5

	sf := cfg.StarfieldConfig()
	if sf.Transform.Scale != 0.4 || sf.SizeMax != cfg.Scene.SizeMax {
		t.Errorf("starfield config = %+v", sf)
	}

	fc := cfg.FlightConfig()
	if fc.DefaultDuration != 1500*time.Millisecond || fc.MaxDistance != cfg.Camera.MaxDistance {
		t.Errorf("flight config = %+v", fc)
	}

	tier, err := cfg.Tier()
	if err != nil || tier != starfield.TierMedium {
		t.Errorf("Tier = %+v, %v", tier, err)
	}

	// Default conversions round-trip the package defaults.
	if DefaultConfig().StarfieldConfig() != starfield.DefaultConfig() {
		t.Error("default scene config does not match starfield defaults")
	}
}

func TestConnString(t *testing.T) {
	d := DefaultConfig().Database
	d.Password = "pw"
	want := "host=localhost port=5432 user=stellar password=pw dbname=stellar sslmode=disable"
	if got := d.ConnString(); got != want {
		t.Errorf("ConnString = %q, want %q", got, want)
	}

	d.URL = "postgres://u@h/db"
	if got := d.ConnString(); got != d.URL {
		t.Errorf("URL not used verbatim: %q", got)
	}
}
