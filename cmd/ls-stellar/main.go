// Command ls-stellar is a terminal UI for flying through a 3D star catalogue.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/litescript/ls-stellar/internal/astro"
	"github.com/litescript/ls-stellar/internal/catalog"
	"github.com/litescript/ls-stellar/internal/config"
	"github.com/litescript/ls-stellar/internal/db"
	"github.com/litescript/ls-stellar/internal/logging"
	"github.com/litescript/ls-stellar/internal/metrics"
	"github.com/litescript/ls-stellar/internal/starfield"
	"github.com/litescript/ls-stellar/internal/state"
	"github.com/litescript/ls-stellar/internal/tour"
	"github.com/litescript/ls-stellar/internal/ui"
)

// CLI flags for headless mode
var (
	summaryMode  bool
	snapshotPath string
	tileOut      string
	importDB     string
	brightest    int
)

func main() {
	configPath := flag.String("config", "ls-stellar.json", "Path to JSON config file")
	catalogLoc := flag.String("catalog", "", "Star catalogue: file, tile dir, http(s) URL or postgres:// URL (default built-in)")
	quality := flag.String("quality", "", "Quality tier (low, medium, high)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	logFile := flag.String("log-file", "", "Write logs to file (TUI mode logs nowhere otherwise)")
	metricsAddr := flag.String("metrics-addr", "", "Serve Prometheus metrics on address (e.g. :9100)")
	startTour := flag.Bool("tour", false, "Start the scripted tour immediately")
	flag.BoolVar(&summaryMode, "summary", false, "Print text summary instead of TUI")
	flag.StringVar(&snapshotPath, "snapshot-path", "", "Export JSON summary to file (use - for stdout)")
	flag.StringVar(&tileOut, "tile-out", "", "Write the catalogue as sky tiles into directory")
	flag.StringVar(&importDB, "import-db", "", "Import the catalogue into the postgres:// database")
	flag.IntVar(&brightest, "brightest", 10, "Brightest stars listed by -summary")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *catalogLoc != "" {
		cfg.Catalog.Source = *catalogLoc
	}
	if *quality != "" {
		cfg.Quality = *quality
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *metricsAddr != "" {
		cfg.Metrics.Address = *metricsAddr
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	headless := summaryMode || snapshotPath != "" || tileOut != "" || importDB != ""

	// Set up logging
	logger, closeLog, err := setupLogging(cfg.LogLevel, *logFile, headless)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	collector := metrics.NewCollector(nil)
	if cfg.Metrics.Address != "" {
		go func() {
			if err := collector.Serve(ctx, cfg.Metrics.Address, logger.Named("metrics")); err != nil {
				logger.Error("metrics server: %v", err)
			}
		}()
	}

	// Initialize components
	tier, _ := cfg.Tier()
	pipeline := starfield.NewPipeline(cfg.StarfieldConfig(),
		starfield.WithLogger(logger.Named("starfield")),
		starfield.WithObserver(collector),
	)
	stateCfg := state.DefaultConfig()
	stateCfg.Tier = tier
	stateMgr := state.NewManager(stateCfg, pipeline)

	source, closeSource, err := openSource(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeSource()

	// Headless mode: no TUI
	if headless {
		if err := runHeadless(ctx, cfg, source, stateMgr, collector, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: stdout is not a terminal; use -summary or -snapshot-path")
		os.Exit(1)
	}

	// Create TUI model
	model := ui.New(stateMgr,
		ui.WithFlightConfig(cfg.FlightConfig()),
		ui.WithView(cfg.Camera.FOV, cfg.Camera.StartRadius),
		ui.WithLogger(logger.Named("ui")),
		ui.WithPickRecorder(collector),
		ui.WithFlightObserver(collector),
		ui.WithTour(tour.New(
			tour.WithPlaylist(cfg.Tour.Playlist),
			tour.WithInterval(cfg.TourInterval()),
			tour.WithLoop(cfg.Tour.Loop),
		)),
	)

	// Create Bubble Tea program
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))

	// Load the catalogue in background
	go func() {
		loadCatalog(ctx, source, stateMgr, collector, logger)
		snap := stateMgr.Snapshot()
		if snap.LastError != nil {
			p.Send(ui.ErrorMsg{Error: snap.LastError})
		}
		p.Send(ui.DataUpdateMsg{Snapshot: snap})
		if *startTour {
			p.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})
		}
	}()

	// Run TUI (blocks until quit)
	// Signals end the program through the context, bypassing the quit
	// key, so tear down here as well.
	_, err = p.Run()
	model.Close()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging returns the process logger. Without a log file the TUI
// discards logs so they do not tear the alternate screen.
func setupLogging(level, path string, headless bool) (*logging.Logger, func(), error) {
	lvl := logging.ParseLevel(level)
	if path != "" {
		logger, f, err := logging.OpenFile(path, lvl)
		if err != nil {
			return nil, nil, err
		}
		return logger, func() { f.Close() }, nil
	}
	logger := logging.New(lvl)
	if !headless {
		logger.SetOutput(io.Discard)
	}
	return logger, func() {}, nil
}

// openSource resolves the configured catalogue location. postgres:// URLs
// are served by the star repository; everything else by the catalog
// package.
func openSource(ctx context.Context, cfg *config.Config, logger *logging.Logger) (catalog.Source, func(), error) {
	loc := cfg.Catalog.Source
	if db.IsURL(loc) {
		dbCfg := cfg.Database
		dbCfg.URL = loc
		conn, err := db.Connect(ctx, dbCfg)
		if err != nil {
			return nil, nil, err
		}
		repo := db.NewStarRepository(conn,
			db.WithTileDeg(cfg.Catalog.TileDeg),
			db.WithRepositoryLogger(logger.Named("db")),
		)
		return repo, func() { conn.Close() }, nil
	}

	src, err := catalog.NewSource(loc, logger.Named("catalog"),
		catalog.WithTimeout(cfg.CatalogTimeout()),
		catalog.WithRateLimit(cfg.Catalog.RequestsPerSecond),
	)
	if err != nil {
		return nil, nil, err
	}
	return src, func() {}, nil
}

// loadCatalog loads the dataset once and publishes it to state.
func loadCatalog(ctx context.Context, source catalog.Source, stateMgr *state.Manager, collector *metrics.Collector, logger *logging.Logger) []astro.Star {
	name := fmt.Sprint(source)
	logger.Info("loading catalogue from %s", name)

	start := time.Now()
	stars, err := source.Load(ctx)
	dur := time.Since(start)

	collector.RecordCatalogLoad(len(stars), err)
	if err != nil {
		logger.Error("catalogue load failed: %v", err)
		stateMgr.Update(nil, name, dur, err)
		return nil
	}

	logger.Info("loaded %d stars from %s in %v", len(stars), name, dur)
	stateMgr.Update(stars, name, dur, nil)
	return stars
}

// runHeadless handles all headless modes without starting TUI.
func runHeadless(ctx context.Context, cfg *config.Config, source catalog.Source, stateMgr *state.Manager, collector *metrics.Collector, logger *logging.Logger) error {
	stars := loadCatalog(ctx, source, stateMgr, collector, logger)
	snap := stateMgr.Snapshot()
	if snap.LastError != nil {
		return snap.LastError
	}

	if tileOut != "" {
		m, err := catalog.WriteTiles(tileOut, stars, cfg.Catalog.TileDeg)
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %d stars in %d tiles to %s\n", m.Stars, len(m.Tiles), tileOut)
	}

	if importDB != "" {
		if err := importStars(ctx, cfg, stars, logger); err != nil {
			return err
		}
	}

	// Export JSON if requested
	if snapshotPath != "" {
		sum := snap.Summary(brightest)
		if snapshotPath == "-" {
			if err := sum.WriteJSON(os.Stdout); err != nil {
				return fmt.Errorf("write JSON to stdout: %w", err)
			}
		} else {
			f, err := os.Create(snapshotPath)
			if err != nil {
				return fmt.Errorf("create snapshot file: %w", err)
			}
			defer f.Close()
			if err := sum.WriteJSON(f); err != nil {
				return fmt.Errorf("write JSON to file: %w", err)
			}
		}
	}

	// Print summary table if requested
	if summaryMode {
		writeSummary(os.Stdout, snap.Summary(brightest))
	}
	return nil
}

func importStars(ctx context.Context, cfg *config.Config, stars []astro.Star, logger *logging.Logger) error {
	dbCfg := cfg.Database
	dbCfg.URL = importDB
	conn, err := db.Connect(ctx, dbCfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.InitSchema(ctx); err != nil {
		return err
	}
	repo := db.NewStarRepository(conn,
		db.WithTileDeg(cfg.Catalog.TileDeg),
		db.WithRepositoryLogger(logger.Named("db")),
	)
	n, err := repo.UpsertStars(ctx, stars)
	if err != nil {
		return err
	}

	stats, err := conn.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d stars (%d stored, %d named, %d tiles)\n",
		n, stats["stars"], stats["named_stars"], stats["tiles"])
	return nil
}

func writeSummary(w io.Writer, sum state.Summary) {
	fmt.Fprintf(w, "Catalogue: %s (%d stars, loaded in %dms)\n", sum.Source, sum.Stars, sum.LoadMillis)
	fmt.Fprintf(w, "Quality:   %s (%d rendered)\n\n", sum.Tier, sum.Rendered)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DROPPED\tCOUNT")
	fmt.Fprintf(tw, "no distance\t%d\n", sum.Stats.NoDistance)
	fmt.Fprintf(tw, "too faint\t%d\n", sum.Stats.TooFaint)
	fmt.Fprintf(tw, "invalid\t%d\n", sum.Stats.Invalid)
	fmt.Fprintf(tw, "over tier\t%d\n", sum.Stats.Truncated)
	tw.Flush()

	if len(sum.Brightest) > 0 {
		fmt.Fprintln(w, "\nBrightest:")
		for i, name := range sum.Brightest {
			fmt.Fprintf(w, "  %2d. %s\n", i+1, name)
		}
	}
}
