package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mediakeep/mediakeep/internal/config"
	"github.com/mediakeep/mediakeep/internal/diskspace"
	"github.com/mediakeep/mediakeep/internal/lockfile"
	"github.com/mediakeep/mediakeep/internal/retention"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

func main() {
	// Command line flags
	var (
		rootFlag     = flag.String("root", "", "Directory to sweep (overrides config downloads path)")
		patternsFlag = flag.String("pattern", "", "Comma-separated name patterns, e.g. \"*.mp3,*.part\" (overrides config)")
		daysFlag     = flag.Int("days", -1, "Retention period in days (overrides config)")
		parallelFlag = flag.Bool("parallel", false, "Search patterns in parallel")
		workersFlag  = flag.Int("workers", 0, "Worker bound for parallel pattern search")
		dryRunFlag   = flag.Bool("dry-run", false, "Report candidates without deleting")
		configFlag   = flag.String("config", "", "Path to config file")
		daemonFlag   = flag.Bool("daemon", false, "Stay resident and sweep on the cron schedule")
		scheduleFlag = flag.String("schedule", "", "Cron expression for daemon mode (overrides config)")
		metricsFlag  = flag.String("metrics-addr", "", "Listen address for Prometheus metrics in daemon mode")
		minFreeFlag  = flag.Int64("min-free", 0, "Warn when free space (MB) drops below this (overrides config)")
		verboseFlag  = flag.Bool("verbose", false, "Show verbose output")
	)

	flag.Parse()

	if *rootFlag == "" && *configFlag == "" {
		fmt.Println("mediakeep-sweep - Retention cleanup for downloaded media")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  mediakeep-sweep -root <dir> [options]")
		fmt.Println("  mediakeep-sweep -config <file> [-daemon]")
		fmt.Println()
		fmt.Println("For interactive mode, use: mediakeep-tui")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Load config
	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// Apply flags
	if *rootFlag != "" {
		settings.DownloadsPath = *rootFlag
	}
	if *patternsFlag != "" {
		settings.CleanupPatterns = splitPatterns(*patternsFlag)
	}
	if *daysFlag >= 0 {
		settings.RetentionDays = *daysFlag
	}
	if *parallelFlag {
		settings.ParallelCleanup = true
	}
	if *workersFlag > 0 {
		settings.MaxCleanupWorkers = *workersFlag
	}
	if *dryRunFlag {
		settings.CleanupDryRun = true
	}
	if *minFreeFlag > 0 {
		settings.MinFreeMegabytes = *minFreeFlag
	}
	if *scheduleFlag != "" {
		settings.SweepSchedule = *scheduleFlag
	}
	if *metricsFlag != "" {
		settings.MetricsAddr = *metricsFlag
	}

	logger := newLogger(*verboseFlag)

	// Handle interrupts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info().Msg("Interrupted, cancelling...")
		cancel()
	}()

	locks := lockfile.NewRegistry()
	defer locks.Close()

	sweeper := retention.NewSweeper(settings, locks, eventSink(logger))
	req := retention.Request{
		Root:          settings.DownloadsPath,
		Patterns:      settings.CleanupPatterns,
		RetentionDays: settings.RetentionDays,
	}

	runSweep := func() {
		// Probe right before acting; disk state is externally mutable.
		free := diskspace.FreeSpace(req.Root)
		switch {
		case free == diskspace.UnknownFreeMegabytes:
			logger.Warn().Str("path", req.Root).
				Msg("Free space unknown, not gating on capacity")
		case free < settings.MinFreeMegabytes:
			logger.Warn().Int64("free_mb", free).Int64("min_free_mb", settings.MinFreeMegabytes).
				Str("path", req.Root).Msg("Free space below configured floor")
		default:
			logger.Debug().Int64("free_mb", free).Str("path", req.Root).Msg("Free space")
		}

		report, err := sweeper.Sweep(ctx, req)
		if err != nil {
			logger.Error().Err(err).Msg("Sweep aborted")
			return
		}
		logger.Info().
			Int("candidates", report.Candidates).
			Int("deleted", report.Deleted).
			Int("skipped_locked", report.SkippedLocked).
			Int("vanished", report.Vanished).
			Int("failed", report.Failed).
			Msg("Sweep complete")
	}

	if !*daemonFlag {
		runSweep()
		return
	}

	// Daemon mode
	if settings.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			logger.Info().Str("addr", settings.MetricsAddr).Msg("Serving metrics")
			if err := http.ListenAndServe(settings.MetricsAddr, mux); err != nil {
				logger.Error().Err(err).Msg("Metrics server stopped")
			}
		}()
	}

	c := cron.New()
	if _, err := c.AddFunc(settings.SweepSchedule, runSweep); err != nil {
		logger.Fatal().Err(err).Str("schedule", settings.SweepSchedule).Msg("Invalid sweep schedule")
	}

	logger.Info().Str("schedule", settings.SweepSchedule).Str("root", req.Root).Msg("Sweeping on schedule")
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
}

// newLogger builds the console logger; verbose mode surfaces the
// sweeper's per-file detail.
func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

// eventSink adapts sweep events to leveled log lines with the affected
// path as a structured field.
func eventSink(logger zerolog.Logger) func(retention.Event) {
	return func(event retention.Event) {
		var evt *zerolog.Event
		switch event.Level {
		case retention.LevelVerbose:
			evt = logger.Debug()
		case retention.LevelWarning:
			evt = logger.Warn()
		case retention.LevelError:
			evt = logger.Error()
		default:
			evt = logger.Info()
		}
		if event.Path != "" {
			evt = evt.Str("path", event.Path)
		}
		evt.Msg(event.Message)
	}
}

func splitPatterns(s string) []string {
	var patterns []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	return patterns
}
