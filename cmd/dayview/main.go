package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"dayview/internal/capture"
	"dayview/internal/config"
	appLog "dayview/internal/log"
	"dayview/internal/view"
	"dayview/internal/web"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	listen     string
	date       string
	out        string
	once       bool
	withPNG    bool
	logLevel   string
}

func main() {
	flags := parseFlags()
	appLog.SetLevel(appLog.ParseLevel(flags.logLevel))
	appLog.Info("dayview starting", "version", "0.1.0")

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"refresh", conf.RefreshCron,
		"slot_minutes", conf.View.SlotMinutes,
		"region_width", conf.View.RegionWidth,
		"calendar_count", len(conf.Calendars),
		"once", flags.once,
	)

	date := time.Now()
	if flags.date != "" {
		parsed, perr := time.ParseInLocation("2006-01-02", flags.date, time.Local)
		if perr != nil {
			appLog.Error("invalid -date; want YYYY-MM-DD", perr, "date", flags.date)
			os.Exit(1)
		}
		date = parsed
	}

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if flags.once {
		if err := runOnce(ctx, conf, date, flags); err != nil {
			appLog.Error("single-shot run failed", err)
			os.Exit(1)
		}
		appLog.Info("dayview done")
		return
	}

	runServe(ctx, conf)
	appLog.Info("dayview exiting")
}

// runOnce builds one day view and writes the SVG (and optionally a PNG
// captured from the generated HTML) to disk.
func runOnce(ctx context.Context, conf *config.Config, date time.Time, flags flagConfig) error {
	day, errs := view.BuildDay(conf, date)
	for _, err := range errs {
		appLog.Error("calendar source error", err)
	}

	if err := os.WriteFile(flags.out, []byte(day.SVG), 0o644); err != nil {
		return err
	}
	appLog.Info("wrote day view",
		"path", flags.out,
		"date", date.Format("2006-01-02"),
		"event_count", len(day.Events),
	)

	if !flags.withPNG {
		return nil
	}

	// Capture navigates a file:// URL to the generated HTML, so no server
	// is needed in single-shot mode.
	htmlPath := filepath.Join(filepath.Dir(flags.out), "day.html")
	if err := os.WriteFile(htmlPath, []byte(day.HTML), 0o644); err != nil {
		return err
	}
	abs, err := filepath.Abs(htmlPath)
	if err != nil {
		return err
	}

	geo := view.Geometry(conf.View)
	return capture.DayPNG(ctx, capture.Options{
		URL:        "file://" + abs,
		OutputPath: conf.PreviewPath,
		Width:      int(geo.RegionWidth),
		Height:     int(24 * float64(conf.View.SlotMinutes) * conf.View.HeightPerMinute),
	})
}

// runServe starts the HTTP server and a cron schedule that refreshes the
// preview PNG, then blocks until the context is cancelled.
func runServe(ctx context.Context, conf *config.Config) {
	go func() {
		if err := web.StartServer(ctx, conf); err != nil {
			appLog.Error("HTTP server stopped", err)
		}
	}()

	refresh := func() {
		if err := refreshPreview(ctx, conf); err != nil {
			appLog.Error("preview refresh failed", err)
		}
	}

	c := cron.New()
	if _, err := c.AddFunc(conf.RefreshCron, refresh); err != nil {
		appLog.Error("invalid refresh cron expression", err, "refresh", conf.RefreshCron)
	} else {
		c.Start()
		defer c.Stop()
	}

	// Initial refresh once the server has had a moment to bind.
	go func() {
		select {
		case <-time.After(2 * time.Second):
			refresh()
		case <-ctx.Done():
		}
	}()

	<-ctx.Done()
}

// refreshPreview captures the served day view into the configured preview
// path, mirroring what /preview.png hands out.
func refreshPreview(ctx context.Context, conf *config.Config) error {
	if err := os.MkdirAll(filepath.Dir(conf.PreviewPath), 0o755); err != nil {
		return err
	}
	geo := view.Geometry(conf.View)
	return capture.DayPNG(ctx, capture.Options{
		URL:        "http://" + conf.Listen + "/",
		OutputPath: conf.PreviewPath,
		Width:      int(geo.RegionWidth),
		Height:     int(24 * float64(conf.View.SlotMinutes) * conf.View.HeightPerMinute),
	})
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/dayview/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.StringVar(&cfg.date, "date", "", "Day to render as YYYY-MM-DD (default today)")
	flag.StringVar(&cfg.out, "out", "day.svg", "SVG output path for -once mode")
	flag.BoolVar(&cfg.once, "once", false, "Render once and exit instead of serving")
	flag.BoolVar(&cfg.withPNG, "png", false, "Also capture a PNG preview in -once mode")
	flag.StringVar(&cfg.logLevel, "log-level", "info", "Log level: debug, info or error")

	flag.Parse()

	return cfg
}
