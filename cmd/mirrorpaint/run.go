package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/gogpu/gg"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/ayusman/mirrorpaint/internal/app"
	"github.com/ayusman/mirrorpaint/internal/canvas"
	"github.com/ayusman/mirrorpaint/internal/capture"
	"github.com/ayusman/mirrorpaint/internal/config"
	"github.com/ayusman/mirrorpaint/internal/detector"
	"github.com/ayusman/mirrorpaint/internal/discovery"
	"github.com/ayusman/mirrorpaint/internal/logging"
	"github.com/ayusman/mirrorpaint/internal/metrics"
	"github.com/ayusman/mirrorpaint/internal/plugin"
	"github.com/ayusman/mirrorpaint/internal/server"
	"github.com/ayusman/mirrorpaint/internal/store"
	"github.com/ayusman/mirrorpaint/internal/tray"
)

// trayCommandTimeout bounds how long a tray click waits for the frame loop.
const trayCommandTimeout = 2 * time.Second

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the camera and start drawing",
	Long: `Starts capture, hand detection and the drawing loop. The preview is shown in
a local window and served over HTTP as MJPEG, with a JSON API for clearing,
saving and resizing the canvas.`,
	RunE: runDraw,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("addr", "", "HTTP listen address (default from config, :8080)")
	runCmd.Flags().Int("camera", -1, "Camera device ID")
	runCmd.Flags().Int("width", 0, "Display width")
	runCmd.Flags().Int("height", 0, "Display height")
	runCmd.Flags().Int("fps", 0, "Frame loop rate")
	runCmd.Flags().Bool("no-window", false, "Do not open the local preview window")
	runCmd.Flags().Bool("tray", false, "Show the system tray menu")
	runCmd.Flags().Bool("mdns", false, "Advertise the preview server on the local network")
	runCmd.Flags().Bool("pdf", false, "Also write a PDF with every export")
	runCmd.Flags().Bool("mock-detector", false, "Run without MediaPipe; no hands are detected")
}

// applyRunFlags overrides cfg with the run flags the user set.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if v, _ := flags.GetString("addr"); v != "" {
		cfg.Server.Addr = v
	}
	if v, _ := flags.GetInt("camera"); v >= 0 {
		cfg.Camera.ID = v
	}
	if v, _ := flags.GetInt("width"); v > 0 {
		cfg.Display.Width = v
	}
	if v, _ := flags.GetInt("height"); v > 0 {
		cfg.Display.Height = v
	}
	if v, _ := flags.GetInt("fps"); v > 0 {
		cfg.Display.FPS = v
	}
	if v, _ := flags.GetBool("no-window"); v {
		cfg.Display.Window = false
	}
	if v, _ := flags.GetBool("tray"); v {
		cfg.Tray = true
	}
	if v, _ := flags.GetBool("mdns"); v {
		cfg.Server.MDNS = true
	}
	if v, _ := flags.GetBool("pdf"); v {
		cfg.Export.PDF = true
	}
}

func runDraw(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyRunFlags(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := logging.ParseLevel(cfg.LogLevel)
	logger := logging.New(level)
	gg.SetLogger(logger.With("component", "gg"))

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	mock, _ := cmd.Flags().GetBool("mock-detector")
	det, err := newDetector(cfg, mock, logger)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	a, err := app.New(app.Config{
		Camera: capture.NewCamera(capture.Config{
			DeviceID: cfg.Camera.ID,
			Width:    cfg.Camera.CaptureWidth,
			Height:   cfg.Camera.CaptureHeight,
			FPS:      cfg.Display.FPS,
		}),
		Detector:        det,
		CameraWidth:     cfg.Camera.Width,
		CameraHeight:    cfg.Camera.Height,
		DisplayWidth:    cfg.Display.Width,
		DisplayHeight:   cfg.Display.Height,
		FPS:             cfg.Display.FPS,
		MotionThreshold: cfg.Camera.MotionThreshold,
		Export:          canvas.ExportOptions{Dir: cfg.Export.Dir, PDF: cfg.Export.PDF},
		Window:          cfg.Display.Window,
		Store:           st,
		Metrics:         m,
		Logger:          logger,
	})
	if err != nil {
		det.Close()
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hooks, err := startHooks(ctx, cfg, a, logger)
	if err != nil {
		return err
	}
	defer hooks.Wait()

	// The quit key ends the whole process the same way a signal does.
	a.OnQuit(stop)

	if err := a.Start(ctx); err != nil {
		return err
	}

	staticDir := cfg.Server.StaticDir
	if staticDir == "" {
		staticDir = findWebDir(cfg.DataDir)
	}
	if staticDir != "" {
		logger.Info("serving static files", "dir", staticDir)
	}

	srv := server.New(server.Config{
		StaticDir: staticDir,
		Store:     st,
		Canvas:    a,
		Hub:       a.Hub(),
		Metrics:   m.Handler(),
		Logger:    logger.With("component", "http"),
	})
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Run(ctx, cfg.Server.Addr)
	}()

	if cfg.Server.MDNS {
		if adv := advertise(cfg.Server.Addr, logger); adv != nil {
			defer adv.Shutdown()
		}
	}

	if cfg.Tray {
		runTray(ctx, stop, a, logger)
	}

	var serveErr error
	serverDone := false
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case <-a.Done():
		logger.Info("frame loop exited")
	case serveErr = <-serverErrors:
		serverDone = true
	}

	stop()
	a.Stop()
	if !serverDone {
		serveErr = <-serverErrors
	}
	return serveErr
}

// newDetector starts MediaPipe, or the no-op mock when asked to.
func newDetector(cfg config.Config, mock bool, logger *slog.Logger) (detector.Detector, error) {
	if mock {
		logger.Warn("using mock detector, no hands will be detected")
		return detector.NewMockDetector(), nil
	}
	det, err := detector.NewMediaPipeDetector(cfg.Detector, logger.With("component", "detector"))
	if err != nil {
		return nil, fmt.Errorf("start detector: %w (use --mock-detector to run without MediaPipe)", err)
	}
	return det, nil
}

// startHooks loads the export plugins and runs them after every save.
func startHooks(ctx context.Context, cfg config.Config, a *app.App, logger *slog.Logger) (*plugin.Dispatcher, error) {
	mgr := plugin.NewManager(cfg.Plugins.Dir)
	if err := mgr.Discover(); err != nil {
		return nil, fmt.Errorf("load plugins: %w", err)
	}
	for _, p := range mgr.List() {
		logger.Info("plugin loaded", "name", p.Manifest.Name, "events", p.Manifest.Events)
	}

	d := plugin.NewDispatcher(mgr, plugin.NewExecutor(cfg.Plugins.Timeout), logger.With("component", "plugin"))
	a.OnExport(func(e store.Export) {
		d.Dispatch(ctx, plugin.Request{Event: plugin.EventExport, Export: &e})
	})
	return d, nil
}

// advertise announces the HTTP port over mDNS. Failures are logged only.
func advertise(addr string, logger *slog.Logger) interface{ Shutdown() error } {
	port, err := listenPort(addr)
	if err != nil {
		logger.Warn("mdns disabled", "error", err)
		return nil
	}
	adv, err := discovery.Advertise(port, []string{"mirrorpaint " + version})
	if err != nil {
		logger.Warn("mdns disabled", "error", err)
		return nil
	}
	logger.Info("advertising on local network", "service", discovery.ServiceType, "port", port)
	return adv
}

func listenPort(addr string) (int, error) {
	_, p, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, fmt.Errorf("parse address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(p)
	if err != nil || port <= 0 {
		return 0, fmt.Errorf("address %q has no fixed port", addr)
	}
	return port, nil
}

// runTray shows the tray menu and blocks until it closes.
func runTray(ctx context.Context, quit func(), a *app.App, logger *slog.Logger) {
	t := tray.New(a.IsEnabled())

	t.OnToggle(a.SetEnabled)
	t.OnClear(func() {
		ctx, cancel := context.WithTimeout(ctx, trayCommandTimeout)
		defer cancel()
		if err := a.Clear(ctx); err != nil {
			logger.Warn("tray clear", "error", err)
		}
	})
	t.OnSave(func() {
		ctx, cancel := context.WithTimeout(ctx, trayCommandTimeout)
		defer cancel()
		if _, err := a.Export(ctx, app.SourceTray); err != nil {
			logger.Warn("tray save", "error", err)
		}
	})
	t.OnQuit(quit)
	a.OnExport(func(e store.Export) { t.SetLastExport(e.Name) })

	go func() {
		<-ctx.Done()
		t.Stop()
	}()
	t.Run()
}

// findWebDir searches for the web directory in common locations.
// It checks "web", "../web", "../../web" and <dataDir>/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	candidates := []string{"web", "../web", "../../web", filepath.Join(dataDir, "web")}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}

