// Package app runs the mirrorpaint frame loop. A capture goroutine keeps the
// latest detected hands in a slot; the loop steps the drawing session on a
// fixed tick, renders the preview and publishes it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/mirrorpaint/internal/canvas"
	"github.com/ayusman/mirrorpaint/internal/capture"
	"github.com/ayusman/mirrorpaint/internal/detector"
	"github.com/ayusman/mirrorpaint/internal/logging"
	"github.com/ayusman/mirrorpaint/internal/mapping"
	"github.com/ayusman/mirrorpaint/internal/metrics"
	"github.com/ayusman/mirrorpaint/internal/render"
	"github.com/ayusman/mirrorpaint/internal/session"
	"github.com/ayusman/mirrorpaint/internal/store"
)

// DefaultFPS is the frame loop rate when none is configured.
const DefaultFPS = 30

// ErrNotRunning is returned by commands sent while the loop is stopped.
var ErrNotRunning = errors.New("frame loop is not running")

// Config holds the collaborators and sizes the application runs with.
type Config struct {
	Camera   capture.Camera
	Detector detector.Detector

	// CameraWidth and CameraHeight size the on-screen camera box that
	// landmarks are scaled to.
	CameraWidth   int
	CameraHeight  int
	DisplayWidth  int
	DisplayHeight int
	FPS           int

	// MotionThreshold gates detection on scene changes; zero disables it.
	MotionThreshold float64
	MotionHold      time.Duration

	Export canvas.ExportOptions
	Window bool

	Store   *store.Store
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// App owns the drawing session and everything that feeds or shows it.
type App struct {
	cfg      Config
	logger   *slog.Logger
	session  *session.Session
	renderer *render.Renderer
	source   *Source
	hub      *Hub
	cmds     chan command
	enabled  atomic.Bool

	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	onExport []func(store.Export)
	onQuit   func()
}

// New builds an App. The camera is not opened until Start.
func New(cfg Config) (*App, error) {
	if cfg.Camera == nil || cfg.Detector == nil {
		return nil, errors.New("app needs a camera and a detector")
	}
	if cfg.CameraWidth <= 0 || cfg.CameraHeight <= 0 {
		cfg.CameraWidth, cfg.CameraHeight = mapping.DefaultCameraWidth, mapping.DefaultCameraHeight
	}
	if cfg.FPS <= 0 {
		cfg.FPS = DefaultFPS
	}
	if cfg.MotionHold <= 0 {
		cfg.MotionHold = capture.DefaultMotionHold
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}

	sess, err := session.New(session.Config{
		DisplayWidth:  cfg.DisplayWidth,
		DisplayHeight: cfg.DisplayHeight,
		CameraWidth:   cfg.CameraWidth,
		CameraHeight:  cfg.CameraHeight,
	})
	if err != nil {
		return nil, err
	}
	rend, err := render.New(cfg.DisplayWidth, cfg.DisplayHeight)
	if err != nil {
		sess.Close()
		return nil, err
	}

	a := &App{
		cfg:      cfg,
		logger:   cfg.Logger,
		session:  sess,
		renderer: rend,
		hub:      NewHub(),
		cmds:     make(chan command, 16),
	}
	a.source = &Source{
		camera:   cfg.Camera,
		detector: cfg.Detector,
		gate:     capture.NewMotionGate(cfg.MotionThreshold, cfg.MotionHold),
		width:    float64(cfg.CameraWidth),
		height:   float64(cfg.CameraHeight),
		interval: time.Second / time.Duration(cfg.FPS),
		logger:   cfg.Logger.With("component", "source"),
		metrics:  cfg.Metrics,
		enabled:  a.IsEnabled,
	}

	a.enabled.Store(a.loadEnabled())
	return a, nil
}

func (a *App) loadEnabled() bool {
	if a.cfg.Store == nil {
		return true
	}
	v, err := a.cfg.Store.Settings().GetOr(store.SettingEnabled, "true")
	if err != nil {
		a.logger.Warn("load enabled setting", "error", err)
		return true
	}
	enabled, err := strconv.ParseBool(v)
	if err != nil {
		return true
	}
	return enabled
}

// Start opens the camera and starts the capture goroutine and the frame
// loop. Starting a running app is a no-op.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.done != nil {
		return nil
	}

	if err := a.cfg.Camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.done = make(chan struct{})

	go a.source.Run(ctx)
	go a.loop(ctx, a.done)

	a.logger.Info("frame loop started",
		"fps", a.cfg.FPS,
		"display", fmt.Sprintf("%dx%d", a.cfg.DisplayWidth, a.cfg.DisplayHeight))
	return nil
}

// Stop halts both goroutines and releases the camera and detector.
func (a *App) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel, a.done = nil, nil
	a.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	if err := a.cfg.Camera.Close(); err != nil {
		a.logger.Warn("close camera", "error", err)
	}
	a.source.gate.Close()
	if err := a.cfg.Detector.Close(); err != nil {
		a.logger.Warn("close detector", "error", err)
	}

	a.logger.Info("frame loop stopped")
}

// Close stops the app and frees the drawing surfaces.
func (a *App) Close() error {
	a.Stop()
	return errors.Join(a.renderer.Close(), a.session.Close())
}

// Running reports whether the frame loop is active.
func (a *App) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.done != nil
}

// Done is closed when the frame loop exits. It is nil before Start.
func (a *App) Done() <-chan struct{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.done
}

// SetEnabled pauses or resumes hand detection. The preview keeps running.
func (a *App) SetEnabled(enabled bool) {
	a.enabled.Store(enabled)
	if a.cfg.Store != nil {
		if err := a.cfg.Store.Settings().Set(store.SettingEnabled, strconv.FormatBool(enabled)); err != nil {
			a.logger.Warn("save enabled setting", "error", err)
		}
	}
	a.logger.Info("detection toggled", "enabled", enabled)
}

// IsEnabled returns whether hand detection is running.
func (a *App) IsEnabled() bool {
	return a.enabled.Load()
}

// OnExport adds a callback run in the frame loop after each export. Hooks
// run in the order they were added and must not block.
func (a *App) OnExport(fn func(store.Export)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onExport = append(a.onExport, fn)
}

// OnQuit registers a callback for the quit key in the preview window.
func (a *App) OnQuit(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onQuit = fn
}

// Hub returns the snapshot fan-out used by preview clients.
func (a *App) Hub() *Hub {
	return a.hub
}

// Store returns the export history store, which may be nil.
func (a *App) Store() *store.Store {
	return a.cfg.Store
}
