package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ayusman/mirrorpaint/internal/capture"
	"github.com/ayusman/mirrorpaint/internal/detector"
	"github.com/ayusman/mirrorpaint/internal/metrics"
)

// Source runs camera capture and hand detection off the frame loop and
// keeps the latest result in a slot the loop reads from.
type Source struct {
	camera   capture.Camera
	detector detector.Detector
	gate     *capture.MotionGate
	width    float64
	height   float64
	interval time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics

	enabled func() bool

	mu    sync.Mutex
	hands []detector.HandLandmarks
	seq   uint64
}

// Latest returns the newest hand list and how many detections have been
// published so far. The slice must not be modified.
func (s *Source) Latest() ([]detector.HandLandmarks, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hands, s.seq
}

func (s *Source) publish(hands []detector.HandLandmarks) {
	s.mu.Lock()
	s.hands = hands
	s.seq++
	s.mu.Unlock()
}

// Run reads frames until ctx is done. Camera and detector errors are logged
// and the frame is skipped.
func (s *Source) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	gated := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if s.enabled != nil && !s.enabled() {
			if hands, _ := s.Latest(); hands != nil {
				s.publish(nil)
			}
			continue
		}

		frame, err := s.camera.ReadFrame()
		if err != nil {
			s.logger.Debug("read frame", "error", err)
			s.countError()
			continue
		}

		if !s.gate.Allow(frame, time.Now()) {
			frame.Close()
			if !gated {
				gated = true
				s.logger.Debug("scene still, detection paused")
			}
			continue
		}
		if gated {
			gated = false
			s.logger.Debug("motion seen, detection resumed")
		}

		hands, err := s.detector.Detect(frame)
		frame.Close()
		if err != nil {
			s.logger.Warn("detect hands", "error", err)
			s.countError()
			continue
		}

		s.publish(detector.ScaleAll(hands, s.width, s.height))
	}
}

func (s *Source) countError() {
	if s.metrics != nil {
		s.metrics.DetectorErrors.Inc()
	}
}
