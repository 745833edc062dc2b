package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"gocv.io/x/gocv"

	"github.com/ayusman/mirrorpaint/internal/capture"
	"github.com/ayusman/mirrorpaint/internal/detector"
	"github.com/ayusman/mirrorpaint/internal/logging"
	"github.com/ayusman/mirrorpaint/internal/metrics"
)

func newTestSource(cam capture.Camera, det detector.Detector, enabled func() bool) *Source {
	return &Source{
		camera:   cam,
		detector: det,
		gate:     capture.NewMotionGate(0, 0),
		width:    320,
		height:   240,
		interval: 5 * time.Millisecond,
		logger:   logging.NewNop(),
		metrics:  metrics.New(prometheus.NewRegistry()),
		enabled:  enabled,
	}
}

// runUntil runs s until cond holds or the deadline passes.
func runUntil(t *testing.T, s *Source, cond func() bool) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSource_PublishesScaledHands(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that allocates GoCV frames")
	}

	frame := gocv.NewMatWithSize(240, 320, gocv.MatTypeCV8UC3)
	defer frame.Close()
	cam := capture.NewMockCamera([]*gocv.Mat{&frame}, true)
	if err := cam.Open(); err != nil {
		t.Fatal(err)
	}

	det := detector.NewMockDetector()
	det.SetHands([]detector.HandLandmarks{paintingHand().Scaled(1.0/320, 1.0/240)})

	s := newTestSource(cam, det, nil)
	runUntil(t, s, func() bool {
		_, seq := s.Latest()
		return seq > 0
	})

	hands, _ := s.Latest()
	if len(hands) != 1 {
		t.Fatalf("len(hands) = %d, want 1", len(hands))
	}
	tip := hands[0].Points[detector.IndexTip]
	if tip.X < 119.99 || tip.X > 120.01 || tip.Y < 119.99 || tip.Y > 120.01 {
		t.Errorf("index tip = (%v, %v), want (120, 120)", tip.X, tip.Y)
	}
}

func TestSource_CountsCameraErrors(t *testing.T) {
	cam := capture.NewMockCamera(nil, false) // never opened
	s := newTestSource(cam, detector.NewMockDetector(), nil)

	runUntil(t, s, func() bool {
		return testutil.ToFloat64(s.metrics.DetectorErrors) >= 2
	})

	if _, seq := s.Latest(); seq != 0 {
		t.Errorf("seq = %d, camera errors should not publish", seq)
	}
}

func TestSource_DetectorErrorKeepsPreviousHands(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that allocates GoCV frames")
	}

	frame := gocv.NewMatWithSize(240, 320, gocv.MatTypeCV8UC3)
	defer frame.Close()
	cam := capture.NewMockCamera([]*gocv.Mat{&frame}, true)
	cam.Open()

	det := detector.NewMockDetector()
	det.SetError(errors.New("inference failed"))

	s := newTestSource(cam, det, nil)
	s.publish([]detector.HandLandmarks{paintingHand()})

	runUntil(t, s, func() bool { return det.Calls() >= 2 })

	hands, seq := s.Latest()
	if seq != 1 || len(hands) != 1 {
		t.Errorf("Latest() = %d hands at seq %d, want the previous slot", len(hands), seq)
	}
}

func TestSource_DisabledClearsSlot(t *testing.T) {
	cam := capture.NewMockCamera(nil, false)
	cam.Open()
	det := detector.NewMockDetector()

	s := newTestSource(cam, det, func() bool { return false })
	s.publish([]detector.HandLandmarks{paintingHand()})

	runUntil(t, s, func() bool {
		hands, _ := s.Latest()
		return hands == nil
	})

	time.Sleep(20 * time.Millisecond)
	if det.Calls() != 0 {
		t.Errorf("detector called %d times while disabled", det.Calls())
	}
	if cam.Reads() != 0 {
		t.Errorf("camera read %d times while disabled", cam.Reads())
	}
}
