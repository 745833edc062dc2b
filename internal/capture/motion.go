package capture

import (
	"image"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Motion detection constants.
const (
	// GaussianBlurSize is the kernel size used to suppress sensor noise.
	GaussianBlurSize = 21
	// DiffThreshold is the per-pixel intensity change that counts as motion.
	DiffThreshold = 25
	// DefaultMotionHold keeps the gate open after the last motion.
	DefaultMotionHold = 2 * time.Second
)

// MotionDetector compares consecutive frames and reports the share of
// pixels that changed.
type MotionDetector struct {
	threshold   float64
	prevGray    gocv.Mat
	initialized bool
	mu          sync.Mutex
}

// NewMotionDetector creates a detector that fires when more than threshold
// percent of the pixels change between frames.
func NewMotionDetector(threshold float64) *MotionDetector {
	return &MotionDetector{
		threshold: threshold,
		prevGray:  gocv.NewMat(),
	}
}

// Detect reports whether frame differs from the previous one by more than
// the threshold, and the changed percentage. The first frame only sets the
// baseline.
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: GaussianBlurSize, Y: GaussianBlurSize}, 0, 0, gocv.BorderDefault)

	if !m.initialized {
		blurred.CopyTo(&m.prevGray)
		m.initialized = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, m.prevGray, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, DiffThreshold, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(thresh)) / float64(thresh.Rows()*thresh.Cols()) * 100.0
	blurred.CopyTo(&m.prevGray)

	return changed > m.threshold, changed
}

// Reset drops the baseline so the next frame starts fresh.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release()
}

// Close releases the baseline Mat. The detector can still be used; the next
// frame becomes a new baseline.
func (m *MotionDetector) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release()
}

func (m *MotionDetector) release() {
	if !m.prevGray.Empty() {
		m.prevGray.Close()
		m.prevGray = gocv.NewMat()
	}
	m.initialized = false
}

// SetThreshold changes the percentage threshold. Values <= 0 are ignored.
func (m *MotionDetector) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.threshold = threshold
}

// MotionGate keeps hand detection off while the scene is still. Once motion
// is seen the gate stays open for the hold duration.
type MotionGate struct {
	motion     *MotionDetector
	hold       time.Duration
	lastMotion time.Time
	open       bool
}

// NewMotionGate returns a gate for the given change threshold in percent.
// A threshold <= 0 disables gating: Allow always reports true.
func NewMotionGate(threshold float64, hold time.Duration) *MotionGate {
	g := &MotionGate{hold: hold}
	if threshold > 0 {
		g.motion = NewMotionDetector(threshold)
	}
	return g
}

// Allow feeds one frame and reports whether detection should run on it.
func (g *MotionGate) Allow(frame *gocv.Mat, now time.Time) bool {
	if g.motion == nil {
		return true
	}

	if moved, _ := g.motion.Detect(frame); moved {
		g.lastMotion = now
		g.open = true
	} else if g.open && now.Sub(g.lastMotion) > g.hold {
		g.open = false
	}
	return g.open
}

// Open reports the gate state after the last Allow.
func (g *MotionGate) Open() bool {
	return g.motion == nil || g.open
}

// Close releases the motion detector.
func (g *MotionGate) Close() {
	if g.motion != nil {
		g.motion.Close()
	}
}
