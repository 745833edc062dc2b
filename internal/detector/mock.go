package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls reports how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// PinchHand builds a hand in camera pixels with the index fingertip at tip.
// The thumb tip sits pinch pixels below the index tip and the middle tip sits
// spread pixels to the right of the thumb tip, so thumb-index distance is
// exactly pinch and thumb-middle distance is exactly spread.
func PinchHand(handedness string, tip Point3D, pinch, spread float64) HandLandmarks {
	hand := HandLandmarks{
		Handedness: handedness,
		Score:      0.95,
	}

	thumb := Point3D{X: tip.X, Y: tip.Y + pinch}
	middle := Point3D{X: thumb.X + spread, Y: thumb.Y}
	wrist := Point3D{X: tip.X, Y: thumb.Y + 80}

	hand.Points[Wrist] = wrist
	chain(&hand, ThumbCMC, ThumbTip, wrist, thumb)
	chain(&hand, IndexMCP, IndexTip, wrist, tip)
	chain(&hand, MiddleMCP, MiddleTip, wrist, middle)
	chain(&hand, RingMCP, RingTip, wrist, Point3D{X: middle.X + 10, Y: middle.Y + 20})
	chain(&hand, PinkyMCP, PinkyTip, wrist, Point3D{X: middle.X + 20, Y: middle.Y + 35})

	return hand
}

// chain spaces joints first..last evenly between the wrist and the fingertip,
// with last landing exactly on the fingertip.
func chain(hand *HandLandmarks, first, last int, wrist, tip Point3D) {
	n := float64(last - first + 1)
	for i := first; i <= last; i++ {
		t := float64(i-first+1) / n
		hand.Points[i] = Point3D{
			X: wrist.X + (tip.X-wrist.X)*t,
			Y: wrist.Y + (tip.Y-wrist.Y)*t,
		}
	}
	hand.Points[last] = tip
}
