package gesture

import "github.com/ayusman/mirrorpaint/internal/detector"

// Size gesture: thumb-index distance mapped from SizeDistanceMin..Max onto
// SizeTargetMin..Max, then clamped to the brush size limits.
const (
	SizeDistanceMin = 5
	SizeDistanceMax = 150
	SizeTargetMin   = 3
	SizeTargetMax   = 80
)

// Shape toggle hysteresis band on the thumb-middle distance.
const (
	ShapeTriggerDistance = 30
	ShapeReleaseDistance = 50
)

// PinchDrawDistance is the thumb-index distance above which the draw hand paints.
const PinchDrawDistance = 25

// SizeFromDistance converts a thumb-index distance into a brush size.
func SizeFromDistance(d float64) float64 {
	size := lerp(d, SizeDistanceMin, SizeDistanceMax, SizeTargetMin, SizeTargetMax)
	return clamp(size, MinBrushSize, MaxBrushSize)
}

// IsDrawing reports whether a thumb-index distance means the pen is down.
// Exactly PinchDrawDistance counts as paused.
func IsDrawing(d float64) bool {
	return d > PinchDrawDistance
}

// ShapeToggle debounces the shape gesture. Once it fires it stays latched
// until the distance rises above ShapeReleaseDistance.
type ShapeToggle struct {
	latched bool
}

// Update feeds one thumb-middle distance and reports whether the shape should flip.
func (t *ShapeToggle) Update(d float64) bool {
	fired := false
	if d < ShapeTriggerDistance && !t.latched {
		t.latched = true
		fired = true
	}
	if d > ShapeReleaseDistance {
		t.latched = false
	}
	return fired
}

// Latched reports whether the toggle is waiting for release.
func (t *ShapeToggle) Latched() bool {
	return t.latched
}

// ControlReading is what the control hand produced this frame.
type ControlReading struct {
	SizeDistance  float64 `json:"size_distance"`
	ShapeDistance float64 `json:"shape_distance"`
	Toggled       bool    `json:"toggled"`
}

// DrawReading is what the draw hand produced this frame.
type DrawReading struct {
	PinchDistance float64 `json:"pinch_distance"`
	Drawing       bool    `json:"drawing"`
}

// Interpreter owns the brush and the shape toggle latch across frames.
type Interpreter struct {
	Brush  Brush
	toggle ShapeToggle
}

// NewInterpreter returns an interpreter holding the default brush.
func NewInterpreter() *Interpreter {
	return &Interpreter{Brush: DefaultBrush()}
}

// ApplyControl reads size and shape gestures from the control hand and
// updates the brush. Size follows the hand every frame; shape flips only
// when the toggle fires.
func (in *Interpreter) ApplyControl(hand *detector.HandLandmarks) ControlReading {
	reading := ControlReading{
		SizeDistance:  hand.Distance(detector.ThumbTip, detector.IndexTip),
		ShapeDistance: hand.Distance(detector.ThumbTip, detector.MiddleTip),
	}

	in.Brush.Size = SizeFromDistance(reading.SizeDistance)

	if in.toggle.Update(reading.ShapeDistance) {
		in.Brush.Shape = in.Brush.Shape.Toggle()
		reading.Toggled = true
	}

	return reading
}

// ReadDraw reads the pinch gesture from the draw hand.
func (in *Interpreter) ReadDraw(hand *detector.HandLandmarks) DrawReading {
	d := hand.Distance(detector.ThumbTip, detector.IndexTip)
	return DrawReading{PinchDistance: d, Drawing: IsDrawing(d)}
}

// PickHue sets the brush hue from the color picker.
func (in *Interpreter) PickHue(hue float64) {
	in.Brush.Color.Hue = clamp(hue, 0, MaxHue)
}

// ShapeLatched reports the debounce latch, mostly for overlays and tests.
func (in *Interpreter) ShapeLatched() bool {
	return in.toggle.Latched()
}
