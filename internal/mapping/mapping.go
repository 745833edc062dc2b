// Package mapping converts camera-space landmark positions into screen and
// canvas coordinates.
//
// Two transforms are provided. Mirror places a camera point inside the
// on-screen camera box, flipped horizontally so the feed behaves like a
// mirror. MapFingertip splits the flipped camera frame into a color picker
// strip (the leftmost quarter) and a paint region that is stretched over the
// whole drawing surface.
package mapping

import "image"

// Layout defaults.
const (
	DefaultCameraWidth  = 320
	DefaultCameraHeight = 240
	CameraBoxTop        = 40
	ColorBarWidth       = 25

	// PickerFraction is the share of the flipped camera width used by the color picker.
	PickerFraction = 0.25
	// PaintMarginFraction is trimmed from the top and bottom of the camera frame
	// before it is stretched onto the canvas.
	PaintMarginFraction = 0.1
)

// Point is a 2D position in camera, screen or canvas space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Region says where a fingertip landed.
type Region int

const (
	RegionPaint Region = iota
	RegionPicker
)

func (r Region) String() string {
	if r == RegionPicker {
		return "picker"
	}
	return "paint"
}

// Target is the result of mapping a fingertip.
type Target struct {
	Region Region `json:"region"`
	// Hue is set in the picker region, in [0,360].
	Hue float64 `json:"hue"`
	// Canvas is set in the paint region, in drawing surface coordinates.
	Canvas Point `json:"canvas"`
}

// Layout holds the screen geometry the transforms depend on.
// Recompute it with Resize whenever the display changes size.
type Layout struct {
	CameraWidth   float64
	CameraHeight  float64
	DisplayWidth  float64
	DisplayHeight float64

	// CameraX and CameraY are the top-left corner of the on-screen camera box.
	CameraX float64
	CameraY float64
	// ColorBarX is the left edge of the rendered hue bar.
	ColorBarX float64
}

// NewLayout returns the layout for a display of the given size with the
// default 320x240 camera box.
func NewLayout(displayWidth, displayHeight int) Layout {
	return NewLayoutWithCamera(displayWidth, displayHeight, DefaultCameraWidth, DefaultCameraHeight)
}

// NewLayoutWithCamera returns a layout for a custom camera frame size.
func NewLayoutWithCamera(displayWidth, displayHeight, cameraWidth, cameraHeight int) Layout {
	l := Layout{
		CameraWidth:  float64(cameraWidth),
		CameraHeight: float64(cameraHeight),
		CameraY:      CameraBoxTop,
	}
	l.Resize(displayWidth, displayHeight)
	return l
}

// Resize updates every value that depends on the display size.
// The camera box stays horizontally centered.
func (l *Layout) Resize(displayWidth, displayHeight int) {
	l.DisplayWidth = float64(displayWidth)
	l.DisplayHeight = float64(displayHeight)
	l.CameraX = (l.DisplayWidth - l.CameraWidth) / 2
	l.ColorBarX = l.CameraX - ColorBarWidth
}

// Mirror maps a camera point onto the screen, flipped horizontally.
func (l Layout) Mirror(x, y float64) Point {
	return Point{X: l.CameraX + l.CameraWidth - x, Y: l.CameraY + y}
}

// MapFingertip maps the draw hand's fingertip into the picker or the canvas.
// A flipped x exactly on the picker boundary belongs to the paint region.
func (l Layout) MapFingertip(x, y float64) Target {
	vx := l.CameraWidth - x
	vy := y

	if vx < l.CameraWidth*PickerFraction {
		return Target{
			Region: RegionPicker,
			Hue:    clamp(lerp(vy, 0, l.CameraHeight, 0, 360), 0, 360),
		}
	}

	return Target{
		Region: RegionPaint,
		Canvas: Point{
			X: lerp(vx, l.CameraWidth*PickerFraction, l.CameraWidth, 0, l.DisplayWidth),
			Y: lerp(vy, l.CameraHeight*PaintMarginFraction, l.CameraHeight*(1-PaintMarginFraction), 0, l.DisplayHeight),
		},
	}
}

// CameraBox is the on-screen rectangle showing the camera frame.
func (l Layout) CameraBox() image.Rectangle {
	return rect(l.CameraX, l.CameraY, l.CameraWidth, l.CameraHeight)
}

// ColorBar is the on-screen hue bar drawn beside the camera box.
func (l Layout) ColorBar() image.Rectangle {
	return rect(l.ColorBarX, l.CameraY, ColorBarWidth, l.CameraHeight)
}

// HueAt returns the hue shown at row y of the color bar, measured from its top.
func (l Layout) HueAt(y float64) float64 {
	return lerp(y, 0, l.CameraHeight, 0, 360)
}

func rect(x, y, w, h float64) image.Rectangle {
	return image.Rect(int(x), int(y), int(x+w), int(y+h))
}

func lerp(v, inLo, inHi, outLo, outHi float64) float64 {
	return outLo + (v-inLo)*(outHi-outLo)/(inHi-inLo)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
