// Package gesture interprets hand landmarks as drawing controls: which hand
// plays which role, the brush it selects and whether the pen is down.
package gesture

import (
	"math"

	"github.com/gogpu/gg"
)

// Shape is the stamp drawn at every painted point.
type Shape string

const (
	ShapeCircle Shape = "circle"
	ShapeSquare Shape = "square"
)

// Toggle returns the other shape.
func (s Shape) Toggle() Shape {
	if s == ShapeCircle {
		return ShapeSquare
	}
	return ShapeCircle
}

// Brush size limits and the default brush.
const (
	MinBrushSize     = 3
	MaxBrushSize     = 50
	DefaultBrushSize = 10
)

// Color channel ranges of the canonical brush color model.
const (
	MaxHue        = 360
	MaxSaturation = 255
	MaxValue      = 255
)

// Color is the brush color in hue/saturation/value form.
// Hue is in [0,360]; saturation and value are on a 0-255 scale.
type Color struct {
	Hue        float64 `json:"hue"`
	Saturation float64 `json:"saturation"`
	Value      float64 `json:"value"`
}

// HueColor returns a fully saturated, full brightness color of the given hue.
func HueColor(hue float64) Color {
	return Color{Hue: clamp(hue, 0, MaxHue), Saturation: MaxSaturation, Value: MaxValue}
}

// RGBA converts the color for drawing. alpha is on a 0-255 scale.
// This is the only place the HSV model leaves the gesture package.
func (c Color) RGBA(alpha float64) gg.RGBA {
	s := clamp(c.Saturation/MaxSaturation, 0, 1)
	v := clamp(c.Value/MaxValue, 0, 1)

	// HSV -> HSL, then let gg do the hue wheel.
	l := v * (1 - s/2)
	var sl float64
	if l > 0 && l < 1 {
		sl = (v - l) / math.Min(l, 1-l)
	}

	rgba := gg.HSL(c.Hue, sl, l)
	rgba.A = clamp(alpha/255, 0, 1)
	return rgba
}

// Brush is the persistent brush state shared by both hands.
type Brush struct {
	Size  float64 `json:"size"`
	Shape Shape   `json:"shape"`
	Color Color   `json:"color"`
}

// DefaultBrush returns the brush a new session starts with.
func DefaultBrush() Brush {
	return Brush{
		Size:  DefaultBrushSize,
		Shape: ShapeCircle,
		Color: HueColor(0),
	}
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

// lerp maps v linearly from [inLo,inHi] to [outLo,outHi] without clamping.
func lerp(v, inLo, inHi, outLo, outHi float64) float64 {
	return outLo + (v-inLo)*(outHi-outLo)/(inHi-inLo)
}
