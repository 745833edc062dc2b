// Package detector provides hand landmark detection for the drawing pipeline.
package detector

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Handedness labels as reported by the landmark model. The label describes
// anatomical chirality, not the side of the screen the hand appears on.
const (
	HandLeft  = "Left"
	HandRight = "Right"
)

// Point3D represents a 3D point in space with x, y, z coordinates.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks of one detected hand.
// X and Y are in camera pixels once the landmark source has scaled them.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Distance2D returns the planar Euclidean distance between two points, ignoring depth.
func Distance2D(a, b Point3D) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Distance returns the planar distance between two landmarks of the hand.
func (h *HandLandmarks) Distance(i, j int) float64 {
	return Distance2D(h.Points[i], h.Points[j])
}

// Scaled returns a copy of the hand with X and Y multiplied by width and height.
// MediaPipe reports coordinates normalized to [0,1]; the drawing pipeline
// measures gesture distances in camera pixels.
func (h HandLandmarks) Scaled(width, height float64) HandLandmarks {
	for i := range h.Points {
		h.Points[i].X *= width
		h.Points[i].Y *= height
	}
	return h
}

// ScaleAll returns a scaled copy of every hand; the input slice is left untouched.
func ScaleAll(hands []HandLandmarks, width, height float64) []HandLandmarks {
	if len(hands) == 0 {
		return nil
	}
	out := make([]HandLandmarks, len(hands))
	for i, h := range hands {
		out[i] = h.Scaled(width, height)
	}
	return out
}
