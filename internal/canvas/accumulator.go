package canvas

import (
	"github.com/ayusman/mirrorpaint/internal/gesture"
	"github.com/ayusman/mirrorpaint/internal/mapping"
)

// StrokeEvent describes what a frame did to the surface.
type StrokeEvent int

const (
	// EventNone means the pen is up and nothing was drawn.
	EventNone StrokeEvent = iota
	// EventStamp means the pen touched down and stamped one shape.
	EventStamp
	// EventSegment means a line joined the previous point and a shape was stamped.
	EventSegment
)

func (e StrokeEvent) String() string {
	switch e {
	case EventStamp:
		return "stamp"
	case EventSegment:
		return "segment"
	default:
		return "none"
	}
}

// Accumulator connects paint points from consecutive frames into strokes.
// It must only be driven from one goroutine.
type Accumulator struct {
	surface *Surface
	last    *mapping.Point
}

// NewAccumulator returns an accumulator over a fresh surface.
func NewAccumulator(width, height int) (*Accumulator, error) {
	s, err := NewSurface(width, height)
	if err != nil {
		return nil, err
	}
	return &Accumulator{surface: s}, nil
}

// Apply advances the pen by one frame. When painting is false the pen lifts
// and the surface is untouched. Otherwise p is stamped, and joined to the
// previous frame's point if the pen was already down.
func (a *Accumulator) Apply(painting bool, p mapping.Point, b gesture.Brush) (StrokeEvent, error) {
	if !painting {
		a.last = nil
		return EventNone, nil
	}

	event := EventStamp
	if a.last != nil {
		if err := a.surface.Segment(*a.last, p, b); err != nil {
			return EventNone, err
		}
		event = EventSegment
	}
	if err := a.surface.Stamp(p, b); err != nil {
		return EventNone, err
	}

	a.last = &p
	return event, nil
}

// PenUp forgets the previous point so the next paint frame starts a new stroke.
func (a *Accumulator) PenUp() {
	a.last = nil
}

// Last returns the previous paint point, if the pen is down.
func (a *Accumulator) Last() (mapping.Point, bool) {
	if a.last == nil {
		return mapping.Point{}, false
	}
	return *a.last, true
}

// Clear erases the surface and lifts the pen.
func (a *Accumulator) Clear() {
	a.surface.Clear()
	a.last = nil
}

// Resize reprojects the surface. The pen is left as it is, so a stroke in
// progress continues from its old coordinates.
func (a *Accumulator) Resize(width, height int) error {
	return a.surface.Resize(width, height)
}

// Surface exposes the underlying raster for rendering and export.
func (a *Accumulator) Surface() *Surface {
	return a.surface
}

// Close releases the surface.
func (a *Accumulator) Close() error {
	return a.surface.Close()
}
