package session

import (
	"github.com/ayusman/mirrorpaint/internal/gesture"
	"github.com/ayusman/mirrorpaint/internal/mapping"
)

// State is the JSON summary of a frame sent to preview clients.
type State struct {
	Seq      uint64         `json:"seq"`
	Enabled  bool           `json:"enabled"`
	Brush    gesture.Brush  `json:"brush"`
	Hands    int            `json:"hands"`
	Control  bool           `json:"control"`
	Draw     bool           `json:"draw"`
	Painting bool           `json:"painting"`
	Region   string         `json:"region,omitempty"`
	Canvas   *mapping.Point `json:"canvas,omitempty"`
	Event    string         `json:"event"`
}

// State summarizes the frame. Enabled is left for the caller to fill in.
func (f Frame) State() State {
	st := State{
		Seq:      f.Seq,
		Brush:    f.Brush,
		Hands:    len(f.Hands),
		Control:  f.Control != nil,
		Draw:     f.Draw != nil,
		Painting: f.Painting,
		Event:    f.Event.String(),
	}
	if f.Target != nil {
		st.Region = f.Target.Region.String()
		if f.Target.Region == mapping.RegionPaint {
			p := f.Target.Canvas
			st.Canvas = &p
		}
	}
	return st
}
