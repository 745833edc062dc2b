// Package session runs the per-frame drawing pipeline over one explicit state
// struct: role assignment, gesture interpretation, coordinate mapping and
// stroke accumulation.
package session

import (
	"fmt"
	"time"

	"github.com/ayusman/mirrorpaint/internal/canvas"
	"github.com/ayusman/mirrorpaint/internal/detector"
	"github.com/ayusman/mirrorpaint/internal/gesture"
	"github.com/ayusman/mirrorpaint/internal/mapping"
)

// Config sizes a new session.
type Config struct {
	DisplayWidth  int
	DisplayHeight int
	CameraWidth   int
	CameraHeight  int
}

// Session is all state that survives between frames.
// It is not safe for concurrent use; one frame loop owns it.
type Session struct {
	interp *gesture.Interpreter
	layout mapping.Layout
	acc    *canvas.Accumulator
	frame  uint64
}

// New creates a session with the default brush and an empty surface.
func New(cfg Config) (*Session, error) {
	if cfg.CameraWidth <= 0 || cfg.CameraHeight <= 0 {
		cfg.CameraWidth = mapping.DefaultCameraWidth
		cfg.CameraHeight = mapping.DefaultCameraHeight
	}

	acc, err := canvas.NewAccumulator(cfg.DisplayWidth, cfg.DisplayHeight)
	if err != nil {
		return nil, fmt.Errorf("create surface: %w", err)
	}

	return &Session{
		interp: gesture.NewInterpreter(),
		layout: mapping.NewLayoutWithCamera(cfg.DisplayWidth, cfg.DisplayHeight, cfg.CameraWidth, cfg.CameraHeight),
		acc:    acc,
	}, nil
}

// Hand is one detected hand as seen by the renderer.
type Hand struct {
	Landmarks detector.HandLandmarks
	Role      gesture.Role
}

// Frame is the outcome of one Step, consumed by the overlay renderer.
type Frame struct {
	Seq   uint64
	Hands []Hand
	Brush gesture.Brush

	// Control is set when a control hand was present.
	Control *gesture.ControlReading
	// Draw and Target are set when a draw hand was present.
	Draw   *gesture.DrawReading
	Target *mapping.Target

	Painting bool
	Event    canvas.StrokeEvent
}

// Step interprets one frame of detections and paints onto the surface.
// hands is read only. A nil or empty list is a valid frame with no hands.
func (s *Session) Step(hands []detector.HandLandmarks) (Frame, error) {
	s.frame++
	roles := gesture.AssignRoles(hands)

	f := Frame{Seq: s.frame, Hands: make([]Hand, len(hands))}
	for i := range hands {
		f.Hands[i] = Hand{Landmarks: hands[i], Role: roles.RoleOf(&hands[i])}
	}

	if roles.Control != nil {
		reading := s.interp.ApplyControl(roles.Control)
		f.Control = &reading
	}

	var paintAt mapping.Point
	if roles.Draw != nil {
		reading := s.interp.ReadDraw(roles.Draw)
		f.Draw = &reading

		tip := roles.Draw.Points[detector.IndexTip]
		target := s.layout.MapFingertip(tip.X, tip.Y)
		f.Target = &target

		switch target.Region {
		case mapping.RegionPicker:
			s.interp.PickHue(target.Hue)
		case mapping.RegionPaint:
			paintAt = target.Canvas
			f.Painting = reading.Drawing
		}
	}

	event, err := s.acc.Apply(f.Painting, paintAt, s.interp.Brush)
	f.Event = event
	f.Brush = s.interp.Brush
	if err != nil {
		return f, fmt.Errorf("paint frame %d: %w", f.Seq, err)
	}

	return f, nil
}

// Clear erases the drawing and lifts the pen.
func (s *Session) Clear() {
	s.acc.Clear()
}

// Export writes a snapshot of the drawing taken at now.
func (s *Session) Export(now time.Time, opts canvas.ExportOptions) (canvas.Export, error) {
	return s.acc.Surface().Export(now, opts)
}

// Resize follows a display size change: the surface is reprojected and the
// layout recomputed. A stroke in progress is not interrupted.
func (s *Session) Resize(width, height int) error {
	if err := s.acc.Resize(width, height); err != nil {
		return fmt.Errorf("resize surface: %w", err)
	}
	s.layout.Resize(width, height)
	return nil
}

// Brush returns the current brush.
func (s *Session) Brush() gesture.Brush {
	return s.interp.Brush
}

// Layout returns the current screen geometry.
func (s *Session) Layout() mapping.Layout {
	return s.layout
}

// Surface returns the drawing surface.
func (s *Session) Surface() *canvas.Surface {
	return s.acc.Surface()
}

// PenDown reports whether the next paint frame continues a stroke.
func (s *Session) PenDown() bool {
	_, ok := s.acc.Last()
	return ok
}

// Close releases the drawing surface.
func (s *Session) Close() error {
	return s.acc.Close()
}
