// Package render composes the preview frame: the white page, the accumulated
// drawing, the hue bar, the mirrored camera box with hand skeletons, and the
// brush cursor.
package render

import (
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/ayusman/mirrorpaint/internal/canvas"
	"github.com/ayusman/mirrorpaint/internal/detector"
	"github.com/ayusman/mirrorpaint/internal/gesture"
	"github.com/ayusman/mirrorpaint/internal/mapping"
	"github.com/ayusman/mirrorpaint/internal/session"
)

// Overlay colors.
var (
	Lime      = rgb255(200, 255, 0)
	PauseRed  = rgb255(255, 100, 100)
	Skeleton  = gg.White
	CameraBg  = gg.Black
	PageColor = gg.White
)

const (
	// CursorAlpha is the cursor opacity while painting.
	CursorAlpha = 150
	// PausedCursorAlpha is the opacity of the red cursor while paused.
	PausedCursorAlpha = 100

	titleBarHeight = 20
	borderWidth    = 4
	boneWidth      = 2
	jointDiameter  = 6
	guideDot       = 10
	tipDot         = 15

	labelSize   = 12
	labelOffset = 15
	labelRise   = 5
)

var labelFont = sync.OnceValues(func() (*text.FontSource, error) {
	return text.NewFontSource(goregular.TTF)
})

// Bones lists the landmark chains drawn for every hand.
var Bones = [][]int{
	{detector.Wrist, detector.ThumbCMC, detector.ThumbMCP, detector.ThumbIP, detector.ThumbTip},
	{detector.Wrist, detector.IndexMCP, detector.IndexPIP, detector.IndexDIP, detector.IndexTip},
	{detector.Wrist, detector.MiddleMCP, detector.MiddlePIP, detector.MiddleDIP, detector.MiddleTip},
	{detector.Wrist, detector.RingMCP, detector.RingPIP, detector.RingDIP, detector.RingTip},
	{detector.Wrist, detector.PinkyMCP, detector.PinkyPIP, detector.PinkyDIP, detector.PinkyTip},
	{detector.IndexMCP, detector.MiddleMCP, detector.RingMCP, detector.PinkyMCP},
}

// ActiveJoints reports whether landmark i is highlighted for a hand of the
// given role: wrist through middle finger for control, wrist through index
// for draw, nothing otherwise.
func ActiveJoints(role gesture.Role, i int) bool {
	switch role {
	case gesture.RoleControl:
		return i <= detector.MiddleTip
	case gesture.RoleDraw:
		return i <= detector.IndexTip
	default:
		return false
	}
}

// Renderer owns the display-sized context frames are composed on.
// Like the session, it belongs to the frame loop.
type Renderer struct {
	dc   *gg.Context
	face text.Face
}

// New creates a renderer for a display of the given size.
func New(width, height int) (*Renderer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", canvas.ErrInvalidSize, width, height)
	}
	source, err := labelFont()
	if err != nil {
		return nil, fmt.Errorf("load label font: %w", err)
	}
	r := &Renderer{dc: gg.NewContext(width, height), face: source.Face(labelSize)}
	r.dc.SetFont(r.face)
	return r, nil
}

// Size returns the current output size.
func (r *Renderer) Size() (int, int) {
	return r.dc.Width(), r.dc.Height()
}

// Resize replaces the output context. Nothing carries over; every frame is
// drawn from scratch.
func (r *Renderer) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", canvas.ErrInvalidSize, width, height)
	}
	if width == r.dc.Width() && height == r.dc.Height() {
		return nil
	}
	old := r.dc
	r.dc = gg.NewContext(width, height)
	r.dc.SetFont(r.face)
	return old.Close()
}

// Render draws one frame and returns a copy of the result.
func (r *Renderer) Render(f session.Frame, l mapping.Layout, layer *canvas.Surface) (image.Image, error) {
	dc := r.dc
	dc.ResetClip()
	dc.ClearWithColor(PageColor)

	if layer != nil {
		dc.DrawImageEx(gg.ImageBufFromImage(layer.Image()), gg.DrawImageOptions{
			Interpolation: gg.InterpNearest,
			Opacity:       1,
			BlendMode:     gg.BlendNormal,
		})
	}

	if err := r.chrome(l); err != nil {
		return nil, err
	}
	if err := r.hands(f, l); err != nil {
		return nil, err
	}
	if err := r.cursor(f, l); err != nil {
		return nil, err
	}

	return dc.Image(), nil
}

// Close releases the output context.
func (r *Renderer) Close() error {
	return r.dc.Close()
}

// chrome draws the hue bar, the lime frame with its title bar, and the black
// camera box.
func (r *Renderer) chrome(l mapping.Layout) error {
	dc := r.dc

	for y := 0; y < int(l.CameraHeight); y++ {
		setColor(dc, gesture.HueColor(l.HueAt(float64(y))).RGBA(255))
		dc.DrawRectangle(l.ColorBarX, l.CameraY+float64(y), mapping.ColorBarWidth, 1)
		if err := dc.Fill(); err != nil {
			return fmt.Errorf("fill color bar: %w", err)
		}
	}

	setColor(dc, Lime)
	dc.SetLineWidth(borderWidth)
	dc.DrawRectangle(l.ColorBarX-2, l.CameraY-titleBarHeight-2,
		mapping.ColorBarWidth+l.CameraWidth+4, l.CameraHeight+titleBarHeight+4)
	if err := dc.Stroke(); err != nil {
		return fmt.Errorf("stroke border: %w", err)
	}
	dc.DrawRectangle(l.ColorBarX, l.CameraY-titleBarHeight, mapping.ColorBarWidth+l.CameraWidth, titleBarHeight)
	if err := dc.Fill(); err != nil {
		return fmt.Errorf("fill title bar: %w", err)
	}

	setColor(dc, CameraBg)
	dc.DrawRectangle(l.CameraX, l.CameraY, l.CameraWidth, l.CameraHeight)
	if err := dc.Fill(); err != nil {
		return fmt.Errorf("fill camera box: %w", err)
	}
	return nil
}

// hands draws every skeleton clipped to the camera box, then the role
// guides on top.
func (r *Renderer) hands(f session.Frame, l mapping.Layout) error {
	dc := r.dc

	dc.Push()
	dc.ClipRect(l.CameraX, l.CameraY, l.CameraWidth, l.CameraHeight)
	for i := range f.Hands {
		if err := r.skeleton(&f.Hands[i], l); err != nil {
			dc.Pop()
			return err
		}
	}
	dc.Pop()
	dc.ResetClip()

	for i := range f.Hands {
		h := &f.Hands[i]
		var err error
		switch h.Role {
		case gesture.RoleControl:
			err = r.controlGuides(&h.Landmarks, f, l)
		case gesture.RoleDraw:
			err = r.drawGuides(&h.Landmarks, f, l)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) skeleton(h *session.Hand, l mapping.Layout) error {
	dc := r.dc
	pts := &h.Landmarks.Points

	dc.SetLineWidth(boneWidth)
	for _, chain := range Bones {
		for k := 0; k+1 < len(chain); k++ {
			a, b := chain[k], chain[k+1]
			if ActiveJoints(h.Role, a) && ActiveJoints(h.Role, b) {
				setColor(dc, Lime)
			} else {
				setColor(dc, Skeleton)
			}
			pa, pb := l.Mirror(pts[a].X, pts[a].Y), l.Mirror(pts[b].X, pts[b].Y)
			dc.DrawLine(pa.X, pa.Y, pb.X, pb.Y)
			if err := dc.Stroke(); err != nil {
				return fmt.Errorf("stroke bone: %w", err)
			}
		}
	}

	for j := range pts {
		if ActiveJoints(h.Role, j) {
			setColor(dc, Lime)
		} else {
			setColor(dc, Skeleton)
		}
		if err := dot(dc, l.Mirror(pts[j].X, pts[j].Y), jointDiameter); err != nil {
			return err
		}
	}
	return nil
}

// controlGuides connects the thumb to the index (size) and middle (shape) tips
// and names both, right-aligned beside each tip.
func (r *Renderer) controlGuides(h *detector.HandLandmarks, f session.Frame, l mapping.Layout) error {
	dc := r.dc
	thumb := l.Mirror(h.Points[detector.ThumbTip].X, h.Points[detector.ThumbTip].Y)
	index := l.Mirror(h.Points[detector.IndexTip].X, h.Points[detector.IndexTip].Y)
	middle := l.Mirror(h.Points[detector.MiddleTip].X, h.Points[detector.MiddleTip].Y)

	setColor(dc, Lime)
	dc.SetLineWidth(boneWidth)
	for _, p := range []mapping.Point{index, middle} {
		dc.DrawLine(thumb.X, thumb.Y, p.X, p.Y)
		if err := dc.Stroke(); err != nil {
			return fmt.Errorf("stroke guide: %w", err)
		}
	}
	for _, p := range []mapping.Point{thumb, index, middle} {
		if err := dot(dc, p, guideDot); err != nil {
			return err
		}
	}
	r.label("size", index, 1)
	r.label(string(f.Brush.Shape), middle, 1)
	return nil
}

// drawGuides shows the pinch line and its draw/pause label, lime while
// painting and red while paused, and the index fingertip in the current
// brush color.
func (r *Renderer) drawGuides(h *detector.HandLandmarks, f session.Frame, l mapping.Layout) error {
	dc := r.dc
	thumb := l.Mirror(h.Points[detector.ThumbTip].X, h.Points[detector.ThumbTip].Y)
	tip := l.Mirror(h.Points[detector.IndexTip].X, h.Points[detector.IndexTip].Y)

	state, word := PauseRed, "pause"
	if f.Draw != nil && f.Draw.Drawing {
		state, word = Lime, "draw"
	}
	setColor(dc, state)
	dc.SetLineWidth(boneWidth)
	dc.DrawLine(thumb.X, thumb.Y, tip.X, tip.Y)
	if err := dc.Stroke(); err != nil {
		return fmt.Errorf("stroke pinch: %w", err)
	}
	if err := dot(dc, thumb, guideDot); err != nil {
		return err
	}
	r.label(word, thumb, 0)

	setColor(dc, f.Brush.Color.RGBA(255))
	dc.DrawCircle(tip.X, tip.Y, tipDot/2)
	if err := dc.FillPreserve(); err != nil {
		return fmt.Errorf("fill fingertip: %w", err)
	}
	setColor(dc, gg.White)
	if err := dc.Stroke(); err != nil {
		return fmt.Errorf("stroke fingertip: %w", err)
	}
	return nil
}

// cursor previews the brush at the paint target. It is shown while paused
// too, in translucent red.
func (r *Renderer) cursor(f session.Frame, l mapping.Layout) error {
	if f.Target == nil || f.Target.Region != mapping.RegionPaint {
		return nil
	}
	dc := r.dc

	if f.Draw != nil && f.Draw.Drawing {
		setColor(dc, f.Brush.Color.RGBA(CursorAlpha))
	} else {
		setColor(dc, gesture.HueColor(0).RGBA(PausedCursorAlpha))
	}

	p := f.Target.Canvas
	half := f.Brush.Size / 2
	if f.Brush.Shape == gesture.ShapeSquare {
		dc.DrawRectangle(p.X-half, p.Y-half, f.Brush.Size, f.Brush.Size)
	} else {
		dc.DrawCircle(p.X, p.Y, half)
	}
	if err := dc.Fill(); err != nil {
		return fmt.Errorf("fill cursor: %w", err)
	}
	return nil
}

// label writes s in the current color with its baseline just above p.
// align 0 starts the text to the right of p, align 1 ends it to the left.
func (r *Renderer) label(s string, p mapping.Point, align float64) {
	w, _ := text.Measure(s, r.face)
	x := p.X + labelOffset - align*(2*labelOffset+w)
	r.dc.DrawString(s, x, p.Y-labelRise)
}

func dot(dc *gg.Context, p mapping.Point, diameter float64) error {
	dc.DrawCircle(p.X, p.Y, diameter/2)
	if err := dc.Fill(); err != nil {
		return fmt.Errorf("fill joint: %w", err)
	}
	return nil
}

func setColor(dc *gg.Context, c gg.RGBA) {
	dc.SetRGBA(c.R, c.G, c.B, c.A)
}

func rgb255(r, g, b float64) gg.RGBA {
	return gg.RGB(r/255, g/255, b/255)
}
