// Package canvas holds the persistent drawing surface and the pen state that
// turns per-frame paint points into strokes.
package canvas

import (
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/gogpu/gg"

	"github.com/ayusman/mirrorpaint/internal/gesture"
	"github.com/ayusman/mirrorpaint/internal/mapping"
)

// PaintAlpha is the opacity (0-255) of everything laid down on the surface.
const PaintAlpha = 100

// ErrInvalidSize is returned for surfaces with a non-positive dimension.
var ErrInvalidSize = errors.New("invalid surface size")

// Surface is a transparent raster that only grows by accumulation.
type Surface struct {
	dc *gg.Context
}

// NewSurface allocates a transparent surface.
func NewSurface(width, height int) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	return &Surface{dc: gg.NewContext(width, height)}, nil
}

// Width returns the surface width in pixels.
func (s *Surface) Width() int { return s.dc.Width() }

// Height returns the surface height in pixels.
func (s *Surface) Height() int { return s.dc.Height() }

// Stamp fills the brush shape centered on p.
func (s *Surface) Stamp(p mapping.Point, b gesture.Brush) error {
	c := b.Color.RGBA(PaintAlpha)
	s.dc.SetRGBA(c.R, c.G, c.B, c.A)
	addShape(s.dc, p, b)
	if err := s.dc.Fill(); err != nil {
		return fmt.Errorf("stamp %s: %w", b.Shape, err)
	}
	return nil
}

// Segment strokes a round-capped line of the brush's size and color.
func (s *Surface) Segment(from, to mapping.Point, b gesture.Brush) error {
	c := b.Color.RGBA(PaintAlpha)
	s.dc.SetRGBA(c.R, c.G, c.B, c.A)
	s.dc.SetLineWidth(b.Size)
	s.dc.SetLineCap(gg.LineCapRound)
	s.dc.DrawLine(from.X, from.Y, to.X, to.Y)
	if err := s.dc.Stroke(); err != nil {
		return fmt.Errorf("stroke segment: %w", err)
	}
	return nil
}

// Clear erases the whole surface to transparent.
func (s *Surface) Clear() {
	s.dc.Clear()
}

// Resize reallocates the surface and copies the old pixels onto it at the
// origin. Pixels outside the new bounds are dropped; new area is transparent.
func (s *Surface) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	oldW, oldH := s.Width(), s.Height()
	if oldW == width && oldH == height {
		return nil
	}

	next := gg.NewContext(width, height)
	src := s.dc.ResizeTarget().Data()
	dst := next.ResizeTarget().Data()

	rowBytes := min(oldW, width) * 4
	for y := 0; y < min(oldH, height); y++ {
		copy(dst[y*width*4:y*width*4+rowBytes], src[y*oldW*4:y*oldW*4+rowBytes])
	}

	if err := s.dc.Close(); err != nil {
		return fmt.Errorf("close old surface: %w", err)
	}
	s.dc = next
	return nil
}

// Pixel returns the color at (x, y); out of bounds reads are transparent.
func (s *Surface) Pixel(x, y int) gg.RGBA {
	return s.dc.ResizeTarget().GetPixel(x, y)
}

// Image returns a copy of the surface contents.
func (s *Surface) Image() image.Image {
	return s.dc.Image()
}

// Empty reports whether every pixel is fully transparent.
func (s *Surface) Empty() bool {
	data := s.dc.ResizeTarget().Data()
	for i := 3; i < len(data); i += 4 {
		if data[i] != 0 {
			return false
		}
	}
	return true
}

// EncodePNG writes the surface as PNG.
func (s *Surface) EncodePNG(w io.Writer) error {
	return s.dc.EncodePNG(w)
}

// SavePNG writes the surface to a PNG file.
func (s *Surface) SavePNG(path string) error {
	return s.dc.SavePNG(path)
}

// Close releases the drawing context.
func (s *Surface) Close() error {
	return s.dc.Close()
}

// addShape appends the brush outline centered on p to the current path.
func addShape(dc *gg.Context, p mapping.Point, b gesture.Brush) {
	half := b.Size / 2
	if b.Shape == gesture.ShapeSquare {
		dc.DrawRectangle(p.X-half, p.Y-half, b.Size, b.Size)
		return
	}
	dc.DrawCircle(p.X, p.Y, half)
}
