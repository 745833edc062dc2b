package render

import (
	"image"
	"testing"

	"github.com/ayusman/mirrorpaint/internal/detector"
	"github.com/ayusman/mirrorpaint/internal/gesture"
	"github.com/ayusman/mirrorpaint/internal/session"
)

type rgb struct{ r, g, b uint8 }

func at(img image.Image, x, y int) rgb {
	r, g, b, _ := img.At(x, y).RGBA()
	return rgb{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)}
}

func renderStep(t *testing.T, hands ...detector.HandLandmarks) image.Image {
	t.Helper()
	s, err := session.New(session.Config{DisplayWidth: 800, DisplayHeight: 600})
	if err != nil {
		t.Fatalf("session.New() error = %v", err)
	}
	defer s.Close()

	f, err := s.Step(hands)
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}

	r, err := New(800, 600)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer r.Close()

	img, err := r.Render(f, s.Layout(), s.Surface())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return img
}

func TestActiveJoints(t *testing.T) {
	tests := []struct {
		role  gesture.Role
		joint int
		want  bool
	}{
		{gesture.RoleControl, detector.Wrist, true},
		{gesture.RoleControl, detector.MiddleTip, true},
		{gesture.RoleControl, detector.RingMCP, false},
		{gesture.RoleDraw, detector.IndexTip, true},
		{gesture.RoleDraw, detector.MiddleMCP, false},
		{gesture.RoleNone, detector.Wrist, false},
	}

	for _, tt := range tests {
		if got := ActiveJoints(tt.role, tt.joint); got != tt.want {
			t.Errorf("ActiveJoints(%q, %d) = %v, want %v", tt.role, tt.joint, got, tt.want)
		}
	}
}

func TestRender_Chrome(t *testing.T) {
	img := renderStep(t)

	if b := img.Bounds(); b.Dx() != 800 || b.Dy() != 600 {
		t.Fatalf("bounds = %v, want 800x600", b)
	}

	// Layout for 800 wide: camera box x 240..560, y 40..280; bar x 215..240.
	tests := []struct {
		name string
		x, y int
		want rgb
	}{
		{name: "page", x: 10, y: 590, want: rgb{255, 255, 255}},
		{name: "camera box", x: 400, y: 160, want: rgb{0, 0, 0}},
		{name: "title bar", x: 400, y: 30, want: rgb{200, 255, 0}},
		{name: "bar top is red", x: 227, y: 40, want: rgb{255, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := at(img, tt.x, tt.y); got != tt.want {
				t.Errorf("pixel (%d,%d) = %+v, want %+v", tt.x, tt.y, got, tt.want)
			}
		})
	}

	// halfway down the bar the hue is 180
	mid := at(img, 227, 160)
	if mid.r > 10 || mid.g < 245 || mid.b < 245 {
		t.Errorf("bar middle = %+v, want cyan", mid)
	}
}

func TestRender_DrawHandCursor(t *testing.T) {
	t.Run("painting shows layer and brush cursor", func(t *testing.T) {
		img := renderStep(t, detector.PinchHand(detector.HandRight, detector.Point3D{X: 120, Y: 120}, 30, 100))

		// stamp and cursor both sit at canvas (400, 300)
		got := at(img, 400, 300)
		if got.r != 255 || got.g > 200 || got.b > 200 {
			t.Errorf("cursor pixel = %+v, want translucent red over white", got)
		}
	})

	t.Run("paused cursor is still visible", func(t *testing.T) {
		img := renderStep(t, detector.PinchHand(detector.HandRight, detector.Point3D{X: 120, Y: 120}, 10, 100))

		got := at(img, 400, 300)
		if got == (rgb{255, 255, 255}) {
			t.Error("paused cursor should be drawn")
		}
	})

	t.Run("fingertip marker in camera box", func(t *testing.T) {
		img := renderStep(t, detector.PinchHand(detector.HandRight, detector.Point3D{X: 120, Y: 120}, 30, 100))

		// mirrored tip lands at (240+320-120, 40+120)
		got := at(img, 440, 160)
		if got == (rgb{0, 0, 0}) {
			t.Error("fingertip marker missing")
		}
	})
}

func TestRender_SkeletonClippedToCameraBox(t *testing.T) {
	// The wrist sits 50px below the bottom of the frame, so the thumb and
	// index bones run straight down through the box edge at screen x=400.
	hand := detector.PinchHand(detector.HandRight, detector.Point3D{X: 160, Y: 200}, 10, 10)
	img := renderStep(t, hand)

	inside := at(img, 400, 265)
	if inside.g < 200 || inside.b > 60 {
		t.Errorf("bone inside the box = %+v, want lime", inside)
	}
	if got := at(img, 400, 300); got != (rgb{255, 255, 255}) {
		t.Errorf("pixel below the camera box = %+v, want page white", got)
	}
}

// inked counts the pixels in rect that are not camera-box black.
func inked(img image.Image, rect image.Rectangle) int {
	n := 0
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if at(img, x, y) != (rgb{0, 0, 0}) {
				n++
			}
		}
	}
	return n
}

func TestRender_GuideLabels(t *testing.T) {
	s, err := session.New(session.Config{DisplayWidth: 800, DisplayHeight: 600})
	if err != nil {
		t.Fatalf("session.New() error = %v", err)
	}
	defer s.Close()

	// Control index tip lands on screen (360, 100); draw thumb on (440, 190).
	f, err := s.Step([]detector.HandLandmarks{
		detector.PinchHand(detector.HandLeft, detector.Point3D{X: 200, Y: 60}, 40, 100),
		detector.PinchHand(detector.HandRight, detector.Point3D{X: 120, Y: 120}, 30, 100),
	})
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}

	render := func(withLabels bool) image.Image {
		r, err := New(800, 600)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		defer r.Close()
		if !withLabels {
			r.dc.SetFont(nil)
		}
		img, err := r.Render(f, s.Layout(), s.Surface())
		if err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		return img
	}
	labeled, bare := render(true), render(false)

	tests := []struct {
		name string
		rect image.Rectangle
	}{
		// right-aligned, ending 15px left of the index tip
		{name: "size", rect: image.Rect(310, 80, 350, 97)},
		// left-aligned, starting 15px right of the thumb
		{name: "draw", rect: image.Rect(452, 170, 510, 190)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if n := inked(bare, tt.rect); n != 0 {
				t.Fatalf("%d pixels drawn in %v without a font, want none", n, tt.rect)
			}
			if n := inked(labeled, tt.rect); n == 0 {
				t.Errorf("no label pixels in %v", tt.rect)
			}
		})
	}

	// the draw label takes the lime of the active state
	lime := 0
	for y := 170; y < 190; y++ {
		for x := 452; x < 510; x++ {
			if c := at(labeled, x, y); c.g > 128 && c.b < 64 && c.r > c.b {
				lime++
			}
		}
	}
	if lime == 0 {
		t.Error("draw label should be lime")
	}
}

func TestRenderer_Resize(t *testing.T) {
	r, err := New(100, 100)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer r.Close()

	if err := r.Resize(200, 50); err != nil {
		t.Fatalf("Resize() error = %v", err)
	}
	if r.dc.Font() == nil {
		t.Error("resized context lost the label font")
	}
	if w, h := r.Size(); w != 200 || h != 50 {
		t.Errorf("Size() = %dx%d, want 200x50", w, h)
	}
	if err := r.Resize(-1, 50); err == nil {
		t.Error("Resize(-1, 50) should fail")
	}
	if _, err := New(0, 0); err == nil {
		t.Error("New(0, 0) should fail")
	}
}
