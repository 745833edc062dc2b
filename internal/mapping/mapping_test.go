package mapping

import (
	"image"
	"math"
	"testing"
)

const epsilon = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < epsilon }

func TestNewLayout(t *testing.T) {
	l := NewLayout(1280, 720)

	if l.CameraX != 480 {
		t.Errorf("CameraX = %f, want 480", l.CameraX)
	}
	if l.CameraY != CameraBoxTop {
		t.Errorf("CameraY = %f, want %d", l.CameraY, CameraBoxTop)
	}
	if l.ColorBarX != 455 {
		t.Errorf("ColorBarX = %f, want 455", l.ColorBarX)
	}
}

func TestLayout_Resize(t *testing.T) {
	l := NewLayout(800, 600)
	l.Resize(1000, 700)

	if l.DisplayWidth != 1000 || l.DisplayHeight != 700 {
		t.Errorf("display = %fx%f, want 1000x700", l.DisplayWidth, l.DisplayHeight)
	}
	if l.CameraX != 340 {
		t.Errorf("CameraX = %f, want 340", l.CameraX)
	}
	if l.ColorBarX != 315 {
		t.Errorf("ColorBarX = %f, want 315", l.ColorBarX)
	}
}

func TestLayout_Mirror(t *testing.T) {
	l := NewLayout(1280, 720) // CameraX 480, CameraY 40

	tests := []struct {
		name string
		x, y float64
		want Point
	}{
		{name: "camera origin lands at the right edge of the box", x: 0, y: 0, want: Point{X: 800, Y: 40}},
		{name: "camera right edge lands at box left", x: 320, y: 240, want: Point{X: 480, Y: 280}},
		{name: "center", x: 160, y: 120, want: Point{X: 640, Y: 160}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := l.Mirror(tt.x, tt.y); !near(got.X, tt.want.X) || !near(got.Y, tt.want.Y) {
				t.Errorf("Mirror(%f, %f) = %+v, want %+v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestLayout_MapFingertip_PickerBoundary(t *testing.T) {
	l := NewLayout(1280, 720)
	boundary := l.CameraWidth * PickerFraction // flipped x of 80

	tests := []struct {
		name       string
		flippedX   float64
		wantRegion Region
	}{
		{name: "just below boundary is picker", flippedX: boundary - 0.001, wantRegion: RegionPicker},
		{name: "exactly on boundary is paint", flippedX: boundary, wantRegion: RegionPaint},
		{name: "just above boundary is paint", flippedX: boundary + 0.001, wantRegion: RegionPaint},
		{name: "far left is picker", flippedX: 0, wantRegion: RegionPicker},
		{name: "far right is paint", flippedX: 320, wantRegion: RegionPaint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := l.MapFingertip(l.CameraWidth-tt.flippedX, 120)
			if got.Region != tt.wantRegion {
				t.Errorf("region = %s, want %s", got.Region, tt.wantRegion)
			}
		})
	}
}

func TestLayout_MapFingertip_Hue(t *testing.T) {
	l := NewLayout(1280, 720)

	tests := []struct {
		y    float64
		want float64
	}{
		{y: 0, want: 0},
		{y: 120, want: 180},
		{y: 240, want: 360},
		{y: 300, want: 360},
		{y: -10, want: 0},
	}

	for _, tt := range tests {
		got := l.MapFingertip(310, tt.y) // flipped x = 10
		if got.Region != RegionPicker {
			t.Fatalf("expected picker region for y=%f", tt.y)
		}
		if !near(got.Hue, tt.want) {
			t.Errorf("hue at y=%f = %f, want %f", tt.y, got.Hue, tt.want)
		}
	}
}

func TestLayout_MapFingertip_Canvas(t *testing.T) {
	l := NewLayout(1200, 600)

	tests := []struct {
		name string
		x, y float64
		want Point
	}{
		{name: "paint region top-left", x: 240, y: 24, want: Point{X: 0, Y: 0}},
		{name: "paint region bottom-right", x: 0, y: 216, want: Point{X: 1200, Y: 600}},
		{name: "middle", x: 120, y: 120, want: Point{X: 600, Y: 300}},
		{name: "top margin maps above the canvas", x: 120, y: 0, want: Point{X: 600, Y: -75}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := l.MapFingertip(tt.x, tt.y)
			if got.Region != RegionPaint {
				t.Fatalf("region = %s, want paint", got.Region)
			}
			if !near(got.Canvas.X, tt.want.X) || !near(got.Canvas.Y, tt.want.Y) {
				t.Errorf("canvas = %+v, want %+v", got.Canvas, tt.want)
			}
		})
	}
}

func TestLayout_Rectangles(t *testing.T) {
	l := NewLayout(1280, 720)

	if got, want := l.CameraBox(), image.Rect(480, 40, 800, 280); got != want {
		t.Errorf("CameraBox() = %v, want %v", got, want)
	}
	if got, want := l.ColorBar(), image.Rect(455, 40, 480, 280); got != want {
		t.Errorf("ColorBar() = %v, want %v", got, want)
	}
	if got := l.HueAt(60); !near(got, 90) {
		t.Errorf("HueAt(60) = %f, want 90", got)
	}
}

func TestRegion_String(t *testing.T) {
	if RegionPaint.String() != "paint" || RegionPicker.String() != "picker" {
		t.Error("unexpected region names")
	}
}
