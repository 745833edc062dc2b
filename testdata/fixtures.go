// Package testdata builds synthetic camera frames for tests that need real
// GoCV Mats without a camera.
package testdata

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// BlankFrame returns a black BGR frame. The caller closes it.
func BlankFrame(width, height int) *gocv.Mat {
	mat := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
	return &mat
}

// SquareFrame returns a black frame with a filled white square of side size
// whose top-left corner is at (x, y).
func SquareFrame(width, height, x, y, size int) *gocv.Mat {
	mat := BlankFrame(width, height)
	gocv.Rectangle(mat, image.Rect(x, y, x+size, y+size), color.RGBA{255, 255, 255, 0}, -1)
	return mat
}

// MovingSquare returns n frames with a square sliding left to right, so
// every consecutive pair differs.
func MovingSquare(width, height, n int) []*gocv.Mat {
	size := height / 4
	step := 1
	if n > 1 {
		step = max((width-size)/(n-1), 1)
	}

	frames := make([]*gocv.Mat, 0, n)
	for i := 0; i < n; i++ {
		frames = append(frames, SquareFrame(width, height, i*step, (height-size)/2, size))
	}
	return frames
}

// CloseAll closes every frame.
func CloseAll(frames []*gocv.Mat) {
	for _, f := range frames {
		f.Close()
	}
}
