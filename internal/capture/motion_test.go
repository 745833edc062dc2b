package capture

import (
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mirrorpaint/testdata"
)

func TestMotionDetector_Threshold(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	if md.initialized {
		t.Error("a new detector should have no baseline")
	}

	for _, th := range []float64{5.0, 0.5} {
		md.SetThreshold(th)
		if md.threshold != th {
			t.Errorf("SetThreshold(%v) left %v", th, md.threshold)
		}
	}
	for _, th := range []float64{0, -1.0} {
		md.SetThreshold(th)
		if md.threshold != 0.5 {
			t.Errorf("SetThreshold(%v) should be ignored, got %v", th, md.threshold)
		}
	}
}

func TestMotionDetector_Detect(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	tests := []struct {
		name      string
		threshold float64
		next      func() *gocv.Mat
		want      bool
	}{
		{
			name:      "same scene",
			threshold: 1.0,
			next:      func() *gocv.Mat { return testdata.BlankFrame(320, 240) },
			want:      false,
		},
		{
			name:      "hand-sized change",
			threshold: 1.0,
			next:      func() *gocv.Mat { return testdata.SquareFrame(320, 240, 100, 80, 60) },
			want:      true,
		},
		{
			name:      "change under a high threshold",
			threshold: 50.0,
			next:      func() *gocv.Mat { return testdata.SquareFrame(320, 240, 100, 80, 60) },
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := NewMotionDetector(tt.threshold)
			defer md.Close()

			base := testdata.BlankFrame(320, 240)
			defer base.Close()
			if detected, pct := md.Detect(base); detected || pct != 0 {
				t.Fatalf("baseline frame: detected=%v pct=%v", detected, pct)
			}

			next := tt.next()
			defer next.Close()
			if detected, pct := md.Detect(next); detected != tt.want {
				t.Errorf("Detect() = %v (%.2f%% changed), want %v", detected, pct, tt.want)
			}
		})
	}
}

func TestMotionDetector_ResetAndClose(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	frame := testdata.SquareFrame(320, 240, 10, 10, 40)
	defer frame.Close()

	md.Detect(frame)
	if !md.initialized {
		t.Fatal("detector should hold a baseline after Detect")
	}

	md.Reset()
	if md.initialized || !md.prevGray.Empty() {
		t.Error("Reset should drop the baseline")
	}

	md.Detect(frame)
	md.Close()
	md.Close()

	// after Close the next frame is a new baseline
	if detected, _ := md.Detect(frame); detected {
		t.Error("first frame after Close should not detect motion")
	}
	md.Close()
}

func TestMotionGate_Disabled(t *testing.T) {
	g := NewMotionGate(0, time.Second)
	defer g.Close()

	if !g.Allow(nil, time.Now()) {
		t.Error("a disabled gate should always allow")
	}
	if !g.Open() {
		t.Error("a disabled gate should report open")
	}
}

func TestMotionGate_HoldsAfterMotion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	g := NewMotionGate(1.0, 2*time.Second)
	defer g.Close()

	black := gocv.NewMatWithSize(240, 320, gocv.MatTypeCV8UC3)
	defer black.Close()
	white := gocv.NewMatWithSize(240, 320, gocv.MatTypeCV8UC3)
	defer white.Close()
	white.SetTo(gocv.NewScalar(255, 255, 255, 0))

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	steps := []struct {
		frame *gocv.Mat
		at    time.Duration
		want  bool
	}{
		{frame: &black, at: 0, want: false},                       // baseline
		{frame: &white, at: 100 * time.Millisecond, want: true},   // motion opens
		{frame: &white, at: time.Second, want: true},              // still, within hold
		{frame: &white, at: 2500 * time.Millisecond, want: false}, // hold expired
		{frame: &black, at: 3 * time.Second, want: true},          // motion again
	}

	for i, st := range steps {
		if got := g.Allow(st.frame, start.Add(st.at)); got != st.want {
			t.Errorf("step %d: Allow() = %v, want %v", i, got, st.want)
		}
	}
}

func TestMotionGate_MovingSquare(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	frames := testdata.MovingSquare(320, 240, 5)
	defer testdata.CloseAll(frames)

	g := NewMotionGate(0.5, 0)
	defer g.Close()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if g.Allow(frames[0], now) {
		t.Error("the first frame is only a baseline")
	}
	for i, f := range frames[1:] {
		now = now.Add(100 * time.Millisecond)
		if !g.Allow(f, now) {
			t.Errorf("frame %d: a moving square should pass the gate", i+1)
		}
	}

	still := testdata.SquareFrame(320, 240, 0, 0, 10)
	defer still.Close()
	g.Allow(still, now.Add(time.Second))
	if g.Allow(still, now.Add(2*time.Second)) {
		t.Error("a still scene should be gated once the hold expires")
	}
}
