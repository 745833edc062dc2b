package app

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"runtime"
	"time"

	"gocv.io/x/gocv"
)

// WindowTitle names the preview window.
const WindowTitle = "mirrorpaint"

func (a *App) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	var win *previewWindow
	if a.cfg.Window {
		// HighGUI calls must stay on one OS thread.
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		win = newPreviewWindow(WindowTitle)
		defer win.Close()
	}

	ticker := time.NewTicker(time.Second / time.Duration(a.cfg.FPS))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			img := a.tick(now)
			if win == nil || img == nil {
				continue
			}
			if quit := a.showPreview(win, img); quit {
				a.quit()
			}
		}
	}
}

// tick runs one frame: queued commands first, then the session step with the
// freshest hands, then render and publish. It returns the composed frame.
func (a *App) tick(now time.Time) image.Image {
	a.drainCommands(now)

	hands, _ := a.source.Latest()
	frame, err := a.session.Step(hands)
	if err != nil {
		a.logger.Error("step frame", "seq", frame.Seq, "error", err)
	}
	if a.cfg.Metrics != nil {
		a.cfg.Metrics.Observe(frame)
	}
	if frame.Control != nil && frame.Control.Toggled {
		a.logger.Debug("brush shape changed", "shape", frame.Brush.Shape)
	}

	img, err := a.renderer.Render(frame, a.session.Layout(), a.session.Surface())
	if err != nil {
		a.logger.Error("render frame", "seq", frame.Seq, "error", err)
		return nil
	}

	state := frame.State()
	state.Enabled = a.IsEnabled()

	// the encode is only paid for while someone is watching
	var jpeg []byte
	if a.hub.Subscribers() > 0 {
		if jpeg, err = encodeJPEG(img); err != nil {
			a.logger.Warn("encode preview", "error", err)
		}
	}
	a.hub.Publish(Snapshot{JPEG: jpeg, State: state})
	return img
}

func (a *App) showPreview(win *previewWindow, img image.Image) bool {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		a.logger.Warn("convert preview", "error", err)
		return false
	}
	defer mat.Close()

	c, quit := keyCommand(win.Show(mat))
	if c != nil {
		a.enqueue(*c)
	}
	return quit || !win.IsOpen()
}

func (a *App) quit() {
	a.mu.Lock()
	fn := a.onQuit
	cancel := a.cancel
	a.mu.Unlock()

	if fn != nil {
		fn()
		return
	}
	if cancel != nil {
		cancel()
	}
}

// keyCommand maps a preview window key to a command. R clears, S saves,
// Q or Esc quits.
func keyCommand(key int) (*command, bool) {
	switch key {
	case 'r', 'R':
		return &command{kind: cmdClear}, false
	case 's', 'S':
		return &command{kind: cmdExport, source: SourceKey}, false
	case 'q', 'Q', 27:
		return nil, true
	default:
		return nil, false
	}
}

func encodeJPEG(img image.Image) ([]byte, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("convert frame: %w", err)
	}
	defer mat.Close()

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, mat)
	if err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	defer buf.Close()
	return bytes.Clone(buf.GetBytes()), nil
}

// previewWindow is the local HighGUI preview.
type previewWindow struct {
	win *gocv.Window
}

func newPreviewWindow(title string) *previewWindow {
	return &previewWindow{win: gocv.NewWindow(title)}
}

// Show draws mat and polls the keyboard for one millisecond.
func (p *previewWindow) Show(mat gocv.Mat) int {
	p.win.IMShow(mat)
	return p.win.WaitKey(1)
}

func (p *previewWindow) IsOpen() bool {
	return p.win.IsOpen()
}

func (p *previewWindow) Close() error {
	return p.win.Close()
}
