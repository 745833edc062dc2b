package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ayusman/mirrorpaint/internal/store"
)

type commandKind int

const (
	cmdClear commandKind = iota
	cmdExport
	cmdResize
)

func (k commandKind) String() string {
	switch k {
	case cmdClear:
		return "clear"
	case cmdExport:
		return "export"
	case cmdResize:
		return "resize"
	default:
		return "unknown"
	}
}

// Export sources recorded with each snapshot.
const (
	SourceKey  = "key"
	SourceAPI  = "api"
	SourceTray = "tray"
)

// command is a request for the frame loop. reply is nil for fire-and-forget
// commands such as preview window keys.
type command struct {
	kind   commandKind
	width  int
	height int
	source string
	reply  chan result
}

type result struct {
	export store.Export
	err    error
}

// Clear erases the drawing at the next tick.
func (a *App) Clear(ctx context.Context) error {
	_, err := a.send(ctx, command{kind: cmdClear})
	return err
}

// Export saves the drawing at the next tick and returns its history record.
func (a *App) Export(ctx context.Context, source string) (store.Export, error) {
	r, err := a.send(ctx, command{kind: cmdExport, source: source})
	return r.export, err
}

// Resize changes the display size at the next tick. The drawing is kept,
// anchored at the top-left corner.
func (a *App) Resize(ctx context.Context, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid display size %dx%d", width, height)
	}
	_, err := a.send(ctx, command{kind: cmdResize, width: width, height: height})
	return err
}

func (a *App) send(ctx context.Context, c command) (result, error) {
	a.mu.Lock()
	done := a.done
	a.mu.Unlock()
	if done == nil {
		return result{}, ErrNotRunning
	}

	c.reply = make(chan result, 1)
	select {
	case a.cmds <- c:
	case <-done:
		return result{}, ErrNotRunning
	case <-ctx.Done():
		return result{}, ctx.Err()
	}

	select {
	case r := <-c.reply:
		return r, r.err
	case <-done:
		return result{}, ErrNotRunning
	case <-ctx.Done():
		return result{}, ctx.Err()
	}
}

// enqueue posts a command without waiting. It is dropped if the queue is full.
func (a *App) enqueue(c command) {
	select {
	case a.cmds <- c:
	default:
		a.logger.Warn("command queue full, dropping", "command", c.kind)
	}
}

// drainCommands runs every queued command. Only the frame loop calls it.
func (a *App) drainCommands(now time.Time) {
	for {
		select {
		case c := <-a.cmds:
			r := a.execute(c, now)
			if c.reply != nil {
				c.reply <- r
			}
		default:
			return
		}
	}
}

func (a *App) execute(c command, now time.Time) result {
	switch c.kind {
	case cmdClear:
		a.session.Clear()
		a.logger.Info("canvas cleared")
		return result{}

	case cmdExport:
		exp, err := a.export(now, c.source)
		if err != nil {
			a.logger.Error("export drawing", "error", err)
		}
		return result{export: exp, err: err}

	case cmdResize:
		// the renderer keeps no pixels, so it goes first and is put back if
		// the surface cannot follow
		oldW, oldH := a.renderer.Size()
		if err := a.renderer.Resize(c.width, c.height); err != nil {
			return result{err: fmt.Errorf("resize preview: %w", err)}
		}
		if err := a.session.Resize(c.width, c.height); err != nil {
			if rerr := a.renderer.Resize(oldW, oldH); rerr != nil {
				a.logger.Error("restore preview size", "error", rerr)
			}
			return result{err: err}
		}
		a.logger.Info("display resized", "width", c.width, "height", c.height)
		return result{}
	}
	return result{err: fmt.Errorf("unknown command %d", c.kind)}
}

func (a *App) export(now time.Time, source string) (store.Export, error) {
	exp, err := a.session.Export(now, a.cfg.Export)
	if err != nil {
		return store.Export{}, fmt.Errorf("write snapshot: %w", err)
	}

	rec := store.Export{
		Name:    exp.Name,
		PNGPath: exp.PNGPath,
		PDFPath: exp.PDFPath,
		Width:   exp.Width,
		Height:  exp.Height,
		Source:  source,
		Created: now,
	}
	if a.cfg.Store != nil {
		if err := a.cfg.Store.Exports().Create(&rec); err != nil {
			a.logger.Warn("record export", "error", err)
		}
	}
	if a.cfg.Metrics != nil {
		a.cfg.Metrics.Exports.WithLabelValues(source).Inc()
	}
	a.logger.Info("drawing exported", "name", rec.Name, "path", rec.PNGPath, "source", source)

	a.mu.Lock()
	hooks := a.onExport
	a.mu.Unlock()
	for _, hook := range hooks {
		hook(rec)
	}
	return rec, nil
}
