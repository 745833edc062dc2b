package plugin

import (
	"context"
	"log/slog"
	"sync"
)

// Dispatcher runs the plugins subscribed to an event in the background so
// the caller never waits on them.
type Dispatcher struct {
	manager  *Manager
	executor *Executor
	logger   *slog.Logger
	wg       sync.WaitGroup
}

// NewDispatcher creates a Dispatcher over the plugins found by m.
func NewDispatcher(m *Manager, e *Executor, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{manager: m, executor: e, logger: logger}
}

// Dispatch starts every subscriber of req.Event and returns at once. It
// reports how many plugins were started.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) int {
	plugins := d.manager.Subscribers(req.Event)
	for _, p := range plugins {
		// each run gets its own copy; Execute fills in the config
		r := req
		d.wg.Add(1)
		go func(p *Plugin) {
			defer d.wg.Done()
			d.run(ctx, p, &r)
		}(p)
	}
	return len(plugins)
}

func (d *Dispatcher) run(ctx context.Context, p *Plugin, req *Request) {
	log := d.logger.With("plugin", p.Manifest.Name, "event", req.Event)

	resp, err := d.executor.Execute(ctx, p, req)
	if err != nil {
		log.Warn("plugin failed", "error", err)
		return
	}
	if !resp.Success {
		log.Warn("plugin reported failure", "error", resp.Error)
		return
	}
	log.Debug("plugin done")
}

// Wait blocks until every started plugin has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
