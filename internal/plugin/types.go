// Package plugin runs external hook programs when a drawing is saved.
//
// A plugin is a directory holding a plugin.json manifest and an executable.
// For every event it subscribes to, the executable receives one Request as
// JSON on stdin and answers with one Response on stdout.
package plugin

import (
	"encoding/json"
	"slices"

	"github.com/ayusman/mirrorpaint/internal/store"
)

// Events a plugin can subscribe to.
const (
	EventExport = "export"
)

// Manifest describes a plugin's metadata and the events it handles.
type Manifest struct {
	Name        string          `json:"name"`
	Version     string          `json:"version"`
	Description string          `json:"description"`
	Executable  string          `json:"executable"`
	Events      []string        `json:"events"`
	Config      json.RawMessage `json:"config,omitempty"`
}

// Request is sent to a plugin for one event.
type Request struct {
	Event  string          `json:"event"`
	Export *store.Export   `json:"export,omitempty"`
	Config json.RawMessage `json:"config,omitempty"`
}

// Response represents the response from a plugin execution.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin represents a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Handles reports whether the plugin subscribes to event.
func (p *Plugin) Handles(event string) bool {
	return slices.Contains(p.Manifest.Events, event)
}
