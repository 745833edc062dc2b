package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/mirrorpaint/internal/app"
	"github.com/ayusman/mirrorpaint/internal/canvas"
	"github.com/ayusman/mirrorpaint/internal/store"
)

// Canvas is the part of the running app the canvas endpoints drive.
type Canvas interface {
	Clear(ctx context.Context) error
	Export(ctx context.Context, source string) (store.Export, error)
	Resize(ctx context.Context, width, height int) error
	SetEnabled(enabled bool)
	IsEnabled() bool
}

// CanvasHandler handles commands against the drawing surface.
type CanvasHandler struct {
	canvas Canvas
}

// NewCanvasHandler creates a new CanvasHandler for c.
func NewCanvasHandler(c Canvas) *CanvasHandler {
	return &CanvasHandler{canvas: c}
}

// ServeHTTP routes /api/canvas/{clear,export,resize,detection}.
func (h *CanvasHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	action := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/canvas"), "/")

	switch action {
	case "clear":
		if !allow(w, r, http.MethodPost) {
			return
		}
		h.clear(w, r)
	case "export":
		if !allow(w, r, http.MethodPost) {
			return
		}
		h.export(w, r)
	case "resize":
		if !allow(w, r, http.MethodPost) {
			return
		}
		h.resize(w, r)
	case "detection":
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, detectionResponse{Enabled: h.canvas.IsEnabled()})
		case http.MethodPut:
			h.setDetection(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	default:
		writeError(w, http.StatusNotFound, "Unknown canvas action")
	}
}

func allow(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

type resizeRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type detectionResponse struct {
	Enabled bool `json:"enabled"`
}

type detectionRequest struct {
	Enabled *bool `json:"enabled"`
}

// clear handles POST /api/canvas/clear.
func (h *CanvasHandler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.canvas.Clear(r.Context()); err != nil {
		writeCommandError(w, err, "Failed to clear canvas")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// export handles POST /api/canvas/export and returns the new history record.
func (h *CanvasHandler) export(w http.ResponseWriter, r *http.Request) {
	exp, err := h.canvas.Export(r.Context(), app.SourceAPI)
	if err != nil {
		writeCommandError(w, err, "Failed to export drawing")
		return
	}
	writeJSON(w, http.StatusCreated, toExportResponse(&exp))
}

// resize handles POST /api/canvas/resize.
func (h *CanvasHandler) resize(w http.ResponseWriter, r *http.Request) {
	var req resizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Width <= 0 || req.Height <= 0 {
		writeError(w, http.StatusBadRequest, "Width and height must be positive")
		return
	}

	if err := h.canvas.Resize(r.Context(), req.Width, req.Height); err != nil {
		writeCommandError(w, err, "Failed to resize canvas")
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// setDetection handles PUT /api/canvas/detection.
func (h *CanvasHandler) setDetection(w http.ResponseWriter, r *http.Request) {
	var req detectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Enabled == nil {
		writeError(w, http.StatusBadRequest, "Enabled is required")
		return
	}

	h.canvas.SetEnabled(*req.Enabled)
	writeJSON(w, http.StatusOK, detectionResponse{Enabled: h.canvas.IsEnabled()})
}

// writeCommandError maps frame loop errors to status codes.
func writeCommandError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, app.ErrNotRunning):
		writeError(w, http.StatusServiceUnavailable, "Drawing session is not running")
	case errors.Is(err, canvas.ErrInvalidSize):
		writeError(w, http.StatusBadRequest, "Invalid canvas size")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "Request cancelled")
	default:
		writeError(w, http.StatusInternalServerError, message)
	}
}
