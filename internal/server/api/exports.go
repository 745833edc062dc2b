package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ayusman/mirrorpaint/internal/store"
)

// ExportsHandler serves the export history.
type ExportsHandler struct {
	store *store.Store
}

// NewExportsHandler creates a new ExportsHandler with the given store.
func NewExportsHandler(s *store.Store) *ExportsHandler {
	return &ExportsHandler{store: s}
}

// ServeHTTP routes /api/exports, /api/exports/{id} and /api/exports/{id}/image.
func (h *ExportsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/exports")
	path = strings.Trim(path, "/")

	if path == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	if id, ok := strings.CutSuffix(path, "/image"); ok {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.image(w, r, id)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, path)
	case http.MethodDelete:
		h.delete(w, r, path)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type exportResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	PNGPath   string `json:"png_path"`
	PDFPath   string `json:"pdf_path,omitempty"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Source    string `json:"source"`
	CreatedAt string `json:"created_at"`
}

type listExportsResponse struct {
	Exports []exportResponse `json:"exports"`
}

// toExportResponse converts a store.Export to its JSON form.
func toExportResponse(e *store.Export) exportResponse {
	return exportResponse{
		ID:        e.ID,
		Name:      e.Name,
		PNGPath:   e.PNGPath,
		PDFPath:   e.PDFPath,
		Width:     e.Width,
		Height:    e.Height,
		Source:    e.Source,
		CreatedAt: e.Created.Format(time.RFC3339),
	}
}

// list handles GET /api/exports?limit=N, newest first.
func (h *ExportsHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	exports, err := h.store.Exports().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list exports")
		return
	}

	response := listExportsResponse{
		Exports: make([]exportResponse, 0, len(exports)),
	}
	for _, e := range exports {
		response.Exports = append(response.Exports, toExportResponse(e))
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *ExportsHandler) lookup(w http.ResponseWriter, id string) (*store.Export, bool) {
	e, err := h.store.Exports().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Export not found")
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, "Failed to get export")
		return nil, false
	}
	return e, true
}

// get handles GET /api/exports/{id}.
func (h *ExportsHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	if e, ok := h.lookup(w, id); ok {
		writeJSON(w, http.StatusOK, toExportResponse(e))
	}
}

// image handles GET /api/exports/{id}/image and serves the saved PNG.
func (h *ExportsHandler) image(w http.ResponseWriter, r *http.Request, id string) {
	e, ok := h.lookup(w, id)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "image/png")
	http.ServeFile(w, r, e.PNGPath)
}

// delete handles DELETE /api/exports/{id}. The files on disk are kept.
func (h *ExportsHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Exports().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Export not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete export")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
