package server

import (
	"fmt"
	"net/http"

	"github.com/ayusman/mirrorpaint/internal/app"
)

// StreamHandler serves the composed preview frames as MJPEG.
type StreamHandler struct {
	hub *app.Hub
}

// NewStreamHandler creates a new StreamHandler fed by hub.
func NewStreamHandler(hub *app.Hub) *StreamHandler {
	return &StreamHandler{hub: hub}
}

// ServeHTTP streams one part per published frame until the client leaves.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	frames, unsubscribe := h.hub.Subscribe()
	defer unsubscribe()

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, _ := w.(http.Flusher)

	for {
		select {
		case <-r.Context().Done():
			return
		case snap := <-frames:
			if len(snap.JPEG) == 0 {
				continue
			}
			if err := writePart(w, snap.JPEG); err != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

func writePart(w http.ResponseWriter, jpeg []byte) error {
	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(jpeg)); err != nil {
		return err
	}
	if _, err := w.Write(jpeg); err != nil {
		return err
	}
	_, err := fmt.Fprint(w, "\r\n")
	return err
}
