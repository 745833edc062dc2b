// Package main provides an export hook that opens each saved drawing in the
// desktop's default viewer.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/ayusman/mirrorpaint/internal/plugin"
)

// Config is read from the manifest's config block.
type Config struct {
	// Prefer is "png" or "pdf". The PDF is used only when one was written.
	Prefer string `json:"prefer"`
}

func main() {
	var req plugin.Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	if req.Event != plugin.EventExport {
		writeErrorResponse(fmt.Sprintf("unknown event: %s", req.Event))
		return
	}

	path, err := pickFile(req)
	if err != nil {
		writeErrorResponse(err.Error())
		return
	}

	name, args := openCommand(runtime.GOOS, path)
	if out, err := exec.Command(name, args...).CombinedOutput(); err != nil {
		writeErrorResponse(fmt.Sprintf("%s failed: %v: %s", name, err, out))
		return
	}

	data, _ := json.Marshal(map[string]string{"opened": path})
	json.NewEncoder(os.Stdout).Encode(plugin.Response{Success: true, Data: data})
}

// pickFile returns the file to open for an export request.
func pickFile(req plugin.Request) (string, error) {
	if req.Export == nil || req.Export.PNGPath == "" {
		return "", errors.New("request has no exported file")
	}

	var cfg Config
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			return "", fmt.Errorf("failed to parse config: %w", err)
		}
	}

	path := req.Export.PNGPath
	if cfg.Prefer == "pdf" && req.Export.PDFPath != "" {
		path = req.Export.PDFPath
	}
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return path, nil
}

// openCommand returns the viewer launcher for goos.
func openCommand(goos, path string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{path}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", path}
	default:
		return "xdg-open", []string{path}
	}
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	json.NewEncoder(os.Stdout).Encode(plugin.Response{
		Success: false,
		Error:   errMsg,
	})
}
