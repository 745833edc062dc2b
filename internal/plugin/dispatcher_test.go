package plugin

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/ayusman/mirrorpaint/internal/logging"
)

func TestDispatcher_Dispatch(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	tmpDir := t.TempDir()
	out := filepath.Join(t.TempDir(), "received.json")

	// records its request
	dir := writeManifest(t, tmpDir, Manifest{Name: "recorder", Executable: "run.sh", Events: []string{EventExport}})
	script := "#!/bin/sh\ncat > " + out + "\necho '{\"success\":true}'\n"
	if err := os.WriteFile(filepath.Join(dir, "run.sh"), []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	// not subscribed; would fail if started
	writeManifest(t, tmpDir, Manifest{Name: "ignored", Executable: "missing", Events: []string{"other"}})

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatal(err)
	}
	d := NewDispatcher(manager, NewExecutor(0), logging.NewNop())

	if n := d.Dispatch(context.Background(), *exportRequest()); n != 1 {
		t.Fatalf("Dispatch() started %d plugins, want 1", n)
	}
	d.Wait()

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("hook did not run: %v", err)
	}
	if !strings.Contains(string(data), "handDrawing_20240601_101112") {
		t.Errorf("hook received %s", data)
	}
}

func TestDispatcher_MissingExecutable(t *testing.T) {
	tmpDir := t.TempDir()
	writeManifest(t, tmpDir, Manifest{Name: "broken", Executable: "missing", Events: []string{EventExport}})

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatal(err)
	}
	d := NewDispatcher(manager, NewExecutor(0), logging.NewNop())

	if n := d.Dispatch(context.Background(), *exportRequest()); n != 1 {
		t.Fatalf("Dispatch() started %d plugins, want 1", n)
	}
	// the failure is only logged
	d.Wait()
}

func TestDispatcher_NoSubscribers(t *testing.T) {
	d := NewDispatcher(NewManager(t.TempDir()), NewExecutor(0), logging.NewNop())
	if n := d.Dispatch(context.Background(), *exportRequest()); n != 0 {
		t.Fatalf("Dispatch() started %d plugins, want 0", n)
	}
	d.Wait()
}
