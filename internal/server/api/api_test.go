package api

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ayusman/mirrorpaint/internal/store"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

// fakeCanvas records the commands it receives.
type fakeCanvas struct {
	err     error
	export  store.Export
	enabled bool

	clears  int
	exports []string
	sizes   [][2]int
}

func (f *fakeCanvas) Clear(ctx context.Context) error {
	if f.err != nil {
		return f.err
	}
	f.clears++
	return nil
}

func (f *fakeCanvas) Export(ctx context.Context, source string) (store.Export, error) {
	if f.err != nil {
		return store.Export{}, f.err
	}
	f.exports = append(f.exports, source)
	return f.export, nil
}

func (f *fakeCanvas) Resize(ctx context.Context, width, height int) error {
	if f.err != nil {
		return f.err
	}
	f.sizes = append(f.sizes, [2]int{width, height})
	return nil
}

func (f *fakeCanvas) SetEnabled(enabled bool) { f.enabled = enabled }

func (f *fakeCanvas) IsEnabled() bool { return f.enabled }
