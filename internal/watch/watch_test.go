package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.wkt")
	other := filepath.Join(dir, "other.wkt")
	require.NoError(t, os.WriteFile(path, []byte("POINT (1 2)"), 0o644))

	w, err := New(100*time.Millisecond, nil)
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Watch(path))
	require.NoError(t, w.Watch(path), "watching twice is harmless")
	w.Start()

	require.NoError(t, os.WriteFile(other, []byte("POINT (0 0)"), 0o644))
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("POINT (3 4)"), 0o644))
	}

	abs, err := filepath.Abs(path)
	require.NoError(t, err)
	select {
	case got := <-w.Changes():
		assert.Equal(t, abs, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	select {
	case got := <-w.Changes():
		t.Fatalf("unexpected second change: %s", got)
	case <-time.After(400 * time.Millisecond):
	}
}

func TestUnwatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("lat,lon\n1,2\n"), 0o644))

	w, err := New(10*time.Millisecond, nil)
	require.NoError(t, err)
	require.NoError(t, w.Watch(path))
	require.NoError(t, w.Unwatch(path))
	require.NoError(t, w.Unwatch(path))
	w.Start()

	require.NoError(t, os.WriteFile(path, []byte("lat,lon\n3,4\n"), 0o644))
	select {
	case got := <-w.Changes():
		t.Fatalf("unexpected change: %s", got)
	case <-time.After(200 * time.Millisecond):
	}
	require.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
