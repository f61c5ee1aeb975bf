package daemon

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/chime/internal/config"
	"github.com/jmylchreest/chime/internal/model"
	"github.com/jmylchreest/chime/internal/preview"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Catalog.Source = config.SourceStatic
	cfg.Player.Backend = config.BackendBeep
	cfg.Player.Watch = false
	cfg.DBus.Enabled = false
	return cfg
}

func TestBuildCatalog(t *testing.T) {
	cfg := testConfig()
	cfg.Catalog.Limit = 3

	cat, err := BuildCatalog(cfg.Catalog, nil)
	require.NoError(t, err)
	assert.Equal(t, "static", cat.Source())

	sounds, err := cat.ListAvailableSounds(context.Background())
	require.NoError(t, err)
	assert.Len(t, sounds, 4)
}

func TestBuildCatalog_UnknownSource(t *testing.T) {
	cfg := testConfig()
	cfg.Catalog.Source = "ringtones"

	_, err := BuildCatalog(cfg.Catalog, nil)
	assert.Error(t, err)
}

func TestDaemon_Lifecycle(t *testing.T) {
	d, err := New(testConfig(), "", nil)
	require.NoError(t, err)
	require.NoError(t, d.Start(context.Background()))

	sounds, err := d.ListAvailableSounds(context.Background())
	require.NoError(t, err)
	require.Len(t, sounds, 7)
	assert.Equal(t, model.SystemDefaultID, sounds[0].ID)

	var mu sync.Mutex
	var seen []preview.State
	d.AddStateListener(func(st preview.Status) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, st.State)
	})

	// A missing file fails in Load; no audio device is touched.
	err = d.Controller().StartPreview(context.Background(), filepath.Join(t.TempDir(), "missing.wav"))
	assert.ErrorIs(t, err, preview.ErrLoadFailed)
	assert.Equal(t, preview.Idle, d.Controller().State())

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 2
	}, time.Second, 10*time.Millisecond)
	mu.Lock()
	assert.Equal(t, []preview.State{preview.Loading, preview.Idle}, seen)
	mu.Unlock()

	d.Stop()
	assert.ErrorIs(t, d.Controller().StartPreview(context.Background(), "chime"), preview.ErrClosed)
}

func TestDaemon_Reload(t *testing.T) {
	d, err := New(testConfig(), "", nil)
	require.NoError(t, err)
	defer d.Stop()

	next := testConfig()
	next.Catalog.Limit = 2
	require.NoError(t, d.Reload(next))

	sounds, err := d.ListAvailableSounds(context.Background())
	require.NoError(t, err)
	assert.Len(t, sounds, 3)
	assert.Same(t, next, d.Config())

	bad := testConfig()
	bad.Catalog.Source = "ringtones"
	assert.Error(t, d.Reload(bad))
	assert.Equal(t, 2, d.Catalog().Limit())
}

func TestConfigWatcher_Reload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[catalog]\nlimit = 5\n"), 0644))

	initial, err := config.LoadConfig(path)
	require.NoError(t, err)

	w := NewConfigWatcher(path, nil)
	w.SetDebounce(10 * time.Millisecond)

	reloaded := make(chan *config.Config, 4)
	failed := make(chan error, 4)
	w.SetReloadCallback(func(c *config.Config) { reloaded <- c })
	w.SetErrorCallback(func(err error) { failed <- err })

	require.NoError(t, w.Start(context.Background(), initial))
	defer w.Stop()
	assert.Same(t, initial, w.GetCurrentConfig())

	require.NoError(t, os.WriteFile(path, []byte("[catalog]\nlimit = 9\n"), 0644))

	select {
	case c := <-reloaded:
		assert.Equal(t, 9, c.Catalog.Limit)
		assert.Same(t, c, w.GetCurrentConfig())
	case <-time.After(5 * time.Second):
		t.Fatal("config not reloaded")
	}

	require.NoError(t, os.WriteFile(path, []byte("[catalog]\nlimit = 0\n"), 0644))

	select {
	case err := <-failed:
		assert.ErrorContains(t, err, "limit")
		assert.Equal(t, 9, w.GetCurrentConfig().Catalog.Limit)
	case <-time.After(5 * time.Second):
		t.Fatal("invalid config not reported")
	}
}

func TestConfigWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	w := NewConfigWatcher(path, nil)
	w.SetDebounce(10 * time.Millisecond)

	reloaded := make(chan *config.Config, 1)
	w.SetReloadCallback(func(c *config.Config) { reloaded <- c })

	require.NoError(t, w.Start(context.Background(), config.DefaultConfig()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x"), 0644))

	select {
	case <-reloaded:
		t.Fatal("unexpected reload")
	case <-time.After(200 * time.Millisecond):
	}
}
