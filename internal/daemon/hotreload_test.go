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

	"github.com/jmylchreest/tetratip/internal/config"
)

func startWatcher(t *testing.T, path string) (*ConfigWatcher, *reloadLog) {
	t.Helper()
	w, err := NewConfigWatcher(path, nil)
	require.NoError(t, err)
	w.SetDebounce(10 * time.Millisecond)

	log := &reloadLog{}
	w.SetReloadCallback(log.reloaded)
	w.SetErrorCallback(log.failed)

	require.NoError(t, w.Start(context.Background(), config.Default()))
	t.Cleanup(w.Stop)
	return w, log
}

type reloadLog struct {
	mu      sync.Mutex
	configs []*config.Config
	errs    []error
}

func (l *reloadLog) reloaded(c *config.Config) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.configs = append(l.configs, c)
}

func (l *reloadLog) failed(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs = append(l.errs, err)
}

func (l *reloadLog) counts() (int, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.configs), len(l.errs)
}

func TestConfigWatcher_ReloadsValidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tetratip.toml")
	require.NoError(t, os.WriteFile(path, []byte("[tooltip]\nshow_shadow = true\n"), 0644))

	w, log := startWatcher(t, path)

	require.NoError(t, os.WriteFile(path, []byte("[tooltip]\nshow_shadow = false\n"), 0644))

	assert.Eventually(t, func() bool {
		n, _ := log.counts()
		return n > 0
	}, 2*time.Second, 10*time.Millisecond)

	assert.False(t, w.GetCurrentConfig().Tooltip.ShowShadow)
}

func TestConfigWatcher_RejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tetratip.toml")
	w, log := startWatcher(t, path)
	initial := w.GetCurrentConfig()

	require.NoError(t, os.WriteFile(path, []byte("[tooltip]\nplacement = \"nowhere\"\n"), 0644))

	assert.Eventually(t, func() bool {
		_, n := log.counts()
		return n > 0
	}, 2*time.Second, 10*time.Millisecond)

	reloads, _ := log.counts()
	assert.Equal(t, 0, reloads)
	assert.Same(t, initial, w.GetCurrentConfig())
}

func TestConfigWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tetratip.toml")
	_, log := startWatcher(t, path)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x = 1\n"), 0644))
	time.Sleep(100 * time.Millisecond)

	reloads, errs := log.counts()
	assert.Equal(t, 0, reloads)
	assert.Equal(t, 0, errs)
}

func TestConfigWatcher_StopIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tetratip.toml")
	w, err := NewConfigWatcher(path, nil)
	require.NoError(t, err)

	w.Stop()
	require.NoError(t, w.Start(context.Background(), config.Default()))
	require.NoError(t, w.Start(context.Background(), config.Default()))
	w.Stop()
	w.Stop()
	assert.Equal(t, path, w.Path())
}
