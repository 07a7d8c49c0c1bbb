package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetKernelSizeRejectsEvenSizes(t *testing.T) {
	store := NewStore(DefaultParameters())
	require.Equal(t, 3, store.Snapshot().KernelSize)

	assert.False(t, store.SetKernelSize(4))
	assert.Equal(t, 3, store.Snapshot().KernelSize)

	assert.False(t, store.SetKernelSize(1))
	assert.False(t, store.SetKernelSize(-3))
	assert.Equal(t, 3, store.Snapshot().KernelSize)

	assert.True(t, store.SetKernelSize(7))
	assert.Equal(t, 7, store.Snapshot().KernelSize)
}

func TestSetSigmaIgnoresNegative(t *testing.T) {
	store := NewStore(DefaultParameters())
	assert.False(t, store.SetSigma(-1))
	assert.Equal(t, DefaultSigma, store.Snapshot().Sigma)

	assert.True(t, store.SetSigma(0))
	assert.Equal(t, 0.0, store.Snapshot().Sigma)
}

func TestNewStoreRepairsInvalidSeed(t *testing.T) {
	store := NewStore(FilterParameters{Mode: Mode(99), KernelSize: 6, Sigma: -2})
	assert.Equal(t, DefaultParameters(), store.Snapshot())
}

func TestSnapshotIsConsistentUnderConcurrentWrites(t *testing.T) {
	store := NewStore(FilterParameters{Mode: ModeGaussian, KernelSize: 3, Sigma: 3})

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			// Writers keep sigma equal to the kernel size.
			k := 3 + 2*(i%3)
			store.update(func(p *FilterParameters) {
				p.KernelSize = k
				p.Sigma = float64(k)
			})
		}
	}()

	for i := 0; i < 10000; i++ {
		p := store.Snapshot()
		require.Equal(t, float64(p.KernelSize), p.Sigma)
	}
	close(stop)
	wg.Wait()
}

func TestParseMode(t *testing.T) {
	for _, m := range Modes() {
		parsed, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}

	m, err := ParseMode(" Median ")
	require.NoError(t, err)
	assert.Equal(t, ModeSaltPepper, m)

	_, err = ParseMode("sharpen")
	assert.Error(t, err)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
filter:
  mode: impulse
  kernel_size: 5
camera:
  device: testdata/clip.mp4
  rotate: false
metrics:
  report_interval: 2s
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ModeImpulse, cfg.Filter.Mode)
	assert.Equal(t, 5, cfg.Filter.KernelSize)
	assert.Equal(t, DefaultSigma, cfg.Filter.Sigma)
	assert.Equal(t, "testdata/clip.mp4", cfg.Camera.Device)
	assert.False(t, cfg.Camera.Rotate)
	assert.Equal(t, 2*time.Second, cfg.Metrics.ReportInterval)
	assert.Equal(t, BackendGo, cfg.Model.Backend)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
filter:
  kernel_size: 4
model:
  backend: tensorflow
display:
  kind: hologram
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kernel size")
	assert.Contains(t, err.Error(), "model.backend")
	assert.Contains(t, err.Error(), "display.kind")
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultParameters(), cfg.Parameters())
}
