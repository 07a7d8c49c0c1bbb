package display

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lensflare-camera/internal/config"
	"lensflare-camera/internal/core"
)

func grayFrame(t *testing.T, seq uint64) *core.Frame {
	t.Helper()
	buf := make([]byte, 8*6*3/2)
	for i := range buf {
		buf[i] = 128
	}
	f, err := core.NewI420Frame(buf, 8, 6)
	require.NoError(t, err)
	f.Sequence = seq
	return f
}

func TestFileSinkWritesEveryNthFrame(t *testing.T) {
	logger, _ := test.NewNullLogger()
	dir := t.TempDir()
	sink, err := NewFileSink(dir, 2, false, logger)
	require.NoError(t, err)

	params := config.FilterParameters{Mode: config.ModeGaussian, KernelSize: 3, Sigma: 1}
	for seq := uint64(1); seq <= 3; seq++ {
		img, err := core.RGBImageFromBytes(make([]byte, 6*8*3), 6, 8)
		require.NoError(t, err)
		require.NoError(t, sink.Show(core.Output{Frame: grayFrame(t, seq), Image: img, Params: params}))
		img.Close()
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"frame_000001_gaussian.png", "frame_000003_gaussian.png"}, names)
}

func TestFileSinkWritesOriginalOnPassthrough(t *testing.T) {
	logger, _ := test.NewNullLogger()
	dir := t.TempDir()
	sink, err := NewFileSink(dir, 1, true, logger)
	require.NoError(t, err)

	params := config.FilterParameters{Mode: config.ModeDisabled, KernelSize: 3}
	require.NoError(t, sink.Show(core.Output{Frame: grayFrame(t, 7), Params: params}))
	assert.FileExists(t, filepath.Join(dir, "frame_000007_disabled.png"))

	err = sink.Show(core.Output{Frame: &core.Frame{Sequence: 8}, Params: params})
	assert.ErrorIs(t, err, core.ErrZeroSizeFrame)
}

func TestNullSinkCounts(t *testing.T) {
	var sink NullSink
	require.NoError(t, sink.Show(core.Output{}))
	require.NoError(t, sink.Show(core.Output{}))
	assert.Equal(t, uint64(2), sink.Shown())
}
