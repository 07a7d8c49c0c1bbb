package inference

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lensflare-camera/internal/tensor"
)

type stubBackend struct {
	outputs []*tensor.Tensor
	err     error
	calls   int
	closed  bool
}

func (s *stubBackend) Name() string { return "stub" }

func (s *stubBackend) Run(*tensor.Tensor) ([]*tensor.Tensor, error) {
	s.calls++
	return s.outputs, s.err
}

func (s *stubBackend) Close() error {
	s.closed = true
	return nil
}

func fullOutputs(n int) []*tensor.Tensor {
	out := make([]*tensor.Tensor, n)
	for i := range out {
		out[i] = tensor.Full(InputShape, tensor.Planar, float32(i)/10)
	}
	return out
}

func TestUnloadedReportsModelUnavailable(t *testing.T) {
	var adapter Adapter = Unloaded{Cause: errors.New("missing file")}
	assert.False(t, adapter.Ready())

	_, err := adapter.Infer(tensor.New(InputShape, tensor.Planar))
	assert.ErrorIs(t, err, ErrModelUnavailable)
	assert.Contains(t, err.Error(), "missing file")
}

func TestReadyReturnsThreeHeads(t *testing.T) {
	backend := &stubBackend{outputs: fullOutputs(3)}
	adapter := NewReady(backend)
	require.True(t, adapter.Ready())

	out, err := adapter.Infer(tensor.New(InputShape, tensor.Planar))
	require.NoError(t, err)
	assert.Same(t, backend.outputs[0], out.Coarse)
	assert.Same(t, backend.outputs[1], out.Refined)
	assert.Same(t, backend.outputs[2], out.Blend)
}

func TestReadyRejectsWrongOutputCount(t *testing.T) {
	adapter := NewReady(&stubBackend{outputs: fullOutputs(2)})
	_, err := adapter.Infer(tensor.New(InputShape, tensor.Planar))
	assert.ErrorIs(t, err, ErrInferenceShape)
}

func TestReadyRejectsWrongOutputShape(t *testing.T) {
	outputs := fullOutputs(3)
	outputs[2] = tensor.New(tensor.Shape{N: 1, C: 1, H: InputSize, W: InputSize}, tensor.Planar)
	adapter := NewReady(&stubBackend{outputs: outputs})

	_, err := adapter.Infer(tensor.New(InputShape, tensor.Planar))
	assert.ErrorIs(t, err, ErrInferenceShape)
}

func TestReadyRejectsWrongInputShape(t *testing.T) {
	backend := &stubBackend{outputs: fullOutputs(3)}
	adapter := NewReady(backend)

	_, err := adapter.Infer(tensor.New(tensor.Shape{N: 1, C: 3, H: 64, W: 64}, tensor.Planar))
	assert.ErrorIs(t, err, ErrInferenceShape)
	assert.Zero(t, backend.calls)
}

func TestReadyCloseReleasesBackend(t *testing.T) {
	backend := &stubBackend{outputs: fullOutputs(3)}
	adapter := NewReady(backend)

	require.NoError(t, adapter.Close())
	require.NoError(t, adapter.Close())
	assert.True(t, backend.closed)
	assert.False(t, adapter.Ready())

	_, err := adapter.Infer(tensor.New(InputShape, tensor.Planar))
	assert.ErrorIs(t, err, ErrModelUnavailable)
}

func TestCacheModelCopiesOnceAndReuses(t *testing.T) {
	ctx := context.Background()
	assets := t.TempDir()
	cacheDir := filepath.Join(t.TempDir(), "cache")

	asset := filepath.Join(assets, "model_specular_removal.onnx")
	require.NoError(t, os.WriteFile(asset, []byte("first"), 0o644))

	cached, err := CacheModel(ctx, asset, cacheDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cacheDir, "model_specular_removal.onnx"), cached)
	data, err := os.ReadFile(cached)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	require.NoError(t, os.WriteFile(asset, []byte("second"), 0o644))
	again, err := CacheModel(ctx, asset, cacheDir)
	require.NoError(t, err)
	assert.Equal(t, cached, again)
	data, err = os.ReadFile(again)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
}

func TestLoadFailsSoft(t *testing.T) {
	logger, hook := test.NewNullLogger()

	adapter := Load(context.Background(), Options{
		Asset:    filepath.Join(t.TempDir(), "missing.onnx"),
		CacheDir: t.TempDir(),
		Backend:  "go",
	}, logger)

	assert.False(t, adapter.Ready())
	_, err := adapter.Infer(tensor.New(InputShape, tensor.Planar))
	assert.ErrorIs(t, err, ErrModelUnavailable)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "inference", hook.LastEntry().Data["component"])
}

func TestLoadRejectsInvalidModelBytes(t *testing.T) {
	logger, _ := test.NewNullLogger()
	asset := filepath.Join(t.TempDir(), "broken.onnx")
	require.NoError(t, os.WriteFile(asset, []byte("not a protobuf graph"), 0o644))

	adapter := Load(context.Background(), Options{Asset: asset, CacheDir: t.TempDir()}, logger)
	_, ok := adapter.(Unloaded)
	assert.True(t, ok)
}
