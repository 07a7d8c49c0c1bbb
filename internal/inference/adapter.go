// Inference adapter around the specular-removal model
package inference

import (
	"errors"
	"fmt"
	"sync"

	"lensflare-camera/internal/tensor"
)

var (
	ErrModelUnavailable = errors.New("model unavailable")
	ErrInferenceShape   = errors.New("unexpected inference shape")
)

// InputSize is the fixed square resolution the model runs at.
const InputSize = 128

// InputShape is the only accepted input and output shape.
var InputShape = tensor.Shape{N: 1, C: tensor.Channels, H: InputSize, W: InputSize}

// Outputs are the three model heads, in model output order.
type Outputs struct {
	Coarse  *tensor.Tensor
	Refined *tensor.Tensor
	Blend   *tensor.Tensor
}

// Backend runs a loaded model graph. Implementations do not need to be
// safe for concurrent use.
type Backend interface {
	Name() string
	Run(input *tensor.Tensor) ([]*tensor.Tensor, error)
	Close() error
}

// Adapter is either Unloaded or *Ready.
type Adapter interface {
	Infer(input *tensor.Tensor) (Outputs, error)
	Ready() bool
	Close() error
}

// Unloaded is the adapter state after a failed or skipped model load.
type Unloaded struct {
	Cause error
}

func (u Unloaded) Infer(*tensor.Tensor) (Outputs, error) {
	if u.Cause != nil {
		return Outputs{}, fmt.Errorf("%w: %v", ErrModelUnavailable, u.Cause)
	}
	return Outputs{}, ErrModelUnavailable
}

func (Unloaded) Ready() bool  { return false }
func (Unloaded) Close() error { return nil }

// Ready wraps a loaded backend and serializes calls into it.
type Ready struct {
	mu      sync.Mutex
	backend Backend
	closed  bool
}

func NewReady(backend Backend) *Ready {
	return &Ready{backend: backend}
}

func (r *Ready) Ready() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.closed
}

func (r *Ready) Backend() string {
	return r.backend.Name()
}

// Infer runs the model on a planar [1,3,128,128] tensor and checks that it
// produced exactly three tensors of the same shape.
func (r *Ready) Infer(input *tensor.Tensor) (Outputs, error) {
	if err := input.Validate(); err != nil {
		return Outputs{}, err
	}
	if input.Shape != InputShape || input.Layout != tensor.Planar {
		return Outputs{}, fmt.Errorf("%w: input %s %s, want %s planar",
			ErrInferenceShape, input.Shape, input.Layout, InputShape)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return Outputs{}, fmt.Errorf("%w: model closed", ErrModelUnavailable)
	}

	results, err := r.backend.Run(input)
	if err != nil {
		return Outputs{}, fmt.Errorf("%s inference: %w", r.backend.Name(), err)
	}
	if len(results) != 3 {
		return Outputs{}, fmt.Errorf("%w: expected 3 outputs, got %d", ErrInferenceShape, len(results))
	}
	for i, out := range results {
		if out == nil || out.Shape != InputShape || len(out.Data) != InputShape.Len() {
			got := "nil"
			if out != nil {
				got = fmt.Sprintf("%s (%d elements)", out.Shape, len(out.Data))
			}
			return Outputs{}, fmt.Errorf("%w: output %d is %s, want %s", ErrInferenceShape, i, got, InputShape)
		}
	}

	return Outputs{Coarse: results[0], Refined: results[1], Blend: results[2]}, nil
}

func (r *Ready) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	return r.backend.Close()
}
