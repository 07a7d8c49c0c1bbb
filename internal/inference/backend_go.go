package inference

import (
	"fmt"

	"github.com/advancedclimatesystems/gonnx"
	gtensor "gorgonia.org/tensor"

	"lensflare-camera/internal/tensor"
)

// goBackend evaluates the graph with the pure Go ONNX interpreter.
type goBackend struct {
	model   *gonnx.Model
	input   string
	outputs []string
}

func NewGoBackend(onnxBytes []byte) (Backend, error) {
	model, err := gonnx.NewModelFromBytes(onnxBytes)
	if err != nil {
		return nil, fmt.Errorf("parsing onnx model: %w", err)
	}

	inputs := model.InputNames()
	if len(inputs) != 1 {
		return nil, fmt.Errorf("expected a single model input, got %d", len(inputs))
	}

	return &goBackend{
		model:   model,
		input:   inputs[0],
		outputs: model.OutputNames(),
	}, nil
}

func (b *goBackend) Name() string { return "go" }

func (b *goBackend) Run(input *tensor.Tensor) ([]*tensor.Tensor, error) {
	backing := make([]float32, len(input.Data))
	copy(backing, input.Data)

	inputMap := map[string]gtensor.Tensor{
		b.input: gtensor.New(
			gtensor.Of(gtensor.Float32),
			gtensor.WithShape(input.Shape.N, input.Shape.C, input.Shape.H, input.Shape.W),
			gtensor.WithBacking(backing),
		),
	}

	results, err := b.model.Run(inputMap)
	if err != nil {
		return nil, err
	}

	outputs := make([]*tensor.Tensor, 0, len(b.outputs))
	for _, name := range b.outputs {
		t, ok := results[name]
		if !ok {
			return nil, fmt.Errorf("missing output %q", name)
		}
		data, ok := t.Data().([]float32)
		if !ok {
			return nil, fmt.Errorf("output %q has type %T, want []float32", name, t.Data())
		}
		shape, err := tensor.ShapeFromDims(t.Shape())
		if err != nil {
			return nil, fmt.Errorf("output %q: %w", name, err)
		}
		owned := make([]float32, len(data))
		copy(owned, data)
		outputs = append(outputs, &tensor.Tensor{Shape: shape, Layout: tensor.Planar, Data: owned})
	}
	return outputs, nil
}

func (b *goBackend) Close() error {
	return nil
}
