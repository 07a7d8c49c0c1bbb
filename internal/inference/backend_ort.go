//go:build cgo && (ORT || ALL)

package inference

import (
	"errors"
	"fmt"

	ort "github.com/yalue/onnxruntime_go"

	"lensflare-camera/internal/tensor"
)

type ortBackend struct {
	session *ort.DynamicAdvancedSession
	options *ort.SessionOptions
	outputs int
}

// NewORTBackend opens modelPath with ONNX Runtime. libraryPath may be empty
// when the runtime library is on the default search path.
func NewORTBackend(modelPath, libraryPath string, intraOpThreads int) (Backend, error) {
	if !ort.IsInitialized() {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initializing onnxruntime: %w", err)
		}
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("reading model io info: %w", err)
	}
	if len(inputs) != 1 {
		return nil, fmt.Errorf("expected a single model input, got %d", len(inputs))
	}
	outputNames := make([]string, len(outputs))
	for i, v := range outputs {
		outputNames[i] = v.Name
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, err
	}
	if intraOpThreads > 0 {
		if err := options.SetIntraOpNumThreads(intraOpThreads); err != nil {
			return nil, errors.Join(err, options.Destroy())
		}
	}

	session, err := ort.NewDynamicAdvancedSession(modelPath, []string{inputs[0].Name}, outputNames, options)
	if err != nil {
		return nil, errors.Join(err, options.Destroy())
	}

	return &ortBackend{session: session, options: options, outputs: len(outputNames)}, nil
}

func (b *ortBackend) Name() string { return "ort" }

func (b *ortBackend) Run(input *tensor.Tensor) ([]*tensor.Tensor, error) {
	in, err := ort.NewTensor(ort.NewShape(input.Shape.Dims()...), input.Data)
	if err != nil {
		return nil, err
	}
	defer in.Destroy()

	// nil outputs are allocated by the session
	values := make([]ort.Value, b.outputs)
	if err := b.session.Run([]ort.Value{in}, values); err != nil {
		return nil, err
	}
	defer func() {
		for _, v := range values {
			if v != nil {
				v.Destroy()
			}
		}
	}()

	outputs := make([]*tensor.Tensor, len(values))
	for i, v := range values {
		t, ok := v.(*ort.Tensor[float32])
		if !ok {
			return nil, fmt.Errorf("output %d has type %T, want float32 tensor", i, v)
		}
		dims := t.GetShape()
		shapeDims := make([]int, len(dims))
		for j, d := range dims {
			shapeDims[j] = int(d)
		}
		shape, err := tensor.ShapeFromDims(shapeDims)
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
		data := make([]float32, len(t.GetData()))
		copy(data, t.GetData())
		outputs[i] = &tensor.Tensor{Shape: shape, Layout: tensor.Planar, Data: data}
	}
	return outputs, nil
}

func (b *ortBackend) Close() error {
	return errors.Join(b.session.Destroy(), b.options.Destroy())
}
