package tensor

import "fmt"

// Composite blends refined over input using a per-element blend map:
//
//	out = input*(1-b) + refined*b, b = clamp(blend, 0, 1)
//
// and clamps the result to [0,1]. The three tensors must have the same
// number of elements. The result takes the shape and layout of input.
func Composite(input, refined, blend *Tensor) (*Tensor, error) {
	for name, t := range map[string]*Tensor{"input": input, "refined": refined, "blend": blend} {
		if t == nil {
			return nil, fmt.Errorf("composite: %s tensor is nil", name)
		}
	}
	if len(input.Data) != len(refined.Data) || len(input.Data) != len(blend.Data) {
		return nil, fmt.Errorf("%w: input=%d refined=%d blend=%d",
			ErrBufferSizeMismatch, len(input.Data), len(refined.Data), len(blend.Data))
	}

	out := &Tensor{Shape: input.Shape, Layout: input.Layout, Data: make([]float32, len(input.Data))}
	for i, in := range input.Data {
		b := Clamp(blend.Data[i], 0, 1)
		out.Data[i] = Clamp(in*(1-b)+refined.Data[i]*b, 0, 1)
	}
	return out, nil
}
