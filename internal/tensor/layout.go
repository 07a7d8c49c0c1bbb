package tensor

import "fmt"

// Channels is the channel count of the RGB images the pipeline works with.
const Channels = 3

// InterleavedIndex maps pixel (y, x) channel c to its offset in an
// interleaved buffer of width w.
func InterleavedIndex(y, x, c, w int) int {
	return (y*w+x)*Channels + c
}

// PlanarIndex maps channel c, pixel (y, x) to its offset in a planar
// buffer of height h and width w.
func PlanarIndex(c, y, x, h, w int) int {
	return c*h*w + y*w + x
}

// FromInterleaved transposes w*h interleaved RGB bytes into a planar
// [1,3,h,w] tensor. With normalize set, values are divided by 255.
func FromInterleaved(pix []byte, w, h int, normalize bool) (*Tensor, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid dimensions: %dx%d", w, h)
	}
	if len(pix) != w*h*Channels {
		return nil, fmt.Errorf("%w: %dx%d RGB needs %d bytes, got %d",
			ErrBufferSizeMismatch, w, h, w*h*Channels, len(pix))
	}

	scale := float32(1)
	if normalize {
		scale = 1.0 / 255.0
	}

	t := New(Shape{N: 1, C: Channels, H: h, W: w}, Planar)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for c := 0; c < Channels; c++ {
				t.Data[PlanarIndex(c, y, x, h, w)] = float32(pix[InterleavedIndex(y, x, c, w)]) * scale
			}
		}
	}
	return t, nil
}

// ToInterleaved is the inverse of FromInterleaved for normalized tensors:
// each value is scaled by 255, clamped to [0,255] and truncated.
func (t *Tensor) ToInterleaved() ([]byte, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if t.Layout != Planar {
		return nil, fmt.Errorf("expected planar tensor, got %s", t.Layout)
	}
	if t.Shape.N != 1 || t.Shape.C != Channels {
		return nil, fmt.Errorf("expected [1,%d,H,W] tensor, got %s", Channels, t.Shape)
	}

	h, w := t.Shape.H, t.Shape.W
	pix := make([]byte, w*h*Channels)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for c := 0; c < Channels; c++ {
				v := Clamp(t.Data[PlanarIndex(c, y, x, h, w)]*255, 0, 255)
				pix[InterleavedIndex(y, x, c, w)] = byte(v)
			}
		}
	}
	return pix, nil
}
