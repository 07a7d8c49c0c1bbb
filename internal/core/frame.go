package core

import (
	"fmt"
	"time"
)

// Plane is one YUV plane as delivered by a capture device.
type Plane struct {
	Data        []byte
	RowStride   int
	PixelStride int
}

// at returns the sample at (row, col) honoring both strides.
func (p Plane) at(row, col int) byte {
	return p.Data[row*p.RowStride+col*p.PixelStride]
}

// fits reports whether a rows x cols sample grid lies inside Data.
func (p Plane) fits(rows, cols int) bool {
	if rows == 0 || cols == 0 {
		return true
	}
	if p.RowStride <= 0 || p.PixelStride <= 0 {
		return false
	}
	last := (rows-1)*p.RowStride + (cols-1)*p.PixelStride
	return last < len(p.Data)
}

// Frame is a planar YUV 4:2:0 camera frame. It is not modified after capture.
type Frame struct {
	Width, Height int
	Y, U, V       Plane
	Sequence      uint64
	Timestamp     time.Time
}

// NewI420Frame wraps a contiguous I420 buffer of size w*h*3/2.
func NewI420Frame(buf []byte, w, h int) (*Frame, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrZeroSizeFrame, w, h)
	}
	if w%2 != 0 || h%2 != 0 {
		return nil, fmt.Errorf("%w: dimensions must be even, got %dx%d", ErrInvalidFrame, w, h)
	}
	ySize, cSize := w*h, (w/2)*(h/2)
	if len(buf) < ySize+2*cSize {
		return nil, fmt.Errorf("%w: I420 %dx%d needs %d bytes, got %d", ErrInvalidFrame, w, h, ySize+2*cSize, len(buf))
	}
	return &Frame{
		Width:     w,
		Height:    h,
		Y:         Plane{Data: buf[:ySize], RowStride: w, PixelStride: 1},
		U:         Plane{Data: buf[ySize : ySize+cSize], RowStride: w / 2, PixelStride: 1},
		V:         Plane{Data: buf[ySize+cSize : ySize+2*cSize], RowStride: w / 2, PixelStride: 1},
		Timestamp: time.Now(),
	}, nil
}

func (f *Frame) Validate() error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrZeroSizeFrame, f.Width, f.Height)
	}
	if f.Width%2 != 0 || f.Height%2 != 0 {
		return fmt.Errorf("%w: dimensions must be even, got %dx%d", ErrInvalidFrame, f.Width, f.Height)
	}
	if !f.Y.fits(f.Height, f.Width) {
		return fmt.Errorf("%w: luma plane too small for %dx%d", ErrInvalidFrame, f.Width, f.Height)
	}
	cw, ch := f.Width/2, f.Height/2
	if !f.U.fits(ch, cw) || !f.V.fits(ch, cw) {
		return fmt.Errorf("%w: chroma planes too small for %dx%d", ErrInvalidFrame, cw, ch)
	}
	return nil
}

// PackI420 reconstructs a contiguous I420 buffer: Y, then U, then V.
func (f *Frame) PackI420() ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	w, h := f.Width, f.Height
	cw, ch := w/2, h/2
	out := make([]byte, w*h+2*cw*ch)

	if f.Y.RowStride == w && f.Y.PixelStride == 1 {
		copy(out, f.Y.Data[:w*h])
	} else {
		for row := 0; row < h; row++ {
			for col := 0; col < w; col++ {
				out[row*w+col] = f.Y.at(row, col)
			}
		}
	}

	off := w * h
	for _, p := range []Plane{f.U, f.V} {
		for row := 0; row < ch; row++ {
			for col := 0; col < cw; col++ {
				out[off] = p.at(row, col)
				off++
			}
		}
	}
	return out, nil
}
