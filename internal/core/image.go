// Owned RGB image type passed between pipeline stages
package core

import (
	"fmt"
	"image"
	"runtime"

	"gocv.io/x/gocv"
)

// RGBImage owns a CV_8UC3 Mat holding pixels in R,G,B order.
// Every stage returns a new RGBImage; callers Close what they own.
type RGBImage struct {
	mat gocv.Mat
}

// NewRGBImage takes ownership of mat; it is closed if validation fails.
func NewRGBImage(mat gocv.Mat) (*RGBImage, error) {
	if err := ValidateImage(mat); err != nil {
		mat.Close()
		return nil, err
	}
	if mat.Channels() != 3 {
		mat.Close()
		return nil, fmt.Errorf("expected 3 channels, got %d", mat.Channels())
	}
	return &RGBImage{mat: mat}, nil
}

// RGBImageFromBytes copies w*h interleaved RGB bytes into a new image.
func RGBImageFromBytes(pix []byte, w, h int) (*RGBImage, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid dimensions: %dx%d", w, h)
	}
	if len(pix) != w*h*3 {
		return nil, fmt.Errorf("%dx%d RGB needs %d bytes, got %d", w, h, w*h*3, len(pix))
	}
	mat, err := matFromBytes(h, w, gocv.MatTypeCV8UC3, pix)
	if err != nil {
		return nil, err
	}
	return NewRGBImage(mat)
}

// matFromBytes returns a Mat that owns a copy of data.
func matFromBytes(rows, cols int, mt gocv.MatType, data []byte) (gocv.Mat, error) {
	view, err := gocv.NewMatFromBytes(rows, cols, mt, data)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("wrapping %dx%d buffer: %w", cols, rows, err)
	}
	owned := view.Clone()
	view.Close()
	runtime.KeepAlive(data)
	return owned, nil
}

func (img *RGBImage) Width() int  { return img.mat.Cols() }
func (img *RGBImage) Height() int { return img.mat.Rows() }

// Mat exposes the underlying Mat. It stays owned by img.
func (img *RGBImage) Mat() gocv.Mat {
	return img.mat
}

// Bytes returns a copy of the interleaved RGB pixels.
func (img *RGBImage) Bytes() []byte {
	return img.mat.ToBytes()
}

func (img *RGBImage) Clone() *RGBImage {
	return &RGBImage{mat: img.mat.Clone()}
}

// ToImage converts to an image.RGBA for display toolkits.
func (img *RGBImage) ToImage() *image.RGBA {
	w, h := img.Width(), img.Height()
	pix := img.mat.ToBytes()
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	for i, j := 0, 0; i+2 < len(pix); i, j = i+3, j+4 {
		out.Pix[j] = pix[i]
		out.Pix[j+1] = pix[i+1]
		out.Pix[j+2] = pix[i+2]
		out.Pix[j+3] = 0xff
	}
	return out
}

// Close releases the Mat. Safe to call on a nil image.
func (img *RGBImage) Close() error {
	if img == nil {
		return nil
	}
	return img.mat.Close()
}

// ValidateImage validates an OpenCV Mat for basic requirements
func ValidateImage(mat gocv.Mat) error {
	if mat.Empty() {
		return fmt.Errorf("image is empty")
	}

	if mat.Cols() <= 0 || mat.Rows() <= 0 {
		return fmt.Errorf("invalid dimensions: %dx%d", mat.Cols(), mat.Rows())
	}

	channels := mat.Channels()
	if channels < 1 || channels > 4 {
		return fmt.Errorf("unsupported channel count: %d", channels)
	}

	// Check for reasonable size limits (prevent memory issues)
	const maxDimension = 16384
	if mat.Cols() > maxDimension || mat.Rows() > maxDimension {
		return fmt.Errorf("image too large: %dx%d (max: %d)", mat.Cols(), mat.Rows(), maxDimension)
	}

	return nil
}
