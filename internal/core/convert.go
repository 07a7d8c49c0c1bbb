package core

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// OpenCV color conversion codes for 4:2:0 planar YUV (cv::COLOR_YUV2RGB_I420,
// cv::COLOR_BGR2YUV_I420).
const (
	colorYUVToRGBI420 = gocv.ColorConversionCode(100)
	colorBGRToYUVI420 = gocv.ColorConversionCode(128)
)

// PlanarYUVToRGB converts a frame to an interleaved RGB image of the same size.
func PlanarYUVToRGB(f *Frame) (*RGBImage, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: nil frame", ErrInvalidFrame)
	}
	packed, err := f.PackI420()
	if err != nil {
		return nil, err
	}

	yuv, err := matFromBytes(f.Height*3/2, f.Width, gocv.MatTypeCV8UC1, packed)
	if err != nil {
		return nil, err
	}
	defer yuv.Close()

	rgb := gocv.NewMat()
	gocv.CvtColor(yuv, &rgb, colorYUVToRGBI420)
	if rgb.Cols() != f.Width || rgb.Rows() != f.Height {
		rgb.Close()
		return nil, fmt.Errorf("color conversion produced %dx%d, want %dx%d", rgb.Cols(), rgb.Rows(), f.Width, f.Height)
	}
	return NewRGBImage(rgb)
}

// FrameFromBGR converts a BGR Mat, as produced by capture devices and
// image decoders, into an I420 Frame. The Mat must have even dimensions.
func FrameFromBGR(bgr gocv.Mat) (*Frame, error) {
	if bgr.Empty() || bgr.Cols() == 0 || bgr.Rows() == 0 {
		return nil, fmt.Errorf("%w: empty source image", ErrZeroSizeFrame)
	}
	yuv := gocv.NewMat()
	defer yuv.Close()
	gocv.CvtColor(bgr, &yuv, colorBGRToYUVI420)
	return NewI420Frame(yuv.ToBytes(), bgr.Cols(), bgr.Rows())
}

// Rotate90Clockwise turns a W x H image into an H x W one.
func Rotate90Clockwise(img *RGBImage) (*RGBImage, error) {
	dst := gocv.NewMat()
	gocv.Rotate(img.Mat(), &dst, gocv.Rotate90Clockwise)
	return NewRGBImage(dst)
}

// Resize scales img to w x h with bilinear interpolation.
func Resize(img *RGBImage, w, h int) (*RGBImage, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid resize target: %dx%d", w, h)
	}
	dst := gocv.NewMat()
	gocv.Resize(img.Mat(), &dst, image.Pt(w, h), 0, 0, gocv.InterpolationLinear)
	return NewRGBImage(dst)
}
