// Still image loading and saving for offline processing and file sinks
package io

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"lensflare-camera/internal/core"
)

var supportedFormats = []string{".jpg", ".jpeg", ".png", ".tiff", ".tif", ".bmp"}

// ImageLoader handles image file operations
type ImageLoader struct {
	logger logrus.FieldLogger
}

func NewImageLoader(logger logrus.FieldLogger) *ImageLoader {
	return &ImageLoader{
		logger: logger.WithField("component", "imageio"),
	}
}

// LoadFrame decodes an image file into an I420 frame, cropping a trailing
// row or column when a dimension is odd.
func (il *ImageLoader) LoadFrame(path string) (*core.Frame, error) {
	il.logger.WithField("filepath", path).Debug("Loading image")

	if !IsSupportedImageFormat(path) {
		return nil, fmt.Errorf("unsupported image format: %s", path)
	}

	mat := gocv.IMRead(path, gocv.IMReadColor)
	defer mat.Close()
	if mat.Empty() {
		return nil, fmt.Errorf("failed to load image: %s", path)
	}

	src := mat
	w, h := mat.Cols()&^1, mat.Rows()&^1
	if w != mat.Cols() || h != mat.Rows() {
		region := mat.Region(image.Rect(0, 0, w, h))
		defer region.Close()
		src = region
	}

	frame, err := core.FrameFromBGR(src)
	if err != nil {
		return nil, fmt.Errorf("converting %s: %w", path, err)
	}

	il.logger.WithFields(logrus.Fields{
		"filepath": path,
		"width":    frame.Width,
		"height":   frame.Height,
	}).Info("Image loaded successfully")
	return frame, nil
}

// SaveImage writes an RGB image; the encoder expects BGR order.
func (il *ImageLoader) SaveImage(img *core.RGBImage, path string) error {
	if img == nil {
		return fmt.Errorf("cannot save nil image")
	}
	if !IsSupportedImageFormat(path) {
		return fmt.Errorf("unsupported image format: %s", path)
	}

	bgr := gocv.NewMat()
	defer bgr.Close()
	gocv.CvtColor(img.Mat(), &bgr, gocv.ColorBGRToRGB) // the swap is symmetric

	if ok := gocv.IMWrite(path, bgr); !ok {
		return fmt.Errorf("failed to save image: %s", path)
	}

	il.logger.WithFields(logrus.Fields{
		"filepath": path,
		"width":    img.Width(),
		"height":   img.Height(),
	}).Debug("Image saved successfully")
	return nil
}

// SaveFrame writes the unprocessed frame, optionally rotated like the
// pipeline would.
func (il *ImageLoader) SaveFrame(frame *core.Frame, rotate bool, path string) error {
	rgb, err := core.PlanarYUVToRGB(frame)
	if err != nil {
		return err
	}
	defer rgb.Close()

	if !rotate {
		return il.SaveImage(rgb, path)
	}
	rotated, err := core.Rotate90Clockwise(rgb)
	if err != nil {
		return err
	}
	defer rotated.Close()
	return il.SaveImage(rotated, path)
}

func IsSupportedImageFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range supportedFormats {
		if ext == format {
			return true
		}
	}
	return false
}
