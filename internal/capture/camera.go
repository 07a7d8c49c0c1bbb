package capture

import (
	"context"
	"fmt"
	"image"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"lensflare-camera/internal/core"
)

type CameraOptions struct {
	// Device is a capture index ("0") or a video file / stream URL.
	Device string
	Width  int
	Height int
}

// Camera reads BGR frames from a gocv capture device and publishes them
// as I420 frames into a Slot.
type Camera struct {
	opts   CameraOptions
	logger logrus.FieldLogger
	seq    uint64
}

func NewCamera(opts CameraOptions, logger logrus.FieldLogger) *Camera {
	return &Camera{
		opts:   opts,
		logger: logger.WithFields(logrus.Fields{"component": "capture", "device": opts.Device}),
	}
}

func (c *Camera) open() (*gocv.VideoCapture, error) {
	var device interface{} = c.opts.Device
	if id, err := strconv.Atoi(c.opts.Device); err == nil {
		device = id
	}

	vc, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("opening capture device %s: %w", c.opts.Device, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("capture device %s did not open", c.opts.Device)
	}
	if c.opts.Width > 0 && c.opts.Height > 0 {
		vc.Set(gocv.VideoCaptureFrameWidth, float64(c.opts.Width))
		vc.Set(gocv.VideoCaptureFrameHeight, float64(c.opts.Height))
	}
	return vc, nil
}

// Run captures until ctx is done or the device runs out of frames, then
// closes slot so the worker drains and exits.
func (c *Camera) Run(ctx context.Context, slot *Slot) error {
	defer slot.Close()

	vc, err := c.open()
	if err != nil {
		return err
	}
	defer vc.Close()

	img := gocv.NewMat()
	defer img.Close()

	c.logger.Info("Capture started")
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Capture stopped")
			return nil
		default:
		}

		if ok := vc.Read(&img); !ok || img.Empty() {
			c.logger.Info("Capture device has no more frames")
			return nil
		}

		frame, err := c.toFrame(img)
		if err != nil {
			c.logger.WithError(err).Warn("Skipping unreadable frame")
			continue
		}
		if !slot.Put(frame) {
			return nil
		}
	}
}

// toFrame crops to even dimensions, which 4:2:0 subsampling requires.
func (c *Camera) toFrame(bgr gocv.Mat) (*core.Frame, error) {
	w, h := bgr.Cols()&^1, bgr.Rows()&^1
	src := bgr
	if w != bgr.Cols() || h != bgr.Rows() {
		region := bgr.Region(image.Rect(0, 0, w, h))
		defer region.Close()
		src = region
	}

	frame, err := core.FrameFromBGR(src)
	if err != nil {
		return nil, err
	}
	c.seq++
	frame.Sequence = c.seq
	frame.Timestamp = time.Now()
	return frame, nil
}
