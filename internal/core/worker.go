package core

import (
	"context"
	"errors"
	"io"

	"github.com/sirupsen/logrus"

	"lensflare-camera/internal/config"
)

// FrameSource hands out frames one at a time. Next returns io.EOF once
// the source is closed and drained.
type FrameSource interface {
	Next(ctx context.Context) (*Frame, error)
	Dropped() uint64
}

// Output is what the display receives for each frame. Image is nil when
// the original frame should be shown; it is owned by the worker and only
// valid during Show.
type Output struct {
	Frame  *Frame
	Image  *RGBImage
	Params config.FilterParameters
	Result Result
}

type Sink interface {
	Show(out Output) error
}

// Worker is the single consumer of a FrameSource. Frames are processed
// strictly one at a time.
type Worker struct {
	source   FrameSource
	sink     Sink
	pipeline *Pipeline
	params   *config.Store
	logger   logrus.FieldLogger
}

func NewWorker(source FrameSource, sink Sink, pipeline *Pipeline, params *config.Store, logger logrus.FieldLogger) *Worker {
	return &Worker{
		source:   source,
		sink:     sink,
		pipeline: pipeline,
		params:   params,
		logger:   logger.WithField("component", "worker"),
	}
}

// Run processes frames until ctx is done or the source is exhausted.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("Frame worker started")
	defer w.logger.Info("Frame worker stopped")

	for {
		frame, err := w.source.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
		w.handle(frame)
	}
}

func (w *Worker) handle(frame *Frame) {
	params := w.params.Snapshot()
	res := w.pipeline.Process(frame, params)
	defer res.Image.Close()

	w.pipeline.Stats().SetDropped(w.source.Dropped())

	if err := w.sink.Show(Output{Frame: frame, Image: res.Image, Params: params, Result: res}); err != nil {
		w.logger.WithError(err).WithField("sequence", frame.Sequence).Warn("Display rejected frame")
	}
}
