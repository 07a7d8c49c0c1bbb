// Output sinks that consume processed frames
package display

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"lensflare-camera/internal/core"
	imageio "lensflare-camera/internal/io"
)

// NullSink discards frames and only counts them.
type NullSink struct {
	shown atomic.Uint64
}

func (s *NullSink) Show(core.Output) error {
	s.shown.Add(1)
	return nil
}

func (s *NullSink) Shown() uint64 {
	return s.shown.Load()
}

// FileSink writes every Nth frame as a PNG. Passthrough frames are
// written unprocessed.
type FileSink struct {
	dir    string
	every  uint64
	rotate bool
	writer *imageio.ImageLoader
	logger logrus.FieldLogger
	count  uint64
}

func NewFileSink(dir string, every int, rotate bool, logger logrus.FieldLogger) (*FileSink, error) {
	if every < 1 {
		every = 1
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}
	return &FileSink{
		dir:    dir,
		every:  uint64(every),
		rotate: rotate,
		writer: imageio.NewImageLoader(logger),
		logger: logger.WithField("component", "display"),
	}, nil
}

func (s *FileSink) Show(out core.Output) error {
	s.count++
	if (s.count-1)%s.every != 0 {
		return nil
	}

	path := filepath.Join(s.dir, fmt.Sprintf("frame_%06d_%s.png", out.Frame.Sequence, out.Params.Mode))
	if out.Image != nil {
		return s.writer.SaveImage(out.Image, path)
	}
	if err := s.writer.SaveFrame(out.Frame, s.rotate, path); err != nil {
		s.logger.WithError(err).Debug("Original frame could not be written")
		return err
	}
	return nil
}
