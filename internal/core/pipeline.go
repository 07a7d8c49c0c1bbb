// internal/core/pipeline.go
// Per-frame processing: color conversion, orientation, filtering or model refinement
package core

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"lensflare-camera/internal/algorithms"
	"lensflare-camera/internal/config"
	"lensflare-camera/internal/inference"
	"lensflare-camera/internal/metrics"
	"lensflare-camera/internal/tensor"
)

type PipelineOptions struct {
	// Rotate applies the 90 degree clockwise orientation correction.
	Rotate bool
	// Quality computes PSNR/MSE of every filtered frame against its input.
	Quality bool
}

// Result is the outcome of one Process call. When Passthrough is set the
// original frame should be shown and Image is nil.
type Result struct {
	Image       *RGBImage
	Passthrough bool
	Failure     FailureKind
	Err         error
	Elapsed     time.Duration
}

type Pipeline struct {
	model     inference.Adapter
	stats     *metrics.Stats
	evaluator *metrics.Evaluator
	logger    logrus.FieldLogger
	rotate    bool
}

func NewPipeline(model inference.Adapter, stats *metrics.Stats, logger logrus.FieldLogger, opts PipelineOptions) *Pipeline {
	if model == nil {
		model = inference.Unloaded{}
	}
	if stats == nil {
		stats = metrics.NewStats()
	}
	p := &Pipeline{
		model:  model,
		stats:  stats,
		logger: logger.WithField("component", "pipeline"),
		rotate: opts.Rotate,
	}
	if opts.Quality {
		p.evaluator = metrics.NewEvaluator()
	}
	return p
}

func (p *Pipeline) Stats() *metrics.Stats {
	return p.stats
}

// Process runs one frame through the stages selected by params. It never
// returns an error: failures are logged, counted and turned into a
// passthrough result.
func (p *Pipeline) Process(frame *Frame, params config.FilterParameters) Result {
	if params.Mode == config.ModeDisabled {
		p.stats.RecordPassthrough()
		return Result{Passthrough: true}
	}

	start := time.Now()
	img, err := p.processSafely(frame, params)
	elapsed := time.Since(start)

	if err != nil {
		kind := Classify(err)
		p.stats.RecordFailure(string(kind), elapsed)
		entry := p.logger.WithFields(logrus.Fields{
			"mode":    params.Mode.String(),
			"failure": string(kind),
		}).WithError(err)
		if frame != nil {
			entry = entry.WithField("sequence", frame.Sequence)
		}
		entry.Warn("Frame processing failed, showing original")
		return Result{Passthrough: true, Failure: kind, Err: err, Elapsed: elapsed}
	}

	p.stats.RecordProcessed(elapsed)
	p.logger.WithFields(logrus.Fields{
		"mode":     params.Mode.String(),
		"sequence": frame.Sequence,
		"elapsed":  elapsed,
	}).Debug("Frame processed")
	return Result{Image: img, Elapsed: elapsed}
}

func (p *Pipeline) processSafely(frame *Frame, params config.FilterParameters) (out *RGBImage, err error) {
	defer func() {
		if r := recover(); r != nil {
			out.Close()
			out = nil
			err = fmt.Errorf("%w: panic: %v", ErrUnexpectedProcessing, r)
		}
	}()

	rgb, err := PlanarYUVToRGB(frame)
	if err != nil {
		return nil, err
	}
	defer rgb.Close()

	oriented := rgb
	if p.rotate {
		rotated, err := Rotate90Clockwise(rgb)
		if err != nil {
			return nil, err
		}
		defer rotated.Close()
		oriented = rotated
	}

	switch {
	case params.Mode == config.ModeLearned:
		out, err = p.refine(oriented)
	case params.Mode.Classical():
		out, err = p.filter(oriented, params)
	default:
		err = fmt.Errorf("%w: unsupported mode %s", ErrUnexpectedProcessing, params.Mode)
	}
	if err != nil {
		return nil, err
	}

	if p.evaluator != nil {
		p.stats.RecordQuality(p.evaluator.CalculateAll(oriented.Mat(), out.Mat()))
	}
	return out, nil
}

// refine runs the specular-removal model at its fixed resolution and scales
// the blended result back to the size of img.
func (p *Pipeline) refine(img *RGBImage) (*RGBImage, error) {
	small, err := Resize(img, inference.InputSize, inference.InputSize)
	if err != nil {
		return nil, err
	}
	defer small.Close()

	input, err := tensor.FromInterleaved(small.Bytes(), inference.InputSize, inference.InputSize, true)
	if err != nil {
		return nil, err
	}

	outputs, err := p.model.Infer(input)
	if err != nil {
		return nil, err
	}

	blended, err := tensor.Composite(input, outputs.Refined, outputs.Blend)
	if err != nil {
		return nil, err
	}

	pix, err := blended.ToInterleaved()
	if err != nil {
		return nil, err
	}
	refined, err := RGBImageFromBytes(pix, inference.InputSize, inference.InputSize)
	if err != nil {
		return nil, err
	}
	defer refined.Close()

	return Resize(refined, img.Width(), img.Height())
}

func (p *Pipeline) filter(img *RGBImage, params config.FilterParameters) (*RGBImage, error) {
	mat, err := algorithms.Apply(img.Mat(), params)
	if err != nil {
		mat.Close()
		return nil, err
	}
	return NewRGBImage(mat)
}
