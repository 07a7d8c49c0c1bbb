package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"fyne.io/fyne/v2/app"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"lensflare-camera/internal/algorithms"
	"lensflare-camera/internal/capture"
	"lensflare-camera/internal/config"
	"lensflare-camera/internal/core"
	"lensflare-camera/internal/display"
	"lensflare-camera/internal/gui"
	"lensflare-camera/internal/inference"
	imageio "lensflare-camera/internal/io"
	"lensflare-camera/internal/metrics"
)

var (
	inputPath  string
	outputPath string
	modeName   string
	kernelSize int
	sigma      float64
	rotate     bool
)

// setup loads the config and builds the logger shared by every command.
func setup() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger := initLogger(debugMode || cfg.Log.Level == "debug", cfg.Log.Level)
	return cfg, logger, nil
}

func loadModel(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) inference.Adapter {
	return inference.Load(ctx, inference.Options{
		Asset:          cfg.Model.Asset,
		CacheDir:       cfg.Model.CacheDir,
		Backend:        cfg.Model.Backend,
		LibraryPath:    cfg.Model.OnnxLibraryPath,
		IntraOpThreads: cfg.Model.IntraOpThreads,
	}, logger)
}

var runCommand = &cli.Command{
	Name:  "run",
	Usage: "Capture from a camera or video and filter frames live",
	Action: func(c *cli.Context) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		return runLive(c.Context, cfg, logger)
	},
}

func runLive(parent context.Context, cfg *config.Config, logger *logrus.Logger) error {
	sigCtx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	logger.WithFields(logrus.Fields{
		"version": AppVersion,
		"device":  cfg.Camera.Device,
		"mode":    cfg.Filter.Mode.String(),
		"display": cfg.Display.Kind,
	}).Info("Starting live filtering")

	model := loadModel(ctx, cfg, logger)
	defer func() {
		if err := model.Close(); err != nil {
			logger.WithError(err).Warn("Failed to release model")
		}
	}()

	params := config.NewStore(cfg.Parameters())
	stats := metrics.NewStats()
	pipeline := core.NewPipeline(model, stats, logger, core.PipelineOptions{
		Rotate:  cfg.Camera.Rotate,
		Quality: cfg.Metrics.Quality,
	})
	slot := capture.NewSlot()
	camera := capture.NewCamera(capture.CameraOptions{
		Device: cfg.Camera.Device,
		Width:  cfg.Camera.Width,
		Height: cfg.Camera.Height,
	}, logger)

	var viewer *gui.Application
	var sink core.Sink
	switch cfg.Display.Kind {
	case config.DisplayWindow:
		viewer = gui.NewApplication(app.NewWithID(AppID), params, stats, cfg.Camera.Rotate, logger)
		sink = viewer
	case config.DisplayFiles:
		fileSink, err := display.NewFileSink(cfg.Display.OutputDir, cfg.Display.Every, cfg.Camera.Rotate, logger)
		if err != nil {
			return err
		}
		sink = fileSink
	default:
		sink = &display.NullSink{}
	}

	worker := core.NewWorker(slot, sink, pipeline, params, logger)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	wg.Add(3)
	go func() {
		defer wg.Done()
		errs <- camera.Run(ctx, slot)
	}()
	go func() {
		defer wg.Done()
		// the worker exits once capture is exhausted
		defer cancel()
		errs <- worker.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		reportStats(ctx, stats, cfg.Metrics.ReportInterval, logger)
	}()

	if viewer != nil {
		// quit the viewer when capture ends on its own
		go func() {
			<-ctx.Done()
			viewer.Quit()
		}()
		viewer.Run(cancel)
	}

	<-ctx.Done()
	slot.Close()
	wg.Wait()
	close(errs)

	logStats(stats, logger, "Final frame statistics")

	var runErr error
	for err := range errs {
		runErr = errors.Join(runErr, err)
	}
	return runErr
}

func reportStats(ctx context.Context, stats *metrics.Stats, interval time.Duration, logger logrus.FieldLogger) {
	if interval <= 0 {
		<-ctx.Done()
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			logStats(stats, logger, "Frame statistics")
		}
	}
}

func logStats(stats *metrics.Stats, logger logrus.FieldLogger, msg string) {
	report, err := stats.Report()
	if err != nil {
		logger.WithError(err).Warn("Failed to encode statistics")
		return
	}
	logger.WithField("stats", string(report)).Info(msg)
}

var processCommand = &cli.Command{
	Name:      "process",
	Usage:     "Filter a single image file",
	ArgsUsage: "--input photo.jpg --output filtered.png",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "Image to filter",
			Destination: &inputPath,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Where to write the result",
			Destination: &outputPath,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "mode",
			Aliases:     []string{"m"},
			Usage:       "disabled, learned, gaussian, salt_pepper or impulse (default from config)",
			Destination: &modeName,
		},
		&cli.IntFlag{
			Name:        "kernel",
			Aliases:     []string{"k"},
			Usage:       "Odd kernel size >= 3 (default from config)",
			Destination: &kernelSize,
		},
		&cli.Float64Flag{
			Name:        "sigma",
			Aliases:     []string{"s"},
			Usage:       "Filter sigma (default from config)",
			Destination: &sigma,
			Value:       -1,
		},
		&cli.BoolFlag{
			Name:        "rotate",
			Usage:       "Apply the 90 degree clockwise orientation correction",
			Destination: &rotate,
		},
	},
	Action: func(c *cli.Context) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}

		params := config.NewStore(cfg.Parameters())
		if modeName != "" {
			mode, err := config.ParseMode(modeName)
			if err != nil {
				return err
			}
			params.SetMode(mode)
		}
		if kernelSize != 0 && !params.SetKernelSize(kernelSize) {
			return fmt.Errorf("kernel size must be odd and >= %d, got %d", config.MinKernelSize, kernelSize)
		}
		if sigma >= 0 {
			params.SetSigma(sigma)
		}
		return processStill(c.Context, cfg, params.Snapshot(), logger)
	},
}

func processStill(ctx context.Context, cfg *config.Config, params config.FilterParameters, logger *logrus.Logger) error {
	loader := imageio.NewImageLoader(logger)
	frame, err := loader.LoadFrame(inputPath)
	if err != nil {
		return err
	}

	var model inference.Adapter = inference.Unloaded{}
	if params.Mode == config.ModeLearned {
		model = loadModel(ctx, cfg, logger)
		defer model.Close()
	}

	pipeline := core.NewPipeline(model, nil, logger, core.PipelineOptions{Rotate: rotate, Quality: true})
	res := pipeline.Process(frame, params)
	if res.Passthrough {
		if res.Err != nil {
			logger.WithError(res.Err).Warn("Filtering failed, writing the original image")
		}
		return loader.SaveFrame(frame, rotate, outputPath)
	}
	defer res.Image.Close()

	logger.WithFields(logrus.Fields{
		"mode":    params.Mode.String(),
		"elapsed": res.Elapsed,
		"quality": pipeline.Stats().Snapshot().Quality,
	}).Info("Image filtered")
	return loader.SaveImage(res.Image, outputPath)
}

var filtersCommand = &cli.Command{
	Name:  "filters",
	Usage: "List the classical filters and their parameters",
	Action: func(c *cli.Context) error {
		for _, a := range algorithms.GetAllAlgorithms() {
			fmt.Printf("%-12s %s - %s\n", a.Mode(), a.GetName(), a.GetDescription())
			for _, p := range a.GetParameterInfo() {
				fmt.Printf("    %-12s %-5s [%g..%g] default %g  %s\n", p.Name, p.Type, p.Min, p.Max, p.Default, p.Description)
			}
		}
		return nil
	},
}
