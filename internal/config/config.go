package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type LogConfig struct {
	Level string `yaml:"level"`
}

type ModelConfig struct {
	// Asset is where the packaged model lives: a local path, file:// or s3:// URL.
	Asset           string `yaml:"asset"`
	CacheDir        string `yaml:"cache_dir"`
	Backend         string `yaml:"backend"`
	OnnxLibraryPath string `yaml:"onnx_library_path"`
	IntraOpThreads  int    `yaml:"intra_op_threads"`
}

type FilterConfig struct {
	Mode       Mode    `yaml:"mode"`
	KernelSize int     `yaml:"kernel_size"`
	Sigma      float64 `yaml:"sigma"`
}

type CameraConfig struct {
	// Device is a capture index ("0") or a video file / stream URL.
	Device string `yaml:"device"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Rotate bool   `yaml:"rotate"`
}

type DisplayConfig struct {
	Kind      string `yaml:"kind"`
	OutputDir string `yaml:"output_dir"`
	Every     int    `yaml:"every"`
}

type MetricsConfig struct {
	Quality        bool          `yaml:"quality"`
	ReportInterval time.Duration `yaml:"report_interval"`
}

type Config struct {
	Log     LogConfig     `yaml:"log"`
	Model   ModelConfig   `yaml:"model"`
	Filter  FilterConfig  `yaml:"filter"`
	Camera  CameraConfig  `yaml:"camera"`
	Display DisplayConfig `yaml:"display"`
	Metrics MetricsConfig `yaml:"metrics"`
}

const (
	BackendGo  = "go"
	BackendORT = "ort"

	DisplayWindow = "window"
	DisplayFiles  = "files"
	DisplayNone   = "none"
)

func Default() *Config {
	params := DefaultParameters()
	return &Config{
		Log: LogConfig{Level: "info"},
		Model: ModelConfig{
			Asset:          "assets/model_specular_removal.onnx",
			CacheDir:       cacheDir(),
			Backend:        BackendGo,
			IntraOpThreads: 1,
		},
		Filter: FilterConfig{
			Mode:       params.Mode,
			KernelSize: params.KernelSize,
			Sigma:      params.Sigma,
		},
		Camera: CameraConfig{
			Device: "0",
			Width:  640,
			Height: 480,
			Rotate: true,
		},
		Display: DisplayConfig{
			Kind:      DisplayWindow,
			OutputDir: "frames",
			Every:     30,
		},
		Metrics: MetricsConfig{
			ReportInterval: 10 * time.Second,
		},
	}
}

func cacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return dir + "/lensflare-camera"
	}
	return os.TempDir() + "/lensflare-camera"
}

// Load reads a YAML file over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every problem found, joined.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Parameters().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("filter: %w", err))
	}
	switch c.Model.Backend {
	case BackendGo, BackendORT:
	default:
		errs = append(errs, fmt.Errorf("model.backend must be %q or %q, got %q", BackendGo, BackendORT, c.Model.Backend))
	}
	if c.Model.IntraOpThreads < 0 {
		errs = append(errs, fmt.Errorf("model.intra_op_threads must be >= 0"))
	}
	if c.Camera.Width < 0 || c.Camera.Height < 0 {
		errs = append(errs, fmt.Errorf("camera size must be non-negative, got %dx%d", c.Camera.Width, c.Camera.Height))
	}
	switch c.Display.Kind {
	case DisplayWindow, DisplayFiles, DisplayNone:
	default:
		errs = append(errs, fmt.Errorf("display.kind must be window, files or none, got %q", c.Display.Kind))
	}
	if c.Display.Every < 1 {
		errs = append(errs, fmt.Errorf("display.every must be >= 1"))
	}
	if c.Metrics.ReportInterval < 0 {
		errs = append(errs, fmt.Errorf("metrics.report_interval must be non-negative"))
	}

	return errors.Join(errs...)
}

// Parameters returns the filter section as a FilterParameters value.
func (c *Config) Parameters() FilterParameters {
	return FilterParameters{
		Mode:       c.Filter.Mode,
		KernelSize: c.Filter.KernelSize,
		Sigma:      c.Filter.Sigma,
	}
}
