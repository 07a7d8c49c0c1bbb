package inference

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/viant/afs"
	"github.com/viant/afs/option"
	_ "github.com/viant/afsc/s3"
)

var fileSystem = afs.New()

type Options struct {
	// Asset is the packaged model location: a local path, file:// or s3:// URL.
	Asset          string
	CacheDir       string
	Backend        string
	LibraryPath    string
	IntraOpThreads int
}

func isURL(location string) bool {
	return strings.Contains(location, "://")
}

// CacheModel copies the model asset into cacheDir once and returns the local
// path. An existing non-empty cached file is reused as is.
func CacheModel(ctx context.Context, asset, cacheDir string) (string, error) {
	if asset == "" {
		return "", errors.New("no model asset configured")
	}
	if !isURL(asset) {
		abs, err := filepath.Abs(asset)
		if err != nil {
			return "", err
		}
		asset = abs
	}

	cached := filepath.Join(cacheDir, path.Base(asset))
	if obj, err := fileSystem.Object(ctx, cached); err == nil && !obj.IsDir() && obj.Size() > 0 {
		return cached, nil
	}

	exists, err := fileSystem.Exists(ctx, asset)
	if err != nil {
		return "", fmt.Errorf("checking model asset %s: %w", asset, err)
	}
	if !exists {
		return "", fmt.Errorf("model asset %s not found", asset)
	}

	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("creating cache dir: %w", err)
	}
	if err := fileSystem.Copy(ctx, asset, cached, option.NewDest(option.NewSkipChecksum(true))); err != nil {
		return "", fmt.Errorf("copying model to cache: %w", err)
	}
	return cached, nil
}

// Load caches and opens the model. It never fails: on any error the
// returned adapter is Unloaded and the cause is logged.
func Load(ctx context.Context, opts Options, logger logrus.FieldLogger) Adapter {
	log := logger.WithFields(logrus.Fields{"component": "inference", "asset": opts.Asset, "backend": opts.Backend})

	backend, err := openBackend(ctx, opts)
	if err != nil {
		log.WithError(err).Error("Failed to load model, learned mode will pass frames through")
		return Unloaded{Cause: err}
	}

	log.Info("Model loaded")
	return NewReady(backend)
}

func openBackend(ctx context.Context, opts Options) (Backend, error) {
	modelPath, err := CacheModel(ctx, opts.Asset, opts.CacheDir)
	if err != nil {
		return nil, err
	}

	switch opts.Backend {
	case "", "go":
		data, err := fileSystem.DownloadWithURL(ctx, modelPath)
		if err != nil {
			return nil, fmt.Errorf("reading cached model: %w", err)
		}
		return NewGoBackend(data)
	case "ort":
		return NewORTBackend(modelPath, opts.LibraryPath, opts.IntraOpThreads)
	default:
		return nil, fmt.Errorf("unknown inference backend %q", opts.Backend)
	}
}
