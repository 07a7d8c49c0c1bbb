// Image quality metrics and frame statistics for the processing pipeline
package metrics

import (
	"fmt"
	"sort"

	"gocv.io/x/gocv"
)

// Metric defines the interface for quality metrics
type Metric interface {
	// Calculate compares a filtered image against its unfiltered source
	Calculate(original, processed gocv.Mat) (float64, error)

	GetName() string
	GetDescription() string

	// IsHigherBetter returns true if higher values indicate better quality
	IsHigherBetter() bool
}

// Evaluator manages and calculates multiple metrics
type Evaluator struct {
	metrics map[string]Metric
}

// NewEvaluator creates an evaluator with PSNR and MSE registered
func NewEvaluator() *Evaluator {
	e := &Evaluator{
		metrics: make(map[string]Metric),
	}
	e.Register("psnr", NewPSNR())
	e.Register("mse", NewMSE())
	return e
}

func (e *Evaluator) Register(name string, metric Metric) {
	e.metrics[name] = metric
}

// Names returns the registered metric names, sorted.
func (e *Evaluator) Names() []string {
	names := make([]string, 0, len(e.metrics))
	for name := range e.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (e *Evaluator) Calculate(name string, original, processed gocv.Mat) (float64, error) {
	metric, exists := e.metrics[name]
	if !exists {
		return 0, fmt.Errorf("metric not found: %s", name)
	}

	return metric.Calculate(original, processed)
}

// CalculateAll calculates all registered metrics, skipping any that fail
func (e *Evaluator) CalculateAll(original, processed gocv.Mat) map[string]float64 {
	results := make(map[string]float64)

	for name, metric := range e.metrics {
		if value, err := metric.Calculate(original, processed); err == nil {
			results[name] = value
		}
	}

	return results
}
