// Concrete implementations of quality metrics
package metrics

import (
	"fmt"
	"math"

	"gocv.io/x/gocv"
)

// meanSquaredError averages the squared difference over every channel sample.
func meanSquaredError(original, processed gocv.Mat) (float64, error) {
	if original.Empty() || processed.Empty() {
		return 0, fmt.Errorf("empty images")
	}
	if original.Rows() != processed.Rows() || original.Cols() != processed.Cols() ||
		original.Channels() != processed.Channels() {
		return 0, fmt.Errorf("image dimensions mismatch: %dx%dx%d vs %dx%dx%d",
			original.Cols(), original.Rows(), original.Channels(),
			processed.Cols(), processed.Rows(), processed.Channels())
	}

	a, b := original.ToBytes(), processed.ToBytes()
	if len(a) != len(b) || len(a) == 0 {
		return 0, fmt.Errorf("image buffers differ: %d vs %d bytes", len(a), len(b))
	}

	sumSquaredDiff := 0.0
	for i := range a {
		diff := float64(a[i]) - float64(b[i])
		sumSquaredDiff += diff * diff
	}
	return sumSquaredDiff / float64(len(a)), nil
}

// PSNR implements Peak Signal-to-Noise Ratio metric
type PSNR struct{}

// NewPSNR creates a new PSNR metric
func NewPSNR() *PSNR {
	return &PSNR{}
}

func (p *PSNR) Calculate(original, processed gocv.Mat) (float64, error) {
	mse, err := meanSquaredError(original, processed)
	if err != nil {
		return 0, err
	}
	if mse == 0 {
		return math.Inf(1), nil // Perfect match
	}

	maxVal := 255.0
	return 20 * math.Log10(maxVal/math.Sqrt(mse)), nil
}

func (p *PSNR) GetName() string        { return "PSNR" }
func (p *PSNR) GetDescription() string { return "Peak Signal-to-Noise Ratio" }
func (p *PSNR) IsHigherBetter() bool   { return true }

// MSE implements Mean Squared Error metric
type MSE struct{}

func NewMSE() *MSE {
	return &MSE{}
}

func (m *MSE) Calculate(original, processed gocv.Mat) (float64, error) {
	return meanSquaredError(original, processed)
}

func (m *MSE) GetName() string        { return "MSE" }
func (m *MSE) GetDescription() string { return "Mean Squared Error" }
func (m *MSE) IsHigherBetter() bool   { return false }
