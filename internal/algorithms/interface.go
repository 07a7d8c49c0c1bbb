// Classical filter registry keyed by filter mode
package algorithms

import (
	"errors"
	"fmt"
	"sort"

	"gocv.io/x/gocv"

	"lensflare-camera/internal/config"
)

var ErrInvalidParameters = errors.New("invalid filter parameters")

// Algorithm is a classical filter over an RGB image.
// Apply returns a new Mat with the input's dimensions and never modifies input.
type Algorithm interface {
	Apply(input gocv.Mat, params config.FilterParameters) (gocv.Mat, error)
	Mode() config.Mode
	GetName() string
	GetDescription() string
	Validate(params config.FilterParameters) error
	GetParameterInfo() []ParameterInfo
}

// ParameterInfo describes a parameter for UI generation
type ParameterInfo struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"` // "int" or "float"
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Step        float64 `json:"step"`
	Default     float64 `json:"default"`
	Description string  `json:"description"`
}

var algorithms = make(map[config.Mode]Algorithm)

func Register(algorithm Algorithm) {
	algorithms[algorithm.Mode()] = algorithm
}

func Get(mode config.Mode) (Algorithm, bool) {
	algorithm, exists := algorithms[mode]
	return algorithm, exists
}

// Apply validates params and runs the filter registered for params.Mode.
func Apply(input gocv.Mat, params config.FilterParameters) (gocv.Mat, error) {
	algorithm, exists := algorithms[params.Mode]
	if !exists {
		return gocv.NewMat(), fmt.Errorf("no classical filter for mode %s", params.Mode)
	}
	if input.Empty() {
		return gocv.NewMat(), fmt.Errorf("input image is empty")
	}
	if err := algorithm.Validate(params); err != nil {
		return gocv.NewMat(), err
	}

	return algorithm.Apply(input, params)
}

// GetAllAlgorithms returns the registered filters ordered by mode.
func GetAllAlgorithms() []Algorithm {
	result := make([]Algorithm, 0, len(algorithms))
	for _, algorithm := range algorithms {
		result = append(result, algorithm)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Mode() < result[j].Mode() })
	return result
}

func validateKernel(params config.FilterParameters) error {
	if !config.ValidKernelSize(params.KernelSize) {
		return fmt.Errorf("%w: kernel size must be odd and >= %d, got %d",
			ErrInvalidParameters, config.MinKernelSize, params.KernelSize)
	}
	return nil
}

func validateSigma(params config.FilterParameters) error {
	if params.Sigma < 0 {
		return fmt.Errorf("%w: sigma must be non-negative, got %g", ErrInvalidParameters, params.Sigma)
	}
	return nil
}

func kernelInfo(description string) ParameterInfo {
	return ParameterInfo{
		Name:        "kernel_size",
		Type:        "int",
		Min:         3,
		Max:         7,
		Step:        2,
		Default:     config.DefaultKernelSize,
		Description: description,
	}
}

func sigmaInfo(description string) ParameterInfo {
	return ParameterInfo{
		Name:        "sigma",
		Type:        "float",
		Min:         0,
		Max:         10,
		Step:        0.1,
		Default:     config.DefaultSigma,
		Description: description,
	}
}

func init() {
	Register(NewGaussianFilter())
	Register(NewMedianFilter())
	Register(NewImpulseFilter())
}
