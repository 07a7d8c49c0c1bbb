// Filter algorithms for noise reduction
package algorithms

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"lensflare-camera/internal/config"
)

// GaussianFilter implements Gaussian blur filter
type GaussianFilter struct{}

// NewGaussianFilter creates a new Gaussian filter algorithm
func NewGaussianFilter() *GaussianFilter {
	return &GaussianFilter{}
}

// Apply blurs with a KxK kernel, sigma in both directions. A sigma of 0
// lets OpenCV derive it from the kernel size.
func (g *GaussianFilter) Apply(input gocv.Mat, params config.FilterParameters) (gocv.Mat, error) {
	if input.Empty() {
		return gocv.NewMat(), fmt.Errorf("input image is empty")
	}

	k := params.KernelSize
	sigma := params.Sigma
	if sigma < 0 {
		sigma = 0
	}

	output := gocv.NewMat()
	gocv.GaussianBlur(input, &output, image.Pt(k, k), sigma, sigma, gocv.BorderDefault)

	return output, nil
}

func (g *GaussianFilter) Mode() config.Mode { return config.ModeGaussian }

func (g *GaussianFilter) GetName() string {
	return "Gaussian Filter"
}

func (g *GaussianFilter) GetDescription() string {
	return "Gaussian blur for general noise reduction"
}

func (g *GaussianFilter) Validate(params config.FilterParameters) error {
	if err := validateKernel(params); err != nil {
		return err
	}
	return validateSigma(params)
}

func (g *GaussianFilter) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		kernelInfo("Size of the Gaussian kernel (must be odd)"),
		sigmaInfo("Standard deviation in both directions, 0 derives it from the kernel"),
	}
}

// MedianFilter implements median filter
type MedianFilter struct{}

// NewMedianFilter creates a new median filter algorithm
func NewMedianFilter() *MedianFilter {
	return &MedianFilter{}
}

func (m *MedianFilter) Apply(input gocv.Mat, params config.FilterParameters) (gocv.Mat, error) {
	if input.Empty() {
		return gocv.NewMat(), fmt.Errorf("input image is empty")
	}

	output := gocv.NewMat()
	gocv.MedianBlur(input, &output, params.KernelSize)

	return output, nil
}

func (m *MedianFilter) Mode() config.Mode { return config.ModeSaltPepper }

func (m *MedianFilter) GetName() string {
	return "Median Filter"
}

func (m *MedianFilter) GetDescription() string {
	return "Median filter to remove salt-and-pepper noise"
}

func (m *MedianFilter) Validate(params config.FilterParameters) error {
	return validateKernel(params)
}

func (m *MedianFilter) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		kernelInfo("Size of the median filter aperture (must be odd)"),
	}
}

// ImpulseFilter removes impulse noise with a median pass and then smooths
// what is left with an edge-preserving bilateral pass.
type ImpulseFilter struct{}

func NewImpulseFilter() *ImpulseFilter {
	return &ImpulseFilter{}
}

func (f *ImpulseFilter) Apply(input gocv.Mat, params config.FilterParameters) (gocv.Mat, error) {
	if input.Empty() {
		return gocv.NewMat(), fmt.Errorf("input image is empty")
	}

	median := gocv.NewMat()
	defer median.Close()
	gocv.MedianBlur(input, &median, params.KernelSize)

	// Bilateral diameter follows the kernel, both sigmas are twice the configured sigma.
	output := gocv.NewMat()
	gocv.BilateralFilter(median, &output, params.KernelSize, 2*params.Sigma, 2*params.Sigma)

	return output, nil
}

func (f *ImpulseFilter) Mode() config.Mode { return config.ModeImpulse }

func (f *ImpulseFilter) GetName() string {
	return "Impulse Filter"
}

func (f *ImpulseFilter) GetDescription() string {
	return "Median followed by bilateral filtering for mixed impulse noise"
}

func (f *ImpulseFilter) Validate(params config.FilterParameters) error {
	if err := validateKernel(params); err != nil {
		return err
	}
	return validateSigma(params)
}

func (f *ImpulseFilter) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		kernelInfo("Median aperture and bilateral diameter (must be odd)"),
		sigmaInfo("Half of the bilateral color and space sigma"),
	}
}
