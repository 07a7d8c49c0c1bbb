// Filter controls bound to the shared parameter store
package gui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"lensflare-camera/internal/algorithms"
	"lensflare-camera/internal/config"
)

// ControlPanel edits mode, kernel size and sigma. Every change replaces
// the store snapshot; the worker picks it up on its next frame.
type ControlPanel struct {
	params *config.Store
	logger logrus.FieldLogger

	mode        *widget.Select
	kernel      *widget.Slider
	kernelLabel *widget.Label
	sigma       *widget.Slider
	sigmaLabel  *widget.Label
	container   *fyne.Container
}

func NewControlPanel(params *config.Store, logger logrus.FieldLogger) *ControlPanel {
	cp := &ControlPanel{
		params: params,
		logger: logger.WithField("component", "controls"),
	}
	cp.build()
	return cp
}

func (cp *ControlPanel) build() {
	current := cp.params.Snapshot()

	names := make([]string, 0, len(config.Modes()))
	for _, m := range config.Modes() {
		names = append(names, m.String())
	}
	cp.mode = widget.NewSelect(names, cp.onModeChanged)

	kernelInfo, sigmaInfo := sliderRanges()

	cp.kernelLabel = widget.NewLabel("")
	cp.kernel = widget.NewSlider(kernelInfo.Min, kernelInfo.Max)
	cp.kernel.Step = kernelInfo.Step
	cp.kernel.OnChanged = cp.onKernelChanged

	cp.sigmaLabel = widget.NewLabel("")
	cp.sigma = widget.NewSlider(sigmaInfo.Min, sigmaInfo.Max)
	cp.sigma.Step = sigmaInfo.Step
	cp.sigma.OnChanged = cp.onSigmaChanged

	cp.mode.SetSelected(current.Mode.String())
	cp.kernel.SetValue(float64(current.KernelSize))
	cp.sigma.SetValue(current.Sigma)
	cp.refreshLabels()

	cp.container = container.NewVBox(
		widget.NewLabel("Filter"),
		cp.mode,
		cp.kernelLabel,
		cp.kernel,
		cp.sigmaLabel,
		cp.sigma,
	)
}

// sliderRanges reads the slider bounds from the Gaussian filter's parameter
// description, which covers both kernel size and sigma.
func sliderRanges() (kernel, sigma algorithms.ParameterInfo) {
	kernel = algorithms.ParameterInfo{Min: 3, Max: 7, Step: 2}
	sigma = algorithms.ParameterInfo{Min: 0, Max: 10, Step: 0.1}
	if g, ok := algorithms.Get(config.ModeGaussian); ok {
		for _, info := range g.GetParameterInfo() {
			switch info.Name {
			case "kernel_size":
				kernel = info
			case "sigma":
				sigma = info
			}
		}
	}
	return kernel, sigma
}

func (cp *ControlPanel) onModeChanged(name string) {
	mode, err := config.ParseMode(name)
	if err != nil {
		cp.logger.WithError(err).Warn("Ignoring unknown mode")
		return
	}
	cp.params.SetMode(mode)
	cp.logger.WithField("mode", mode.String()).Info("Filter mode changed")
}

func (cp *ControlPanel) onKernelChanged(v float64) {
	if !cp.params.SetKernelSize(int(v)) {
		cp.logger.WithField("kernel_size", int(v)).Debug("Rejected kernel size")
	}
	cp.refreshLabels()
}

func (cp *ControlPanel) onSigmaChanged(v float64) {
	cp.params.SetSigma(v)
	cp.refreshLabels()
}

func (cp *ControlPanel) refreshLabels() {
	if cp.kernelLabel == nil || cp.sigmaLabel == nil {
		return
	}
	p := cp.params.Snapshot()
	cp.kernelLabel.SetText(fmt.Sprintf("Kernel size: %d", p.KernelSize))
	cp.sigmaLabel.SetText(fmt.Sprintf("Sigma: %.1f", p.Sigma))
}

func (cp *ControlPanel) GetContainer() *fyne.Container {
	return cp.container
}
