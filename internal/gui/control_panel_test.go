package gui

import (
	"testing"

	"fyne.io/fyne/v2/test"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"

	"lensflare-camera/internal/config"
)

func TestControlPanelUpdatesStore(t *testing.T) {
	test.NewApp()
	logger, _ := logtest.NewNullLogger()
	store := config.NewStore(config.DefaultParameters())
	cp := NewControlPanel(store, logger)

	cp.mode.SetSelected("impulse")
	assert.Equal(t, config.ModeImpulse, store.Snapshot().Mode)

	cp.kernel.SetValue(5)
	assert.Equal(t, 5, store.Snapshot().KernelSize)
	assert.Equal(t, "Kernel size: 5", cp.kernelLabel.Text)

	cp.kernel.SetValue(6)
	assert.Equal(t, 5, store.Snapshot().KernelSize)

	cp.sigma.SetValue(2.5)
	assert.Equal(t, 2.5, store.Snapshot().Sigma)
	assert.Equal(t, "Sigma: 2.5", cp.sigmaLabel.Text)
}

func TestSliderRangesFollowFilterParameters(t *testing.T) {
	kernel, sigma := sliderRanges()
	assert.Equal(t, 3.0, kernel.Min)
	assert.Equal(t, 7.0, kernel.Max)
	assert.Equal(t, 10.0, sigma.Max)
}
