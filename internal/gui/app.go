// Live viewer window showing filtered camera frames
package gui

import (
	"fmt"
	"image"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"lensflare-camera/internal/config"
	"lensflare-camera/internal/core"
	"lensflare-camera/internal/metrics"
)

// Application is the viewer window. It is a core.Sink: the worker calls
// Show from its own goroutine and all widget updates go through fyne.Do.
type Application struct {
	app    fyne.App
	window fyne.Window
	logger logrus.FieldLogger
	rotate bool
	stats  *metrics.Stats

	view     *canvas.Image
	status   *widget.Label
	controls *ControlPanel
}

func NewApplication(app fyne.App, params *config.Store, stats *metrics.Stats, rotate bool, logger logrus.FieldLogger) *Application {
	window := app.NewWindow("Lensflare Camera")
	window.Resize(fyne.NewSize(1000, 720))
	window.CenterOnScreen()

	a := &Application{
		app:      app,
		window:   window,
		logger:   logger.WithField("component", "gui"),
		rotate:   rotate,
		stats:    stats,
		controls: NewControlPanel(params, logger),
	}
	a.setupLayout()
	return a
}

func (a *Application) setupLayout() {
	a.view = canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	a.view.FillMode = canvas.ImageFillContain
	a.view.ScaleMode = canvas.ImageScaleFastest

	a.status = widget.NewLabel("Waiting for camera")

	a.window.SetContent(container.NewBorder(
		nil,      // top
		a.status, // bottom
		nil,      // left
		container.NewPadded(a.controls.GetContainer()), // right
		a.view,
	))
}

// Show renders the processed image, or the original frame on passthrough.
func (a *Application) Show(out core.Output) error {
	var img *image.RGBA
	if out.Image != nil {
		img = out.Image.ToImage()
	} else {
		preview, err := a.preview(out.Frame)
		if err != nil {
			return err
		}
		img = preview
	}

	status := fmt.Sprintf("frame %d  mode %s  %v", out.Frame.Sequence, out.Params.Mode, out.Result.Elapsed.Round(100*time.Microsecond))
	if out.Result.Failure != core.FailureNone {
		status += "  fallback: " + string(out.Result.Failure)
	}
	if a.stats != nil {
		status += fmt.Sprintf("  dropped %d", a.stats.Snapshot().Dropped)
	}

	fyne.Do(func() {
		a.view.Image = img
		a.view.Refresh()
		a.status.SetText(status)
	})
	return nil
}

func (a *Application) preview(frame *core.Frame) (*image.RGBA, error) {
	rgb, err := core.PlanarYUVToRGB(frame)
	if err != nil {
		return nil, err
	}
	defer rgb.Close()
	if !a.rotate {
		return rgb.ToImage(), nil
	}
	rotated, err := core.Rotate90Clockwise(rgb)
	if err != nil {
		return nil, err
	}
	defer rotated.Close()
	return rotated.ToImage(), nil
}

// Run blocks until the window is closed, then calls onClosed.
func (a *Application) Run(onClosed func()) {
	a.window.SetOnClosed(func() {
		a.logger.Info("Viewer closed")
		if onClosed != nil {
			onClosed()
		}
	})
	a.window.ShowAndRun()
}

// Quit closes the viewer from any goroutine.
func (a *Application) Quit() {
	fyne.Do(a.app.Quit)
}
