// Lensflare Camera - real-time specular highlight removal and denoising
// for live camera frames

package main

import (
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const (
	AppName    = "lensflare-camera"
	AppID      = "com.lensflare.camera"
	AppVersion = "1.0.0"
)

var (
	configPath string
	debugMode  bool
)

func main() {
	app := &cli.App{
		Name:    AppName,
		Usage:   "Filter live camera frames with a specular-removal model or classical denoisers",
		Version: AppVersion,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Usage:       "Path to a YAML config file",
				Aliases:     []string{"c"},
				Destination: &configPath,
				EnvVars:     []string{"LENSFLARE_CONFIG"},
			},
			&cli.BoolFlag{
				Name:        "debug",
				Usage:       "Enable debug mode with verbose logging",
				Destination: &debugMode,
			},
		},
		Commands: []*cli.Command{runCommand, processCommand, filtersCommand},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Error("Application failed")
		os.Exit(1)
	}
}

// initLogger initializes the logger with appropriate level
func initLogger(debug bool, level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	terminal := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

	if debug {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   terminal,
			DisableColors: !terminal,
		})
		logger.Debug("Debug logging enabled")
		return logger
	}

	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)
	if terminal {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
	if err != nil && level != "" {
		logger.WithField("level", level).Warn("Unknown log level, using info")
	}

	return logger
}
