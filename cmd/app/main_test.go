package main

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestInitLoggerLevels(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, initLogger(true, "error").GetLevel())
	assert.Equal(t, logrus.WarnLevel, initLogger(false, "warn").GetLevel())
	assert.Equal(t, logrus.InfoLevel, initLogger(false, "loud").GetLevel())
}
