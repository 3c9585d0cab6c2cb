package config

import (
	"github.com/robmorgan/playhead/logger"
	"github.com/robmorgan/playhead/scheduler"
	"github.com/sirupsen/logrus"
)

// PlayheadConfig represents options that configure the global behavior
// of the program.
type PlayheadConfig struct {
	// Project logger
	Logger *logrus.Entry

	// Lookahead is the scheduler prefetch horizon in seconds.
	Lookahead float64
}

// NewPlayheadConfig creates a new PlayheadConfig object with reasonable
// defaults for real usage.
func NewPlayheadConfig() (PlayheadConfig, error) {
	return PlayheadConfig{
		Logger:    logger.GetProjectLogger(),
		Lookahead: scheduler.DefaultLookahead,
	}, nil
}
