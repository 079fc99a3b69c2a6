// Package logging configures the process logger. Operational detail stays in
// the logs; the queue only ever sees the short proof notes.
package logging

import (
	"github.com/sirupsen/logrus"
)

// New returns a logger at the requested level. An unknown level falls back
// to info rather than failing the run.
func New(level string) *logrus.Logger {
	logger := logrus.New()
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return logger
}
