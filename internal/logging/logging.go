package logging

import (
	"github.com/sirupsen/logrus"

	"github.com/gridstats/agent/internal/config"
)

// New builds a logrus logger from logging configuration. Unknown
// levels fall back to info; any format other than "text" selects the
// JSON formatter.
func New(cfg config.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return logger
}
