package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/inkforge/mdpress/internal/config"
)

// setupLogging builds a logger from config. The quiet and verbose flags
// override the configured level; a log file switches output to a rotating
// writer so long-running batches do not grow without bound.
func setupLogging(cfg config.LogConfig, quiet, verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	switch {
	case verbose:
		level = logrus.DebugLevel
	case quiet:
		level = logrus.ErrorLevel
	}
	log.SetLevel(level)

	if cfg.File != "" {
		log.SetOutput(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		})
	} else {
		log.SetOutput(os.Stderr)
	}

	return log
}
