package config

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/fjglira/specwalk/internal/domain"
)

// NewLogger builds a logrus logger from the logging section. Output goes to
// stderr unless a file is configured. The returned closer releases the file.
func NewLogger(cfg LoggingConfig, verbose bool) (*logrus.Logger, io.Closer, error) {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	log.SetOutput(os.Stderr)

	level := logrus.InfoLevel
	if cfg.Level != "" {
		parsed, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return nil, nil, domain.NewError(domain.PhaseConfig, "", 0, "invalid logging.level", err)
		}
		level = parsed
	}
	if verbose {
		level = logrus.DebugLevel
	}
	log.SetLevel(level)

	if cfg.File == "" {
		return log, nopCloser{}, nil
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, domain.NewError(domain.PhaseConfig, cfg.File, 0, "failed to open log file", err)
	}
	log.SetOutput(f)
	return log, f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
