package config

import (
	"fmt"
	"strings"

	"github.com/fjglira/specwalk/internal/domain"
)

// Validate checks the Config for required fields and valid values.
func Validate(cfg *Config) error {
	var errs []string

	// Explore validation
	if cfg.Explore.MaxPasses < 0 {
		errs = append(errs, fmt.Sprintf("explore.max_passes must not be negative (got %d)", cfg.Explore.MaxPasses))
	}

	// Report validation
	validFormats := map[string]bool{"text": true, "yaml": true, "html": true}
	if !validFormats[cfg.Report.Format] {
		errs = append(errs, fmt.Sprintf("report.format must be one of: text, yaml, html (got %q)", cfg.Report.Format))
	}
	if cfg.Report.Output == "" {
		errs = append(errs, "report.output must not be empty (use \"-\" for stdout)")
	}

	// Input validation
	if len(cfg.Input.Directories) == 0 {
		errs = append(errs, "input.directories must not be empty")
	}
	if len(cfg.Input.Include) == 0 {
		errs = append(errs, "input.include must not be empty")
	}

	// Validate logging level
	if cfg.Logging.Level != "" {
		validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
		if !validLevels[cfg.Logging.Level] {
			errs = append(errs, fmt.Sprintf("logging.level must be one of: debug, info, warn, error (got %q)", cfg.Logging.Level))
		}
	}

	if len(errs) > 0 {
		return domain.NewError(domain.PhaseConfig, "", 0, fmt.Sprintf("validation failed: %s", strings.Join(errs, "; ")), nil)
	}

	return nil
}
