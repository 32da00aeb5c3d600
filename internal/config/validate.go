package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/skyrmion/antop/internal/errors"
)

// ValidInterval reports whether d is one of the allowed poll cadences.
func ValidInterval(d time.Duration) bool {
	for _, allowed := range AllowedIntervals {
		if d == allowed {
			return true
		}
	}
	return false
}

// IntervalChoices renders the allowed poll intervals for help text and errors.
func IntervalChoices() string {
	parts := make([]string, len(AllowedIntervals))
	for i, d := range AllowedIntervals {
		parts[i] = d.String()
	}
	return strings.Join(parts, ", ")
}

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but antop only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Grab the latest antop release")
	}

	if strings.TrimSpace(cfg.Nodes.Path) == "" {
		return errors.New(errors.ErrConfig,
			"Node directory pattern is empty",
			"Set nodes.path in the config or pass --path")
	}

	// A glob that can never be parsed must fail at startup, not silently
	// discover nothing on every pass.
	if _, err := filepath.Match(cfg.NodeGlob(), ""); err != nil {
		return errors.WrapWithCode(err, errors.ErrDiscovery,
			fmt.Sprintf("Malformed node directory pattern: %s", cfg.Nodes.Path),
			"Check the glob syntax (e.g. ~/.local/share/autonomi/node/*)")
	}

	if cfg.Nodes.Logs != "" {
		if _, err := filepath.Match(cfg.LogOverrideGlob(), ""); err != nil {
			return errors.WrapWithCode(err, errors.ErrDiscovery,
				fmt.Sprintf("Malformed log file pattern: %s", cfg.Nodes.Logs),
				"Check the glob syntax (e.g. ~/.local/share/autonomi/node/*/logs/antnode.log)")
		}
	}

	if !ValidInterval(cfg.Poll.Interval) {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Poll interval %s is not supported", cfg.Poll.Interval),
			"Choose one of: "+IntervalChoices())
	}

	if cfg.History.Size < 2 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("History size %d is too small to chart", cfg.History.Size),
			"Use at least 2 (default 60)")
	}

	return nil
}
