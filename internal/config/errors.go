package config

import (
	"errors"
	"strings"
)

// ErrConfig is matched by every configuration error.
var ErrConfig = errors.New("invalid configuration")

// ConfigError lists every problem found by Validate.
type ConfigError struct {
	Problems []string
}

func (e *ConfigError) Error() string {
	return ErrConfig.Error() + ": " + strings.Join(e.Problems, "; ")
}

func (e *ConfigError) Unwrap() error { return ErrConfig }
