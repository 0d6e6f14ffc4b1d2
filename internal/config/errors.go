package config

import (
	"errors"
)

// Sentinel error kinds returned by Load and Config.Validate.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
