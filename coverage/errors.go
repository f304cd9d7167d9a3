// Copyright 2025 The PRC Authors
// SPDX-License-Identifier: Apache-2.0

package coverage

import (
	"errors"
)

// ErrUndetermined is returned in radius mode when a coordinate for the base
// address or for the queried postcode could not be obtained.
var ErrUndetermined = errors.New("unable to determine coverage")

// ValidationError reports unusable input. Message is safe to show to end
// users.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "invalid input: " + e.Message
}

// ConfigurationError reports settings that make a check impossible. Message
// is safe to show to end users; Field names the offending setting.
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return "configuration: " + e.Message
	}

	return "configuration: " + e.Field + ": " + e.Message
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	var v *ValidationError

	return errors.As(err, &v)
}

// IsConfigurationError reports whether err is a ConfigurationError.
func IsConfigurationError(err error) bool {
	var c *ConfigurationError

	return errors.As(err, &c)
}

// UserMessage returns the text to show an end user for err.
func UserMessage(err error) string {
	var (
		v *ValidationError
		c *ConfigurationError
	)

	switch {
	case errors.As(err, &v):
		return v.Message
	case errors.As(err, &c):
		return "Configuration incomplete"
	case errors.Is(err, ErrUndetermined):
		return "Unable to determine coverage, please try again later"
	default:
		return "Something went wrong"
	}
}
