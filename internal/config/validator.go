package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Iron-Ham/parawalk/internal/errors"
)

// ValidationErrors is a collection of validation errors
type ValidationErrors []*errors.ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Unwrap exposes each failure to errors.Is and errors.As.
func (e ValidationErrors) Unwrap() []error {
	errs := make([]error, len(e))
	for i, err := range e {
		errs[i] = err
	}
	return errs
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// invalid builds the error reported for a single bad field.
func invalid(field string, value any, message string) *errors.ValidationError {
	return errors.NewValidationError(message).WithField(field).WithValue(value)
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() ValidationErrors {
	var errs ValidationErrors

	errs = append(errs, c.validatePool()...)
	errs = append(errs, c.validateWalk()...)
	errs = append(errs, c.validateLogging()...)

	return errs
}

func (c *Config) validatePool() ValidationErrors {
	var errs ValidationErrors

	if c.Pool.Workers < 1 || c.Pool.Workers > MaxWorkers {
		errs = append(errs, invalid("pool.workers", c.Pool.Workers,
			fmt.Sprintf("must be between 1 and %d", MaxWorkers)))
	}

	return errs
}

func (c *Config) validateWalk() ValidationErrors {
	var errs ValidationErrors

	if len(c.Walk.Start) == 0 {
		errs = append(errs, invalid("walk.start", c.Walk.Start, "must name at least one start node"))
	}
	for _, idx := range c.Walk.Start {
		if idx < 0 {
			errs = append(errs, invalid("walk.start", idx, "node indices must be non-negative"))
		}
	}

	return errs
}

func (c *Config) validateLogging() ValidationErrors {
	var errs ValidationErrors

	level := strings.ToLower(c.Logging.Level)
	if level != "" && !slices.Contains(ValidLogLevels(), level) {
		errs = append(errs, invalid("logging.level", c.Logging.Level,
			fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", "))))
	}

	return errs
}
