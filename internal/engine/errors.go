package engine

import "fmt"

// InvalidInputError is returned when a trajectory cannot be compared:
// too short, or containing non-finite values. The comparison is
// deterministic, so these failures are never retried.
type InvalidInputError struct {
	Name   string // which trajectory ("reference" or "patient")
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s trajectory: %s", e.Name, e.Reason)
}

// ConfigurationError is returned when a comparison option is out of its
// valid range. The engine never substitutes defaults for
// computation-affecting parameters.
type ConfigurationError struct {
	Option string
	Value  float64
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s must be positive, got %g", e.Option, e.Value)
}
