package domain

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrReportNotFound is returned when a run ID cannot be found in the report store.
var ErrReportNotFound = errors.New("report not found")

// ErrInvalidConfig marks run configuration values that fail decoding or bounds checks.
var ErrInvalidConfig = errors.New("invalid run configuration")

// ErrInvalidInput marks caller input (such as a query label) rejected before a run starts.
var ErrInvalidInput = errors.New("invalid input")

// ConfigurationError reports malformed graph wiring. It is detected at compile time.
type ConfigurationError struct {
	Step   string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Step != "" {
		return fmt.Sprintf("invalid graph configuration at step '%s': %s", e.Step, e.Reason)
	}
	return fmt.Sprintf("invalid graph configuration: %s", e.Reason)
}

// InsufficientDataError is returned by the fetch step when fewer valid items
// than required were found.
type InsufficientDataError struct {
	Found    int
	Required int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("could not find %d valid repositories, only found %d", e.Required, e.Found)
}

// RoutingError is returned when a decision function selects a route that was not declared.
type RoutingError struct {
	Step     string
	Route    Route
	Declared []Route
}

func (e *RoutingError) Error() string {
	declared := make([]string, 0, len(e.Declared))
	for _, r := range e.Declared {
		declared = append(declared, string(r))
	}
	slices.Sort(declared)
	return fmt.Sprintf("step '%s' selected undeclared route '%s' (declared: %s)", e.Step, e.Route, strings.Join(declared, ", "))
}

// CollaboratorError wraps a failure of an external collaborator (fetch or inference).
type CollaboratorError struct {
	Collaborator string
	Err          error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s collaborator failed: %v", e.Collaborator, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// StepError records which step aborted a run and why.
type StepError struct {
	Step      string
	Iteration int
	Err       error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step '%s' (iteration %d) failed: %v", e.Step, e.Iteration, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
