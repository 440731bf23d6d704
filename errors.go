package aocssim

import "fmt"

// ConfigurationError reports a bad or missing spacecraft/orbit/hysteresis
// parameter. Fatal: no integration begins (spec.md 7).
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// EnvironmentDataMissing reports that the harmonic-model data bundle
// (World Magnetic Model / Earth Gravity Model coefficients) could not be
// found at runtime.
type EnvironmentDataMissing struct {
	Path string
}

func (e EnvironmentDataMissing) Error() string {
	return fmt.Sprintf("environment data missing: %s", e.Path)
}

// NumericalAbort reports a position singularity, step-size underflow, or
// Kepler-solver non-convergence. Carries only the time T; the state is not
// part of the error (the integration driver returns its last state alongside).
type NumericalAbort struct {
	T      float64
	Reason string
}

func (e NumericalAbort) Error() string {
	return fmt.Sprintf("numerical abort at t=%.6f: %s", e.T, e.Reason)
}

// IntegrationNonConvergence reports that tolerances were unreachable within
// the configured max-step budget.
type IntegrationNonConvergence struct {
	T        float64
	MaxSteps int
}

func (e IntegrationNonConvergence) Error() string {
	return fmt.Sprintf("integration did not converge within %d steps (stalled at t=%.6f)", e.MaxSteps, e.T)
}

// ObserverFailure reports that an observer/sink could not accept a sample.
type ObserverFailure struct {
	Cause error
}

func (e ObserverFailure) Error() string {
	return fmt.Sprintf("observer failure: %s", e.Cause)
}

func (e ObserverFailure) Unwrap() error { return e.Cause }
