package credential

import (
	"errors"
	"fmt"
)

// ConfigurationError indicates an AuthState that could never authenticate
// a request: inactive with no API key to fall back on.
type ConfigurationError struct {
	// Package is the consuming package the state was built for.
	Package string

	// Message describes what is wrong with the configuration.
	Message string
}

// Error implements the error interface.
func (e ConfigurationError) Error() string {
	return fmt.Sprintf("invalid auth configuration for %q: %s", e.Package, e.Message)
}

// InvalidTokenTypeError indicates a bring-your-own candidate that does not
// satisfy the Token capability set, for example a bare string.
type InvalidTokenTypeError struct {
	// Shape names the unsupported candidate type, as produced by %T.
	Shape string
}

// Error implements the error interface.
func (e InvalidTokenTypeError) Error() string {
	return fmt.Sprintf("unsupported credential type %s: want a token exposing an access token, endpoint host and refresh capability", e.Shape)
}

// WrongEndpointError indicates a capability-compatible token configured
// against a non-Google authorization host.
type WrongEndpointError struct {
	// Host is the offending authorization host.
	Host string
}

// Error implements the error interface.
func (e WrongEndpointError) Error() string {
	return fmt.Sprintf("token issued by %q, not a Google authorization host", e.Host)
}

// NotApplicableError reports that a strategy's preconditions were not met
// and the resolver should keep trying. It is a soft outcome, never a
// diagnosis of breakage.
type NotApplicableError struct {
	// Strategy is the reporting strategy's name.
	Strategy string

	// Reason says which precondition was missing.
	Reason string
}

// Error implements the error interface.
func (e *NotApplicableError) Error() string {
	return fmt.Sprintf("%s: not applicable: %s", e.Strategy, e.Reason)
}

// NotApplicable builds a NotApplicableError for the given strategy.
func NotApplicable(strategy, format string, args ...interface{}) error {
	return &NotApplicableError{Strategy: strategy, Reason: fmt.Sprintf(format, args...)}
}

// IsNotApplicable reports whether err is a strategy's soft "keep trying"
// outcome.
func IsNotApplicable(err error) bool {
	var na *NotApplicableError
	return errors.As(err, &na)
}
