// Package resolve drives an ordered list of credential strategies against
// an auth state: first success wins, inapplicable strategies are skipped
// silently, and failures are folded into an aggregate diagnostic according
// to a configurable policy.
package resolve

import (
	"context"
	"fmt"
	"strings"

	"github.com/systmms/authbroker/pkg/credential"
	"github.com/systmms/authbroker/pkg/logging"
)

// FailurePolicy controls what the resolver does when a strategy was
// applicable but failed.
type FailurePolicy int

const (
	// ContinueOnFailure records the failure and moves to the next
	// strategy, surfacing everything in NoCredentialError only when the
	// whole chain is exhausted. This is the default.
	ContinueOnFailure FailurePolicy = iota

	// AbortOnFailure propagates the first hard failure immediately,
	// without trying later strategies.
	AbortOnFailure
)

// Attempt records one strategy's outcome in an exhausted resolution.
type Attempt struct {
	// Strategy is the strategy's name, in evaluation order.
	Strategy string

	// Reason is the strategy's own account of why it produced no token.
	Reason string

	// Hard distinguishes applicable-but-broken from not-applicable.
	Hard bool
}

// NoCredentialError reports that every strategy was exhausted without
// producing a token. Attempts holds one entry per strategy, in order.
type NoCredentialError struct {
	Package  string
	Attempts []Attempt
}

// Error implements the error interface.
func (e *NoCredentialError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "no credential found for %q after %d strategies", e.Package, len(e.Attempts))
	for _, a := range e.Attempts {
		verb := "skipped"
		if a.Hard {
			verb = "failed"
		}
		fmt.Fprintf(&b, "\n  - %s %s: %s", a.Strategy, verb, a.Reason)
	}
	return b.String()
}

// Resolver evaluates strategies in the order the caller supplied them.
// There is no hidden registry; the sequence passed to New is the whole
// policy beyond the failure mode.
type Resolver struct {
	strategies []credential.Strategy
	policy     FailurePolicy
	logger     *logging.Logger
}

// Option configures New.
type Option func(*Resolver)

// WithFailurePolicy sets how hard strategy failures are handled.
func WithFailurePolicy(p FailurePolicy) Option {
	return func(r *Resolver) { r.policy = p }
}

// WithLogger sets the logger. Defaults to a quiet stderr logger.
func WithLogger(l *logging.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// New creates a resolver over the given ordered strategies.
func New(strategies []credential.Strategy, opts ...Option) *Resolver {
	r := &Resolver{
		strategies: strategies,
		policy:     ContinueOnFailure,
		logger:     logging.New(false, false),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve walks the chain and returns the first strategy's token. Once a
// strategy succeeds, the remaining strategies are never evaluated.
func (r *Resolver) Resolve(ctx context.Context, req credential.Request) (credential.Token, error) {
	attempts := make([]Attempt, 0, len(r.strategies))

	for _, s := range r.strategies {
		tok, err := s.Resolve(ctx, req)
		if err == nil {
			r.logger.Debug("strategy %s produced a credential for %s", s.Name(), req.Package)
			return tok, nil
		}

		if credential.IsNotApplicable(err) {
			r.logger.Debug("strategy %s not applicable for %s: %v", s.Name(), req.Package, err)
			attempts = append(attempts, Attempt{Strategy: s.Name(), Reason: err.Error()})
			continue
		}

		if r.policy == AbortOnFailure {
			return nil, fmt.Errorf("strategy %s: %w", s.Name(), err)
		}
		r.logger.Debug("strategy %s failed for %s: %v", s.Name(), req.Package, err)
		attempts = append(attempts, Attempt{Strategy: s.Name(), Reason: err.Error(), Hard: true})
	}

	return nil, &NoCredentialError{Package: req.Package, Attempts: attempts}
}

// Populate resolves a credential for the request and installs it on the
// auth state. The state is left untouched when resolution fails.
func (r *Resolver) Populate(ctx context.Context, state *credential.AuthState, req credential.Request) error {
	if req.Package == "" {
		req.Package = state.Package()
	}
	if req.Client == nil {
		req.Client = state.Client()
	}

	tok, err := r.Resolve(ctx, req)
	if err != nil {
		return err
	}
	state.SetCred(tok)
	return nil
}
