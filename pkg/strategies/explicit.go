// Package strategies contains the credential strategy implementations the
// resolver drives: an explicit caller-supplied token, a service account
// key, a cached user grant in the OS keyring, an environment-provided
// access token, and ambient host credentials.
package strategies

import (
	"context"

	"github.com/systmms/authbroker/pkg/credential"
	"github.com/systmms/authbroker/pkg/logging"
)

// Explicit resolves a credential the caller handed in directly, either as
// a token or embedded in a request configuration. An offered candidate
// that fails validation is a hard failure: the caller clearly intended
// this mechanism, so a silent skip would hide the misconfiguration.
type Explicit struct {
	logger *logging.Logger
}

// NewExplicit creates the explicit strategy.
func NewExplicit(logger *logging.Logger) *Explicit {
	return &Explicit{logger: logger}
}

// Name returns the strategy identifier.
func (e *Explicit) Name() string { return "explicit" }

// Resolve validates and passes through the caller's candidate.
func (e *Explicit) Resolve(ctx context.Context, req credential.Request) (credential.Token, error) {
	if req.Explicit == nil {
		return nil, credential.NotApplicable(e.Name(), "no explicit credential supplied")
	}

	tok, err := credential.AcceptExternal(req.Explicit)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("explicit credential accepted for %s (host %s)", req.Package, tok.EndpointHost())
	return tok, nil
}
