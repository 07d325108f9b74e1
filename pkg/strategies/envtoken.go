package strategies

import (
	"context"
	"os"
	"strings"

	"golang.org/x/oauth2"

	"github.com/systmms/authbroker/pkg/credential"
	"github.com/systmms/authbroker/pkg/logging"
)

// EnvToken resolves a raw access token placed in the process environment,
// typically by CI. The variable defaults to <PACKAGE>_TOKEN (uppercased,
// punctuation folded to underscores) and can be overridden per request.
type EnvToken struct {
	lookup func(string) string
	logger *logging.Logger
}

// EnvTokenOption configures NewEnvToken.
type EnvTokenOption func(*EnvToken)

// WithEnvLookup overrides the environment lookup. Used by tests.
func WithEnvLookup(lookup func(string) string) EnvTokenOption {
	return func(e *EnvToken) { e.lookup = lookup }
}

// NewEnvToken creates the environment token strategy.
func NewEnvToken(logger *logging.Logger, opts ...EnvTokenOption) *EnvToken {
	e := &EnvToken{lookup: os.Getenv, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the strategy identifier.
func (e *EnvToken) Name() string { return "env-token" }

// TokenEnvName returns the default environment variable consulted for a
// package's access token.
func TokenEnvName(pkg string) string {
	norm := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - ('a' - 'A')
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, pkg)
	return norm + "_TOKEN"
}

// Resolve wraps the environment-provided token string. An unset or empty
// variable is NotApplicable; there is no failure mode short of that.
func (e *EnvToken) Resolve(ctx context.Context, req credential.Request) (credential.Token, error) {
	name := req.TokenEnvVar
	if name == "" {
		name = TokenEnvName(req.Package)
	}

	value := e.lookup(name)
	if value == "" {
		return nil, credential.NotApplicable(e.Name(), "%s is unset", name)
	}

	e.logger.Debug("access token for %s taken from %s (%s)", req.Package, name, logging.Secret(value))
	return credential.NewBearerToken(&oauth2.Token{AccessToken: value}, credential.GoogleAuthHost, req.Scopes), nil
}
