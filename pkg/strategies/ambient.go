package strategies

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/compute/metadata"
	"golang.org/x/oauth2/google"

	"github.com/systmms/authbroker/pkg/credential"
	"github.com/systmms/authbroker/pkg/logging"
)

// Ambient resolves Application Default Credentials: the well-known
// credentials file, GOOGLE_APPLICATION_CREDENTIALS, or the metadata server
// when running on GCE. Discovery is delegated to golang.org/x/oauth2/google.
type Ambient struct {
	find   func(ctx context.Context, scopes ...string) (*google.Credentials, error)
	onGCE  func() bool
	logger *logging.Logger
}

// AmbientOption configures NewAmbient.
type AmbientOption func(*Ambient)

// WithCredentialFinder overrides ADC discovery. Used by tests.
func WithCredentialFinder(find func(ctx context.Context, scopes ...string) (*google.Credentials, error)) AmbientOption {
	return func(a *Ambient) { a.find = find }
}

// WithGCEDetector overrides metadata server detection. Used by tests.
func WithGCEDetector(onGCE func() bool) AmbientOption {
	return func(a *Ambient) { a.onGCE = onGCE }
}

// NewAmbient creates the ambient credential strategy.
func NewAmbient(logger *logging.Logger, opts ...AmbientOption) *Ambient {
	a := &Ambient{
		find:   google.FindDefaultCredentials,
		onGCE:  metadata.OnGCE,
		logger: logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name returns the strategy identifier.
func (a *Ambient) Name() string { return "ambient" }

// Resolve discovers ambient host credentials. A host with nothing ambient
// to offer is NotApplicable; a credentials source that is present but
// unloadable (say, a malformed GOOGLE_APPLICATION_CREDENTIALS file) is a
// hard failure, as is a discovered credential that cannot produce a token.
func (a *Ambient) Resolve(ctx context.Context, req credential.Request) (credential.Token, error) {
	creds, err := a.find(ctx, req.Scopes...)
	if err != nil {
		if !adcNotFound(err) {
			return nil, fmt.Errorf("%s: loading application default credentials: %w", a.Name(), err)
		}
		reason := fmt.Sprintf("no application default credentials: %v", err)
		if !a.onGCE() {
			reason += " (not running on GCE)"
		}
		return nil, credential.NotApplicable(a.Name(), "%s", reason)
	}

	tok, err := credential.NewBearerTokenSource(creds.TokenSource, credential.GoogleAuthHost, req.Scopes)
	if err != nil {
		return nil, fmt.Errorf("%s: fetching token from default credentials: %w", a.Name(), err)
	}

	a.logger.Debug("ambient credentials resolved for %s (project %s)", req.Package, creds.ProjectID)
	return tok, nil
}

// adcNotFound reports whether err is discovery coming up empty, as opposed
// to a credentials source that exists but could not be loaded. x/oauth2's
// google package returns no sentinel, so the message is the only signal.
func adcNotFound(err error) bool {
	return strings.Contains(err.Error(), "could not find default credentials")
}
