package strategies

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/systmms/authbroker/pkg/credential"
	"github.com/systmms/authbroker/pkg/logging"
)

// DefaultKeyringService is the OS keyring service name cached grants are
// filed under, keyed by package name.
const DefaultKeyringService = "authbroker"

// CachedGrant resolves a user OAuth grant previously stored in the OS
// keyring as a JSON-encoded oauth2 token. The browser consent dance that
// creates the grant happens elsewhere; this strategy only replays it,
// refreshing through the package's OAuth client when the access token has
// gone stale.
type CachedGrant struct {
	service string
	get     func(service, user string) (string, error)
	logger  *logging.Logger
}

// CachedGrantOption configures NewCachedGrant.
type CachedGrantOption func(*CachedGrant)

// WithKeyringService overrides the keyring service name.
func WithKeyringService(service string) CachedGrantOption {
	return func(c *CachedGrant) { c.service = service }
}

// WithKeyringGetter overrides the keyring lookup. Used by tests.
func WithKeyringGetter(get func(service, user string) (string, error)) CachedGrantOption {
	return func(c *CachedGrant) { c.get = get }
}

// NewCachedGrant creates the cached grant strategy.
func NewCachedGrant(logger *logging.Logger, opts ...CachedGrantOption) *CachedGrant {
	c := &CachedGrant{
		service: DefaultKeyringService,
		get:     keyring.Get,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the strategy identifier.
func (c *CachedGrant) Name() string { return "cached-grant" }

// Resolve loads the stored grant for the requesting package. A missing
// entry is NotApplicable; a corrupt or unrefreshable entry is a hard
// failure so the user learns their cache is stale rather than silently
// falling through to an unrelated identity.
func (c *CachedGrant) Resolve(ctx context.Context, req credential.Request) (credential.Token, error) {
	raw, err := c.get(c.service, req.Package)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, credential.NotApplicable(c.Name(), "no grant cached for %s", req.Package)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: keyring lookup: %w", c.Name(), err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal([]byte(raw), &tok); err != nil {
		return nil, fmt.Errorf("%s: corrupt cached grant for %s: %w", c.Name(), req.Package, err)
	}

	if tok.Valid() {
		c.logger.Debug("cached grant for %s still fresh", req.Package)
		return credential.NewBearerToken(&tok, credential.GoogleAccountsHost, req.Scopes), nil
	}

	if tok.RefreshToken == "" {
		return nil, fmt.Errorf("%s: cached grant for %s expired and carries no refresh token", c.Name(), req.Package)
	}
	if req.Client == nil {
		return nil, fmt.Errorf("%s: cached grant for %s needs refreshing but no OAuth client is configured", c.Name(), req.Package)
	}

	cfg := &oauth2.Config{
		ClientID:     req.Client.ID,
		ClientSecret: req.Client.Secret,
		Endpoint:     google.Endpoint,
		Scopes:       req.Scopes,
	}

	bearer, err := credential.NewBearerTokenSource(cfg.TokenSource(ctx, &tok), credential.GoogleAccountsHost, req.Scopes)
	if err != nil {
		return nil, fmt.Errorf("%s: refreshing cached grant for %s: %w", c.Name(), req.Package, err)
	}

	c.logger.Debug("cached grant for %s refreshed", req.Package)
	return bearer, nil
}
