// Package introspect queries Google's tokeninfo endpoint for the identity
// and scopes behind a resolved credential, memoizing the answer on the
// token so repeated questions cost at most one network round trip.
package introspect

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/googleapi"
	goauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/systmms/authbroker/pkg/credential"
	"github.com/systmms/authbroker/pkg/logging"
)

// IntrospectionError indicates the introspection endpoint could not be
// reached or answered with a server-side failure. The token itself has not
// been judged.
type IntrospectionError struct {
	Err error
}

// Error implements the error interface.
func (e *IntrospectionError) Error() string {
	return fmt.Sprintf("token introspection failed: %v", e.Err)
}

// Unwrap returns the underlying transport error.
func (e *IntrospectionError) Unwrap() error { return e.Err }

// InvalidTokenError indicates the endpoint examined the token and rejected
// it (expired, revoked, malformed). The cache is left empty so a retry
// with a refreshed token can succeed.
type InvalidTokenError struct {
	Status int
	Reason string
}

// Error implements the error interface.
func (e *InvalidTokenError) Error() string {
	return fmt.Sprintf("token rejected by introspection endpoint (HTTP %d): %s", e.Status, e.Reason)
}

// Introspector answers identity and scope questions about tokens through
// the oauth2/v2 tokeninfo API. The tokeninfo call authenticates by the
// access token under inspection, so the service itself is built without
// ambient credentials.
type Introspector struct {
	svc    *goauth2.Service
	logger *logging.Logger
}

// New creates an introspector. Pass option.WithEndpoint and
// option.WithHTTPClient to point tests at a stub server.
func New(ctx context.Context, logger *logging.Logger, opts ...option.ClientOption) (*Introspector, error) {
	all := append([]option.ClientOption{option.WithoutAuthentication()}, opts...)
	svc, err := goauth2.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("building tokeninfo client: %w", err)
	}
	return &Introspector{svc: svc, logger: logger}, nil
}

// TokenInfo returns what the authorization server knows about the token.
// The token's write-once cache is consulted first; on a miss, exactly one
// network call is made and its result installed, so a following Email or
// TokenInfo call on the same token is free.
func (i *Introspector) TokenInfo(ctx context.Context, tok credential.Token) (credential.Introspection, error) {
	cacher, _ := tok.(credential.IntrospectionCacher)
	if cacher != nil {
		if cached := cacher.Introspection(); cached != nil {
			return *cached, nil
		}
	}

	ti, err := i.svc.Tokeninfo().AccessToken(tok.AccessToken()).Context(ctx).Do()
	if err != nil {
		if apiErr, ok := err.(*googleapi.Error); ok && apiErr.Code >= 400 && apiErr.Code < 500 {
			return credential.Introspection{}, &InvalidTokenError{Status: apiErr.Code, Reason: apiErr.Message}
		}
		return credential.Introspection{}, &IntrospectionError{Err: err}
	}

	info := credential.Introspection{
		Email:     ti.Email,
		Scope:     strings.Fields(ti.Scope),
		ExpiresIn: ti.ExpiresIn,
	}

	if cacher != nil {
		if err := cacher.SetIntrospection(info); err != nil {
			// Lost a race we said callers must not create; keep the
			// first-installed value to honor write-once semantics.
			if cached := cacher.Introspection(); cached != nil {
				return *cached, nil
			}
			return credential.Introspection{}, err
		}
	}

	i.logger.Debug("introspected token for %s (%d scopes)", info.Email, len(info.Scope))
	return info, nil
}

// Email returns the identity the token acts as. Derived from the same
// cached introspection TokenInfo uses, so asking both costs one round
// trip total.
func (i *Introspector) Email(ctx context.Context, tok credential.Token) (string, error) {
	info, err := i.TokenInfo(ctx, tok)
	if err != nil {
		return "", err
	}
	return info.Email, nil
}
